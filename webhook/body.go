package webhook

import (
	"bytes"
	"encoding/json"
	"mime"
	"strings"
)

// BodyKind tells how a captured payload was interpreted.
type BodyKind int

const (
	// NoBody means zero bytes arrived.
	NoBody BodyKind = iota + 1
	// RawBody is stored verbatim.
	RawBody
	// StructuredBody was declared and parsed as JSON, and is stored compacted.
	StructuredBody
)

func (k BodyKind) String() string {
	switch k {
	case NoBody:
		return "none"
	case RawBody:
		return "raw"
	case StructuredBody:
		return "structured"
	}
	return "unknown"
}

// Body is a captured payload together with its interpretation.
type Body struct {
	Kind BodyKind
	data []byte
}

// ParseBody classifies data using the request's Content-Type. Payloads that
// claim to be JSON but do not parse fall back to RawBody.
func ParseBody(contentType string, data []byte) Body {
	if len(data) == 0 {
		return Body{Kind: NoBody}
	}
	if IsJSONMediaType(contentType) {
		var buf bytes.Buffer
		if err := json.Compact(&buf, data); err == nil {
			return Body{Kind: StructuredBody, data: buf.Bytes()}
		}
	}
	return Body{Kind: RawBody, data: data}
}

// Text is the stored representation, nil for NoBody.
func (b Body) Text() *string {
	if b.Kind == NoBody || b.Kind == 0 {
		return nil
	}
	s := string(b.data)
	return &s
}

// IsJSONMediaType matches application/json and any +json suffix type.
func IsJSONMediaType(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
