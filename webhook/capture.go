package webhook

import (
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// CapturePrefix is the path every captured request arrives under.
const CapturePrefix = "/api/capture"

// CapturedStatusCode is what the capture endpoint answers for every record.
const CapturedStatusCode = http.StatusOK

/* Capture is the transport-neutral view of an incoming request
 * The HTTP layer fills it once the body has been read under its size cap
 */
type Capture struct {
	Method           string
	URL              *url.URL
	Host             string
	Header           http.Header
	TransferEncoding []string
	Trailer          []string
	RemoteAddr       string
	Body             []byte
}

// Normalize turns an arbitrary request into a record ready to be stored.
// It never rejects a request because of its headers or payload.
func Normalize(c Capture, prefix string) (Webhook, error) {
	if c.URL == nil {
		return Webhook{}, ErrMalformedRequest
	}
	method := c.Method
	if method == "" {
		method = http.MethodGet
	}

	headers := FlattenHeaders(c.Header)
	if _, ok := headers["host"]; !ok && c.Host != "" {
		headers["host"] = c.Host
	}
	if _, ok := headers["transfer-encoding"]; !ok && len(c.TransferEncoding) > 0 {
		headers["transfer-encoding"] = strings.Join(c.TransferEncoding, valueSeparator)
	}
	if _, ok := headers["trailer"]; !ok && len(c.Trailer) > 0 {
		headers["trailer"] = strings.Join(c.Trailer, valueSeparator)
	}

	var contentType *string
	if ct, ok := headers["content-type"]; ok {
		contentType = &ct
	}
	var declared string
	if contentType != nil {
		declared = *contentType
	}
	body := ParseBody(declared, c.Body)

	return Webhook{
		Method:        method,
		Pathname:      StripPrefix(c.URL.EscapedPath(), prefix),
		IP:            ClientIP(c.RemoteAddr),
		StatusCode:    CapturedStatusCode,
		ContentType:   contentType,
		ContentLength: ParseContentLength(headers["content-length"]),
		QueryParams:   FlattenQuery(c.URL.Query()),
		Headers:       headers,
		Body:          body.Text(),
	}, nil
}

// StripPrefix removes prefix from path, answering "/" for the prefix itself.
func StripPrefix(path, prefix string) string {
	if !strings.HasPrefix(path, prefix) {
		if path == "" {
			return "/"
		}
		return path
	}
	rest := strings.TrimPrefix(path, prefix)
	if rest == "" {
		return "/"
	}
	if !strings.HasPrefix(rest, "/") {
		rest = "/" + rest
	}
	return rest
}

// ParseContentLength accepts only a plain non-negative base-10 integer.
func ParseContentLength(v string) *int64 {
	if v == "" {
		return nil
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return nil
		}
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

// ClientIP is the host part of a remote address. Addresses without a port,
// as left by proxy-aware middleware, are returned unchanged.
func ClientIP(remoteAddr string) string {
	if remoteAddr == "" {
		return "unknown"
	}
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
