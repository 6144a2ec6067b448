package webhook

import (
	"net/http"
	"net/url"
	"sort"
	"strings"
)

const valueSeparator = ", "

// FlattenHeaders lower-cases header names and joins repeated values in
// arrival order.
func FlattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	// Names that differ only in case merge in a stable order.
	sort.Strings(keys)
	for _, k := range keys {
		name := strings.ToLower(k)
		joined := strings.Join(h[k], valueSeparator)
		if prev, ok := out[name]; ok {
			out[name] = prev + valueSeparator + joined
			continue
		}
		out[name] = joined
	}
	return out
}

// FlattenQuery joins repeated query parameters the same way as headers.
func FlattenQuery(q url.Values) map[string]string {
	out := make(map[string]string, len(q))
	for k, v := range q {
		out[k] = strings.Join(v, valueSeparator)
	}
	return out
}
