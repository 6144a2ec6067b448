package webhook

import "time"

/* Webhook is one captured HTTP request as it was received
 * Uses value semantics as it represents data, not behavior
 */
type Webhook struct {
	ID            string
	Method        string
	Pathname      string
	IP            string
	StatusCode    int
	ContentType   *string
	ContentLength *int64
	QueryParams   map[string]string
	Headers       map[string]string
	Body          *string
	CreatedAt     time.Time
}

// Summary is the subset of a Webhook shown in listings.
type Summary struct {
	ID            string
	Method        string
	Pathname      string
	IP            string
	StatusCode    int
	ContentType   *string
	ContentLength *int64
	CreatedAt     time.Time
}

// Summary drops the headers, query and body of the record.
func (w Webhook) Summary() Summary {
	return Summary{
		ID:            w.ID,
		Method:        w.Method,
		Pathname:      w.Pathname,
		IP:            w.IP,
		StatusCode:    w.StatusCode,
		ContentType:   w.ContentType,
		ContentLength: w.ContentLength,
		CreatedAt:     w.CreatedAt,
	}
}

// BodyText returns the stored body or the empty string when there is none.
func (w Webhook) BodyText() string {
	if w.Body == nil {
		return ""
	}
	return *w.Body
}
