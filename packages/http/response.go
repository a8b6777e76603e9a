package http

import (
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Response is a completed exchange. Headers keep the first value of each
// header under its canonical name.
type Response struct {
	StatusCode int
	Status     string
	Headers    map[string]string
	Body       []byte
	Duration   time.Duration
}

func (r *Response) BodyString() string {
	return string(r.Body)
}

// Header looks a header up case-insensitively
func (r *Response) Header(key string) string {
	for k, v := range r.Headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

// JSON parses the body. ok is false when the body is not valid JSON,
// whatever the Content-Type says.
func (r *Response) JSON() (body gjson.Result, ok bool) {
	if !gjson.ValidBytes(r.Body) {
		return gjson.Result{}, false
	}
	return gjson.ParseBytes(r.Body), true
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
