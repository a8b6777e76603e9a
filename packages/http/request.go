package http

import (
	"context"
	"encoding/base64"
	"net/url"
	"strings"
	"time"
)

// AuthType selects how a request is authorized
type AuthType string

const (
	AuthNone   AuthType = ""
	AuthBasic  AuthType = "basic"
	AuthBearer AuthType = "bearer"
	AuthDigest AuthType = "digest"
	AuthOAuth2 AuthType = "oauth2"
)

// Auth holds request credentials. Token is used by bearer auth.
type Auth struct {
	Type     AuthType
	Username string
	Password string
	Token    string
}

// TokenSource supplies bearer tokens for OAuth2 auth
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

type Request struct {
	Method      string
	URL         string
	Headers     map[string]string
	Body        string
	Timeout     time.Duration
	QueryParams map[string]string
	Auth        *Auth
	Tokens      TokenSource
}

func NewRequest(method, requestURL string) *Request {
	return &Request{
		Method:      strings.ToUpper(method),
		URL:         requestURL,
		Headers:     make(map[string]string),
		QueryParams: make(map[string]string),
	}
}

func (r *Request) SetHeader(key, value string) *Request {
	r.Headers[key] = value
	return r
}

func (r *Request) SetBody(body string) *Request {
	r.Body = body
	return r
}

func (r *Request) SetTimeout(d time.Duration) *Request {
	r.Timeout = d
	return r
}

func (r *Request) SetQueryParam(key, value string) *Request {
	r.QueryParams[key] = value
	return r
}

func (r *Request) BuildURL() string {
	if len(r.QueryParams) == 0 {
		return r.URL
	}

	u, err := url.Parse(r.URL)
	if err != nil {
		return r.URL
	}

	q := u.Query()
	for k, v := range r.QueryParams {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// staticAuthHeader returns the Authorization value for auth types that need
// no round trip
func (r *Request) staticAuthHeader() string {
	if r.Auth == nil {
		return ""
	}
	switch r.Auth.Type {
	case AuthBasic:
		creds := r.Auth.Username + ":" + r.Auth.Password
		return "Basic " + base64.StdEncoding.EncodeToString([]byte(creds))
	case AuthBearer:
		return "Bearer " + r.Auth.Token
	}
	return ""
}
