package units

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/suiterun/packages/assertions"
	"github.com/abdul-hamid-achik/suiterun/packages/auth/oauth2"
	"github.com/abdul-hamid-achik/suiterun/packages/core/registry"
	"github.com/abdul-hamid-achik/suiterun/packages/http"
	"github.com/tidwall/gjson"
)

// responseSource resolves expectation subjects against an HTTP response:
// status, duration, header <Name>, body and body.<path>
type responseSource struct {
	resp *http.Response
	body gjson.Result
}

func newResponseSource(resp *http.Response) *responseSource {
	s := &responseSource{resp: resp}
	if body, ok := resp.JSON(); ok {
		s.body = body
	}
	return s
}

func (s *responseSource) Value(subject string) (any, error) {
	switch {
	case subject == "status":
		return s.resp.StatusCode, nil
	case subject == "duration":
		return s.resp.Duration.Milliseconds(), nil
	case strings.HasPrefix(subject, "header"):
		name := strings.TrimSpace(strings.TrimPrefix(subject, "header"))
		name = strings.TrimPrefix(name, ".")
		if name == "" {
			return s.resp.Headers, nil
		}
		if v := s.resp.Header(name); v != "" {
			return v, nil
		}
		return nil, nil
	case subject == "body":
		if !s.body.Exists() {
			return s.resp.BodyString(), nil
		}
		return s.body.Value(), nil
	case strings.HasPrefix(subject, "body."):
		if !s.body.Exists() {
			return nil, fmt.Errorf("response body is not JSON")
		}
		return assertions.JSONValue(s.body, strings.TrimPrefix(subject, "body.")), nil
	default:
		return nil, fmt.Errorf("unknown http subject %q", subject)
	}
}

type httpUnit struct {
	params       params
	client       *http.Client
	tokens       *oauth2.TokenCache
	baseDir      string
	expectStatus int
	expectations []assertions.Expectation
}

// NewHTTPFactory returns the factory of the http unit.
//
// Params: url (required), method (default GET), headers, query, body (a
// string, or a map/list sent as JSON), timeout, auth {type: basic|bearer|
// digest|oauth2, ...}, expectStatus, expect.
func NewHTTPFactory(client *http.Client, tokens *oauth2.TokenCache, baseDir string) Factory {
	return func(raw map[string]any) (Unit, error) {
		p := params(raw)

		if _, err := p.required("url"); err != nil {
			return nil, err
		}
		for _, key := range []string{"headers", "query"} {
			if _, err := p.stringMap(key); err != nil {
				return nil, err
			}
		}
		if _, err := p.duration("timeout"); err != nil {
			return nil, err
		}
		if auth, err := p.sub("auth"); err != nil {
			return nil, err
		} else if auth != nil {
			if _, err := buildAuth(auth); err != nil {
				return nil, err
			}
		}
		status, err := p.integer("expectStatus", 0)
		if err != nil {
			return nil, err
		}
		exps, err := assertions.Parse(raw["expect"])
		if err != nil {
			return nil, err
		}

		return &httpUnit{
			params:       p,
			client:       client,
			tokens:       tokens,
			baseDir:      baseDir,
			expectStatus: status,
			expectations: exps,
		}, nil
	}
}

func (u *httpUnit) Run(ctx context.Context, data registry.TestData) (Result, error) {
	p, unresolved := u.params.resolve(data)
	if len(unresolved) > 0 {
		return Failed("%s", strings.Join(unresolved, "; ")), nil
	}

	req, err := u.buildRequest(p)
	if err != nil {
		return Result{}, err
	}

	resp, err := u.client.Do(ctx, req)
	if err != nil {
		return Result{}, fmt.Errorf("%s %s: %w", req.Method, req.URL, err)
	}

	if u.expectStatus != 0 && resp.StatusCode != u.expectStatus {
		return Failed("%s %s returned %d, expected %d", req.Method, req.URL, resp.StatusCode, u.expectStatus), nil
	}
	if u.expectStatus == 0 && len(u.expectations) == 0 && !resp.IsSuccess() {
		return Failed("%s %s returned %d", req.Method, req.URL, resp.StatusCode), nil
	}

	results := assertions.EvaluateAll(newResponseSource(resp), u.expectations, assertions.WithBaseDir(u.baseDir))
	if msg := assertions.Failures(results); msg != "" {
		return Failed("%s", msg), nil
	}

	return Passed(fmt.Sprintf("%s %s -> %d in %dms", req.Method, req.URL, resp.StatusCode, resp.Duration.Milliseconds())), nil
}

func (u *httpUnit) buildRequest(p params) (*http.Request, error) {
	method := p.str("method")
	if method == "" {
		method = "GET"
	}
	req := http.NewRequest(method, p.str("url"))

	headers, _ := p.stringMap("headers")
	for k, v := range headers {
		req.SetHeader(k, v)
	}
	query, _ := p.stringMap("query")
	for k, v := range query {
		req.SetQueryParam(k, v)
	}

	switch body := p["body"].(type) {
	case nil:
	case string:
		req.SetBody(body)
	default:
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding body: %w", err)
		}
		req.SetBody(string(encoded))
		if _, ok := req.Headers["Content-Type"]; !ok {
			req.SetHeader("Content-Type", "application/json")
		}
	}

	timeout, _ := p.duration("timeout")
	req.SetTimeout(timeout)

	auth, _ := p.sub("auth")
	if auth != nil {
		a, err := buildAuth(auth)
		if err != nil {
			return nil, err
		}
		req.Auth = a
		if a.Type == http.AuthOAuth2 {
			cfg, err := oauth2.ConfigFromParams(auth)
			if err != nil {
				return nil, err
			}
			req.Tokens = oauth2.NewProvider(cfg, u.tokens)
		}
	}

	return req, nil
}

func buildAuth(p params) (*http.Auth, error) {
	a := &http.Auth{
		Type:     http.AuthType(strings.ToLower(p.str("type"))),
		Username: p.str("username"),
		Password: p.str("password"),
		Token:    p.str("token"),
	}
	switch a.Type {
	case http.AuthBasic, http.AuthDigest:
		if a.Username == "" {
			return nil, fmt.Errorf("%s auth requires username", a.Type)
		}
	case http.AuthBearer:
		if a.Token == "" {
			return nil, fmt.Errorf("bearer auth requires token")
		}
	case http.AuthOAuth2:
		if p.str("tokenUrl") == "" {
			return nil, fmt.Errorf("oauth2 auth requires tokenUrl")
		}
	default:
		return nil, fmt.Errorf("unsupported auth type %q", a.Type)
	}
	return a, nil
}
