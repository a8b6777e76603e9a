package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Do(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/users", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "suiterun", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 123}`))
	}))
	defer server.Close()

	client := NewClient(WithDefaultHeaders(map[string]string{"User-Agent": "suiterun"}))
	req := NewRequest("post", server.URL+"/users").
		SetHeader("Content-Type", "application/json").
		SetQueryParam("page", "2").
		SetBody(`{"name": "alice"}`)

	resp, err := client.Do(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 201, resp.StatusCode)
	assert.True(t, resp.IsSuccess())
	assert.Equal(t, "application/json", resp.Header("content-type"))

	body, ok := resp.JSON()
	require.True(t, ok)
	assert.Equal(t, int64(123), body.Get("id").Int())
}

func TestClient_Auth(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
	}))
	defer server.Close()

	client := NewClient()
	ctx := context.Background()

	req := NewRequest("GET", server.URL)
	req.Auth = &Auth{Type: AuthBasic, Username: "user", Password: "pass"}
	_, err := client.Do(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "Basic dXNlcjpwYXNz", got)

	req.Auth = &Auth{Type: AuthBearer, Token: "abc"}
	_, err = client.Do(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", got)

	req.Auth = &Auth{Type: AuthOAuth2}
	req.Tokens = staticTokens("xyz")
	_, err = client.Do(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "Bearer xyz", got)

	req.Tokens = nil
	_, err = client.Do(ctx, req)
	assert.Error(t, err)
}

type staticTokens string

func (s staticTokens) AccessToken(context.Context) (string, error) {
	if s == "" {
		return "", errors.New("no token")
	}
	return string(s), nil
}

func TestClient_DigestAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Digest ") {
			w.Header().Set("WWW-Authenticate", `Digest realm="test", nonce="abc123", qop="auth", opaque="xyz"`)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		params := parseDigestParams(auth)
		assert.Equal(t, "alice", params["username"])
		assert.Equal(t, "/secret", params["uri"])
		assert.Equal(t, "xyz", params["opaque"])
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	req := NewRequest("GET", server.URL+"/secret")
	req.Auth = &Auth{Type: AuthDigest, Username: "alice", Password: "secret"}

	resp, err := NewClient().Do(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestDigestAuthorization(t *testing.T) {
	// RFC 2617 section 3.5 example
	challenge := parseDigestParams(`Digest realm="testrealm@host.com", qop="auth,auth-int", ` +
		`nonce="dcd98b7102dd2f0e8b11d0f600bfb0c093", opaque="5ccc069c403ebaf9f0171e9517f40e41"`)

	got := digestAuthorization(challenge, "GET", "/dir/index.html", "Mufasa", "Circle Of Life", "0a4f113b")

	params := parseDigestParams(got)
	assert.Equal(t, "6629fae49393a05397450978507c4ef1", params["response"])
	assert.Equal(t, "auth", params["qop"])
	assert.Equal(t, "00000001", params["nc"])
	assert.Equal(t, "5ccc069c403ebaf9f0171e9517f40e41", params["opaque"])
}

func TestDigestAuthorization_WithoutQop(t *testing.T) {
	challenge := map[string]string{"realm": "r", "nonce": "n"}
	got := digestAuthorization(challenge, "GET", "/", "u", "p", "c")

	assert.NotContains(t, got, "qop=")
	assert.NotContains(t, got, "cnonce=")
}

func TestClient_Redirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/old" {
			http.Redirect(w, r, "/new", http.StatusFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	resp, err := NewClient().Do(context.Background(), NewRequest("GET", server.URL+"/old"))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	resp, err = NewClient(WithFollowRedirects(false)).Do(context.Background(), NewRequest("GET", server.URL+"/old"))
	require.NoError(t, err)
	assert.Equal(t, 302, resp.StatusCode)
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	req := NewRequest("GET", server.URL).SetTimeout(20 * time.Millisecond)
	_, err := NewClient().Do(context.Background(), req)
	assert.Error(t, err)
}

func TestValidateURL(t *testing.T) {
	assert.NoError(t, ValidateURL("https://example.com/path"))
	assert.Error(t, ValidateURL("ftp://example.com"))
	assert.Error(t, ValidateURL("http://"))
	assert.Error(t, ValidateURL("://bad"))
}

func TestParseDigestParams(t *testing.T) {
	params := parseDigestParams(`Digest realm="api, v2", nonce="n1", qop="auth,auth-int", stale=false, note="say \"hi\""`)
	assert.Equal(t, "api, v2", params["realm"])
	assert.Equal(t, "n1", params["nonce"])
	assert.Equal(t, "auth,auth-int", params["qop"])
	assert.Equal(t, "false", params["stale"])
	assert.Equal(t, `say "hi"`, params["note"])

	assert.True(t, isDigestChallenge("digest realm=x"))
	assert.False(t, isDigestChallenge(`Basic realm="x"`))
}
