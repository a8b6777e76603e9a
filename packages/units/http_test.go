package units

import (
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/abdul-hamid-achik/suiterun/packages/core/registry"
	"github.com/abdul-hamid-achik/suiterun/packages/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func apiServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := nethttp.NewServeMux()
	mux.HandleFunc("/login", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		if body["email"] == "" || body["password"] == "" {
			w.WriteHeader(nethttp.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error": "missing credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"token": "t-1", "user": {"email": "` + body["email"] + `"}}`))
	})
	mux.HandleFunc("/me", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Header.Get("Authorization") != "Bearer t-1" {
			w.WriteHeader(nethttp.StatusUnauthorized)
			return
		}
		w.Header().Set("X-Request-Id", "abc")
		_, _ = w.Write([]byte("plain text"))
	})
	mux.HandleFunc("/token", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token": "t-1", "expires_in": 60}`))
	})
	return httptest.NewServer(mux)
}

func runHTTP(t *testing.T, p map[string]any, data registry.TestData) (Result, error) {
	t.Helper()
	r := NewRegistry()
	RegisterBuiltins(r, WithHTTPClient(http.NewClient()))
	u, err := r.New(HTTPUnit, p)
	require.NoError(t, err)
	return u.Run(context.Background(), data)
}

func TestHTTPUnit(t *testing.T) {
	server := apiServer(t)
	defer server.Close()

	data := registry.TestData{
		registry.CredentialsKey: map[string]any{"email": "qa@example.test", "password": "pw"},
	}

	t.Run("login with credentials", func(t *testing.T) {
		res, err := runHTTP(t, map[string]any{
			"method": "POST",
			"url":    server.URL + "/login",
			"body": map[string]any{
				"email":    "{{userCredentials.email}}",
				"password": "{{userCredentials.password}}",
			},
			"expectStatus": 200,
			"expect": []any{
				map[string]any{"subject": "body.token", "op": "exists"},
				map[string]any{"subject": "body.user.email", "value": "qa@example.test"},
				map[string]any{"subject": "header Content-Type", "op": "contains", "value": "json"},
			},
		}, data)
		require.NoError(t, err)
		assert.True(t, res.Success, res.Error)
	})

	t.Run("unexpected status", func(t *testing.T) {
		res, err := runHTTP(t, map[string]any{
			"method":       "POST",
			"url":          server.URL + "/login",
			"body":         `{}`,
			"expectStatus": 200,
		}, data)
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Contains(t, res.Error, "returned 400, expected 200")
	})

	t.Run("non 2xx fails without expectations", func(t *testing.T) {
		res, err := runHTTP(t, map[string]any{"url": server.URL + "/me"}, data)
		require.NoError(t, err)
		assert.False(t, res.Success)
	})

	t.Run("bearer auth and plain body", func(t *testing.T) {
		res, err := runHTTP(t, map[string]any{
			"url":  server.URL + "/me",
			"auth": map[string]any{"type": "bearer", "token": "t-1"},
			"expect": map[string]any{
				"body":                "plain text",
				"header.X-Request-Id": "abc",
			},
		}, data)
		require.NoError(t, err)
		assert.True(t, res.Success, res.Error)
	})

	t.Run("oauth2 auth", func(t *testing.T) {
		res, err := runHTTP(t, map[string]any{
			"url": server.URL + "/me",
			"auth": map[string]any{
				"type":     "oauth2",
				"tokenUrl": server.URL + "/token",
				"clientId": "id",
			},
			"expectStatus": 200,
		}, data)
		require.NoError(t, err)
		assert.True(t, res.Success, res.Error)
	})

	t.Run("failed expectation", func(t *testing.T) {
		res, err := runHTTP(t, map[string]any{
			"method": "POST",
			"url":    server.URL + "/login",
			"body":   map[string]any{"email": "a@b.c", "password": "x"},
			"expect": []any{map[string]any{"subject": "body.user.email", "value": "other@b.c"}},
		}, data)
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Contains(t, res.Error, "body.user.email equals")
	})

	t.Run("connection error", func(t *testing.T) {
		_, err := runHTTP(t, map[string]any{"url": "http://127.0.0.1:1/nothing"}, data)
		assert.Error(t, err)
	})
}

func TestHTTPFactory_Validation(t *testing.T) {
	f := NewHTTPFactory(http.NewClient(), nil, "")

	_, err := f(map[string]any{})
	assert.Error(t, err, "url is required")

	_, err = f(map[string]any{"url": "http://x", "headers": "nope"})
	assert.Error(t, err)

	_, err = f(map[string]any{"url": "http://x", "auth": map[string]any{"type": "kerberos"}})
	assert.Error(t, err)

	_, err = f(map[string]any{"url": "http://x", "auth": map[string]any{"type": "bearer"}})
	assert.Error(t, err)

	_, err = f(map[string]any{"url": "http://x", "expectStatus": "ok"})
	assert.Error(t, err)
}
