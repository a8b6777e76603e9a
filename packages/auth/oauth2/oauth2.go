// Package oauth2 fetches and caches OAuth2 access tokens for the http unit.
package oauth2

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// GrantType represents the OAuth2 grant type
type GrantType string

const (
	ClientCredentials GrantType = "client_credentials"
	Password          GrantType = "password"
)

// Config holds OAuth2 configuration
type Config struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
	Username     string // For password grant
	Password     string // For password grant
	GrantType    GrantType
}

// Token represents an OAuth2 access token
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	Scope       string    `json:"scope,omitempty"`
	ExpiresAt   time.Time `json:"-"`
}

// IsExpired reports whether the token expires within the next 30 seconds
func (t *Token) IsExpired() bool {
	if t.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().Add(30 * time.Second).After(t.ExpiresAt)
}

// Provider handles OAuth2 token acquisition
type Provider struct {
	config     *Config
	httpClient *http.Client
	cache      *TokenCache
}

// NewProvider creates a provider. A nil cache disables caching.
func NewProvider(config *Config, cache *TokenCache) *Provider {
	return &Provider{
		config:     config,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cache:      cache,
	}
}

// AccessToken returns a valid access token, fetching a new one when the
// cached token is missing or expired
func (p *Provider) AccessToken(ctx context.Context) (string, error) {
	token, err := p.GetToken(ctx)
	if err != nil {
		return "", err
	}
	return token.AccessToken, nil
}

func (p *Provider) GetToken(ctx context.Context) (*Token, error) {
	if p.cache != nil {
		if token, ok := p.cache.Valid(p.config); ok {
			return token, nil
		}
	}

	token, err := p.fetchToken(ctx)
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		p.cache.Store(p.config, token)
	}
	return token, nil
}

func (p *Provider) fetchToken(ctx context.Context) (*Token, error) {
	data := url.Values{}
	switch p.config.GrantType {
	case Password:
		data.Set("grant_type", string(Password))
		data.Set("username", p.config.Username)
		data.Set("password", p.config.Password)
	default:
		data.Set("grant_type", string(ClientCredentials))
	}
	if len(p.config.Scopes) > 0 {
		data.Set("scope", strings.Join(p.config.Scopes, " "))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	if p.config.ClientID != "" && p.config.ClientSecret != "" {
		auth := base64.StdEncoding.EncodeToString([]byte(p.config.ClientID + ":" + p.config.ClientSecret))
		req.Header.Set("Authorization", "Basic "+auth)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error            string `json:"error"`
			ErrorDescription string `json:"error_description"`
		}
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			return nil, fmt.Errorf("token request failed: %s - %s", errResp.Error, errResp.ErrorDescription)
		}
		return nil, fmt.Errorf("token request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var token Token
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("token response has no access_token")
	}
	if token.ExpiresIn > 0 {
		token.ExpiresAt = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	}

	return &token, nil
}

// ConfigFromParams reads an oauth2 block of unit parameters:
// tokenUrl, clientId, clientSecret, grantType, username, password, scopes
func ConfigFromParams(params map[string]any) (*Config, error) {
	str := func(key string) string {
		s, _ := params[key].(string)
		return s
	}

	config := &Config{
		TokenURL:     str("tokenUrl"),
		ClientID:     str("clientId"),
		ClientSecret: str("clientSecret"),
		Username:     str("username"),
		Password:     str("password"),
		GrantType:    GrantType(str("grantType")),
	}
	if config.GrantType == "" {
		config.GrantType = ClientCredentials
	}
	if config.TokenURL == "" {
		return nil, fmt.Errorf("oauth2 auth requires tokenUrl")
	}

	switch scopes := params["scopes"].(type) {
	case string:
		config.Scopes = strings.Split(scopes, ",")
	case []any:
		for _, s := range scopes {
			config.Scopes = append(config.Scopes, fmt.Sprint(s))
		}
	}

	switch config.GrantType {
	case ClientCredentials:
	case Password:
		if config.Username == "" {
			return nil, fmt.Errorf("oauth2 password grant requires username and password")
		}
	default:
		return nil, fmt.Errorf("unsupported OAuth2 grant type: %s", config.GrantType)
	}

	return config, nil
}
