// Package http is the HTTP client behind the http test unit.
//
// It wraps the standard library client with:
//   - Configurable timeouts and redirect handling
//   - Basic, bearer, digest and OAuth2 authorization
//   - Query parameter building
//   - Fully read responses with timing
package http
