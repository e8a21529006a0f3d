package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// refreshMargin is how long before a token's exp claim we proactively
// fetch a new one, so an upload never races an expiry.
const refreshMargin = 60 * time.Second

// TokenSource exchanges a username/password for a bearer token at a
// companion endpoint and caches it until shortly before it expires.
// The token's own exp claim (read without signature verification,
// since the source trusts its own auth endpoint over TLS) drives the
// refresh schedule rather than a fixed TTL.
type TokenSource struct {
	BaseURL  string
	Username string
	Password string
	Client   *http.Client

	mu      sync.Mutex
	token   string
	expires time.Time
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Token returns a bearer token, fetching or refreshing it as needed.
func (s *TokenSource) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && time.Now().Before(s.expires.Add(-refreshMargin)) {
		return s.token, nil
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	endpoint, err := url.JoinPath(s.BaseURL, "auth", "token")
	if err != nil {
		return "", fmt.Errorf("build token endpoint: %w", err)
	}

	body, err := json.Marshal(struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{s.Username, s.Password})
	if err != nil {
		return "", fmt.Errorf("encode credentials: %w", err)
	}

	resp, err := client.Post(endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("request token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("token endpoint returned %s", resp.Status)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}

	s.token = tr.Token
	s.expires = tokenExpiry(tr.Token)
	return s.token, nil
}

// tokenExpiry reads the exp claim from token without verifying its
// signature; the source only ever reads back a token it just obtained
// from its own trusted endpoint.
func tokenExpiry(token string) time.Time {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Now().Add(refreshMargin) // force a refresh on the next call
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Now().Add(refreshMargin)
	}
	return exp.Time
}
