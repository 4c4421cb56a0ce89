package gatekeeper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pet-adoption-market/internal/platform/httpclient"
	"pet-adoption-market/internal/ports/auth"
)

var (
	ErrNotConfigured = errors.New("gatekeeper client not configured")
	ErrUnauthorized  = errors.New("gatekeeper unauthorized")
	ErrUpstream      = errors.New("gatekeeper upstream error")
)

// Config del cliente Gatekeeper (identity provider remoto).
// BaseURL y APIKey normalmente vienen de env vars en quien lo instancia.
type Config struct {
	BaseURL string
	APIKey  string

	// Header de la API key; default "X-Api-Key".
	APIKeyHeader string

	Timeout time.Duration
}

type Client struct {
	http         *httpclient.Client
	apiKey       string
	apiKeyHeader string
}

func NewClient(cfg Config) (*Client, error) {
	header := strings.TrimSpace(cfg.APIKeyHeader)
	if header == "" {
		header = "X-Api-Key"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	hc, err := httpclient.NewWithBaseURL(strings.TrimSpace(cfg.BaseURL), timeout)
	if err != nil {
		return nil, err
	}

	return &Client{
		http:         hc,
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: header,
	}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.http != nil && c.http.BaseURL != "" && c.apiKey != ""
}

type verifyRequest struct {
	Token string `json:"token"`
}

type verifyResponse struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	Active bool   `json:"active"`
}

// VerifyToken resuelve un token contra Gatekeeper y trae (id, role, active).
func (c *Client) VerifyToken(ctx context.Context, token string) (auth.Claims, error) {
	if !c.IsConfigured() {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrUnauthorized
	}

	const verifyPath = "/v1/tokens/verify"

	var out verifyResponse
	err := c.http.DoJSON(ctx, http.MethodPost, verifyPath,
		map[string]string{c.apiKeyHeader: c.apiKey},
		verifyRequest{Token: token},
		&out,
	)
	if err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) && (httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusForbidden) {
			return auth.Claims{}, ErrUnauthorized
		}
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	return auth.Claims{
		UserID: strings.TrimSpace(out.UserID),
		Role:   strings.TrimSpace(out.Role),
		Active: out.Active,
	}, nil
}
