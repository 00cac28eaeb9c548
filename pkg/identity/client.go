package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kartik-parmar007/marketplace-backend/pkg/config"
	pkgerrors "github.com/kartik-parmar007/marketplace-backend/pkg/errors"
)

const responseBodyReadLimit int64 = 1024

// Profile is the provider-side user record. Email and names live with the
// provider, not in the local directory.
type Profile struct {
	ExternalID string
	Email      string
	FirstName  string
	LastName   string
}

// Client wraps the identity provider's management API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	cfg        config.IdentityConfig
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured provider base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds the identity provider client.
func NewClient(cfg config.IdentityConfig, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.SessionSecret) == "" {
		return nil, fmt.Errorf("identity session secret is required")
	}

	client := &Client{
		cfg:        cfg,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		baseURL:    strings.TrimSpace(cfg.BaseURL),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// VerifyToken checks the session token and returns the external user id.
func (c *Client) VerifyToken(_ context.Context, token string) (string, error) {
	externalID, err := VerifySessionToken(c.cfg, token)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid session token")
	}
	return externalID, nil
}

// GetProfile fetches the provider-side profile for the given external id.
// Called on every admin-gated request so the email-role binding is never
// cached locally.
func (c *Client) GetProfile(ctx context.Context, externalID string) (*Profile, error) {
	trimmed := strings.TrimSpace(externalID)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "external id is required")
	}

	endpoint := fmt.Sprintf("%s/v1/users/%s", strings.TrimRight(c.baseURL, "/"), url.PathEscape(trimmed))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build profile request")
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute profile request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "identity not found")
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "profile request failed")
	}

	var apiResp struct {
		ID        string `json:"id"`
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode profile response")
	}

	return &Profile{
		ExternalID: apiResp.ID,
		Email:      apiResp.Email,
		FirstName:  apiResp.FirstName,
		LastName:   apiResp.LastName,
	}, nil
}

// SyncRoleMetadata mirrors the directory role into the provider's public
// metadata. Best-effort: callers log failures and move on.
func (c *Client) SyncRoleMetadata(ctx context.Context, externalID, role string) error {
	trimmed := strings.TrimSpace(externalID)
	if trimmed == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "external id is required")
	}

	payload, err := json.Marshal(map[string]any{
		"public_metadata": map[string]string{"role": role},
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal metadata payload")
	}

	endpoint := fmt.Sprintf("%s/v1/users/%s/metadata", strings.TrimRight(c.baseURL, "/"), url.PathEscape(trimmed))
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(payload))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build metadata request")
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute metadata request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "metadata request failed")
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
