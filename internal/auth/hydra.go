package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sadco.org/internal/scope"
)

const defaultIntrospectTimeout = 10 * time.Second

// HydraIntrospector calls the ORY Hydra admin token introspection endpoint.
type HydraIntrospector struct {
	adminURL string
	client   *http.Client
}

// NewHydraIntrospector builds an introspector for the given Hydra admin base
// URL (e.g. http://hydra-admin:4445).
func NewHydraIntrospector(adminURL string, opts ...HydraOption) *HydraIntrospector {
	h := &HydraIntrospector{
		adminURL: strings.TrimRight(adminURL, "/"),
		client:   &http.Client{Timeout: defaultIntrospectTimeout},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HydraOption configures the introspector.
type HydraOption func(*HydraIntrospector)

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(client *http.Client) HydraOption {
	return func(h *HydraIntrospector) {
		if client != nil {
			h.client = client
		}
	}
}

type introspectionResponse struct {
	Active   bool   `json:"active"`
	ClientID string `json:"client_id"`
	Sub      string `json:"sub"`
	Scope    string `json:"scope"`
}

// Introspect posts the token to /admin/oauth2/introspect. The scope
// parameter lets Hydra report the token inactive when the required scope was
// never granted to it.
func (h *HydraIntrospector) Introspect(ctx context.Context, token string, requiredScopes []scope.Scope) (Introspection, error) {
	form := url.Values{}
	form.Set("token", token)
	if len(requiredScopes) > 0 {
		parts := make([]string, 0, len(requiredScopes))
		for _, s := range requiredScopes {
			parts = append(parts, string(s))
		}
		form.Set("scope", strings.Join(parts, " "))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		h.adminURL+"/admin/oauth2/introspect", strings.NewReader(form.Encode()))
	if err != nil {
		return Introspection{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return Introspection{}, fmt.Errorf("introspection request: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return Introspection{}, fmt.Errorf("introspection endpoint returned %d", resp.StatusCode)
	}

	var body introspectionResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Introspection{}, fmt.Errorf("decode introspection response: %w", err)
	}
	return Introspection{
		Active:   body.Active,
		ClientID: body.ClientID,
		Sub:      body.Sub,
	}, nil
}
