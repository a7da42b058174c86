package carts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/vinoteca/vinoteca-backend/pkg/errors"
	"github.com/vinoteca/vinoteca-backend/pkg/types"
)

// TokenSource mints a bearer credential for the current identity per call.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// HTTPGateway talks to the CRUD API's /api/carts routes with a bearer token.
// It is the remote half the cart synchronizer uses when it runs apart from
// the API process.
type HTTPGateway struct {
	baseURL string
	tokens  TokenSource
	client  *http.Client
}

// NewHTTPGateway builds a gateway against the given API base URL.
func NewHTTPGateway(baseURL string, tokens TokenSource, client *http.Client) (*HTTPGateway, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base url required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token source required")
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		client:  client,
	}, nil
}

type cartEnvelope struct {
	Data  types.CartLines `json:"data"`
	Error *types.APIError `json:"error"`
}

// Fetch loads the user's remote cart; a missing record carries the
// not-found code.
func (g *HTTPGateway) Fetch(ctx context.Context, userID string) (types.CartLines, error) {
	resp, err := g.do(ctx, http.MethodGet, userID, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := statusError(resp.StatusCode); err != nil {
		return nil, err
	}

	var envelope cartEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeTransient, err, "decode cart response")
	}
	return envelope.Data, nil
}

// Upsert replaces the user's remote cart.
func (g *HTTPGateway) Upsert(ctx context.Context, userID string, lines types.CartLines) error {
	body, err := json.Marshal(map[string]any{"cart": lines})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart")
	}
	resp, err := g.do(ctx, http.MethodPost, userID, bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return statusError(resp.StatusCode)
}

// Delete removes the user's remote cart; 404 counts as success.
func (g *HTTPGateway) Delete(ctx context.Context, userID string) error {
	resp, err := g.do(ctx, http.MethodDelete, userID, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	return statusError(resp.StatusCode)
}

func (g *HTTPGateway) do(ctx context.Context, method, userID string, body *bytes.Reader) (*http.Response, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	token, err := g.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/api/carts/%s", g.baseURL, userID)
	var req *http.Request
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, url, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, url, nil)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build cart request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeTransient, err, "cart request failed")
	}
	return resp, nil
}

func statusError(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized:
		return pkgerrors.New(pkgerrors.CodeUnauthenticated, "credential rejected")
	case status == http.StatusForbidden:
		return pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
	case status == http.StatusNotFound:
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	default:
		return pkgerrors.New(pkgerrors.CodeTransient, fmt.Sprintf("cart request failed with status %d", status))
	}
}
