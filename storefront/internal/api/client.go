// Package api holds the storefront's clients for the catalog, cart and
// notification services.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/ecomart/pkg/httpx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrOutOfStock             = errors.New("product is out of stock")
	ErrInsufficientStock      = errors.New("insufficient stock")
	ErrNotFound               = errors.New("not found")
)

// Error is a non-2xx answer from a backend.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%d %s)", e.Message, e.Status, e.Code)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Status)
}

// Is lets callers match backend errors against the package sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrAuthenticationRequired:
		return e.Status == http.StatusUnauthorized
	case ErrOutOfStock:
		return e.Code == "out_of_stock"
	case ErrInsufficientStock:
		return e.Code == "insufficient_stock"
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// NewHTTPClient is shared by every storefront client.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

type client struct {
	baseURL string
	http    *http.Client
}

func newClient(baseURL string, hc *http.Client) client {
	return client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

func (c client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, httpx.MaxBodyBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

	var env httpx.ErrorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, httpx.MaxBodyBytes)).Decode(&env); err == nil {
		apiErr.Code = env.Code
		if env.Error != "" {
			apiErr.Message = env.Error
		}
	}
	return apiErr
}
