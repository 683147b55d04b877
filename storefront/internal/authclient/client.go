// Package authclient talks to the external identity service that issues
// the bearer tokens every backend accepts.
package authclient

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

	"github.com/fjod/ecomart/storefront/internal/session"
	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoToken            = errors.New("no token received")
	ErrRegistration       = errors.New("registration failed")
)

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	FirstName string `json:"firstName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type tokenResponse struct {
	Bearer  string `json:"bearer"`
	Message string `json:"message"`
}

// Login exchanges credentials for a session. The token is only decoded
// here; the backends verify it.
func (c *Client) Login(ctx context.Context, email, password string) (session.Session, error) {
	var resp tokenResponse
	status, err := c.post(ctx, "/login", loginRequest{Username: email, Password: password}, &resp)
	if err != nil {
		return session.Session{}, err
	}
	if status == http.StatusUnauthorized || status == http.StatusBadRequest || status == http.StatusForbidden {
		return session.Session{}, fmt.Errorf("%w: %s", ErrInvalidCredentials, messageOr(resp.Message, "login failed"))
	}
	if status >= 300 {
		return session.Session{}, fmt.Errorf("login: identity service returned %d: %s", status, messageOr(resp.Message, http.StatusText(status)))
	}
	if resp.Bearer == "" {
		return session.Session{}, ErrNoToken
	}
	return SessionFromToken(resp.Bearer, email)
}

func (c *Client) Register(ctx context.Context, firstName, email, password string) error {
	var resp tokenResponse
	status, err := c.post(ctx, "/register", registerRequest{FirstName: firstName, Email: email, Password: password}, &resp)
	if err != nil {
		return err
	}
	if status >= 300 {
		return fmt.Errorf("%w: %s", ErrRegistration, messageOr(resp.Message, http.StatusText(status)))
	}
	return nil
}

// SessionFromToken reads role, name and expiry from the token claims. The
// role defaults to USER and the name falls back to the local part of email.
func SessionFromToken(token, email string) (session.Session, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return session.Session{}, fmt.Errorf("decode token: %w", err)
	}

	s := session.Session{
		Token: token,
		Email: email,
		Role:  claimString(claims, "role"),
		Name:  claimString(claims, "firstName"),
	}
	if s.Email == "" {
		s.Email = claimString(claims, "email")
	}
	if s.Role == "" {
		s.Role = session.DefaultRole
	}
	if s.Name == "" {
		s.Name = claimString(claims, "name")
	}
	if s.Name == "" {
		s.Name, _, _ = strings.Cut(s.Email, "@")
	}
	if exp, ok := claims["exp"].(float64); ok {
		s.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return s, nil
}

func claimString(c jwt.MapClaims, key string) string {
	v, _ := c[key].(string)
	return v
}

func messageOr(msg, fallback string) string {
	if msg != "" {
		return msg
	}
	return fallback
}

func (c *Client) post(ctx context.Context, path string, body, out any) (int, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("identity service %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	if len(raw) > 0 {
		// error bodies are not always JSON; the status still decides
		_ = json.Unmarshal(raw, out)
	}
	return resp.StatusCode, nil
}
