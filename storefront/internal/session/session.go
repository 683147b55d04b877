// Package session keeps the logged-in shopper's token and profile between
// CLI invocations.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fjod/ecomart/storefront/internal/storage"
	"github.com/rs/zerolog"
)

const StorageKey = "session"

const DefaultRole = "USER"

type Session struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt,omitzero"`
}

// Expired reports whether the token's exp claim has passed. A session
// without an expiry never expires locally.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

type Manager struct {
	mu      sync.Mutex
	storage storage.Storage
	log     zerolog.Logger
	current *Session
	now     func() time.Time
}

func NewManager(s storage.Storage, log zerolog.Logger) *Manager {
	return &Manager{storage: s, log: log, now: time.Now}
}

// Load restores the saved session. A corrupt or expired entry is erased.
func (m *Manager) Load(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = nil
	raw, err := m.storage.Get(ctx, StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil || s.Token == "" {
		m.log.Warn().Err(err).Msg("stored session is unreadable, logging out")
		return m.erase(ctx)
	}
	if s.Expired(m.now()) {
		m.log.Info().Str("email", s.Email).Msg("stored session has expired")
		return m.erase(ctx)
	}
	m.current = &s
	return nil
}

func (m *Manager) Save(ctx context.Context, s Session) error {
	if s.Role == "" {
		s.Role = DefaultRole
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.storage.Set(ctx, StorageKey, raw); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	m.current = &s
	return nil
}

func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.erase(ctx)
}

func (m *Manager) Current() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return Session{}, false
	}
	return *m.current, true
}

func (m *Manager) erase(ctx context.Context) error {
	m.current = nil
	if err := m.storage.Delete(ctx, StorageKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
