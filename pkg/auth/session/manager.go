package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/pim-console/pkg/auth"
	redisclient "github.com/angelmondragon/pim-console/pkg/redis"
	"github.com/google/uuid"
)

const logoutReasonTTL = 10 * time.Minute

var (
	ErrSessionNotFound = errors.New("console session not found")
	ErrMissingEmail    = errors.New("El correo del usuario es obligatorio")
	ErrInvalidRole     = errors.New("Rol de usuario inválido")
)

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	ConsoleSessionKey(sessionID string) string
	LogoutReasonKey(sessionID string) string
}

// Credentials are the upstream tokens and identity bound to one console session.
type Credentials struct {
	SessionID string     `json:"session_id"`
	Access    string     `json:"access"`
	Refresh   string     `json:"refresh"`
	User      auth.Actor `json:"user"`
	OpenedAt  time.Time  `json:"opened_at"`
}

// Manager stores console credentials in Redis.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
	now   func() time.Time
}

// NewManager constructs a session manager backed by Redis.
func NewManager(client *redisclient.Client, ttl time.Duration) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &Manager{
		store: client,
		keyer: client,
		ttl:   ttl,
		now:   time.Now,
	}, nil
}

// Open validates the tokens handed over by the login flow and stores them
// under a fresh session id. The session never outlives the refresh token.
func (m *Manager) Open(ctx context.Context, access, refresh string, user auth.Actor) (Credentials, error) {
	now := m.now()
	refreshClaims, err := auth.ValidateRefresh(refresh, now)
	if err != nil {
		return Credentials{}, err
	}
	accessClaims, err := auth.Decode(access)
	if err != nil {
		return Credentials{}, err
	}
	if strings.TrimSpace(user.Email) == "" {
		return Credentials{}, ErrMissingEmail
	}
	if user.Role == "" {
		user.Role = accessClaims.Role
	}
	if !user.Role.IsValid() {
		return Credentials{}, fmt.Errorf("%w: %q", ErrInvalidRole, user.Role)
	}
	if accessClaims.Role != "" && accessClaims.Role != user.Role {
		return Credentials{}, auth.ErrRoleChanged
	}

	ttl := m.ttl
	if refreshClaims.ExpiresAt != nil {
		if remaining := refreshClaims.ExpiresAt.Sub(now); remaining < ttl {
			ttl = remaining
		}
	}

	creds := Credentials{
		SessionID: uuid.NewString(),
		Access:    access,
		Refresh:   refresh,
		User:      user,
		OpenedAt:  now.UTC(),
	}
	if err := m.save(ctx, creds, ttl); err != nil {
		return Credentials{}, err
	}
	return creds, nil
}

// Load returns the credentials for sessionID.
func (m *Manager) Load(ctx context.Context, sessionID string) (Credentials, error) {
	if strings.TrimSpace(sessionID) == "" {
		return Credentials{}, ErrSessionNotFound
	}
	raw, err := m.store.Get(ctx, m.keyer.ConsoleSessionKey(sessionID))
	if err != nil {
		if errors.Is(err, redisclient.ErrNil) {
			return Credentials{}, ErrSessionNotFound
		}
		return Credentials{}, err
	}
	var creds Credentials
	if err := json.Unmarshal([]byte(raw), &creds); err != nil {
		return Credentials{}, fmt.Errorf("decoding console session: %w", err)
	}
	return creds, nil
}

// UpdateAccess replaces the access token after a refresh, keeping the expiry.
func (m *Manager) UpdateAccess(ctx context.Context, sessionID, access string) error {
	creds, err := m.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	creds.Access = access
	return m.save(ctx, creds, redisclient.KeepTTL)
}

// Terminate ends the session and records why, so the shell can tell the user.
func (m *Manager) Terminate(ctx context.Context, sessionID, reason string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrSessionNotFound
	}
	if err := m.store.Del(ctx, m.keyer.ConsoleSessionKey(sessionID)); err != nil {
		return err
	}
	if reason == "" {
		return nil
	}
	return m.store.Set(ctx, m.keyer.LogoutReasonKey(sessionID), reason, logoutReasonTTL)
}

// LogoutReason returns and clears the termination reason for sessionID.
func (m *Manager) LogoutReason(ctx context.Context, sessionID string) (string, error) {
	key := m.keyer.LogoutReasonKey(sessionID)
	reason, err := m.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redisclient.ErrNil) {
			return "", nil
		}
		return "", err
	}
	if err := m.store.Del(ctx, key); err != nil {
		return "", err
	}
	return reason, nil
}

func (m *Manager) save(ctx context.Context, creds Credentials, ttl time.Duration) error {
	payload, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("encoding console session: %w", err)
	}
	return m.store.Set(ctx, m.keyer.ConsoleSessionKey(creds.SessionID), string(payload), ttl)
}
