package shared

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionManager issues and resolves opaque bearer tokens backed by Redis.
type SessionManager struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

type sessionPayload struct {
	TenantID   string `json:"tenant_id"`
	UserID     string `json:"user_id"`
	LegacyRole string `json:"legacy_role"`
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(client *redis.Client, prefix string, ttl time.Duration) *SessionManager {
	if prefix == "" {
		prefix = "session"
	}
	return &SessionManager{client: client, prefix: prefix, ttl: ttl}
}

// Issue creates a new session token for the identity.
func (sm *SessionManager) Issue(ctx context.Context, id Identity) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(sessionPayload{
		TenantID:   id.TenantID,
		UserID:     id.UserID,
		LegacyRole: id.LegacyRole,
	})
	if err != nil {
		return "", err
	}
	if err := sm.client.Set(ctx, sm.redisKey(token), data, sm.ttl).Err(); err != nil {
		return "", fmt.Errorf("shared/session: store: %w", err)
	}
	return token, nil
}

// Resolve maps a bearer token back to its identity.
func (sm *SessionManager) Resolve(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}
	data, err := sm.client.Get(ctx, sm.redisKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("shared/session: load: %w", err)
	}
	var payload sessionPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("shared/session: decode: %w", err)
	}
	return &Identity{
		TenantID:   payload.TenantID,
		UserID:     payload.UserID,
		LegacyRole: payload.LegacyRole,
	}, nil
}

// Revoke deletes a session token. Unknown tokens are not an error.
func (sm *SessionManager) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return sm.client.Del(ctx, sm.redisKey(token)).Err()
}

// BearerToken extracts the bearer token from an Authorization header.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func (sm *SessionManager) redisKey(token string) string {
	return sm.prefix + ":" + token
}

// newToken pairs a UUID with random bytes so tokens are both unique and
// unguessable.
func newToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return uuid.NewString() + "." + base64.RawURLEncoding.EncodeToString(buf), nil
}
