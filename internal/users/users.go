package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/your-org/firewatch/internal/models"
	"github.com/your-org/firewatch/internal/storage"
)

var (
	// ErrMissingField is returned when user id or display name is empty.
	ErrMissingField = errors.New("missing required field")
	// ErrInvalidRole is returned for a role outside {admin, student}.
	ErrInvalidRole = errors.New("invalid role")
	// ErrMalformed is returned when the persisted session cannot be decoded.
	ErrMalformed = errors.New("malformed stored session")
)

const payloadVersion = 1

type savedUser struct {
	Version int         `json:"version"`
	User    models.User `json:"user"`
}

// Manager owns the persisted user session under the currentUser key. While
// no session is stored, the rest of the service is inaccessible through the
// API layer.
type Manager struct {
	kv      storage.KV
	timeout time.Duration

	mu sync.Mutex
}

func NewManager(kv storage.KV, loginTimeout time.Duration) *Manager {
	return &Manager{kv: kv, timeout: loginTimeout}
}

// Login authenticates the identity and persists it. The operation is bound
// to a timeout so a slow backing store cannot hang the caller; a persist
// failure fails the login.
func (m *Manager) Login(ctx context.Context, userID, displayName string, role models.Role) (models.User, error) {
	if strings.TrimSpace(userID) == "" {
		return models.User{}, fmt.Errorf("%w: user_id", ErrMissingField)
	}
	if strings.TrimSpace(displayName) == "" {
		return models.User{}, fmt.Errorf("%w: display_name", ErrMissingField)
	}
	if !role.Valid() {
		return models.User{}, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	user := models.User{
		UserID:          userID,
		DisplayName:     displayName,
		Role:            role,
		AuthenticatedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(savedUser{Version: payloadVersion, User: user})
	if err != nil {
		return models.User{}, fmt.Errorf("marshal user: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.kv.Put(ctx, storage.KeyCurrentUser, data); err != nil {
		return models.User{}, fmt.Errorf("persist user: %w", err)
	}

	slog.Info("user logged in", "user_id", user.UserID, "role", user.Role)
	return user, nil
}

// Current reads the persisted session. The second return is false when no
// session is stored.
func (m *Manager) Current(ctx context.Context) (models.User, bool, error) {
	data, err := m.kv.Get(ctx, storage.KeyCurrentUser)
	if errors.Is(err, storage.ErrNotFound) {
		return models.User{}, false, nil
	}
	if err != nil {
		return models.User{}, false, err
	}

	var payload savedUser
	if err := json.Unmarshal(data, &payload); err != nil {
		return models.User{}, false, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if payload.Version != payloadVersion {
		return models.User{}, false, fmt.Errorf("%w: unknown version %d", ErrMalformed, payload.Version)
	}
	return payload.User, true, nil
}

// Logout clears the persisted session. Logging out while logged out is a
// no-op.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.kv.Delete(ctx, storage.KeyCurrentUser); err != nil {
		return fmt.Errorf("clear user session: %w", err)
	}
	slog.Info("user logged out")
	return nil
}
