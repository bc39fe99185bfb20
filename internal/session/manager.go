// Package session owns the signed-in identity: restoring it at start,
// establishing it on login and destroying it on logout.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/me/odflow/internal/logging"
	"github.com/me/odflow/internal/store"
	"github.com/me/odflow/pkg/model"
)

// Authenticator exchanges credentials for a session. *client.Client
// satisfies it.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*model.Session, error)
}

// Manager holds the current session and keeps the persisted copy in step
// with it. All methods are safe for concurrent use.
type Manager struct {
	auth     Authenticator
	store    store.SessionStore
	logger   *slog.Logger
	navigate func(model.Route)
	now      func() time.Time

	// op serializes Restore, Login and Logout so the store and memory never
	// interleave; mu guards current for readers.
	op      sync.Mutex
	mu      sync.RWMutex
	current *model.Session
}

// Option configures a Manager.
type Option func(*Manager)

// WithNavigator registers the function called with the route to show after
// every restore, login and logout.
func WithNavigator(fn func(model.Route)) Option {
	return func(m *Manager) {
		m.navigate = fn
	}
}

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a Manager with no current session. Call Restore before
// routing.
func NewManager(auth Authenticator, st store.SessionStore, logger *slog.Logger, opts ...Option) *Manager {
	m := &Manager{
		auth:     auth,
		store:    st,
		logger:   logging.Component(logger, "session"),
		navigate: func(model.Route) {},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Restore loads the persisted session. A missing, incomplete, unreadable or
// expired session yields (nil, nil) and routes to login; the latter three
// are also cleared from the store. Only a failing store is an error.
func (m *Manager) Restore(ctx context.Context) (*model.Session, error) {
	m.op.Lock()
	defer m.op.Unlock()

	blob, role, err := m.store.LoadSession(ctx)
	switch {
	case errors.Is(err, store.ErrNoSession):
		m.logger.Debug("no persisted session")
		m.setCurrent(nil)
		m.navigate(model.RouteLogin)
		return nil, nil
	case errors.Is(err, store.ErrTornSession):
		m.discard(ctx, "incomplete persisted session")
		return nil, nil
	case err != nil:
		m.logger.Error("load session failed", "error", err)
		m.setCurrent(nil)
		m.navigate(model.RouteLogin)
		return nil, model.NewStorageError("load session", err)
	}

	var sess model.Session
	if err := json.Unmarshal(blob, &sess); err != nil {
		m.discard(ctx, "undecodable persisted session", "error", err)
		return nil, nil
	}
	marker := model.ParseRole(role)
	if !marker.Valid() || sess.User.ID == "" || marker != model.ParseRole(string(sess.User.Role)) {
		m.discard(ctx, "persisted role does not match session", "role", role, "session_role", sess.User.Role)
		return nil, nil
	}
	sess.User.Role = marker
	if sess.IsExpired(m.now()) {
		m.discard(ctx, "persisted session expired", "expired_at", sess.ExpiresAt)
		return nil, nil
	}

	m.setCurrent(&sess)
	m.logger.Info("session restored", "user_id", sess.User.ID, "role", marker)
	m.navigate(model.RouteFor(marker))
	out := sess
	return &out, nil
}

// discard clears an unusable persisted session and routes to login.
func (m *Manager) discard(ctx context.Context, msg string, args ...any) {
	m.logger.Warn(msg, args...)
	if err := m.store.ClearSession(ctx); err != nil {
		m.logger.Error("clear session failed", "error", err)
	}
	m.setCurrent(nil)
	m.navigate(model.RouteLogin)
}

// Login authenticates and, on success, persists the session and its role
// as a pair before making it current. Nothing is persisted on failure, and
// a previously persisted session is left as it was.
func (m *Manager) Login(ctx context.Context, username, password string) (*model.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, model.NewValidationError("username and password are required")
	}

	m.op.Lock()
	defer m.op.Unlock()

	sess, err := m.auth.Login(ctx, username, password)
	if err != nil {
		m.logger.Warn("login failed", "username", username, "kind", model.KindOf(err))
		return nil, fmt.Errorf("login: %w", err)
	}

	blob, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	if err := m.store.SaveSession(ctx, blob, sess.User.Role.String()); err != nil {
		m.logger.Error("persist session failed", "user_id", sess.User.ID, "error", err)
		return nil, model.NewStorageError("save session", err)
	}

	m.setCurrent(sess)
	m.logger.Info("logged in", "user_id", sess.User.ID, "role", sess.User.Role)
	m.navigate(model.RouteFor(sess.User.Role))
	out := *sess
	return &out, nil
}

// Logout forgets the session in memory, then clears both persisted keys,
// and always routes to login. A store failure is returned after the fact.
func (m *Manager) Logout(ctx context.Context) error {
	m.op.Lock()
	defer m.op.Unlock()

	m.setCurrent(nil)
	err := m.store.ClearSession(ctx)
	if err != nil {
		m.logger.Error("clear session failed", "error", err)
		err = model.NewStorageError("clear session", err)
	} else {
		m.logger.Info("logged out")
	}
	m.navigate(model.RouteLogin)
	return err
}

// Current returns a copy of the current session.
func (m *Manager) Current() (model.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return model.Session{}, false
	}
	return *m.current, true
}

// User returns the signed-in user, or nil when signed out.
func (m *Manager) User() *model.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return nil
	}
	u := m.current.User
	return &u
}

// Token returns the bearer token of the current session, if any.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return ""
	}
	return m.current.Token
}

func (m *Manager) setCurrent(s *model.Session) {
	m.mu.Lock()
	m.current = s
	m.mu.Unlock()
}
