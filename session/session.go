// Package session maps opaque tokens to authenticated sessions. Lifetime is
// a sliding window: every successful validation refreshes the idle clock.
// Expired sessions are removed lazily, either when a validation trips over
// one or during the opportunistic sweep that runs once the population
// crosses the capacity threshold.
package session

import (
	"context"
	"time"

	"github.com/goliatone/go-commerce-store/commerce"
	"github.com/goliatone/go-commerce-store/errs"
	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"
)

// Session is one active token record.
type Session struct {
	Token        string
	UserID       int64
	CreatedAt    time.Time
	LastActivity time.Time
}

// UserSource resolves accounts for login. The user service satisfies it.
type UserSource interface {
	GetByEmail(ctx context.Context, email string) (commerce.User, bool, error)
}

// Verifier is the external password verification collaborator.
type Verifier interface {
	Verify(plain, storedHash string) bool
}

// Config exposes session manager options.
type Config struct {
	// Timeout is the idle window after which a session expires.
	Timeout time.Duration

	// Capacity is the population threshold that triggers an opportunistic
	// cleanup of expired sessions on login.
	Capacity int
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:  time.Hour,
		Capacity: 10000,
	}
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	if c.Timeout <= 0 {
		return &ConfigError{Field: "Timeout", Message: "must be greater than 0"}
	}
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

// Manager owns the token map. The map is concurrent-safe; no external
// locking discipline is required of callers.
type Manager struct {
	cfg      Config
	users    UserSource
	verifier Verifier
	sessions *xsync.MapOf[string, Session]
	logger   *zap.Logger
	now      func() time.Time
}

// NewManager constructs a session manager around the user source and the
// password verification collaborator.
func NewManager(cfg Config, users UserSource, verifier Verifier, logger *zap.Logger) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		cfg:      cfg,
		users:    users,
		verifier: verifier,
		sessions: xsync.NewMapOf[string, Session](),
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Login authenticates the credentials and issues a new unique token. The
// returned AuthError is identical for unknown emails and wrong passwords;
// the distinction exists only in debug logs.
func (m *Manager) Login(ctx context.Context, email, password string) (string, error) {
	user, ok, err := m.users.GetByEmail(ctx, email)
	if err != nil {
		if errs.IsValidation(err) {
			m.logger.Debug("login rejected: malformed email")
			return "", errs.NewAuthError()
		}
		return "", err
	}
	if !ok {
		m.logger.Debug("login rejected: unknown email")
		return "", errs.NewAuthError()
	}

	if !m.verifier.Verify(password, user.PasswordHash) {
		m.logger.Debug("login rejected: password mismatch", zap.Int64("user_id", user.ID))
		return "", errs.NewAuthError()
	}

	now := m.now()
	token := uuid.NewString()
	m.sessions.Store(token, Session{
		Token:        token,
		UserID:       user.ID,
		CreatedAt:    now,
		LastActivity: now,
	})

	if m.sessions.Size() > m.cfg.Capacity {
		m.cleanup(now)
	}

	m.logger.Info("session created", zap.Int64("user_id", user.ID))
	return token, nil
}

// Logout removes the session and reports whether it was present.
func (m *Manager) Logout(token string) bool {
	_, found := m.sessions.LoadAndDelete(token)
	if found {
		m.logger.Info("session removed")
	}
	return found
}

// Validate reports whether the token maps to a live session. Expired
// sessions are removed on detection; live ones have their idle clock
// refreshed, making lifetime a sliding window. Expiry check and refresh run
// as one atomic map operation so a concurrent Logout can never be undone by
// a racing refresh.
func (m *Manager) Validate(token string) bool {
	now := m.now()
	var (
		expired     bool
		expiredUser int64
	)
	_, live := m.sessions.Compute(token, func(sess Session, loaded bool) (Session, bool) {
		if !loaded {
			return Session{}, true
		}
		if now.Sub(sess.LastActivity) > m.cfg.Timeout {
			expired = true
			expiredUser = sess.UserID
			return Session{}, true
		}
		sess.LastActivity = now
		return sess, false
	})
	if expired {
		m.logger.Debug("session expired", zap.Int64("user_id", expiredUser))
	}
	return live
}

// UserID resolves the session owner without refreshing the idle clock.
func (m *Manager) UserID(token string) (int64, bool) {
	sess, ok := m.sessions.Load(token)
	if !ok {
		return 0, false
	}
	if m.now().Sub(sess.LastActivity) > m.cfg.Timeout {
		return 0, false
	}
	return sess.UserID, true
}

// Len returns the current session population, expired entries included
// until they are lazily removed.
func (m *Manager) Len() int {
	return m.sessions.Size()
}

// cleanup removes every session idle longer than the timeout.
func (m *Manager) cleanup(now time.Time) {
	removed := 0
	m.sessions.Range(func(token string, sess Session) bool {
		if now.Sub(sess.LastActivity) > m.cfg.Timeout {
			m.sessions.Delete(token)
			removed++
		}
		return true
	})
	if removed > 0 {
		m.logger.Info("expired sessions removed",
			zap.Int("removed", removed),
			zap.Int("remaining", m.sessions.Size()))
	}
}
