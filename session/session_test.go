package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-commerce-store/commerce"
	"github.com/goliatone/go-commerce-store/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	users map[string]commerce.User
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (commerce.User, bool, error) {
	u, ok := f.users[email]
	return u, ok, nil
}

// fakeVerifier accepts a password when it equals the stored hash.
type fakeVerifier struct{}

func (fakeVerifier) Verify(plain, storedHash string) bool { return plain == storedHash }

func newTestManager(t *testing.T, cfg Config) (*Manager, *time.Time) {
	t.Helper()
	users := &fakeUsers{users: map[string]commerce.User{
		"alice@example.com": {ID: 1, Email: "alice@example.com", PasswordHash: "secret"},
	}}
	m, err := NewManager(cfg, users, fakeVerifier{}, nil)
	require.NoError(t, err)

	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }
	return m, &clock
}

func TestManager_ConfigValidation(t *testing.T) {
	_, err := NewManager(Config{Timeout: 0, Capacity: 10}, nil, nil, nil)
	require.Error(t, err)

	_, err = NewManager(Config{Timeout: time.Hour, Capacity: 0}, nil, nil, nil)
	require.Error(t, err)
}

func TestManager_LoginIssuesUniqueTokens(t *testing.T) {
	m, _ := newTestManager(t, DefaultConfig())
	ctx := context.Background()

	t1, err := m.Login(ctx, "alice@example.com", "secret")
	require.NoError(t, err)
	t2, err := m.Login(ctx, "alice@example.com", "secret")
	require.NoError(t, err)

	assert.NotEmpty(t, t1)
	assert.NotEqual(t, t1, t2)
	assert.Equal(t, 2, m.Len())

	id, ok := m.UserID(t1)
	require.True(t, ok)
	assert.Equal(t, int64(1), id)
}

func TestManager_LoginFailuresAreIndistinguishable(t *testing.T) {
	m, _ := newTestManager(t, DefaultConfig())
	ctx := context.Background()

	_, unknownErr := m.Login(ctx, "nobody@example.com", "secret")
	_, wrongErr := m.Login(ctx, "alice@example.com", "wrong")

	require.Error(t, unknownErr)
	require.Error(t, wrongErr)
	assert.True(t, errs.IsAuth(unknownErr))
	assert.True(t, errs.IsAuth(wrongErr))

	// The error text must not leak whether the account exists.
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
	assert.Zero(t, m.Len())
}

func TestManager_ValidateRefreshesIdleClock(t *testing.T) {
	m, clock := newTestManager(t, Config{Timeout: time.Hour, Capacity: 100})
	ctx := context.Background()

	token, err := m.Login(ctx, "alice@example.com", "secret")
	require.NoError(t, err)

	// Keep touching the session just inside the window. Each validation
	// slides the expiry forward, so the session outlives the raw timeout.
	for i := 0; i < 3; i++ {
		*clock = clock.Add(59 * time.Minute)
		assert.True(t, m.Validate(token))
	}

	// Once idle past the window it is gone, and removal is permanent.
	*clock = clock.Add(61 * time.Minute)
	assert.False(t, m.Validate(token))
	assert.Zero(t, m.Len())
	assert.False(t, m.Validate(token))
}

func TestManager_UserIDDoesNotRefresh(t *testing.T) {
	m, clock := newTestManager(t, Config{Timeout: time.Hour, Capacity: 100})
	ctx := context.Background()

	token, err := m.Login(ctx, "alice@example.com", "secret")
	require.NoError(t, err)

	*clock = clock.Add(59 * time.Minute)
	_, ok := m.UserID(token)
	require.True(t, ok)

	// The lookup above did not slide the window.
	*clock = clock.Add(2 * time.Minute)
	_, ok = m.UserID(token)
	assert.False(t, ok)
}

func TestManager_Logout(t *testing.T) {
	m, _ := newTestManager(t, DefaultConfig())
	ctx := context.Background()

	token, err := m.Login(ctx, "alice@example.com", "secret")
	require.NoError(t, err)

	assert.True(t, m.Logout(token))
	assert.False(t, m.Validate(token))
	assert.False(t, m.Logout(token))
	assert.False(t, m.Logout("no-such-token"))
}

func TestManager_LoginCleansUpExpiredAboveCapacity(t *testing.T) {
	m, clock := newTestManager(t, Config{Timeout: time.Hour, Capacity: 3})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := m.Login(ctx, "alice@example.com", "secret")
		require.NoError(t, err)
	}
	require.Equal(t, 3, m.Len())

	// All three go idle past the timeout. The next login pushes the
	// population over capacity and sweeps them out.
	*clock = clock.Add(2 * time.Hour)
	token, err := m.Login(ctx, "alice@example.com", "secret")
	require.NoError(t, err)

	assert.Equal(t, 1, m.Len())
	assert.True(t, m.Validate(token))
}

func TestManager_CleanupKeepsLiveSessions(t *testing.T) {
	m, clock := newTestManager(t, Config{Timeout: time.Hour, Capacity: 2})
	ctx := context.Background()

	stale, err := m.Login(ctx, "alice@example.com", "secret")
	require.NoError(t, err)

	*clock = clock.Add(2 * time.Hour)
	fresh, err := m.Login(ctx, "alice@example.com", "secret")
	require.NoError(t, err)

	// Population stayed at or under capacity, so no sweep ran yet.
	require.Equal(t, 2, m.Len())

	*clock = clock.Add(30 * time.Minute)
	third, err := m.Login(ctx, "alice@example.com", "secret")
	require.NoError(t, err)

	assert.False(t, m.Validate(stale))
	assert.True(t, m.Validate(fresh))
	assert.True(t, m.Validate(third))
	assert.Equal(t, 2, m.Len())
}

func TestManager_LogoutIsNotUndoneByConcurrentValidate(t *testing.T) {
	m, _ := newTestManager(t, DefaultConfig())
	ctx := context.Background()

	// Hammer Validate against Logout on the same token. Once Logout has
	// returned true the session is gone for good; a refresh racing the
	// removal must never re-insert it.
	for i := 0; i < 100; i++ {
		token, err := m.Login(ctx, "alice@example.com", "secret")
		require.NoError(t, err)

		start := make(chan struct{})
		var wg sync.WaitGroup
		for g := 0; g < 4; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				m.Validate(token)
			}()
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			m.Logout(token)
		}()
		close(start)
		wg.Wait()

		assert.False(t, m.Validate(token), "token must stay dead after logout")
		assert.Zero(t, m.Len())
	}
}

func TestManager_ConfigErrorMessage(t *testing.T) {
	err := Config{Timeout: -1, Capacity: 5}.Validate()
	require.Error(t, err)
	assert.Equal(t, "config error in field Timeout: must be greater than 0", fmt.Sprint(err))
}
