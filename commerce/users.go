package commerce

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/goliatone/go-commerce-store/cache"
	"github.com/goliatone/go-commerce-store/errs"
	"github.com/goliatone/go-commerce-store/store"
	"go.uber.org/zap"
)

const (
	selectUserSQL      = "SELECT id, username, email, password_hash, created_at, is_active FROM users"
	userByIDSQL        = selectUserSQL + " WHERE id = ?"
	userByEmailSQL     = selectUserSQL + " WHERE email = ?"
	insertUserSQL      = "INSERT INTO users (username, email, password_hash, created_at, is_active) VALUES (?, ?, ?, ?, ?)"
	updateUserSQL      = "UPDATE users SET username = ?, email = ?, is_active = ? WHERE id = ?"
	deleteUserSQL      = "DELETE FROM users WHERE id = ?"
	listUsersSQL       = selectUserSQL + " LIMIT ? OFFSET ?"
	countUsersSQL      = "SELECT COUNT(*) AS count FROM users"
	searchUsersSQL     = selectUserSQL + " WHERE username LIKE ? OR email LIKE ? LIMIT ?"
	maxUserListLimit   = 1000
	defaultSearchLimit = 50
)

// NewUser carries the fields required to create an account. Accounts start
// active.
type NewUser struct {
	Username     string
	Email        string
	PasswordHash string
}

// Validate applies the field-level rules before any store access.
func (n NewUser) Validate() error {
	return asValidationError(validation.ValidateStruct(&n,
		validation.Field(&n.Username, validation.Required),
		validation.Field(&n.Email, validation.Required, is.Email),
	))
}

// UserPatch is an explicit partial update. Nil fields keep their prior
// value; presence, not truthiness, decides what changes.
type UserPatch struct {
	Username *string
	Email    *string
	Active   *bool
}

// applyTo merges the patch over an existing record.
func (p UserPatch) applyTo(u User) User {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Active != nil {
		u.Active = *p.Active
	}
	return u
}

// UserService implements read-through cached access to account records.
// Every successful write clears both the point-lookup and list caches.
type UserService struct {
	db     *store.Manager
	byID   *cache.Cache[User]
	lists  *cache.Cache[[]User]
	keys   cache.KeySerializer
	logger *zap.Logger
}

// NewUserService constructs the service with its own cache instances.
func NewUserService(db *store.Manager, cacheCfg cache.Config, logger *zap.Logger) (*UserService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	byID, err := cache.New[User](cacheCfg, logger)
	if err != nil {
		return nil, err
	}
	lists, err := cache.New[[]User](cacheCfg, logger)
	if err != nil {
		return nil, err
	}
	return &UserService{
		db:     db,
		byID:   byID,
		lists:  lists,
		keys:   cache.NewDefaultKeySerializer(),
		logger: logger,
	}, nil
}

// GetByID returns the user and whether it exists. Missing records are not
// an error.
func (s *UserService) GetByID(ctx context.Context, id int64) (User, bool, error) {
	key := s.keys.SerializeKey("GetByID", id)
	gen := s.byID.Generation()
	if u, ok := s.byID.Get(key); ok {
		return u, true, nil
	}

	rows, err := s.db.Query(ctx, userByIDSQL, id)
	if err != nil {
		return User{}, false, err
	}
	if len(rows) == 0 {
		return User{}, false, nil
	}

	u := mapUser(rows[0])
	s.byID.Populate(key, u, gen)
	return u, true, nil
}

// GetByEmail resolves a user by email address.
func (s *UserService) GetByEmail(ctx context.Context, email string) (User, bool, error) {
	if err := validation.Validate(email, validation.Required, is.Email); err != nil {
		return User{}, false, &errs.ValidationError{Field: "email", Reason: err.Error()}
	}

	key := s.keys.SerializeKey("GetByEmail", email)
	gen := s.byID.Generation()
	if u, ok := s.byID.Get(key); ok {
		return u, true, nil
	}

	rows, err := s.db.Query(ctx, userByEmailSQL, email)
	if err != nil {
		return User{}, false, err
	}
	if len(rows) == 0 {
		return User{}, false, nil
	}

	u := mapUser(rows[0])
	s.byID.Populate(key, u, gen)
	return u, true, nil
}

// Create validates the payload, rejects duplicate emails, inserts the
// record, and returns the new identifier.
func (s *UserService) Create(ctx context.Context, n NewUser) (int64, error) {
	if err := n.Validate(); err != nil {
		return 0, err
	}

	if _, exists, err := s.GetByEmail(ctx, n.Email); err != nil {
		return 0, err
	} else if exists {
		return 0, &errs.ValidationError{Field: "email", Reason: "already registered"}
	}

	res, err := s.db.Exec(ctx, insertUserSQL, n.Username, n.Email, n.PasswordHash, time.Now().UTC(), true)
	if err != nil {
		return 0, err
	}

	s.invalidate()
	s.logger.Info("user created", zap.Int64("id", res.LastInsertID), zap.String("username", n.Username))
	return res.LastInsertID, nil
}

// Update merges the patch over the existing record and persists the result.
func (s *UserService) Update(ctx context.Context, id int64, patch UserPatch) (User, error) {
	existing, ok, err := s.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if !ok {
		return User{}, errs.NotFound("user", id)
	}

	merged := patch.applyTo(existing)
	if err := validation.ValidateStruct(&merged,
		validation.Field(&merged.Username, validation.Required),
		validation.Field(&merged.Email, validation.Required, is.Email),
	); err != nil {
		return User{}, asValidationError(err)
	}

	if _, err := s.db.Exec(ctx, updateUserSQL, merged.Username, merged.Email, merged.Active, id); err != nil {
		return User{}, err
	}

	s.invalidate()
	s.logger.Info("user updated", zap.Int64("id", id))
	return merged, nil
}

// Delete removes the record, failing when the id does not exist.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	_, ok, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return errs.NotFound("user", id)
	}

	if _, err := s.db.Exec(ctx, deleteUserSQL, id); err != nil {
		return err
	}

	s.invalidate()
	s.logger.Info("user deleted", zap.Int64("id", id))
	return nil
}

// List returns a page of users. Limit must fall in 1..1000 and offset must
// be non-negative.
func (s *UserService) List(ctx context.Context, limit, offset int) ([]User, error) {
	if limit <= 0 || limit > maxUserListLimit {
		return nil, &errs.ValidationError{Field: "limit", Reason: "must be between 1 and 1000"}
	}
	if offset < 0 {
		return nil, &errs.ValidationError{Field: "offset", Reason: "must be non-negative"}
	}

	key := s.keys.SerializeKey("List", listUsersSQL, limit, offset)
	gen := s.lists.Generation()
	if users, ok := s.lists.Get(key); ok {
		return users, nil
	}

	rows, err := s.db.Query(ctx, listUsersSQL, limit, offset)
	if err != nil {
		return nil, err
	}

	users := make([]User, 0, len(rows))
	for _, row := range rows {
		users = append(users, mapUser(row))
	}
	s.lists.Populate(key, users, gen)
	return users, nil
}

// Count returns the total number of users.
func (s *UserService) Count(ctx context.Context) (int, error) {
	rows, err := s.db.Query(ctx, countUsersSQL)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Int("count"), nil
}

// Search matches the keyword against username and email.
func (s *UserService) Search(ctx context.Context, keyword string, limit int) ([]User, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	term := "%" + keyword + "%"
	key := s.keys.SerializeKey("Search", searchUsersSQL, term, limit)
	gen := s.lists.Generation()
	if users, ok := s.lists.Get(key); ok {
		return users, nil
	}

	rows, err := s.db.Query(ctx, searchUsersSQL, term, term, limit)
	if err != nil {
		return nil, err
	}

	users := make([]User, 0, len(rows))
	for _, row := range rows {
		users = append(users, mapUser(row))
	}
	s.lists.Populate(key, users, gen)
	return users, nil
}

func (s *UserService) invalidate() {
	s.byID.InvalidateAll()
	s.lists.InvalidateAll()
}
