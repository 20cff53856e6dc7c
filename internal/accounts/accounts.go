// Package accounts registers users, verifies credentials and lets
// administrators enable or disable accounts.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/dshills/dropship-mcp/internal/storage"
	"github.com/dshills/dropship-mcp/pkg/types"
)

// MinPasswordLength is the shortest accepted password
const MinPasswordLength = 8

// ErrInvalidCredentials is returned when a username/password pair does not match
var ErrInvalidCredentials = fmt.Errorf("%w: invalid username or password", types.ErrForbidden)

// Service manages user accounts
type Service struct {
	store  storage.Storage
	logger *zap.Logger
	cost   int
}

// NewService creates an account service hashing with bcrypt's default cost
func NewService(store storage.Storage, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger, cost: bcrypt.DefaultCost}
}

// RegisterRequest carries a new account
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r RegisterRequest) validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return types.Invalidf("username is required")
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return types.Invalidf("email %q is not valid", r.Email)
	}
	if len(r.Password) < MinPasswordLength {
		return types.Invalidf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

// Register creates an enabled CUSTOMER account
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*types.User, error) {
	return s.CreateUser(ctx, req, types.RoleCustomer)
}

// CreateUser creates an enabled account with the given role
func (s *Service) CreateUser(ctx context.Context, req RegisterRequest, role types.Role) (*types.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := req.validate(); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, types.Invalidf("unknown role %q", role)
	}

	hash, err := HashPassword(req.Password, s.cost)
	if err != nil {
		return nil, err
	}

	user := &types.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		Enabled:      true,
	}

	err = s.store.RunAtomically(ctx, func(tx storage.Store) error {
		if _, err := tx.GetUserByUsername(ctx, user.Username); err == nil {
			return fmt.Errorf("%w: %s", types.ErrUsernameTaken, user.Username)
		} else if !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		if _, err := tx.GetUserByEmail(ctx, user.Email); err == nil {
			return fmt.Errorf("%w: %s", types.ErrEmailTaken, user.Email)
		} else if !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		return tx.CreateUser(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username),
		zap.String("role", string(role)))
	return user, nil
}

// Authenticate checks a username/password pair and returns the account.
// Disabled accounts are refused with types.ErrUserDisabled.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*types.User, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.Enabled {
		return nil, fmt.Errorf("%w: %s", types.ErrUserDisabled, username)
	}
	return user, nil
}

// ResolveCaller authenticates the credentials and returns a caller carrying
// the account's role. Unknown users and wrong passwords both report
// ErrInvalidCredentials.
func (s *Service) ResolveCaller(ctx context.Context, username, password string) (types.Caller, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		s.logger.Debug("caller rejected", zap.String("username", username), zap.Error(err))
		return types.Caller{}, err
	}
	return types.Caller{Username: user.Username, Roles: []types.Role{user.Role}}, nil
}

// ListUsers returns every account
func (s *Service) ListUsers(ctx context.Context) ([]*types.User, error) {
	return s.store.ListUsers(ctx)
}

// ToggleUser flips the enabled flag of an account and returns it
func (s *Service) ToggleUser(ctx context.Context, userID int64) (*types.User, error) {
	var user *types.User
	err := s.store.RunAtomically(ctx, func(tx storage.Store) error {
		var err error
		user, err = tx.GetUser(ctx, userID)
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: id %d", types.ErrUserNotFound, userID)
		}
		if err != nil {
			return err
		}
		user.Enabled = !user.Enabled
		return tx.SetUserEnabled(ctx, userID, user.Enabled)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user toggled", zap.Int64("user_id", userID), zap.Bool("enabled", user.Enabled))
	return user, nil
}

// HashPassword hashes password with bcrypt at cost
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
