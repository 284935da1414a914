// Package services contains server-side business logic. This file implements
// UserService, which registers users and exchanges credentials for a signed
// access token.
package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/authgate/internal/common"
	"github.com/dmitrijs2005/authgate/internal/logging"
	"github.com/dmitrijs2005/authgate/internal/server/auth"
	"github.com/dmitrijs2005/authgate/internal/server/models"
	"github.com/dmitrijs2005/authgate/internal/server/repositories/repomanager"
)

// maxUsernameLength bounds usernames in bytes.
const maxUsernameLength = 255

// Token is what a successful login hands back to the client.
type Token struct {
	AccessToken string
	ExpiresAt   time.Time
}

// UserService provides authentication-related operations:
// - Register: create users with a hashed password
// - Login: verify credentials and mint an access token
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      auth.Hasher
	tokens      *auth.TokenService
	logger      logging.Logger
	now         func() time.Time

	dummySecret func() (string, error)
}

// NewUserService constructs a UserService. db may be nil when the repository
// manager is not backed by SQL.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, hasher auth.Hasher,
	tokens *auth.TokenService, logger logging.Logger) *UserService {

	s := &UserService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		tokens:      tokens,
		logger:      logger,
		now:         time.Now,
	}
	s.dummySecret = sync.OnceValues(func() (string, error) {
		dummy, err := common.MakeRandHexString(16)
		if err != nil {
			return "", err
		}
		return hasher.Hash(dummy)
	})
	return s
}

// WithClock replaces the time source used for token issuance.
func (s *UserService) WithClock(now func() time.Time) *UserService {
	s.now = now
	return s
}

// Register creates a new user. A taken username yields common.ErrDuplicateUser,
// whether it is caught by the lookup or by the store's uniqueness constraint.
func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)

	_, err := repo.GetUserByLogin(ctx, username)
	switch {
	case err == nil:
		return nil, common.ErrDuplicateUser
	case !errors.Is(err, common.ErrorNotFound):
		s.logger.Error(ctx, "user lookup failed", "username", username, "error", err)
		return nil, common.ErrorInternal
	}

	secret, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Error(ctx, "password hashing failed", "error", err)
		return nil, common.ErrorInternal
	}

	u, err := repo.Create(ctx, &models.User{UserName: username, PasswordSecret: secret})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, common.ErrDuplicateUser
		}
		s.logger.Error(ctx, "user create failed", "username", username, "error", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "user registered", "username", username, "user_id", u.ID)
	return u, nil
}

// Login verifies the password and, on success, returns a fresh access token.
// An unknown username and a wrong password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, username, password string) (*Token, error) {
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetUserByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.burnVerify(password)
			return nil, common.ErrInvalidCredentials
		}
		s.logger.Error(ctx, "user lookup failed", "username", username, "error", err)
		return nil, common.ErrorInternal
	}

	if !s.hasher.Verify(user.PasswordSecret, password) {
		return nil, common.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user.UserName, s.now())
	if err != nil {
		s.logger.Error(ctx, "token issue failed", "username", username, "error", err)
		return nil, common.ErrorInternal
	}

	return &Token{AccessToken: token, ExpiresAt: expiresAt}, nil
}

// burnVerify spends the same work a real verification would for unknown users.
func (s *UserService) burnVerify(password string) {
	secret, err := s.dummySecret()
	if err != nil {
		return
	}
	_ = s.hasher.Verify(secret, password)
}

func validateCredentials(username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return common.ErrInvalidRequest
	}
	if len(username) > maxUsernameLength {
		return common.ErrInvalidRequest
	}
	return nil
}
