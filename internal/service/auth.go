// Package service contains the business rules of the application:
// input validation, ownership-checked orchestration of the repositories,
// and logging of business events. It knows nothing about HTTP.
//
//	Handler (HTTP) → Service (rules) → Repository (SQL)
//
// Every operation on user data takes the acting principal as an explicit
// argument. There is no ambient session state at this layer, so the whole
// package is testable with plain function calls and in-memory fakes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/foodlist/internal/apperror"
	"github.com/sakif/foodlist/internal/auth"
	"github.com/sakif/foodlist/internal/model"
	"github.com/sakif/foodlist/internal/repository"
)

// MaxUsernameLength bounds what registration accepts.
const MaxUsernameLength = 64

// AuthService is the credential store: registration, login and the
// lookup of the current user.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the user and the issued session token so the handler
// can set the cookie and respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Register creates an account and returns its id.
//
// The username is trimmed of surrounding whitespace and then stored as is;
// lookups are case-sensitive. The password is never trimmed.
func (s *AuthService) Register(ctx context.Context, username, password string) (int64, error) {
	username = strings.TrimSpace(username)

	if username == "" {
		return 0, apperror.ValidationFailed("username", "username and password required")
	}
	if password == "" {
		return 0, apperror.ValidationFailed("password", "username and password required")
	}
	if len(username) > MaxUsernameLength {
		return 0, apperror.ValidationFailed("username",
			fmt.Sprintf("username must be %d characters or less", MaxUsernameLength))
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return 0, apperror.ValidationFailed("password",
				fmt.Sprintf("password must be %d bytes or fewer", auth.MaxPasswordBytes))
		}
		return 0, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{Username: username, Hash: hash}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return 0, err
		}
		return 0, fmt.Errorf("service/auth: creating user: %w", err)
	}

	s.logger.Info("user registered",
		slog.Int64("userID", user.ID),
		slog.String("username", user.Username),
	)
	return user.ID, nil
}

// Authenticate returns the user id for a correct username/password pair.
//
// Both an unknown username and a wrong password return the same
// apperror.InvalidCredentials value, and both run one bcrypt comparison,
// so neither the response nor its timing says which half was wrong.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (int64, error) {
	user, err := s.lookupForLogin(ctx, username, password)
	if err != nil {
		return 0, err
	}
	return user.ID, nil
}

// Login authenticates and issues a session token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	user, err := s.lookupForLogin(ctx, username, password)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %d: %w", user.ID, err)
	}

	s.logger.Info("user logged in", slog.Int64("userID", user.ID))
	return &AuthResult{User: user, Token: token}, nil
}

func (s *AuthService) lookupForLogin(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)

	user, err := s.users.GetUserByUsername(ctx, username)
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		s.passwords.VerifyNone(password)
		s.logger.Debug("login rejected", slog.String("username", username))
		return nil, apperror.InvalidCredentials()
	case err != nil:
		return nil, fmt.Errorf("service/auth: looking up user: %w", err)
	}

	if err := s.passwords.Verify(user.Hash, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Error("stored password hash unreadable",
				slog.Int64("userID", user.ID),
				slog.String("error", err.Error()),
			)
		}
		s.logger.Debug("login rejected", slog.String("username", username))
		return nil, apperror.InvalidCredentials()
	}

	return user, nil
}

// CurrentUser returns the principal's own account.
func (s *AuthService) CurrentUser(ctx context.Context, principal int64) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, principal)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: fetching user %d: %w", principal, err)
	}
	return user, nil
}
