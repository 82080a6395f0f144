package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/vantage-erp/vantage-erp/internal/shared"
)

// Service implements registration, login and token-to-identity
// resolution. New accounts always start with the user role; elevation
// goes through role requests.
type Service struct {
	repo   Repository
	tokens *TokenManager
	logger *slog.Logger
}

// NewService builds Service.
func NewService(repo Repository, tokens *TokenManager, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, tokens: tokens, logger: logger}
}

// Session is the login/register response payload.
type Session struct {
	Token string
	User  User
}

// Register creates an account and signs an initial token.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Session, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" {
		return Session{}, shared.Invalid("name", "name is required")
	}
	if email == "" {
		return Session{}, shared.Invalid("email", "email is required")
	}
	if len(in.Password) < 8 {
		return Session{}, shared.Invalid("password", "password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return Session{}, err
	}

	user, err := s.repo.Create(ctx, User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         shared.RoleUser,
		IsActive:     true,
	})
	if err != nil {
		return Session{}, err
	}

	token, err := s.tokens.Issue(user, time.Now().UTC())
	if err != nil {
		return Session{}, err
	}
	s.logger.Info("user registered", slog.Int64("user_id", user.ID))
	return Session{Token: token, User: user}, nil
}

// Login verifies credentials and signs a token. Unknown emails, wrong
// passwords and deactivated accounts all fail identically so the
// response does not leak which accounts exist.
func (s *Service) Login(ctx context.Context, creds Credentials) (Session, error) {
	invalid := shared.NewError(shared.KindUnauthorized, "credentials", "invalid email or password")

	user, err := s.repo.GetByEmail(ctx, normalizeEmail(creds.Email))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Session{}, invalid
		}
		return Session{}, err
	}
	if !user.IsActive {
		return Session{}, invalid
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)) != nil {
		return Session{}, invalid
	}

	token, err := s.tokens.Issue(user, time.Now().UTC())
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, User: user}, nil
}

// Resolve maps a bearer token to the live account behind it. Tokens of
// deleted or deactivated accounts stop working immediately.
func (s *Service) Resolve(ctx context.Context, token string) (User, error) {
	id, err := s.tokens.Parse(token)
	if err != nil {
		return User{}, err
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return User{}, shared.NewError(shared.KindUnauthorized, "token", "user not found or inactive")
		}
		return User{}, err
	}
	if !user.IsActive {
		return User{}, shared.NewError(shared.KindUnauthorized, "token", "user not found or inactive")
	}
	return user, nil
}

// Me loads the account for an authenticated identity.
func (s *Service) Me(ctx context.Context, userID int64) (User, error) {
	return s.repo.GetByID(ctx, userID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
