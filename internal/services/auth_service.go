package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/thereayou/slack-lite/internal/database"
	"github.com/thereayou/slack-lite/internal/models"
	"github.com/thereayou/slack-lite/pkg/auth"
)

const MinPasswordLength = 8

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Logout(ctx context.Context, token string) error
	// Authenticate resolves a bearer token to the user it was issued to.
	Authenticate(ctx context.Context, token string) (uuid.UUID, error)
	CurrentUser(ctx context.Context, callerID uuid.UUID) (*models.User, error)
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type AuthResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

type authService struct {
	db      *database.Database
	jwt     *auth.JWTManager
	revoker TokenRevoker
}

func NewAuthService(db *database.Database, jwt *auth.JWTManager, revoker TokenRevoker) AuthService {
	return &authService{db: db, jwt: jwt, revoker: revoker}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" {
		return nil, validationError("name is required")
	}
	if email == "" {
		return nil, validationError("email is required")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, validationError("password must be at least %d characters", MinPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.db.SaveUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	slog.InfoContext(ctx, "user registered", "user_id", user.ID)
	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.db.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *authService) issue(user *models.User) (*AuthResult, error) {
	token, expiresAt, err := s.jwt.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// Logout blacklists token until it would have expired anyway.
func (s *authService) Logout(ctx context.Context, token string) error {
	exp, err := s.jwt.Expiry(token)
	if err != nil {
		return ErrNotAuthenticated
	}
	if err := s.revoker.Revoke(ctx, token, time.Until(exp)); err != nil {
		return err
	}
	return nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (uuid.UUID, error) {
	userID, err := s.jwt.UserID(token)
	if err != nil {
		return uuid.Nil, ErrNotAuthenticated
	}

	revoked, err := s.revoker.IsRevoked(ctx, token)
	if err != nil {
		return uuid.Nil, err
	}
	if revoked {
		return uuid.Nil, ErrNotAuthenticated
	}
	return userID, nil
}

// CurrentUser returns nil for anonymous callers and deleted accounts.
func (s *authService) CurrentUser(ctx context.Context, callerID uuid.UUID) (*models.User, error) {
	if callerID == uuid.Nil {
		return nil, nil
	}
	user, err := s.db.GetUser(ctx, callerID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}
