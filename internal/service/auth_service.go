// Package service implements the application's business logic.
package service

import (
	"context"
	"log/slog"
	"time"

	"anecdote/internal/auth"
	"anecdote/internal/middleware"
	"anecdote/internal/models"
	"anecdote/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// dummyHash is a valid bcrypt hash compared against when the username is
// unknown, so that failed logins take comparable time whether or not the
// account exists.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// AuthService is the credential and session manager: it turns a
// username/password pair into a new user (Register) or a verified identity
// plus session token (Authenticate), and resolves a token back to a live
// identity (Verify). Sessions are stateless signed tokens; there is no
// server-side session record and nothing to revoke beyond discarding the
// client-held token.
type AuthService struct {
	userRepo repository.UserRepository
	secret   string
	tokenTTL time.Duration
	now      func() time.Time
}

// RegisterInput carries signup fields. Email is optional.
type RegisterInput struct {
	Username string
	Password string
	Email    string
}

// NewAuthService returns an AuthService issuing tokens with the given secret
// and lifetime.
func NewAuthService(userRepo repository.UserRepository, secret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		secret:   secret,
		tokenTTL: tokenTTL,
		now:      time.Now,
	}
}

// Register creates a new user with a bcrypt-hashed password. The plaintext
// password is never stored or logged, and the hash is not echoed back.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if in.Username == "" || in.Password == "" {
		return nil, models.NewValidationError("Username and password are required")
	}
	if len(in.Password) < 6 {
		return nil, models.NewValidationError("Password must be at least 6 characters long")
	}

	existing, err := s.userRepo.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Username already taken")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hashed),
	}

	// The unique constraint is the real arbiter: two signups racing on the
	// same username get past the pre-check, but only one insert succeeds and
	// the other surfaces the same ConflictError.
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "user registered",
		slog.Uint64("user_id", uint64(user.ID)),
		slog.String("username", user.Username),
	)

	return user, nil
}

// Authenticate verifies credentials and issues a session token. Unknown
// username and wrong password are deliberately indistinguishable: same error
// kind, same message, and a dummy hash comparison on the unknown-username
// path to keep latency comparable.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, string, error) {
	if username == "" || password == "" {
		return nil, "", models.NewValidationError("Username and password are required")
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, "", models.NewInvalidCredentialsError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", models.NewInvalidCredentialsError()
	}

	now := s.now()
	token, err := auth.EncodeToken(auth.Claims{
		UserID:    user.ID,
		Username:  user.Username,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.tokenTTL),
	}, s.secret)
	if err != nil {
		return nil, "", models.NewInternalError(err)
	}

	return user, token, nil
}

// Verify decodes and validates a session token and re-resolves the embedded
// user against the store, so that accounts deleted after issuance are
// rejected with UserNotFoundError.
func (s *AuthService) Verify(ctx context.Context, tokenString string) (*models.User, error) {
	if tokenString == "" {
		return nil, models.NewMissingTokenError()
	}

	claims, err := auth.DecodeToken(tokenString, s.secret)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	return user, nil
}

// TokenTTL returns the configured session token lifetime. The transport layer
// uses it to align cookie expiry with token expiry.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenTTL
}
