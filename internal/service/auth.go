package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	apperrors "github.com/thumbdeck/account-server-go/internal/errors"
	"github.com/thumbdeck/account-server-go/internal/model"
	"github.com/thumbdeck/account-server-go/internal/repository"
	"github.com/thumbdeck/account-server-go/internal/token"
	"github.com/thumbdeck/account-server-go/internal/util"
)

const pqUniqueViolation = "23505"

// dummyPasswordHash is a valid bcrypt digest of a throwaway password. Login
// compares against it when the email is unknown so the unknown-email and
// wrong-password paths cost roughly the same amount of time.
const dummyPasswordHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// TokenRevoker records session token ids that may no longer be used.
// *token.Blacklist satisfies it.
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
}

// AuthService orchestrates registration, login and the password-reset
// handshake. It is the only component that touches the user repository,
// the password hasher and the session token service together.
type AuthService struct {
	userRepo  repository.UserRepository
	tokens    *token.Service
	blacklist TokenRevoker
	baseURL   string
	resetTTL  time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	tokens *token.Service,
	blacklist TokenRevoker,
	baseURL string,
	resetTTL time.Duration,
) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		tokens:    tokens,
		blacklist: blacklist,
		baseURL:   baseURL,
		resetTTL:  resetTTL,
	}
}

// NormalizeEmail fixes the case policy: emails are compared and stored
// lowercased.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, name, email, password string, country *string) (*model.PublicUser, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)

	switch {
	case name == "":
		return nil, apperrors.MissingRequired("name")
	case email == "":
		return nil, apperrors.MissingRequired("email")
	case password == "":
		return nil, apperrors.MissingRequired("password")
	}
	if !util.IsValidEmail(email) {
		return nil, apperrors.InvalidInput("email", "must be a valid email address")
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if existing != nil {
		return nil, apperrors.DuplicateEmail()
	}

	passwordHash, err := util.HashPassword(password)
	if err != nil {
		return nil, apperrors.Internal("Failed to hash password").WithCause(err)
	}

	user, err := s.userRepo.Create(ctx, model.CreateUserParams{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Country:      country,
	})
	if err != nil {
		// Two concurrent registrations can pass the existence check; the
		// unique index decides the winner.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return nil, apperrors.DuplicateEmail()
		}
		return nil, apperrors.Database(err)
	}

	log.Info().Str("userId", user.ID).Msg("user registered")

	public := user.Public()
	return &public, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.PublicUser, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, apperrors.MissingRequired("email and password")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, apperrors.Database(err)
	}
	if user == nil {
		util.CheckPasswordHash(password, dummyPasswordHash)
		return "", nil, apperrors.New(apperrors.ErrCodeNotFound, "Incorrect email")
	}

	if !util.CheckPasswordHash(password, user.PasswordHash) {
		return "", nil, apperrors.InvalidCredentials()
	}

	sessionToken, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, apperrors.Internal("Failed to issue session token").WithCause(err)
	}

	log.Info().Str("userId", user.ID).Msg("user logged in")

	public := user.Public()
	return sessionToken, &public, nil
}

// ForgotPassword writes a fresh reset token onto the account and returns the
// reset link. The raw token appears only in the link; the store holds its
// hash. A pending token from an earlier request is overwritten.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return "", apperrors.MissingRequired("email")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", apperrors.Database(err)
	}
	if user == nil {
		return "", apperrors.New(apperrors.ErrCodeNotFound, "Invalid email")
	}

	rawToken, err := util.GenerateToken()
	if err != nil {
		return "", apperrors.Internal("Failed to generate reset token").WithCause(err)
	}

	expiresAt := time.Now().Add(s.resetTTL)
	updated, err := s.userRepo.SetResetToken(ctx, user.ID, util.HashToken(rawToken), expiresAt)
	if err != nil {
		return "", apperrors.Database(err)
	}
	if updated == nil {
		// Account deleted between lookup and update; a link would be dead.
		return "", apperrors.New(apperrors.ErrCodeNotFound, "Invalid email")
	}

	log.Info().Str("userId", user.ID).Time("expiresAt", expiresAt).Msg("password reset token generated")

	return fmt.Sprintf("%s/api/auth/reset-password/%s", s.baseURL, rawToken), nil
}

// ResetPassword consumes a reset token. The lookup, password update and
// clearing of both reset fields happen in a single atomic store update, so a
// token can be consumed at most once even under concurrent calls.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	if rawToken == "" {
		return apperrors.InvalidResetToken()
	}
	if newPassword == "" {
		return apperrors.MissingRequired("newPassword")
	}

	passwordHash, err := util.HashPassword(newPassword)
	if err != nil {
		return apperrors.Internal("Failed to hash password").WithCause(err)
	}

	user, err := s.userRepo.ConsumeResetToken(ctx, util.HashToken(rawToken), passwordHash)
	if err != nil {
		return apperrors.Database(err)
	}
	if user == nil {
		// Wrong token and expired token are deliberately indistinguishable.
		return apperrors.InvalidResetToken()
	}

	log.Info().Str("userId", user.ID).Msg("password reset")

	return nil
}

// Logout always succeeds: session tokens are stateless and discarding the
// token on the client is what ends the session. When a verifiable token is
// presented its id is additionally denylisted for the remainder of its
// lifetime, so it can no longer pass the auth middleware.
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	if tokenString == "" {
		return nil
	}

	claims, err := s.tokens.Verify(tokenString)
	if err != nil {
		return nil
	}

	ttl := s.tokens.TTL()
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if err := s.blacklist.Revoke(ctx, claims.ID, ttl); err != nil {
		log.Warn().Err(err).Str("userId", claims.UserID).Msg("failed to revoke session token")
		return nil
	}

	log.Info().Str("userId", claims.UserID).Msg("user logged out")

	return nil
}
