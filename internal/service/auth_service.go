package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"petconnect/internal/auth"
	"petconnect/internal/model"
	"petconnect/internal/repository"
	"petconnect/internal/token"
)

// resetTokenTTL bounds the lifetime of a password reset token.
const resetTokenTTL = time.Hour

var (
	// ErrUserNotFound and ErrBadCredential are deliberately both mapped to
	// the same HTTP status at the boundary to avoid account enumeration.
	ErrUserNotFound  = errors.New("no user found with those credentials")
	ErrBadCredential = errors.New("wrong password")

	ErrEmailTaken        = errors.New("email already registered")
	ErrPhoneTaken        = errors.New("phone already registered")
	ErrUnverified        = errors.New("please verify your email before logging in")
	ErrMissingIdentity   = errors.New("email or phone required")
	ErrInvalidResetToken = errors.New("invalid or expired token")
)

// AuthService is the session issuer: registration, credential checks, token
// issuance and the password reset flow.
type AuthService interface {
	Register(ctx context.Context, name, email, phone, password string) (*model.User, error)
	// Login returns a signed session token plus the user snapshot it embeds.
	Login(ctx context.Context, email, phone, password string) (string, *model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	RequestReset(ctx context.Context, email, phone string) error
	CompleteReset(ctx context.Context, resetToken, newPassword string) error
}

type authService struct {
	users     repository.UserRepository
	jwtSecret string
	now       func() time.Time
	logger    zerolog.Logger
}

// NewAuthService creates a new AuthService with a scoped logger.
func NewAuthService(users repository.UserRepository, jwtSecret string, logger zerolog.Logger) AuthService {
	return &authService{
		users:     users,
		jwtSecret: jwtSecret,
		now:       time.Now,
		logger:    logger.With().Str("service", "AuthService").Logger(),
	}
}

// randomToken returns a 64-character hex token from a CSPRNG.
func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (s *authService) Register(ctx context.Context, name, email, phone, password string) (*model.User, error) {
	if email == "" && phone == "" {
		return nil, ErrMissingIdentity
	}
	if email != "" {
		existing, err := s.users.GetUserByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrEmailTaken
		}
	}
	if phone != "" {
		existing, err := s.users.GetUserByPhone(ctx, phone)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrPhoneTaken
		}
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	// A verification token is generated for a future email verification
	// flow; login does not currently require it.
	verification, err := randomToken()
	if err != nil {
		return nil, err
	}

	u := &model.User{
		ID:                uuid.NewString(),
		Name:              name,
		Email:             optional(email),
		Phone:             optional(phone),
		PasswordHash:      hash,
		Plan:              model.PlanFree,
		Role:              model.RoleUser,
		IsVerified:        true,
		VerificationToken: &verification,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		s.logger.Error().Err(err).Msg("failed to create user")
		return nil, err
	}
	s.logger.Info().Str("user_id", u.ID).Msg("user registered")
	return u, nil
}

func (s *authService) Login(ctx context.Context, email, phone, password string) (string, *model.User, error) {
	if email == "" && phone == "" {
		return "", nil, ErrMissingIdentity
	}

	var u *model.User
	var err error
	if email != "" {
		u, err = s.users.GetUserByEmail(ctx, email)
	} else {
		u, err = s.users.GetUserByPhone(ctx, phone)
	}
	if err != nil {
		return "", nil, err
	}
	if u == nil {
		return "", nil, ErrUserNotFound
	}
	if email != "" && !u.IsVerified {
		return "", nil, ErrUnverified
	}

	ok, err := auth.VerifyPassword(password, u.PasswordHash)
	if err != nil {
		return "", nil, err
	}
	if !ok {
		return "", nil, ErrBadCredential
	}

	// Lazy plan-expiry reconciliation: revert to free before issuing the
	// token so the token never embeds an expired paid plan.
	now := s.now()
	if u.PlanExpired(now) {
		if err := s.users.DowngradeToFree(ctx, u.ID); err != nil {
			return "", nil, err
		}
		s.logger.Info().Str("user_id", u.ID).Str("expired_plan", string(u.Plan)).Msg("plan expired, demoted to free")
		u.Plan = model.PlanFree
		u.PlanStart = nil
		u.PlanEnd = nil
	}

	signed, err := token.Sign(u, s.jwtSecret, now)
	if err != nil {
		return "", nil, err
	}
	return signed, u, nil
}

func (s *authService) GetUser(ctx context.Context, id string) (*model.User, error) {
	u, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *authService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrUserNotFound
	}

	ok, err := auth.VerifyPassword(oldPassword, u.PasswordHash)
	if err != nil {
		return err
	}
	if !ok {
		return ErrBadCredential
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, hash)
}

// RequestReset always reports success so callers cannot probe which
// identities exist. The reset token is only persisted for real users.
func (s *authService) RequestReset(ctx context.Context, email, phone string) error {
	if email == "" && phone == "" {
		return ErrMissingIdentity
	}

	var u *model.User
	var err error
	if email != "" {
		u, err = s.users.GetUserByEmail(ctx, email)
	} else {
		u, err = s.users.GetUserByPhone(ctx, phone)
	}
	if err != nil || u == nil {
		if err != nil {
			s.logger.Error().Err(err).Msg("reset lookup failed")
		}
		return nil
	}

	reset, err := randomToken()
	if err != nil {
		return nil
	}
	if err := s.users.SetResetToken(ctx, u.ID, reset, s.now().Add(resetTokenTTL)); err != nil {
		s.logger.Error().Err(err).Str("user_id", u.ID).Msg("failed to store reset token")
	}
	return nil
}

func (s *authService) CompleteReset(ctx context.Context, resetToken, newPassword string) error {
	u, err := s.users.GetUserByResetToken(ctx, resetToken, s.now())
	if err != nil {
		return err
	}
	if u == nil {
		return ErrInvalidResetToken
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	// ResetPassword consumes the token: it is single-use.
	return s.users.ResetPassword(ctx, u.ID, hash)
}
