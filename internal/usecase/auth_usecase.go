package usecase

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"strings"
	"time"

	"mollywear-backend/internal/domain"
	"mollywear-backend/pkg/cache"
	"mollywear-backend/pkg/logger"
	"mollywear-backend/pkg/utils"
)

// OTPMailer sends one-time login codes.
type OTPMailer interface {
	SendOTP(ctx context.Context, toEmail, code string, expiresIn time.Duration) error
}

// AuthUsecase implements passwordless email OTP login.
type AuthUsecase struct {
	userRepo          domain.UserRepository
	mailer            OTPMailer
	cache             cache.CacheService
	otpExpiry         time.Duration
	accessTokenExpiry time.Duration
}

func NewAuthUsecase(
	userRepo domain.UserRepository,
	mailer OTPMailer,
	cache cache.CacheService,
	otpExpiry, accessTokenExpiry time.Duration,
) *AuthUsecase {
	return &AuthUsecase{
		userRepo:          userRepo,
		mailer:            mailer,
		cache:             cache,
		otpExpiry:         otpExpiry,
		accessTokenExpiry: accessTokenExpiry,
	}
}

func otpCacheKey(email string) string {
	return "otp:" + email
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return "", fmt.Errorf("a valid email address is required")
	}
	return email, nil
}

// RequestOTP generates a 6-digit code, caches it against the email, and
// mails it out. Re-requesting replaces the previous code.
func (u *AuthUsecase) RequestOTP(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	code, err := generateOTP()
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}

	u.cache.Set(otpCacheKey(email), code, u.otpExpiry)

	if err := u.mailer.SendOTP(ctx, email, code, u.otpExpiry); err != nil {
		u.cache.Delete(otpCacheKey(email))
		logger.Get().Error().Err(err).Msg("failed to send OTP email")
		return fmt.Errorf("failed to send login code")
	}
	return nil
}

// VerifyOTP checks the code, upserts the account on first login, and
// mints a JWT for the session.
func (u *AuthUsecase) VerifyOTP(ctx context.Context, email, code string) (string, *domain.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return "", nil, err
	}

	cached, found := u.cache.Get(otpCacheKey(email))
	if !found {
		return "", nil, fmt.Errorf("code expired or not requested")
	}
	expected, _ := cached.(string)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(strings.TrimSpace(code))) != 1 {
		return "", nil, fmt.Errorf("invalid code")
	}

	// Single use.
	u.cache.Delete(otpCacheKey(email))

	user := &domain.User{Email: email, Role: "customer"}
	if err := u.userRepo.Upsert(ctx, user); err != nil {
		return "", nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	token, err := utils.GenerateJWT(user.ID, user.Email, user.Role, u.accessTokenExpiry)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// --- Profile & Addresses ---

func (u *AuthUsecase) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return u.userRepo.GetByID(ctx, id)
}

func (u *AuthUsecase) UpdateProfile(ctx context.Context, userID, firstName, lastName, phone string) (*domain.User, error) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.FirstName = firstName
	user.LastName = lastName
	user.Phone = phone
	if err := u.userRepo.Upsert(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (u *AuthUsecase) AddAddress(ctx context.Context, userID string, addr domain.Address) (*domain.Address, error) {
	addr.UserID = userID
	if err := u.userRepo.AddAddress(ctx, &addr); err != nil {
		return nil, err
	}
	return &addr, nil
}

func (u *AuthUsecase) UpdateAddress(ctx context.Context, userID string, addr domain.Address) (*domain.Address, error) {
	addr.UserID = userID
	if addr.ID == "" {
		return nil, fmt.Errorf("address ID required")
	}
	if err := u.userRepo.UpdateAddress(ctx, &addr); err != nil {
		return nil, err
	}
	return &addr, nil
}

func (u *AuthUsecase) GetAddresses(ctx context.Context, userID string) ([]domain.Address, error) {
	return u.userRepo.GetAddresses(ctx, userID)
}

func (u *AuthUsecase) DeleteAddress(ctx context.Context, userID, addressID string) error {
	return u.userRepo.DeleteAddress(ctx, userID, addressID)
}

// --- Admin ---

func (u *AuthUsecase) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	return u.userRepo.List(ctx, limit, offset)
}
