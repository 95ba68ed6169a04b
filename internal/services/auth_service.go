package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/gmattworld/applibry-api/internal/apperr"
	"github.com/gmattworld/applibry-api/internal/config"
	"github.com/gmattworld/applibry-api/internal/dto"
	"github.com/gmattworld/applibry-api/internal/mailer"
	"github.com/gmattworld/applibry-api/internal/models"
	"github.com/gmattworld/applibry-api/internal/principal"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = apperr.Unauthorized("Invalid username or password")
	ErrInvalidToken       = apperr.Unauthorized("Invalid or expired refresh token")
	ErrInvalidCode        = apperr.Validation("Invalid or expired code")
	ErrNotVerified        = apperr.Forbidden("Account not verified")
	ErrAccountDisabled    = apperr.Forbidden("Account is disabled")
)

type AuthService struct {
	db     *gorm.DB
	cfg    *config.Config
	mailer mailer.Mailer
}

func NewAuthService(db *gorm.DB, cfg *config.Config, m mailer.Mailer) *AuthService {
	return &AuthService{db: db, cfg: cfg, mailer: m}
}

// Register creates an unverified account and mails an 8-digit verification
// code. The returned public key identifies the account during verification.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), passwordCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	code, codeHash, err := newCode()
	if err != nil {
		return nil, err
	}

	accountType := models.AccountType(req.AccountType)
	if accountType == "" {
		accountType = models.AccountStarter
	}
	expires := time.Now().UTC().Add(s.cfg.VerificationCodeTTL)
	user := models.User{
		Username:              email,
		Email:                 email,
		Password:              string(hash),
		PublicKey:             uuid.NewString(),
		VerificationCode:      codeHash,
		VerificationExpiresAt: &expires,
		FirstName:             req.FirstName,
		LastName:              req.LastName,
		AccountType:           accountType,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureEmailAvailable(tx, email); err != nil {
			return err
		}
		return tx.Omit("Role").Create(&user).Error
	})
	if apperr.IsUniqueViolation(err) {
		return nil, apperr.Conflict("Email already registered")
	}
	if err != nil {
		return nil, err
	}

	if err := s.mailer.SendVerificationCode(email, code); err != nil {
		slog.Error("failed to send verification code", "error", err, "user_id", user.ID)
	}
	return &dto.RegisterResponse{PublicKey: user.PublicKey, Email: user.Email}, nil
}

func (s *AuthService) Verify(ctx context.Context, req *dto.VerifyAccountRequest) (*dto.AuthResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("public_key = ?", req.PublicKey).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User")
		}
		return nil, err
	}
	if user.IsVerified {
		return nil, apperr.Conflict("Account already verified")
	}
	if !codeMatches(user.VerificationCode, user.VerificationExpiresAt, req.Code) {
		return nil, ErrInvalidCode
	}

	now := time.Now().UTC()
	err := s.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"is_verified":             true,
		"is_verified_at":          now,
		"verification_code":       "",
		"verification_expires_at": nil,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("verify account: %w", err)
	}
	user.IsVerified = true
	user.IsVerifiedAt = &now
	return s.generateTokenPair(ctx, &user)
}

// ResendVerification issues a fresh code. Unknown or already verified
// addresses are ignored so the endpoint does not reveal accounts.
func (s *AuthService) ResendVerification(ctx context.Context, req *dto.EmailRequest) error {
	user, err := s.userByEmail(ctx, req.Email)
	if err != nil || user.IsVerified {
		return ignoreNotFound(err)
	}
	code, codeHash, err := newCode()
	if err != nil {
		return err
	}
	expires := time.Now().UTC().Add(s.cfg.VerificationCodeTTL)
	err = s.db.WithContext(ctx).Model(user).Updates(map[string]interface{}{
		"verification_code":       codeHash,
		"verification_expires_at": expires,
	}).Error
	if err != nil {
		return fmt.Errorf("store verification code: %w", err)
	}
	if err := s.mailer.SendVerificationCode(user.Email, code); err != nil {
		slog.Error("failed to send verification code", "error", err, "user_id", user.ID)
	}
	return nil
}

// Login accepts the username or the email address.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	login := strings.ToLower(strings.TrimSpace(req.Username))

	var user models.User
	err := s.db.WithContext(ctx).Preload("Role.Permissions").
		Where("LOWER(username) = ? OR LOWER(email) = ?", login, login).
		First(&user).Error
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive || user.IsDeleted {
		return nil, ErrAccountDisabled
	}
	if !user.IsVerified {
		return nil, ErrNotVerified
	}
	return s.generateTokenPair(ctx, &user)
}

// Refresh rotates a refresh token: the presented one is revoked and a new
// pair is issued.
func (s *AuthService) Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.AuthResponse, error) {
	db := s.db.WithContext(ctx)
	tokenHash := hashToken(req.RefreshToken)

	var stored models.RefreshToken
	if err := db.Where("token_hash = ? AND revoked = ?", tokenHash, false).First(&stored).Error; err != nil {
		return nil, ErrInvalidToken
	}

	if err := db.Model(&stored).Update("revoked", true).Error; err != nil {
		return nil, fmt.Errorf("revoke refresh token: %w", err)
	}
	if time.Now().After(stored.ExpiresAt) {
		return nil, ErrInvalidToken
	}

	var user models.User
	if err := db.Preload("Role.Permissions").First(&user, "id = ?", stored.UserID).Error; err != nil {
		return nil, ErrInvalidToken
	}
	if !user.IsActive || user.IsDeleted {
		return nil, ErrAccountDisabled
	}
	return s.generateTokenPair(ctx, &user)
}

func (s *AuthService) Logout(ctx context.Context, req *dto.LogoutRequest) error {
	tokenHash := hashToken(req.RefreshToken)
	return s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ?", tokenHash).
		Update("revoked", true).Error
}

// InitiatePasswordReset mails a reset code. Unknown addresses are ignored.
func (s *AuthService) InitiatePasswordReset(ctx context.Context, req *dto.EmailRequest) error {
	user, err := s.userByEmail(ctx, req.Email)
	if err != nil {
		return ignoreNotFound(err)
	}
	code, codeHash, err := newCode()
	if err != nil {
		return err
	}
	expires := time.Now().UTC().Add(s.cfg.ResetCodeTTL)
	err = s.db.WithContext(ctx).Model(user).Updates(map[string]interface{}{
		"password_reset_code":       codeHash,
		"password_reset_expires_at": expires,
		"password_reset_requested":  true,
	}).Error
	if err != nil {
		return fmt.Errorf("store reset code: %w", err)
	}
	if err := s.mailer.SendPasswordResetCode(user.Email, code); err != nil {
		slog.Error("failed to send reset code", "error", err, "user_id", user.ID)
	}
	return nil
}

func (s *AuthService) VerifyResetCode(ctx context.Context, req *dto.VerifyResetCodeRequest) error {
	_, err := s.checkResetCode(ctx, req.Email, req.Code)
	return err
}

// ResetPassword sets a new password and signs the user out everywhere.
func (s *AuthService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	user, err := s.checkResetCode(ctx, req.Email, req.Code)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), passwordCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(user).Updates(map[string]interface{}{
			"password":                  string(hash),
			"password_reset_code":       "",
			"password_reset_expires_at": nil,
			"password_reset_requested":  false,
		}).Error
		if err != nil {
			return err
		}
		return revokeSessions(tx, user.ID)
	})
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	if err := s.mailer.SendPasswordChanged(user.Email); err != nil {
		slog.Error("failed to send password change notice", "error", err, "user_id", user.ID)
	}
	return nil
}

func (s *AuthService) ChangePassword(ctx context.Context, p principal.Principal, req *dto.ChangePasswordRequest) error {
	user, err := findByID[models.User](ctx, s.db, p.UserID, "User")
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return apperr.Validation("Current password is incorrect")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), passwordCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(user).Update("password", string(hash)).Error; err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if err := s.mailer.SendPasswordChanged(user.Email); err != nil {
		slog.Error("failed to send password change notice", "error", err, "user_id", user.ID)
	}
	return nil
}

func (s *AuthService) userByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("User")
		}
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) checkResetCode(ctx context.Context, email, code string) (*models.User, error) {
	user, err := s.userByEmail(ctx, email)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, ErrInvalidCode
		}
		return nil, err
	}
	if !user.PasswordResetRequested || !codeMatches(user.PasswordResetCode, user.PasswordResetExpiresAt, code) {
		return nil, ErrInvalidCode
	}
	return user, nil
}

func (s *AuthService) generateTokenPair(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	expiresAt := time.Now().Add(s.cfg.JWTAccessExpiry)
	accessToken, err := s.generateAccessToken(user, expiresAt)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.generateRefreshToken(ctx, user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresAt:    expiresAt.UTC(),
		User:         dto.NewUserResponse(user),
	}, nil
}

func (s *AuthService) generateAccessToken(user *models.User, expiresAt time.Time) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		principal.ClaimSubject:   user.Username,
		principal.ClaimSessionID: user.ID.String(),
		principal.ClaimType:      principal.TokenTypeAccess,
		"email":                  user.Email,
		"iat":                    now.Unix(),
		"nbf":                    now.Unix(),
		"exp":                    expiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) generateRefreshToken(ctx context.Context, user *models.User) (string, error) {
	rawToken, err := randomToken(32)
	if err != nil {
		return "", err
	}

	record := models.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: hashToken(rawToken),
		ExpiresAt: time.Now().Add(s.cfg.JWTRefreshExpiry),
	}

	if err := s.db.WithContext(ctx).Omit("User").Create(&record).Error; err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return rawToken, nil
}

func revokeSessions(tx *gorm.DB, userID uuid.UUID) error {
	return tx.Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true).Error
}

// newCode returns an 8-digit one-time code and its bcrypt hash.
func newCode() (string, string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(100_000_000))
	if err != nil {
		return "", "", fmt.Errorf("generate code: %w", err)
	}
	code := fmt.Sprintf("%08d", n.Int64())
	hash, err := bcrypt.GenerateFromPassword([]byte(code), passwordCost)
	if err != nil {
		return "", "", fmt.Errorf("hash code: %w", err)
	}
	return code, string(hash), nil
}

func codeMatches(hash string, expiresAt *time.Time, code string) bool {
	if hash == "" || expiresAt == nil || time.Now().After(*expiresAt) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}

func randomToken(n int) (string, error) {
	raw := make([]byte, n)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func ignoreNotFound(err error) error {
	if apperr.Is(err, apperr.KindNotFound) {
		return nil
	}
	return err
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}
