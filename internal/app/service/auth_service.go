package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/dto"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/model"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/repository"
	apperrors "github.com/ajay-nishad/GST-Invoices-sub001/internal/errors"
	"github.com/ajay-nishad/GST-Invoices-sub001/pkg/logger"
	"github.com/ajay-nishad/GST-Invoices-sub001/pkg/mailer"
	"github.com/ajay-nishad/GST-Invoices-sub001/pkg/util"
	"gorm.io/gorm"
)

const (
	// ResetTokenExpiry is how long a mailed reset link stays valid
	ResetTokenExpiry = 1 * time.Hour
	// ResetTokenLength is the byte length of the reset token
	ResetTokenLength = 32
)

var (
	errInvalidCredentials = apperrors.NewAuth(apperrors.AuthInvalidCredentials, "invalid email or password")
	errTokenRevoked       = apperrors.NewAuth(apperrors.AuthTokenRevoked, "token has been revoked")
	errResetTokenInvalid  = &apperrors.AppError{
		Kind:    apperrors.KindValidation,
		Code:    apperrors.AuthResetTokenInvalid,
		Message: "reset token is invalid or expired",
	}
)

type AuthConfig struct {
	JWTSecret     string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	AppURL        string
}

type AuthService interface {
	SignUp(ctx context.Context, input dto.SignUpInput) (*model.User, *util.TokenPair, error)
	SignIn(ctx context.Context, input dto.SignInInput) (*model.User, *util.TokenPair, error)
	SignOut(ctx context.Context, claims *util.Claims) error
	Refresh(ctx context.Context, input dto.RefreshInput) (*util.TokenPair, error)
	Authenticate(ctx context.Context, token string) (*util.Claims, error)
	GetCurrentUser(ctx context.Context, userID uint) (*model.User, error)
	RequestPasswordReset(ctx context.Context, input dto.ForgotPasswordInput) error
	ResetPassword(ctx context.Context, input dto.ResetPasswordInput) error
}

type authService struct {
	db        *gorm.DB
	userRepo  repository.UserRepository
	resetRepo repository.PasswordResetRepository
	tokens    TokenStore
	mail      mailer.Sender
	cfg       AuthConfig
	now       Clock
}

// NewAuthService builds the session service. tokens may be nil, in which
// case sign-out only drops the client side token.
func NewAuthService(
	db *gorm.DB,
	userRepo repository.UserRepository,
	resetRepo repository.PasswordResetRepository,
	tokens TokenStore,
	mail mailer.Sender,
	cfg AuthConfig,
) AuthService {
	return &authService{
		db:        db,
		userRepo:  userRepo,
		resetRepo: resetRepo,
		tokens:    tokens,
		mail:      mail,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *authService) SignUp(ctx context.Context, input dto.SignUpInput) (*model.User, *util.TokenPair, error) {
	if err := validate(&input); err != nil {
		return nil, nil, err
	}

	logger.Info("Attempting user registration", map[string]interface{}{
		"email": input.Email,
	})

	existing, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, dbError(err, "user")
	}
	if existing != nil {
		logger.Warn("Registration failed: email already exists", map[string]interface{}{
			"email": input.Email,
		})
		return nil, nil, apperrors.NewConflict(apperrors.AuthEmailAlreadyExists, "email already exists")
	}

	hashedPassword, err := util.HashPassword(input.Password)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return nil, nil, apperrors.NewDownstream(apperrors.InternalServerError, err)
	}

	user := &model.User{
		Email:        input.Email,
		PasswordHash: hashedPassword,
		Name:         input.Name,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, nil, dbError(err, "user")
	}

	tokens, err := s.issue(user)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("User registered successfully", map[string]interface{}{
		"user_id": user.ID,
	})
	return user, tokens, nil
}

func (s *authService) SignIn(ctx context.Context, input dto.SignInInput) (*model.User, *util.TokenPair, error) {
	if err := validate(&input); err != nil {
		return nil, nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Login failed: user not found", map[string]interface{}{
				"email": input.Email,
			})
			return nil, nil, errInvalidCredentials
		}
		return nil, nil, dbError(err, "user")
	}

	if !util.VerifyPassword(user.PasswordHash, input.Password) {
		logger.Warn("Login failed: invalid password", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, nil, errInvalidCredentials
	}

	tokens, err := s.issue(user)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("User logged in successfully", map[string]interface{}{
		"user_id": user.ID,
	})
	return user, tokens, nil
}

// SignOut blacklists the presented token until it would have expired anyway.
func (s *authService) SignOut(ctx context.Context, claims *util.Claims) error {
	if claims == nil {
		return apperrors.NewAuth(apperrors.AuthUnauthorized, "authentication required")
	}
	if s.tokens == nil {
		return nil
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	if err := s.tokens.BlacklistToken(ctx, claims.ID, remaining); err != nil {
		return apperrors.NewDownstream(apperrors.InternalExternalAPI, err)
	}

	logger.Info("User signed out", map[string]interface{}{
		"user_id": claims.UserID,
	})
	return nil
}

// Refresh rotates the pair. The presented refresh token is revoked.
func (s *authService) Refresh(ctx context.Context, input dto.RefreshInput) (*util.TokenPair, error) {
	if err := validate(&input); err != nil {
		return nil, err
	}

	claims, err := s.parse(ctx, input.RefreshToken, util.RefreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewAuth(apperrors.AuthTokenInvalid, "invalid token")
		}
		return nil, dbError(err, "user")
	}

	if s.tokens != nil {
		if err := s.tokens.BlacklistToken(ctx, claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
			return nil, apperrors.NewDownstream(apperrors.InternalExternalAPI, err)
		}
	}
	return s.issue(user)
}

// Authenticate validates an access token and checks the blacklist.
func (s *authService) Authenticate(ctx context.Context, token string) (*util.Claims, error) {
	return s.parse(ctx, token, util.AccessToken)
}

func (s *authService) parse(ctx context.Context, token string, want util.TokenType) (*util.Claims, error) {
	claims, err := util.ValidateToken(token, s.cfg.JWTSecret)
	if err != nil {
		if errors.Is(err, util.ErrExpiredToken) {
			return nil, apperrors.NewAuth(apperrors.AuthTokenExpired, "token has expired")
		}
		return nil, apperrors.NewAuth(apperrors.AuthTokenInvalid, "invalid token")
	}
	if claims.TokenType != want {
		return nil, apperrors.NewAuth(apperrors.AuthTokenInvalid, "invalid token type")
	}

	if s.tokens != nil {
		revoked, err := s.tokens.IsTokenBlacklisted(ctx, claims.ID)
		if err != nil {
			logger.Warn("Token blacklist lookup failed", map[string]interface{}{
				"user_id": claims.UserID,
				"error":   err.Error(),
			})
		}
		if revoked {
			return nil, errTokenRevoked
		}
	}
	return claims, nil
}

func (s *authService) GetCurrentUser(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, dbError(err, "user")
	}
	return user, nil
}

// RequestPasswordReset mails a single-use link. Unknown emails succeed
// silently so the endpoint cannot be used to probe accounts.
func (s *authService) RequestPasswordReset(ctx context.Context, input dto.ForgotPasswordInput) error {
	if err := validate(&input); err != nil {
		return err
	}

	user, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Password reset requested for non-existent email", map[string]interface{}{
				"email": input.Email,
			})
			return nil
		}
		return dbError(err, "user")
	}

	token, err := util.GenerateSecureToken(ResetTokenLength)
	if err != nil {
		return apperrors.NewDownstream(apperrors.InternalServerError, err)
	}

	reset := &model.PasswordReset{
		UserID:    user.ID,
		Email:     user.Email,
		Token:     token,
		ExpiresAt: s.now().Add(ResetTokenExpiry),
	}
	if err := s.resetRepo.Create(ctx, reset); err != nil {
		return dbError(err, "password reset")
	}

	body, err := mailer.RenderPasswordReset(mailer.PasswordResetData{
		Name:     user.Name,
		Link:     fmt.Sprintf("%s/auth/reset-password?token=%s", s.cfg.AppURL, token),
		ValidFor: "1 hour",
	})
	if err != nil {
		return apperrors.NewDownstream(apperrors.InternalServerError, err)
	}

	if _, err := s.mail.Send(ctx, mailer.Message{
		To:       user.Email,
		Subject:  "Reset your password",
		HTMLBody: body,
		Tag:      "password-reset",
	}); err != nil {
		logger.Error("Failed to send password reset email", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return apperrors.NewDownstream(apperrors.EmailSendFailed, err)
	}

	logger.Info("Password reset email sent", map[string]interface{}{
		"user_id": user.ID,
	})
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, input dto.ResetPasswordInput) error {
	if err := validate(&input); err != nil {
		return err
	}

	reset, err := s.resetRepo.FindByToken(ctx, input.Token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errResetTokenInvalid
		}
		return dbError(err, "password reset")
	}
	if !reset.Usable(s.now()) {
		return errResetTokenInvalid
	}

	hashedPassword, err := util.HashPassword(input.Password)
	if err != nil {
		return apperrors.NewDownstream(apperrors.InternalServerError, err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.resetRepo.WithTx(tx).MarkAsUsed(ctx, reset.ID, s.now()); err != nil {
			return err
		}
		return s.userRepo.WithTx(tx).UpdatePassword(ctx, reset.UserID, hashedPassword)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errResetTokenInvalid
		}
		return dbError(err, "password reset")
	}

	logger.Info("Password reset completed", map[string]interface{}{
		"user_id": reset.UserID,
	})
	return nil
}

func (s *authService) issue(user *model.User) (*util.TokenPair, error) {
	tokens, err := util.GenerateTokenPair(user.ID, user.Email, s.cfg.JWTSecret, s.cfg.AccessExpiry, s.cfg.RefreshExpiry)
	if err != nil {
		logger.Error("Failed to generate tokens", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, apperrors.NewDownstream(apperrors.InternalServerError, err)
	}
	return tokens, nil
}
