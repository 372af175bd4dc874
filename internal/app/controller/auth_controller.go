package controller

import (
	"net/http"

	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/dto"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/model"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/service"
	apperrors "github.com/ajay-nishad/GST-Invoices-sub001/internal/errors"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/middleware"
	"github.com/ajay-nishad/GST-Invoices-sub001/pkg/util"
	"github.com/gin-gonic/gin"
)

type AuthController struct {
	authService   service.AuthService
	secureCookies bool
}

// NewAuthController builds the handler. secureCookies marks the session
// cookie Secure and should be on outside local development.
func NewAuthController(authService service.AuthService, secureCookies bool) *AuthController {
	return &AuthController{
		authService:   authService,
		secureCookies: secureCookies,
	}
}

type authResponse struct {
	Message string          `json:"message"`
	User    *model.User     `json:"user,omitempty"`
	Tokens  *util.TokenPair `json:"tokens"`
}

// SignUp handles user registration
// POST /api/v1/auth/signup
func (ctrl *AuthController) SignUp(c *gin.Context) {
	var req dto.SignUpInput
	if !bindJSON(c, &req) {
		return
	}

	user, tokens, err := ctrl.authService.SignUp(c.Request.Context(), req)
	if err != nil {
		fail(c, "Sign up failed", err, map[string]interface{}{"email": req.Email})
		return
	}

	middleware.GetLoggerFromContext(c).Info("User signed up", map[string]interface{}{
		"user_id": user.ID,
	})
	ctrl.setSessionCookie(c, tokens)
	c.JSON(http.StatusCreated, authResponse{Message: "account created", User: user, Tokens: tokens})
}

// SignIn handles user login
// POST /api/v1/auth/signin
func (ctrl *AuthController) SignIn(c *gin.Context) {
	var req dto.SignInInput
	if !bindJSON(c, &req) {
		return
	}

	user, tokens, err := ctrl.authService.SignIn(c.Request.Context(), req)
	if err != nil {
		fail(c, "Sign in failed", err, map[string]interface{}{"email": req.Email})
		return
	}

	middleware.GetLoggerFromContext(c).Info("User signed in", map[string]interface{}{
		"user_id": user.ID,
	})
	ctrl.setSessionCookie(c, tokens)
	c.JSON(http.StatusOK, authResponse{Message: "signed in", User: user, Tokens: tokens})
}

// SignOut revokes the presented access token
// POST /api/v1/auth/signout
func (ctrl *AuthController) SignOut(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	if err := ctrl.authService.SignOut(c.Request.Context(), claims); err != nil {
		fail(c, "Sign out failed", err, map[string]interface{}{"user_id": claims.UserID})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", ctrl.secureCookies, true)
	c.JSON(http.StatusOK, gin.H{"message": "signed out"})
}

// Refresh rotates a refresh token into a new pair
// POST /api/v1/auth/refresh
func (ctrl *AuthController) Refresh(c *gin.Context) {
	var req dto.RefreshInput
	if !bindJSON(c, &req) {
		return
	}

	tokens, err := ctrl.authService.Refresh(c.Request.Context(), req)
	if err != nil {
		fail(c, "Token refresh failed", err, nil)
		return
	}

	ctrl.setSessionCookie(c, tokens)
	c.JSON(http.StatusOK, authResponse{Message: "token refreshed", Tokens: tokens})
}

// Me returns the current user
// GET /api/v1/auth/me
func (ctrl *AuthController) Me(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	user, err := ctrl.authService.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		fail(c, "Failed to load current user", err, map[string]interface{}{"user_id": userID})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// ForgotPassword always answers 200 so addresses cannot be probed
// POST /api/v1/auth/forgot-password
func (ctrl *AuthController) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordInput
	if !bindJSON(c, &req) {
		return
	}

	if err := ctrl.authService.RequestPasswordReset(c.Request.Context(), req); err != nil {
		fail(c, "Password reset request failed", err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "if the address is registered, a reset link has been sent"})
}

// ResetPassword consumes a reset token
// POST /api/v1/auth/reset-password
func (ctrl *AuthController) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordInput
	if !bindJSON(c, &req) {
		return
	}

	if err := ctrl.authService.ResetPassword(c.Request.Context(), req); err != nil {
		fail(c, "Password reset failed", err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

func (ctrl *AuthController) setSessionCookie(c *gin.Context, tokens *util.TokenPair) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, tokens.AccessToken, int(tokens.ExpiresIn), "/", "", ctrl.secureCookies, true)
}
