package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"auth-service/internal/service"
)

// AuthHandler expone las operaciones de AuthService sobre HTTP.
type AuthHandler struct {
	logger *zap.Logger
	auth   *service.AuthService
	cookie cookieConfig
}

func NewAuthHandler(logger *zap.Logger, auth *service.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		logger: logger,
		auth:   auth,
		cookie: cookieConfig{secure: secureCookie, maxAge: auth.TokenTTL()},
	}
}

// Los campos son punteros para que binding:"required" distinga ausente de
// vacio: ausente es 422, vacio llega al servicio y sale como 400.
type signupRequest struct {
	Email       *string `json:"email" binding:"required"`
	Password    *string `json:"password" binding:"required"`
	Requires2FA *bool   `json:"requires2FA" binding:"required"`
}

type credentialsRequest struct {
	Email    *string `json:"email" binding:"required"`
	Password *string `json:"password" binding:"required"`
}

type verify2FARequest struct {
	Email          *string `json:"email" binding:"required"`
	LoginAttemptID *string `json:"loginAttemptId" binding:"required"`
	TwoFACode      *string `json:"2FACode" binding:"required"`
}

type verifyTokenRequest struct {
	Token *string `json:"token" binding:"required"`
}

func (h *AuthHandler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.logger.Debug("malformed request", zap.String("path", c.FullPath()), zap.Error(err))
		abortWithError(c, service.ErrMalformedInput)
		return false
	}
	return true
}

// Signup maneja POST /signup.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if !h.bind(c, &req) {
		return
	}
	err := h.auth.Signup(c.Request.Context(), service.SignupInput{
		Email:       *req.Email,
		Password:    *req.Password,
		Requires2FA: *req.Requires2FA,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User created successfully!"})
}

// Login maneja POST /login. Sin 2FA deja el cookie de sesion; con 2FA
// devuelve el loginAttemptId y no toca cookies.
func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if !h.bind(c, &req) {
		return
	}
	res, err := h.auth.Login(c.Request.Context(), *req.Email, *req.Password)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if res.Requires2FA {
		c.JSON(http.StatusOK, gin.H{"message": "2FA required", "loginAttemptId": res.LoginAttemptID})
		return
	}
	h.cookie.set(c, res.Token)
	c.JSON(http.StatusOK, gin.H{"message": "Logged in"})
}

// Verify2FA maneja POST /verify-2fa.
func (h *AuthHandler) Verify2FA(c *gin.Context) {
	var req verify2FARequest
	if !h.bind(c, &req) {
		return
	}
	token, err := h.auth.Verify2FA(c.Request.Context(), *req.Email, *req.LoginAttemptID, *req.TwoFACode)
	if err != nil {
		abortWithError(c, err)
		return
	}
	h.cookie.set(c, token)
	c.JSON(http.StatusOK, gin.H{"message": "Logged in"})
}

// Logout maneja POST /logout. Requiere RequireSessionCookie antes.
func (h *AuthHandler) Logout(c *gin.Context) {
	token, ok := GetSessionToken(c)
	if !ok {
		abortWithError(c, service.ErrMissingToken)
		return
	}
	if err := h.auth.Logout(c.Request.Context(), token); err != nil {
		abortWithError(c, err)
		return
	}
	h.cookie.clear(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// VerifyToken maneja POST /verify-token.
func (h *AuthHandler) VerifyToken(c *gin.Context) {
	var req verifyTokenRequest
	if !h.bind(c, &req) {
		return
	}
	if _, err := h.auth.VerifyToken(c.Request.Context(), *req.Token); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Token is valid"})
}

// DeleteAccount maneja DELETE /delete-account.
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	var req credentialsRequest
	if !h.bind(c, &req) {
		return
	}
	if err := h.auth.DeleteAccount(c.Request.Context(), *req.Email, *req.Password); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
