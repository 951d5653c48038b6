package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shakibbs/Event-Backend/internal/infra/logger"
	"github.com/shakibbs/Event-Backend/internal/transport/http/middleware"
	"github.com/shakibbs/Event-Backend/internal/usecase"
)

// AuthHandler exposes authentication endpoints.
type AuthHandler struct {
	auth *usecase.AuthService
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *usecase.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// RegisterRoutes binds authentication routes, applying optional middleware ahead of login.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, loginMiddlewares ...gin.HandlerFunc) {
	chain := append([]gin.HandlerFunc{}, loginMiddlewares...)
	r.POST("/login", append(chain, h.login)...)
	r.POST("/refresh", h.refresh)
	r.POST("/logout", h.logout)
	r.POST("/logout-all", middleware.RequireAuth(), h.logoutAll)
}

// login exchanges email and password for an access/refresh token pair.
func (h *AuthHandler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "email and password are required"))
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			logger.WithContext(c.Request.Context()).Debug("login rejected",
				zap.String("email", logger.MaskEmail(req.Email)),
				zap.String("client_ip", logger.MaskIP(c.ClientIP())),
			)
		}
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newLoginResponse(res))
}

// refresh issues a new access token for a live refresh token.
func (h *AuthHandler) refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "refreshToken is required"))
		return
	}

	res, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, RefreshResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		TokenType:    res.TokenType,
		ExpiresIn:    res.ExpiresIn,
	})
}

// logout revokes the bearer access token and, when supplied, its refresh token.
func (h *AuthHandler) logout(c *gin.Context) {
	token, ok := middleware.BearerToken(c.GetHeader("Authorization"))
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req LogoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid logout payload"))
			return
		}
	}

	if err := h.auth.Logout(c.Request.Context(), token, req.RefreshToken); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "logged out"})
}

// logoutAll revokes every token issued to the caller.
func (h *AuthHandler) logoutAll(c *gin.Context) {
	revoked, err := h.auth.LogoutAll(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, LogoutAllResponse{Message: "logged out from all sessions", Revoked: revoked})
}
