package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"secondbrain/internal/util"
)

// AuthHandler issues session tokens for the single dashboard owner. The
// bcrypt hash of the owner's password lives in configuration, not in the
// database.
type AuthHandler struct {
	jwtSecret    string
	passwordHash string
	logger       *zap.Logger
}

func NewAuthHandler(jwtSecret, passwordHash string, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		jwtSecret:    jwtSecret,
		passwordHash: passwordHash,
		logger:       logger,
	}
}

type loginRequest struct {
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password required"})
		return
	}

	if !util.CheckPassword(req.Password, h.passwordHash) {
		h.logger.Warn("Login: invalid password attempt",
			zap.String("client_ip", c.ClientIP()),
		)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid password"})
		return
	}

	token, err := util.GenerateJWT("owner", h.jwtSecret)
	if err != nil {
		h.logger.Error("Login: failed to sign token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
