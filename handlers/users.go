package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TokenStore saves a user's push notification token.
type TokenStore interface {
	SetFCMToken(ctx context.Context, id, token string) error
}

type UserHandler struct {
	Tokens TokenStore
	Logger *zap.Logger
}

func NewUserHandler(tokens TokenStore, logger *zap.Logger) *UserHandler {
	return &UserHandler{Tokens: tokens, Logger: logger}
}

// UpdateFCMTokenHandler registers the caller's device for push
// notifications about their requests.
func (h *UserHandler) UpdateFCMTokenHandler(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var body struct {
		FCMToken string `json:"fcmToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.FCMToken) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": "fcmToken is required"})
		return
	}

	if err := h.Tokens.SetFCMToken(c.Request.Context(), actor.ID, strings.TrimSpace(body.FCMToken)); err != nil {
		respondError(c, getLogger(c, h.Logger), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "FCM token updated successfully"})
}
