package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"smartfix/apperrors"
	"smartfix/models"
	"smartfix/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	actorKey        = "actor"
	authCachePrefix = "auth:actor:"
	authCacheTTL    = 5 * time.Minute
)

// UserLookup resolves the user named by a token subject.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// JWTAuthMiddleware verifies the bearer token and stores the caller's
// Actor in the context. Role and active flag come from the user record,
// cached in the auth Redis DB when cache is non-nil.
func JWTAuthMiddleware(secret []byte, users UserLookup, cache *redis.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			utils.JSONError(c, http.StatusUnauthorized, "Insufficient authorization", "missing bearer token")
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		userID, err := utils.ExtractIDFromToken(secret, tokenString)
		if err != nil {
			utils.JSONError(c, http.StatusUnauthorized, "Insufficient authorization", "invalid token")
			return
		}

		ctx := c.Request.Context()
		if actor, ok := cachedActor(ctx, cache, userID, logger); ok {
			c.Set(actorKey, actor)
			c.Next()
			return
		}

		user, err := users.GetByID(ctx, userID)
		if errors.Is(err, apperrors.ErrNotFound) {
			utils.JSONError(c, http.StatusUnauthorized, "Insufficient authorization", "unknown user")
			return
		}
		if err != nil {
			logger.Error("Failed to load user for token", zap.String("userId", userID), zap.Error(err))
			utils.JSONError(c, http.StatusInternalServerError, "Internal Server Error", "")
			return
		}

		actor := models.ActorFromUser(user)
		if cache != nil {
			if data, err := json.Marshal(actor); err == nil {
				if err := cache.Set(ctx, authCachePrefix+userID, data, authCacheTTL).Err(); err != nil {
					logger.Warn("Auth cache write failed", zap.String("userId", userID), zap.Error(err))
				}
			}
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

func cachedActor(ctx context.Context, cache *redis.Client, userID string, logger *zap.Logger) (models.Actor, bool) {
	var actor models.Actor
	if cache == nil {
		return actor, false
	}
	data, err := cache.Get(ctx, authCachePrefix+userID).Bytes()
	if err == redis.Nil {
		return actor, false
	}
	if err != nil {
		logger.Warn("Auth cache read failed, falling back to DB", zap.String("userId", userID), zap.Error(err))
		return actor, false
	}
	if err := json.Unmarshal(data, &actor); err != nil {
		return actor, false
	}
	return actor, true
}

// ActorFrom returns the authenticated caller.
func ActorFrom(c *gin.Context) (models.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return models.Actor{}, false
	}
	actor, ok := v.(models.Actor)
	return actor, ok
}

// SetActor stores the caller, for handlers mounted without JWT auth.
func SetActor(c *gin.Context, actor models.Actor) {
	c.Set(actorKey, actor)
}
