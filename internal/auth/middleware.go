package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const userIDKey = "userID"

// UserLookup 由用户存储实现，中间件只关心用户是否仍然存在。
type UserLookup interface {
	Exists(ctx context.Context, id uint) (bool, error)
}

// BearerToken 从 Authorization 头中取出 Bearer token。
func BearerToken(c *gin.Context) string {
	authz := c.GetHeader("Authorization")
	if len(authz) < len("Bearer ") || !strings.EqualFold(authz[:len("Bearer ")], "bearer ") {
		return ""
	}
	return strings.TrimSpace(authz[len("Bearer "):])
}

func AuthMiddleware(codec *Codec, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := BearerToken(c)
		if tokenStr == "" {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token", "detail": gin.H{"msg": "not authenticated"}})
			return
		}
		userID, err := codec.Decode(tokenStr)
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token", "detail": gin.H{"msg": "could not validate credentials"}})
			return
		}
		ok, err := users.Exists(c.Request.Context(), userID)
		if err != nil {
			log.Error().Err(err).Uint("user_id", userID).Msg("auth lookup user")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found", "detail": gin.H{"user_id": userID, "msg": "this user was not found"}})
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

func GetUserID(c *gin.Context) uint {
	if v, ok := c.Get(userIDKey); ok {
		if id, ok2 := v.(uint); ok2 {
			return id
		}
	}
	return 0
}
