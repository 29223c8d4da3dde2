package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"replier/pkg/helpers"
	"replier/pkg/response"
)

// Auth validates the access token and ensures an active session exists
// in Redis. The token is read from the access_token cookie or a Bearer
// header. It sets userID and userEmail in the Gin context on success.
func Auth(rdb *redis.Client, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			response.AbortError(c, http.StatusUnauthorized, "missing access token", nil)
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.AbortError(c, http.StatusUnauthorized, "invalid access token", nil)
			return
		}

		if rdb != nil {
			data, err := rdb.HGetAll(c.Request.Context(), helpers.SessionKey(claims.UserID)).Result()
			if err != nil || len(data) == 0 {
				response.AbortError(c, http.StatusUnauthorized, "session not found", nil)
				return
			}
			if sid := data["sid"]; sid != "" && sid != claims.SessionID {
				response.AbortError(c, http.StatusUnauthorized, "session not found", nil)
				return
			}
		}

		c.Set("userID", claims.UserID)
		c.Set("userEmail", claims.Email)
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) string {
	if t, err := c.Cookie("access_token"); err == nil && t != "" {
		return t
	}
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}
