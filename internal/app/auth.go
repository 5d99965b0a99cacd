package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const ctxUserIDKey = "authUserID"

// AuthMiddleware accepts HMAC-signed JWTs (the user id in the sub claim)
// or static service tokens paired with an X-User-ID header.
func AuthMiddleware(jwtSecret, staticTokenList string) gin.HandlerFunc {
	staticTokens := strings.Split(strings.TrimSpace(staticTokenList), ",")
	secret := strings.TrimSpace(jwtSecret)

	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization"})
			return
		}
		parts := strings.Fields(auth)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		tokenStr := parts[1]

		// JWT path
		if secret != "" {
			token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrTokenMalformed
				}
				return []byte(secret), nil
			}, jwt.WithLeeway(5*time.Second))
			if err == nil {
				sub, err := token.Claims.GetSubject()
				if err != nil || sub == "" {
					c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token missing subject"})
					return
				}
				c.Set(ctxUserIDKey, sub)
				c.Next()
				return
			}
		}

		// static tokens
		for _, t := range staticTokens {
			if t != "" && tokenStr == strings.TrimSpace(t) {
				userID := c.GetHeader("X-User-ID")
				if userID == "" {
					c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "X-User-ID required with static tokens"})
					return
				}
				c.Set(ctxUserIDKey, userID)
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
	}
}

func authedUserID(c *gin.Context) string {
	return c.GetString(ctxUserIDKey)
}
