package middleware

import (
	"fmt"
	"strings"

	"resume-screening-backend/internal/domain"
	"resume-screening-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AdminAuth guards destructive endpoints (candidate deletion, cache clear)
// behind an HS256 bearer token. When no secret is configured the guard
// rejects everything rather than failing open.
func AdminAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Error(apperror.Forbidden("Admin API is not configured"))
			c.Abort()
			return
		}

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.Error(apperror.Unauthorized("Missing bearer token"))
			c.Abort()
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.Error(apperror.Unauthorized("Invalid admin token"))
			c.Abort()
			return
		}

		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			if sub, _ := claims["sub"].(string); sub != "" {
				c.Set(string(domain.KeyAdminSubject), sub)
			}
		}
		c.Next()
	}
}
