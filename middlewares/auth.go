package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"

	"spareshop-api/utils/apperror"
	"spareshop-api/utils/common"
	"spareshop-api/utils/response"
	"spareshop-api/utils/token"
)

// AuthMiddleware verifies the Bearer access token and stores the caller as an
// Actor in the request context.
func AuthMiddleware(tokens *token.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, apperror.Unauthorized("authorization header required"))
			return
		}

		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			response.Error(c, apperror.Unauthorized("invalid authorization header"))
			return
		}

		claims, err := tokens.ParseAccessToken(strings.TrimSpace(raw))
		if err != nil {
			response.Error(c, apperror.Wrap(apperror.KindForbidden, err, "invalid or expired token"))
			return
		}

		common.SetActor(c, common.Actor{
			UserID:   claims.UserID,
			Email:    claims.Email,
			Username: claims.Username,
			Role:     claims.Role,
			IP:       c.ClientIP(),
		})
		c.Next()
	}
}

func RoleMiddleware(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := common.GetUserRole(c)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		response.Error(c, apperror.Forbidden("access denied"))
	}
}
