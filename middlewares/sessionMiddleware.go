package middlewares

import (
	"net/http"

	"bitbucket.org/hrfocus/erp_backend/config"
	"bitbucket.org/hrfocus/erp_backend/models"
	"bitbucket.org/hrfocus/erp_backend/utils"
	"github.com/gin-gonic/gin"
)

// SessionMiddleware resolves the session token into the full caller
// identity. Requests without a token pass through unauthenticated; a token
// that no longer maps to a session or a user is rejected here.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Request.Header.Get("token")
		if token == "" {
			c.Next()
			return
		}
		username, exists, err := config.GetRedisValue("Token:" + token)
		if err != nil || !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		user, err := models.GetUserByUsername(c.Request.Context(), username)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		ctx := utils.SetTokenInContext(c.Request.Context(), token)
		ctx = utils.SetUsernameInContext(ctx, user.Username)
		ctx = utils.SetUserIdInContext(ctx, user.ID)
		ctx = utils.SetRoleInContext(ctx, string(user.Role))
		ctx = utils.SetDepartmentNameInContext(ctx, user.DepartmentName)
		ctx = utils.SetIsAdminInContext(ctx, user.IsAdmin())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
