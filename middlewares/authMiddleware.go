package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/phamnguyen125rune/Smart-Warehouse-Management/models"
	"github.com/phamnguyen125rune/Smart-Warehouse-Management/utils"
)

// AuthMiddleware parses the bearer token when present and puts the claims
// into the request context. Requests without a token pass through;
// RequireAuth decides which routes actually need one.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.Request.Header.Get("Authorization")

		if auth == "" {
			c.Next()
			return
		}

		bearer := "Bearer "
		if !strings.HasPrefix(auth, bearer) {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthorized"})
			c.Abort()
			return
		}
		auth = auth[len(bearer):]

		validate, err := utils.JwtValidate(auth)
		if err != nil || !validate.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthorized"})
			c.Abort()
			return
		}

		claims, ok := validate.Claims.(*utils.JwtCustomClaim)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthorized"})
			c.Abort()
			return
		}

		// revoked tokens are as good as no token
		if !models.IsSessionAlive(claims.ID, claims.TokenId) {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "session expired"})
			c.Abort()
			return
		}

		ctx := utils.SetUserIdInContext(c.Request.Context(), claims.ID)
		ctx = utils.SetUserNameInContext(ctx, claims.FullName)
		ctx = utils.SetRoleInContext(ctx, claims.Role)
		ctx = utils.SetLoginTypeInContext(ctx, claims.LoginType)
		ctx = utils.SetTokenIdInContext(ctx, claims.TokenId)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireAuth rejects requests that did not carry a valid token.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := utils.GetUserIdFromContext(c.Request.Context()); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireManager additionally checks the manager role.
func RequireManager() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := utils.GetRoleFromContext(c.Request.Context())
		if !ok || role != models.RoleManager {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "manager role required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
