package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cutmatch/cutmatch-api/internal/app"
	"github.com/cutmatch/cutmatch-api/internal/db"
	svcErr "github.com/cutmatch/cutmatch-api/internal/errors"
	"github.com/cutmatch/cutmatch-api/internal/repository"
)

const userKey = "currentUser"

// Protect requires a valid bearer token and stores the referenced user on
// the request context.
//
// Behavior:
//   - Missing header or scheme → 401 "Not authorized, no token".
//   - Bad signature, expiry or unknown user → 401 "Not authorized, token failed".
//   - One user lookup per request, no caching or revocation.
func Protect(appCtx *app.AppContext) gin.HandlerFunc {
	users := repository.NewUserRepository(appCtx.DB)

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			c.Error(svcErr.Unauthorized("Not authorized, no token"))
			c.Abort()
			return
		}

		userID, err := appCtx.Tokens.Parse(token)
		if err != nil {
			c.Error(svcErr.Unauthorized("Not authorized, token failed"))
			c.Abort()
			return
		}

		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				err = svcErr.Unauthorized("Not authorized, token failed")
			}
			c.Error(svcErr.Map(err))
			c.Abort()
			return
		}
		user.PasswordHash = ""

		c.Set(userKey, user)
		c.Next()
	}
}

// AdminOnly must run after Protect and rejects non-admin users with 403.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if u := CurrentUser(c); u == nil || !u.IsAdmin() {
			c.Error(svcErr.Forbidden("Not authorized as an admin"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user resolved by Protect, or nil on public routes.
func CurrentUser(c *gin.Context) *db.User {
	if v, ok := c.Get(userKey); ok {
		if u, ok := v.(*db.User); ok {
			return u
		}
	}
	return nil
}
