package middleware

import (
	"net/http"
	"time"

	"github.com/gogorichielab/ppcollection/logger"
	"github.com/gogorichielab/ppcollection/web/service"
	"github.com/gogorichielab/ppcollection/web/session"

	"github.com/gin-gonic/gin"
)

// userResyncInterval is how long a session-carried user snapshot stays
// valid before it is refetched from storage.
const userResyncInterval = 5 * time.Minute

// MustChangePassword redirects every authenticated route except the
// change-password route while the must-change flag is armed. The flag
// lives in the settings store and belongs to the legacy admin (id 0);
// user-table accounts are never gated by it.
func MustChangePassword(basePath string, authService *service.AuthService) gin.HandlerFunc {
	changePath := basePath + "profile/change-password"
	return func(c *gin.Context) {
		loginUser := session.GetLoginUser(c)
		if loginUser == nil || loginUser.User.Id != 0 {
			c.Next()
			return
		}
		if c.Request.URL.Path == changePath {
			c.Next()
			return
		}
		if authService.MustChangePassword() {
			if isAjax(c) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"success": false,
					"msg":     "password change required",
				})
			} else {
				c.Redirect(http.StatusTemporaryRedirect, changePath)
				c.Abort()
			}
			return
		}
		c.Next()
	}
}

// ResyncUser refreshes a stale session snapshot from the user store so
// renames and similar edits propagate without relogin. A vanished user
// record invalidates the session.
func ResyncUser(userService *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		loginUser := session.GetLoginUser(c)
		if loginUser == nil || time.Since(loginUser.SyncedAt) < userResyncInterval {
			c.Next()
			return
		}
		// id 0 is the settings-backed legacy admin, which has no user row
		if loginUser.User.Id == 0 {
			c.Next()
			return
		}

		user, err := userService.FindSafeById(loginUser.User.Id)
		if err != nil {
			logger.Warning("user resync failed:", err)
			c.Next()
			return
		}
		if user == nil {
			_ = session.ClearSession(c)
			c.Redirect(http.StatusTemporaryRedirect, "/")
			c.Abort()
			return
		}

		if err := session.SetLoginUser(c, user); err != nil {
			logger.Warning("user resync session save failed:", err)
		}
		c.Next()
	}
}

func isAjax(c *gin.Context) bool {
	return c.GetHeader("X-Requested-With") == "XMLHttpRequest"
}
