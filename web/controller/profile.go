package controller

import (
	"github.com/gogorichielab/ppcollection/web/service"
	"github.com/gogorichielab/ppcollection/web/session"

	"github.com/gin-gonic/gin"
)

// ChangePasswordForm is the change-password request body.
type ChangePasswordForm struct {
	CurrentPassword string `json:"currentPassword" form:"current_password"`
	NewPassword     string `json:"newPassword" form:"new_password"`
	ConfirmPassword string `json:"confirmPassword" form:"confirm_password"`
}

// ProfileController serves the logged-in user's own settings: password,
// username and theme.
type ProfileController struct {
	BaseController

	authService    service.AuthService
	userService    service.UserService
	settingService service.SettingService
}

func NewProfileController(g *gin.RouterGroup) *ProfileController {
	a := &ProfileController{}
	a.initRouter(g)
	return a
}

func (a *ProfileController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/profile")
	g.Use(a.checkLogin)

	g.POST("/change-password", a.changePassword)
	g.POST("/change-username", a.changeUsername)
	g.GET("/theme", a.getTheme)
	g.POST("/theme", a.setTheme)
}

// changePassword verifies the current password and applies the new one.
// The legacy admin (id 0) changes the settings-backed hash, everyone else
// their own user row.
func (a *ProfileController) changePassword(c *gin.Context) {
	var form ChangePasswordForm
	if err := c.ShouldBind(&form); err != nil {
		jsonMsg(c, "invalid form data", err)
		return
	}
	if form.NewPassword != form.ConfirmPassword {
		pureJsonMsg(c, 200, false, "new passwords do not match")
		return
	}

	loginUser := session.GetLoginUser(c)

	if loginUser.User.Id == 0 {
		jsonMsg(c, "password changed", a.authService.ChangePassword(form.CurrentPassword, form.NewPassword))
		return
	}

	jsonMsg(c, "password changed", a.userService.ChangePassword(loginUser.User.Id, form.CurrentPassword, form.NewPassword))
}

func (a *ProfileController) changeUsername(c *gin.Context) {
	newUsername := c.PostForm("username")
	if newUsername == "" {
		pureJsonMsg(c, 200, false, "username is required")
		return
	}

	loginUser := session.GetLoginUser(c)
	if loginUser.User.Id == 0 {
		pureJsonMsg(c, 200, false, "the bootstrap admin cannot be renamed")
		return
	}

	err := a.userService.UpdateUsername(loginUser.User.Id, newUsername)
	if err == nil {
		if fresh, ferr := a.userService.FindSafeById(loginUser.User.Id); ferr == nil && fresh != nil {
			_ = session.SetLoginUser(c, fresh)
		}
	}
	jsonMsg(c, "username changed", err)
}

func (a *ProfileController) getTheme(c *gin.Context) {
	theme, err := a.authService.GetTheme()
	jsonObj(c, theme, err)
}

func (a *ProfileController) setTheme(c *gin.Context) {
	jsonMsg(c, "theme saved", a.authService.SetTheme(c.PostForm("theme")))
}
