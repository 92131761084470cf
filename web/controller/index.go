package controller

import (
	"net/http"

	"github.com/gogorichielab/ppcollection/logger"
	"github.com/gogorichielab/ppcollection/web/service"
	"github.com/gogorichielab/ppcollection/web/session"

	"github.com/gin-gonic/gin"
)

// LoginForm is the login request body.
type LoginForm struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// IndexController handles login and logout.
type IndexController struct {
	BaseController

	settingService service.SettingService
	userService    service.UserService
	authService    service.AuthService
}

func NewIndexController(g *gin.RouterGroup) *IndexController {
	a := &IndexController{}
	a.initRouter(g)
	return a
}

func (a *IndexController) initRouter(g *gin.RouterGroup) {
	g.POST("/login", a.login)
	g.GET("/logout", a.logout)
}

// login authenticates against the user table first, then falls back to
// the settings-backed single-admin credentials.
func (a *IndexController) login(c *gin.Context) {
	var form LoginForm

	if err := c.ShouldBind(&form); err != nil {
		pureJsonMsg(c, http.StatusOK, false, "invalid form data")
		return
	}
	if form.Username == "" {
		pureJsonMsg(c, http.StatusOK, false, "username is required")
		return
	}
	if form.Password == "" {
		pureJsonMsg(c, http.StatusOK, false, "password is required")
		return
	}

	safeUser := a.resolveUser(form.Username, form.Password)
	if safeUser == nil {
		logger.Warningf("failed login attempt for %q, IP: %q", form.Username, getRemoteIp(c))
		pureJsonMsg(c, http.StatusOK, false, "invalid credentials")
		return
	}

	sessionMaxAge, err := a.settingService.GetSessionMaxAge()
	if err != nil {
		logger.Warning("unable to read session max age:", err)
	}
	if sessionMaxAge > 0 {
		if err := session.SetMaxAge(c, sessionMaxAge*60); err != nil {
			logger.Warning("unable to set session max age:", err)
		}
	}

	if err := session.SetLoginUser(c, safeUser); err != nil {
		logger.Warning("unable to save session:", err)
		pureJsonMsg(c, http.StatusOK, false, "login failed")
		return
	}

	logger.Infof("%s logged in successfully, IP: %s", safeUser.Username, getRemoteIp(c))
	jsonMsg(c, "login successful", nil)
}

// resolveUser returns the sanitized user for valid credentials, nil
// otherwise. The legacy admin is represented with id 0, which the resync
// middleware leaves alone.
func (a *IndexController) resolveUser(username, password string) *service.SafeUser {
	if user := a.userService.CheckUser(username, password); user != nil {
		safeUser, err := a.userService.FindSafeById(user.Id)
		if err != nil || safeUser == nil {
			return nil
		}
		return safeUser
	}

	ok, err := a.authService.ValidateCredentials(username, password)
	if err != nil {
		logger.Warning("legacy credential check failed:", err)
		return nil
	}
	if !ok {
		return nil
	}
	return &service.SafeUser{Id: 0, Username: username}
}

func (a *IndexController) logout(c *gin.Context) {
	user := session.GetLoginUser(c)
	if user != nil {
		logger.Infof("%s logged out", user.User.Username)
	}
	if err := session.ClearSession(c); err != nil {
		logger.Warning("unable to clear session:", err)
	}
	c.Redirect(http.StatusTemporaryRedirect, c.GetString("base_path"))
}
