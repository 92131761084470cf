package controller

import (
	"strconv"

	"github.com/gogorichielab/ppcollection/web/service"
	"github.com/gogorichielab/ppcollection/web/session"

	"github.com/gin-gonic/gin"
)

// InviteForm is the create-invite request body.
type InviteForm struct {
	Email     string `json:"email" form:"email"`
	ExpiresAt string `json:"expiresAt" form:"expires_at"`
}

// AcceptInviteForm is the public self-registration request body.
type AcceptInviteForm struct {
	Token    string `json:"token" form:"token"`
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// ResetPasswordForm is the public reset-token redemption request body.
type ResetPasswordForm struct {
	Token       string `json:"token" form:"token"`
	NewPassword string `json:"newPassword" form:"new_password"`
}

// UserAdminController serves user administration: listing users, issuing
// invites and password-reset tokens, and the public accept/reset routes.
type UserAdminController struct {
	BaseController

	userService service.UserService
}

func NewUserAdminController(g *gin.RouterGroup) *UserAdminController {
	a := &UserAdminController{}
	a.initRouter(g)
	return a
}

func (a *UserAdminController) initRouter(g *gin.RouterGroup) {
	// self-registration with an invite token and password reset are the
	// only unauthenticated routes besides login
	g.POST("/register", a.acceptInvite)
	g.POST("/reset-password", a.usePasswordResetToken)

	users := g.Group("/users")
	users.Use(a.checkLogin)

	users.GET("", a.listUsers)
	users.POST("/invites", a.createInvite)
	users.GET("/invites/:token", a.getInvite)
	users.POST("/:id/reset-tokens", a.createPasswordResetToken)
}

func (a *UserAdminController) listUsers(c *gin.Context) {
	users, err := a.userService.ListUsers()
	jsonObj(c, users, err)
}

// createInvite issues a new invite token. The response is the only place
// the creator sees the token, for distributing the link.
func (a *UserAdminController) createInvite(c *gin.Context) {
	var form InviteForm
	if err := c.ShouldBind(&form); err != nil {
		jsonMsg(c, "invalid form data", err)
		return
	}

	invite, err := a.userService.CreateInvite(form.Email, inviterId(c), form.ExpiresAt)
	jsonMsgObj(c, "invite created", invite, err)
}

func (a *UserAdminController) getInvite(c *gin.Context) {
	invite, err := a.userService.FindInviteByToken(c.Param("token"))
	if err == nil && invite == nil {
		jsonMsg(c, "invite lookup failed", service.ErrInviteNotFound)
		return
	}
	jsonObj(c, invite, err)
}

func (a *UserAdminController) acceptInvite(c *gin.Context) {
	var form AcceptInviteForm
	if err := c.ShouldBind(&form); err != nil {
		jsonMsg(c, "invalid form data", err)
		return
	}
	if form.Token == "" || form.Username == "" || form.Password == "" {
		pureJsonMsg(c, 200, false, "token, username and password are required")
		return
	}

	user, err := a.userService.AcceptInvite(form.Token, form.Username, form.Password)
	jsonMsgObj(c, "registration complete", user, err)
}

func (a *UserAdminController) createPasswordResetToken(c *gin.Context) {
	userId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "invalid id", err)
		return
	}

	token, err := a.userService.CreatePasswordResetToken(userId, inviterId(c), c.PostForm("expires_at"))
	jsonMsgObj(c, "reset token created", token, err)
}

func (a *UserAdminController) usePasswordResetToken(c *gin.Context) {
	var form ResetPasswordForm
	if err := c.ShouldBind(&form); err != nil {
		jsonMsg(c, "invalid form data", err)
		return
	}
	if form.Token == "" || form.NewPassword == "" {
		pureJsonMsg(c, 200, false, "token and new password are required")
		return
	}

	user, err := a.userService.UsePasswordResetToken(form.Token, form.NewPassword)
	jsonMsgObj(c, "password reset", user, err)
}

// inviterId resolves the acting user's id for attribution, nil for the
// legacy admin who has no user row.
func inviterId(c *gin.Context) *int {
	loginUser := session.GetLoginUser(c)
	if loginUser == nil || loginUser.User.Id == 0 {
		return nil
	}
	id := loginUser.User.Id
	return &id
}
