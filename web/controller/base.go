// Package controller provides the HTTP request handlers for the panel:
// login, dashboard, inventory CRUD and export, and user administration.
package controller

import (
	"net/http"

	"github.com/gogorichielab/ppcollection/web/session"

	"github.com/gin-gonic/gin"
)

// BaseController provides the authentication check shared by all
// controllers that serve logged-in routes.
type BaseController struct{}

func (a *BaseController) checkLogin(c *gin.Context) {
	if !session.IsLogin(c) {
		if isAjax(c) {
			pureJsonMsg(c, http.StatusUnauthorized, false, "login required")
		} else {
			c.Redirect(http.StatusTemporaryRedirect, c.GetString("base_path")+"login")
		}
		c.Abort()
	} else {
		c.Next()
	}
}
