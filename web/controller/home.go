package controller

import (
	"github.com/gogorichielab/ppcollection/web/service"
	"github.com/gogorichielab/ppcollection/web/session"

	"github.com/gin-gonic/gin"
)

// HomeController serves the dashboard and the update-check status.
type HomeController struct {
	BaseController

	homeService    service.HomeService
	versionService *service.VersionService
}

func NewHomeController(g *gin.RouterGroup, versionService *service.VersionService) *HomeController {
	a := &HomeController{versionService: versionService}
	a.initRouter(g)
	return a
}

func (a *HomeController) initRouter(g *gin.RouterGroup) {
	g.GET("/dashboard", a.checkLogin, a.dashboard)
	g.GET("/version", a.checkLogin, a.version)
}

func (a *HomeController) dashboard(c *gin.Context) {
	user := session.GetLoginUser(c)
	dashboard, err := a.homeService.GetDashboard(user.User.Username)
	jsonObj(c, dashboard, err)
}

func (a *HomeController) version(c *gin.Context) {
	jsonObj(c, a.versionService.GetVersionInfo(), nil)
}
