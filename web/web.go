// Package web provides the panel's web server: routing, sessions,
// middleware and the background update-check job.
package web

import (
	"context"
	"io"
	"net"
	"net/http"
	"strconv"

	"github.com/gogorichielab/ppcollection/config"
	"github.com/gogorichielab/ppcollection/logger"
	"github.com/gogorichielab/ppcollection/util/common"
	"github.com/gogorichielab/ppcollection/web/controller"
	"github.com/gogorichielab/ppcollection/web/job"
	"github.com/gogorichielab/ppcollection/web/middleware"
	"github.com/gogorichielab/ppcollection/web/service"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
)

const basePath = "/"

// Server is the panel web server with its controllers, services and the
// scheduled update check.
type Server struct {
	httpServer *http.Server
	listener   net.Listener

	index     *controller.IndexController
	home      *controller.HomeController
	firearm   *controller.FirearmController
	profile   *controller.ProfileController
	userAdmin *controller.UserAdminController

	settingService service.SettingService
	authService    service.AuthService
	userService    service.UserService
	versionService service.VersionService

	cron *cron.Cron

	ctx    context.Context
	cancel context.CancelFunc
}

func NewServer() *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{ctx: ctx, cancel: cancel}
}

func (s *Server) initRouter() (*gin.Engine, error) {
	if config.IsDebug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.DefaultWriter = io.Discard
		gin.DefaultErrorWriter = io.Discard
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.Default()

	secret := config.GetSessionSecret()
	if secret == "" {
		var err error
		secret, err = s.settingService.GetSecret()
		if err != nil {
			return nil, err
		}
	}

	store := cookie.NewStore([]byte(secret))
	engine.Use(sessions.Sessions(config.GetName(), store))
	engine.Use(gzip.Gzip(gzip.DefaultCompression))
	engine.Use(func(c *gin.Context) {
		c.Set("base_path", basePath)
	})
	engine.Use(middleware.ResyncUser(&s.userService))
	engine.Use(middleware.MustChangePassword(basePath, &s.authService))

	g := engine.Group(basePath)
	s.index = controller.NewIndexController(g)
	s.home = controller.NewHomeController(g, &s.versionService)
	s.firearm = controller.NewFirearmController(g)
	s.profile = controller.NewProfileController(g)
	s.userAdmin = controller.NewUserAdminController(g)

	engine.NoRoute(func(c *gin.Context) {
		c.AbortWithStatus(http.StatusNotFound)
	})

	return engine, nil
}

func (s *Server) startTask() {
	if config.IsUpdateCheckEnabled() {
		checkJob := job.NewCheckUpdateJob(&s.versionService)
		if _, err := s.cron.AddJob("@daily", checkJob); err != nil {
			logger.Warning("schedule update check:", err)
		}
		go func() {
			defer common.Recover("initial update check")
			checkJob.Run()
		}()
	}
}

func (s *Server) Start() (err error) {
	defer func() {
		if err != nil {
			_ = s.Stop()
		}
	}()

	s.cron = cron.New()
	s.cron.Start()

	engine, err := s.initRouter()
	if err != nil {
		return err
	}

	listenAddr := net.JoinHostPort(config.GetListen(), strconv.Itoa(config.GetPort()))
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}
	logger.Info("web server running on", listener.Addr())

	s.listener = listener
	s.httpServer = &http.Server{Handler: engine}

	go func() {
		_ = s.httpServer.Serve(listener)
	}()

	s.startTask()

	return nil
}

func (s *Server) Stop() error {
	s.cancel()
	if s.cron != nil {
		s.cron.Stop()
	}
	var err1, err2 error
	if s.httpServer != nil {
		err1 = s.httpServer.Shutdown(s.ctx)
	}
	if s.listener != nil {
		err2 = s.listener.Close()
	}
	return common.Combine(err1, err2)
}

func (s *Server) GetCtx() context.Context { return s.ctx }
