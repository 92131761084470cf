package session

import (
	"encoding/gob"
	"time"

	"github.com/gogorichielab/ppcollection/web/service"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	loginUser  = "LOGIN_USER"
	cookieName = "ppcollection"
)

// LoginUser is the session-carried snapshot of the authenticated user.
// SyncedAt drives the periodic resync from storage; the middleware
// refetches the record once the snapshot goes stale.
type LoginUser struct {
	User     service.SafeUser
	SyncedAt time.Time
}

func init() {
	gob.Register(LoginUser{})
}

func SetLoginUser(c *gin.Context, user *service.SafeUser) error {
	s := sessions.Default(c)
	s.Set(loginUser, LoginUser{User: *user, SyncedAt: time.Now()})
	return s.Save()
}

func SetMaxAge(c *gin.Context, maxAge int) error {
	s := sessions.Default(c)
	s.Options(sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
	})
	return s.Save()
}

func GetLoginUser(c *gin.Context) *LoginUser {
	s := sessions.Default(c)
	if obj := s.Get(loginUser); obj != nil {
		if user, ok := obj.(LoginUser); ok {
			return &user
		}
	}
	return nil
}

func IsLogin(c *gin.Context) bool {
	return GetLoginUser(c) != nil
}

func ClearSession(c *gin.Context) error {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{
		Path:   "/",
		MaxAge: -1,
	})
	if err := s.Save(); err != nil {
		return err
	}
	c.SetCookie(cookieName, "", -1, "/", "", false, true)
	return nil
}
