package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"replier/internal/container"
	handlers "replier/internal/interface/http"
	"replier/internal/interface/middleware"
	"replier/pkg/helpers"
)

type AuthModule struct {
	Handler *handlers.AuthHandler
	JWT     *helpers.JWTManager
	C       *container.Container
}

func NewAuthModule(h *handlers.AuthHandler, jwt *helpers.JWTManager, c *container.Container) *AuthModule {
	return &AuthModule{Handler: h, JWT: jwt, C: c}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	// Public endpoints with IP-based rate limits
	signupLimiter := middleware.RateLimit(m.C.Redis, 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(m.C.Redis, 20, time.Minute, middleware.KeyByIPAndPath(), nil)
	recoverInitLimiter := middleware.RateLimit(m.C.Redis, 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	recoverConfirmLimiter := middleware.RateLimit(m.C.Redis, 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/auth/signup", signupLimiter, m.Handler.Signup)
	rg.POST("/auth/login", loginLimiter, m.Handler.Login)
	rg.POST("/auth/recover/init", recoverInitLimiter, m.Handler.RecoverInit)
	rg.POST("/auth/recover/confirm", recoverConfirmLimiter, m.Handler.RecoverConfirm)
	rg.POST("/auth/refresh", m.Handler.Refresh)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.C.Redis, m.JWT))
	{
		auth.POST("/auth/logout", m.Handler.Logout)
	}
}
