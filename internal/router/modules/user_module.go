package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"replier/internal/container"
	handlers "replier/internal/interface/http"
	"replier/internal/interface/middleware"
	"replier/pkg/helpers"
)

type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
	C       *container.Container
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager, c *container.Container) *UserModule {
	return &UserModule{Handler: h, JWT: jwt, C: c}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	sendActivateLimiter := middleware.RateLimit(m.C.Redis, 5, time.Minute, middleware.KeyByUserID(), nil)

	user := rg.Group("/user")
	user.Use(middleware.Auth(m.C.Redis, m.JWT))
	{
		user.GET("/me", m.Handler.Me)
		user.PUT("", m.Handler.Edit)
		user.PATCH("/reset-password", m.Handler.ResetPassword)
		user.PATCH("/change-email", m.Handler.ChangeEmail)
		user.POST("/send-activate-email", sendActivateLimiter, m.Handler.SendActivateEmail)
		user.POST("/activate", m.Handler.Activate)
	}
}
