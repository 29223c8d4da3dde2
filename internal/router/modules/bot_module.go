package modules

import (
	"github.com/gin-gonic/gin"

	"replier/internal/container"
	handlers "replier/internal/interface/http"
	"replier/internal/interface/middleware"
	"replier/pkg/helpers"
)

type BotModule struct {
	Handler *handlers.BotHandler
	JWT     *helpers.JWTManager
	C       *container.Container
}

func NewBotModule(h *handlers.BotHandler, jwt *helpers.JWTManager, c *container.Container) *BotModule {
	return &BotModule{Handler: h, JWT: jwt, C: c}
}

func (m *BotModule) Register(rg *gin.RouterGroup) {
	bot := rg.Group("/bot")
	bot.Use(middleware.Auth(m.C.Redis, m.JWT))
	{
		bot.GET("", m.Handler.List)
		bot.POST("", m.Handler.Create)
		bot.PATCH("/active", m.Handler.ChangeActive)
		bot.PATCH("/credentials", m.Handler.ChangeCredentials)
		bot.PUT("/default-reply", m.Handler.EditDefaultReply)
		bot.DELETE("", m.Handler.Delete)

		bot.GET("/replies", m.Handler.Replies)
		bot.POST("/reply", m.Handler.AddReply)
		bot.PATCH("/reply", m.Handler.EditReply)
		bot.PATCH("/reply/active", m.Handler.ChangeReplyActive)
		bot.DELETE("/reply", m.Handler.DeleteReply)

		bot.PATCH("/invite-moderator", m.Handler.InviteModerator)
		bot.PATCH("/remove-moderator", m.Handler.RemoveModerator)
		bot.GET("/search-users", m.Handler.SearchUsers)
	}
}
