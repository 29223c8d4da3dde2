package router

import (
	"replier/internal/container"
	handlers "replier/internal/interface/http"
	"replier/internal/router/modules"
	"replier/pkg/helpers"
)

// InitModules builds handlers from the container and registers every
// feature module. Called once during startup.
func InitModules(r *Registry, c *container.Container) {
	cookies := helpers.NewCookie(c.Cfg.CookieDomain, c.Cfg.CookieSecure)

	authHandler := handlers.NewAuthHandler(c.Users, c.Emails, cookies, c.Logger)
	userHandler := handlers.NewUserHandler(c.Users, c.Emails, cookies, c.Logger)
	botHandler := handlers.NewBotHandler(c.Bots, c.Users, c.Logger)

	r.Add(modules.NewAuthModule(authHandler, c.JWT, c))
	r.Add(modules.NewUserModule(userHandler, c.JWT, c))
	r.Add(modules.NewBotModule(botHandler, c.JWT, c))
	if c.Cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(c))
	}
}
