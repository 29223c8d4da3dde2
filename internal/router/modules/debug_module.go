package modules

import (
	"expvar"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"replier/internal/container"
	"replier/internal/interface/middleware"
	"replier/pkg/response"
)

type DebugModule struct {
	C *container.Container
}

func NewDebugModule(c *container.Container) *DebugModule { return &DebugModule{C: c} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	// Public endpoints, rate-limited per IP, private ranges exempt
	rl := middleware.RateLimit(m.C.Redis, 120, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())

	rg.GET("/healthz", rl, func(c *gin.Context) {
		if err := m.C.PGPool.Ping(c.Request.Context()); err != nil {
			response.Error[any](c, http.StatusServiceUnavailable, "database unreachable", nil)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok"}, "healthy", nil)
	})
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
}
