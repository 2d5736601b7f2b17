package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	mdw "go-gin-gorm-accounts/internal/transport/http/middleware"
	resp "go-gin-gorm-accounts/internal/transport/http/response"
)

type opsModule struct {
	ready func(context.Context) error
	log   *zap.Logger
}

func (opsModule) Priority() int { return 0 }

func (m opsModule) Mount(g *gin.RouterGroup) {
	g.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	g.GET("/readyz", m.readyz)
	g.GET("/metrics", mdw.MetricsHandler())
}

func (m opsModule) readyz(c *gin.Context) {
	if m.ready == nil {
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := m.ready(ctx); err != nil {
		m.log.Warn("readiness check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, resp.Error(resp.CodeUnavailable, ""))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
