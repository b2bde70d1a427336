package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/verbyflow/signaling/internal/adapters/signal"
	"github.com/verbyflow/signaling/internal/config"
	"github.com/verbyflow/signaling/internal/core"
)

const (
	ServerName    = "Verbyflow Signaling Server"
	ServerVersion = "1.0.0"
)

func SetupRouter(ctx context.Context, cfg *config.Config, coord *core.Coordinator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	api.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version": ServerVersion,
			"name":    ServerName,
		})
	})

	api.GET("/meetings", func(c *gin.Context) {
		c.JSON(http.StatusOK, coord.Meetings())
	})

	api.GET("/ice-servers", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"iceServers": advertisedICEServers(cfg)})
	})

	ctrl := signal.NewController(cfg, coord)
	api.GET("/ws/signal", func(c *gin.Context) {
		ctrl.HandleSignal(ctx, c)
	})

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Not found"})
	})

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}
