package api

import (
	"github.com/Helper-Yoon/sns-help-counter/internal/api/handler"
	"github.com/Helper-Yoon/sns-help-counter/internal/config"
	"github.com/Helper-Yoon/sns-help-counter/internal/queue"
	"github.com/Helper-Yoon/sns-help-counter/internal/storage"
	"github.com/Helper-Yoon/sns-help-counter/internal/tracker"
	"github.com/gin-gonic/gin"
)

type Router struct {
	engine *gin.Engine
}

func NewRouter(db *storage.PostgresDB, q *queue.RedisQueue, orchestrator *tracker.Orchestrator, cfg *config.Config) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(gin.Logger())

	eventRepo := storage.NewHelpEventRepo(db)
	statsRepo := storage.NewStatsRepo(db)
	logRepo := storage.NewWebhookLogRepo(db)

	webhookHandler := handler.NewWebhookHandler(q, logRepo, cfg.Webhook.Secret)
	syncHandler := handler.NewSyncHandler(orchestrator, cfg.Sync.Secret)
	statsHandler := handler.NewStatsHandler(statsRepo, eventRepo)

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	engine.POST("/webhook/channeltalk", webhookHandler.Receive)

	v1 := engine.Group("/api/v1")
	{
		sync := v1.Group("/sync", syncHandler.Authorize)
		{
			sync.POST("/incremental", syncHandler.Incremental)
			sync.POST("/full", syncHandler.Full)
			sync.POST("/recompute", syncHandler.Recompute)
		}

		stats := v1.Group("/stats")
		{
			stats.GET("", statsHandler.List)
			stats.GET("/today", statsHandler.Today)
		}
	}

	return &Router{engine: engine}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
