package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/qs3c/crew_server/config"
	"github.com/qs3c/crew_server/internal/api/handler"
	"github.com/qs3c/crew_server/internal/api/middleware"
	"github.com/qs3c/crew_server/internal/pkg/metrics"
)

type Router struct {
	interactionHandler *handler.InteractionHandler
	teamHandler        *handler.TeamHandler
	websocketHandler   *handler.WebSocketHandler
	toggleLimiter      *middleware.RateLimiter
	metrics            *metrics.Metrics
	log                logrus.FieldLogger
	cfg                *config.Config
}

func NewRouter(
	interactionHandler *handler.InteractionHandler,
	teamHandler *handler.TeamHandler,
	websocketHandler *handler.WebSocketHandler,
	toggleLimiter *middleware.RateLimiter,
	m *metrics.Metrics,
	log logrus.FieldLogger,
	cfg *config.Config,
) *Router {
	return &Router{
		interactionHandler: interactionHandler,
		teamHandler:        teamHandler,
		websocketHandler:   websocketHandler,
		toggleLimiter:      toggleLimiter,
		metrics:            m,
		log:                log,
		cfg:                cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	handler.RegisterValidators()

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Logger(r.log, r.metrics))
	engine.Use(middleware.CORS(r.cfg.CORS))

	engine.GET("/metrics", gin.WrapH(r.metrics.Handler()))

	api := engine.Group("/api/v1")
	{
		// WebSocket
		api.GET("/ws", r.websocketHandler.Handle)

		// 公开接口 - 团队浏览（可选认证）
		teamsPublic := api.Group("/teams")
		teamsPublic.Use(middleware.OptionalAuth(r.cfg.JWT.Secret))
		{
			teamsPublic.GET("/:kind", r.teamHandler.List)
			teamsPublic.GET("/:kind/:id", r.teamHandler.Get)
		}

		// 需要认证的接口
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			// 点赞/收藏，切换接口按用户限流
			authenticated.POST("/likes", r.toggleLimiter.Middleware(), r.interactionHandler.ToggleLike)
			authenticated.GET("/likes", r.interactionHandler.ListLikes)
			authenticated.POST("/bookmarks", r.toggleLimiter.Middleware(), r.interactionHandler.ToggleBookmark)
			authenticated.GET("/bookmarks", r.interactionHandler.ListBookmarks)
			authenticated.GET("/interactions/state", r.interactionHandler.State)

			// 团队
			teams := authenticated.Group("/teams")
			{
				teams.POST("/:kind", r.teamHandler.Create)
				teams.PATCH("/:kind/:id", r.teamHandler.Update)
				teams.DELETE("/:kind/:id", r.teamHandler.Delete)
				teams.POST("/:kind/:id/close", r.teamHandler.Close)
				teams.POST("/:kind/:id/members", r.teamHandler.AddMember)

				// 入组申请
				teams.POST("/:kind/:id/applications", r.teamHandler.Apply)
				teams.DELETE("/:kind/:id/applications", r.teamHandler.CancelApplication)
				teams.GET("/:kind/:id/applicants", r.teamHandler.Applicants)
				teams.POST("/:kind/:id/applicants/:user_id/accept", r.teamHandler.Accept)
				teams.POST("/:kind/:id/applicants/:user_id/reject", r.teamHandler.Reject)
			}
		}
	}

	return engine
}
