package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/qs3c/crew_server/config"
	"github.com/qs3c/crew_server/internal/api"
	"github.com/qs3c/crew_server/internal/api/handler"
	"github.com/qs3c/crew_server/internal/api/middleware"
	"github.com/qs3c/crew_server/internal/database"
	"github.com/qs3c/crew_server/internal/model"
	"github.com/qs3c/crew_server/internal/notify"
	"github.com/qs3c/crew_server/internal/pkg/cron"
	"github.com/qs3c/crew_server/internal/pkg/logger"
	"github.com/qs3c/crew_server/internal/pkg/metrics"
	"github.com/qs3c/crew_server/internal/pkg/pubsub"
	"github.com/qs3c/crew_server/internal/pkg/queue"
	"github.com/qs3c/crew_server/internal/pkg/ws"
	"github.com/qs3c/crew_server/internal/repository"
	"github.com/qs3c/crew_server/internal/service"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	// 加载配置
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.New("crew-server", "info").WithError(err).Fatal("failed to load config")
	}
	log := logger.UseFormat(logger.New("crew-server", cfg.Log.Level), cfg.Log.Format)

	// 初始化数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("failed to connect database")
	}
	if err := db.AutoMigrate(model.AllModels()...); err != nil {
		log.WithError(err).Fatal("failed to migrate database")
	}
	log.Info("database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.WithError(err).Fatal("failed to connect redis")
	}
	log.Info("redis connected")

	m := metrics.New()

	// 通知：邮件进队列，实时事件走 Pub/Sub
	notificationQueue := queue.NewQueue(rdb, cfg.Queue.NotificationQueue)
	dispatcher := notify.NewDispatcher(notificationQueue, pubsub.NewPublisher(rdb), log)

	// 初始化 Repository
	txManager := repository.NewTxManager(db)
	userRepo := repository.NewUserRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	interactionRepo := repository.NewInteractionRepository(db, repository.NewContentRegistry())

	// 初始化 Service
	likeService := service.NewLikeService(interactionRepo, m, log)
	bookmarkService := service.NewBookmarkService(interactionRepo, m, log)
	membershipService := service.NewMembershipService(txManager, membershipRepo, teamRepo, userRepo, dispatcher, m, log)
	teamService := service.NewTeamService(txManager, teamRepo, membershipService, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// WebSocket Hub，转发其他实例发布的成员事件
	wsHub := ws.NewHub(log)
	go func() {
		err := pubsub.NewSubscriber(rdb).Subscribe(ctx, wsHub.Forward)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.WithError(err).Error("membership event subscription stopped")
		}
	}()

	// 计数校准
	cronService := cron.NewService(cfg.Reconcile.Interval, log, likeService, bookmarkService)
	cronService.Start()

	toggleLimiter := middleware.NewRateLimiter(cfg.RateLimit.ToggleRPS, cfg.RateLimit.ToggleBurst)
	go toggleLimiter.RunSweeper(ctx, time.Minute)

	// 初始化 Router
	router := api.NewRouter(
		handler.NewInteractionHandler(likeService, bookmarkService),
		handler.NewTeamHandler(teamService, membershipService),
		handler.NewWebSocketHandler(wsHub, cfg.JWT.Secret, cfg.CORS.AllowedOrigins, log),
		toggleLimiter,
		m,
		log,
		cfg,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("failed to start server")
		}
	}()

	// 监听退出信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Info("received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown failed")
	}
	cancel()
	cronService.Stop()
	if err := rdb.Close(); err != nil {
		log.WithError(err).Warn("failed to close redis")
	}
	log.Info("server shutdown complete")
}
