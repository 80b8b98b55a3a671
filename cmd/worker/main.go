package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/qs3c/crew_server/config"
	"github.com/qs3c/crew_server/internal/database"
	"github.com/qs3c/crew_server/internal/pkg/email"
	"github.com/qs3c/crew_server/internal/pkg/logger"
	"github.com/qs3c/crew_server/internal/pkg/queue"
	"github.com/qs3c/crew_server/internal/worker"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	// 加载配置
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.New("crew-worker", "info").WithError(err).Fatal("failed to load config")
	}
	log := logger.UseFormat(logger.New("crew-worker", cfg.Log.Level), cfg.Log.Format)

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.WithError(err).Fatal("failed to connect redis")
	}
	log.Info("redis connected")

	notificationQueue := queue.NewQueue(rdb, cfg.Queue.NotificationQueue)
	processor := worker.NewProcessor(notificationQueue, email.NewService(&cfg.Email), log)

	// 创建 context 用于优雅关闭
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 监听退出信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("received shutdown signal")
		cancel()
	}()

	log.WithField("max_workers", cfg.Queue.MaxWorkers).Info("worker started")
	processor.Run(ctx, cfg.Queue.MaxWorkers)

	if err := rdb.Close(); err != nil {
		log.WithError(err).Warn("failed to close redis")
	}
	log.Info("worker shutdown complete")
}
