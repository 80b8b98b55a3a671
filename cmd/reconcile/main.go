package main

import (
	"context"
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/qs3c/crew_server/config"
	"github.com/qs3c/crew_server/internal/database"
	"github.com/qs3c/crew_server/internal/pkg/logger"
	"github.com/qs3c/crew_server/internal/pkg/metrics"
	"github.com/qs3c/crew_server/internal/repository"
	"github.com/qs3c/crew_server/internal/service"
)

var (
	dryRun        = flag.Bool("dry-run", true, "Dry run mode, only report drifted counters")
	withLikes     = flag.Bool("likes", true, "Reconcile like_count columns")
	withBookmarks = flag.Bool("bookmarks", true, "Reconcile bookmark_count columns")
)

func main() {
	flag.Parse()

	log := logger.New("crew-reconcile", "info")
	log.WithField("dry_run", *dryRun).Info("starting counter reconcile")

	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	// 连接数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("failed to connect database")
	}

	repo := repository.NewInteractionRepository(db, repository.NewContentRegistry())
	m := metrics.New()

	var targets []*service.InteractionService
	if *withLikes {
		targets = append(targets, service.NewLikeService(repo, m, log))
	}
	if *withBookmarks {
		targets = append(targets, service.NewBookmarkService(repo, m, log))
	}

	ctx := context.Background()
	failed := false
	summary := logrus.Fields{}
	for _, svc := range targets {
		n, err := svc.Reconcile(ctx, *dryRun)
		if err != nil {
			log.WithError(err).WithField("interaction", svc.Kind()).Error("reconcile failed")
			failed = true
			continue
		}
		summary[string(svc.Kind())] = n
	}

	if *dryRun {
		log.WithFields(summary).Info("dry run complete, run with -dry-run=false to rewrite counters")
	} else {
		log.WithFields(summary).Info("reconcile complete")
	}
	if failed {
		os.Exit(1)
	}
}
