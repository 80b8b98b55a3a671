package cron

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Reconciler 按互动表重算内容计数
type Reconciler interface {
	Reconcile(ctx context.Context, dryRun bool) (int, error)
}

type Service struct {
	reconcilers []Reconciler
	interval    time.Duration
	log         logrus.FieldLogger
	stopChan    chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

func NewService(interval time.Duration, log logrus.FieldLogger, reconcilers ...Reconciler) *Service {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Service{
		reconcilers: reconcilers,
		interval:    interval,
		log:         log.WithField("component", "cron"),
		stopChan:    make(chan struct{}),
	}
}

// Start 启动定时任务
func (s *Service) Start() {
	s.wg.Add(1)
	go s.runReconcile()
	s.log.WithField("interval", s.interval.String()).Info("cron service started (counter reconcile)")
}

// Stop 停止定时任务并等待当前一轮结束
func (s *Service) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	s.log.Info("cron service stopped")
}

func (s *Service) runReconcile() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.RunNow(context.Background())
		}
	}
}

// RunNow 立即执行一轮计数校正，返回修正的行数
func (s *Service) RunNow(ctx context.Context) int {
	total := 0
	for _, r := range s.reconcilers {
		fixed, err := r.Reconcile(ctx, false)
		if err != nil {
			s.log.WithError(err).Error("counter reconcile failed")
			continue
		}
		total += fixed
	}
	if total > 0 {
		s.log.WithField("fixed", total).Warn("counter drift corrected")
	}
	return total
}
