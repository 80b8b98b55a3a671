package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/crew_server/internal/model"
	"github.com/qs3c/crew_server/internal/pkg/logger"
	"github.com/qs3c/crew_server/internal/pkg/metrics"
	"github.com/qs3c/crew_server/internal/repository"
	"github.com/qs3c/crew_server/internal/service"
	"github.com/qs3c/crew_server/internal/testutil"
)

type stubReconciler struct {
	calls atomic.Int32
	fixed int
	err   error
}

func (s *stubReconciler) Reconcile(ctx context.Context, dryRun bool) (int, error) {
	s.calls.Add(1)
	return s.fixed, s.err
}

func TestNewService_DefaultInterval(t *testing.T) {
	svc := NewService(0, logger.Nop())

	assert.Equal(t, time.Hour, svc.interval)
}

func TestRunNow_SumsAndSkipsFailures(t *testing.T) {
	ok := &stubReconciler{fixed: 2}
	broken := &stubReconciler{err: errors.New("db down")}
	other := &stubReconciler{fixed: 3}

	svc := NewService(time.Hour, logger.Nop(), ok, broken, other)

	fixed := svc.RunNow(context.Background())

	assert.Equal(t, 5, fixed)
	assert.Equal(t, int32(1), broken.calls.Load())
	assert.Equal(t, int32(1), other.calls.Load())
}

func TestStartStop_RunsOnTick(t *testing.T) {
	r := &stubReconciler{}
	svc := NewService(20*time.Millisecond, logger.Nop(), r)

	svc.Start()
	require.Eventually(t, func() bool {
		return r.calls.Load() >= 2
	}, 2*time.Second, 10*time.Millisecond)

	svc.Stop()
	after := r.calls.Load()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, after, r.calls.Load())

	// Stop is safe to call twice
	svc.Stop()
}

func TestRunNow_WithLikeService(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	author := testutil.TestUser(t, db)
	resume := testutil.TestResume(t, db, author.ID, testutil.WithResumeLikes(5))
	fan := testutil.TestUser(t, db)
	testutil.TestInteraction(t, db, model.KindLike, fan.ID, resume.ID, model.CategoryResume, true)

	repo := repository.NewInteractionRepository(db, repository.NewContentRegistry())
	likes := service.NewLikeService(repo, metrics.New(), logger.Nop())

	svc := NewService(time.Hour, logger.Nop(), likes)
	fixed := svc.RunNow(context.Background())

	assert.Equal(t, 1, fixed)

	var stored model.Resume
	require.NoError(t, db.First(&stored, resume.ID).Error)
	assert.Equal(t, 1, stored.LikeCount)
}
