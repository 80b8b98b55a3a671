package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/crew_server/internal/model"
	"github.com/qs3c/crew_server/internal/pkg/logger"
	"github.com/qs3c/crew_server/internal/pkg/queue"
)

type fakeMailer struct {
	mu    sync.Mutex
	sent  []model.Notification
	fails int // number of calls that fail before succeeding
}

func (m *fakeMailer) SendMembershipNotice(n model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fails > 0 {
		m.fails--
		return errors.New("smtp unavailable")
	}
	m.sent = append(m.sent, n)
	return nil
}

func (m *fakeMailer) Sent() []model.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Notification(nil), m.sent...)
}

func setupProcessor(t *testing.T, mailer Mailer) (*Processor, *queue.Queue) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	q := queue.NewQueue(client, "test_notifications")
	p := NewProcessor(q, mailer, logger.Nop())
	p.PopTimeout = 100 * time.Millisecond
	return p, q
}

func message(id string) *queue.NotificationMessage {
	return &queue.NotificationMessage{
		MessageID: id,
		Notification: model.Notification{
			RecipientID:      9,
			RecipientContact: "applicant@example.com",
			TeamKind:         model.TeamStudy,
			TeamID:           5,
			TeamName:         "Go Study",
			Outcome:          model.OutcomeAccepted,
		},
		EnqueuedAt: time.Now(),
	}
}

func TestNewProcessor(t *testing.T) {
	p := NewProcessor(nil, &fakeMailer{}, logger.Nop())

	assert.NotNil(t, p)
	assert.Equal(t, DefaultMaxAttempts, p.MaxAttempts)
	assert.Equal(t, DefaultPopTimeout, p.PopTimeout)
}

func TestProcessor_Process_Success(t *testing.T) {
	mailer := &fakeMailer{}
	p, q := setupProcessor(t, mailer)
	ctx := context.Background()

	err := p.Process(ctx, message("m-1"))
	require.NoError(t, err)

	require.Len(t, mailer.Sent(), 1)
	assert.Equal(t, int64(9), mailer.Sent()[0].RecipientID)

	length, err := q.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), length)
}

func TestProcessor_Process_RequeuesOnFailure(t *testing.T) {
	mailer := &fakeMailer{fails: 1}
	p, q := setupProcessor(t, mailer)
	ctx := context.Background()

	err := p.Process(ctx, message("m-1"))
	require.Error(t, err)

	requeued, err := q.Pop(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, requeued)
	assert.Equal(t, "m-1", requeued.MessageID)
	assert.Equal(t, 1, requeued.Attempts)

	// Second attempt succeeds
	err = p.Process(ctx, requeued)
	require.NoError(t, err)
	assert.Len(t, mailer.Sent(), 1)
}

func TestProcessor_Process_DropsAfterMaxAttempts(t *testing.T) {
	mailer := &fakeMailer{fails: 10}
	p, q := setupProcessor(t, mailer)
	ctx := context.Background()

	msg := message("m-1")
	msg.Attempts = DefaultMaxAttempts - 1

	err := p.Process(ctx, msg)
	require.Error(t, err)

	length, err := q.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), length)
}

func TestProcessor_Run(t *testing.T) {
	mailer := &fakeMailer{}
	p, q := setupProcessor(t, mailer)

	ctx, cancel := context.WithCancel(context.Background())

	for _, id := range []string{"m-1", "m-2", "m-3"} {
		require.NoError(t, q.Push(ctx, message(id)))
	}

	done := make(chan struct{})
	go func() {
		p.Run(ctx, 2)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return len(mailer.Sent()) == 3
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("workers did not stop after cancel")
	}
}

func TestProcessor_Run_ContinuesAfterFailures(t *testing.T) {
	// the first two sends fail, so m-1 is retried from the queue while m-2 is served
	mailer := &fakeMailer{fails: 2}
	p, q := setupProcessor(t, mailer)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, q.Push(ctx, message("m-1")))
	require.NoError(t, q.Push(ctx, message("m-2")))

	done := make(chan struct{})
	go func() {
		p.Run(ctx, 1)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return len(mailer.Sent()) == 2
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	<-done
}
