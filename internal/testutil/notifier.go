package testutil

import (
	"context"
	"sync"

	"github.com/qs3c/crew_server/internal/model"
)

// RecordingNotifier 记录收到的通知；Err 非空时每次投递都失败
type RecordingNotifier struct {
	mu    sync.Mutex
	notes []model.Notification
	Err   error
}

func (n *RecordingNotifier) Notify(ctx context.Context, note model.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.notes = append(n.notes, note)
	return n.Err
}

// Notes 已收到的通知副本
func (n *RecordingNotifier) Notes() []model.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]model.Notification(nil), n.notes...)
}

// Reset 清空记录
func (n *RecordingNotifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = nil
}
