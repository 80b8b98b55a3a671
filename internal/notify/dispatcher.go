package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/qs3c/crew_server/internal/model"
	"github.com/qs3c/crew_server/internal/pkg/pubsub"
	"github.com/qs3c/crew_server/internal/pkg/queue"
)

// Dispatcher 把成员通知拆成两路：邮件任务入队，站内事件走 pubsub
type Dispatcher struct {
	queue     *queue.Queue
	publisher *pubsub.Publisher
	log       logrus.FieldLogger
}

func NewDispatcher(q *queue.Queue, publisher *pubsub.Publisher, log logrus.FieldLogger) *Dispatcher {
	return &Dispatcher{
		queue:     q,
		publisher: publisher,
		log:       log,
	}
}

// Notify 两路都会尝试，任一失败都返回错误
func (d *Dispatcher) Notify(ctx context.Context, n model.Notification) error {
	messageID := uuid.NewString()
	entry := d.log.WithFields(logrus.Fields{
		"message_id":   messageID,
		"recipient_id": n.RecipientID,
		"team_kind":    n.TeamKind,
		"team_id":      n.TeamID,
		"outcome":      n.Outcome,
	})

	var errs []error

	if n.RecipientContact == "" {
		entry.Warn("recipient has no contact, email skipped")
	} else {
		err := d.queue.Push(ctx, &queue.NotificationMessage{
			MessageID:    messageID,
			Notification: n,
			EnqueuedAt:   time.Now(),
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("enqueue email: %w", err))
		}
	}

	err := d.publisher.PublishEvent(ctx, &pubsub.EventMessage{
		MessageID:   messageID,
		UserID:      n.RecipientID,
		TeamKind:    n.TeamKind,
		TeamID:      n.TeamID,
		TeamName:    n.TeamName,
		ApplicantID: n.ApplicantID,
		Outcome:     n.Outcome,
	})
	if err != nil {
		errs = append(errs, fmt.Errorf("publish event: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	entry.Debug("notification dispatched")
	return nil
}
