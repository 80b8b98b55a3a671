package worker

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/qs3c/crew_server/internal/model"
	"github.com/qs3c/crew_server/internal/pkg/queue"
)

const (
	DefaultMaxAttempts = 3
	DefaultPopTimeout  = 5 * time.Second
)

// Mailer 发送成员通知邮件
type Mailer interface {
	SendMembershipNotice(n model.Notification) error
}

// Processor 通知邮件处理器
type Processor struct {
	queue       *queue.Queue
	mailer      Mailer
	log         logrus.FieldLogger
	MaxAttempts int
	PopTimeout  time.Duration
}

// NewProcessor 创建通知处理器
func NewProcessor(q *queue.Queue, mailer Mailer, log logrus.FieldLogger) *Processor {
	return &Processor{
		queue:       q,
		mailer:      mailer,
		log:         log,
		MaxAttempts: DefaultMaxAttempts,
		PopTimeout:  DefaultPopTimeout,
	}
}

// Process 发送一封通知邮件，失败时放回队列重试，超过次数后丢弃
func (p *Processor) Process(ctx context.Context, msg *queue.NotificationMessage) error {
	entry := p.log.WithFields(logrus.Fields{
		"message_id":   msg.MessageID,
		"recipient_id": msg.Notification.RecipientID,
		"outcome":      msg.Notification.Outcome,
		"attempts":     msg.Attempts,
	})

	err := p.mailer.SendMembershipNotice(msg.Notification)
	if err == nil {
		entry.Info("notification sent")
		return nil
	}

	msg.Attempts++
	if msg.Attempts >= p.MaxAttempts {
		entry.WithError(err).Error("notification dropped after max attempts")
		return err
	}

	if pushErr := p.queue.Push(ctx, msg); pushErr != nil {
		entry.WithError(pushErr).Error("failed to requeue notification")
	} else {
		entry.WithError(err).Warn("notification requeued")
	}
	return err
}

// Run 启动 workers 个协程消费队列，ctx 取消后等待全部退出
func (p *Processor) Run(ctx context.Context, workers int) {
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			entry := p.log.WithField("worker_id", workerID)

			for {
				select {
				case <-ctx.Done():
					entry.Info("worker shutting down")
					return
				default:
					msg, err := p.queue.Pop(ctx, p.PopTimeout)
					if err != nil {
						if ctx.Err() != nil {
							return
						}
						entry.WithError(err).Warn("failed to pop notification")
						continue
					}

					if msg == nil {
						continue // 超时，继续等待
					}

					// 失败已在 Process 内记录
					_ = p.Process(ctx, msg)
				}
			}
		}(i)
	}

	wg.Wait()
}
