package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/qs3c/crew_server/internal/model"
)

const (
	ChannelMembershipEvents = "membership_events"
)

// EventTypeMembership 推送给前端的消息类型
const EventTypeMembership = "membership_event"

// EventMessage 成员变动的站内事件
type EventMessage struct {
	Type        string              `json:"type"`
	MessageID   string              `json:"message_id"`
	UserID      int64               `json:"user_id"`
	TeamKind    model.TeamKind      `json:"team_kind"`
	TeamID      int64               `json:"team_id"`
	TeamName    string              `json:"team_name"`
	ApplicantID int64               `json:"applicant_id,omitempty"`
	Outcome     model.NotifyOutcome `json:"outcome"`
	Message     string              `json:"message"`
}

// OutcomeMessages 事件对应的提示文案
var OutcomeMessages = map[model.NotifyOutcome]string{
	model.OutcomeApplied:  "收到新的入组申请",
	model.OutcomeAccepted: "入组申请已通过",
	model.OutcomeRejected: "入组申请未通过",
	model.OutcomeAdded:    "你已被添加为团队成员",
}

// Publisher Redis 发布者
type Publisher struct {
	client *redis.Client
}

// NewPublisher 创建发布者
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// PublishEvent 发布成员事件
func (p *Publisher) PublishEvent(ctx context.Context, msg *EventMessage) error {
	msg.Type = EventTypeMembership

	// 自动填充提示文案
	if msg.Message == "" {
		msg.Message = OutcomeMessages[msg.Outcome]
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal event message: %w", err)
	}

	return p.client.Publish(ctx, ChannelMembershipEvents, data).Err()
}

// Subscriber Redis 订阅者
type Subscriber struct {
	client *redis.Client
}

// NewSubscriber 创建订阅者
func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe 订阅成员事件，直到 ctx 取消
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*EventMessage)) error {
	pubsub := s.client.Subscribe(ctx, ChannelMembershipEvents)
	defer pubsub.Close()

	// 确认订阅已建立
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var event EventMessage
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue // 忽略解析错误
			}

			handler(&event)
		}
	}
}
