package services

import (
	"context"
	"sync"
	"time"

	"rocketshoes-cart/internal/models"
	"rocketshoes-cart/pkg/messaging"

	"github.com/sirupsen/logrus"
)

// Notifier surfaces cart messages to the shopper.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification)
}

// LogNotifier writes every notification as a structured log line.
type LogNotifier struct {
	log logrus.FieldLogger
}

func NewLogNotifier(log logrus.FieldLogger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (l *LogNotifier) Notify(ctx context.Context, n models.Notification) {
	entry := l.log.WithFields(logrus.Fields{
		"operation":  n.Operation,
		"product_id": n.ProductID,
		"session_id": n.SessionID,
	})
	if n.Type == models.NotificationError {
		entry.Warn(n.Message)
		return
	}
	entry.Info(n.Message)
}

// EventPublisher is satisfied by *messaging.KafkaProducer.
type EventPublisher interface {
	SendMessage(ctx context.Context, topic, key string, value interface{}) error
}

// KafkaNotifier publishes notifications for the storefront's toast stream.
// A failed publish is logged and never fails the cart operation.
type KafkaNotifier struct {
	publisher EventPublisher
	topic     string
	log       logrus.FieldLogger
}

func NewKafkaNotifier(publisher EventPublisher, topic string, log logrus.FieldLogger) *KafkaNotifier {
	return &KafkaNotifier{
		publisher: publisher,
		topic:     topic,
		log:       log,
	}
}

func (k *KafkaNotifier) Notify(ctx context.Context, n models.Notification) {
	event := messaging.NotificationEvent{
		Type:      string(n.Type),
		Message:   n.Message,
		Operation: n.Operation,
		ProductID: n.ProductID,
		SessionID: n.SessionID,
		Timestamp: time.Now().Unix(),
	}
	if err := k.publisher.SendMessage(ctx, k.topic, n.SessionID, event); err != nil {
		k.log.WithError(err).WithField("topic", k.topic).Warn("failed to publish cart notification")
	}
}

// MultiNotifier fans a notification out to every sink in order.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, n models.Notification) {
	for _, notifier := range m {
		notifier.Notify(ctx, n)
	}
}

type collectorKey struct{}

// NotificationCollector records the notifications cart operations emit under
// one context, so a caller can echo them back to the shopper.
type NotificationCollector struct {
	mu    sync.Mutex
	items []models.Notification
}

// CollectNotifications returns a context that records every notification a
// cart operation emits while using it.
func CollectNotifications(ctx context.Context) (context.Context, *NotificationCollector) {
	collector := &NotificationCollector{}
	return context.WithValue(ctx, collectorKey{}, collector), collector
}

func collectorFrom(ctx context.Context) *NotificationCollector {
	collector, _ := ctx.Value(collectorKey{}).(*NotificationCollector)
	return collector
}

func (c *NotificationCollector) add(n models.Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, n)
}

// Last returns the most recent notification, or nil when none was emitted.
func (c *NotificationCollector) Last() *models.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.items) == 0 {
		return nil
	}
	n := c.items[len(c.items)-1]
	return &n
}
