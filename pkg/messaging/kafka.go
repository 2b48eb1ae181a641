package messaging

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/segmentio/kafka-go"
)

// messageWriter is the part of *kafka.Writer the producer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaProducer struct {
	brokers   []string
	mu        sync.Mutex
	writers   map[string]messageWriter
	newWriter func(topic string) messageWriter
}

func NewKafkaProducer(brokers []string) *KafkaProducer {
	kp := &KafkaProducer{
		brokers: brokers,
		writers: make(map[string]messageWriter),
	}
	kp.newWriter = func(topic string) messageWriter {
		return &kafka.Writer{
			Addr:                   kafka.TCP(kp.brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		}
	}
	return kp
}

func (kp *KafkaProducer) getWriter(topic string) messageWriter {
	kp.mu.Lock()
	defer kp.mu.Unlock()

	if writer, exists := kp.writers[topic]; exists {
		return writer
	}
	writer := kp.newWriter(topic)
	kp.writers[topic] = writer
	return writer
}

// SendMessage publishes value as JSON. Messages with the same key land on the
// same partition, so one session's events stay ordered.
func (kp *KafkaProducer) SendMessage(ctx context.Context, topic, key string, value interface{}) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return err
	}

	message := kafka.Message{
		Key:   []byte(key),
		Value: jsonData,
	}

	return kp.getWriter(topic).WriteMessages(ctx, message)
}

func (kp *KafkaProducer) Close() error {
	kp.mu.Lock()
	defer kp.mu.Unlock()

	var firstErr error
	for topic, writer := range kp.writers {
		if err := writer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(kp.writers, topic)
	}
	return firstErr
}

// NotificationEvent is the payload published for every cart notification.
type NotificationEvent struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Operation string `json:"operation"`
	ProductID int    `json:"product_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Timestamp int64  `json:"timestamp"`
}
