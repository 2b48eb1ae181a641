package services

import (
	"context"
	"errors"
	"testing"

	"rocketshoes-cart/internal/models"
	"rocketshoes-cart/pkg/messaging"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedEvent struct {
	topic string
	key   string
	value interface{}
}

type fakePublisher struct {
	events []capturedEvent
	err    error
}

func (f *fakePublisher) SendMessage(ctx context.Context, topic, key string, value interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, capturedEvent{topic: topic, key: key, value: value})
	return nil
}

var addedNotification = models.Notification{
	Type:      models.NotificationSuccess,
	Message:   MsgProductAdded,
	Operation: OpAddProduct,
	ProductID: 3,
	SessionID: "s1",
}

func TestLogNotifier_LevelFollowsType(t *testing.T) {
	logger, hook := test.NewNullLogger()
	notifier := NewLogNotifier(logger)

	notifier.Notify(context.Background(), addedNotification)
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
	assert.Equal(t, MsgProductAdded, hook.LastEntry().Message)
	assert.Equal(t, "s1", hook.LastEntry().Data["session_id"])

	notifier.Notify(context.Background(), models.Notification{Type: models.NotificationError, Message: MsgOutOfStock})
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestKafkaNotifier_PublishesEvent(t *testing.T) {
	logger, _ := test.NewNullLogger()
	publisher := &fakePublisher{}

	NewKafkaNotifier(publisher, "cart-notifications", logger).Notify(context.Background(), addedNotification)

	require.Len(t, publisher.events, 1)
	got := publisher.events[0]
	assert.Equal(t, "cart-notifications", got.topic)
	assert.Equal(t, "s1", got.key)

	event, ok := got.value.(messaging.NotificationEvent)
	require.True(t, ok)
	assert.Equal(t, "success", event.Type)
	assert.Equal(t, MsgProductAdded, event.Message)
	assert.Equal(t, 3, event.ProductID)
	assert.NotZero(t, event.Timestamp)
}

func TestKafkaNotifier_PublishFailureIsLogged(t *testing.T) {
	logger, hook := test.NewNullLogger()
	publisher := &fakePublisher{err: errors.New("broker unavailable")}

	NewKafkaNotifier(publisher, "cart-notifications", logger).Notify(context.Background(), addedNotification)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestMultiNotifier_FansOut(t *testing.T) {
	a, b := &recordingNotifier{}, &recordingNotifier{}

	MultiNotifier{a, b}.Notify(context.Background(), addedNotification)

	assert.Equal(t, []models.Notification{addedNotification}, a.notifications)
	assert.Equal(t, []models.Notification{addedNotification}, b.notifications)
}
