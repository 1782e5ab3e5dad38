package rabbitmq

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type ackRecorder struct {
	mu     sync.Mutex
	acked  []uint64
	nacked []uint64
}

func (a *ackRecorder) Ack(tag uint64, _ bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acked = append(a.acked, tag)
	return nil
}

func (a *ackRecorder) Nack(tag uint64, _ bool, _ bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacked = append(a.nacked, tag)
	return nil
}

func (a *ackRecorder) Reject(tag uint64, _ bool) error {
	return a.Nack(tag, false, false)
}

type fakeSource struct {
	deliveries chan amqp.Delivery
	err        error
}

func (f *fakeSource) Consume(string, string, bool, bool, bool, bool, amqp.Table) (<-chan amqp.Delivery, error) {
	return f.deliveries, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestConsumerMessage_AcksAndNacks(t *testing.T) {
	defer goleak.VerifyNone(t)

	ack := &ackRecorder{}
	src := &fakeSource{deliveries: make(chan amqp.Delivery, 4)}
	src.deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: []byte("ok")}
	src.deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 2, Body: []byte("bad")}
	src.deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 3, Body: []byte("ok")}
	close(src.deliveries)

	handler := func(_ context.Context, body []byte) error {
		if string(body) == "bad" {
			return errors.New("fail")
		}
		return nil
	}

	err := ConsumerMessage(context.Background(), discardLogger(), src, "q", 2, handler)
	require.NoError(t, err)

	assert.ElementsMatch(t, []uint64{1, 3}, ack.acked)
	assert.Equal(t, []uint64{2}, ack.nacked)
}

func TestConsumerMessage_StopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := &fakeSource{deliveries: make(chan amqp.Delivery)}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- ConsumerMessage(ctx, discardLogger(), src, "q", 1, func(context.Context, []byte) error { return nil })
	}()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not stop after cancel")
	}
}

func TestConsumerMessage_ConsumeError(t *testing.T) {
	src := &fakeSource{err: errors.New("channel closed")}
	err := ConsumerMessage(context.Background(), discardLogger(), src, "q", 1, nil)
	assert.ErrorContains(t, err, "channel closed")
}

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

func (f *fakeChannel) Publish(exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return nil
}

func TestPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p := NewPublisher(ch)

	err := p.Publish(context.Background(), RoutingCredentialAlert, map[string]string{"service": "Viki"})
	require.NoError(t, err)

	assert.Equal(t, Exchange, ch.exchange)
	assert.Equal(t, RoutingCredentialAlert, ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)
	assert.JSONEq(t, `{"service":"Viki"}`, string(ch.msg.Body))
}

func TestPublisher_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewPublisher(&fakeChannel{}).Publish(ctx, RoutingExpiringClient, struct{}{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNotificationQueues(t *testing.T) {
	keys := make(map[string]bool)
	for _, q := range NotificationQueues() {
		assert.NotEmpty(t, q.QueueName)
		keys[q.RoutingKey] = true
	}
	assert.True(t, keys[RoutingCredentialAlert])
	assert.True(t, keys[RoutingExpiringClient])
}
