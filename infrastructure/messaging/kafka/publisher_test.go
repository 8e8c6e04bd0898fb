package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/SChris-dev/EcoShop-API/infrastructure/messaging"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublish(t *testing.T) {
	fw := &fakeWriter{}
	p := &Publisher{w: fw}

	err := p.Publish(context.Background(), messaging.Message{ID: "e1", Key: "42", Type: "order.placed", Payload: []byte(`{"x":1}`)})
	require.NoError(t, err)
	require.Len(t, fw.msgs, 1)
	assert.Equal(t, "42", string(fw.msgs[0].Key))
	assert.JSONEq(t, `{"x":1}`, string(fw.msgs[0].Value))
	assert.Equal(t, "order.placed", string(fw.msgs[0].Headers[1].Value))

	require.NoError(t, p.Close())
	assert.True(t, fw.closed)
}

func TestPublishError(t *testing.T) {
	p := &Publisher{w: &fakeWriter{err: errors.New("leader not available")}}
	assert.Error(t, p.Publish(context.Background(), messaging.Message{Key: "1"}))
}

func TestNewPublisher(t *testing.T) {
	_, err := NewPublisher(nil, "orders")
	assert.ErrorIs(t, err, ErrNoBrokers)

	p, err := NewPublisher(ParseBrokers(" localhost:9092, ,kafka:9092"), "orders")
	require.NoError(t, err)
	assert.NotNil(t, p)

	assert.Equal(t, []string{"a:1", "b:2"}, ParseBrokers("a:1,b:2,"))
}
