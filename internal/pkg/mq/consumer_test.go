package mq

import (
	"context"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
)

type recordingAck struct {
	acked  []uint64
	nacked []uint64
}

func (r *recordingAck) Ack(tag uint64, _ bool) error {
	r.acked = append(r.acked, tag)
	return nil
}

func (r *recordingAck) Nack(tag uint64, _ bool, requeue bool) error {
	if requeue {
		r.nacked = append(r.nacked, tag)
	}
	return nil
}

func (r *recordingAck) Reject(tag uint64, requeue bool) error {
	return r.Nack(tag, false, requeue)
}

func TestConsume_AcksAndRequeues(t *testing.T) {
	ack := &recordingAck{}
	msgs := make(chan amqp.Delivery, 2)
	msgs <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, RoutingKey: "payment.succeeded"}
	msgs <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 2, RoutingKey: "payment.failed"}
	close(msgs)

	err := consume(context.Background(), msgs, func(_ context.Context, key string, _ []byte) error {
		if key == "payment.failed" {
			return errors.New("db down")
		}
		return nil
	})

	assert.ErrorIs(t, err, ErrDeliveriesClosed)
	assert.Equal(t, []uint64{1}, ack.acked)
	assert.Equal(t, []uint64{2}, ack.nacked)
}

func TestConsume_StopsCleanlyOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	msgs := make(chan amqp.Delivery)
	close(msgs)

	assert.NoError(t, consume(ctx, msgs, func(context.Context, string, []byte) error { return nil }))
}
