package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecobazaarx/internal/models"
)

func TestKafkaPublisher_Publish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, NewKafkaConfig())
	defer producer.Close()

	var got OrderPlaced
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		return json.Unmarshal(val, &got)
	})

	pub := NewKafkaPublisherWithProducer(producer, nil)
	ev := OrderPlaced{CheckoutID: "c-1", OrderIDs: []int64{1, 2}, BuyerEmail: "alice@x.com", Total: 40}

	require.NoError(t, pub.Publish(context.Background(), TopicOrderPlaced, ev))
	assert.Equal(t, "c-1", got.CheckoutID)
	assert.Equal(t, []int64{1, 2}, got.OrderIDs)
	assert.Equal(t, 40.0, got.Total)
}

func TestKafkaPublisher_PublishError(t *testing.T) {
	producer := mocks.NewSyncProducer(t, NewKafkaConfig())
	defer producer.Close()

	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	pub := NewKafkaPublisherWithProducer(producer, nil)
	err := pub.Publish(context.Background(), TopicProductCreated, ProductEvent{ProductID: 1, Action: "created"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, sarama.ErrOutOfBrokers))
}

func TestKafkaPublisher_UnmarshalablePayload(t *testing.T) {
	producer := mocks.NewSyncProducer(t, NewKafkaConfig())
	defer producer.Close()

	pub := NewKafkaPublisherWithProducer(producer, nil)
	err := pub.Publish(context.Background(), TopicProductCreated, make(chan int))
	assert.Error(t, err)
}

func TestNewOrderPlaced(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	orders := []models.Order{
		{ID: 1, CheckoutID: "abc", Buyer: models.Buyer{Email: "a@x.com"}, Total: 10, Footprint: 1.5, Date: at},
		{ID: 2, CheckoutID: "abc", Buyer: models.Buyer{Email: "a@x.com"}, Total: 5, Footprint: 0.5, Date: at},
	}

	ev := NewOrderPlaced(orders)

	assert.Equal(t, "abc", ev.CheckoutID)
	assert.Equal(t, []int64{1, 2}, ev.OrderIDs)
	assert.Equal(t, 15.0, ev.Total)
	assert.Equal(t, 2.0, ev.Footprint)
	assert.Equal(t, at, ev.PlacedAt)
}

func TestLogPublisher(t *testing.T) {
	pub := NewLogPublisher(nil)
	assert.NoError(t, pub.Publish(context.Background(), TopicUserRegistered, UserRegistered{UserID: 1}))
}

func TestNewOrderPlaced_SumsWithoutFloatDrift(t *testing.T) {
	orders := []models.Order{
		{ID: 1, Total: 0.1, Footprint: 0.1},
		{ID: 2, Total: 0.2, Footprint: 0.2},
	}

	ev := NewOrderPlaced(orders)

	assert.Equal(t, 0.3, ev.Total)
	assert.Equal(t, 0.3, ev.Footprint)
}
