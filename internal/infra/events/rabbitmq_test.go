package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/usecase"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type channelMock struct{ mock.Mock }

func (m *channelMock) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	return m.Called(name, kind, durable, autoDelete, internal, noWait).Error(0)
}

func (m *channelMock) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	return m.Called(exchange, key, msg).Error(0)
}

func (m *channelMock) Close() error {
	return m.Called().Error(0)
}

func TestNewPublisher_DeclaresDurableTopicExchange(t *testing.T) {
	ch := new(channelMock)
	ch.On("ExchangeDeclare", "orders", "topic", true, false, false, false).Return(nil).Once()

	p, err := newPublisher(ch, "orders", zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "orders", p.exchange)
	ch.AssertExpectations(t)
}

func TestNewPublisher_DeclareFailureClosesChannel(t *testing.T) {
	ch := new(channelMock)
	ch.On("ExchangeDeclare", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("access refused")).Once()
	ch.On("Close").Return(nil).Once()

	_, err := newPublisher(ch, "orders", zap.NewNop())
	assert.ErrorContains(t, err, "declare exchange orders")
	ch.AssertExpectations(t)
}

func TestPublishOrderEvent(t *testing.T) {
	ch := new(channelMock)
	ch.On("ExchangeDeclare", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	occurred := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	e := usecase.OrderEvent{
		Type:        usecase.EventOrderCreated,
		OrderID:     12,
		OrderNumber: "ORD-20240309-A00000",
		UserID:      7,
		Total:       decimal.NewFromInt(6960),
		ItemCount:   2,
		OccurredAt:  occurred,
	}

	ch.On("PublishWithContext", "orders", "order.created", mock.MatchedBy(func(msg amqp.Publishing) bool {
		var got usecase.OrderEvent
		if err := json.Unmarshal(msg.Body, &got); err != nil {
			return false
		}
		return msg.DeliveryMode == amqp.Persistent &&
			msg.ContentType == "application/json" &&
			msg.MessageId == "ORD-20240309-A00000" &&
			msg.Timestamp.Equal(occurred) &&
			got.OrderID == 12 &&
			got.Total.Equal(decimal.NewFromInt(6960))
	})).Return(nil).Once()

	p, err := newPublisher(ch, "orders", zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, p.PublishOrderEvent(context.Background(), e))
	ch.AssertExpectations(t)
}

func TestPublishOrderEvent_BrokerError(t *testing.T) {
	ch := new(channelMock)
	ch.On("ExchangeDeclare", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ch.On("PublishWithContext", mock.Anything, mock.Anything, mock.Anything).Return(amqp.ErrClosed).Once()
	ch.On("Close").Return(nil).Once()

	p, err := newPublisher(ch, "orders", zap.NewNop())
	require.NoError(t, err)

	err = p.PublishOrderEvent(context.Background(), usecase.OrderEvent{Type: usecase.EventOrderCreated})
	assert.ErrorIs(t, err, amqp.ErrClosed)

	p.Close()
	ch.AssertExpectations(t)
}

func TestNoopPublisher(t *testing.T) {
	assert.NoError(t, NoopPublisher{}.PublishOrderEvent(context.Background(), usecase.OrderEvent{}))
}
