package service

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/okiim/libris/pkg/kafka"
)

// Events publishes circulation events to Kafka. Publishing is best effort:
// failures are logged and never propagate. A nil *Events is a no-op, so the
// service runs unchanged without brokers configured.
type Events struct {
	producer sarama.SyncProducer
	topic    string
	log      *zap.Logger
}

func NewEvents(producer sarama.SyncProducer, topic string, log *zap.Logger) *Events {
	return &Events{
		producer: producer,
		topic:    topic,
		log:      log.Named("events"),
	}
}

func (e *Events) Publish(_ context.Context, ev kafka.EventCirculation) {
	if e == nil || e.producer == nil {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		e.log.Error("marshal event", zap.Error(err))
		return
	}
	msg := &sarama.ProducerMessage{Topic: e.topic, Value: sarama.StringEncoder(data)}
	if _, _, err := e.producer.SendMessage(msg); err != nil {
		e.log.Error("publish event", zap.String("type", ev.Type), zap.Error(err))
	}
}
