package repository

import (
	"context"

	"DeBrief/internal/domain/models"
	"DeBrief/internal/domain/repository"
)

type producer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaAlertPublisher mirrors dispatched alerts to a topic keyed by symbol so
// downstream consumers see per-symbol order.
type KafkaAlertPublisher struct {
	producer producer
	topic    string
}

func NewKafkaAlertPublisher(p producer, topic string) repository.AlertPublisher {
	return &KafkaAlertPublisher{producer: p, topic: topic}
}

func (k *KafkaAlertPublisher) PublishAlert(ctx context.Context, a *models.Alert) error {
	return k.producer.Publish(ctx, k.topic, []byte(a.Symbol), a)
}

func (k *KafkaAlertPublisher) Close() error {
	return k.producer.Close()
}
