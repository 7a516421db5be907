package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/segmentio/kafka-go"

	"github.com/fairyhunter13/storefront-catalog-service/internal/model"
)

// Publisher delivers a single event downstream.
type Publisher interface {
	Publish(ctx context.Context, ev model.ProductEvent) error
	Close() error
}

// KafkaPublisher writes events to one topic, keyed by product key so that
// all events of a product land on the same partition.
type KafkaPublisher struct {
	w *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{w: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}}
}

func message(ev model.ProductEvent) (kafka.Message, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal event: %w", err)
	}
	return kafka.Message{
		Key:     []byte(strconv.FormatInt(ev.ProductKey, 10)),
		Value:   payload,
		Time:    ev.OccurredAt,
		Headers: []kafka.Header{{Key: "event_type", Value: []byte(ev.Type)}},
	}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev model.ProductEvent) error {
	msg, err := message(ev)
	if err != nil {
		return err
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s to %s: %w", ev.Type, p.w.Topic, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error { return p.w.Close() }

// LogPublisher writes events to a logger. It is used when no brokers are configured.
type LogPublisher struct {
	l *slog.Logger
}

func NewLogPublisher(l *slog.Logger) *LogPublisher { return &LogPublisher{l: l} }

func (p *LogPublisher) Publish(_ context.Context, ev model.ProductEvent) error {
	p.l.Info("product_event", "type", ev.Type, "product_id", ev.ProductKey, "name", ev.Name, "sequence", ev.Sequence, "occurred_at", ev.OccurredAt)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
