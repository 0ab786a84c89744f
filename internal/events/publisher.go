// Package events streams contest events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"refcontest/entity"
	"refcontest/internal/config"
	"refcontest/lib/sl"
)

const flushTimeout = 10 * time.Second

// Publisher produces events asynchronously; delivery failures are logged, never returned.
type Publisher struct {
	client *kgo.Client
	topic  string
	log    *slog.Logger
}

// Nop discards every event; used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, entity.Event) {}
func (Nop) Close()                                {}

type Closer interface {
	Publish(ctx context.Context, event entity.Event)
	Close()
}

// New returns a Kafka publisher, or Nop when conf has no brokers.
func New(conf config.KafkaConfig, log *slog.Logger) (Closer, error) {
	if len(conf.Brokers) == 0 {
		return Nop{}, nil
	}
	return NewPublisher(conf.Brokers, conf.Topic, log)
}

func NewPublisher(brokers []string, topic string, log *slog.Logger) (*Publisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.AllowAutoTopicCreation(),
		kgo.ProducerLinger(50*time.Millisecond),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	return &Publisher{
		client: client,
		topic:  topic,
		log:    log.With(sl.Module("events"), slog.String("topic", topic)),
	}, nil
}

// Publish enqueues the event keyed by user id so events of one user stay ordered.
func (p *Publisher) Publish(ctx context.Context, event entity.Event) {
	value, err := json.Marshal(event)
	if err != nil {
		p.log.Error("marshal event", sl.Err(err))
		return
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(strconv.FormatInt(event.UserID, 10)),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "type", Value: []byte(event.Type)},
		},
	}
	p.client.Produce(context.WithoutCancel(ctx), record, func(r *kgo.Record, err error) {
		if err != nil {
			p.log.With(
				slog.String("type", event.Type),
				slog.String("id", event.ID),
			).Warn("produce event", sl.Err(err))
		}
	})
}

// Close flushes buffered records and closes the client.
func (p *Publisher) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if err := p.client.Flush(ctx); err != nil {
		p.log.Warn("flush events", sl.Err(err))
	}
	p.client.Close()
}
