package storage

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"stakeLedger/internal/model"
)

const (
	SinkJSONL = "jsonl"
	SinkKafka = "kafka"
	SinkStdio = "stdio"
)

// SinkConfig selects and configures an event sink.
type SinkConfig struct {
	Driver string

	// JSONL fields.
	Path   string
	Append bool

	// Kafka fields.
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
	TLS          bool

	// Stdio fields.
	Writer io.Writer
}

// NewEventSink creates an event sink for the configured driver.
func NewEventSink(cfg SinkConfig) (EventSink, error) {
	switch normalizeDriver(cfg.Driver) {
	case SinkJSONL:
		if strings.TrimSpace(cfg.Path) == "" {
			return nil, errors.New("jsonl sink requires a path")
		}
		w, err := NewJSONLWriter(cfg.Path, cfg.Append)
		if err != nil {
			return nil, err
		}
		return &jsonlEventSink{w: w}, nil
	case SinkKafka:
		return newKafkaEventSink(cfg)
	case SinkStdio:
		w := cfg.Writer
		if w == nil {
			w = os.Stdout
		}
		return &stdioEventSink{w: w}, nil
	default:
		return nil, fmt.Errorf("unsupported sink driver %q", cfg.Driver)
	}
}

func normalizeDriver(v string) string {
	v = strings.TrimSpace(strings.ToLower(v))
	if v == "" {
		return SinkJSONL
	}
	return v
}

func normalizeList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}

type jsonlEventSink struct {
	w  *JSONLWriter
	mu sync.Mutex
}

func (s *jsonlEventSink) PutEvents(_ context.Context, events []model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ev := range events {
		record, err := model.Wrap(ev)
		if err != nil {
			return err
		}
		if err := s.w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

func (s *jsonlEventSink) Close() error {
	return s.w.Close()
}

type kafkaEventSink struct {
	writer *kafka.Writer
	topic  string
}

func newKafkaEventSink(cfg SinkConfig) (EventSink, error) {
	brokers := normalizeList(cfg.Brokers)
	if len(brokers) == 0 {
		return nil, errors.New("kafka sink requires at least one broker")
	}
	topic := strings.TrimSpace(cfg.Topic)
	if topic == "" {
		return nil, errors.New("kafka sink requires a topic")
	}

	batchTimeout := cfg.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = 10 * time.Millisecond
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: batchTimeout,
		RequiredAcks: kafka.RequireAll,
	}
	if cfg.TLS {
		writer.Transport = &kafka.Transport{
			TLS: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		}
	}
	return &kafkaEventSink{writer: writer, topic: topic}, nil
}

// PutEvents publishes one message per event keyed by its log, so every
// event of a log lands on the same partition.
func (s *kafkaEventSink) PutEvents(ctx context.Context, events []model.Event) error {
	if len(events) == 0 {
		return nil
	}
	msgs, err := kafkaMessages(events)
	if err != nil {
		return err
	}
	if err := s.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish to %s: %w", s.topic, err)
	}
	return nil
}

func (s *kafkaEventSink) Close() error {
	return s.writer.Close()
}

func kafkaMessages(events []model.Event) ([]kafka.Message, error) {
	msgs := make([]kafka.Message, 0, len(events))
	for _, ev := range events {
		record, err := model.Wrap(ev)
		if err != nil {
			return nil, err
		}
		payload, err := json.Marshal(record)
		if err != nil {
			return nil, fmt.Errorf("marshal record: %w", err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(ev.Meta().LogKey().String()),
			Value: payload,
			Headers: []kafka.Header{
				{Key: "table", Value: []byte(ev.TableName())},
			},
		})
	}
	return msgs, nil
}

type stdioEventSink struct {
	w  io.Writer
	mu sync.Mutex
}

func (s *stdioEventSink) PutEvents(_ context.Context, events []model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ev := range events {
		record, err := model.Wrap(ev)
		if err != nil {
			return err
		}
		line, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		if _, err := s.w.Write(append(line, '\n')); err != nil {
			return err
		}
	}
	return nil
}

func (s *stdioEventSink) Close() error {
	return nil
}
