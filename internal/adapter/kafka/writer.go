package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/squirrel-census-etl/internal/config"
	"github.com/couchcryptid/squirrel-census-etl/internal/domain"
	"github.com/couchcryptid/squirrel-census-etl/internal/pipeline"
)

// Block kinds carried in the block_kind header.
const (
	KindText  = "text"
	KindChart = "chart"
)

// Block is the JSON payload of one published dashboard block.
type Block struct {
	RunID     string        `json:"run_id"`
	Sequence  int           `json:"sequence"`
	Kind      string        `json:"kind"`
	Markdown  string        `json:"markdown,omitempty"`
	Chart     *domain.Chart `json:"chart,omitempty"`
	EmittedAt time.Time     `json:"emitted_at"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes dashboard blocks to a Kafka topic, keyed by run id so a
// build's blocks stay on one partition in order. It implements pipeline.Sink.
type Writer struct {
	writer   messageWriter
	logger   *slog.Logger
	sequence atomic.Int64
}

// NewWriter creates a Kafka producer for the configured block topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// Text publishes a markdown block.
func (w *Writer) Text(ctx context.Context, markdown string) error {
	return w.publish(ctx, Block{Kind: KindText, Markdown: markdown})
}

// Chart publishes a chart block.
func (w *Writer) Chart(ctx context.Context, chart domain.Chart) error {
	return w.publish(ctx, Block{Kind: KindChart, Chart: &chart})
}

func (w *Writer) publish(ctx context.Context, b Block) error {
	b.RunID = pipeline.RunID(ctx)
	b.Sequence = int(w.sequence.Add(1) - 1)
	b.EmittedAt = domain.Now()

	msg, err := serializeBlock(b)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s block %d: %w", b.Kind, b.Sequence, err)
	}
	w.logger.Debug("block published", "kind", b.Kind, "sequence", b.Sequence)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeBlock marshals a Block into a Kafka message.
func serializeBlock(b Block) (kafkago.Message, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize dashboard block: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(b.RunID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "block_kind", Value: []byte(b.Kind)},
			{Key: "run_id", Value: []byte(b.RunID)},
			{Key: "sequence", Value: []byte(strconv.Itoa(b.Sequence))},
			{Key: "emitted_at", Value: []byte(b.EmittedAt.Format(time.RFC3339))},
		},
	}, nil
}
