// Package ingest consumes device health samples from Kafka and persists
// them as health records.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/segmentio/kafka-go"

	"example.com/healthshare/internal/domain"
)

// Reader exposes the minimal kafka.Reader interface needed by the processor.
type Reader interface {
	FetchMessage(context.Context) (kafka.Message, error)
	CommitMessages(context.Context, ...kafka.Message) error
	Close() error
}

// Handler receives one owner's decoded record batch.
type Handler interface {
	Handle(ctx context.Context, ownerID string, records []domain.HealthRecord) error
}

// Option configures optional behaviour for the Processor.
type Option func(*Processor)

// WithLogger overrides the logger used to report errors.
func WithLogger(logger *log.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

// Processor pulls sample batches from Kafka, decodes them, and dispatches
// to a Handler. The message key carries the owner id; the value is a JSON
// array of samples. Samples that fail to decode are counted and skipped so
// one bad measurement never poisons the batch.
type Processor struct {
	reader  Reader
	handler Handler
	logger  *log.Logger
}

// NewProcessor constructs a Processor with the provided reader and handler.
func NewProcessor(reader Reader, handler Handler, opts ...Option) *Processor {
	p := &Processor{
		reader:  reader,
		handler: handler,
		logger:  log.New(log.Writer(), "[ingest] ", log.LstdFlags|log.Lshortfile),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run starts a blocking loop that processes messages until the context is
// cancelled.
func (p *Processor) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg, err := p.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			p.logger.Printf("fetch error: %v", err)
			continue
		}

		ownerID, records, decodeErr := decodeBatch(msg)
		if decodeErr != nil {
			p.logger.Printf("decode error (topic=%s, partition=%d, offset=%d): %v", msg.Topic, msg.Partition, msg.Offset, decodeErr)
			recordDecodeError(msg.Topic)
			// Commit malformed messages to avoid poison-pill loops.
			if commitErr := p.reader.CommitMessages(ctx, msg); commitErr != nil {
				p.logger.Printf("commit error after decode failure: %v", commitErr)
			}
			continue
		}

		if handleErr := p.handler.Handle(ctx, ownerID, records); handleErr != nil {
			p.logger.Printf("handler error (owner=%s, topic=%s): %v", ownerID, msg.Topic, handleErr)
			recordHandlerError(msg.Topic)
			continue
		}

		if commitErr := p.reader.CommitMessages(ctx, msg); commitErr != nil {
			p.logger.Printf("commit error: %v", commitErr)
		} else {
			recordBatchProcessed(msg, records)
		}
	}
}

// decodeBatch turns one Kafka message into an owner's record batch. Invalid
// individual samples are skipped and counted; a message with no usable
// samples at all is a decode error.
func decodeBatch(msg kafka.Message) (string, []domain.HealthRecord, error) {
	ownerID := string(msg.Key)
	if ownerID == "" {
		return "", nil, errors.New("missing owner key")
	}

	var samples []Sample
	if err := json.Unmarshal(msg.Value, &samples); err != nil {
		return "", nil, fmt.Errorf("sample batch: %w", err)
	}
	if len(samples) == 0 {
		return "", nil, errors.New("empty sample batch")
	}

	records := make([]domain.HealthRecord, 0, len(samples))
	for _, sample := range samples {
		rec, err := sample.toRecord(ownerID)
		if err != nil {
			recordMalformedSample(msg.Topic)
			continue
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return "", nil, errors.New("no valid samples in batch")
	}
	return ownerID, records, nil
}
