// Package retention permanently removes records that every sharing group's
// deletion date has passed.
package retention

import (
	"context"
	"errors"
	"log"
	"time"
)

// RecordSweeper deletes one batch of fully expired records and reports how
// many were removed.
type RecordSweeper interface {
	SweepExpired(ctx context.Context, batchSize int) (int, error)
}

// Option configures optional sweeper behaviour.
type Option func(*Sweeper)

// WithLogger overrides the sweeper's logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Sweeper) {
		s.logger = logger
	}
}

// Sweeper runs the retention deletion loop. Reads never consult it; expired
// records are already filtered out at resolution time, the sweeper only
// reclaims storage.
type Sweeper struct {
	store            RecordSweeper
	pollInterval     time.Duration
	batchSize        int
	logger           *log.Logger
	shutdownComplete chan struct{}
}

// NewSweeper constructs a Sweeper.
func NewSweeper(store RecordSweeper, pollInterval time.Duration, batchSize int, opts ...Option) *Sweeper {
	s := &Sweeper{
		store:            store,
		pollInterval:     pollInterval,
		batchSize:        batchSize,
		logger:           log.New(log.Writer(), "[retention] ", log.LstdFlags),
		shutdownComplete: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the polling loop. It should be called in a goroutine.
func (s *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.pollInterval)
	defer func() {
		ticker.Stop()
		close(s.shutdownComplete)
	}()

	for {
		if err := s.sweep(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Printf("sweep error: %v", err)
			recordSweepError()
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Wait blocks until the sweeper has stopped.
func (s *Sweeper) Wait() {
	<-s.shutdownComplete
}

// sweep drains full batches until a short batch signals no more expired
// records, so a backlog clears within a single tick.
func (s *Sweeper) sweep(ctx context.Context) error {
	start := time.Now()
	total := 0
	for {
		deleted, err := s.store.SweepExpired(ctx, s.batchSize)
		if err != nil {
			return err
		}
		total += deleted
		if deleted < s.batchSize {
			break
		}
	}
	if total > 0 {
		s.logger.Printf("deleted %d expired records", total)
		recordSweep(total, time.Since(start))
	}
	return nil
}
