package history

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/harrisonrobin/dayplan/pkg/metrics"
)

// ErrInvalidDuration is returned for non-positive completion durations.
var ErrInvalidDuration = errors.New("duration must be a positive number of minutes")

// Store persists observed completion durations, keyed by exact task text.
// Record must be durable before it returns.
type Store interface {
	Record(ctx context.Context, task string, minutes int) error
	Durations(ctx context.Context, task string) ([]int, error)
}

// Predictor estimates task length from a Store.
type Predictor struct {
	store Store
}

func NewPredictor(store Store) *Predictor {
	return &Predictor{store: store}
}

// RecordCompletion appends an observed duration for task.
func (p *Predictor) RecordCompletion(ctx context.Context, task string, minutes int) error {
	if minutes <= 0 {
		return fmt.Errorf("record %q: %w (got %d)", task, ErrInvalidDuration, minutes)
	}
	if err := p.store.Record(ctx, task, minutes); err != nil {
		return fmt.Errorf("record %q: %w", task, err)
	}
	metrics.CompletionsRecorded.Inc()
	return nil
}

// PredictDuration returns the mean of every recorded duration for task,
// or defaultMinutes when there is none. Read failures count as no history.
func (p *Predictor) PredictDuration(ctx context.Context, task string, defaultMinutes float64) float64 {
	durations, err := p.store.Durations(ctx, task)
	if err != nil {
		log.Printf("Warning: could not read duration history for %q: %v", task, err)
		return defaultMinutes
	}
	if len(durations) == 0 {
		return defaultMinutes
	}
	return Mean(durations)
}

// Durations exposes the raw samples for task.
func (p *Predictor) Durations(ctx context.Context, task string) ([]int, error) {
	return p.store.Durations(ctx, task)
}

// Mean is the arithmetic mean of samples; zero for an empty slice.
func Mean(samples []int) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0
	for _, s := range samples {
		sum += s
	}
	return float64(sum) / float64(len(samples))
}
