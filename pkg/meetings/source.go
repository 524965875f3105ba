package meetings

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/harrisonrobin/dayplan/pkg/metrics"
	"github.com/harrisonrobin/dayplan/pkg/model"
)

// Source produces the fixed blocks it knows about for the day containing day.
// A source without credentials returns no meetings and no error.
type Source interface {
	Name() string
	Fetch(ctx context.Context, day time.Time) ([]model.Meeting, error)
}

// fetchSafely runs one source under its own timeout. Errors, timeouts and
// panics all come back as zero meetings.
func fetchSafely(ctx context.Context, src Source, day time.Time, timeout time.Duration) []model.Meeting {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		meetings []model.Meeting
		err      error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		ms, err := src.Fetch(ctx, day)
		done <- result{meetings: ms, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			log.Printf("Warning: meeting source %s failed: %v", src.Name(), res.err)
			metrics.SourceFailures.WithLabelValues(src.Name()).Inc()
			return nil
		}
		for i := range res.meetings {
			if res.meetings[i].Source == "" {
				res.meetings[i].Source = src.Name()
			}
		}
		metrics.SourceMeetings.WithLabelValues(src.Name()).Add(float64(len(res.meetings)))
		return res.meetings
	case <-ctx.Done():
		log.Printf("Warning: meeting source %s gave up: %v", src.Name(), ctx.Err())
		metrics.SourceFailures.WithLabelValues(src.Name()).Inc()
		return nil
	}
}
