package meetings

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/harrisonrobin/dayplan/pkg/clock"
	"github.com/harrisonrobin/dayplan/pkg/config"
	"github.com/harrisonrobin/dayplan/pkg/metrics"
	"github.com/harrisonrobin/dayplan/pkg/model"
)

// DefaultTimeout bounds a single source fetch.
const DefaultTimeout = 10 * time.Second

// Aggregator merges every source plus the lunch block into one sorted list.
// It never merges or drops overlapping meetings.
type Aggregator struct {
	sources []Source
	clock   clock.Clock
	day     config.DayConfig
	timeout time.Duration
}

func NewAggregator(c clock.Clock, day config.DayConfig, timeout time.Duration, sources ...Source) *Aggregator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Aggregator{sources: sources, clock: c, day: day, timeout: timeout}
}

// LoadToday returns today's meetings sorted by start, then end, then label.
// Sources are queried in parallel; the result order does not depend on
// which source answers first.
func (a *Aggregator) LoadToday(ctx context.Context) []model.Meeting {
	now := a.clock.Now()
	day := clock.StartOfDay(now)
	loc := now.Location()

	results := make([][]model.Meeting, len(a.sources))
	var wg sync.WaitGroup
	for i, src := range a.sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			results[i] = fetchSafely(ctx, src, day, a.timeout)
		}(i, src)
	}
	wg.Wait()

	var meetings []model.Meeting
	for _, ms := range results {
		for _, m := range ms {
			m.Start, m.End = m.Start.In(loc), m.End.In(loc)
			if !m.Valid() {
				log.Printf("Warning: ignoring meeting %q from %s: start %s is not before end %s",
					m.Label, m.Source, m.Start.Format(time.RFC3339), m.End.Format(time.RFC3339))
				continue
			}
			meetings = append(meetings, m)
		}
	}

	if lunchStart, lunchEnd, err := a.day.Lunch(day); err == nil {
		meetings = append(meetings, model.Meeting{Start: lunchStart, End: lunchEnd, Label: model.LunchLabel, Source: "lunch"})
	} else {
		log.Printf("Warning: could not place lunch block: %v", err)
	}

	Sort(meetings)
	if n := CountOverlaps(meetings); n > 0 {
		log.Printf("Warning: %d overlapping meeting pair(s) today", n)
		metrics.MeetingOverlaps.Add(float64(n))
	}
	return meetings
}

// Upcoming returns today's meetings starting within the next window.
func (a *Aggregator) Upcoming(ctx context.Context, within time.Duration) []model.Meeting {
	now := a.clock.Now()
	limit := now.Add(within)
	var out []model.Meeting
	for _, m := range a.LoadToday(ctx) {
		if !m.Start.Before(now) && !m.Start.After(limit) {
			out = append(out, m)
		}
	}
	return out
}

// Sort orders meetings by start, end and label so equal inputs always sort alike.
func Sort(meetings []model.Meeting) {
	sort.SliceStable(meetings, func(i, j int) bool {
		a, b := meetings[i], meetings[j]
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		if !a.End.Equal(b.End) {
			return a.End.Before(b.End)
		}
		return a.Label < b.Label
	})
}

// CountOverlaps counts overlapping pairs in a start-sorted slice.
func CountOverlaps(sorted []model.Meeting) int {
	n := 0
	for i := range sorted {
		for j := i + 1; j < len(sorted) && sorted[j].Start.Before(sorted[i].End); j++ {
			n++
		}
	}
	return n
}
