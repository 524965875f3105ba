package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/harrisonrobin/dayplan/pkg/clock"
	"github.com/harrisonrobin/dayplan/pkg/config"
	"github.com/harrisonrobin/dayplan/pkg/history"
	"github.com/harrisonrobin/dayplan/pkg/meetings"
	"github.com/harrisonrobin/dayplan/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = clock.Fixed(time.Date(2024, 1, 1, 7, 45, 0, 0, time.UTC))

func at(h, m int) time.Time {
	return time.Date(2024, 1, 1, h, m, 0, 0, time.UTC)
}

type fixedMeetings []model.Meeting

func (f fixedMeetings) LoadToday(context.Context) []model.Meeting { return f }

type stubPredictor map[string]float64

func (s stubPredictor) PredictDuration(_ context.Context, task string, def float64) float64 {
	if v, ok := s[task]; ok {
		return v
	}
	return def
}

type googleStub []model.Meeting

func (googleStub) Name() string { return "google" }
func (g googleStub) Fetch(context.Context, time.Time) ([]model.Meeting, error) {
	return g, nil
}

func lunch() model.Meeting {
	return model.Meeting{Start: at(12, 30), End: at(13, 0), Label: model.LunchLabel}
}

func plan(t *testing.T, ms []model.Meeting, p Predictor, tasks ...string) model.Schedule {
	t.Helper()
	s := New(fixedMeetings(ms), p, today, DefaultOptions())
	out, err := s.PlanDescriptions(context.Background(), tasks)
	require.NoError(t, err)
	return out
}

func TestPlanWithHistoryAndGoogleEvent(t *testing.T) {
	ctx := context.Background()
	predictor := history.NewPredictor(history.NewMemoryStore())
	require.NoError(t, predictor.RecordCompletion(ctx, "Task1", 30))

	agg := meetings.NewAggregator(today, config.Default().Day, time.Second,
		googleStub{{Start: at(9, 30), End: at(10, 0), Label: "Google Event"}})
	s := New(agg, predictor, today, DefaultOptions())

	out, err := s.PlanDescriptions(ctx, []string{"Task1"})
	require.NoError(t, err)
	lines := out.Lines()
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Equal(t, "09:00 - 09:30: Task1", lines[0])
	assert.Equal(t, "09:30 - 10:00: Google Event", lines[1])
	assert.Contains(t, out.String(), "12:30 - 13:00: Lunch")
}

func TestPlanWithoutTasksIsOnlyLunch(t *testing.T) {
	out := plan(t, []model.Meeting{lunch()}, stubPredictor{})
	assert.Equal(t, "12:30 - 13:00: Lunch", out.String())
}

func TestPlanOversizedTaskIsSkipped(t *testing.T) {
	out := plan(t, []model.Meeting{lunch()}, stubPredictor{"Huge": 600}, "Huge")
	assert.Equal(t, []string{"12:30 - 13:00: Lunch"}, out.Lines())
}

func TestPlanResumesAfterMeetingWithSameTask(t *testing.T) {
	ms := []model.Meeting{
		{Start: at(10, 0), End: at(11, 0), Label: "Standup"},
		lunch(),
	}
	out := plan(t, ms, stubPredictor{"A": 90, "B": 30}, "A", "B")
	assert.Equal(t, []string{
		"10:00 - 11:00: Standup",
		"11:00 - 12:30: A",
		"12:30 - 13:00: Lunch",
		"13:00 - 13:30: B",
		"13:30 - 13:40: Break",
	}, out.Lines())
}

func TestPlanIsFirstFitInOrder(t *testing.T) {
	ms := []model.Meeting{{Start: at(9, 40), End: at(17, 0), Label: "Offsite"}}
	out := plan(t, ms, stubPredictor{"Long": 60, "Short": 20}, "Long", "Short")
	assert.Equal(t, []string{
		"09:40 - 17:00: Offsite",
		"17:00 - 18:00: Long",
	}, out.Lines(), "Short must not jump ahead of Long and Long leaves no room for it")
}

func TestPlanEmptyMeetingsProperties(t *testing.T) {
	tasks := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"}
	out := plan(t, nil, stubPredictor{}, tasks...)
	dayEnd := at(18, 0)

	var prevEnd time.Time
	for i, e := range out {
		require.True(t, e.Start.Before(e.End))
		if i > 0 {
			assert.False(t, e.Start.Before(prevEnd), "entries must not overlap")
		}
		prevEnd = e.End
		if e.Kind == model.KindTask && e.End.Add(10*time.Minute).Before(dayEnd.Add(time.Nanosecond)) {
			require.Less(t, i+1, len(out))
			assert.Equal(t, model.KindBreak, out[i+1].Kind)
		}
	}
	// 9 tasks of 50 minutes plus breaks fill 09:00-18:00 exactly.
	assert.Len(t, out.Tasks(), 9)
	assert.Equal(t, "17:00 - 17:50: i", out[len(out)-2].Line())
	assert.Equal(t, "17:50 - 18:00: Break", out[len(out)-1].Line())
}

func TestPlanNeverOverlapsMeetings(t *testing.T) {
	ms := []model.Meeting{
		{Start: at(9, 15), End: at(9, 45), Label: "Sync"},
		{Start: at(10, 30), End: at(11, 15), Label: "Interview"},
		lunch(),
		{Start: at(14, 5), End: at(14, 20), Label: "Call"},
		{Start: at(16, 0), End: at(17, 30), Label: "Workshop"},
	}
	predictor := stubPredictor{"t1": 25, "t2": 40, "t3": 12.5, "t4": 70, "t5": 15, "t6": 33}
	out := plan(t, ms, predictor, "t1", "t2", "t3", "t4", "t5", "t6")

	for _, e := range out {
		if e.Kind != model.KindTask && e.Kind != model.KindBreak {
			continue
		}
		for _, m := range ms {
			overlap := e.Start.Before(m.End) && m.Start.Before(e.End)
			assert.False(t, overlap, "%s overlaps meeting %s", e.Line(), m.Label)
		}
	}
	for i := 1; i < len(out); i++ {
		assert.False(t, out[i].Start.Before(out[i-1].End))
	}
}

func TestPlanClampsOverlappingMeetings(t *testing.T) {
	ms := []model.Meeting{
		{Start: at(10, 0), End: at(11, 0), Label: "First"},
		{Start: at(10, 15), End: at(10, 45), Label: "Inside"},
		{Start: at(10, 30), End: at(11, 30), Label: "Second"},
	}
	out := plan(t, ms, stubPredictor{})
	assert.Equal(t, []string{
		"10:00 - 11:00: First",
		"11:00 - 11:30: Second",
	}, out.Lines())
}

func TestPlanIgnoresMeetingsOutsideWindow(t *testing.T) {
	ms := []model.Meeting{
		{Start: at(7, 0), End: at(8, 0), Label: "Gym"},
		{Start: at(8, 30), End: at(9, 30), Label: "Commute call"},
		{Start: at(19, 0), End: at(20, 0), Label: "Dinner"},
	}
	out := plan(t, ms, stubPredictor{"x": 30}, "x")
	assert.Equal(t, []string{
		"09:00 - 09:30: Commute call",
		"09:30 - 10:00: x",
		"10:00 - 10:10: Break",
	}, out.Lines())
}

func TestPlanRejectsNonPositivePrediction(t *testing.T) {
	s := New(fixedMeetings(nil), stubPredictor{"bad": 0}, today, DefaultOptions())
	_, err := s.PlanDescriptions(context.Background(), []string{"ok", "bad"})
	assert.ErrorIs(t, err, ErrInvalidDuration)

	s = New(fixedMeetings(nil), stubPredictor{"neg": -5}, today, DefaultOptions())
	_, err = s.PlanDescriptions(context.Background(), []string{"neg"})
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestPlanUsesTaskEstimateAsDefault(t *testing.T) {
	s := New(fixedMeetings(nil), stubPredictor{"known": 20}, today, DefaultOptions())
	out, err := s.Plan(context.Background(), []model.Task{
		{Description: "estimated", Estimate: 15 * time.Minute},
		{Description: "known", Estimate: 90 * time.Minute},
	})
	require.NoError(t, err)
	tasks := out.Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, "09:00 - 09:15: estimated", tasks[0].Line())
	assert.Equal(t, "09:25 - 09:45: known", tasks[1].Line())
}

func TestPlanFractionalDurations(t *testing.T) {
	out := plan(t, nil, stubPredictor{"half": 12.5}, "half", "half")
	tasks := out.Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, at(9, 0).Add(12*time.Minute+30*time.Second), tasks[0].End)
	assert.Equal(t, tasks[0].End.Add(10*time.Minute), tasks[1].Start)
}

func TestPlanDoesNotDeduplicate(t *testing.T) {
	out := plan(t, nil, stubPredictor{"same": 20}, "same", "same")
	assert.Len(t, out.Tasks(), 2)
}

func TestOptionsFromConfig(t *testing.T) {
	day := config.Default().Day
	day.Start = "08:15"
	day.BreakMinutes = 5
	opts, err := OptionsFromConfig(day)
	require.NoError(t, err)
	assert.Equal(t, 8*time.Hour+15*time.Minute, opts.DayStart)
	assert.Equal(t, 18*time.Hour, opts.DayEnd)
	assert.Equal(t, 5*time.Minute, opts.Break)
	assert.Equal(t, 50*time.Minute, opts.DefaultDuration)

	day.End = "07:00"
	_, err = OptionsFromConfig(day)
	assert.Error(t, err)

	day.End = "6pm"
	_, err = OptionsFromConfig(day)
	assert.Error(t, err)
}
