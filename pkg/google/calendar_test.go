package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/harrisonrobin/dayplan/pkg/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

func fakeCalendar(t *testing.T, handler http.HandlerFunc) Connector {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return WithOptions(option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
}

func TestFetchConvertsEvents(t *testing.T) {
	var gotQuery string
	connect := fakeCalendar(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/calendars/primary/events"), r.URL.Path)
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items": [
			{"summary": "Google Event", "start": {"dateTime": "2024-01-01T09:30:00Z"}, "end": {"dateTime": "2024-01-01T10:00:00Z"}},
			{"start": {"dateTime": "2024-01-01T15:00:00Z"}, "end": {"dateTime": "2024-01-01T15:30:00Z"}},
			{"summary": "Holiday", "start": {"date": "2024-01-01"}, "end": {"date": "2024-01-02"}},
			{"summary": "Gone", "status": "cancelled", "start": {"dateTime": "2024-01-01T11:00:00Z"}, "end": {"dateTime": "2024-01-01T12:00:00Z"}},
			{"summary": "Broken", "start": {}, "end": {}}
		]}`))
	})

	src := NewSource(connect, "primary")
	ms, err := src.Fetch(context.Background(), time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, ms, 3)

	assert.Equal(t, "Google Event", ms[0].Label)
	assert.True(t, ms[0].Start.Equal(time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)))
	assert.Equal(t, DefaultLabel, ms[1].Label)
	assert.Equal(t, "Holiday", ms[2].Label)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), ms[2].Start)

	assert.Contains(t, gotQuery, "singleEvents=true")
	assert.Contains(t, gotQuery, "orderBy=startTime")
	assert.Contains(t, gotQuery, "timeMin=2024-01-01T00%3A00%3A00Z")
	assert.Contains(t, gotQuery, "timeMax=2024-01-02T00%3A00%3A00Z")
}

func TestFetchServerErrorIsReturned(t *testing.T) {
	connect := fakeCalendar(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"code": 404, "message": "not found"}}`, http.StatusNotFound)
	})
	_, err := NewSource(connect, "primary").Fetch(context.Background(), time.Now())
	assert.Error(t, err)
}

func TestFetchWithoutCredentialsIsEmpty(t *testing.T) {
	ms, err := NewSource(ServiceAccount(""), "primary").Fetch(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, ms)
}

func TestResolveCalendarIDByName(t *testing.T) {
	connect := fakeCalendar(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/users/me/calendarList"), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items": [{"id": "abc123@group.calendar.google.com", "summary": "Work"}]}`))
	})
	srv, err := connect(context.Background())
	require.NoError(t, err)

	id, err := ResolveCalendarID(context.Background(), srv, "Work")
	require.NoError(t, err)
	assert.Equal(t, "abc123@group.calendar.google.com", id)

	_, err = ResolveCalendarID(context.Background(), srv, "Personal")
	assert.Error(t, err)

	id, err = ResolveCalendarID(context.Background(), srv, "")
	require.NoError(t, err)
	assert.Equal(t, "primary", id)
}

func TestFetchCachesCalendarName(t *testing.T) {
	var listCalls atomic.Int32
	connect := fakeCalendar(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.HasSuffix(r.URL.Path, "/users/me/calendarList") {
			listCalls.Add(1)
			w.Write([]byte(`{"items": [{"id": "work@group.calendar.google.com", "summary": "Work"}]}`))
			return
		}
		assert.True(t, strings.HasSuffix(r.URL.Path, "/calendars/work@group.calendar.google.com/events"), r.URL.Path)
		w.Write([]byte(`{"items": []}`))
	})

	idx, err := index.NewCalendarIndex(filepath.Join(t.TempDir(), index.FileName))
	require.NoError(t, err)
	src := NewSource(connect, "Work").WithIndex(idx)

	for i := 0; i < 2; i++ {
		_, err := src.Fetch(context.Background(), time.Now())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), listCalls.Load())
	assert.Equal(t, "work@group.calendar.google.com", idx.Get("Work"))
}

func TestFetchReresolvesStaleCachedCalendar(t *testing.T) {
	var listCalls atomic.Int32
	connect := fakeCalendar(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/users/me/calendarList"):
			listCalls.Add(1)
			w.Write([]byte(`{"items": [{"id": "new@group.calendar.google.com", "summary": "Work"}]}`))
		case strings.HasSuffix(r.URL.Path, "/calendars/new@group.calendar.google.com/events"):
			w.Write([]byte(`{"items": [{"summary": "Planning", "start": {"dateTime": "2024-01-01T09:00:00Z"}, "end": {"dateTime": "2024-01-01T09:30:00Z"}}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error": {"code": 404, "message": "Not Found"}}`))
		}
	})

	idx, err := index.NewCalendarIndex(filepath.Join(t.TempDir(), index.FileName))
	require.NoError(t, err)
	idx.Set("Work", "old@group.calendar.google.com")
	require.NoError(t, idx.Save())

	ms, err := NewSource(connect, "Work").WithIndex(idx).Fetch(context.Background(), time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.Equal(t, "Planning", ms[0].Label)
	assert.Equal(t, int32(1), listCalls.Load())
	assert.Equal(t, "new@group.calendar.google.com", idx.Get("Work"))

	reloaded, err := index.NewCalendarIndex(idx.Path)
	require.NoError(t, err)
	assert.Equal(t, "new@group.calendar.google.com", reloaded.Get("Work"))
}

func TestFetchDoesNotRetryUncachedNotFound(t *testing.T) {
	var eventCalls atomic.Int32
	connect := fakeCalendar(t, func(w http.ResponseWriter, r *http.Request) {
		eventCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": {"code": 404, "message": "Not Found"}}`))
	})

	idx, err := index.NewCalendarIndex(filepath.Join(t.TempDir(), index.FileName))
	require.NoError(t, err)
	_, err = NewSource(connect, "primary").WithIndex(idx).Fetch(context.Background(), time.Now())
	assert.Error(t, err)
	assert.Equal(t, int32(1), eventCalls.Load())
}

func TestToMeetingRejectsNil(t *testing.T) {
	_, ok := ToMeeting(nil, time.UTC)
	assert.False(t, ok)
	_, ok = ToMeeting(&calendar.Event{Summary: "x"}, time.UTC)
	assert.False(t, ok)
}
