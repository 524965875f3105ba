package google

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/harrisonrobin/dayplan/pkg/auth"
	"github.com/harrisonrobin/dayplan/pkg/index"
	"github.com/harrisonrobin/dayplan/pkg/model"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
)

// DefaultLabel names events that have no summary.
const DefaultLabel = "Google Event"

// Source reads one Google calendar as a meeting source.
type Source struct {
	connect  Connector
	calendar string
	ids      *index.CalendarIndex
}

// NewSource creates a Google Calendar meeting source. A nil connector makes
// a source that always returns no meetings.
func NewSource(connect Connector, calendarNameOrID string) *Source {
	return &Source{connect: connect, calendar: calendarNameOrID}
}

func (s *Source) Name() string { return "google" }

// Fetch lists the single (expanded) events of the local day containing day.
func (s *Source) Fetch(ctx context.Context, day time.Time) ([]model.Meeting, error) {
	if s.connect == nil {
		return nil, nil
	}
	srv, err := s.connect(ctx)
	if errors.Is(err, auth.ErrNoToken) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	calendarID, cached, err := s.calendarID(ctx, srv)
	if err != nil {
		return nil, err
	}

	y, m, d := day.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	events, err := ListEvents(ctx, srv, calendarID, start, end)
	if cached && isNotFound(err) {
		// The calendar behind a cached name was deleted or re-created.
		log.Printf("Warning: cached calendar %s for %q not found, resolving again", calendarID, s.calendar)
		s.ids.Remove(s.calendar)
		if err := s.ids.Save(); err != nil {
			log.Printf("Warning: failed to save calendar index: %v", err)
		}
		if calendarID, _, err = s.calendarID(ctx, srv); err != nil {
			return nil, err
		}
		events, err = ListEvents(ctx, srv, calendarID, start, end)
	}
	if err != nil {
		return nil, err
	}

	var meetings []model.Meeting
	for _, e := range events {
		mt, ok := ToMeeting(e, day.Location())
		if !ok {
			continue
		}
		meetings = append(meetings, mt)
	}
	return meetings, nil
}

// WithIndex caches calendar name lookups in idx.
func (s *Source) WithIndex(idx *index.CalendarIndex) *Source {
	s.ids = idx
	return s
}

// calendarID reports whether the ID came from the index.
func (s *Source) calendarID(ctx context.Context, srv *calendar.Service) (string, bool, error) {
	if s.ids != nil {
		if id := s.ids.Get(s.calendar); id != "" {
			return id, true, nil
		}
	}
	id, err := ResolveCalendarID(ctx, srv, s.calendar)
	if err != nil {
		return "", false, err
	}
	if s.ids != nil && id != s.calendar {
		s.ids.Set(s.calendar, id)
		if err := s.ids.Save(); err != nil {
			log.Printf("Warning: failed to save calendar index: %v", err)
		}
	}
	return id, false, nil
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}

// ListEvents fetches every event overlapping [timeMin, timeMax), following pagination.
func ListEvents(ctx context.Context, srv *calendar.Service, calendarID string, timeMin, timeMax time.Time) ([]*calendar.Event, error) {
	var items []*calendar.Event
	call := srv.Events.List(calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx)

	err := call.Pages(ctx, func(page *calendar.Events) error {
		items = append(items, page.Items...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve events from calendar: %w", err)
	}
	return items, nil
}

// ToMeeting converts an event. All-day events start and end at midnight in loc.
// Cancelled events and events without usable times are rejected.
func ToMeeting(e *calendar.Event, loc *time.Location) (model.Meeting, bool) {
	if e == nil || e.Status == "cancelled" || e.Start == nil || e.End == nil {
		return model.Meeting{}, false
	}
	start, err := eventTime(e.Start, loc)
	if err != nil {
		return model.Meeting{}, false
	}
	end, err := eventTime(e.End, loc)
	if err != nil {
		return model.Meeting{}, false
	}
	label := e.Summary
	if label == "" {
		label = DefaultLabel
	}
	return model.Meeting{Start: start, End: end, Label: label, Source: "google"}, true
}

func eventTime(t *calendar.EventDateTime, loc *time.Location) (time.Time, error) {
	switch {
	case t.DateTime != "":
		return time.Parse(time.RFC3339, t.DateTime)
	case t.Date != "":
		return time.ParseInLocation("2006-01-02", t.Date, loc)
	default:
		return time.Time{}, fmt.Errorf("event time has neither dateTime nor date")
	}
}
