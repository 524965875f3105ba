// Package outlook reads today's events from Microsoft Graph's calendar view.
package outlook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/harrisonrobin/dayplan/pkg/model"
	"golang.org/x/oauth2"
)

const (
	// DefaultEndpoint is the Graph v1.0 root.
	DefaultEndpoint = "https://graph.microsoft.com/v1.0"
	// DefaultLabel names events without a subject.
	DefaultLabel = "Outlook Event"

	requestTimeout = 10 * time.Second
	graphLayout    = "2006-01-02T15:04:05.9999999"
)

// Source queries /me/calendarview with a bearer token.
type Source struct {
	endpoint string
	token    string
	client   *http.Client
}

// NewSource creates an Outlook meeting source. An empty token makes a
// source that always returns no meetings.
func NewSource(endpoint, token string) *Source {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Source{endpoint: strings.TrimRight(endpoint, "/"), token: token}
}

func (s *Source) Name() string { return "outlook" }

type eventTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type event struct {
	Subject     string    `json:"subject"`
	IsCancelled bool      `json:"isCancelled"`
	Start       eventTime `json:"start"`
	End         eventTime `json:"end"`
}

type calendarView struct {
	Value    []event `json:"value"`
	NextLink string  `json:"@odata.nextLink"`
}

func (s *Source) Fetch(ctx context.Context, day time.Time) ([]model.Meeting, error) {
	if s.token == "" {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	client := s.client
	if client == nil {
		client = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: s.token, TokenType: "Bearer"}))
	}

	y, m, d := day.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	q := url.Values{}
	q.Set("startDateTime", start.Format(time.RFC3339))
	q.Set("endDateTime", end.Format(time.RFC3339))
	next := s.endpoint + "/me/calendarview?" + q.Encode()

	var meetings []model.Meeting
	for next != "" {
		view, err := s.get(ctx, client, next)
		if err != nil {
			return nil, err
		}
		for _, e := range view.Value {
			if mt, ok := toMeeting(e, day.Location()); ok {
				meetings = append(meetings, mt)
			}
		}
		next = view.NextLink
	}
	return meetings, nil
}

func (s *Source) get(ctx context.Context, client *http.Client, u string) (*calendarView, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	// Ask Graph for UTC so parsing never depends on Windows zone names.
	req.Header.Set("Prefer", `outlook.timezone="UTC"`)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("graph request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("graph returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var view calendarView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		return nil, fmt.Errorf("failed to decode graph response: %w", err)
	}
	return &view, nil
}

func toMeeting(e event, loc *time.Location) (model.Meeting, bool) {
	if e.IsCancelled {
		return model.Meeting{}, false
	}
	start, err := parseTime(e.Start, loc)
	if err != nil {
		return model.Meeting{}, false
	}
	end, err := parseTime(e.End, loc)
	if err != nil {
		return model.Meeting{}, false
	}
	label := e.Subject
	if label == "" {
		label = DefaultLabel
	}
	return model.Meeting{Start: start, End: end, Label: label, Source: "outlook"}, true
}

// parseTime reads Graph's zone-less timestamps. UTC is assumed unless the
// event names an IANA zone; unknown zone names fall back to loc.
func parseTime(t eventTime, loc *time.Location) (time.Time, error) {
	zone := time.UTC
	switch t.TimeZone {
	case "", "UTC", "Etc/UTC":
	default:
		if l, err := time.LoadLocation(t.TimeZone); err == nil {
			zone = l
		} else {
			zone = loc
		}
	}
	return time.ParseInLocation(graphLayout, t.DateTime, zone)
}
