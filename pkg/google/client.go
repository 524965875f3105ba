package google

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/harrisonrobin/dayplan/pkg/auth"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Scopes requested for reading events.
var Scopes = []string{calendar.CalendarReadonlyScope}

// Connector opens a Calendar service. Returning auth.ErrNoToken or a nil
// service means the source is not configured.
type Connector func(ctx context.Context) (*calendar.Service, error)

// ServiceAccount connects with a service account key file. An empty path
// yields a nil Connector.
func ServiceAccount(keyFile string) Connector {
	if keyFile == "" {
		return nil
	}
	return func(ctx context.Context) (*calendar.Service, error) {
		client, err := auth.ServiceAccountClient(ctx, keyFile, Scopes)
		if err != nil {
			return nil, err
		}
		return newService(ctx, option.WithHTTPClient(client))
	}
}

// InstalledApp connects with the token saved by `dayplan auth`.
func InstalledApp() Connector {
	return func(ctx context.Context) (*calendar.Service, error) {
		client, err := auth.TokenClient(ctx, Scopes)
		if err != nil {
			return nil, err
		}
		return newService(ctx, option.WithHTTPClient(client))
	}
}

// WithOptions connects with explicit client options, e.g. a test endpoint.
func WithOptions(opts ...option.ClientOption) Connector {
	return func(ctx context.Context) (*calendar.Service, error) {
		return newService(ctx, opts...)
	}
}

// WithHTTPClient connects through an already authenticated client.
func WithHTTPClient(client *http.Client) Connector {
	return WithOptions(option.WithHTTPClient(client))
}

func newService(ctx context.Context, opts ...option.ClientOption) (*calendar.Service, error) {
	srv, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Calendar client: %w", err)
	}
	return srv, nil
}

// ResolveCalendarID accepts either a calendar ID or a calendar's display
// name. "primary" and anything that looks like an ID are returned as is.
func ResolveCalendarID(ctx context.Context, srv *calendar.Service, nameOrID string) (string, error) {
	if nameOrID == "" || nameOrID == "primary" || strings.Contains(nameOrID, "@") {
		if nameOrID == "" {
			return "primary", nil
		}
		return nameOrID, nil
	}

	calendarList, err := srv.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to retrieve calendar list: %w", err)
	}
	for _, item := range calendarList.Items {
		if item.Summary == nameOrID || item.Id == nameOrID {
			return item.Id, nil
		}
	}
	return "", fmt.Errorf("calendar '%s' not found", nameOrID)
}
