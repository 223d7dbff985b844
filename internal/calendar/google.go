package calendar

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/ykvlv/freecron-bot/internal/fanout"
)

// Google inserts events into a Google Calendar using a service account.
type Google struct {
	svc        *gcal.Service
	calendarID string
}

// NewGoogle reads service-account credentials from credentialsFile.
func NewGoogle(ctx context.Context, credentialsFile, calendarID string) (*Google, error) {
	if credentialsFile == "" {
		return nil, errors.New("calendar: google credentials file is required")
	}
	raw, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read google credentials: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, raw, gcal.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("parse google credentials: %w", err)
	}
	svc, err := gcal.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	if calendarID == "" {
		calendarID = "primary"
	}
	return &Google{svc: svc, calendarID: calendarID}, nil
}

// CreateEvent inserts ev and returns the event's HTML link.
func (g *Google) CreateEvent(ctx context.Context, ev fanout.CalendarEvent) (string, error) {
	created, err := g.svc.Events.Insert(g.calendarID, toGoogleEvent(ev)).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return created.HtmlLink, nil
}

func toGoogleEvent(ev fanout.CalendarEvent) *gcal.Event {
	out := &gcal.Event{
		Summary: ev.Title,
		Start: &gcal.EventDateTime{
			DateTime: ev.Start.Format(time.RFC3339),
			TimeZone: ev.TimeZone,
		},
		End: &gcal.EventDateTime{
			DateTime: ev.End.Format(time.RFC3339),
			TimeZone: ev.TimeZone,
		},
	}
	for _, email := range ev.Attendees {
		out.Attendees = append(out.Attendees, &gcal.EventAttendee{Email: email})
	}
	if ev.Organizer != "" {
		out.Organizer = &gcal.EventOrganizer{Email: ev.Organizer}
	}
	return out
}
