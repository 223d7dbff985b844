package calendar

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/ykvlv/freecron-bot/internal/fanout"
)

// ICSWriter writes every event as a METHOD:REQUEST invitation file in dir.
type ICSWriter struct {
	dir    string
	prodID string
	now    func() time.Time
}

// NewICSWriter creates dir if needed.
func NewICSWriter(dir string) (*ICSWriter, error) {
	if dir == "" {
		return nil, errors.New("calendar: ics directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &ICSWriter{dir: dir, prodID: "-//freecron-bot//EN", now: time.Now}, nil
}

// CreateEvent writes <dir>/<event id>.ics and returns its file:// URL.
func (w *ICSWriter) CreateEvent(ctx context.Context, ev fanout.CalendarEvent) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if ev.ID == "" {
		return "", errors.New("calendar: event id is required")
	}

	body := renderICS(ev, w.prodID, w.now().UTC())
	path := filepath.Join(w.dir, ev.ID+".ics")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return "", err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return "file://" + filepath.ToSlash(abs), nil
}

func renderICS(ev fanout.CalendarEvent, prodID string, stamp time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodRequest)
	cal.SetProductId(prodID)

	vev := cal.AddEvent(ev.ID)
	vev.SetDtStampTime(stamp)
	vev.SetCreatedTime(stamp)
	vev.SetStartAt(ev.Start)
	vev.SetEndAt(ev.End)
	vev.SetSummary(ev.Title)
	if ev.Organizer != "" {
		vev.SetOrganizer("mailto:" + ev.Organizer)
	}
	for _, email := range ev.Attendees {
		vev.AddAttendee("mailto:"+email,
			ical.CalendarUserTypeIndividual,
			ical.ParticipationStatusNeedsAction,
			ical.ParticipationRoleReqParticipant,
			ical.WithRSVP(true),
		)
	}
	return cal.Serialize()
}
