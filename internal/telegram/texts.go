package telegram

import (
	"errors"
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ykvlv/freecron-bot/internal/domain"
	"github.com/ykvlv/freecron-bot/internal/fanout"
)

const startText = "👋 I am FreeCron.\n\n" +
	"Tell me when you are free or busy, tag yourself into groups, and event organizers can invite whole groups at once.\n\n" +
	"Send /help for the commands."

const helpText = `FreeCron Bot Help

1. /setconfig TIMEZONE [OFF_LIMIT_WEEKDAYS] [OFF_LIMIT_WEEKENDS]
   Set your timezone (UTC, EST, CST, MST, PST) and off-limit times.
   Example: /setconfig UTC 0000-1500 2000-0600

2. /addtag TAG
   Add a tag to yourself. Example: /addtag gamer

3. /removetag TAG
   Remove a tag from yourself. Example: /removetag gamer
   Warning: removing the 'cron' tag deletes all your FreeCron settings and entries.

4. /addcron ACTION MONTH DAY TIME_SLOT NOTE [TAGS]
   Add a cron or an event.
   Actions: A (available), N (not available), R (repeating), K (event).
   Events need the 'kord' tag, a single month and day, an HHMM start time,
   a title and invited tags in parentheses.
   Example: /addcron K 04 15 0900 "Team sync" "(team, ops)"

5. /mycrons
   List your entries.

Time slot formats:
   0000-1500  from midnight to 3 PM
   1630-4+    from 4:30 PM for about 4 hours
   -4-2000    the 4 hours before 8 PM
   *-2000     from start of day to 8 PM
   1300-*     from 1 PM to end of day`

const (
	usageSetConfig = "Usage: /setconfig TIMEZONE [OFF_LIMIT_WEEKDAYS] [OFF_LIMIT_WEEKENDS]"
	usageAddTag    = "Usage: /addtag TAG"
	usageRemoveTag = "Usage: /removetag TAG"
	usageAddCron   = "Usage: /addcron ACTION MONTH DAY TIME_SLOT NOTE [TAGS]"

	kordRequired = "You don't have the 'kord' tag required to create an event."
	cronWarning  = "Warning: removing the 'cron' tag deletes all your FreeCron settings and entries."
)

// errorText turns a command error into the reply shown to the member.
func errorText(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidAction):
		return "Invalid action. Use 'A' for available, 'N' for not available, 'R' for repeating, or 'K' for an event."
	case errors.Is(err, domain.ErrUnauthorized):
		return "Only admins can add or remove the 'kord' tag."
	case errors.Is(err, domain.ErrInvalidEventDate):
		return "Event month and day must each be a single value (e.g., '04' and '15')."
	case errors.Is(err, domain.ErrInvalidEventTime):
		return "Event start time must be in HHMM format (e.g., '0900')."
	case errors.Is(err, domain.ErrMissingTitle):
		return "Event must have a title in the note field."
	case errors.Is(err, domain.ErrMissingAudience):
		return "Event must list invited tags in parentheses (e.g., '(tag1,tag2)')."
	case errors.Is(err, domain.ErrMalformedAudience):
		return "Tags for an event must be in parentheses (e.g., '(tag1,tag2)')."
	case errors.Is(err, domain.ErrInvalidTimeFormat):
		return "Invalid time format. Use HHMM-HHMM, HHMM-N+, -N-HHMM, *-HHMM or HHMM-*."
	case errors.Is(err, domain.ErrInvalidTimezone):
		return "Invalid timezone. Use one of: " + strings.Join(domain.TimezoneCodes(), ", ") + "."
	case errors.Is(err, domain.ErrInvalidTag):
		return "Tags must be a single word without commas or parentheses."
	case errors.Is(err, domain.ErrNotFound):
		return "You don't have that tag."
	case errors.Is(err, errUnclosedQuote):
		return "Unclosed quote in the command."
	default:
		return "Something went wrong. Please try again later."
	}
}

func formatEntry(e domain.Entry) string {
	s := fmt.Sprintf("[%s] %s/%s %s %s", e.Action, e.Month, e.Day, e.TimeSlot, e.Note)
	if e.Tags != "" {
		s += " " + e.Tags
	}
	return s
}

func formatProfile(p *domain.Profile) string {
	off := func(s string) string {
		if s == "" {
			return "none"
		}
		return s
	}
	return fmt.Sprintf("Timezone: %s\nTags: %s\nOff-limit weekdays: %s\nOff-limit weekends: %s",
		p.Timezone, strings.Join(p.Tags, ", "), off(p.OffLimitWeekdays), off(p.OffLimitWeekends))
}

// formatReport lists the per-recipient and calendar outcomes of an event.
func formatReport(rep *fanout.Report) []string {
	var lines []string
	for _, id := range rep.Failed() {
		lines = append(lines, fmt.Sprintf("Could not send a DM to %d.", id))
	}
	if rep.AnnounceErr != nil {
		lines = append(lines, "Could not post the announcement.")
	}
	switch {
	case rep.CalendarErr != nil:
		lines = append(lines, "Calendar sync failed; the event is saved and invitations were sent.")
	case rep.CalendarRef != "":
		lines = append(lines, "Calendar event created: "+rep.CalendarRef)
	}
	return lines
}

// Mention links to a member in an HTML announcement.
func Mention(id domain.UserID) string {
	return fmt.Sprintf(`<a href="tg://user?id=%d">%d</a>`, id, id)
}

// EscapeHTML escapes free text for an HTML announcement.
func EscapeHTML(s string) string { return html.EscapeString(s) }

// mainMenuKeyboard is the reply keyboard shown in private chats.
func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/mycrons"),
			tgbotapi.NewKeyboardButton("/setconfig"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/help"),
		),
	)
}

// tzPresetsKeyboard offers every supported timezone when /setconfig has no
// arguments.
func tzPresetsKeyboard() tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	for _, code := range domain.TimezoneCodes() {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(code, tzCallbackPrefix+code))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}
