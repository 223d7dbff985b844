package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ykvlv/freecron-bot/internal/domain"
	"github.com/ykvlv/freecron-bot/internal/fanout"
)

// --- Generic helpers ---

func (r *Router) sendText(chatID int64, text string) {
	if _, err := r.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		r.log.Warn("send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (r *Router) reply(msg *tgbotapi.Message, text string) {
	r.sendText(msg.Chat.ID, text)
}

func (r *Router) answerCallback(id, text string) {
	_, _ = r.api.Request(tgbotapi.NewCallback(id, text))
}

// replyErr reports a failed command. Errors that are not the member's fault
// are logged.
func (r *Router) replyErr(chatID int64, command string, err error) {
	if !isUserError(err) {
		r.log.Error("command failed", zap.String("command", command), zap.Error(err))
	}
	r.sendText(chatID, errorText(err))
}

func isUserError(err error) bool {
	for _, target := range []error{
		domain.ErrInvalidAction, domain.ErrUnauthorized, domain.ErrInvalidEventDate,
		domain.ErrInvalidEventTime, domain.ErrMissingTitle, domain.ErrMissingAudience,
		domain.ErrMalformedAudience, domain.ErrInvalidTimeFormat, domain.ErrInvalidTimezone,
		domain.ErrInvalidTag, domain.ErrNotFound, errUnclosedQuote,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// --- Commands ---

func (r *Router) handleStart(msg *tgbotapi.Message) {
	out := tgbotapi.NewMessage(msg.Chat.ID, startText)
	if msg.Chat.IsPrivate() {
		out.ReplyMarkup = mainMenuKeyboard()
	}
	_, _ = r.api.Send(out)
}

func (r *Router) handleSetConfig(ctx context.Context, msg *tgbotapi.Message, args []string) {
	a := r.actor(nil, msg.From)
	if len(args) == 0 {
		text := "Choose your timezone:"
		if p, ok := r.svc.Profile(a); ok {
			text = formatProfile(p) + "\n\n" + text
		}
		out := tgbotapi.NewMessage(msg.Chat.ID, text)
		out.ReplyMarkup = tzPresetsKeyboard()
		_, _ = r.api.Send(out)
		return
	}
	if len(args) > 3 {
		r.reply(msg, usageSetConfig)
		return
	}
	for len(args) < 3 {
		args = append(args, "")
	}

	p, err := r.svc.SetConfig(ctx, a, args[0], args[1], args[2])
	if err != nil {
		r.replyErr(msg.Chat.ID, "setconfig", err)
		return
	}
	r.reply(msg, "Configuration updated.\n"+formatProfile(p))
}

// handleTZCallback changes only the timezone; off-limit windows are kept.
func (r *Router) handleTZCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	r.answerCallback(cb.ID, "")
	if cb.Message == nil {
		return
	}
	chat := cb.Message.Chat
	a := r.actor(nil, cb.From)

	var weekdays, weekends string
	if p, ok := r.svc.Profile(a); ok {
		weekdays, weekends = p.OffLimitWeekdays, p.OffLimitWeekends
	}
	p, err := r.svc.SetConfig(ctx, a, strings.TrimPrefix(cb.Data, tzCallbackPrefix), weekdays, weekends)
	if err != nil {
		r.replyErr(chat.ID, "setconfig", err)
		return
	}
	r.sendText(chat.ID, "Timezone updated: "+p.Timezone)
}

func (r *Router) handleAddTag(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if len(args) != 1 {
		r.reply(msg, usageAddTag)
		return
	}
	res, err := r.svc.AddTag(ctx, r.actor(msg.Chat, msg.From), args[0])
	if err != nil {
		r.replyErr(msg.Chat.ID, "addtag", err)
		return
	}
	tag := strings.ToLower(args[0])
	if res == domain.TagDuplicate {
		r.reply(msg, fmt.Sprintf("You already have the '%s' tag.", tag))
		return
	}
	r.reply(msg, fmt.Sprintf("Tag '%s' added.", tag))
}

func (r *Router) handleRemoveTag(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if len(args) != 1 {
		r.reply(msg, usageRemoveTag)
		return
	}
	a := r.actor(msg.Chat, msg.From)
	tag := strings.ToLower(strings.TrimSpace(args[0]))
	if tag == domain.TagCron {
		if p, ok := r.svc.Profile(a); ok && p.HasTag(domain.TagCron) {
			r.reply(msg, cronWarning)
		}
	}
	res, err := r.svc.RemoveTag(ctx, a, args[0])
	if err != nil {
		r.replyErr(msg.Chat.ID, "removetag", err)
		return
	}
	if res == domain.TagCascadeDeleted {
		r.reply(msg, "All your FreeCron settings and entries have been deleted.")
		return
	}
	r.reply(msg, fmt.Sprintf("Tag '%s' removed.", tag))
}

// handleAddCron takes ACTION MONTH DAY TIME_SLOT NOTE [TAGS]. Unquoted tag
// lists such as "(a, b)" arrive split and are joined back together.
func (r *Router) handleAddCron(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if len(args) < 5 {
		r.reply(msg, usageAddCron)
		return
	}
	raw := domain.RawEntry{
		Action:   args[0],
		Month:    args[1],
		Day:      args[2],
		TimeSlot: args[3],
		Note:     args[4],
		Tags:     strings.Join(args[5:], " "),
	}

	var announce fanout.Broadcaster
	if r.opts.AnnounceChatID == 0 {
		announce = NewChatBroadcaster(r.api, msg.Chat.ID)
	}

	res, err := r.svc.AddEntry(ctx, r.actor(msg.Chat, msg.From), raw, announce)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			r.reply(msg, kordRequired)
			return
		}
		r.replyErr(msg.Chat.ID, "addcron", err)
		return
	}

	lines := []string{"Cron added: " + formatEntry(res.Entry)}
	if res.Report != nil {
		lines = append(lines, formatReport(res.Report)...)
	}
	r.reply(msg, strings.Join(lines, "\n"))
}

func (r *Router) handleMyCrons(msg *tgbotapi.Message) {
	entries := r.svc.Entries(r.actor(nil, msg.From))
	if len(entries) == 0 {
		r.reply(msg, "You have no crons yet. Add one with /addcron.")
		return
	}
	var b strings.Builder
	b.WriteString("Your crons:")
	for i, e := range entries {
		fmt.Fprintf(&b, "\n%d. %s", i+1, formatEntry(e))
	}
	r.reply(msg, b.String())
}
