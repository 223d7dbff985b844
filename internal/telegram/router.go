package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ykvlv/freecron-bot/internal/domain"
	"github.com/ykvlv/freecron-bot/internal/service"
)

const tzCallbackPrefix = "tz:"

// BotAPI is the part of *tgbotapi.BotAPI the bot uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetChatMember(cfg tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
}

// Options configures a Router.
type Options struct {
	// IsAdmin reports members that always hold the admin capability.
	IsAdmin func(id int64) bool
	// AnnounceChatID is the fixed announcement chat. Zero announces events in
	// the chat the command came from.
	AnnounceChatID int64
}

// Router turns Telegram updates into service calls.
type Router struct {
	api  BotAPI
	log  *zap.Logger
	svc  *service.Service
	opts Options
}

// NewRouter creates a new Telegram router.
func NewRouter(api BotAPI, log *zap.Logger, svc *service.Service, opts Options) *Router {
	if opts.IsAdmin == nil {
		opts.IsAdmin = func(int64) bool { return false }
	}
	return &Router{api: api, log: log, svc: svc, opts: opts}
}

// HandleUpdate routes a single update to appropriate handler.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if msg := upd.Message; msg != nil && msg.From != nil {
		if !msg.IsCommand() {
			return
		}
		args, err := splitArgs(msg.CommandArguments())
		if err != nil {
			r.reply(msg, errorText(err))
			return
		}

		switch msg.Command() {
		case "start":
			r.handleStart(msg)
		case "help":
			r.reply(msg, helpText)
		case "setconfig":
			r.handleSetConfig(ctx, msg, args)
		case "addtag":
			r.handleAddTag(ctx, msg, args)
		case "removetag":
			r.handleRemoveTag(ctx, msg, args)
		case "addcron":
			r.handleAddCron(ctx, msg, args)
		case "mycrons":
			r.handleMyCrons(msg)
		default:
			if msg.Chat.IsPrivate() {
				r.reply(msg, "Unknown command. Send /help for the list.")
			}
		}
		return
	}

	if cb := upd.CallbackQuery; cb != nil && cb.From != nil {
		switch {
		case strings.HasPrefix(cb.Data, tzCallbackPrefix):
			r.handleTZCallback(ctx, cb)
		default:
			// Unknown callback — ignore silently
		}
	}
}

// actor describes a member. Group admins and creators count as admins in the
// chat they administer; pass a nil chat when capabilities do not matter.
func (r *Router) actor(chat *tgbotapi.Chat, from *tgbotapi.User) service.Actor {
	a := service.Actor{ID: domain.UserID(from.ID), Name: displayName(from)}
	if r.opts.IsAdmin(from.ID) {
		a.Caps.IsAdmin = true
		return a
	}
	if chat == nil || chat.IsPrivate() {
		return a
	}
	member, err := r.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{ChatID: chat.ID, UserID: from.ID},
	})
	if err != nil {
		r.log.Warn("get chat member failed", zap.Int64("chat_id", chat.ID), zap.Int64("user_id", from.ID), zap.Error(err))
		return a
	}
	a.Caps.IsAdmin = member.IsAdministrator() || member.IsCreator()
	return a
}

func displayName(u *tgbotapi.User) string {
	if u.UserName != "" {
		return "@" + u.UserName
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
