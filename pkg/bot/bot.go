package bot

import (
	"gatebot/config"
	"gatebot/pkg/logger"
	"gatebot/service"

	tele "gopkg.in/telebot.v3"
)

type Bot struct {
	Bot *tele.Bot
	Cfg *config.Config
	Svc service.IServiceManager
	Log logger.ILogger
}

func New(tb *tele.Bot, cfg *config.Config, svc service.IServiceManager, log logger.ILogger) *Bot {
	bot := &Bot{
		Bot: tb,
		Cfg: cfg,
		Svc: svc,
		Log: log,
	}
	bot.registerHandlers()
	return bot
}

func (b *Bot) Start() {
	b.Log.Info("🤖 Bot started")
	b.Bot.Start()
}

func (b *Bot) Stop() {
	b.Bot.Stop()
}

var messages = map[string]string{
	"disabled":        "The bot is currently disabled. Please try again later.",
	"join":            "To continue, please join the channels below and then press *✅ I've joined*.\nAfter verification, share your number with the *📱 Get my free config* button.",
	"join_incomplete": "Your membership is incomplete. Still missing:\n%s\n\nPlease join all the channels and try again.",
	"verified":        "✅ Membership confirmed.",
	"contact":         "Press the button below to receive your config:",
	"share_contact":   "📱 Get my free config",
	"not_yours":       "Please send your own number.",
	"unavailable":     "Could not fetch the servers. Please try again.",
	"delivered":       "🔐 Three suggested servers for you:\n\n%s\n\nFor a *dedicated unlimited subscription*, message:\n@abj0o",
	"error":           "Something went wrong. Please try again later.",
	"help":            "/start - begin\n/admin - admin panel (admin only)",

	"admin_panel":     "Admin panel (bot status: %s)",
	"status_on":       "✅ on",
	"status_off":      "⛔️ off",
	"channels_panel":  "Channel management:",
	"users_panel":     "User management:",
	"ch_add_prompt":   "Send the public channel username (example: @mychannel)",
	"ch_rm_prompt":    "Send the channel username to remove (example: @mychannel)",
	"ch_added":        "✅ Added %s",
	"ch_exists":       "⚠️ %s is already registered",
	"ch_bad_format":   "Wrong format. Start with @.",
	"ch_removed":      "✅ Removed %s",
	"ch_missing":      "⚠️ %s not found",
	"ch_list_header":  "Required channels:\n%s",
	"ch_list_empty":   "No channels registered.",
	"users_empty":     "The user list is empty.",
	"users_header":    "Users:\n%s",
	"users_more":      "… and %d more",
	"stats":           "📊 STATS\n\nUsers: %d\nWith phone: %d\nChannels: %d\nBot: %s",
	"export_caption":  "Current database snapshot",
}

func (b *Bot) registerHandlers() {
	b.Bot.Handle("/start", b.wrap(b.handleStart))
	b.Bot.Handle("/help", b.wrap(b.handleHelp))
	b.Bot.Handle("/admin", b.wrap(b.handleAdminPanel))
	b.Bot.Handle("/stats", b.wrap(b.handleStats))
	b.Bot.Handle("/export", b.wrap(b.handleExport))

	b.Bot.Handle(tele.OnContact, b.wrap(b.handleContact))
	b.Bot.Handle(tele.OnCallback, b.wrap(b.handleCallback))
	b.Bot.Handle(tele.OnText, b.wrap(b.handleText))
}

// wrap is the handler boundary: no error or panic escapes to telebot
// unformatted, and the sender always gets the generic retry notice.
func (b *Bot) wrap(h tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		defer func() {
			if r := recover(); r != nil {
				b.Log.Error("handler panic", logger.Any("panic", r))
				_ = c.Send(messages["error"])
			}
		}()
		if err := h(c); err != nil {
			b.Log.Error("handler error", logger.Error(err))
			return c.Send(messages["error"])
		}
		return nil
	}
}

func (b *Bot) isAdmin(c tele.Context) bool {
	return b.Cfg.AdminID != 0 && c.Sender().ID == b.Cfg.AdminID
}

func (b *Bot) handleHelp(c tele.Context) error {
	return c.Send(messages["help"])
}
