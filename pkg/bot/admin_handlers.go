package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	tele "gopkg.in/telebot.v3"

	"gatebot/pkg/logger"
	"gatebot/service"
)

// action is the closed set of callback tokens the bot dispatches on.
type action int

const (
	actionVerify action = iota
	actionToggle
	actionChannelsMenu
	actionUsersMenu
	actionBack
	actionChannelAdd
	actionChannelRemove
	actionChannelList
	actionUserList
)

// parseAction maps a raw callback payload to an action. Telebot prefixes
// unique-button data with "\f" and may append "|<payload>"; both are
// stripped before matching. Unknown tokens are dropped, not errors.
func parseAction(data string) (action, bool) {
	data = strings.TrimPrefix(strings.TrimSpace(data), "\f")
	if i := strings.IndexByte(data, '|'); i >= 0 {
		data = data[:i]
	}
	switch data {
	case "verify_membership":
		return actionVerify, true
	case "admin_toggle":
		return actionToggle, true
	case "admin_channels":
		return actionChannelsMenu, true
	case "admin_users":
		return actionUsersMenu, true
	case "admin_back":
		return actionBack, true
	case "ch_add":
		return actionChannelAdd, true
	case "ch_remove":
		return actionChannelRemove, true
	case "ch_list":
		return actionChannelList, true
	case "u_list":
		return actionUserList, true
	}
	return 0, false
}

func adminMenu() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	menu.Inline(
		menu.Row(menu.Data("🔌 Toggle bot", "admin_toggle"), menu.Data("📢 Required channels", "admin_channels")),
		menu.Row(menu.Data("👥 Users", "admin_users")),
	)
	return menu
}

func channelsMenu() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	menu.Inline(
		menu.Row(menu.Data("➕ Add channel", "ch_add"), menu.Data("➖ Remove channel", "ch_remove")),
		menu.Row(menu.Data("📃 List channels", "ch_list"), menu.Data("⬅️ Back", "admin_back")),
	)
	return menu
}

func usersMenu() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	menu.Inline(
		menu.Row(menu.Data("📃 List users", "u_list"), menu.Data("⬅️ Back", "admin_back")),
	)
	return menu
}

func (b *Bot) handleCallback(c tele.Context) error {
	act, ok := parseAction(c.Callback().Data)
	if !ok {
		return c.Respond()
	}

	if act == actionVerify {
		return b.handleVerify(c)
	}

	// Everything below is the admin surface. Anyone else gets no reaction
	// at all, not even an acknowledgment that the surface exists.
	if !b.isAdmin(c) {
		return nil
	}

	ctx := context.Background()
	admin := b.Svc.Admin()

	switch act {
	case actionToggle:
		enabled, err := admin.Toggle(ctx)
		if err != nil {
			return err
		}
		if err := c.Edit(fmt.Sprintf(messages["admin_panel"], statusLabel(enabled)), adminMenu()); err != nil {
			return err
		}
		return c.Respond()

	case actionChannelsMenu:
		if err := c.Edit(messages["channels_panel"], channelsMenu()); err != nil {
			return err
		}
		return c.Respond()

	case actionUsersMenu:
		if err := c.Edit(messages["users_panel"], usersMenu()); err != nil {
			return err
		}
		return c.Respond()

	case actionBack:
		enabled, err := admin.Enabled(ctx)
		if err != nil {
			return err
		}
		if err := c.Edit(fmt.Sprintf(messages["admin_panel"], statusLabel(enabled)), adminMenu()); err != nil {
			return err
		}
		return c.Respond()

	case actionChannelAdd:
		admin.AwaitChannelAdd(c.Sender().ID)
		if err := c.Send(messages["ch_add_prompt"]); err != nil {
			return err
		}
		return c.Respond()

	case actionChannelRemove:
		admin.AwaitChannelRemove(c.Sender().ID)
		if err := c.Send(messages["ch_rm_prompt"]); err != nil {
			return err
		}
		return c.Respond()

	case actionChannelList:
		channels, err := admin.Channels(ctx)
		if err != nil {
			return err
		}
		text := messages["ch_list_empty"]
		if len(channels) > 0 {
			text = fmt.Sprintf(messages["ch_list_header"], strings.Join(channels, "\n"))
		}
		if err := c.Send(text); err != nil {
			return err
		}
		return c.Respond()

	case actionUserList:
		users, remainder, err := admin.Users(ctx)
		if err != nil {
			return err
		}
		if len(users) == 0 {
			if err := c.Send(messages["users_empty"]); err != nil {
				return err
			}
			return c.Respond()
		}
		lines := make([]string, 0, len(users)+1)
		for _, u := range users {
			lines = append(lines, fmt.Sprintf("%d | @%s | %s | %s",
				u.TelegramID,
				orDash(u.Username),
				orDash(u.Phone),
				u.JoinedAt.Format("2006-01-02 15:04"),
			))
		}
		if remainder > 0 {
			lines = append(lines, fmt.Sprintf(messages["users_more"], remainder))
		}
		if err := c.Send(fmt.Sprintf(messages["users_header"], strings.Join(lines, "\n"))); err != nil {
			return err
		}
		return c.Respond()
	}
	return nil
}

// handleText only means something when the admin is answering a prompt;
// everything else is ignored.
func (b *Bot) handleText(c tele.Context) error {
	if !b.isAdmin(c) {
		return nil
	}

	result, err := b.Svc.Admin().ConsumeInput(context.Background(), c.Sender().ID, c.Text())
	if err != nil {
		return err
	}

	switch result.Kind {
	case service.InputChannelAdded:
		return c.Send(fmt.Sprintf(messages["ch_added"], result.Channel))
	case service.InputChannelExists:
		return c.Send(fmt.Sprintf(messages["ch_exists"], result.Channel))
	case service.InputChannelBadFormat:
		return c.Send(messages["ch_bad_format"])
	case service.InputChannelRemoved:
		return c.Send(fmt.Sprintf(messages["ch_removed"], result.Channel))
	case service.InputChannelMissing:
		return c.Send(fmt.Sprintf(messages["ch_missing"], result.Channel))
	}
	return nil
}

func (b *Bot) handleAdminPanel(c tele.Context) error {
	if !b.isAdmin(c) {
		return nil
	}
	enabled, err := b.Svc.Admin().Enabled(context.Background())
	if err != nil {
		return err
	}
	return c.Send(fmt.Sprintf(messages["admin_panel"], statusLabel(enabled)), adminMenu())
}

func (b *Bot) handleStats(c tele.Context) error {
	if !b.isAdmin(c) {
		return nil
	}
	stats, err := b.Svc.Admin().Stats(context.Background())
	if err != nil {
		return err
	}
	return c.Send(formatStats(stats))
}

func (b *Bot) handleExport(c tele.Context) error {
	if !b.isAdmin(c) {
		return nil
	}

	export, err := b.Svc.Admin().Export(context.Background())
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return err
	}

	f, err := os.CreateTemp("", "gatebot-export-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	doc := &tele.Document{
		File:     tele.FromDisk(f.Name()),
		FileName: "gatebot-export.json",
		Caption:  messages["export_caption"],
	}
	return c.Send(doc)
}

// SendDigest pushes the daily stats summary to the admin chat. Wired to the
// scheduler from main; failures are logged, never fatal.
func (b *Bot) SendDigest() {
	stats, err := b.Svc.Admin().Stats(context.Background())
	if err != nil {
		b.Log.Error("digest stats failed", logger.Error(err))
		return
	}
	if _, err := b.Bot.Send(&tele.User{ID: b.Cfg.AdminID}, formatStats(stats)); err != nil {
		b.Log.Error("digest send failed", logger.Error(err))
	}
}

func formatStats(s service.Stats) string {
	return fmt.Sprintf(messages["stats"], s.Users, s.WithPhone, s.Channels, statusLabel(s.Enabled))
}

func statusLabel(enabled bool) string {
	if enabled {
		return messages["status_on"]
	}
	return messages["status_off"]
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
