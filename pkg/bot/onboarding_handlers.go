package bot

import (
	"context"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v3"

	"gatebot/service"
)

func (b *Bot) handleStart(c tele.Context) error {
	decision, err := b.Svc.Onboarding().Start(context.Background(), c.Sender().ID, c.Sender().Username)
	if err != nil {
		return err
	}
	return b.render(c, decision, false)
}

func (b *Bot) handleVerify(c tele.Context) error {
	decision, err := b.Svc.Onboarding().Verify(context.Background(), c.Sender().ID)
	if err != nil {
		return err
	}
	if err := b.render(c, decision, true); err != nil {
		return err
	}
	return c.Respond()
}

func (b *Bot) handleContact(c tele.Context) error {
	contact := c.Message().Contact
	if contact == nil {
		return nil
	}
	if contact.UserID != 0 && contact.UserID != c.Sender().ID {
		return c.Send(messages["not_yours"])
	}

	decision, err := b.Svc.Onboarding().Contact(context.Background(), c.Sender().ID, c.Sender().Username, contact.PhoneNumber)
	if err != nil {
		return err
	}
	return b.render(c, decision, false)
}

// render maps a state machine decision onto the chat. edit is set when the
// event came from a callback and the originating message can be rewritten.
func (b *Bot) render(c tele.Context, d service.Decision, edit bool) error {
	switch d.Step {
	case service.StepDisabled:
		return c.Send(messages["disabled"])

	case service.StepJoinPrompt:
		menu := joinKeyboard(d.Channels)
		if len(d.Unmet) > 0 && edit {
			text := fmt.Sprintf(messages["join_incomplete"], strings.Join(d.Unmet, "\n"))
			return c.Edit(text, menu)
		}
		return c.Send(messages["join"], menu, tele.ModeMarkdown)

	case service.StepContactPrompt:
		if d.Verified && edit {
			_ = c.Edit(messages["verified"])
		}
		menu := &tele.ReplyMarkup{ResizeKeyboard: true}
		menu.Reply(menu.Row(menu.Contact(messages["share_contact"])))
		return c.Send(messages["contact"], menu)

	case service.StepUnavailable:
		return c.Send(messages["unavailable"])

	case service.StepDelivered:
		text := fmt.Sprintf(messages["delivered"], strings.Join(d.Servers, "\n"))
		return c.Send(text, tele.RemoveKeyboard, tele.ModeMarkdown)
	}
	return nil
}

func joinKeyboard(channels []string) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(channels)+1)
	for _, ch := range channels {
		url := "https://t.me/" + strings.TrimPrefix(ch, "@")
		rows = append(rows, menu.Row(menu.URL("Join "+ch, url)))
	}
	rows = append(rows, menu.Row(menu.Data("✅ I've joined", "verify_membership")))
	menu.Inline(rows...)
	return menu
}
