package membership

import (
	"context"

	tele "gopkg.in/telebot.v3"

	"gatebot/pkg/logger"
)

// api is the slice of the telegram client the oracle needs. *tele.Bot
// satisfies it.
type api interface {
	ChatByUsername(name string) (*tele.Chat, error)
	ChatMemberOf(chat, user tele.Recipient) (*tele.ChatMember, error)
}

// Oracle answers "is this user a member of this channel" against the
// platform. Every failure mode degrades to "not a member": the gate must
// never open because of an oracle malfunction.
type Oracle struct {
	api api
	log logger.ILogger
}

func New(api api, log logger.ILogger) *Oracle {
	return &Oracle{api: api, log: log}
}

func (o *Oracle) IsMember(ctx context.Context, userID int64, channel string) bool {
	chat, err := o.api.ChatByUsername(channel)
	if err != nil {
		// Unknown or inaccessible channel counts as "member of nothing".
		o.log.Warning("channel lookup failed", logger.String("channel", channel), logger.Error(err))
		return false
	}

	member, err := o.api.ChatMemberOf(chat, &tele.User{ID: userID})
	if err != nil {
		o.log.Warning("member status query failed",
			logger.String("channel", channel),
			logger.Int64("user_id", userID),
			logger.Error(err))
		return false
	}

	switch member.Role {
	case tele.Left, tele.Kicked:
		return false
	default:
		return true
	}
}

// CheckAll returns the channels the user has not joined, preserving input
// order. Every channel is checked: the caller renders the full unmet list.
func (o *Oracle) CheckAll(ctx context.Context, userID int64, channels []string) []string {
	var unmet []string
	for _, ch := range channels {
		if !o.IsMember(ctx, userID, ch) {
			unmet = append(unmet, ch)
		}
	}
	return unmet
}
