package gateway

import (
	"context"
	"errors"
	"strconv"

	"gopkg.in/telebot.v3"
)

// BotAPI is the subset of *telebot.Bot the gateway needs.
// This allows for mocking the bot in tests.
type BotAPI interface {
	Send(to telebot.Recipient, what interface{}, options ...interface{}) (*telebot.Message, error)
	Edit(msg telebot.Editable, what interface{}, options ...interface{}) (*telebot.Message, error)
	ChatMemberOf(chat, user telebot.Recipient) (*telebot.ChatMember, error)
}

// Telegram implements Gateway on top of telebot.
type Telegram struct {
	bot  BotAPI
	self *telebot.User
}

// NewTelegram wraps bot; self is the bot's own account, used for membership
// queries.
func NewTelegram(bot BotAPI, self *telebot.User) (*Telegram, error) {
	if bot == nil {
		return nil, errors.New("telegram bot is nil")
	}
	if self == nil || self.ID == 0 {
		return nil, errors.New("bot identity is unknown")
	}
	return &Telegram{bot: bot, self: self}, nil
}

func sendOptions(opt SendOptions) *telebot.SendOptions {
	so := &telebot.SendOptions{DisableWebPagePreview: opt.DisablePreview}
	if opt.HTML {
		so.ParseMode = telebot.ModeHTML
	}
	return so
}

// SendMessage posts text to chatID and returns where it landed.
func (t *Telegram) SendMessage(ctx context.Context, chatID int64, text string, opt SendOptions) (MessageRef, error) {
	if err := ctx.Err(); err != nil {
		return MessageRef{}, err
	}
	msg, err := t.bot.Send(&telebot.Chat{ID: chatID}, text, sendOptions(opt))
	if err != nil {
		return MessageRef{}, err
	}
	return MessageRef{ChatID: chatID, MessageID: msg.ID}, nil
}

// EditMessage replaces the text of the message at ref.
func (t *Telegram) EditMessage(ctx context.Context, ref MessageRef, text string, opt SendOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stored := telebot.StoredMessage{MessageID: strconv.Itoa(ref.MessageID), ChatID: ref.ChatID}
	_, err := t.bot.Edit(stored, text, sendOptions(opt))
	if errors.Is(err, telebot.ErrMessageNotModified) || errors.Is(err, telebot.ErrSameMessageContent) {
		return ErrNotModified
	}
	return err
}

// MembershipStatus reports the bot's own status in chatID.
func (t *Telegram) MembershipStatus(ctx context.Context, chatID int64) (MemberStatus, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	member, err := t.bot.ChatMemberOf(&telebot.Chat{ID: chatID}, t.self)
	if err != nil {
		return "", err
	}
	return MemberStatus(member.Role), nil
}
