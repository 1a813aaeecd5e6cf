package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v3"
)

type mockBot struct {
	sentTo   telebot.Recipient
	sentWhat interface{}
	sentOpts []interface{}
	edited   telebot.Editable
	member   *telebot.ChatMember
	err      error
}

func (m *mockBot) Send(to telebot.Recipient, what interface{}, options ...interface{}) (*telebot.Message, error) {
	m.sentTo, m.sentWhat, m.sentOpts = to, what, options
	if m.err != nil {
		return nil, m.err
	}
	return &telebot.Message{ID: 42}, nil
}

func (m *mockBot) Edit(msg telebot.Editable, what interface{}, options ...interface{}) (*telebot.Message, error) {
	m.edited, m.sentWhat, m.sentOpts = msg, what, options
	if m.err != nil {
		return nil, m.err
	}
	return &telebot.Message{ID: 42}, nil
}

func (m *mockBot) ChatMemberOf(chat, user telebot.Recipient) (*telebot.ChatMember, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.member, nil
}

func newTestGateway(t *testing.T, bot *mockBot) *Telegram {
	t.Helper()
	g, err := NewTelegram(bot, &telebot.User{ID: 777})
	require.NoError(t, err)
	return g
}

func TestNewTelegram_RequiresIdentity(t *testing.T) {
	_, err := NewTelegram(&mockBot{}, nil)
	assert.Error(t, err)
	_, err = NewTelegram(&mockBot{}, &telebot.User{})
	assert.Error(t, err)
	_, err = NewTelegram(nil, &telebot.User{ID: 1})
	assert.Error(t, err)
}

func TestSendMessage_HTMLWithPreview(t *testing.T) {
	bot := &mockBot{}
	g := newTestGateway(t, bot)

	ref, err := g.SendMessage(context.Background(), -100, "<b>hi</b>", Announcement)
	require.NoError(t, err)
	assert.Equal(t, MessageRef{ChatID: -100, MessageID: 42}, ref)

	assert.Equal(t, "-100", bot.sentTo.Recipient())
	assert.Equal(t, "<b>hi</b>", bot.sentWhat)
	require.Len(t, bot.sentOpts, 1)
	opts := bot.sentOpts[0].(*telebot.SendOptions)
	assert.Equal(t, telebot.ModeHTML, opts.ParseMode)
	assert.False(t, opts.DisableWebPagePreview)
}

func TestSendMessage_Error(t *testing.T) {
	g := newTestGateway(t, &mockBot{err: errors.New("chat not found")})
	_, err := g.SendMessage(context.Background(), -100, "x", Announcement)
	assert.EqualError(t, err, "chat not found")
}

func TestEditMessage_UsesStoredMessage(t *testing.T) {
	bot := &mockBot{}
	g := newTestGateway(t, bot)

	err := g.EditMessage(context.Background(), MessageRef{ChatID: -100, MessageID: 9}, "new", Announcement)
	require.NoError(t, err)
	id, chat := bot.edited.MessageSig()
	assert.Equal(t, "9", id)
	assert.Equal(t, int64(-100), chat)
}

func TestEditMessage_NotModified(t *testing.T) {
	g := newTestGateway(t, &mockBot{err: telebot.ErrMessageNotModified})
	err := g.EditMessage(context.Background(), MessageRef{ChatID: -100, MessageID: 9}, "same", Announcement)
	assert.ErrorIs(t, err, ErrNotModified)

	g = newTestGateway(t, &mockBot{err: telebot.ErrSameMessageContent})
	err = g.EditMessage(context.Background(), MessageRef{ChatID: -100, MessageID: 9}, "same", Announcement)
	assert.ErrorIs(t, err, ErrNotModified)

	g = newTestGateway(t, &mockBot{err: telebot.ErrChatNotFound})
	err = g.EditMessage(context.Background(), MessageRef{ChatID: -100, MessageID: 9}, "x", Announcement)
	assert.ErrorIs(t, err, telebot.ErrChatNotFound)
	assert.NotErrorIs(t, err, ErrNotModified)
}

func TestMembershipStatus(t *testing.T) {
	bot := &mockBot{member: &telebot.ChatMember{Role: telebot.Kicked}}
	g := newTestGateway(t, bot)

	st, err := g.MembershipStatus(context.Background(), -100)
	require.NoError(t, err)
	assert.Equal(t, StatusKicked, st)
	assert.True(t, st.Gone())
	assert.False(t, StatusAdministrator.Gone())
}

func TestCancelledContextSkipsCall(t *testing.T) {
	bot := &mockBot{}
	g := newTestGateway(t, bot)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.SendMessage(ctx, -100, "x", Announcement)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, bot.sentTo)
}
