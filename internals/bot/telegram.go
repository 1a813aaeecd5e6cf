package bot

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/tutuna/heraldbot/internals/gateway"
	tele "gopkg.in/telebot.v3"
)

const (
	cbConfirm = "announce_confirm"
	cbCancel  = "announce_cancel"
)

// Router is the subset of *tele.Bot the routes are installed on.
type Router interface {
	Handle(endpoint interface{}, h tele.HandlerFunc, m ...tele.MiddlewareFunc)
	Use(middleware ...tele.MiddlewareFunc)
}

type routes struct {
	ctx        context.Context
	h          *Handler
	log        zerolog.Logger
	markup     *tele.ReplyMarkup
	btnConfirm tele.Btn
	btnCancel  tele.Btn
}

// Register installs every command, callback and chat observer on r. ctx is
// handed to the blocking operations started from updates.
func (h *Handler) Register(ctx context.Context, r Router) {
	rt := &routes{ctx: ctx, h: h, log: h.log, markup: &tele.ReplyMarkup{}}
	rt.btnConfirm = rt.markup.Data("✅ Confirm", cbConfirm)
	rt.btnCancel = rt.markup.Data("✖️ Cancel", cbCancel)
	rt.markup.Inline(rt.markup.Row(rt.btnConfirm, rt.btnCancel))

	r.Use(rt.observe)

	r.Handle("/start", func(c tele.Context) error {
		return rt.reply(c, h.Start(senderID(c)))
	})
	r.Handle("/help", func(c tele.Context) error {
		return rt.reply(c, h.Help(senderID(c)))
	})
	r.Handle("/announce", func(c tele.Context) error {
		return rt.reply(c, h.Announce(senderID(c), payload(c)))
	})
	r.Handle("/confirm", func(c tele.Context) error {
		return rt.reply(c, h.Confirm(ctx, senderID(c)))
	})
	r.Handle("/cancel", func(c tele.Context) error {
		return rt.reply(c, h.Cancel(senderID(c)))
	})
	r.Handle("/edit", func(c tele.Context) error {
		return rt.reply(c, h.Edit(ctx, senderID(c), payload(c)))
	})
	r.Handle("/preview", func(c tele.Context) error {
		return rt.reply(c, h.Preview(senderID(c), payload(c)))
	})
	r.Handle("/listchannels", func(c tele.Context) error {
		return rt.reply(c, h.ListChannels(senderID(c)))
	})
	r.Handle("/listadmins", func(c tele.Context) error {
		return rt.reply(c, h.ListAdmins(senderID(c)))
	})
	r.Handle("/addadmin", func(c tele.Context) error {
		return rt.reply(c, h.AddAdmin(ctx, senderID(c), c.Args()))
	})
	r.Handle("/removeadmin", func(c tele.Context) error {
		return rt.reply(c, h.RemoveAdmin(ctx, senderID(c), c.Args()))
	})

	r.Handle(&rt.btnConfirm, func(c tele.Context) error {
		return rt.answer(c, h.Confirm(ctx, senderID(c)))
	})
	r.Handle(&rt.btnCancel, func(c tele.Context) error {
		return rt.answer(c, h.Cancel(senderID(c)))
	})

	// The observe middleware does the registering; these only make sure the
	// updates reach it.
	noop := func(tele.Context) error { return nil }
	r.Handle(tele.OnChannelPost, noop)
	r.Handle(tele.OnAddedToGroup, noop)
	r.Handle(tele.OnText, noop)

	r.Handle(tele.OnMyChatMember, func(c tele.Context) error {
		upd := c.ChatMember()
		if upd == nil || upd.Chat == nil || upd.NewChatMember == nil {
			return nil
		}
		status := gateway.MemberStatus(upd.NewChatMember.Role)
		if !status.Gone() && !broadcastChat(upd.Chat.Type) {
			return nil
		}
		h.MembershipChanged(ctx, upd.Chat.ID, status)
		return nil
	})
}

// observe registers every channel, group or supergroup an update comes from.
func (rt *routes) observe(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if chat := c.Chat(); chat != nil && broadcastChat(chat.Type) && c.ChatMember() == nil {
			rt.h.ObserveChat(rt.ctx, chat.ID)
		}
		return next(c)
	}
}

func (rt *routes) reply(c tele.Context, r Reply) error {
	opts := &tele.SendOptions{DisableWebPagePreview: r.DisablePreview}
	if r.HTML {
		opts.ParseMode = tele.ModeHTML
	}
	if r.Confirm {
		opts.ReplyMarkup = rt.markup
	}
	err := c.Send(r.Text, opts)
	if err != nil && r.Fallback != "" {
		rt.log.Warn().Err(err).Msg("reply could not be rendered, sending format guide")
		return c.Send(r.Fallback)
	}
	return err
}

// answer replies to a button press. The buttons stay on the prompt when the
// presser was not allowed to use them.
func (rt *routes) answer(c tele.Context, r Reply) error {
	if !r.Denied {
		rt.dropButtons(c)
	}
	_ = c.Respond()
	return rt.reply(c, r)
}

func (rt *routes) dropButtons(c tele.Context) {
	msg := c.Message()
	if msg == nil {
		return
	}
	if _, err := c.Bot().EditReplyMarkup(msg, nil); err != nil {
		rt.log.Debug().Err(err).Msg("could not remove confirmation buttons")
	}
}

func senderID(c tele.Context) int64 {
	if u := c.Sender(); u != nil {
		return u.ID
	}
	return 0
}

func broadcastChat(t tele.ChatType) bool {
	switch t {
	case tele.ChatChannel, tele.ChatChannelPrivate, tele.ChatGroup, tele.ChatSuperGroup:
		return true
	}
	return false
}

// payload is everything after the command. telebot's own Payload stops at
// the first newline, which would truncate multi-line announcements.
func payload(c tele.Context) string {
	return CommandText(c.Text())
}
