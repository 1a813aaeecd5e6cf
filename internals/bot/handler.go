// Package bot maps chat commands onto the registries, the session manager and
// the broadcast engine. Handlers take the sender id and the command payload
// and return the reply to show, so they run without a live Telegram
// connection; telegram.go binds them to telebot routes.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tutuna/heraldbot/internals/broadcast"
	"github.com/tutuna/heraldbot/internals/gateway"
	"github.com/tutuna/heraldbot/internals/registry"
	"github.com/tutuna/heraldbot/internals/session"
)

// Reply is what a handler wants sent back to the chat it was called from.
type Reply struct {
	Text           string
	HTML           bool
	DisablePreview bool
	// Confirm attaches the Confirm/Cancel buttons.
	Confirm bool
	// Fallback is sent as plain text when Text cannot be rendered.
	Fallback string
	// Denied is set when the sender was not allowed to run the command.
	Denied bool
}

func plain(format string, a ...any) Reply {
	return Reply{Text: fmt.Sprintf(format, a...)}
}

// Handler runs chat commands against a State.
type Handler struct {
	state *State
	log   zerolog.Logger
}

// NewHandler returns a Handler working on state.
func NewHandler(state *State, log zerolog.Logger) *Handler {
	return &Handler{state: state, log: log.With().Str("component", "bot").Logger()}
}

// Start greets the sender and tells them their id and admin status.
func (h *Handler) Start(sender int64) Reply {
	status := "❌ You are not an admin"
	if h.state.Admins.IsAdmin(sender) {
		status = "✅ You are an admin"
	}
	return plain("%s\nYour user ID is: %d\nAdmin status: %s", startGreeting, sender, status)
}

// Help lists the commands; admins also get the formatting guide.
func (h *Handler) Help(sender int64) Reply {
	text := helpBasic
	if h.state.Admins.IsAdmin(sender) {
		text += helpAdmin
	}
	return Reply{Text: text, HTML: true, DisablePreview: true}
}

// Announce stages payload as sender's draft and asks for confirmation.
func (h *Handler) Announce(sender int64, payload string) Reply {
	if !h.state.Admins.IsAdmin(sender) {
		return denied("send announcements")
	}
	text, err := DecodeText(payload)
	if err != nil {
		return h.invalid(err, "announce")
	}
	prompt, err := h.state.Sessions.Stage(sender, text)
	if err != nil {
		return h.failure(err, "send announcements")
	}
	return Reply{
		Text:     fmt.Sprintf(stagePrompt, prompt.Text, prompt.ChannelCount),
		HTML:     true,
		Confirm:  true,
		Fallback: previewFallback,
	}
}

// Confirm broadcasts sender's pending draft.
func (h *Handler) Confirm(ctx context.Context, sender int64) Reply {
	text, err := h.state.Sessions.Confirm(sender)
	if err != nil {
		return h.failure(err, "send announcements")
	}
	h.log.Info().Int64("admin", sender).Msg("announcement confirmed")
	rep := h.state.Engine.Send(ctx, text)
	return sendSummary(rep)
}

// Cancel drops the sender's draft. The reply is the same whether or not a
// draft existed.
func (h *Handler) Cancel(sender int64) Reply {
	existed, err := h.state.Sessions.Cancel(sender)
	if err != nil {
		return h.failure(err, "cancel announcements")
	}
	h.log.Debug().Int64("admin", sender).Bool("had_draft", existed).Msg("announcement cancelled")
	return plain("🗑 Announcement cancelled.")
}

// Edit rewrites the last broadcast in every channel that received it.
func (h *Handler) Edit(ctx context.Context, sender int64, payload string) Reply {
	if !h.state.Admins.IsAdmin(sender) {
		return denied("edit announcements")
	}
	text, err := DecodeText(payload)
	if err != nil {
		return h.invalid(err, "edit")
	}
	h.log.Info().Int64("admin", sender).Msg("announcement edit requested")
	return editSummary(h.state.Engine.Edit(ctx, text))
}

// Preview renders payload the way it would be announced, without staging it.
func (h *Handler) Preview(sender int64, payload string) Reply {
	if !h.state.Admins.IsAdmin(sender) {
		return denied("preview announcements")
	}
	text, err := DecodeText(payload)
	if err != nil {
		return h.invalid(err, "preview")
	}
	return Reply{
		Text:     fmt.Sprintf(previewText, text, h.state.Channels.Len()),
		HTML:     true,
		Fallback: previewFallback,
	}
}

// ListChannels shows the registered channel ids.
func (h *Handler) ListChannels(sender int64) Reply {
	if !h.state.Admins.IsAdmin(sender) {
		return denied("list channels")
	}
	ids := h.state.Channels.List()
	if len(ids) == 0 {
		return plain("No channels registered yet.")
	}
	return Reply{Text: bulleted("Registered channels:", ids)}
}

// ListAdmins shows the admin user ids.
func (h *Handler) ListAdmins(sender int64) Reply {
	if !h.state.Admins.IsAdmin(sender) {
		return denied("list admins")
	}
	return Reply{Text: bulleted("Admin users:", h.state.Admins.List())}
}

// AddAdmin grants admin rights to the user id in args.
func (h *Handler) AddAdmin(ctx context.Context, sender int64, args []string) Reply {
	if !h.state.Admins.IsAdmin(sender) {
		return denied("add admins")
	}
	id, err := DecodeID(args)
	if err != nil {
		return h.invalid(err, "add")
	}
	if err := h.state.Admins.Add(ctx, id); err != nil {
		return h.failure(err, "add admins")
	}
	return plain("✅ Added user %d as admin.", id)
}

// RemoveAdmin revokes admin rights. The last admin cannot be removed.
func (h *Handler) RemoveAdmin(ctx context.Context, sender int64, args []string) Reply {
	if !h.state.Admins.IsAdmin(sender) {
		return denied("remove admins")
	}
	id, err := DecodeID(args)
	if err != nil {
		return h.invalid(err, "remove")
	}
	if err := h.state.Admins.Remove(ctx, id); err != nil {
		return h.failure(err, "remove admins")
	}
	return plain("✅ Removed user %d from admins.", id)
}

// ObserveChat registers a chat the bot has seen activity in.
func (h *Handler) ObserveChat(ctx context.Context, chatID int64) {
	if h.state.Channels.Contains(chatID) {
		return
	}
	if err := h.state.Channels.Register(ctx, chatID); err != nil {
		h.log.Error().Err(err).Int64("channel_id", chatID).Msg("failed to register channel")
	}
}

// MembershipChanged follows the bot's own membership in a chat: leaving or
// being kicked drops the chat, joining registers it.
func (h *Handler) MembershipChanged(ctx context.Context, chatID int64, status gateway.MemberStatus) {
	if !status.Gone() {
		h.ObserveChat(ctx, chatID)
		return
	}
	if !h.state.Channels.Contains(chatID) {
		return
	}
	if err := h.state.Channels.Remove(ctx, chatID); err != nil {
		h.log.Error().Err(err).Int64("channel_id", chatID).Msg("failed to remove channel")
		return
	}
	h.log.Info().Int64("channel_id", chatID).Str("status", string(status)).Msg("bot left channel")
}

func denied(action string) Reply {
	r := plain("❌ You don't have permission to %s.", action)
	r.Denied = true
	return r
}

func (h *Handler) invalid(err error, command string) Reply {
	var verr *ValidationError
	if !errors.As(err, &verr) {
		return h.failure(err, command)
	}
	switch {
	case verr.Field == "user_id" && verr.Reason == reasonNotNumber:
		return plain("❌ Invalid user ID. Please provide a valid number.")
	case verr.Field == "user_id" && command == "add":
		return plain("Please provide a user ID to add as admin.")
	case verr.Field == "user_id":
		return plain("Please provide a user ID to remove from admins.")
	case command == "edit":
		return plain("Please provide the new text for the last announcement.")
	default:
		return plain("Please provide a message to %s.", command)
	}
}

func (h *Handler) failure(err error, action string) Reply {
	switch {
	case errors.Is(err, session.ErrUnauthorized):
		return denied(action)
	case errors.Is(err, session.ErrNoPendingAnnouncement):
		return plain("❌ No pending announcement. Use /announce <message> first.")
	case errors.Is(err, session.ErrEmptyDraft):
		return plain("Please provide a message to announce.")
	case errors.Is(err, registry.ErrLastAdmin):
		return plain("❌ Cannot remove the last admin.")
	case errors.Is(err, registry.ErrNotAnAdmin):
		return plain("❌ User is not an admin.")
	}
	h.log.Error().Err(err).Str("action", action).Msg("command failed")
	return plain("⚠️ Could not save the change, please try again later.")
}

func sendSummary(rep broadcast.Report) Reply {
	text := fmt.Sprintf("Announcement sent to %d channels.\nFailed to send to %d channels.", rep.Success, rep.Failed)
	return Reply{Text: text + removedLine(rep.Removed)}
}

func editSummary(rep broadcast.Report) Reply {
	text := fmt.Sprintf("Announcement edited in %d channels.\nFailed to edit in %d channels.", rep.Success, rep.Failed)
	if rep.Skipped > 0 {
		text += fmt.Sprintf("\nSkipped %d channels without a previous announcement.", rep.Skipped)
	}
	return Reply{Text: text + removedLine(rep.Removed)}
}

func removedLine(ids []int64) string {
	if len(ids) == 0 {
		return ""
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return "\nRemoved unreachable channels: " + strings.Join(parts, ", ")
}

func bulleted(title string, ids []int64) string {
	var b strings.Builder
	b.WriteString(title)
	b.WriteByte('\n')
	for _, id := range ids {
		fmt.Fprintf(&b, "- %d\n", id)
	}
	return b.String()
}
