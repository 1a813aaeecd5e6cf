// Package gateway is the bot's view of the messaging transport: sending and
// editing announcements and asking whether the bot is still a member of a
// chat.
package gateway

import (
	"context"
	"errors"
)

// MemberStatus is the bot's own membership status in a chat.
type MemberStatus string

const (
	StatusCreator       MemberStatus = "creator"
	StatusAdministrator MemberStatus = "administrator"
	StatusMember        MemberStatus = "member"
	StatusRestricted    MemberStatus = "restricted"
	StatusLeft          MemberStatus = "left"
	StatusKicked        MemberStatus = "kicked"
)

// Gone reports whether the status means the bot can no longer post.
func (s MemberStatus) Gone() bool {
	return s == StatusLeft || s == StatusKicked
}

// MessageRef identifies a delivered message inside its chat.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// SendOptions control rendering of outgoing text.
type SendOptions struct {
	HTML           bool
	DisablePreview bool
}

// Announcement is how broadcasts are rendered: HTML with link previews.
var Announcement = SendOptions{HTML: true}

// ErrNotModified is returned by EditMessage when the new text equals the
// current one. The message is still in place.
var ErrNotModified = errors.New("message is not modified")

// Gateway is the messaging transport the registries and the engine talk to.
type Gateway interface {
	SendMessage(ctx context.Context, chatID int64, text string, opt SendOptions) (MessageRef, error)
	EditMessage(ctx context.Context, ref MessageRef, text string, opt SendOptions) error
	MembershipStatus(ctx context.Context, chatID int64) (MemberStatus, error)
}
