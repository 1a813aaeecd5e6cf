// Package gatewaytest provides an in-memory gateway.Gateway for tests.
package gatewaytest

import (
	"context"
	"errors"
	"sync"

	"github.com/tutuna/heraldbot/internals/gateway"
)

var (
	ErrChatNotFound = errors.New("chat not found")
	ErrForbidden    = errors.New("bot was blocked")
)

// Sent is one recorded send or edit.
type Sent struct {
	Ref  gateway.MessageRef
	Text string
	Opt  gateway.SendOptions
	Edit bool
}

// Fake records calls and fails the chats it is told to.
type Fake struct {
	mu sync.Mutex

	// Status per chat; chats without an entry are members.
	Status map[int64]gateway.MemberStatus
	// QueryErr fails MembershipStatus for a chat.
	QueryErr map[int64]error
	// SendErr fails SendMessage for a chat.
	SendErr map[int64]error
	// EditErr fails EditMessage for a chat.
	EditErr map[int64]error

	// OnSend, if set, runs before every send is recorded.
	OnSend func(chatID int64)

	nextID  int
	Sent    []Sent
	Queried []int64
}

// New returns a Fake where every chat is reachable and every call succeeds.
func New() *Fake {
	return &Fake{
		Status:   map[int64]gateway.MemberStatus{},
		QueryErr: map[int64]error{},
		SendErr:  map[int64]error{},
		EditErr:  map[int64]error{},
	}
}

func (f *Fake) SendMessage(_ context.Context, chatID int64, text string, opt gateway.SendOptions) (gateway.MessageRef, error) {
	if f.OnSend != nil {
		f.OnSend(chatID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.SendErr[chatID]; err != nil {
		return gateway.MessageRef{}, err
	}
	f.nextID++
	ref := gateway.MessageRef{ChatID: chatID, MessageID: f.nextID}
	f.Sent = append(f.Sent, Sent{Ref: ref, Text: text, Opt: opt})
	return ref, nil
}

func (f *Fake) EditMessage(_ context.Context, ref gateway.MessageRef, text string, opt gateway.SendOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.EditErr[ref.ChatID]; err != nil {
		return err
	}
	f.Sent = append(f.Sent, Sent{Ref: ref, Text: text, Opt: opt, Edit: true})
	return nil
}

func (f *Fake) MembershipStatus(_ context.Context, chatID int64) (gateway.MemberStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Queried = append(f.Queried, chatID)
	if err := f.QueryErr[chatID]; err != nil {
		return "", err
	}
	if st, ok := f.Status[chatID]; ok {
		return st, nil
	}
	return gateway.StatusMember, nil
}

// Edits returns the recorded edits.
func (f *Fake) Edits() []Sent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Sent
	for _, s := range f.Sent {
		if s.Edit {
			out = append(out, s)
		}
	}
	return out
}

// Sends returns the recorded sends.
func (f *Fake) Sends() []Sent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Sent
	for _, s := range f.Sent {
		if !s.Edit {
			out = append(out, s)
		}
	}
	return out
}
