// Package session tracks announcement drafts awaiting confirmation.
//
// Each admin has at most one draft. Staging again replaces it; confirm and
// cancel consume it.
package session

import (
	"errors"
	"strings"
	"sync"
)

var (
	ErrUnauthorized          = errors.New("not an admin")
	ErrNoPendingAnnouncement = errors.New("no pending announcement")
	ErrEmptyDraft            = errors.New("announcement text is empty")
)

// Authorizer reports whether a user may manage announcements.
type Authorizer interface {
	IsAdmin(id int64) bool
}

// Counter reports how many channels a broadcast would reach.
type Counter interface {
	Len() int
}

// Prompt is what the admin is asked to confirm.
type Prompt struct {
	Text         string
	ChannelCount int
}

// Manager holds one draft per admin.
type Manager struct {
	mu       sync.Mutex
	drafts   map[int64]string
	auth     Authorizer
	channels Counter
}

// NewManager returns a Manager that checks auth on every call and reports
// the channel count from channels when a draft is staged.
func NewManager(auth Authorizer, channels Counter) *Manager {
	return &Manager{
		drafts:   map[int64]string{},
		auth:     auth,
		channels: channels,
	}
}

// Stage stores text as admin's draft, replacing any earlier one.
func (m *Manager) Stage(admin int64, text string) (Prompt, error) {
	if !m.auth.IsAdmin(admin) {
		return Prompt{}, ErrUnauthorized
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Prompt{}, ErrEmptyDraft
	}
	m.mu.Lock()
	m.drafts[admin] = text
	m.mu.Unlock()
	return Prompt{Text: text, ChannelCount: m.channels.Len()}, nil
}

// Confirm removes and returns admin's draft.
func (m *Manager) Confirm(admin int64) (string, error) {
	if !m.auth.IsAdmin(admin) {
		return "", ErrUnauthorized
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	text, ok := m.drafts[admin]
	if !ok {
		return "", ErrNoPendingAnnouncement
	}
	delete(m.drafts, admin)
	return text, nil
}

// Cancel drops admin's draft if there is one. It reports whether a draft
// existed; callers announce the cancellation either way.
func (m *Manager) Cancel(admin int64) (bool, error) {
	if !m.auth.IsAdmin(admin) {
		return false, ErrUnauthorized
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.drafts[admin]
	delete(m.drafts, admin)
	return ok, nil
}

// Pending returns admin's draft without consuming it.
func (m *Manager) Pending(admin int64) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	text, ok := m.drafts[admin]
	return text, ok
}
