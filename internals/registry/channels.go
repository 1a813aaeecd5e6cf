package registry

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/tutuna/heraldbot/internals/gateway"
	"github.com/tutuna/heraldbot/internals/store"
)

// Policy decides what happens when a membership query itself fails.
type Policy struct {
	// PruneOnQueryError treats a failed query like a kick and removes the
	// channel. When false the channel is kept and only the current delivery
	// attempt is skipped.
	PruneOnQueryError bool
}

// Channels is the persisted set of broadcast destinations together with the
// last message delivered to each of them.
//
// Every mutation of the set is written through to the store before it is
// applied in memory. Removing a channel also forgets its last message.
type Channels struct {
	mu      sync.RWMutex
	ids     map[int64]struct{}
	lastRef map[int64]gateway.MessageRef

	store  store.Store
	gw     gateway.Gateway
	policy Policy
	log    zerolog.Logger
}

// NewChannels loads the channel set from st. gw is used for membership
// queries; it may be nil when VerifyReachable is never called.
func NewChannels(ctx context.Context, st store.Store, gw gateway.Gateway, policy Policy, log zerolog.Logger) (*Channels, error) {
	ids, _, err := st.Load(ctx, store.KeyChannels)
	if err != nil {
		return nil, errors.Wrap(err, "load channels")
	}
	return &Channels{
		ids:     toSet(ids),
		lastRef: map[int64]gateway.MessageRef{},
		store:   st,
		gw:      gw,
		policy:  policy,
		log:     log.With().Str("component", "channels").Logger(),
	}, nil
}

// Register adds id. Registering a known channel is a no-op.
func (c *Channels) Register(ctx context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.ids[id]; ok {
		return nil
	}
	next := copySet(c.ids)
	next[id] = struct{}{}
	if err := c.store.Save(ctx, store.KeyChannels, toSlice(next)); err != nil {
		return errors.Wrap(err, "save channels")
	}
	c.ids = next
	c.log.Info().Int64("channel_id", id).Msg("registered new channel")
	return nil
}

// Remove forgets id and its last message. Removing an unknown channel is a
// no-op. When the save fails nothing changes, the last message included.
func (c *Channels) Remove(ctx context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.ids[id]; !ok {
		delete(c.lastRef, id)
		return nil
	}
	next := copySet(c.ids)
	delete(next, id)
	if err := c.store.Save(ctx, store.KeyChannels, toSlice(next)); err != nil {
		return errors.Wrap(err, "save channels")
	}
	c.ids = next
	delete(c.lastRef, id)
	c.log.Info().Int64("channel_id", id).Msg("channel removed")
	return nil
}

// VerifyReachable asks the gateway whether the bot can still post to id.
// A left or kicked status removes the channel. A failed query removes it too
// unless the policy says otherwise. The returned error, if any, explains why
// the channel is unreachable.
func (c *Channels) VerifyReachable(ctx context.Context, id int64) (bool, error) {
	status, err := c.gw.MembershipStatus(ctx, id)
	if err != nil {
		if !c.policy.PruneOnQueryError {
			c.log.Warn().Int64("channel_id", id).Err(err).Msg("membership query failed; keeping channel")
			return false, err
		}
		c.log.Warn().Int64("channel_id", id).Err(err).Msg("membership query failed; pruning channel")
		c.prune(ctx, id)
		return false, err
	}
	if status.Gone() {
		c.log.Warn().Int64("channel_id", id).Str("status", string(status)).Msg("bot no longer in channel; pruning")
		c.prune(ctx, id)
		return false, errors.Errorf("bot status is %s", status)
	}
	return true, nil
}

func (c *Channels) prune(ctx context.Context, id int64) {
	if err := c.Remove(ctx, id); err != nil {
		c.log.Error().Int64("channel_id", id).Err(err).Msg("failed to persist channel removal")
	}
}

// Contains reports whether id is registered.
func (c *Channels) Contains(id int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.ids[id]
	return ok
}

// List returns the channel ids in ascending order.
func (c *Channels) List() []int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return toSlice(c.ids)
}

// Snapshot is a copy of the current set; later mutations do not affect it.
func (c *Channels) Snapshot() []int64 {
	return c.List()
}

// Len returns the number of registered channels.
func (c *Channels) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.ids)
}

// SetLastRef records the latest message delivered to a registered channel.
// Refs for channels that are no longer registered are dropped.
func (c *Channels) SetLastRef(ref gateway.MessageRef) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.ids[ref.ChatID]; !ok {
		return
	}
	c.lastRef[ref.ChatID] = ref
}

// LastRef returns the last message delivered to id in the current cycle.
func (c *Channels) LastRef(id int64) (gateway.MessageRef, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ref, ok := c.lastRef[id]
	return ref, ok
}

// LastRefs returns a copy of all last-message refs.
func (c *Channels) LastRefs() map[int64]gateway.MessageRef {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[int64]gateway.MessageRef, len(c.lastRef))
	for id, ref := range c.lastRef {
		out[id] = ref
	}
	return out
}

// ClearLastRefs drops every last-message ref, starting a new broadcast cycle.
func (c *Channels) ClearLastRefs() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastRef = map[int64]gateway.MessageRef{}
}
