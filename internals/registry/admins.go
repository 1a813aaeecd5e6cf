package registry

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/tutuna/heraldbot/internals/store"
)

var (
	ErrLastAdmin  = errors.New("cannot remove the last admin")
	ErrNotAnAdmin = errors.New("user is not an admin")
	ErrNoAdmins   = errors.New("no admins configured")
)

// Admins is the persisted set of admin user ids. The set is never empty.
type Admins struct {
	mu    sync.RWMutex
	ids   map[int64]struct{}
	store store.Store
	log   zerolog.Logger
}

// NewAdmins loads the admin set. On first run, when nothing is persisted yet,
// the set is seeded from seed and saved; afterwards seed is ignored.
func NewAdmins(ctx context.Context, st store.Store, seed []int64, log zerolog.Logger) (*Admins, error) {
	a := &Admins{
		ids:   map[int64]struct{}{},
		store: st,
		log:   log.With().Str("component", "admins").Logger(),
	}
	ids, found, err := st.Load(ctx, store.KeyAdmins)
	if err != nil {
		return nil, errors.Wrap(err, "load admins")
	}
	if !found {
		if len(seed) == 0 {
			return nil, ErrNoAdmins
		}
		next := toSet(seed)
		if err := st.Save(ctx, store.KeyAdmins, toSlice(next)); err != nil {
			return nil, errors.Wrap(err, "seed admins")
		}
		a.ids = next
		a.log.Info().Ints64("admins", toSlice(next)).Msg("admin set seeded")
		return a, nil
	}
	if len(ids) == 0 {
		return nil, ErrNoAdmins
	}
	a.ids = toSet(ids)
	return a, nil
}

// IsAdmin checks if user is an admin.
func (a *Admins) IsAdmin(id int64) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.ids[id]
	return ok
}

// Add inserts id and persists. Adding an existing admin is a no-op.
func (a *Admins) Add(ctx context.Context, id int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.ids[id]; ok {
		return nil
	}
	next := copySet(a.ids)
	next[id] = struct{}{}
	if err := a.store.Save(ctx, store.KeyAdmins, toSlice(next)); err != nil {
		return errors.Wrap(err, "save admins")
	}
	a.ids = next
	a.log.Info().Int64("admin_id", id).Msg("admin added")
	return nil
}

// Remove deletes id and persists. It fails with ErrNotAnAdmin for unknown ids
// and ErrLastAdmin when id is the only admin left.
func (a *Admins) Remove(ctx context.Context, id int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.ids[id]; !ok {
		return ErrNotAnAdmin
	}
	if len(a.ids) <= 1 {
		return ErrLastAdmin
	}
	next := copySet(a.ids)
	delete(next, id)
	if err := a.store.Save(ctx, store.KeyAdmins, toSlice(next)); err != nil {
		return errors.Wrap(err, "save admins")
	}
	a.ids = next
	a.log.Info().Int64("admin_id", id).Msg("admin removed")
	return nil
}

// List returns the admin ids in ascending order.
func (a *Admins) List() []int64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return toSlice(a.ids)
}

// Len returns the number of admins, never zero.
func (a *Admins) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.ids)
}

func toSet(ids []int64) map[int64]struct{} {
	m := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}

func copySet(m map[int64]struct{}) map[int64]struct{} {
	out := make(map[int64]struct{}, len(m)+1)
	for id := range m {
		out[id] = struct{}{}
	}
	return out
}

func toSlice(m map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
