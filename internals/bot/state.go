package bot

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/tutuna/heraldbot/internals/broadcast"
	"github.com/tutuna/heraldbot/internals/gateway"
	"github.com/tutuna/heraldbot/internals/registry"
	"github.com/tutuna/heraldbot/internals/session"
	"github.com/tutuna/heraldbot/internals/store"
)

// State owns everything the handlers mutate. One State exists per running
// bot; handlers receive it instead of reaching for globals.
type State struct {
	Admins   *registry.Admins
	Channels *registry.Channels
	Sessions *session.Manager
	Engine   *broadcast.Engine
}

// Options tune the state built by NewState.
type Options struct {
	InitialAdmins     []int64
	Workers           int
	PruneOnQueryError bool
}

// NewState loads both registries from st and wires the session manager and
// broadcast engine around them.
func NewState(ctx context.Context, st store.Store, gw gateway.Gateway, opt Options, log zerolog.Logger) (*State, error) {
	admins, err := registry.NewAdmins(ctx, st, opt.InitialAdmins, log)
	if err != nil {
		return nil, errors.Wrap(err, "init admins")
	}
	channels, err := registry.NewChannels(ctx, st, gw, registry.Policy{PruneOnQueryError: opt.PruneOnQueryError}, log)
	if err != nil {
		return nil, errors.Wrap(err, "init channels")
	}
	return &State{
		Admins:   admins,
		Channels: channels,
		Sessions: session.NewManager(admins, channels),
		Engine:   broadcast.New(broadcast.Config{Workers: opt.Workers}, channels, gw, log),
	}, nil
}
