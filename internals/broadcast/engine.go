package broadcast

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tutuna/heraldbot/internals/gateway"
	"golang.org/x/sync/errgroup"
)

// Engine runs broadcast cycles over the channel registry.
type Engine struct {
	// mu serializes cycles.
	mu sync.Mutex

	cfg Config
	reg Registry
	gw  gateway.Gateway
	log zerolog.Logger
}

// New returns an Engine delivering through gw to the channels in reg.
func New(cfg Config, reg Registry, gw gateway.Gateway, log zerolog.Logger) *Engine {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Engine{
		cfg: cfg,
		reg: reg,
		gw:  gw,
		log: log.With().Str("component", "broadcast").Logger(),
	}
}

// Send delivers text to every registered channel.
func (e *Engine) Send(ctx context.Context, text string) Report {
	return e.run(ctx, OpSend, text)
}

// Edit replaces the last delivered message in every channel with text.
func (e *Engine) Edit(ctx context.Context, text string) Report {
	return e.run(ctx, OpEdit, text)
}

func (e *Engine) run(ctx context.Context, op Op, text string) Report {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	cycle := uuid.NewString()
	log := e.log.With().Str("cycle", cycle).Str("op", string(op)).Logger()

	if op == OpSend {
		e.reg.ClearLastRefs()
	}
	targets := e.reg.Snapshot()
	log.Info().Int("targets", len(targets)).Int("workers", e.cfg.Workers).Msg("broadcast cycle started")

	results := make([]Result, len(targets))
	var g errgroup.Group
	g.SetLimit(e.cfg.Workers)
	for i, id := range targets {
		i, id := i, id
		g.Go(func() error {
			if op == OpSend {
				results[i] = e.sendOne(ctx, log, id, text)
			} else {
				results[i] = e.editOne(ctx, log, id, text)
			}
			return nil
		})
	}
	_ = g.Wait()

	rep := Report{Cycle: cycle, Op: op, Results: results}
	for _, res := range results {
		switch {
		case res.Skipped:
			rep.Skipped++
		case res.Err != nil:
			rep.Failed++
		default:
			rep.Success++
		}
		if res.Removed {
			rep.Removed = append(rep.Removed, res.ChannelID)
		}
	}
	rep.Took = time.Since(start)

	ev := log.Info()
	if rep.Failed > 0 {
		ev = log.Warn()
	}
	ev.Int("success", rep.Success).
		Int("failed", rep.Failed).
		Int("skipped", rep.Skipped).
		Ints64("removed", rep.Removed).
		Dur("took", rep.Took).
		Msg("broadcast cycle finished")
	return rep
}

func (e *Engine) sendOne(ctx context.Context, log zerolog.Logger, id int64, text string) Result {
	if res, ok := e.checkReachable(ctx, OpSend, id); !ok {
		return res
	}
	ref, err := e.gw.SendMessage(ctx, id, text, gateway.Announcement)
	if err != nil {
		return e.fail(ctx, log, OpSend, id, err)
	}
	e.reg.SetLastRef(ref)
	log.Debug().Int64("channel_id", id).Int("message_id", ref.MessageID).Msg("announcement delivered")
	return Result{ChannelID: id, Ref: ref}
}

func (e *Engine) editOne(ctx context.Context, log zerolog.Logger, id int64, text string) Result {
	ref, ok := e.reg.LastRef(id)
	if !ok {
		return Result{ChannelID: id, Skipped: true}
	}
	if res, ok := e.checkReachable(ctx, OpEdit, id); !ok {
		return res
	}
	err := e.gw.EditMessage(ctx, ref, text, gateway.Announcement)
	if err != nil && !errors.Is(err, gateway.ErrNotModified) {
		return e.fail(ctx, log, OpEdit, id, err)
	}
	log.Debug().Int64("channel_id", id).Int("message_id", ref.MessageID).Msg("announcement edited")
	return Result{ChannelID: id, Ref: ref}
}

func (e *Engine) checkReachable(ctx context.Context, op Op, id int64) (Result, bool) {
	ok, err := e.reg.VerifyReachable(ctx, id)
	if ok {
		return Result{}, true
	}
	return Result{
		ChannelID: id,
		Err:       &DeliveryError{ChannelID: id, Op: op, Stage: StageReachability, Err: err},
		Removed:   !e.reg.Contains(id),
	}, false
}

func (e *Engine) fail(ctx context.Context, log zerolog.Logger, op Op, id int64, err error) Result {
	derr := &DeliveryError{ChannelID: id, Op: op, Stage: StageDelivery, Err: err}
	log.Warn().Int64("channel_id", id).Err(err).Msg("delivery failed; pruning channel")
	if rerr := e.reg.Remove(ctx, id); rerr != nil {
		log.Error().Int64("channel_id", id).Err(rerr).Msg("failed to persist channel removal")
	}
	return Result{ChannelID: id, Err: derr, Removed: !e.reg.Contains(id)}
}
