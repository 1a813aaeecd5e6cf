package broadcast

import (
	"context"
	"fmt"
	"time"

	"github.com/tutuna/heraldbot/internals/gateway"
)

// Op is the kind of cycle: send or edit.
type Op string

const (
	OpSend Op = "send"
	OpEdit Op = "edit"
)

// Stage is where a per-channel attempt failed.
type Stage string

const (
	StageReachability Stage = "reachability"
	StageDelivery     Stage = "delivery"
)

// Registry is the channel registry as seen by the engine.
type Registry interface {
	Snapshot() []int64
	Contains(id int64) bool
	VerifyReachable(ctx context.Context, id int64) (bool, error)
	Remove(ctx context.Context, id int64) error
	SetLastRef(ref gateway.MessageRef)
	LastRef(id int64) (gateway.MessageRef, bool)
	ClearLastRefs()
}

// Config tunes the engine.
type Config struct {
	// Workers bounds how many channels are processed at once. Values below
	// one mean one.
	Workers int
}

// DeliveryError is a failed send or edit to one channel.
type DeliveryError struct {
	ChannelID int64
	Op        Op
	Stage     Stage
	Err       error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s to channel %d failed at %s: %v", e.Op, e.ChannelID, e.Stage, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// Result is the outcome for one channel.
type Result struct {
	ChannelID int64
	Ref       gateway.MessageRef
	Err       *DeliveryError
	// Skipped is set for edits of channels that have no previous message.
	Skipped bool
	// Removed is set when the channel was pruned from the registry.
	Removed bool
}

// OK reports a delivered or edited message.
func (r Result) OK() bool { return r.Err == nil && !r.Skipped }

// Report aggregates one cycle.
type Report struct {
	Cycle   string
	Op      Op
	Success int
	Failed  int
	Skipped int
	Removed []int64
	Results []Result
	Took    time.Duration
}

// Errors returns the per-channel failures of the cycle.
func (r Report) Errors() []*DeliveryError {
	var out []*DeliveryError
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res.Err)
		}
	}
	return out
}
