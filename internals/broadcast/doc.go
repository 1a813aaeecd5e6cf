// Package broadcast delivers an announcement to every registered channel.
//
// A cycle works on a snapshot of the channel set taken when it starts, so
// channels pruned or registered mid-cycle do not change who is targeted.
// Every target first has its reachability verified; unreachable targets and
// targets whose delivery fails are pruned from the registry instead of being
// retried. Per-channel outcomes are collected into a Report.
//
// Send starts a new cycle and forgets the message refs of the previous one.
// Edit rewrites the messages of the last Send in place and skips channels
// that did not receive it.
//
// Cycles never overlap. Within a cycle up to Config.Workers channels are
// processed concurrently; the default of one keeps delivery sequential.
package broadcast
