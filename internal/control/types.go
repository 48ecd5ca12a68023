// Package control is the Orchestration layer (O): it serialises per-user
// operations behind a timed FIFO lock, wires Perception, Modeling,
// Learning and Decision together into one process_event call, persists
// the resulting records, and runs the delayed-reward sweeper.
package control

import (
	"github.com/heartcoolman/adaptive-vocab-engine/internal/decision"
	"github.com/heartcoolman/adaptive-vocab-engine/internal/perception"
	"github.com/heartcoolman/adaptive-vocab-engine/internal/userstate"
)

// ProcessEventInput bundles one raw event with the external, caller-owned
// context Perception needs: word metadata from the content collaborator
// and a trailing window of recent outcomes. Neither is
// computed or stored by the Engine itself.
type ProcessEventInput struct {
	Event   perception.RawEvent
	Word    perception.WordMetadata
	History []perception.Outcome
}

// ProcessEventResult is returned to the caller on a successful decision.
type ProcessEventResult struct {
	Strategy    decision.Strategy
	Explanation decision.Explanation
	DecisionID  string
}

// ApplyDelayedRewardInput groups the fields of one realised-reward
// application; ApplyDelayedReward itself takes them as separate
// arguments.
type ApplyDelayedRewardInput struct {
	UserID     string
	DecisionID string
	Reward     float64
}

// ApplyDelayedRewardResult reports success without ever panicking the
// caller into the error path for an expected, already-handled condition.
type ApplyDelayedRewardResult struct {
	Success bool
	Error   string
}

// UserStateView is what GetUserState returns: the persisted state (the
// cold-start default for a new user), never an error for an
// existing-or-new user.
type UserStateView struct {
	State userstate.State
}
