package userstate

import "github.com/heartcoolman/adaptive-vocab-engine/internal/perception"

// AsPriorState adapts a State to the narrow shape internal/perception
// needs, keeping perception free of any import on userstate.
func (s State) AsPriorState() perception.PriorState {
	return perception.PriorState{
		Attention:  s.Attention,
		Fatigue:    s.Fatigue,
		Mem:        s.Mem,
		Speed:      s.Speed,
		Motivation: s.Motivation,
	}
}
