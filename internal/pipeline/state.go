package pipeline

import "fmt"

// State is where a tournament code is in its lifecycle.
type State int

const (
	StatePending State = iota
	StateResolving
	StateFetching
	StateExtracting
	StateWriting
	StateDone
	StateSkipped
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "Pending"
	case StateResolving:
		return "Resolving"
	case StateFetching:
		return "Fetching"
	case StateExtracting:
		return "Extracting"
	case StateWriting:
		return "Writing"
	case StateDone:
		return "Done"
	case StateSkipped:
		return "Skipped"
	case StateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Terminal reports whether no further transition is allowed.
func (s State) Terminal() bool {
	return s == StateDone || s == StateSkipped || s == StateFailed
}

// validTransitions lists the legal next states. A code with several matches
// loops back to Fetching after each one.
var validTransitions = map[State][]State{
	StatePending:    {StateResolving, StateFailed},
	StateResolving:  {StateFetching, StateSkipped, StateFailed},
	StateFetching:   {StateExtracting, StateDone, StateSkipped, StateFailed},
	StateExtracting: {StateWriting, StateFetching, StateDone, StateSkipped, StateFailed},
	StateWriting:    {StateFetching, StateDone, StateSkipped, StateFailed},
}

// TransitionFunc observes a state change for one code.
type TransitionFunc func(code string, from, to State)

// StateMachine tracks a single tournament code.
type StateMachine struct {
	code     string
	current  State
	observer TransitionFunc
}

// NewStateMachine starts code in Pending.
func NewStateMachine(code string) *StateMachine {
	return &StateMachine{code: code, current: StatePending}
}

// OnTransition registers fn to be called after every successful transition.
func (sm *StateMachine) OnTransition(fn TransitionFunc) {
	sm.observer = fn
}

func (sm *StateMachine) Current() State {
	return sm.current
}

// TransitionTo moves to next, or returns an error and stays put when the
// move is illegal.
func (sm *StateMachine) TransitionTo(next State) error {
	if !sm.canTransition(next) {
		return fmt.Errorf("invalid transition for %s: %s -> %s", sm.code, sm.current, next)
	}
	from := sm.current
	sm.current = next
	if sm.observer != nil {
		sm.observer(sm.code, from, next)
	}
	return nil
}

func (sm *StateMachine) canTransition(next State) bool {
	for _, s := range validTransitions[sm.current] {
		if s == next {
			return true
		}
	}
	return false
}
