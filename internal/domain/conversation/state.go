package conversation

import "fmt"

// FlowState represents where a session currently sits in the
// origin → destination → mode → result flow.
type FlowState string

const (
	StateAwaitingOriginText FlowState = "awaiting_origin_text"
	StateChoosingOrigin     FlowState = "choosing_origin"
	StateAwaitingDestText   FlowState = "awaiting_dest_text"
	StateChoosingDest       FlowState = "choosing_dest"
	StateChoosingMode       FlowState = "choosing_mode"
	StateCompleted          FlowState = "completed"
)

// validTransitions defines the state machine for the conversation flow.
// Staying in the current state (retry, reprompt) is always allowed and is
// not listed here.
var validTransitions = map[FlowState][]FlowState{
	StateAwaitingOriginText: {StateChoosingOrigin},
	StateChoosingOrigin:     {StateAwaitingOriginText, StateAwaitingDestText},
	StateAwaitingDestText:   {StateChoosingDest},
	StateChoosingDest:       {StateAwaitingDestText, StateChoosingMode},
	StateChoosingMode:       {StateCompleted},
	StateCompleted:          {},
}

// IsValid returns true if the state is a recognized flow state.
func (s FlowState) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this state to the target
// is allowed. Staying in the current state (retry, reprompt) counts as
// allowed for every non-terminal state.
func (s FlowState) CanTransitionTo(target FlowState) bool {
	if s == target {
		return s.IsValid() && !s.IsTerminal()
	}
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible.
func (s FlowState) IsTerminal() bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

// String returns the string representation of the state.
func (s FlowState) String() string {
	return string(s)
}

// ParseFlowState converts a string to a FlowState, returning an error if invalid.
func ParseFlowState(s string) (FlowState, error) {
	state := FlowState(s)
	if !state.IsValid() {
		return "", fmt.Errorf("invalid flow state: %s", s)
	}
	return state, nil
}
