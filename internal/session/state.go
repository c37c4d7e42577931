package session

import (
	"fmt"
	"strings"
)

// State is a step of the intake conversation.
type State int

const (
	StateGreeting State = iota
	StateServiceQuestions
	StateConfirmation
	StateCompleted
)

var stateNames = [...]string{
	StateGreeting:         "greeting",
	StateServiceQuestions: "service_questions",
	StateConfirmation:     "confirmation",
	StateCompleted:        "completed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// Terminal reports whether no further transitions leave s.
func (s State) Terminal() bool {
	return s == StateCompleted
}

func (s State) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(stateNames) {
		return nil, fmt.Errorf("unknown state %d", int(s))
	}
	return []byte(stateNames[s]), nil
}

func (s *State) UnmarshalText(text []byte) error {
	name := strings.ToLower(string(text))
	for i, n := range stateNames {
		if n == name {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", string(text))
}
