package grid

import (
	"fmt"
	"time"
)

type Action string

const (
	ActionToday Action = "today"
	ActionPrev  Action = "prev"
	ActionNext  Action = "next"
)

func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionToday, ActionPrev, ActionNext:
		return Action(s), nil
	}
	return "", fmt.Errorf("unknown navigation action %q", s)
}

// State is the navigation position: the anchor date and the active view.
// Every transition is legal, there are no guarded states.
type State struct {
	CurrentDate time.Time `json:"currentDate"`
	View        View      `json:"view"`
}

// Navigate shifts the anchor by one unit of the active view, or resets it to
// now for ActionToday. The view is never changed by navigation.
func (s State) Navigate(action Action, now time.Time) State {
	switch action {
	case ActionToday:
		s.CurrentDate = now
	case ActionPrev:
		s.CurrentDate = s.shift(-1)
	case ActionNext:
		s.CurrentDate = s.shift(1)
	}
	return s
}

// SwitchView changes the view and keeps the anchor date.
func (s State) SwitchView(view View) State {
	s.View = view
	return s
}

func (s State) shift(direction int) time.Time {
	switch s.View {
	case ViewMonth:
		return s.CurrentDate.AddDate(0, direction, 0)
	case ViewWeek:
		return s.CurrentDate.AddDate(0, 0, 7*direction)
	default:
		return s.CurrentDate.AddDate(0, 0, direction)
	}
}
