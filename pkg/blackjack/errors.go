package blackjack

import "fmt"

// UserError is an error that is safe to return in a response
type UserError string

func (u UserError) Error() string {
	return string(u)
}

// ErrSplitNotSupported is returned for the split action
// Split is mentioned in the rules text, but it is not a playable action.
const ErrSplitNotSupported = UserError("split is not supported")

// InvalidActionError is returned when an action is not legal in the current phase
// The game is never modified when this error is returned.
type InvalidActionError struct {
	Action string
	Phase  Phase
	Reason string
}

func (e *InvalidActionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot %s: %s", e.Action, e.Reason)
	}

	return fmt.Sprintf("cannot %s from phase: %s", e.Action, e.Phase)
}

func invalidAction(a Action, p Phase, format string, args ...interface{}) error {
	reason := ""
	if format != "" {
		reason = fmt.Sprintf(format, args...)
	}

	return &InvalidActionError{
		Action: a.Name(),
		Phase:  p,
		Reason: reason,
	}
}
