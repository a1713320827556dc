package lifecycle

import "fmt"

// IllegalTransitionError means the requested transition is not permitted from
// the entity's current state, or the entity sits under a frozen list.
type IllegalTransitionError struct {
	Entity string
	From   string
	Action string
	Reason string
}

func (e *IllegalTransitionError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return fmt.Sprintf("%s cannot %s from status %q", e.Entity, e.Action, e.From)
}

// PreconditionFailedError means the transition itself is legal but a business
// precondition is unmet, e.g. publishing a list with no ready products.
type PreconditionFailedError struct {
	Reason string
}

func (e *PreconditionFailedError) Error() string { return e.Reason }

// NotFoundError means a referenced entity does not exist in the store.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func illegal(entity, from, action, reason string) error {
	return &IllegalTransitionError{Entity: entity, From: from, Action: action, Reason: reason}
}

func precondition(format string, args ...any) error {
	return &PreconditionFailedError{Reason: fmt.Sprintf(format, args...)}
}
