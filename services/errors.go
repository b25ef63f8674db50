package services

import (
	"errors"
	"fmt"
)

// ErrForbidden is returned when the caller's resolved authorization does not
// permit the operation.
var ErrForbidden = errors.New("you do not have permission to perform this action")

// ValidationError marks malformed or out-of-policy input (bad date/time,
// past slot, party size below 1, inactive restaurant, lead-time violation).
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// NotFoundError marks a missing restaurant, table or reservation.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// InsufficientCapacityError reports a failed allocation with the computed
// needed-vs-available counts. No mutation has happened when it is returned.
type InsufficientCapacityError struct {
	Needed    int
	Available int
}

func (e *InsufficientCapacityError) Error() string {
	return fmt.Sprintf("not enough tables available: needed %d, available %d", e.Needed, e.Available)
}

// InvalidTransitionError marks a lifecycle action attempted from an illegal
// state. Status holds the state the reservation was in.
type InvalidTransitionError struct {
	Status string
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	return e.Reason
}
