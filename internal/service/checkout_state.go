package service

import "fmt"

// checkoutState is the phase a single checkout is in.
type checkoutState string

const (
	stateReceived   checkoutState = "received"
	stateValidating checkoutState = "validating"
	stateReserving  checkoutState = "reserving"
	statePersisting checkoutState = "persisting"
	stateCommitted  checkoutState = "committed"
	stateAborted    checkoutState = "aborted"
)

// A retried attempt re-enters reserving from whichever phase hit the conflict.
var checkoutTransitions = map[checkoutState]map[checkoutState]bool{
	stateReceived:   {stateValidating: true},
	stateValidating: {stateReserving: true, stateAborted: true},
	stateReserving:  {statePersisting: true, stateReserving: true, stateAborted: true},
	statePersisting: {stateCommitted: true, stateReserving: true, stateAborted: true},
	stateCommitted:  {},
	stateAborted:    {},
}

// terminal reports whether no further transition is possible.
func (s checkoutState) terminal() bool {
	return len(checkoutTransitions[s]) == 0
}

// checkoutRun tracks the state of one checkout.
type checkoutRun struct {
	state checkoutState
}

func newCheckoutRun() *checkoutRun {
	return &checkoutRun{state: stateReceived}
}

// transition moves the run to next, rejecting moves the state machine does not allow.
func (r *checkoutRun) transition(next checkoutState) error {
	if !checkoutTransitions[r.state][next] {
		return fmt.Errorf("illegal checkout transition %s -> %s", r.state, next)
	}
	r.state = next
	return nil
}
