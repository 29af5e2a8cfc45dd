package session

import "fmt"

// NoActiveSessionError reports a page or driver operation attempted
// on a goroutine with no open session scope. Never retried.
type NoActiveSessionError struct {
	Goroutine int64
}

// Error implements the error interface.
func (e *NoActiveSessionError) Error() string {
	return fmt.Sprintf("no active session on goroutine %d", e.Goroutine)
}

// ConfinementError reports a page operation from a goroutine whose
// active session is not the one the page was constructed under:
// either a foreign goroutine or a different session on the same one.
// Never retried: acting on a driver from the wrong goroutine risks
// native driver protocol corruption.
type ConfinementError struct {
	SessionID string
	Owner     int64
	Caller    int64
}

// Error implements the error interface.
func (e *ConfinementError) Error() string {
	return fmt.Sprintf("session %s is confined to goroutine %d, called from goroutine %d",
		e.SessionID, e.Owner, e.Caller)
}

// DriverMismatchError reports a WithDriver call whose expected driver
// is not the instance the active session is bound to. Never retried.
type DriverMismatchError struct {
	SessionID string
	Goroutine int64
}

// Error implements the error interface.
func (e *DriverMismatchError) Error() string {
	return fmt.Sprintf("driver is not the one bound to session %s on goroutine %d",
		e.SessionID, e.Goroutine)
}
