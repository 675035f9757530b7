package publishing

import (
	"context"
	"time"
)

// Transport performs the status check and publish requests
type Transport interface {
	CheckStatus(ctx context.Context) (*Response, error)
	Publish(ctx context.Context) (*Response, error)
}

// Presenter renders poller state. Calls arrive one at a time in the order the
// state changed; implementations must not call TriggerCheck or Publish.
type Presenter interface {
	Update(p Presentation)
	Flash(message string)
}

// Confirmer asks the user a yes/no question before publishing
type Confirmer interface {
	Confirm(message string) bool
}

// ConfirmFunc adapts a function to the Confirmer interface
type ConfirmFunc func(message string) bool

func (f ConfirmFunc) Confirm(message string) bool {
	return f(message)
}

// AlwaysConfirm is used by callers that already confirmed through their own dialog
var AlwaysConfirm Confirmer = ConfirmFunc(func(string) bool { return true })

// Recorder persists status transitions
type Recorder interface {
	RecordTransition(t Transition) error
}

// Scheduler arms one-shot timers
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a cancellable scheduled call
type Timer interface {
	Stop() bool
}

type timeScheduler struct{}

func (timeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
