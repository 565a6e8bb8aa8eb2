// ============================================================================
// kontrakt - Contract Development Console
// ============================================================================
//
// Package:     console
// Description: Evaluation states and console events
// Created:     2026-10-14
// License:     MIT
// ============================================================================

package console

import "sync"

// State is the step an evaluation is in
type State int

const (
	StateIdle State = iota
	StateReceived
	StateClassifying
	StateDispatching
	StateReprovisioning
	StateRewriting
	StateCompiling
	StateExecuting
	StateAssigningEpilogue
	StateReportingError
)

var stateNames = map[State]string{
	StateIdle:              "idle",
	StateReceived:          "received",
	StateClassifying:       "classifying",
	StateDispatching:       "dispatching",
	StateReprovisioning:    "reprovisioning",
	StateRewriting:         "rewriting",
	StateCompiling:         "compiling",
	StateExecuting:         "executing",
	StateAssigningEpilogue: "assigning-epilogue",
	StateReportingError:    "reporting-error",
}

// String returns the state name
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Path is the route an input took through the console
type Path int

const (
	PathNone Path = iota
	PathCommand
	PathExpression
)

// String returns the path name
func (p Path) String() string {
	switch p {
	case PathCommand:
		return "command"
	case PathExpression:
		return "expression"
	default:
		return "none"
	}
}

// EventKind identifies a console event
type EventKind int

const (
	// EventReady fires once the console has provisioned and can take input
	EventReady EventKind = iota
	// EventProvisioned fires after every provisioning pass
	EventProvisioned
	// EventEvaluated fires after every evaluation, successful or not
	EventEvaluated
	// EventExit fires when the session ends
	EventExit
)

// Event is delivered to observers
type Event struct {
	Kind EventKind

	// Input and Path are set for EventEvaluated
	Input string
	Path  Path
	// States lists the states the evaluation passed through
	States []State
	Err    error

	// Contracts holds the names bound by a provisioning pass
	Contracts []string
}

type observer struct {
	fn   func(Event)
	once bool
}

// observers is a small event hub. Observers run synchronously on the
// emitting goroutine in registration order.
type observers struct {
	mu   sync.Mutex
	subs map[EventKind][]observer
}

func (o *observers) add(kind EventKind, fn func(Event), once bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.subs == nil {
		o.subs = make(map[EventKind][]observer)
	}
	o.subs[kind] = append(o.subs[kind], observer{fn: fn, once: once})
}

func (o *observers) emit(event Event) {
	o.mu.Lock()
	subs := o.subs[event.Kind]
	if len(subs) == 0 {
		o.mu.Unlock()
		return
	}
	kept := subs[:0:0]
	for _, sub := range subs {
		if !sub.once {
			kept = append(kept, sub)
		}
	}
	o.subs[event.Kind] = kept
	o.mu.Unlock()

	for _, sub := range subs {
		sub.fn(event)
	}
}
