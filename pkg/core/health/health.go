// ============================================================================
// kontrakt - Contract Development Console
// ============================================================================
//
// Package:     health
// Description: Concurrent project checks with an aggregated report
// Created:     2026-10-16
// License:     MIT
// ============================================================================

package health

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Status is the outcome of a check
type Status string

const (
	StatusOK      Status = "ok"
	StatusWarning Status = "warning"
	StatusFailed  Status = "failed"
)

// Result is the outcome of one check
type Result struct {
	Name     string
	Status   Status
	Message  string
	Duration time.Duration
	Details  map[string]interface{}
}

// Checker is a single check
type Checker interface {
	Name() string
	Check(ctx context.Context) Result
}

type namedCheck struct {
	name string
	fn   func(ctx context.Context) Result
}

// NewChecker creates a named checker from a function
func NewChecker(name string, fn func(ctx context.Context) Result) Checker {
	return &namedCheck{name: name, fn: fn}
}

func (c *namedCheck) Name() string                     { return c.name }
func (c *namedCheck) Check(ctx context.Context) Result { return c.fn(ctx) }

// OK, Warning and Failed build results
func OK(message string) Result      { return Result{Status: StatusOK, Message: message} }
func Warning(message string) Result { return Result{Status: StatusWarning, Message: message} }
func Failed(err error) Result       { return Result{Status: StatusFailed, Message: err.Error()} }

// Registry runs a set of checkers
type Registry struct {
	mu       sync.RWMutex
	checkers []Checker
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a checker. A checker with the same name is replaced.
func (r *Registry) Register(checker Checker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.checkers {
		if c.Name() == checker.Name() {
			r.checkers[i] = checker
			return
		}
	}
	r.checkers = append(r.checkers, checker)
}

// RegisterFunc adds a check function
func (r *Registry) RegisterFunc(name string, fn func(ctx context.Context) Result) {
	r.Register(NewChecker(name, fn))
}

// Check runs every checker concurrently. Results are ordered by name.
func (r *Registry) Check(ctx context.Context) *Report {
	r.mu.RLock()
	checkers := append([]Checker(nil), r.checkers...)
	r.mu.RUnlock()

	report := &Report{Timestamp: time.Now(), Status: StatusOK}
	results := make([]Result, len(checkers))

	var wg sync.WaitGroup
	for i, checker := range checkers {
		wg.Add(1)
		go func(i int, c Checker) {
			defer wg.Done()
			start := time.Now()
			result := c.Check(ctx)
			result.Duration = time.Since(start)
			if result.Name == "" {
				result.Name = c.Name()
			}
			results[i] = result
		}(i, checker)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })
	for _, result := range results {
		switch result.Status {
		case StatusFailed:
			report.Status = StatusFailed
		case StatusWarning:
			if report.Status != StatusFailed {
				report.Status = StatusWarning
			}
		}
	}
	report.Results = results
	return report
}

// Report is the aggregated outcome of a check run
type Report struct {
	Status    Status
	Timestamp time.Time
	Results   []Result
}

// Failed returns the number of failed checks
func (r *Report) Failed() int {
	n := 0
	for _, result := range r.Results {
		if result.Status == StatusFailed {
			n++
		}
	}
	return n
}

// String returns a one-line summary
func (r *Report) String() string {
	return fmt.Sprintf("Status: %s, Checks: %d, Failed: %d", r.Status, len(r.Results), r.Failed())
}
