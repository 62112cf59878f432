package testutil

import (
	"context"
	"sync"
)

// Call is one command recorded by RecordingRunner.
type Call struct {
	Name string
	Args []string
}

// RecordingRunner records commands instead of executing them.
//
// FailOn maps an argument (typically an input path) to the error returned
// for any call containing it.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type RecordingRunner struct {
	mu     sync.Mutex
	calls  []Call
	FailOn map[string]error
}

// Run records the call and returns the configured failure, if any.
func (r *RecordingRunner) Run(_ context.Context, name string, args ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, Call{Name: name, Args: append([]string(nil), args...)})
	for _, arg := range args {
		if err, ok := r.FailOn[arg]; ok {
			return err
		}
	}
	return nil
}

// Calls returns a copy of the recorded calls in order.
func (r *RecordingRunner) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}
