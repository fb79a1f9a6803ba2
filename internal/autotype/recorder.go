package autotype

import "sync"

// Recorder is an Injector that records steps instead of typing them.
type Recorder struct {
	mu    sync.Mutex
	steps []Step

	// FailAt makes the call with this 1-based index fail. Zero never fails.
	FailAt int
	Err    error
}

// TypeText records a text step.
func (r *Recorder) TypeText(s string) error {
	return r.record(Step{Text: s})
}

// PressKey records a key step.
func (r *Recorder) PressKey(k Key) error {
	return r.record(Step{Key: k})
}

func (r *Recorder) record(s Step) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailAt > 0 && len(r.steps)+1 == r.FailAt {
		r.FailAt = 0
		return r.Err
	}
	r.steps = append(r.steps, s)
	return nil
}

// Steps returns a copy of what was recorded.
func (r *Recorder) Steps() []Step {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Step(nil), r.steps...)
}

// Reset forgets recorded steps.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.steps = nil
	r.mu.Unlock()
}
