package observability

import (
	"sync"
	"time"
)

// StepOutcome is the recorded result of one bootstrap step.
type StepOutcome struct {
	Name       string        `json:"name"`
	Succeeded  bool          `json:"succeeded"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration_ns"`
	FinishedAt time.Time     `json:"finished_at"`
}

// BootstrapReport summarizes the last bootstrap run.
type BootstrapReport struct {
	Completed bool          `json:"completed"`
	Failed    bool          `json:"failed"`
	Steps     []StepOutcome `json:"steps"`
}

// Metrics keeps in-memory bootstrap step outcomes and error counters.
type Metrics struct {
	mu         sync.Mutex
	steps      []StepOutcome
	completed  bool
	failed     bool
	errorCount map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		errorCount: make(map[string]int64),
	}
}

// RecordStep stores the outcome of a step. A nil err marks success.
func (m *Metrics) RecordStep(name string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := StepOutcome{
		Name:       name,
		Succeeded:  err == nil,
		Duration:   duration,
		FinishedAt: time.Now(),
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		outcome.Error = err.Error()
		m.errorCount[name]++
		m.failed = true
	}
	m.steps = append(m.steps, outcome)
}

// MarkCompleted records that the bootstrap run finished, successfully or not.
func (m *Metrics) MarkCompleted() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completed = true
}

// Report returns a copy of the recorded state.
func (m *Metrics) Report() BootstrapReport {
	if m == nil {
		return BootstrapReport{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	steps := make([]StepOutcome, len(m.steps))
	copy(steps, m.steps)
	return BootstrapReport{Completed: m.completed, Failed: m.failed, Steps: steps}
}

// ErrorCount returns how many times the named step failed.
func (m *Metrics) ErrorCount(step string) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errorCount[step]
}
