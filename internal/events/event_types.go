package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventStepCompleted      EventType = "bootstrap_step_completed"
	EventStepFailed         EventType = "bootstrap_step_failed"
	EventBootstrapCompleted EventType = "bootstrap_completed"
)

// Event represents a lifecycle event emitted during startup.
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// StepPayload describes one finished step.
type StepPayload struct {
	Step     string        `json:"step"`
	Index    int           `json:"index"`
	Duration time.Duration `json:"duration_ns"`
	Error    string        `json:"error,omitempty"`
}

// BootstrapCompletedPayload is published once per run.
type BootstrapCompletedPayload struct {
	Succeeded      bool   `json:"succeeded"`
	FailedStep     string `json:"failed_step,omitempty"`
	Error          string `json:"error,omitempty"`
	InstallationID string `json:"installation_id,omitempty"`
	Timezone       string `json:"timezone,omitempty"`
}
