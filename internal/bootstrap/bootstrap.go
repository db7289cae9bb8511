// Package bootstrap seeds and migrates persistent configuration on every
// process start.
//
// Steps run strictly in order and stop at the first failure. Every step is
// idempotent: it looks its documents up by a stable key (name, status
// name+uid, priority migration number) and only writes what is missing, so a
// failed run is retried safely by the next start.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bootstrap/internal/config"
	"github.com/spec-kit/ticket-bootstrap/internal/events"
	"github.com/spec-kit/ticket-bootstrap/internal/observability"
	"github.com/spec-kit/ticket-bootstrap/internal/repository"
	"github.com/spec-kit/ticket-bootstrap/internal/worker"
)

// Step names, in execution order.
const (
	StepCreateDirectories    = "create-directories"
	StepProvisionTools       = "provision-tools"
	StepRoles                = "roles"
	StepDefaultUserRole      = "default-user-role"
	StepTimezone             = "timezone"
	StepDefaultTicketType    = "default-ticket-type"
	StepTicketStatuses       = "ticket-statuses"
	StepPriorities           = "priorities"
	StepTicketTypePriorities = "ticket-type-priorities"
	StepLegacyPriorities     = "legacy-priorities"
	StepNormalizeTags        = "normalize-tags"
	StepMailTemplates        = "mail-templates"
	StepSearchSettings       = "search-settings"
	StepMaintenanceMode      = "maintenance-mode"
	StepInstallationID       = "installation-id"
)

// ErrRoleMissing is returned when a built-in role needed by the role order is absent.
var ErrRoleMissing = errors.New("built-in role missing")

// StepError reports the step that stopped a run.
type StepError struct {
	Step  string
	Index int
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("bootstrap step %d (%s): %v", e.Index, e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Step is one named unit of the startup sequence.
type Step struct {
	Name string
	Run  func(ctx context.Context, res *Result) error
}

// Result carries values produced by steps to the host application.
type Result struct {
	Timezone          *time.Location
	DefaultUserRoleID string
	InstallationID    string
	Completed         []string
	Err               error
}

// Options are the external configuration values the steps read.
type Options struct {
	Root            string
	Timezone        string
	Search          config.SearchConfig
	DatabaseVersion string
	ToolsBaseURL    string
	Platform        string
}

// OptionsFromConfig extracts bootstrap options from the service config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Root:            cfg.App.Root,
		Timezone:        cfg.Bootstrap.Timezone,
		Search:          cfg.Search,
		DatabaseVersion: cfg.Bootstrap.DatabaseVersion,
		ToolsBaseURL:    cfg.Bootstrap.ToolsBaseURL,
		Platform:        cfg.Bootstrap.Platform,
	}
}

// Dependencies bundles collaborators for the bootstrapper.
type Dependencies struct {
	Store      *repository.Store
	Pool       *worker.Pool
	Fs         afero.Fs
	HTTPClient *http.Client
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// Bootstrapper runs the ordered startup sequence.
type Bootstrapper struct {
	store      *repository.Store
	pool       *worker.Pool
	fs         afero.Fs
	httpClient *http.Client
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	opts       Options
	legacy     *LegacyPriorityMigrator
	steps      []Step
}

// New constructs a Bootstrapper. Store and Pool are required.
func New(deps Dependencies, opts Options) *Bootstrapper {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("bootstrap")
	fs := deps.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	client := deps.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	if opts.Root == "" {
		opts.Root = "."
	}

	b := &Bootstrapper{
		store:      deps.Store,
		pool:       deps.Pool,
		fs:         fs,
		httpClient: client,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		opts:       opts,
		legacy:     NewLegacyPriorityMigrator(deps.Store.Tickets, deps.Store.Priorities, deps.Pool, logger),
	}
	b.steps = []Step{
		{Name: StepCreateDirectories, Run: b.createDirectories},
		{Name: StepProvisionTools, Run: b.provisionTools},
		{Name: StepRoles, Run: b.seedRoles},
		{Name: StepDefaultUserRole, Run: b.seedDefaultUserRole},
		{Name: StepTimezone, Run: b.seedTimezone},
		{Name: StepDefaultTicketType, Run: b.seedDefaultTicketType},
		{Name: StepTicketStatuses, Run: b.seedStatuses},
		{Name: StepPriorities, Run: b.seedPriorities},
		{Name: StepTicketTypePriorities, Run: b.backfillTypePriorities},
		{Name: StepLegacyPriorities, Run: b.migrateLegacyPriorities},
		{Name: StepNormalizeTags, Run: b.normalizeTags},
		{Name: StepMailTemplates, Run: b.seedMailTemplates},
		{Name: StepSearchSettings, Run: b.seedSearchSettings},
		{Name: StepMaintenanceMode, Run: b.seedMaintenanceMode},
		{Name: StepInstallationID, Run: b.seedInstallationID},
	}
	return b
}

// Steps returns the step sequence in execution order.
func (b *Bootstrapper) Steps() []Step {
	out := make([]Step, len(b.steps))
	copy(out, b.steps)
	return out
}

// Run executes every step in order and stops at the first failing one. The
// returned Result holds whatever earlier steps produced.
func (b *Bootstrapper) Run(ctx context.Context) (*Result, error) {
	res := &Result{}
	b.logger.Debug("checking default settings", zap.Int("steps", len(b.steps)))

	for i, step := range b.steps {
		start := time.Now()
		err := runStep(ctx, step, res)
		elapsed := time.Since(start)
		b.metrics.RecordStep(step.Name, elapsed, err)

		payload := events.StepPayload{Step: step.Name, Index: i + 1, Duration: elapsed}
		if err != nil {
			payload.Error = err.Error()
			b.publish(ctx, events.EventStepFailed, payload)
			res.Err = &StepError{Step: step.Name, Index: i + 1, Err: err}
			return res, res.Err
		}

		res.Completed = append(res.Completed, step.Name)
		b.logger.Debug("step completed", zap.String("step", step.Name), zap.Duration("elapsed", elapsed))
		b.publish(ctx, events.EventStepCompleted, payload)
	}
	return res, nil
}

// Init runs the sequence and always calls onComplete exactly once. Failures
// are logged rather than returned so startup is never blocked by them.
func (b *Bootstrapper) Init(ctx context.Context, onComplete func(*Result)) {
	res, err := b.Run(ctx)

	done := events.BootstrapCompletedPayload{
		Succeeded:      err == nil,
		InstallationID: res.InstallationID,
	}
	if res.Timezone != nil {
		done.Timezone = res.Timezone.String()
	}
	if err != nil {
		b.logger.Warn("bootstrap stopped", zap.Error(err))
		done.Error = err.Error()
		var stepErr *StepError
		if errors.As(err, &stepErr) {
			done.FailedStep = stepErr.Step
		}
	} else {
		b.logger.Info("bootstrap completed", zap.Int("steps", len(res.Completed)))
	}

	b.metrics.MarkCompleted()
	b.publish(ctx, events.EventBootstrapCompleted, done)

	if onComplete != nil {
		onComplete(res)
	}
}

func runStep(ctx context.Context, step Step, res *Result) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return step.Run(ctx, res)
}

func (b *Bootstrapper) publish(ctx context.Context, eventType events.EventType, payload interface{}) {
	if b.dispatcher == nil {
		return
	}
	err := b.dispatcher.Publish(ctx, events.Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	})
	if err != nil {
		b.logger.Warn("event handler failed", zap.String("event", string(eventType)), zap.Error(err))
	}
}

// probe turns a lookup error into a presence flag. ErrNotFound means absent.
func probe(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repository.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}
