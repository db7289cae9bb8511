package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bootstrap/internal/events"
	"github.com/spec-kit/ticket-bootstrap/internal/repository"
)

// SettingsHashKey is the Redis hash holding the settings snapshot.
const SettingsHashKey = "settings:bootstrap"

// HashWriter stores a flat field map under a key. persistence.Redis implements it.
type HashWriter interface {
	HSet(ctx context.Context, key string, fields map[string]interface{}) error
}

// SettingsPublisher reacts to bootstrap lifecycle events. After a successful
// run it copies every setting into a shared hash so other processes can read
// them without a database round trip.
type SettingsPublisher struct {
	dispatcher events.Dispatcher
	settings   repository.SettingRepository
	cache      HashWriter
	logger     *zap.Logger
}

// NewSettingsPublisher creates the service.
func NewSettingsPublisher(dispatcher events.Dispatcher, settings repository.SettingRepository, cache HashWriter, logger *zap.Logger) *SettingsPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsPublisher{
		dispatcher: dispatcher,
		settings:   settings,
		cache:      cache,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (p *SettingsPublisher) RegisterHandlers() {
	if p.dispatcher == nil {
		return
	}
	p.dispatcher.Subscribe(events.EventStepFailed, p.handleStepFailed)
	p.dispatcher.Subscribe(events.EventBootstrapCompleted, p.handleBootstrapCompleted)
}

func (p *SettingsPublisher) handleStepFailed(_ context.Context, event events.Event) error {
	p.logger.Warn("BootstrapStepFailed", zap.Any("payload", event.Payload))
	return nil
}

func (p *SettingsPublisher) handleBootstrapCompleted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.BootstrapCompletedPayload)
	if !ok || !payload.Succeeded {
		p.logger.Debug("bootstrap incomplete; settings not published")
		return nil
	}
	if p.cache == nil {
		return nil
	}

	list, err := p.settings.List(ctx)
	if err != nil {
		p.logger.Warn("list settings for publish", zap.Error(err))
		return nil
	}
	if len(list) == 0 {
		return nil
	}

	fields := make(map[string]interface{}, len(list))
	for _, s := range list {
		raw, err := json.Marshal(s.Value)
		if err != nil {
			p.logger.Warn("encode setting", zap.String("setting", s.Name), zap.Error(err))
			continue
		}
		fields[s.Name] = string(raw)
	}

	if err := p.cache.HSet(ctx, SettingsHashKey, fields); err != nil {
		p.logger.Warn("publish settings", zap.String("key", SettingsHashKey), zap.Error(err))
		return nil
	}
	p.logger.Info("settings published", zap.String("key", SettingsHashKey), zap.Int("count", len(fields)))
	return nil
}
