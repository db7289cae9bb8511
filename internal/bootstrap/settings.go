package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bootstrap/internal/domain"
)

const defaultSearchHost = "localhost"

// seedSetting returns the setting stored under name, creating it with value
// when absent. Existing values are never overwritten.
func (b *Bootstrapper) seedSetting(ctx context.Context, name string, value any) (*domain.Setting, error) {
	existing, err := b.store.Settings.GetByName(ctx, name)
	found, err := probe(err)
	if err != nil {
		return nil, fmt.Errorf("lookup setting %s: %w", name, err)
	}
	if found {
		return existing, nil
	}

	setting := &domain.Setting{Name: name, Value: value}
	if err := b.store.Settings.Create(ctx, setting); err != nil {
		return nil, fmt.Errorf("create setting %s: %w", name, err)
	}
	b.logger.Info("created setting", zap.String("setting", name))
	return setting, nil
}

// seedTimezone stores the configured default timezone and resolves the
// effective one. A stored name that cannot be loaded falls back to the
// configured default.
func (b *Bootstrapper) seedTimezone(ctx context.Context, res *Result) error {
	setting, err := b.seedSetting(ctx, domain.SettingTimezone, b.opts.Timezone)
	if err != nil {
		return err
	}

	name, _ := setting.StringValue()
	loc, err := time.LoadLocation(name)
	if err != nil {
		b.logger.Warn("stored timezone invalid; using configured default",
			zap.String("timezone", name), zap.Error(err))
		loc, err = time.LoadLocation(b.opts.Timezone)
		if err != nil {
			return fmt.Errorf("load timezone %q: %w", b.opts.Timezone, err)
		}
	}
	res.Timezone = loc
	return nil
}

// seedDefaultTicketType points ticket:type:default at the first ticket type.
// When no ticket type exists the setting is left for a later start.
func (b *Bootstrapper) seedDefaultTicketType(ctx context.Context, _ *Result) error {
	_, err := b.store.Settings.GetByName(ctx, domain.SettingDefaultTicketType)
	found, err := probe(err)
	if err != nil {
		return fmt.Errorf("lookup setting %s: %w", domain.SettingDefaultTicketType, err)
	}
	if found {
		return nil
	}

	types, err := b.store.TicketTypes.List(ctx)
	if err != nil {
		return fmt.Errorf("list ticket types: %w", err)
	}
	if len(types) == 0 {
		b.logger.Warn("no ticket types found; default ticket type not set")
		return nil
	}

	_, err = b.seedSetting(ctx, domain.SettingDefaultTicketType, types[0].ID)
	return err
}

// seedSearchSettings seeds the search engine connection settings concurrently.
func (b *Bootstrapper) seedSearchSettings(ctx context.Context, _ *Result) error {
	search := b.opts.Search
	host := search.Host
	if host == "" {
		host = defaultSearchHost
	}

	g := b.pool.Group()
	g.Go(func() error {
		_, err := b.seedSetting(ctx, domain.SettingSearchEnable, search.Enable)
		return err
	})
	g.Go(func() error {
		_, err := b.seedSetting(ctx, domain.SettingSearchHost, host)
		return err
	})
	if search.Port != 0 {
		g.Go(func() error {
			_, err := b.seedSetting(ctx, domain.SettingSearchPort, search.Port)
			return err
		})
	} else {
		b.logger.Debug("search port not configured; skipping", zap.String("setting", domain.SettingSearchPort))
	}
	return g.Wait()
}

func (b *Bootstrapper) seedMaintenanceMode(ctx context.Context, _ *Result) error {
	_, err := b.seedSetting(ctx, domain.SettingMaintenanceMode, false)
	return err
}

// seedInstallationID stores a random installation id once and reports the
// effective one.
func (b *Bootstrapper) seedInstallationID(ctx context.Context, res *Result) error {
	setting, err := b.seedSetting(ctx, domain.SettingInstallationID, uuid.NewString())
	if err != nil {
		return err
	}
	res.InstallationID, _ = setting.StringValue()
	return nil
}
