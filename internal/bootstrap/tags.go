package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// normalizeTags recomputes every tag's canonical form and saves only the
// tags whose stored form differs. The first save error stops the step.
func (b *Bootstrapper) normalizeTags(ctx context.Context, _ *Result) error {
	tags, err := b.store.Tags.List(ctx)
	if err != nil {
		return fmt.Errorf("list tags: %w", err)
	}

	changed := 0
	for i := range tags {
		tag := &tags[i]
		if !tag.Normalize() {
			continue
		}
		if err := b.store.Tags.Save(ctx, tag); err != nil {
			return fmt.Errorf("save tag %q: %w", tag.Name, err)
		}
		changed++
	}
	if changed > 0 {
		b.logger.Info("normalized tags", zap.Int("changed", changed), zap.Int("total", len(tags)))
	}
	return nil
}
