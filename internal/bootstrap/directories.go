package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"
)

// dataDirs are created under the root path on every start.
var dataDirs = []string{"backups", "restores"}

func (b *Bootstrapper) createDirectories(_ context.Context, _ *Result) error {
	g := b.pool.Group()
	for _, dir := range dataDirs {
		path := filepath.Join(b.opts.Root, dir)
		g.Go(func() error {
			if err := b.fs.MkdirAll(path, 0o755); err != nil {
				return fmt.Errorf("create directory %s: %w", path, err)
			}
			return nil
		})
	}
	return g.Wait()
}
