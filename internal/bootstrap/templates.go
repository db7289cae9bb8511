package bootstrap

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/spec-kit/ticket-bootstrap/internal/domain"
)

//go:embed templates/*.yaml
var templateFS embed.FS

// DefaultMailTemplates decodes the built-in mail templates, sorted by name.
func DefaultMailTemplates() ([]domain.MailTemplate, error) {
	paths, err := fs.Glob(templateFS, "templates/*.yaml")
	if err != nil {
		return nil, err
	}

	templates := make([]domain.MailTemplate, 0, len(paths))
	for _, p := range paths {
		raw, err := templateFS.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		var tpl domain.MailTemplate
		if err := yaml.Unmarshal(raw, &tpl); err != nil {
			return nil, fmt.Errorf("decode %s: %w", p, err)
		}
		if tpl.Name == "" {
			return nil, fmt.Errorf("decode %s: template name is empty", p)
		}
		templates = append(templates, tpl)
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i].Name < templates[j].Name })
	return templates, nil
}

// seedMailTemplates creates each built-in template whose name is absent.
// Templates are seeded concurrently and edited templates are kept.
func (b *Bootstrapper) seedMailTemplates(ctx context.Context, _ *Result) error {
	templates, err := DefaultMailTemplates()
	if err != nil {
		return fmt.Errorf("load mail templates: %w", err)
	}

	g := b.pool.Group()
	for _, tpl := range templates {
		g.Go(func() error {
			_, err := b.store.Templates.GetByName(ctx, tpl.Name)
			found, err := probe(err)
			if err != nil {
				return fmt.Errorf("lookup mail template %s: %w", tpl.Name, err)
			}
			if found {
				return nil
			}
			if err := b.store.Templates.Create(ctx, &tpl); err != nil {
				return fmt.Errorf("create mail template %s: %w", tpl.Name, err)
			}
			b.logger.Info("created mail template", zap.String("template", tpl.Name))
			return nil
		})
	}
	return g.Wait()
}
