package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bootstrap/internal/domain"
)

// DefaultRoles are the built-in roles, seeded by name.
var DefaultRoles = []domain.Role{
	{
		Name:        domain.RoleNameUser,
		Description: "Default role for users",
		Grants: []string{
			"tickets:create view update",
			"comments:create view update",
		},
	},
	{
		Name:        domain.RoleNameSupport,
		Description: "Default role for agents",
		Grants: []string{
			"tickets:*",
			"agent:*",
			"accounts:create update view import",
			"teams:create update view",
			"comments:create view update create delete",
			"reports:view create",
			"notices:*",
		},
	},
	{
		Name:        domain.RoleNameAdmin,
		Description: "Default role for admins",
		Grants: []string{
			"admin:*",
			"agent:*",
			"chat:*",
			"tickets:*",
			"accounts:*",
			"groups:*",
			"teams:*",
			"departments:*",
			"comments:*",
			"reports:*",
			"notices:*",
			"settings:*",
			"api:*",
		},
	},
}

// roleRanking is the built-in role order, most privileged first.
var roleRanking = []string{domain.RoleNameAdmin, domain.RoleNameSupport, domain.RoleNameUser}

func (b *Bootstrapper) seedRoles(ctx context.Context, _ *Result) error {
	for _, def := range DefaultRoles {
		_, err := b.store.Roles.GetByName(ctx, def.Name)
		found, err := probe(err)
		if err != nil {
			return fmt.Errorf("lookup role %s: %w", def.Name, err)
		}
		if found {
			continue
		}

		role := def
		role.Grants = append([]string(nil), def.Grants...)
		if err := b.store.Roles.Create(ctx, &role); err != nil {
			return fmt.Errorf("create role %s: %w", def.Name, err)
		}
		b.logger.Info("created role", zap.String("role", role.Name))
	}
	return b.seedRoleOrder(ctx)
}

// seedRoleOrder creates the singleton role order once. An existing order is
// never rebuilt, even when roles were added since.
func (b *Bootstrapper) seedRoleOrder(ctx context.Context) error {
	_, err := b.store.Roles.GetOrder(ctx)
	found, err := probe(err)
	if err != nil {
		return fmt.Errorf("lookup role order: %w", err)
	}
	if found {
		return nil
	}

	roles, err := b.store.Roles.List(ctx)
	if err != nil {
		return fmt.Errorf("list roles: %w", err)
	}
	ids := make(map[string]string, len(roles))
	for _, r := range roles {
		ids[r.Name] = r.ID
	}

	order := make([]string, 0, len(roleRanking))
	for _, name := range roleRanking {
		id, ok := ids[name]
		if !ok {
			return fmt.Errorf("%w: %s", ErrRoleMissing, name)
		}
		order = append(order, id)
	}

	if err := b.store.Roles.CreateOrder(ctx, &domain.RoleOrder{Order: order}); err != nil {
		return fmt.Errorf("create role order: %w", err)
	}
	b.logger.Info("created role order", zap.Strings("order", order))
	return nil
}

// seedDefaultUserRole points role:user:default at the least privileged role
// of the role order. Without an order it does nothing.
func (b *Bootstrapper) seedDefaultUserRole(ctx context.Context, res *Result) error {
	order, err := b.store.Roles.GetOrder(ctx)
	found, err := probe(err)
	if err != nil {
		return fmt.Errorf("lookup role order: %w", err)
	}
	if !found || order.Last() == "" {
		b.logger.Debug("no role order; default user role not set")
		return nil
	}

	setting, err := b.seedSetting(ctx, domain.SettingDefaultUserRole, order.Last())
	if err != nil {
		return err
	}
	res.DefaultUserRoleID, _ = setting.StringValue()
	return nil
}
