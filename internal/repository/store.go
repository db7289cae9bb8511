package repository

import "github.com/jackc/pgx/v5/pgxpool"

// Store bundles the repositories the startup bootstrap works against.
type Store struct {
	Roles       RoleRepository
	Settings    SettingRepository
	Statuses    StatusRepository
	Priorities  PriorityRepository
	TicketTypes TicketTypeRepository
	Tickets     TicketRepository
	Tags        TagRepository
	Templates   MailTemplateRepository
}

// NewPostgresStore wires every repository to the same pool.
func NewPostgresStore(pool *pgxpool.Pool) *Store {
	return &Store{
		Roles:       NewRoleRepository(pool),
		Settings:    NewSettingRepository(pool),
		Statuses:    NewStatusRepository(pool),
		Priorities:  NewPriorityRepository(pool),
		TicketTypes: NewTicketTypeRepository(pool),
		Tickets:     NewTicketRepository(pool),
		Tags:        NewTagRepository(pool),
		Templates:   NewMailTemplateRepository(pool),
	}
}
