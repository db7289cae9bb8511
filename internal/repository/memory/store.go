// Package memory is an in-process implementation of the repository
// interfaces. It backs the "memory" store driver and the package tests.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/ticket-bootstrap/internal/domain"
	"github.com/spec-kit/ticket-bootstrap/internal/repository"
)

// Store holds every collection behind a single mutex.
type Store struct {
	mu sync.RWMutex

	roles       []domain.Role
	roleOrders  []domain.RoleOrder
	settings    []domain.Setting
	statuses    []domain.TicketStatus
	priorities  []domain.Priority
	ticketTypes []domain.TicketType
	tickets     []domain.Ticket
	tags        []domain.Tag
	templates   []domain.MailTemplate

	nextTicketUID int64
	writes        atomic.Int64
	faults        map[string]error
	now           func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		faults: make(map[string]error),
		now:    time.Now,
	}
}

// Repositories exposes the store through the repository interfaces.
func (s *Store) Repositories() *repository.Store {
	return &repository.Store{
		Roles:       roleRepo{s},
		Settings:    settingRepo{s},
		Statuses:    statusRepo{s},
		Priorities:  priorityRepo{s},
		TicketTypes: ticketTypeRepo{s},
		Tickets:     ticketRepo{s},
		Tags:        tagRepo{s},
		Templates:   templateRepo{s},
	}
}

// Writes returns the number of successful mutating calls.
func (s *Store) Writes() int64 {
	return s.writes.Load()
}

// FailOn makes the named operation (for example "settings.create") return err.
// Passing a nil error clears the fault.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.faults, op)
		return
	}
	s.faults[op] = err
}

func (s *Store) fault(op string) error {
	return s.faults[op]
}

func (s *Store) stamp() (string, time.Time) {
	return uuid.NewString(), s.now()
}

// Snapshot accessors used by tests.

// Roles returns a copy of every role.
func (s *Store) Roles() []domain.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Role, len(s.roles))
	for i, r := range s.roles {
		r.Grants = slices.Clone(r.Grants)
		out[i] = r
	}
	return out
}

// RoleOrders returns a copy of every role order document.
func (s *Store) RoleOrders() []domain.RoleOrder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.RoleOrder, len(s.roleOrders))
	for i, o := range s.roleOrders {
		o.Order = slices.Clone(o.Order)
		out[i] = o
	}
	return out
}

// Settings returns a copy of every setting.
func (s *Store) Settings() []domain.Setting {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.settings)
}

// Statuses returns a copy of every ticket status.
func (s *Store) Statuses() []domain.TicketStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.statuses)
}

// Priorities returns a copy of every priority.
func (s *Store) Priorities() []domain.Priority {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.priorities)
}

// TicketTypes returns a copy of every ticket type.
func (s *Store) TicketTypes() []domain.TicketType {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.TicketType, len(s.ticketTypes))
	for i, t := range s.ticketTypes {
		t.Priorities = slices.Clone(t.Priorities)
		out[i] = t
	}
	return out
}

// Tickets returns a copy of every ticket.
func (s *Store) Tickets() []domain.Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tickets)
}

// Tags returns a copy of every tag.
func (s *Store) Tags() []domain.Tag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tags)
}

// Templates returns a copy of every mail template.
func (s *Store) Templates() []domain.MailTemplate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.templates)
}

// Fixture helpers. They do not count as writes.

// AddTicketType inserts a ticket type and returns it with its id assigned.
func (s *Store) AddTicketType(t domain.TicketType) domain.TicketType {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID, t.CreatedAt = s.stamp()
	t.UpdatedAt = t.CreatedAt
	t.Priorities = slices.Clone(t.Priorities)
	s.ticketTypes = append(s.ticketTypes, t)
	return t
}

// AddTicket inserts a ticket and returns it with its id assigned.
func (s *Store) AddTicket(t domain.Ticket) domain.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextTicketUID++
	t.ID, t.CreatedAt = s.stamp()
	t.UID = s.nextTicketUID
	t.UpdatedAt = t.CreatedAt
	s.tickets = append(s.tickets, t)
	return t
}

// AddTag inserts a tag as-is, without normalizing it.
func (s *Store) AddTag(t domain.Tag) domain.Tag {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID, t.CreatedAt = s.stamp()
	t.UpdatedAt = t.CreatedAt
	s.tags = append(s.tags, t)
	return t
}

// AddPriority inserts a priority fixture.
func (s *Store) AddPriority(p domain.Priority) domain.Priority {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID, p.CreatedAt = s.stamp()
	p.UpdatedAt = p.CreatedAt
	s.priorities = append(s.priorities, p)
	return p
}

// AddSetting inserts a setting fixture.
func (s *Store) AddSetting(st domain.Setting) domain.Setting {
	s.mu.Lock()
	defer s.mu.Unlock()
	st.ID, st.CreatedAt = s.stamp()
	st.UpdatedAt = st.CreatedAt
	s.settings = append(s.settings, st)
	return st
}

type roleRepo struct{ s *Store }

func (r roleRepo) GetByName(_ context.Context, name string) (*domain.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.fault("roles.get"); err != nil {
		return nil, err
	}
	for _, role := range r.s.roles {
		if role.Name == name {
			role.Grants = slices.Clone(role.Grants)
			return &role, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r roleRepo) List(_ context.Context) ([]domain.Role, error) {
	if err := r.s.faultLocked("roles.list"); err != nil {
		return nil, err
	}
	return r.s.Roles(), nil
}

func (r roleRepo) Create(_ context.Context, role *domain.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("roles.create"); err != nil {
		return err
	}
	for _, existing := range r.s.roles {
		if existing.Name == role.Name {
			return errDuplicate("roles", role.Name)
		}
	}
	role.ID, role.CreatedAt = r.s.stamp()
	role.UpdatedAt = role.CreatedAt
	stored := *role
	stored.Grants = slices.Clone(role.Grants)
	r.s.roles = append(r.s.roles, stored)
	r.s.writes.Add(1)
	return nil
}

func (r roleRepo) GetOrder(_ context.Context) (*domain.RoleOrder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.fault("roleorder.get"); err != nil {
		return nil, err
	}
	if len(r.s.roleOrders) == 0 {
		return nil, repository.ErrNotFound
	}
	order := r.s.roleOrders[0]
	order.Order = slices.Clone(order.Order)
	return &order, nil
}

func (r roleRepo) CreateOrder(_ context.Context, order *domain.RoleOrder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("roleorder.create"); err != nil {
		return err
	}
	if len(r.s.roleOrders) > 0 {
		return errDuplicate("role_orders", "singleton")
	}
	order.ID, order.CreatedAt = r.s.stamp()
	order.UpdatedAt = order.CreatedAt
	stored := *order
	stored.Order = slices.Clone(order.Order)
	r.s.roleOrders = append(r.s.roleOrders, stored)
	r.s.writes.Add(1)
	return nil
}

type settingRepo struct{ s *Store }

func (r settingRepo) GetByName(_ context.Context, name string) (*domain.Setting, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.fault("settings.get"); err != nil {
		return nil, err
	}
	for _, st := range r.s.settings {
		if st.Name == name {
			return &st, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r settingRepo) Create(_ context.Context, setting *domain.Setting) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("settings.create"); err != nil {
		return err
	}
	for _, existing := range r.s.settings {
		if existing.Name == setting.Name {
			return errDuplicate("settings", setting.Name)
		}
	}
	setting.ID, setting.CreatedAt = r.s.stamp()
	setting.UpdatedAt = setting.CreatedAt
	r.s.settings = append(r.s.settings, *setting)
	r.s.writes.Add(1)
	return nil
}

func (r settingRepo) List(_ context.Context) ([]domain.Setting, error) {
	if err := r.s.faultLocked("settings.list"); err != nil {
		return nil, err
	}
	out := r.s.Settings()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type statusRepo struct{ s *Store }

func (r statusRepo) CountLocked(_ context.Context, key domain.StatusKey) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.fault("statuses.count"); err != nil {
		return 0, err
	}
	var n int64
	for _, st := range r.s.statuses {
		if st.IsLocked && st.Key() == key {
			n++
		}
	}
	return n, nil
}

func (r statusRepo) Create(_ context.Context, status *domain.TicketStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("statuses.create"); err != nil {
		return err
	}
	status.ID, status.CreatedAt = r.s.stamp()
	status.UpdatedAt = status.CreatedAt
	r.s.statuses = append(r.s.statuses, *status)
	r.s.writes.Add(1)
	return nil
}

type priorityRepo struct{ s *Store }

func (r priorityRepo) GetByMigrationNum(_ context.Context, num int) (*domain.Priority, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.fault("priorities.get"); err != nil {
		return nil, err
	}
	for _, p := range r.s.priorities {
		if p.MigrationNum == num {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r priorityRepo) Create(_ context.Context, priority *domain.Priority) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("priorities.create"); err != nil {
		return err
	}
	priority.ID, priority.CreatedAt = r.s.stamp()
	priority.UpdatedAt = priority.CreatedAt
	r.s.priorities = append(r.s.priorities, *priority)
	r.s.writes.Add(1)
	return nil
}

func (r priorityRepo) ListDefaults(_ context.Context) ([]domain.Priority, error) {
	if err := r.s.faultLocked("priorities.list"); err != nil {
		return nil, err
	}
	var out []domain.Priority
	for _, p := range r.s.Priorities() {
		if p.Default {
			out = append(out, p)
		}
	}
	slices.SortStableFunc(out, domain.CompareMigrationNum)
	return out, nil
}

type ticketTypeRepo struct{ s *Store }

func (r ticketTypeRepo) List(_ context.Context) ([]domain.TicketType, error) {
	if err := r.s.faultLocked("tickettypes.list"); err != nil {
		return nil, err
	}
	out := r.s.TicketTypes()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r ticketTypeRepo) SetPriorities(_ context.Context, typeID string, priorityIDs []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("tickettypes.setpriorities"); err != nil {
		return err
	}
	for i := range r.s.ticketTypes {
		if r.s.ticketTypes[i].ID == typeID {
			r.s.ticketTypes[i].Priorities = slices.Clone(priorityIDs)
			r.s.ticketTypes[i].UpdatedAt = r.s.now()
			r.s.writes.Add(1)
			return nil
		}
	}
	return repository.ErrNotFound
}

type ticketRepo struct{ s *Store }

func (r ticketRepo) CountLegacyPriority(_ context.Context, value int) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.fault("tickets.countlegacy"); err != nil {
		return 0, err
	}
	var n int64
	for _, t := range r.s.tickets {
		if t.Priority.IsLegacy() && t.Priority.Legacy == value {
			n++
		}
	}
	return n, nil
}

func (r ticketRepo) ReplaceLegacyPriority(_ context.Context, value int, priorityID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("tickets.replacelegacy"); err != nil {
		return 0, err
	}
	var n int64
	for i := range r.s.tickets {
		p := r.s.tickets[i].Priority
		if p.IsLegacy() && p.Legacy == value {
			r.s.tickets[i].Priority = domain.PriorityRef{ID: priorityID}
			r.s.tickets[i].UpdatedAt = r.s.now()
			n++
		}
	}
	if n > 0 {
		r.s.writes.Add(1)
	}
	return n, nil
}

type tagRepo struct{ s *Store }

func (r tagRepo) List(_ context.Context) ([]domain.Tag, error) {
	if err := r.s.faultLocked("tags.list"); err != nil {
		return nil, err
	}
	out := r.s.Tags()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r tagRepo) Save(_ context.Context, tag *domain.Tag) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("tags.save"); err != nil {
		return err
	}
	if tag.ID == "" {
		tag.ID, tag.CreatedAt = r.s.stamp()
		tag.UpdatedAt = tag.CreatedAt
		r.s.tags = append(r.s.tags, *tag)
		r.s.writes.Add(1)
		return nil
	}
	for i := range r.s.tags {
		if r.s.tags[i].ID == tag.ID {
			tag.UpdatedAt = r.s.now()
			r.s.tags[i] = *tag
			r.s.writes.Add(1)
			return nil
		}
	}
	return repository.ErrNotFound
}

type templateRepo struct{ s *Store }

func (r templateRepo) GetByName(_ context.Context, name string) (*domain.MailTemplate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if err := r.s.fault("templates.get"); err != nil {
		return nil, err
	}
	for _, t := range r.s.templates {
		if t.Name == name {
			return &t, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r templateRepo) Create(_ context.Context, tpl *domain.MailTemplate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault("templates.create"); err != nil {
		return err
	}
	for _, existing := range r.s.templates {
		if existing.Name == tpl.Name {
			return errDuplicate("mail_templates", tpl.Name)
		}
	}
	tpl.ID, tpl.CreatedAt = r.s.stamp()
	tpl.UpdatedAt = tpl.CreatedAt
	r.s.templates = append(r.s.templates, *tpl)
	r.s.writes.Add(1)
	return nil
}

func (s *Store) faultLocked(op string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fault(op)
}
