package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/spec-kit/ticket-bootstrap/internal/domain"
)

func TestLegacyPriorityMigrator_MigratesEachValue(t *testing.T) {
	h := newHarness(t, testOptions())
	require.NoError(t, h.b.seedPriorities(context.Background(), &Result{}))

	var created []domain.Ticket
	for _, v := range []int{1, 1, 2, 3, 3, 3} {
		created = append(created, h.mem.AddTicket(domain.Ticket{Priority: domain.PriorityRef{Legacy: v}}))
	}
	migrated := h.mem.AddTicket(domain.Ticket{Priority: domain.PriorityRef{ID: "already"}})

	require.NoError(t, h.b.legacy.Migrate(context.Background()))

	byID := map[string]domain.Ticket{}
	for _, tk := range h.mem.Tickets() {
		byID[tk.ID] = tk
	}
	for _, tk := range created {
		want := priorityByNum(t, h.mem, tk.Priority.Legacy).ID
		assert.Equal(t, domain.PriorityRef{ID: want}, byID[tk.ID].Priority)
	}
	assert.Equal(t, domain.PriorityRef{ID: "already"}, byID[migrated.ID].Priority)
}

func TestLegacyPriorityMigrator_NoLegacyTicketsNoWrites(t *testing.T) {
	h := newHarness(t, testOptions())
	h.mem.AddTicket(domain.Ticket{Priority: domain.PriorityRef{ID: "p1"}})

	require.NoError(t, h.b.legacy.Migrate(context.Background()))

	assert.Zero(t, h.mem.Writes())
}

func TestLegacyPriorityMigrator_NoLegacyTicketsNeedsNoPriorities(t *testing.T) {
	h := newHarness(t, testOptions())

	assert.NoError(t, h.b.legacy.Migrate(context.Background()))
}

func TestLegacyPriorityMigrator_UnresolvedValueDoesNotStopOthers(t *testing.T) {
	h := newHarness(t, testOptions())
	normal := h.mem.AddPriority(domain.Priority{Name: "Normal", MigrationNum: 1, Default: true})
	urgent := h.mem.AddPriority(domain.Priority{Name: "Urgent", MigrationNum: 2, Default: true})
	h.mem.AddTicket(domain.Ticket{Priority: domain.PriorityRef{Legacy: 1}})
	h.mem.AddTicket(domain.Ticket{Priority: domain.PriorityRef{Legacy: 2}})
	orphan := h.mem.AddTicket(domain.Ticket{Priority: domain.PriorityRef{Legacy: 3}})

	err := h.b.legacy.Migrate(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPriorityUnresolved)
	assert.Len(t, multierr.Errors(err), 1)

	got := map[string]int{}
	for _, tk := range h.mem.Tickets() {
		switch {
		case tk.ID == orphan.ID:
			assert.Equal(t, domain.PriorityRef{Legacy: 3}, tk.Priority)
		case tk.Priority.ID == normal.ID:
			got["normal"]++
		case tk.Priority.ID == urgent.ID:
			got["urgent"]++
		}
	}
	assert.Equal(t, map[string]int{"normal": 1, "urgent": 1}, got)
}

func TestLegacyPriorityMigrator_CombinesErrorsInValueOrder(t *testing.T) {
	h := newHarness(t, testOptions())
	h.mem.FailOn("tickets.countlegacy", errors.New("connection reset"))

	err := h.b.legacy.Migrate(context.Background())

	errs := multierr.Errors(err)
	require.Len(t, errs, 3)
	for i, v := range domain.LegacyPriorities {
		assert.Contains(t, errs[i].Error(), fmt.Sprintf("legacy priority %d", v))
	}
}

type panickyTickets struct{}

func (panickyTickets) CountLegacyPriority(_ context.Context, value int) (int64, error) {
	if value == domain.LegacyPriorityUrgent {
		panic("cursor closed")
	}
	return 0, fmt.Errorf("count %d failed", value)
}

func (panickyTickets) ReplaceLegacyPriority(context.Context, int, string) (int64, error) {
	return 0, nil
}

func TestLegacyPriorityMigrator_KeepsValueErrorsWhenTaskPanics(t *testing.T) {
	h := newHarness(t, testOptions())
	m := NewLegacyPriorityMigrator(panickyTickets{}, h.mem.Repositories().Priorities, h.b.pool, nil)

	err := m.Migrate(context.Background())

	errs := multierr.Errors(err)
	require.Len(t, errs, 3)
	assert.Contains(t, errs[0].Error(), "count 1 failed")
	assert.Contains(t, errs[1].Error(), "count 3 failed")
	assert.Contains(t, errs[2].Error(), "cursor closed")
}
