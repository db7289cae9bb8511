package domain

import "time"

// Legacy numeric priority values stored on tickets before priorities became entities.
const (
	LegacyPriorityNormal   = 1
	LegacyPriorityUrgent   = 2
	LegacyPriorityCritical = 3
)

// LegacyPriorities lists every legacy numeric priority value.
var LegacyPriorities = []int{LegacyPriorityNormal, LegacyPriorityUrgent, LegacyPriorityCritical}

// CompareMigrationNum orders priorities by migration number ascending, with
// priorities lacking one (zero) last.
func CompareMigrationNum(a, b Priority) int {
	switch {
	case a.MigrationNum == b.MigrationNum:
		return 0
	case a.MigrationNum == 0:
		return 1
	case b.MigrationNum == 0:
		return -1
	case a.MigrationNum < b.MigrationNum:
		return -1
	default:
		return 1
	}
}

// Priority is a ticket priority. MigrationNum links built-in priorities to
// the legacy numeric values; custom priorities leave it at zero.
type Priority struct {
	ID           string
	Name         string
	HTMLColor    string
	OverdueIn    int // minutes
	Default      bool
	MigrationNum int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
