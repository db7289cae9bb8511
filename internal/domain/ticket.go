package domain

import "time"

// PriorityRef is the priority field of a ticket. Tickets written before
// priorities were entities carry a bare number in Legacy; migrated tickets
// carry the priority id.
type PriorityRef struct {
	ID     string
	Legacy int
}

// IsLegacy reports whether the reference still holds a legacy number.
func (p PriorityRef) IsLegacy() bool {
	return p.ID == "" && p.Legacy != 0
}

// Ticket holds the subset of ticket fields the bootstrap reads and rewrites.
type Ticket struct {
	ID        string
	UID       int64
	Subject   string
	TypeID    string
	Priority  PriorityRef
	CreatedAt time.Time
	UpdatedAt time.Time
}
