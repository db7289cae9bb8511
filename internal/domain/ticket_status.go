package domain

import "time"

// TicketStatus is a configurable ticket state. Built-in statuses are locked
// and identified by the (Name, UID) pair.
type TicketStatus struct {
	ID         string
	Name       string
	HTMLColor  string
	UID        int
	Order      int
	SLATimer   bool
	IsResolved bool
	IsLocked   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// StatusKey is the idempotency key of a locked status.
type StatusKey struct {
	Name string
	UID  int
}

// Key returns the status idempotency key.
func (s TicketStatus) Key() StatusKey {
	return StatusKey{Name: s.Name, UID: s.UID}
}
