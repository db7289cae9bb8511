package domain

import "time"

// TicketType classifies tickets and restricts which priorities they may use.
type TicketType struct {
	ID         string
	Name       string
	Priorities []string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
