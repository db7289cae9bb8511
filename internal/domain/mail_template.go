package domain

import "time"

// MailTemplate is an editable notification template keyed by Name.
type MailTemplate struct {
	ID          string    `yaml:"-"`
	Name        string    `yaml:"name"`
	DisplayName string    `yaml:"displayName"`
	Description string    `yaml:"description"`
	Subject     string    `yaml:"subject"`
	Body        string    `yaml:"body"`
	CreatedAt   time.Time `yaml:"-"`
	UpdatedAt   time.Time `yaml:"-"`
}
