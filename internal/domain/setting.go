package domain

import "time"

// Setting names written by the bootstrap.
const (
	SettingDefaultUserRole   = "role:user:default"
	SettingTimezone          = "gen:timezone"
	SettingDefaultTicketType = "ticket:type:default"
	SettingSearchEnable      = "es:enable"
	SettingSearchHost        = "es:host"
	SettingSearchPort        = "es:port"
	SettingMaintenanceMode   = "maintenanceMode:enable"
	SettingInstallationID    = "gen:installid"
)

// Setting is a named, process-wide configuration value. Value holds any
// JSON-compatible value (string, bool, number).
type Setting struct {
	ID        string
	Name      string
	Value     any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StringValue returns the value when it is a string.
func (s *Setting) StringValue() (string, bool) {
	if s == nil {
		return "", false
	}
	v, ok := s.Value.(string)
	return v, ok
}
