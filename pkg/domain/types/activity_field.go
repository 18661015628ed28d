package types

import "fmt"

// ActivityField names one of the three daily outreach counters
type ActivityField string

const (
	ActivityFieldDMsSent             ActivityField = "dms_sent"
	ActivityFieldConnectionsSent     ActivityField = "connections_sent"
	ActivityFieldConnectionsAccepted ActivityField = "connections_accepted"
)

// AllActivityFields returns all counter fields in display order
func AllActivityFields() []ActivityField {
	return []ActivityField{
		ActivityFieldDMsSent,
		ActivityFieldConnectionsSent,
		ActivityFieldConnectionsAccepted,
	}
}

// IsValid checks if the field is one of the known counters
func (f ActivityField) IsValid() bool {
	switch f {
	case ActivityFieldDMsSent,
		ActivityFieldConnectionsSent,
		ActivityFieldConnectionsAccepted:
		return true
	default:
		return false
	}
}

func (f ActivityField) String() string {
	return string(f)
}

// ParseActivityField parses a string into an ActivityField
func ParseActivityField(s string) (ActivityField, error) {
	f := ActivityField(s)
	if !f.IsValid() {
		return "", fmt.Errorf("invalid activity field: %s", s)
	}
	return f, nil
}
