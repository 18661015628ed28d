package types

import "fmt"

// Priority is the urgency level of a flagged contact
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
)

// AllPriorities returns priorities in display order, most urgent first
func AllPriorities() []Priority {
	return []Priority{PriorityUrgent, PriorityHigh, PriorityMedium}
}

func (p Priority) IsValid() bool {
	switch p {
	case PriorityUrgent, PriorityHigh, PriorityMedium:
		return true
	default:
		return false
	}
}

// Normalize maps missing or unknown values to PriorityUrgent.
// Every read path goes through it.
func (p Priority) Normalize() Priority {
	if p.IsValid() {
		return p
	}
	return PriorityUrgent
}

func (p Priority) String() string {
	return string(p)
}

// ParsePriority parses s for a write. Empty input means the default (urgent);
// any other unknown value is rejected.
func ParsePriority(s string) (Priority, error) {
	if s == "" {
		return PriorityUrgent, nil
	}
	p := Priority(s)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid priority: %s", s)
	}
	return p, nil
}

// Emoji is the marker shown next to the priority in notifications
func (p Priority) Emoji() string {
	switch p.Normalize() {
	case PriorityHigh:
		return "⚡"
	case PriorityMedium:
		return "⭐"
	default:
		return "🔥"
	}
}

// Label is the upper-case heading used in notifications
func (p Priority) Label() string {
	switch p.Normalize() {
	case PriorityHigh:
		return "HIGH PRIORITY"
	case PriorityMedium:
		return "MEDIUM PRIORITY"
	default:
		return "URGENT"
	}
}

// FollowUp describes how soon the boss should reach out
func (p Priority) FollowUp() string {
	switch p.Normalize() {
	case PriorityHigh:
		return "Important - Contact Within 24 Hours"
	case PriorityMedium:
		return "Valuable - Contact This Week"
	default:
		return "Critical - Needs Immediate Attention"
	}
}

// Color is the accent colour (hex) for HTML notifications
func (p Priority) Color() string {
	switch p.Normalize() {
	case PriorityHigh:
		return "#EA580C"
	case PriorityMedium:
		return "#2563EB"
	default:
		return "#DC2626"
	}
}
