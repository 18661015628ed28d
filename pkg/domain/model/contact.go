package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/secmon-lab/vatracker/pkg/domain/types"
)

type ContactID string

func NewContactID() ContactID {
	return ContactID(uuid.New().String())
}

func (id ContactID) String() string {
	return string(id)
}

// Contact is a LinkedIn contact flagged by a VA for the boss to follow up
type Contact struct {
	ID          ContactID
	UserID      string
	Name        string
	LinkedInURL string
	Notes       string
	Priority    types.Priority
	ImageURLs   []string
	DateAdded   types.ActivityDate
	CreatedAt   time.Time

	// OwnerName is filled on boss listings; it is not persisted
	OwnerName string
}

// PriorityGroup is the contacts sharing one priority
type PriorityGroup struct {
	Priority types.Priority
	Contacts []*Contact
}

// GroupByPriority buckets contacts into urgent, high, medium (always all three,
// in that order). Input order is kept within a bucket; unknown priorities land
// in urgent.
func GroupByPriority(contacts []*Contact) []PriorityGroup {
	priorities := types.AllPriorities()
	groups := make([]PriorityGroup, len(priorities))
	index := make(map[types.Priority]int, len(priorities))
	for i, p := range priorities {
		groups[i] = PriorityGroup{Priority: p, Contacts: []*Contact{}}
		index[p] = i
	}

	for _, c := range contacts {
		i := index[c.Priority.Normalize()]
		groups[i].Contacts = append(groups[i].Contacts, c)
	}
	return groups
}
