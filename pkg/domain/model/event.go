package model

// EventType names a domain event fanned out to notification hooks
type EventType string

const (
	EventInvitationCreated EventType = "invitation_created"
	EventVAJoined          EventType = "va_joined"
	EventContactFlagged    EventType = "contact_flagged"
)

// Event is published after the primary write it describes has committed.
// Exactly one payload field is set, matching Type.
type Event struct {
	Type              EventType
	InvitationCreated *InvitationCreatedEvent
	VAJoined          *VAJoinedEvent
	ContactFlagged    *ContactFlaggedEvent
}

type InvitationCreatedEvent struct {
	Invitation *Invitation
	AcceptURL  string
	BossName   string
}

type VAJoinedEvent struct {
	Boss    *Profile
	VAName  string
	VAEmail string
}

// ContactFlaggedEvent is published for every new contact. The owning boss is
// resolved by each hook through the VA's active relationship.
type ContactFlaggedEvent struct {
	Contact *Contact
	VAName  string
}
