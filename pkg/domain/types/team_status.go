package types

// TeamStatus is the state of a boss/VA relationship
type TeamStatus string

const (
	TeamStatusActive   TeamStatus = "active"
	TeamStatusInactive TeamStatus = "inactive"
)

func (s TeamStatus) IsValid() bool {
	return s == TeamStatusActive || s == TeamStatusInactive
}

func (s TeamStatus) String() string {
	return string(s)
}
