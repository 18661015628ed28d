package types

import "fmt"

// Role is the account role of a profile
type Role string

const (
	RoleBoss Role = "boss"
	RoleVA   Role = "va"
)

func (r Role) IsValid() bool {
	return r == RoleBoss || r == RoleVA
}

func (r Role) String() string {
	return string(r)
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", fmt.Errorf("invalid role: %s", s)
	}
	return r, nil
}
