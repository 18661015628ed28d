package usecase

import (
	"context"

	"github.com/secmon-lab/vatracker/pkg/domain/model/auth"
)

// NoAuthnUseCase authenticates every request as a fixed user (for development/testing)
type NoAuthnUseCase struct {
	sub   string
	email string
	name  string
}

// NewNoAuthnUseCase creates a new NoAuthnUseCase instance with specified user info
func NewNoAuthnUseCase(sub, email, name string) *NoAuthnUseCase {
	return &NoAuthnUseCase{
		sub:   sub,
		email: email,
		name:  name,
	}
}

// Authenticate ignores the assertion and returns the configured user
func (uc *NoAuthnUseCase) Authenticate(ctx context.Context, assertion string) (*auth.Identity, error) {
	return &auth.Identity{
		Subject: uc.sub,
		Email:   uc.email,
		Name:    uc.name,
	}, nil
}

// IsNoAuthn returns true for NoAuthnUseCase
func (uc *NoAuthnUseCase) IsNoAuthn() bool {
	return true
}
