package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vatracker/pkg/domain/model/auth"
)

const (
	// IAPHeader carries the signed assertion added by Identity-Aware Proxy
	IAPHeader = "x-goog-iap-jwt-assertion"

	// DefaultIAPJWKSURL is Google's public key set for IAP assertions
	DefaultIAPJWKSURL = "https://www.gstatic.com/iap/verify/public_key-jwk"

	iapIssuer   = "https://cloud.google.com/iap"
	keySetTTL   = time.Hour
	keySetRetry = 10 * time.Second
)

// AuthUseCaseInterface resolves the caller of a request
type AuthUseCaseInterface interface {
	// Authenticate verifies the identity assertion of a request
	Authenticate(ctx context.Context, assertion string) (*auth.Identity, error)
	IsNoAuthn() bool
}

// AuthUseCase verifies the assertion added by Google Cloud IAP
type AuthUseCase struct {
	audience string
	jwksURL  string
	cache    *authCache

	mu        sync.Mutex
	keySet    jwk.Set
	fetchedAt time.Time
}

// AuthOption is a functional option for AuthUseCase
type AuthOption func(*AuthUseCase)

// WithJWKSURL overrides the key set location
func WithJWKSURL(u string) AuthOption {
	return func(uc *AuthUseCase) {
		uc.jwksURL = u
	}
}

// NewAuthUseCase creates a verifier for the IAP audience, e.g.
// "/projects/<number>/global/backendServices/<id>"
func NewAuthUseCase(audience string, options ...AuthOption) *AuthUseCase {
	uc := &AuthUseCase{
		audience: audience,
		jwksURL:  DefaultIAPJWKSURL,
		cache:    newAuthCache(),
	}

	for _, opt := range options {
		opt(uc)
	}

	return uc
}

// Authenticate verifies the JWT and returns the identity in its claims
func (uc *AuthUseCase) Authenticate(ctx context.Context, assertion string) (*auth.Identity, error) {
	if assertion == "" {
		return nil, goerr.Wrap(auth.ErrNoIdentity, "missing IAP assertion", goerr.T(TagForbidden))
	}
	if id, ok := uc.cache.get(assertion); ok {
		return id, nil
	}

	keySet, err := uc.getKeySet(ctx)
	if err != nil {
		return nil, err
	}

	// Allow 10 seconds of clock skew to handle time synchronization differences
	token, err := jwt.Parse([]byte(assertion),
		jwt.WithKeySet(keySet),
		jwt.WithValidate(true),
		jwt.WithAudience(uc.audience),
		jwt.WithIssuer(iapIssuer),
		jwt.WithAcceptableSkew(10*time.Second),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse or verify IAP assertion", goerr.T(TagForbidden))
	}

	if token.Subject() == "" {
		return nil, goerr.New("sub claim not found in token", goerr.T(TagForbidden))
	}

	id := &auth.Identity{Subject: token.Subject()}
	if email, ok := token.Get("email"); ok {
		emailStr, ok := email.(string)
		if !ok {
			return nil, goerr.New("email claim is not a string", goerr.T(TagForbidden))
		}
		id.Email = emailStr
	}
	if name, ok := token.Get("name"); ok {
		if nameStr, ok := name.(string); ok {
			id.Name = nameStr
		}
	}

	uc.cache.set(assertion, id, token.Expiration())
	return id, nil
}

// IsNoAuthn returns false for AuthUseCase
func (uc *AuthUseCase) IsNoAuthn() bool {
	return false
}

func (uc *AuthUseCase) getKeySet(ctx context.Context) (jwk.Set, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if uc.keySet != nil && time.Since(uc.fetchedAt) < keySetTTL {
		return uc.keySet, nil
	}

	keySet, err := jwk.Fetch(ctx, uc.jwksURL)
	if err != nil {
		// Serve the stale set and retry after keySetRetry
		if uc.keySet != nil {
			uc.fetchedAt = time.Now().Add(keySetRetry - keySetTTL)
			return uc.keySet, nil
		}
		return nil, goerr.Wrap(err, "failed to fetch IAP public keys", goerr.V("jwks_uri", uc.jwksURL))
	}

	uc.keySet = keySet
	uc.fetchedAt = time.Now()
	return keySet, nil
}
