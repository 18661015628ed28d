package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vatracker/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// Auth holds CLI flags for the identity proxy in front of the server
type Auth struct {
	audience    string
	jwksURL     string
	noAuthUID   string
	noAuthEmail string
	noAuthName  string
}

func (x *Auth) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "iap-audience",
			Usage:       "Expected audience of the IAP JWT (/projects/<number>/global/backendServices/<id>)",
			Category:    "Authentication",
			Sources:     cli.EnvVars("VATRACKER_IAP_AUDIENCE"),
			Destination: &x.audience,
		},
		&cli.StringFlag{
			Name:        "iap-jwks-url",
			Usage:       "JWK set used to verify IAP assertions",
			Category:    "Authentication",
			Value:       usecase.DefaultIAPJWKSURL,
			Sources:     cli.EnvVars("VATRACKER_IAP_JWKS_URL"),
			Destination: &x.jwksURL,
		},
		&cli.StringFlag{
			Name:        "no-auth",
			Usage:       "Skip authentication and run as the specified user ID (development only). Example: --no-auth=boss-1",
			Category:    "Authentication",
			Sources:     cli.EnvVars("VATRACKER_NO_AUTH"),
			Destination: &x.noAuthUID,
		},
		&cli.StringFlag{
			Name:        "no-auth-email",
			Usage:       "Email of the --no-auth user",
			Category:    "Authentication",
			Value:       "dev@localhost",
			Sources:     cli.EnvVars("VATRACKER_NO_AUTH_EMAIL"),
			Destination: &x.noAuthEmail,
		},
		&cli.StringFlag{
			Name:        "no-auth-name",
			Usage:       "Display name of the --no-auth user",
			Category:    "Authentication",
			Sources:     cli.EnvVars("VATRACKER_NO_AUTH_NAME"),
			Destination: &x.noAuthName,
		},
	}
}

func (x Auth) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("audience", x.audience),
		slog.String("jwks_url", x.jwksURL),
		slog.String("no_auth_uid", x.noAuthUID),
	)
}

// IsNoAuthMode returns true if no-auth mode is enabled
func (x *Auth) IsNoAuthMode() bool {
	return x.noAuthUID != ""
}

// Configure returns the IAP verifier, or a fixed identity with --no-auth
func (x *Auth) Configure() (usecase.AuthUseCaseInterface, error) {
	if x.noAuthUID != "" {
		if x.audience != "" {
			slog.Warn("--no-auth is set, ignoring --iap-audience")
		}
		name := x.noAuthName
		if name == "" {
			name = x.noAuthUID
		}
		return usecase.NewNoAuthnUseCase(x.noAuthUID, x.noAuthEmail, name), nil
	}

	if x.audience == "" {
		return nil, goerr.Wrap(ErrMissingFlag, "IAP configuration is required: set --iap-audience, or use --no-auth", goerr.V(FlagKey, "iap-audience"))
	}

	var opts []usecase.AuthOption
	if x.jwksURL != "" {
		opts = append(opts, usecase.WithJWKSURL(x.jwksURL))
	}
	return usecase.NewAuthUseCase(x.audience, opts...), nil
}
