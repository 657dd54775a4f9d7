// Package identity turns bearer tokens into verified identities.
package identity

import (
	"context"
	"errors"
	"fmt"

	"todoapi/internal/config"
	"todoapi/internal/core/port"
)

// New builds the verifier for the configured provider.
func New(ctx context.Context, cfg config.AuthConfig) (port.IdentityVerifier, error) {
	switch cfg.Provider {
	case config.ProviderFirebase:
		if cfg.Firebase == nil {
			return nil, errors.New("firebase service account is not configured")
		}

		verifier, err := NewFirebaseVerifier(ctx, cfg.Firebase.ProjectID)
		if err != nil {
			return nil, err
		}

		return verifier, nil
	case config.ProviderOIDC:
		verifier, err := NewOIDCVerifier(ctx, cfg.OIDC.Issuer, cfg.OIDC.ClientID)
		if err != nil {
			return nil, err
		}

		return verifier, nil
	case config.ProviderJWT:
		return NewJWTVerifier(cfg.JWT.Secret, cfg.JWT.Issuer), nil
	default:
		return nil, fmt.Errorf("unknown identity provider %q", cfg.Provider)
	}
}
