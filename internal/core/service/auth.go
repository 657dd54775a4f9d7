package service

import (
	"context"
	"strings"

	"todoapi/internal/core/domain"
	"todoapi/internal/core/port"
	"todoapi/internal/core/telemetry"
)

type AuthService struct {
	verifier  port.IdentityVerifier
	telemetry port.Telemetry
}

func NewAuthService(verifier port.IdentityVerifier, probe port.Telemetry) *AuthService {
	if probe == nil {
		probe = telemetry.NewNoOpProbe()
	}

	return &AuthService{
		verifier:  verifier,
		telemetry: probe,
	}
}

// Authenticate turns a raw bearer credential into a verified identity. A
// missing credential is rejected without contacting the identity provider.
func (as *AuthService) Authenticate(ctx context.Context, credential string) (domain.Identity, error) {
	credential = strings.TrimSpace(credential)

	if credential == "" {
		as.telemetry.RecordAuthFailure(ctx, "missing_token")
		return domain.Identity{}, domain.ErrUnauthenticated
	}

	identity, err := as.verifier.Verify(ctx, credential)

	if err != nil {
		as.telemetry.RecordAuthFailure(ctx, "invalid_token")
		return domain.Identity{}, domain.WrapError(domain.ErrCodeUnauthenticated, "unauthenticated", err)
	}

	if identity.IsZero() {
		as.telemetry.RecordAuthFailure(ctx, "missing_subject")
		return domain.Identity{}, domain.ErrUnauthenticated
	}

	return identity, nil
}
