package port

import (
	"context"

	"todoapi/internal/core/domain"
)

// IdentityVerifier checks a raw bearer token with the identity provider.
type IdentityVerifier interface {
	Verify(ctx context.Context, rawToken string) (domain.Identity, error)
}

type AuthService interface {
	Authenticate(ctx context.Context, credential string) (domain.Identity, error)
}
