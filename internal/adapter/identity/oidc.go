package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"

	"todoapi/internal/core/domain"
)

const (
	firebaseIssuerPrefix = "https://securetoken.google.com/"
	firebaseJWKSURL      = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"
)

type idTokenClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Firebase      struct {
		SignInProvider string `json:"sign_in_provider"`
	} `json:"firebase"`
}

// OIDCVerifier verifies ID tokens against an issuer's signing keys.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCVerifier discovers issuer's configuration and verifies tokens
// issued for clientID.
func NewOIDCVerifier(ctx context.Context, issuer, clientID string) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)

	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}

	return &OIDCVerifier{verifier: provider.Verifier(&oidc.Config{ClientID: clientID})}, nil
}

// NewFirebaseVerifier verifies Firebase ID tokens for projectID. Google's
// signing keys are fetched lazily and cached by go-oidc.
func NewFirebaseVerifier(ctx context.Context, projectID string) (*OIDCVerifier, error) {
	if projectID == "" {
		return nil, errors.New("firebase project id is required")
	}

	keySet := oidc.NewRemoteKeySet(ctx, firebaseJWKSURL)

	return NewKeySetVerifier(firebaseIssuerPrefix+projectID, projectID, keySet), nil
}

func NewKeySetVerifier(issuer, audience string, keySet oidc.KeySet) *OIDCVerifier {
	return &OIDCVerifier{verifier: oidc.NewVerifier(issuer, keySet, &oidc.Config{ClientID: audience})}
}

func (v *OIDCVerifier) Verify(ctx context.Context, rawToken string) (domain.Identity, error) {
	token, err := v.verifier.Verify(ctx, rawToken)

	if err != nil {
		return domain.Identity{}, err
	}

	var claims idTokenClaims

	if err := token.Claims(&claims); err != nil {
		return domain.Identity{}, fmt.Errorf("decode claims: %w", err)
	}

	if token.Subject == "" {
		return domain.Identity{}, errors.New("token has no subject")
	}

	return domain.Identity{
		Subject:        token.Subject,
		Issuer:         token.Issuer,
		Email:          claims.Email,
		EmailVerified:  claims.EmailVerified,
		Name:           claims.Name,
		SignInProvider: claims.Firebase.SignInProvider,
	}, nil
}
