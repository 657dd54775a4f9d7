package identity

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"todoapi/internal/core/domain"
)

type sharedSecretClaims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// JWTVerifier accepts HS256 tokens signed with a shared secret. It is meant
// for local development and tests, where no identity provider is reachable.
type JWTVerifier struct {
	secret []byte
	parser *jwt.Parser
}

func NewJWTVerifier(secret, issuer string) *JWTVerifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}

	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	return &JWTVerifier{
		secret: []byte(secret),
		parser: jwt.NewParser(opts...),
	}
}

func (v *JWTVerifier) Verify(ctx context.Context, rawToken string) (domain.Identity, error) {
	var claims sharedSecretClaims

	_, err := v.parser.ParseWithClaims(rawToken, &claims, func(token *jwt.Token) (any, error) {
		return v.secret, nil
	})

	if err != nil {
		return domain.Identity{}, err
	}

	if claims.Subject == "" {
		return domain.Identity{}, errors.New("token has no subject")
	}

	return domain.Identity{
		Subject:        claims.Subject,
		Issuer:         claims.Issuer,
		Email:          claims.Email,
		Name:           claims.Name,
		SignInProvider: "password",
	}, nil
}
