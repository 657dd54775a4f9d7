package identity_test

import (
	"context"
	"crypto"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"

	"todoapi/internal/adapter/identity"
	"todoapi/internal/config"
	. "todoapi/pkg/test"
)

const (
	projectID = "todo-test-project"
	issuer    = "https://securetoken.google.com/" + projectID
)

type OIDCVerifierTestSuite struct {
	suite.Suite
	Key      *rsa.PrivateKey
	Verifier *identity.OIDCVerifier
}

func (s *OIDCVerifierTestSuite) SetupSuite() {
	s.Key = NewRSAKey()
	keySet := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&s.Key.PublicKey}}
	s.Verifier = identity.NewKeySetVerifier(issuer, projectID, keySet)
}

func TestOIDCVerifierTestSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(OIDCVerifierTestSuite))
}

func (s *OIDCVerifierTestSuite) sign(key *rsa.PrivateKey, overrides jwt.MapClaims) string {
	now := time.Now()

	claims := jwt.MapClaims{
		"iss":            issuer,
		"aud":            projectID,
		"sub":            "firebase-uid-1",
		"iat":            now.Unix(),
		"exp":            now.Add(time.Hour).Unix(),
		"email":          "u1@example.com",
		"email_verified": true,
		"name":           "User One",
		"firebase":       map[string]any{"sign_in_provider": "google.com"},
	}

	for k, v := range overrides {
		claims[k] = v
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	s.Require().NoError(err)

	return token
}

func (s *OIDCVerifierTestSuite) TestVerify_ValidToken() {
	id, err := s.Verifier.Verify(context.Background(), s.sign(s.Key, nil))

	Expect(err).To(BeNil())
	Expect(id.Subject).To(Equal("firebase-uid-1"))
	Expect(id.Issuer).To(Equal(issuer))
	Expect(id.Email).To(Equal("u1@example.com"))
	Expect(id.EmailVerified).To(BeTrue())
	Expect(id.Name).To(Equal("User One"))
	Expect(id.SignInProvider).To(Equal("google.com"))
}

func (s *OIDCVerifierTestSuite) TestVerify_Expired() {
	token := s.sign(s.Key, jwt.MapClaims{
		"iat": time.Now().Add(-2 * time.Hour).Unix(),
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	_, err := s.Verifier.Verify(context.Background(), token)

	Expect(err).To(HaveOccurred())
}

func (s *OIDCVerifierTestSuite) TestVerify_WrongAudience() {
	_, err := s.Verifier.Verify(context.Background(), s.sign(s.Key, jwt.MapClaims{"aud": "another-project"}))

	Expect(err).To(HaveOccurred())
}

func (s *OIDCVerifierTestSuite) TestVerify_WrongIssuer() {
	_, err := s.Verifier.Verify(context.Background(), s.sign(s.Key, jwt.MapClaims{"iss": "https://evil.example.com"}))

	Expect(err).To(HaveOccurred())
}

func (s *OIDCVerifierTestSuite) TestVerify_SignedWithUnknownKey() {
	_, err := s.Verifier.Verify(context.Background(), s.sign(NewRSAKey(), nil))

	Expect(err).To(HaveOccurred())
}

func (s *OIDCVerifierTestSuite) TestVerify_Malformed() {
	_, err := s.Verifier.Verify(context.Background(), "not-a-jwt")

	Expect(err).To(HaveOccurred())
}

func TestJWTVerifier(t *testing.T) {
	RegisterTestingT(t)

	verifier := identity.NewJWTVerifier(TestJWTSecret, "")
	ctx := context.Background()

	id, err := verifier.Verify(ctx, MintHS256Token(TestJWTSecret, "uid-1", time.Hour))
	Expect(err).To(BeNil())
	Expect(id.Subject).To(Equal("uid-1"))
	Expect(id.Email).To(Equal("uid-1@example.com"))

	_, err = verifier.Verify(ctx, MintHS256Token("some-other-secret", "uid-1", time.Hour))
	Expect(err).To(HaveOccurred())

	_, err = verifier.Verify(ctx, MintHS256Token(TestJWTSecret, "uid-1", -time.Minute))
	Expect(err).To(HaveOccurred())

	_, err = verifier.Verify(ctx, MintHS256Token(TestJWTSecret, "", time.Hour))
	Expect(err).To(HaveOccurred())

	noExpiry, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "uid-1"}).SignedString([]byte(TestJWTSecret))
	_, err = verifier.Verify(ctx, noExpiry)
	Expect(err).To(HaveOccurred())

	rsaSigned, _ := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"sub": "uid-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(NewRSAKey())
	_, err = verifier.Verify(ctx, rsaSigned)
	Expect(err).To(HaveOccurred())
}

func TestJWTVerifier_Issuer(t *testing.T) {
	RegisterTestingT(t)

	verifier := identity.NewJWTVerifier(TestJWTSecret, "todoapi-dev")

	_, err := verifier.Verify(context.Background(), MintHS256Token(TestJWTSecret, "uid-1", time.Hour))

	Expect(err).To(HaveOccurred())
}

func TestNew_SelectsProvider(t *testing.T) {
	RegisterTestingT(t)

	ctx := context.Background()

	verifier, err := identity.New(ctx, config.AuthConfig{Provider: config.ProviderJWT, JWT: config.JWTConfig{Secret: TestJWTSecret}})
	Expect(err).To(BeNil())
	Expect(verifier).To(BeAssignableToTypeOf(&identity.JWTVerifier{}))

	verifier, err = identity.New(ctx, config.AuthConfig{
		Provider: config.ProviderFirebase,
		Firebase: &config.ServiceAccount{ProjectID: projectID},
	})
	Expect(err).To(BeNil())
	Expect(verifier).To(BeAssignableToTypeOf(&identity.OIDCVerifier{}))

	_, err = identity.New(ctx, config.AuthConfig{Provider: config.ProviderFirebase})
	Expect(err).To(HaveOccurred())

	_, err = identity.New(ctx, config.AuthConfig{Provider: "saml"})
	Expect(err).To(HaveOccurred())
}
