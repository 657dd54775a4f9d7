package service_test

import (
	"context"
	"errors"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"

	"todoapi/internal/core/domain"
	"todoapi/internal/core/service"
)

type stubVerifier struct {
	identity domain.Identity
	err      error
	calls    int
}

func (v *stubVerifier) Verify(ctx context.Context, rawToken string) (domain.Identity, error) {
	v.calls++
	return v.identity, v.err
}

type AuthServiceTestSuite struct {
	suite.Suite
	Verifier *stubVerifier
	Service  *service.AuthService
}

func (s *AuthServiceTestSuite) SetupTest() {
	s.Verifier = &stubVerifier{identity: domain.Identity{Subject: "uid-1", Email: "u1@example.com"}}
	s.Service = service.NewAuthService(s.Verifier, nil)
}

func TestAuthServiceTestSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(AuthServiceTestSuite))
}

func (s *AuthServiceTestSuite) TestAuthenticate_Success() {
	identity, err := s.Service.Authenticate(context.Background(), "token")

	Expect(err).To(BeNil())
	Expect(identity.Subject).To(Equal("uid-1"))
	Expect(s.Verifier.calls).To(Equal(1))
}

func (s *AuthServiceTestSuite) TestAuthenticate_MissingCredentialSkipsVerifier() {
	_, err := s.Service.Authenticate(context.Background(), "  ")

	Expect(errors.Is(err, domain.ErrUnauthenticated)).To(BeTrue())
	Expect(s.Verifier.calls).To(Equal(0))
}

func (s *AuthServiceTestSuite) TestAuthenticate_RejectedCredential() {
	s.Verifier.err = errors.New("token expired")

	_, err := s.Service.Authenticate(context.Background(), "token")

	code, ok := domain.CodeOf(err)
	Expect(ok).To(BeTrue())
	Expect(code).To(Equal(domain.ErrCodeUnauthenticated))
	Expect(err.Error()).To(ContainSubstring("token expired"))
}

func (s *AuthServiceTestSuite) TestAuthenticate_IdentityWithoutSubject() {
	s.Verifier.identity = domain.Identity{Email: "nobody@example.com"}

	_, err := s.Service.Authenticate(context.Background(), "token")

	Expect(errors.Is(err, domain.ErrUnauthenticated)).To(BeTrue())
}
