package test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"database/sql"
	"encoding/pem"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"todoapi/internal/adapter/database/sqlite"
	"todoapi/internal/core/domain"
)

const TestJWTSecret = "test-secret-with-enough-entropy-0123456789"

func NewIdentity(subject string) domain.Identity {
	return domain.Identity{
		Subject: subject,
		Email:   subject + "@example.com",
	}
}

// InitTestDB opens a migrated in-memory SQLite database.
func InitTestDB() *sql.DB {
	db, err := sqlite.Open(sqlite.Options{Path: ":memory:"})

	if err != nil {
		log.Fatal(err)
	}

	return db
}

// MintHS256Token signs a token the shared-secret verifier accepts.
func MintHS256Token(secret, subject string, ttl time.Duration) string {
	now := time.Now()

	claims := jwt.MapClaims{
		"sub":   subject,
		"email": subject + "@example.com",
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))

	if err != nil {
		log.Fatal(err)
	}

	return token
}

func NewRSAKey() *rsa.PrivateKey {
	key, err := rsa.GenerateKey(rand.Reader, 2048)

	if err != nil {
		log.Fatal(err)
	}

	return key
}

func RSAKeyPEM(key *rsa.PrivateKey) string {
	return string(pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}))
}
