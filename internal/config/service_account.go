package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

const serviceAccountType = "service_account"

// ServiceAccount is a Google service-account credential document, the same
// JSON the Firebase console hands out.
type ServiceAccount struct {
	Type                    string `json:"type"`
	ProjectID               string `json:"project_id"`
	PrivateKeyID            string `json:"private_key_id"`
	PrivateKey              string `json:"private_key"`
	ClientEmail             string `json:"client_email"`
	ClientID                string `json:"client_id"`
	AuthURI                 string `json:"auth_uri"`
	TokenURI                string `json:"token_uri"`
	AuthProviderX509CertURL string `json:"auth_provider_x509_cert_url"`
	ClientX509CertURL       string `json:"client_x509_cert_url"`
}

func ParseServiceAccount(data []byte) (*ServiceAccount, error) {
	var sa ServiceAccount

	if err := json.Unmarshal(data, &sa); err != nil {
		return nil, fmt.Errorf("invalid service account document: %w", err)
	}

	if sa.Type == "" {
		sa.Type = serviceAccountType
	}

	if err := sa.Validate(); err != nil {
		return nil, err
	}

	return &sa, nil
}

func ReadServiceAccountFile(path string) (*ServiceAccount, error) {
	data, err := os.ReadFile(path)

	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}

	return ParseServiceAccount(data)
}

// Validate checks the fields token verification depends on.
func (sa *ServiceAccount) Validate() error {
	var errs []error

	if sa.Type != serviceAccountType {
		errs = append(errs, fmt.Errorf("unsupported credential type %q", sa.Type))
	}

	if sa.ProjectID == "" {
		errs = append(errs, errors.New("project_id is required"))
	}

	if sa.ClientEmail == "" {
		errs = append(errs, errors.New("client_email is required"))
	}

	if sa.PrivateKey == "" {
		errs = append(errs, errors.New("private_key is required"))
	} else if _, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(sa.PrivateKey)); err != nil {
		errs = append(errs, fmt.Errorf("private_key: %w", err))
	}

	return errors.Join(errs...)
}

// normalizePrivateKey turns the escaped newlines environment files carry
// back into a PEM block.
func normalizePrivateKey(key string) string {
	key = strings.Trim(key, "\"")
	return strings.ReplaceAll(key, `\n`, "\n")
}
