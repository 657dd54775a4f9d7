package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"todoapi/internal/core/domain"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"

	ProviderFirebase = "firebase"
	ProviderOIDC     = "oidc"
	ProviderJWT      = "jwt"
)

type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Auth      AuthConfig
	Ownership domain.OwnershipPolicy
	RateLimit RateLimitConfig
	Security  SecurityConfig
	Telemetry TelemetryConfig
	Logger    LoggerConfig
}

type ServerConfig struct {
	Port            string
	GinMode         string
	Environment     string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type StoreConfig struct {
	Driver     string
	Mongo      MongoConfig
	Postgres   PostgresConfig
	SQLite     SQLiteConfig
	LogQueries bool
}

type MongoConfig struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

type PostgresConfig struct {
	URL string
}

type SQLiteConfig struct {
	Path string
}

type AuthConfig struct {
	Provider string
	Firebase *ServiceAccount
	OIDC     OIDCConfig
	JWT      JWTConfig
}

type OIDCConfig struct {
	Issuer   string
	ClientID string
}

type JWTConfig struct {
	Secret string
	Issuer string
}

type RateLimitConfig struct {
	Enabled  bool
	RedisURL string
}

type SecurityConfig struct {
	EnforceHTTPS bool
}

type TelemetryConfig struct {
	Enabled        bool
	OTLPEndpoint   string
	MetricsPort    string
	ServiceName    string
	ServiceVersion string
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

func (c *Config) IsProduction() bool {
	return c.Server.GinMode == "release" || c.Server.Environment == "production"
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	return FromEnv()
}

// FromEnv builds the configuration from environment variables and checks
// that the selected store and identity provider have what they need.
func FromEnv() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	policy, err := domain.ParseOwnershipPolicy(v.GetString("TODO_OWNERSHIP"))

	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetString("PORT"),
			GinMode:         v.GetString("GIN_MODE"),
			Environment:     v.GetString("APP_ENV"),
			ReadTimeout:     v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout:    v.GetDuration("SERVER_WRITE_TIMEOUT"),
			ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(v.GetString("STORE_DRIVER")),
			Mongo: MongoConfig{
				URI:        v.GetString("MONGO_URI"),
				Database:   v.GetString("MONGO_DATABASE"),
				Collection: v.GetString("MONGO_COLLECTION"),
				Timeout:    v.GetDuration("MONGO_TIMEOUT"),
			},
			Postgres:   PostgresConfig{URL: v.GetString("DATABASE_URL")},
			SQLite:     SQLiteConfig{Path: v.GetString("DATABASE_PATH")},
			LogQueries: v.GetBool("SQL_LOG_QUERIES"),
		},
		Auth: AuthConfig{
			Provider: strings.ToLower(v.GetString("AUTH_PROVIDER")),
			OIDC: OIDCConfig{
				Issuer:   v.GetString("OIDC_ISSUER"),
				ClientID: v.GetString("OIDC_CLIENT_ID"),
			},
			JWT: JWTConfig{
				Secret: v.GetString("JWT_SECRET"),
				Issuer: v.GetString("JWT_ISSUER"),
			},
		},
		Ownership: policy,
		RateLimit: RateLimitConfig{
			Enabled:  v.GetBool("RATE_LIMIT_ENABLED"),
			RedisURL: v.GetString("REDIS_URL"),
		},
		Telemetry: TelemetryConfig{
			Enabled:        v.GetBool("TELEMETRY_ENABLED"),
			OTLPEndpoint:   v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
			MetricsPort:    v.GetString("METRICS_PORT"),
			ServiceName:    v.GetString("SERVICE_NAME"),
			ServiceVersion: v.GetString("SERVICE_VERSION"),
		},
		Logger: LoggerConfig{
			Level:    v.GetString("LOG_LEVEL"),
			Encoding: v.GetString("LOG_ENCODING"),
		},
	}

	cfg.Security.EnforceHTTPS = v.GetBool("ENFORCE_HTTPS") || cfg.Server.GinMode == "release"

	if err := cfg.resolveStore(); err != nil {
		return nil, err
	}

	if err := cfg.resolveAuth(v); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "3000")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("SERVER_READ_TIMEOUT", "15s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "15s")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")

	v.SetDefault("STORE_DRIVER", DriverMongo)
	v.SetDefault("MONGO_COLLECTION", "todos")
	v.SetDefault("MONGO_TIMEOUT", "10s")
	v.SetDefault("DATABASE_PATH", "todos.db")
	v.SetDefault("SQL_LOG_QUERIES", false)

	v.SetDefault("AUTH_PROVIDER", ProviderFirebase)
	v.SetDefault("TODO_OWNERSHIP", string(domain.OwnershipStrict))

	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("ENFORCE_HTTPS", false)

	v.SetDefault("TELEMETRY_ENABLED", true)
	v.SetDefault("METRICS_PORT", "9091")
	v.SetDefault("SERVICE_NAME", "todoapi")
	v.SetDefault("SERVICE_VERSION", "1.0.0")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_ENCODING", "json")
}

func (c *Config) resolveStore() error {
	switch c.Store.Driver {
	case DriverMongo:
		if c.Store.Mongo.URI == "" {
			return errors.New("MONGO_URI is required for the mongo store")
		}

		if c.Store.Mongo.Database == "" {
			c.Store.Mongo.Database = "todoapp"

			if cs, err := connstring.ParseAndValidate(c.Store.Mongo.URI); err == nil && cs.Database != "" {
				c.Store.Mongo.Database = cs.Database
			}
		}
	case DriverPostgres:
		if c.Store.Postgres.URL == "" {
			return errors.New("DATABASE_URL is required for the postgres store")
		}
	case DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}

	return nil
}

func (c *Config) resolveAuth(v *viper.Viper) error {
	switch c.Auth.Provider {
	case ProviderFirebase:
		sa, err := loadServiceAccount(v)

		if err != nil {
			return err
		}

		c.Auth.Firebase = sa
	case ProviderOIDC:
		if c.Auth.OIDC.Issuer == "" || c.Auth.OIDC.ClientID == "" {
			return errors.New("OIDC_ISSUER and OIDC_CLIENT_ID are required for the oidc provider")
		}
	case ProviderJWT:
		if c.Auth.JWT.Secret == "" {
			return errors.New("JWT_SECRET is required for the jwt provider")
		}
	default:
		return fmt.Errorf("unknown AUTH_PROVIDER %q", c.Auth.Provider)
	}

	return nil
}

var serviceAccountFields = []string{
	"FIREBASE_PROJECT_ID",
	"FIREBASE_PRIVATE_KEY_ID",
	"FIREBASE_PRIVATE_KEY",
	"FIREBASE_CLIENT_EMAIL",
	"FIREBASE_CLIENT_ID",
	"FIREBASE_AUTH_URI",
	"FIREBASE_TOKEN_URI",
	"FIREBASE_AUTH_PROVIDER_X509_CERT_URL",
	"FIREBASE_CLIENT_X509_CERT_URL",
}

// loadServiceAccount accepts either one credential document (inline or as a
// file) or the nine discrete FIREBASE_* fields.
func loadServiceAccount(v *viper.Viper) (*ServiceAccount, error) {
	if inline := v.GetString("FIREBASE_SERVICE_ACCOUNT"); inline != "" {
		return ParseServiceAccount([]byte(inline))
	}

	if path := v.GetString("FIREBASE_SERVICE_ACCOUNT_FILE"); path != "" {
		return ReadServiceAccountFile(path)
	}

	var missing []string

	for _, key := range serviceAccountFields {
		if v.GetString(key) == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("firebase credentials missing: set FIREBASE_SERVICE_ACCOUNT, FIREBASE_SERVICE_ACCOUNT_FILE or %s", strings.Join(missing, ", "))
	}

	sa := &ServiceAccount{
		Type:                    v.GetString("FIREBASE_TYPE"),
		ProjectID:               v.GetString("FIREBASE_PROJECT_ID"),
		PrivateKeyID:            v.GetString("FIREBASE_PRIVATE_KEY_ID"),
		PrivateKey:              normalizePrivateKey(v.GetString("FIREBASE_PRIVATE_KEY")),
		ClientEmail:             v.GetString("FIREBASE_CLIENT_EMAIL"),
		ClientID:                v.GetString("FIREBASE_CLIENT_ID"),
		AuthURI:                 v.GetString("FIREBASE_AUTH_URI"),
		TokenURI:                v.GetString("FIREBASE_TOKEN_URI"),
		AuthProviderX509CertURL: v.GetString("FIREBASE_AUTH_PROVIDER_X509_CERT_URL"),
		ClientX509CertURL:       v.GetString("FIREBASE_CLIENT_X509_CERT_URL"),
	}

	if sa.Type == "" {
		sa.Type = serviceAccountType
	}

	if err := sa.Validate(); err != nil {
		return nil, err
	}

	return sa, nil
}
