// shared/config/config.go
package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const (
	DefaultDatabaseName    = "netlify-fauna-graphql-auth"
	DefaultGraphQLEndpoint = "https://graphql.fauna.com/graphql"
	DefaultImportEndpoint  = "https://graphql.fauna.com/import"
	DefaultFaunaEndpoint   = "https://db.fauna.com"
)

// Gateway holds everything the GraphQL gateway (server and lambda) needs.
// Only the public key is required; the rest has working defaults.
type Gateway struct {
	AppEnv string `envconfig:"APP_ENV" default:"development"`
	Addr   string `envconfig:"ADDR" default:":8080"`

	// PublicKey is the credential used for anonymous calls and the login mutation.
	PublicKey       string `envconfig:"FAUNADB_PUBLIC_KEY" required:"true"`
	GraphQLEndpoint string `envconfig:"FAUNADB_GRAPHQL_ENDPOINT" default:"https://graphql.fauna.com/graphql"`
	FaunaEndpoint   string `envconfig:"FAUNADB_ENDPOINT" default:"https://db.fauna.com"`

	// RemoteSchema selects where the remote SDL comes from:
	// "" introspects the live endpoint, "embedded" uses the bundled snapshot,
	// anything else is read as a file path.
	RemoteSchema string `envconfig:"REMOTE_SCHEMA"`

	LoggedInDelay  time.Duration `envconfig:"LOGGED_IN_DELAY" default:"800ms"`
	Introspection  bool          `envconfig:"GRAPHQL_INTROSPECTION" default:"true"`
	AllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:8888"`
	BackendTimeout time.Duration `envconfig:"BACKEND_TIMEOUT" default:"10s"`
}

// Production reports whether cookies should carry the Secure flag.
func (g Gateway) Production() bool {
	return g.AppEnv == "production"
}

// Provisioning is used by `bootstrap create-database`.
type Provisioning struct {
	AdminKey       string `envconfig:"FAUNADB_ADMIN_KEY" required:"true"`
	DatabaseName   string `envconfig:"DATABASE_NAME" default:"netlify-fauna-graphql-auth"`
	FaunaEndpoint  string `envconfig:"FAUNADB_ENDPOINT" default:"https://db.fauna.com"`
	ImportEndpoint string `envconfig:"FAUNADB_GRAPHQL_IMPORT_ENDPOINT" default:"https://graphql.fauna.com/import"`
}

// Seed is used by `bootstrap seed`.
type Seed struct {
	ServerKey     string `envconfig:"FAUNADB_SERVER_KEY" required:"true"`
	FaunaEndpoint string `envconfig:"FAUNADB_ENDPOINT" default:"https://db.fauna.com"`
}

// LoadDotEnv loads ./.env into the process environment when the file exists.
// Variables that are already set win over the file.
func LoadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	return errors.Wrap(godotenv.Load(), "error loading .env")
}

// LoadGateway reads the gateway configuration from the environment.
func LoadGateway() (Gateway, error) {
	c := Gateway{}
	if err := LoadDotEnv(); err != nil {
		return c, err
	}
	err := envconfig.Process("", &c)
	return c, errors.Wrap(err, "error loading gateway configuration")
}

// LoadProvisioning reads the provisioning configuration from the environment.
func LoadProvisioning() (Provisioning, error) {
	c := Provisioning{}
	if err := LoadDotEnv(); err != nil {
		return c, err
	}
	err := envconfig.Process("", &c)
	return c, errors.Wrap(err, "error loading provisioning configuration")
}

// LoadSeed reads the seed configuration from the environment.
func LoadSeed() (Seed, error) {
	c := Seed{}
	if err := LoadDotEnv(); err != nil {
		return c, err
	}
	err := envconfig.Process("", &c)
	return c, errors.Wrap(err, "error loading seed configuration")
}
