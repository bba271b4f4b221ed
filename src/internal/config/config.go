package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

type Config struct {
	ListenAddr        string        `env:"LISTEN_ADDR" envDefault:":3000"`
	ClientID          string        `env:"CLIENT_ID,required"`
	ClientSecret      string        `env:"CLIENT_SECRET,required"`
	RedirectURI       string        `env:"REDIRECT_URI" envDefault:"http://localhost:3000/oauth/callback"`
	AuthURL           string        `env:"AUTH_URL" envDefault:"https://auth.monzo.com"`
	APIBaseURL        string        `env:"API_BASE_URL" envDefault:"https://api.monzo.com"`
	ProviderTimeout   time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"10s"`
	TransactionsLimit int           `env:"TRANSACTIONS_LIMIT" envDefault:"30"`
	BasicAuthUser     string        `env:"BASIC_AUTH_USER"`
	BasicAuthPassword string        `env:"BASIC_AUTH_PASSWORD"`
	DatabaseConfig
}

// DatabaseConfig is the subset the audit-log commands need; it carries no
// OAuth client settings.
type DatabaseConfig struct {
	DatabaseDSN   string `env:"DATABASE_DSN"`
	MigrationsDir string `env:"MIGRATIONS_DIR" envDefault:"src/migrations"`
}

// Load reads an optional .env file and then parses the process environment.
// Variables already set in the environment win over the file.
func Load() (Config, error) {
	return LoadFile(defaultEnvFile)
}

func LoadFile(envFile string) (Config, error) {
	if err := loadEnvFile(envFile); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.ClientID = strings.TrimSpace(cfg.ClientID)
	cfg.ClientSecret = strings.TrimSpace(cfg.ClientSecret)
	cfg.RedirectURI = strings.TrimSpace(cfg.RedirectURI)
	cfg.AuthURL = strings.TrimRight(strings.TrimSpace(cfg.AuthURL), "/")
	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	cfg.DatabaseConfig = cfg.DatabaseConfig.normalized()

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadDatabase reads only the database settings, so maintenance commands run
// without CLIENT_ID or CLIENT_SECRET.
func LoadDatabase() (DatabaseConfig, error) {
	return LoadDatabaseFile(defaultEnvFile)
}

func LoadDatabaseFile(envFile string) (DatabaseConfig, error) {
	if err := loadEnvFile(envFile); err != nil {
		return DatabaseConfig{}, err
	}

	var cfg DatabaseConfig
	if err := env.Parse(&cfg); err != nil {
		return DatabaseConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg.normalized(), nil
}

func loadEnvFile(envFile string) error {
	if envFile == "" {
		return nil
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load env file %q: %w", envFile, err)
	}
	return nil
}

func (c DatabaseConfig) normalized() DatabaseConfig {
	c.DatabaseDSN = strings.TrimSpace(c.DatabaseDSN)
	if c.DatabaseDSN != "" {
		c.DatabaseDSN = normalizeConnectionString(c.DatabaseDSN)
	}
	return c
}

func (c Config) BasicAuthEnabled() bool {
	return c.BasicAuthUser != "" && c.BasicAuthPassword != ""
}

func (c Config) validate() error {
	var errs []string

	if c.ClientID == "" {
		errs = append(errs, "CLIENT_ID is required")
	}
	if c.ClientSecret == "" {
		errs = append(errs, "CLIENT_SECRET is required")
	}
	for name, raw := range map[string]string{
		"REDIRECT_URI": c.RedirectURI,
		"AUTH_URL":     c.AuthURL,
		"API_BASE_URL": c.APIBaseURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, name+" must be an absolute url")
		}
	}
	if c.ProviderTimeout <= 0 {
		errs = append(errs, "PROVIDER_TIMEOUT must be positive")
	}
	if c.TransactionsLimit <= 0 {
		errs = append(errs, "TRANSACTIONS_LIMIT must be positive")
	}
	if (c.BasicAuthUser == "") != (c.BasicAuthPassword == "") {
		errs = append(errs, "BASIC_AUTH_USER and BASIC_AUTH_PASSWORD must be set together")
	}

	if len(errs) > 0 {
		return errors.New("invalid config: " + strings.Join(errs, "; "))
	}
	return nil
}

// normalizeConnectionString accepts either a libpq DSN or the
// semicolon-separated "Host=...;Database=..." form.
func normalizeConnectionString(raw string) string {
	if !strings.Contains(raw, ";") {
		return raw
	}

	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	hasSSLMode := false

	for _, part := range parts {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}

		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(kv[0]))
		val := strings.TrimSpace(kv[1])

		switch key {
		case "host":
			out = append(out, "host="+val)
		case "port":
			out = append(out, "port="+val)
		case "database":
			out = append(out, "dbname="+val)
		case "username":
			out = append(out, "user="+val)
		case "password":
			out = append(out, "password="+val)
		case "timeout", "connect timeout":
			out = append(out, "connect_timeout="+val)
		case "commandtimeout", "command timeout":
			out = append(out, "statement_timeout="+val+"s")
		case "sslmode":
			hasSSLMode = true
			out = append(out, "sslmode="+val)
		default:
			out = append(out, key+"="+val)
		}
	}

	if len(out) == 0 {
		return raw
	}

	if !hasSSLMode {
		out = append(out, "sslmode=disable")
	}

	return strings.Join(out, " ")
}
