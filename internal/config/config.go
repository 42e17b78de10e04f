package config

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"HA Finance"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"ha_finance"`
	}

	Server struct {
		Timeout     time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		CORSOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
		// AuthSecret enables HS256 bearer-token auth on the API when set.
		AuthSecret string `envconfig:"AUTH_SECRET"`
	}

	Storage struct {
		Backend     string `envconfig:"STORAGE_BACKEND" default:"file"`
		Path        string `envconfig:"STORAGE_PATH" default:"data/ha_finance.json"`
		Codec       string `envconfig:"STORAGE_CODEC" default:"json"`
		Compression string `envconfig:"STORAGE_COMPRESSION" default:"none"`
		Key         string `envconfig:"STORAGE_KEY" default:"ha_finance.data"`
	}

	Ledger struct {
		MaxTransactions     int     `envconfig:"LEDGER_MAX_TRANSACTIONS" default:"1000"`
		LowBalanceThreshold float64 `envconfig:"LEDGER_LOW_BALANCE_THRESHOLD" default:"1000"`
		Currency            string  `envconfig:"LEDGER_CURRENCY" default:"NTD"`
		CatchUp             bool    `envconfig:"LEDGER_CATCH_UP" default:"false"`
		Timezone            string  `envconfig:"LEDGER_TIMEZONE" default:"Local"`

		// DefaultAccountName creates this account at startup when the ledger
		// lacks it. The id defaults to the slug of the name.
		DefaultAccountName    string  `envconfig:"LEDGER_DEFAULT_ACCOUNT_NAME"`
		DefaultAccountID      string  `envconfig:"LEDGER_DEFAULT_ACCOUNT_ID"`
		DefaultAccountBalance float64 `envconfig:"LEDGER_DEFAULT_ACCOUNT_BALANCE" default:"0"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// Location resolves LEDGER_TIMEZONE.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Ledger.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.Ledger.Timezone, err)
	}

	return loc, nil
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case "file", "postgres":
	default:
		return fmt.Errorf("STORAGE_BACKEND must be file or postgres, got %q", c.Storage.Backend)
	}

	switch c.Storage.Codec {
	case "json", "cbor":
	default:
		return fmt.Errorf("STORAGE_CODEC must be json or cbor, got %q", c.Storage.Codec)
	}

	switch c.Storage.Compression {
	case "none", "zstd", "lz4":
	default:
		return fmt.Errorf("STORAGE_COMPRESSION must be none, zstd or lz4, got %q", c.Storage.Compression)
	}

	if c.Ledger.MaxTransactions <= 0 {
		return fmt.Errorf("LEDGER_MAX_TRANSACTIONS must be positive, got %d", c.Ledger.MaxTransactions)
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
