package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App  AppConfig
	DB   DBConfig
	JWT  JWTConfig
	Cart CartConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if _, err := cfg.Cart.TaxRateDecimal(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CHOWLINE_APP_ENV" required:"true"`
	LogLevel     string `envconfig:"CHOWLINE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CHOWLINE_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"CHOWLINE_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CHOWLINE_DB_DSN"`
	Driver string `envconfig:"CHOWLINE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CHOWLINE_DB_HOST"`
	LegacyPort     int    `envconfig:"CHOWLINE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CHOWLINE_DB_USER"`
	LegacyPassword string `envconfig:"CHOWLINE_DB_PASSWORD"`
	LegacyName     string `envconfig:"CHOWLINE_DB_NAME"`
	LegacySSLMode  string `envconfig:"CHOWLINE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CHOWLINE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CHOWLINE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CHOWLINE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CHOWLINE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type JWTConfig struct {
	Secret string `envconfig:"CHOWLINE_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"CHOWLINE_JWT_ISSUER" required:"true"`
}

// CartConfig carries the tunables of the cart engine.
type CartConfig struct {
	// TaxRate is a decimal string (e.g. "0.165") applied to the cart subtotal.
	TaxRate         string        `envconfig:"CHOWLINE_CART_TAX_RATE" default:"0.165"`
	SessionTTL      time.Duration `envconfig:"CHOWLINE_CART_SESSION_TTL" default:"168h"`
	MaxLineQuantity int           `envconfig:"CHOWLINE_CART_MAX_LINE_QTY" default:"50"`
}

// TaxRateDecimal parses the configured tax rate into an exact decimal.
func (c CartConfig) TaxRateDecimal() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(strings.TrimSpace(c.TaxRate))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid cart tax rate %q: %w", c.TaxRate, err)
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return decimal.Zero, fmt.Errorf("cart tax rate %q out of range [0,1)", c.TaxRate)
	}
	return rate, nil
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
