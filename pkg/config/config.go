package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "VINSISTERS"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "VINSISTERS_DB_DSN"
	EnvDBHost = "VINSISTERS_DB_HOST"
	EnvDBUser = "VINSISTERS_DB_USER"
	EnvDBName = "VINSISTERS_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App AppConfig
	DB  DBConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"VINSISTERS_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"VINSISTERS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"VINSISTERS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"VINSISTERS_DB_DSN"`

	LegacyHost     string `envconfig:"VINSISTERS_DB_HOST"`
	LegacyPort     int    `envconfig:"VINSISTERS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"VINSISTERS_DB_USER"`
	LegacyPassword string `envconfig:"VINSISTERS_DB_PASSWORD"`
	LegacyName     string `envconfig:"VINSISTERS_DB_NAME"`
	LegacySSLMode  string `envconfig:"VINSISTERS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"VINSISTERS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"VINSISTERS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"VINSISTERS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"VINSISTERS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// ensureDSN composes a postgres URL from the legacy host/user/name variables
// when an explicit DSN is not provided.
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
	q := u.Query()
	q.Set("sslmode", db.LegacySSLMode)
	u.RawQuery = q.Encode()

	db.DSN = u.String()
	return nil
}
