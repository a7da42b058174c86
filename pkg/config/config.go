package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "VINOTECA_DB_DSN"
	EnvDBHost = "VINOTECA_DB_HOST"
	EnvDBUser = "VINOTECA_DB_USER"
	EnvDBName = "VINOTECA_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Firebase     FirebaseConfig
	Admin        AdminConfig
	CORS         CORSConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"VINOTECA_APP_ENV" required:"true"`
	Port         string `envconfig:"VINOTECA_APP_PORT" default:"3001"`
	LogLevel     string `envconfig:"VINOTECA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"VINOTECA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"VINOTECA_DB_DSN"`
	Driver string `envconfig:"VINOTECA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"VINOTECA_DB_HOST"`
	LegacyPort     int    `envconfig:"VINOTECA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"VINOTECA_DB_USER"`
	LegacyPassword string `envconfig:"VINOTECA_DB_PASSWORD"`
	LegacyName     string `envconfig:"VINOTECA_DB_NAME"`
	LegacySSLMode  string `envconfig:"VINOTECA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"VINOTECA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"VINOTECA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"VINOTECA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"VINOTECA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"VINOTECA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"VINOTECA_REDIS_ADDR"`
	Password     string        `envconfig:"VINOTECA_REDIS_PASSWORD"`
	DB           int           `envconfig:"VINOTECA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"VINOTECA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"VINOTECA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"VINOTECA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"VINOTECA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"VINOTECA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FirebaseConfig struct {
	ProjectID       string `envconfig:"VINOTECA_FIREBASE_PROJECT_ID" required:"true"`
	CredentialsPath string `envconfig:"VINOTECA_FIREBASE_CREDENTIALS_PATH"`
}

// AdminConfig carries the fixed admin allow-list. Admin capability is a
// policy input keyed on the signed-in email, not derived data.
type AdminConfig struct {
	Emails []string `envconfig:"VINOTECA_ADMIN_EMAILS" required:"true"`
}

// IsAdmin reports whether the provided email is on the allow-list.
func (a AdminConfig) IsAdmin(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	for _, allowed := range a.Emails {
		if strings.ToLower(strings.TrimSpace(allowed)) == email {
			return true
		}
	}
	return false
}

type CORSConfig struct {
	Origins []string `envconfig:"VINOTECA_CORS_ORIGINS" default:"http://localhost:5173"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"VINOTECA_AUTO_MIGRATE" default:"false"`
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
