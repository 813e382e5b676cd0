package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Directory DirectoryConfig
	Reporting ReportingConfig
	Fields    FieldsConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds issue-store connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr                  string
	Password              string
	DB                    int
	SearchCacheTTLSeconds int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters for operator endpoints.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
}

// DirectoryConfig points at the ESS employee-directory API.
type DirectoryConfig struct {
	BaseURL        string
	APIKey         string
	TimeoutSeconds int
}

// ReportingConfig controls report window evaluation.
type ReportingConfig struct {
	// TimeZone is the IANA zone report day boundaries are evaluated in.
	TimeZone string
	// RequestCodeOverrides is an optional JSON table of
	// system -> action -> code merged over the built-in defaults.
	RequestCodeOverrides map[string]map[string]string
}

// FieldsConfig carries the resolved issue custom-field IDs. Zero means
// unresolved; the tracking engine validates required fields at query time.
type FieldsConfig struct {
	EmployeeID     int64
	TargetSystem   int64
	AccountAction  int64
	EmployeeName   int64
	EmployeeUID    int64
	EmployeeEmail  int64
	EmployeePhone  int64
	EmployeeStatus int64
	EmployeeOffice int64
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	overrides, err := loadRequestCodeOverrides()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "account-audit-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:                  getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:              os.Getenv("REDIS_PASSWORD"),
			DB:                    redisDB,
			SearchCacheTTLSeconds: getEnvAsInt("REDIS_SEARCH_CACHE_TTL_SECONDS", 300),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
		},
		Directory: DirectoryConfig{
			BaseURL:        os.Getenv("ESS_BASE_URL"),
			APIKey:         os.Getenv("ESS_API_KEY"),
			TimeoutSeconds: getEnvAsInt("ESS_TIMEOUT_SECONDS", 30),
		},
		Reporting: ReportingConfig{
			TimeZone:             getEnv("REPORTING_TIME_ZONE", "America/New_York"),
			RequestCodeOverrides: overrides,
		},
		Fields: FieldsConfig{
			EmployeeID:     getEnvAsInt64("FIELD_EMPLOYEE_ID", 0),
			TargetSystem:   getEnvAsInt64("FIELD_TARGET_SYSTEM", 0),
			AccountAction:  getEnvAsInt64("FIELD_ACCOUNT_ACTION", 0),
			EmployeeName:   getEnvAsInt64("FIELD_EMPLOYEE_NAME", 0),
			EmployeeUID:    getEnvAsInt64("FIELD_EMPLOYEE_UID", 0),
			EmployeeEmail:  getEnvAsInt64("FIELD_EMPLOYEE_EMAIL", 0),
			EmployeePhone:  getEnvAsInt64("FIELD_EMPLOYEE_PHONE", 0),
			EmployeeStatus: getEnvAsInt64("FIELD_EMPLOYEE_STATUS", 0),
			EmployeeOffice: getEnvAsInt64("FIELD_EMPLOYEE_OFFICE", 0),
		},
	}

	return cfg, nil
}

// loadRequestCodeOverrides parses REQUEST_CODE_OVERRIDES as a JSON object
// of system -> action -> code.
func loadRequestCodeOverrides() (map[string]map[string]string, error) {
	raw := os.Getenv("REQUEST_CODE_OVERRIDES")
	if raw == "" {
		return nil, nil
	}
	var overrides map[string]map[string]string
	if err := json.Unmarshal([]byte(raw), &overrides); err != nil {
		return nil, fmt.Errorf("invalid REQUEST_CODE_OVERRIDES: %w", err)
	}
	return overrides, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// SearchCacheTTL returns the employee search cache lifetime.
func (r RedisConfig) SearchCacheTTL() time.Duration {
	if r.SearchCacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(r.SearchCacheTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsInt64(key string, fallback int64) int64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
