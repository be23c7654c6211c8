package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	DbHost    string
	DbPort    string
	DbUser    string
	DbPass    string
	DbName    string
	DbSSLMode string

	Storage        string // postgres|memory
	MigrateOnStart bool

	JWTSecret      string
	AccessTokenTTL string
	BcryptCost     int

	RateLimitRPS   float64
	RateLimitBurst int
	CORSOrigins    []string

	Log      string
	LogLevel string
	Env      string // dev|prod
}

// LoadConfig загружает .env, читает переменные окружения и выставляет дефолты.
// Ничего не логирует: чтобы не создавать зависимость от logger.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	def := func(v, d string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return d
		}
		return v
	}

	cost, err := strconv.Atoi(def(os.Getenv("BCRYPT_COST"), "10"))
	if err != nil {
		return nil, fmt.Errorf("BCRYPT_COST: %w", err)
	}
	rps, err := strconv.ParseFloat(def(os.Getenv("RATE_LIMIT_RPS"), "5"), 64)
	if err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_RPS: %w", err)
	}
	burst, err := strconv.Atoi(def(os.Getenv("RATE_LIMIT_BURST"), "10"))
	if err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_BURST: %w", err)
	}

	cfg := &Config{
		Port:      def(os.Getenv("PORT"), "8080"),
		DbHost:    os.Getenv("DB_HOST"),
		DbPort:    def(os.Getenv("DB_PORT"), "5432"),
		DbUser:    os.Getenv("DB_USER"),
		DbPass:    os.Getenv("DB_PASSWORD"),
		DbName:    os.Getenv("DB_NAME"),
		DbSSLMode: def(os.Getenv("DB_SSLMODE"), "disable"),

		Storage:        strings.ToLower(def(os.Getenv("STORAGE"), "postgres")),
		MigrateOnStart: def(os.Getenv("MIGRATE_ON_START"), "true") == "true",

		JWTSecret:      os.Getenv("JWT_SECRET"),
		AccessTokenTTL: def(os.Getenv("ACCESS_TOKEN_EXPIRY"), "1h"),
		BcryptCost:     cost,

		RateLimitRPS:   rps,
		RateLimitBurst: burst,
		CORSOrigins:    splitList(def(os.Getenv("CORS_ORIGINS"), "*")),

		Log:      os.Getenv("LOG"),
		LogLevel: strings.ToLower(def(os.Getenv("LOGLEVEL"), "info")),
		Env:      strings.ToLower(def(os.Getenv("ENV"), "prod")),
	}

	return cfg, nil
}

// Validate возвращает предупреждения и фатальную ошибку (если критично).
func (c *Config) Validate() (warnings []string, err error) {
	switch c.Storage {
	case "postgres":
		if c.DbHost == "" || c.DbUser == "" || c.DbName == "" {
			return nil, fmt.Errorf("incomplete DB config (DB_HOST/DB_USER/DB_NAME)")
		}
	case "memory":
		warnings = append(warnings, "STORAGE=memory: данные не переживут перезапуск")
	default:
		return nil, fmt.Errorf("unknown STORAGE %q (postgres|memory)", c.Storage)
	}

	if _, err := time.ParseDuration(c.AccessTokenTTL); err != nil {
		return nil, fmt.Errorf("ACCESS_TOKEN_EXPIRY: %w", err)
	}

	if strings.TrimSpace(c.JWTSecret) == "" {
		if c.Env == "prod" {
			return nil, fmt.Errorf("JWT_SECRET is empty")
		}
		warnings = append(warnings, "JWT_SECRET is empty")
	}

	if !c.CORSAllowCredentials() && c.Env == "prod" {
		warnings = append(warnings, "CORS_ORIGINS не задан явно: credentials отключены")
	}

	if c.Port == "" {
		warnings = append(warnings, "PORT is empty, using default 8080")
	}

	return warnings, nil
}

// TokenTTL: срок жизни access-токена. Некорректное значение отсекается в Validate.
func (c *Config) TokenTTL() time.Duration {
	d, err := time.ParseDuration(c.AccessTokenTTL)
	if err != nil {
		return time.Hour
	}
	return d
}

// CORSAllowCredentials: credentials разрешаются только для явного списка origin.
func (c *Config) CORSAllowCredentials() bool {
	if len(c.CORSOrigins) == 0 {
		return false
	}
	for _, o := range c.CORSOrigins {
		if o == "*" {
			return false
		}
	}
	return true
}

// GetDSN: полная DSN (с паролем)
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DbUser, c.DbPass, c.DbHost, c.DbPort, c.DbName, c.DbSSLMode,
	)
}

// GetDSNSafe: DSN без пароля (для логов)
func (c *Config) GetDSNSafe() string {
	return fmt.Sprintf(
		"postgres://%s:***@%s:%s/%s?sslmode=%s",
		c.DbUser, c.DbHost, c.DbPort, c.DbName, c.DbSSLMode,
	)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
