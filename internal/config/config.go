// Package config carga la configuración de la aplicación desde variables de entorno
package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // zona horaria embebida para contenedores sin tzdata

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config contiene toda la configuración de ejecución
type Config struct {
	AppEnv   string `mapstructure:"APP_ENV"`
	Port     int    `mapstructure:"PORT"`
	BasePath string `mapstructure:"BASE_PATH"`

	DatabaseURL    string `mapstructure:"DATABASE_URL"`
	DBHost         string `mapstructure:"DB_HOST"`
	DBPort         int    `mapstructure:"DB_PORT"`
	DBUser         string `mapstructure:"DB_USER"`
	DBPassword     string `mapstructure:"DB_PASSWORD"`
	DBName         string `mapstructure:"DB_NAME"`
	DBSSLMode      string `mapstructure:"DB_SSL_MODE"`
	DBMaxConns     int32  `mapstructure:"DB_MAX_CONNECTIONS"`
	DBMinConns     int32  `mapstructure:"DB_MIN_CONNECTIONS"`
	MigrationsPath string `mapstructure:"MIGRATIONS_PATH"`
	AutoMigrate    bool   `mapstructure:"AUTO_MIGRATE"`

	RedisURL string `mapstructure:"REDIS_URL"`

	JWTSecretKey       string `mapstructure:"JWT_SECRET_KEY"`
	JWTExpirationHours int    `mapstructure:"JWT_EXPIRATION_HOURS"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	CORSAllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	UploadDir       string `mapstructure:"UPLOAD_DIR"`
	UploadPublicURL string `mapstructure:"UPLOAD_PUBLIC_URL"`
	UploadMaxBytes  int64  `mapstructure:"UPLOAD_MAX_BYTES"`

	Timezone             string `mapstructure:"TIMEZONE"`
	DefaultMarginPct     string `mapstructure:"DEFAULT_MARGIN_PCT"`
	BoardCacheTTLSeconds int    `mapstructure:"BOARD_CACHE_TTL_SECONDS"`
	LockTTLSeconds       int    `mapstructure:"LOCK_TTL_SECONDS"`
}

// Load lee la configuración del entorno y de un .env opcional
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	setDefaults(v)

	// El .env es opcional
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error al leer configuración: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", 8080)
	v.SetDefault("BASE_PATH", "/api/v1")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "verduleria")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_CONNECTIONS", 10)
	v.SetDefault("DB_MIN_CONNECTIONS", 1)
	v.SetDefault("MIGRATIONS_PATH", "migrations")
	v.SetDefault("AUTO_MIGRATE", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("JWT_SECRET_KEY", "")
	v.SetDefault("JWT_EXPIRATION_HOURS", 24)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("UPLOAD_PUBLIC_URL", "/uploads")
	v.SetDefault("UPLOAD_MAX_BYTES", 5<<20)
	v.SetDefault("TIMEZONE", "America/Argentina/Buenos_Aires")
	v.SetDefault("DEFAULT_MARGIN_PCT", "0.35")
	v.SetDefault("BOARD_CACHE_TTL_SECONDS", 30)
	v.SetDefault("LOCK_TTL_SECONDS", 10)
}

// Validate verifica valores obligatorios y formatos
func (c *Config) Validate() error {
	if c.JWTSecretKey == "" {
		return fmt.Errorf("JWT_SECRET_KEY es obligatorio")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("TIMEZONE inválido: %w", err)
	}
	if _, err := decimal.NewFromString(c.DefaultMarginPct); err != nil {
		return fmt.Errorf("DEFAULT_MARGIN_PCT inválido: %w", err)
	}
	return nil
}

// IsProduction indica si la aplicación corre en producción
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// DSN devuelve la URL de conexión a PostgreSQL
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// Location devuelve la zona horaria usada para derivar dateKey
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// MarginDefault devuelve el margen inicial como decimal
func (c *Config) MarginDefault() decimal.Decimal {
	d, err := decimal.NewFromString(c.DefaultMarginPct)
	if err != nil {
		return decimal.RequireFromString("0.35")
	}
	return d
}

// AllowedOrigins devuelve los orígenes CORS configurados
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// JWTExpiration devuelve la duración de los tokens
func (c *Config) JWTExpiration() time.Duration {
	if c.JWTExpirationHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.JWTExpirationHours) * time.Hour
}

// BoardCacheTTL devuelve el TTL del tablero en caché
func (c *Config) BoardCacheTTL() time.Duration {
	return time.Duration(c.BoardCacheTTLSeconds) * time.Second
}

// LockTTL devuelve el TTL de los locks distribuidos
func (c *Config) LockTTL() time.Duration {
	if c.LockTTLSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.LockTTLSeconds) * time.Second
}
