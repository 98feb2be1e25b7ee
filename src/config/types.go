package config

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
)

type Environment string

const (
	Live Environment = "live"
	Beta Environment = "beta"
	Dev  Environment = "dev"
)

type WikiConfig struct {
	Env            Environment
	Addr           string
	PrivateAddr    string
	BaseUrl        string
	LogLevel       zerolog.Level
	CategoriesFile string
	Postgres       PostgresConfig
	Auth           AuthConfig
	S3             S3Config
	Redis          RedisConfig
	Prices         PricesConfig
	Feeds          FeedsConfig
	DevConfig      DevConfig
}

type DevConfig struct {
	// Read page templates from src/templates on every request instead of
	// using the embedded copies.
	LiveTemplates bool
}

type PostgresConfig struct {
	User     string
	Password string
	Hostname string
	Port     int
	DbName   string
	LogLevel tracelog.LogLevel
	MinConn  int32
	MaxConn  int32
}

func (info PostgresConfig) DSN() string {
	return fmt.Sprintf("user=%s password=%s host=%s port=%d dbname=%s", info.User, info.Password, info.Hostname, info.Port, info.DbName)
}

// Tokens are issued by the wallet login service; the wiki only verifies them.
type AuthConfig struct {
	JWTSecret    string
	CookieName   string
	LoginUrl     string
	CookieSecure bool
}

type S3Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Endpoint        string
	Bucket          string
	PublicUrl       string
	UsePathStyle    bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type PricesConfig struct {
	OciswapBaseUrl string
	CacheTTL       time.Duration
	PollInterval   time.Duration
}

type FeedsConfig struct {
	Timeout time.Duration
}

func (c WikiConfig) IsDev() bool {
	return c.Env == Dev
}
