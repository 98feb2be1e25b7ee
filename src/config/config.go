package config

import (
	"time"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
)

// Defaults for local development. Every field can be overridden from the
// environment, see env.go.
var Config = WikiConfig{
	Env:         Dev,
	Addr:        ":9001",
	PrivateAddr: ":9002",
	BaseUrl:     "http://localhost:9001",
	LogLevel:    zerolog.InfoLevel,
	Postgres: PostgresConfig{
		User:     "wiki",
		Password: "password",
		Hostname: "localhost",
		Port:     5432,
		DbName:   "wiki",
		LogLevel: tracelog.LogLevelWarn,
		MinConn:  2,
		MaxConn:  10,
	},
	Auth: AuthConfig{
		CookieName: "wiki_token",
		LoginUrl:   "http://localhost:3000/login",
	},
	S3: S3Config{
		Region:       "us-east-1",
		Endpoint:     "http://localhost:9003",
		Bucket:       "wiki-uploads",
		PublicUrl:    "http://localhost:9003/wiki-uploads",
		UsePathStyle: true,
	},
	Redis: RedisConfig{
		Addr: "localhost:6379",
	},
	Prices: PricesConfig{
		OciswapBaseUrl: "https://api.ociswap.com",
		CacheTTL:       time.Minute,
		PollInterval:   time.Minute,
	},
	Feeds: FeedsConfig{
		Timeout: 10 * time.Second,
	},
}
