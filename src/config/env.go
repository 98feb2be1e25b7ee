package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func init() {
	LoadDotEnv()
	ApplyEnv(&Config, os.LookupEnv)
	if err := LoadCategories(Config.CategoriesFile); err != nil {
		panic(err)
	}
}

// LoadDotEnv loads .env.local and then .env. godotenv never overwrites
// variables that are already set, so the real environment wins, then
// .env.local, then .env.
func LoadDotEnv() []string {
	var loaded []string
	for _, f := range []string{".env.local", ".env"} {
		if _, err := os.Stat(f); err == nil {
			loaded = append(loaded, f)
		}
	}
	if len(loaded) > 0 {
		_ = godotenv.Load(loaded...)
	}
	return loaded
}

type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides cfg with any WIKI_* variables that lookup finds.
// Malformed numbers and durations are ignored and keep their defaults.
func ApplyEnv(cfg *WikiConfig, lookup LookupFunc) {
	str := func(key string, dest *string) {
		if v, ok := lookup(key); ok {
			*dest = v
		}
	}
	num := func(key string, dest *int) {
		if v, ok := lookup(key); ok {
			if n, err := strconv.Atoi(v); err == nil {
				*dest = n
			}
		}
	}
	dur := func(key string, dest *time.Duration) {
		if v, ok := lookup(key); ok {
			if d, err := time.ParseDuration(v); err == nil {
				*dest = d
			}
		}
	}
	boolean := func(key string, dest *bool) {
		if v, ok := lookup(key); ok {
			if b, err := strconv.ParseBool(v); err == nil {
				*dest = b
			}
		}
	}

	if v, ok := lookup("WIKI_ENV"); ok {
		cfg.Env = Environment(v)
	}
	str("WIKI_ADDR", &cfg.Addr)
	str("WIKI_PRIVATE_ADDR", &cfg.PrivateAddr)
	str("WIKI_BASE_URL", &cfg.BaseUrl)
	if v, ok := lookup("WIKI_LOG_LEVEL"); ok {
		if lvl, err := zerolog.ParseLevel(v); err == nil {
			cfg.LogLevel = lvl
		}
	}
	str("WIKI_CATEGORIES_FILE", &cfg.CategoriesFile)

	str("WIKI_DB_USER", &cfg.Postgres.User)
	str("WIKI_DB_PASSWORD", &cfg.Postgres.Password)
	str("WIKI_DB_HOST", &cfg.Postgres.Hostname)
	num("WIKI_DB_PORT", &cfg.Postgres.Port)
	str("WIKI_DB_NAME", &cfg.Postgres.DbName)

	str("WIKI_JWT_SECRET", &cfg.Auth.JWTSecret)
	str("WIKI_AUTH_COOKIE", &cfg.Auth.CookieName)
	str("WIKI_LOGIN_URL", &cfg.Auth.LoginUrl)
	boolean("WIKI_COOKIE_SECURE", &cfg.Auth.CookieSecure)

	str("WIKI_S3_ACCESS_KEY_ID", &cfg.S3.AccessKeyID)
	str("WIKI_S3_SECRET_ACCESS_KEY", &cfg.S3.SecretAccessKey)
	str("WIKI_S3_REGION", &cfg.S3.Region)
	str("WIKI_S3_ENDPOINT", &cfg.S3.Endpoint)
	str("WIKI_S3_BUCKET", &cfg.S3.Bucket)
	str("WIKI_S3_PUBLIC_URL", &cfg.S3.PublicUrl)
	boolean("WIKI_S3_PATH_STYLE", &cfg.S3.UsePathStyle)

	str("WIKI_REDIS_ADDR", &cfg.Redis.Addr)
	str("WIKI_REDIS_PASSWORD", &cfg.Redis.Password)
	num("WIKI_REDIS_DB", &cfg.Redis.DB)

	str("WIKI_OCISWAP_URL", &cfg.Prices.OciswapBaseUrl)
	dur("WIKI_PRICE_CACHE_TTL", &cfg.Prices.CacheTTL)
	dur("WIKI_PRICE_POLL_INTERVAL", &cfg.Prices.PollInterval)
	dur("WIKI_FEED_TIMEOUT", &cfg.Feeds.Timeout)

	boolean("WIKI_LIVE_TEMPLATES", &cfg.DevConfig.LiveTemplates)
}
