package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	VonageAPIHost      string
	VonageMeetingsHost string
	VonageToken        string
	VonageAppID        string
	VonageKeyPath      string
	SignatureSecret    string

	WebhookRPM     int
	TrustedProxies []string
	Workers        int
	CacheTTL       time.Duration
}

// Load reads the environment, seeded from a .env file when one exists.
func Load() Config {
	_ = godotenv.Load()

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Msg("not an integer, using default")
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/relay?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisDB:     atoi("REDIS_DB", 0),
		RedisPass:   env("REDIS_PASSWORD", ""),

		VonageAPIHost:      env("VONAGE_API_HOST", "https://api.nexmo.com"),
		VonageMeetingsHost: env("VONAGE_MEETINGS_HOST", "https://api-eu.vonage.com"),
		VonageToken:        env("VONAGE_TOKEN", ""),
		VonageAppID:        env("VONAGE_APPLICATION_ID", ""),
		VonageKeyPath:      env("VONAGE_PRIVATE_KEY_PATH", ""),
		SignatureSecret:    env("VONAGE_SIGNATURE_SECRET", ""),

		WebhookRPM:     atoi("WEBHOOK_RPM", 600),
		TrustedProxies: list("TRUSTED_PROXIES"),
		Workers:        atoi("BROADCAST_WORKERS", 8),
		CacheTTL:       time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
	}
	if c.VonageToken == "" && (c.VonageAppID == "" || c.VonageKeyPath == "") {
		log.Warn().Msg("neither VONAGE_TOKEN nor VONAGE_APPLICATION_ID/VONAGE_PRIVATE_KEY_PATH is set")
	}
	if c.SignatureSecret == "" {
		log.Warn().Msg("VONAGE_SIGNATURE_SECRET is empty; every webhook will be rejected")
	}
	return c
}

// PrivateKey reads the application key referenced by VONAGE_PRIVATE_KEY_PATH.
func (c Config) PrivateKey() ([]byte, error) {
	return os.ReadFile(c.VonageKeyPath)
}

// list splits a comma separated variable, dropping blanks.
func list(k string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(k), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
