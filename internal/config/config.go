package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultSecret signs tokens when SECRET is unset. Tokens signed with it are
// forgeable by anyone who has read this source; deployments should set SECRET.
const DefaultSecret = "vcnxzjgkherwioçgjawefkltçgn34uioqph"

type Config struct {
	Port           int
	Secret         string
	SecretFallback bool
	GinMode        string
	TLSCertFile    string
	TLSKeyFile     string
	TokenExpiry    time.Duration
	DatabasePath   string
	LoginRateLimit int
	SeedUsers      []SeedUser
}

type SeedUser struct {
	Email    string
	Password string
}

type Env interface {
	Getenv(key string) string
}

type osEnv struct{}

func (osEnv) Getenv(key string) string { return os.Getenv(key) }

func LoadConfig() (Config, error) {
	return LoadConfigFromEnv(osEnv{})
}

func LoadConfigFromEnv(env Env) (Config, error) {
	cfg := Config{
		Port:           3000,
		GinMode:        "release",
		TokenExpiry:    3000 * time.Second,
		DatabasePath:   "reminders.db",
		LoginRateLimit: 10,
	}

	if raw := env.Getenv("PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port <= 0 || port > 65535 {
			return Config{}, fmt.Errorf("invalid PORT")
		}
		cfg.Port = port
	}

	cfg.Secret = env.Getenv("SECRET")
	if cfg.Secret == "" {
		cfg.Secret = DefaultSecret
		cfg.SecretFallback = true
	}

	if raw := env.Getenv("GIN_MODE"); raw != "" {
		cfg.GinMode = raw
	}

	cfg.TLSCertFile = env.Getenv("TLS_CERT_FILE")
	cfg.TLSKeyFile = env.Getenv("TLS_KEY_FILE")

	if raw := env.Getenv("TOKEN_EXPIRY_SECONDS"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			return Config{}, fmt.Errorf("invalid TOKEN_EXPIRY_SECONDS")
		}
		cfg.TokenExpiry = time.Duration(seconds) * time.Second
	}

	if raw := env.Getenv("DATABASE_PATH"); raw != "" {
		cfg.DatabasePath = raw
	}

	if raw := env.Getenv("LOGIN_RATE_LIMIT"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return Config{}, fmt.Errorf("invalid LOGIN_RATE_LIMIT")
		}
		cfg.LoginRateLimit = limit
	}

	seeds, err := parseSeedUsers(env.Getenv("SEED_USERS"))
	if err != nil {
		return Config{}, err
	}
	cfg.SeedUsers = seeds

	return cfg, nil
}

// parseSeedUsers reads "email:password,email:password".
func parseSeedUsers(raw string) ([]SeedUser, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var users []SeedUser
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		email, password, ok := strings.Cut(entry, ":")
		if !ok || email == "" || password == "" {
			return nil, fmt.Errorf("invalid SEED_USERS entry %q", entry)
		}
		users = append(users, SeedUser{Email: email, Password: password})
	}
	return users, nil
}
