package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          int
	DatabaseURL   string
	DatabaseType  string
	SurveyID      string
	RedisURL      string
	SessionTTL    time.Duration
	AdminKeySalt  string
	IPHashSalt    string
	BreakdownCode string
	SeedFile      string

	// SubmitRateLimit is requests per minute per client on the write
	// endpoints. Zero disables limiting.
	SubmitRateLimit int
}

const (
	defaultPort          = 3318
	defaultBreakdownCode = "Q7"
	defaultSessionTTL    = 24 * time.Hour
	defaultRateLimit     = 30
)

// ParseFlags reads flags, then .env, then the process environment.
// CLI flags win over both.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var envFile string

	fs := flag.NewFlagSet("ai-survey", flag.ContinueOnError)

	fs.StringVar(&envFile, "env", ".env", "Path to a .env file (missing file is ignored)")

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.RedisURL, "redis", "", "Redis URL for wizard sessions (empty keeps them in memory)")
	fs.DurationVar(&cfg.SessionTTL, "session-ttl", 0, "Idle lifetime of a wizard session")
	fs.IntVar(&cfg.SubmitRateLimit, "rate", -1, "Write requests per minute per client (0 disables)")

	// Survey selection
	fs.StringVar(&cfg.SurveyID, "survey", "", "Survey ID to serve instead of the newest active one")
	fs.StringVar(&cfg.BreakdownCode, "breakdown", "", "Question code summarized by /api/stats")
	fs.StringVar(&cfg.SeedFile, "seed", "", "YAML survey definition to load at startup")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminKeySalt, "admin-salt", "", "Admin key salt (prefer env)")
	fs.StringVar(&cfg.IPHashSalt, "ip-salt", "", "IP hash salt (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := loadEnvFile(envFile); err != nil {
		return Config{}, err
	}

	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = defaultPort
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q (sqlite or postgres)", cfg.DatabaseType)
	}

	if cfg.RedisURL == "" {
		cfg.RedisURL = os.Getenv("REDIS_URL")
	}

	if cfg.SessionTTL == 0 {
		if ttlStr := os.Getenv("SESSION_TTL"); ttlStr != "" {
			ttl, err := time.ParseDuration(ttlStr)
			if err != nil || ttl <= 0 {
				return Config{}, errors.New("invalid SESSION_TTL env variable")
			}
			cfg.SessionTTL = ttl
		} else {
			cfg.SessionTTL = defaultSessionTTL
		}
	}

	if cfg.SubmitRateLimit < 0 {
		if rateStr := os.Getenv("SUBMIT_RATE_LIMIT"); rateStr != "" {
			n, err := strconv.Atoi(rateStr)
			if err != nil || n < 0 {
				return Config{}, errors.New("invalid SUBMIT_RATE_LIMIT env variable")
			}
			cfg.SubmitRateLimit = n
		} else {
			cfg.SubmitRateLimit = defaultRateLimit
		}
	}

	if cfg.SurveyID == "" {
		cfg.SurveyID = os.Getenv("SURVEY_ID")
	}
	if cfg.BreakdownCode == "" {
		cfg.BreakdownCode = os.Getenv("BREAKDOWN_CODE")
		if cfg.BreakdownCode == "" {
			cfg.BreakdownCode = defaultBreakdownCode
		}
	}
	if cfg.SeedFile == "" {
		cfg.SeedFile = os.Getenv("SEED_FILE")
	}

	// Secrets - MUST be provided
	if cfg.AdminKeySalt == "" {
		cfg.AdminKeySalt = os.Getenv("ADMIN_KEY_SALT")
	}
	if cfg.AdminKeySalt == "" {
		return Config{}, errors.New("ADMIN_KEY_SALT required")
	}

	if cfg.IPHashSalt == "" {
		cfg.IPHashSalt = os.Getenv("IP_HASH_SALT")
	}
	if cfg.IPHashSalt == "" {
		return Config{}, errors.New("IP_HASH_SALT required")
	}

	return cfg, nil
}

// loadEnvFile copies variables from path into the environment without
// overriding ones already set.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
