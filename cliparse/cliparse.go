package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port         int     `yaml:"port"`
	DatabaseURL  string  `yaml:"database_url"`
	DatabaseType string  `yaml:"database_type"`
	JWTSecret    string  `yaml:"jwt_secret"`
	JWKSURL      string  `yaml:"jwks_url"`
	RateLimit    float64 `yaml:"rate_limit"`
	RateBurst    int     `yaml:"rate_burst"`
}

const (
	defaultPort      = 3318
	defaultDBType    = "sqlite"
	defaultRateLimit = 20
	defaultRateBurst = 40
)

// ParseFlags resolves configuration from, in order of precedence, CLI
// flags, environment variables, an optional YAML file (-c or CONFIG_FILE)
// and built-in defaults.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var configFile string

	fs := flag.NewFlagSet("elovote", flag.ContinueOnError)

	fs.StringVar(&configFile, "c", "", "YAML config file")

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Token verification (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", "", "HS256 token secret (prefer env)")
	fs.StringVar(&cfg.JWKSURL, "jwks-url", "", "JWKS URL for RS256 tokens")

	// Write rate limiting per client
	fs.Float64Var(&cfg.RateLimit, "rate", 0, "Write requests per second per client")
	fs.IntVar(&cfg.RateBurst, "burst", 0, "Write request burst per client")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if configFile == "" {
		configFile = os.Getenv("CONFIG_FILE")
	}
	var file Config
	if configFile != "" {
		var err error
		if file, err = loadFile(configFile); err != nil {
			return Config{}, err
		}
	}

	// Fall back to environment variables, then the file
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else if file.Port != 0 {
			cfg.Port = file.Port
		} else {
			cfg.Port = defaultPort
		}
	}

	cfg.DatabaseURL = firstNonEmpty(cfg.DatabaseURL, os.Getenv("DATABASE_URL"), file.DatabaseURL)
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	cfg.DatabaseType = firstNonEmpty(cfg.DatabaseType, os.Getenv("DATABASE_TYPE"), file.DatabaseType, defaultDBType)
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	// At least one token source MUST be provided
	cfg.JWTSecret = firstNonEmpty(cfg.JWTSecret, os.Getenv("JWT_SECRET"), file.JWTSecret)
	cfg.JWKSURL = firstNonEmpty(cfg.JWKSURL, os.Getenv("JWKS_URL"), file.JWKSURL)
	if cfg.JWTSecret == "" && cfg.JWKSURL == "" {
		return Config{}, errors.New("JWT_SECRET or JWKS_URL required")
	}

	if cfg.RateLimit == 0 {
		if s := os.Getenv("RATE_LIMIT"); s != "" {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return Config{}, errors.New("invalid RATE_LIMIT env variable")
			}
			cfg.RateLimit = v
		} else if file.RateLimit != 0 {
			cfg.RateLimit = file.RateLimit
		} else {
			cfg.RateLimit = defaultRateLimit
		}
	}
	if cfg.RateBurst == 0 {
		if s := os.Getenv("RATE_BURST"); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil {
				return Config{}, errors.New("invalid RATE_BURST env variable")
			}
			cfg.RateBurst = v
		} else if file.RateBurst != 0 {
			cfg.RateBurst = file.RateBurst
		} else {
			cfg.RateBurst = defaultRateBurst
		}
	}
	if cfg.RateLimit < 0 || cfg.RateBurst < 1 {
		return Config{}, errors.New("rate limit must be positive and burst at least 1")
	}

	return cfg, nil
}

func loadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
