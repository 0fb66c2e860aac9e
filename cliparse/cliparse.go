package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string

	// Synthesis gateway settings
	OpenAIKey      string
	OpenAIModel    string
	OpenAIBaseURL  string
	GatewayTimeout time.Duration
}

// DefaultGatewayTimeout bounds one synthesis round trip.
const DefaultGatewayTimeout = 60 * time.Second

// ParseFlags validates flags and sets port number
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var timeoutSecs int

	fs := flag.NewFlagSet("lockitin", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Synthesis settings (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.OpenAIKey, "openai-key", "", "OpenAI API key (prefer env)")
	fs.StringVar(&cfg.OpenAIModel, "openai-model", "", "OpenAI model name")
	fs.StringVar(&cfg.OpenAIBaseURL, "openai-base-url", "", "OpenAI-compatible base URL")
	fs.IntVar(&timeoutSecs, "gateway-timeout", 0, "Synthesis call timeout in seconds")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3000 // default, same port the original app served on
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
		return Config{}, errors.New("database type must be sqlite or postgres")
	}

	// Synthesis settings - key MUST be provided
	if cfg.OpenAIKey == "" {
		cfg.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.OpenAIKey == "" {
		return Config{}, errors.New("OPENAI_API_KEY required")
	}

	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = os.Getenv("OPENAI_MODEL")
		if cfg.OpenAIModel == "" {
			cfg.OpenAIModel = "gpt-4o-mini"
		}
	}

	if cfg.OpenAIBaseURL == "" {
		cfg.OpenAIBaseURL = os.Getenv("OPENAI_BASE_URL")
		if cfg.OpenAIBaseURL == "" {
			cfg.OpenAIBaseURL = "https://api.openai.com/v1"
		}
	}

	if timeoutSecs == 0 {
		if s := os.Getenv("GATEWAY_TIMEOUT_SECONDS"); s != "" {
			secs, err := strconv.Atoi(s)
			if err != nil || secs <= 0 {
				return Config{}, errors.New("invalid GATEWAY_TIMEOUT_SECONDS env variable")
			}
			timeoutSecs = secs
		}
	}
	if timeoutSecs > 0 {
		cfg.GatewayTimeout = time.Duration(timeoutSecs) * time.Second
	} else {
		cfg.GatewayTimeout = DefaultGatewayTimeout
	}

	return cfg, nil
}
