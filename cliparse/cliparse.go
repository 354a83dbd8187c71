package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	BotToken     string
	ClientID     string
	ClientSecret string
	CallbackURL  string
	SessionSalt  string
	LogLevel     string
	LogFormat    string
	MaxInFlight  int
	EnvFile      string
}

// OAuthConfigured reports whether the dashboard login can be offered.
func (c Config) OAuthConfigured() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.CallbackURL != ""
}

// InviteURL is the bot invite link shown on the landing page.
func (c Config) InviteURL() string {
	return "https://discord.com/oauth2/authorize?client_id=" + c.ClientID + "&permissions=8&scope=bot"
}

// ParseFlags reads flags, then the environment (optionally seeded from a
// .env file), then defaults.
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fset := flag.NewFlagSet("citizen-clips", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fset.IntVar(&cfg.Port, "p", 0, "Server port")
	fset.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fset.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fset.StringVar(&cfg.EnvFile, "env", "", "Path to a .env file (default: ./.env when present)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fset.StringVar(&cfg.BotToken, "token", "", "Discord bot token (prefer env)")
	fset.StringVar(&cfg.ClientID, "client-id", "", "Discord OAuth client id")
	fset.StringVar(&cfg.ClientSecret, "client-secret", "", "Discord OAuth client secret (prefer env)")
	fset.StringVar(&cfg.CallbackURL, "callback-url", "", "Discord OAuth callback URL")
	fset.StringVar(&cfg.SessionSalt, "session-salt", "", "Dashboard session secret (prefer env)")

	// Runtime
	fset.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fset.StringVar(&cfg.LogFormat, "log-format", "", "Log format (text or json)")
	fset.IntVar(&cfg.MaxInFlight, "max-in-flight", -1, "Maximum concurrently handled chat events (0 = unlimited)")

	if err := fset.Parse(args); err != nil {
		return Config{}, err
	}

	// Values already present in the environment win over the file
	if cfg.EnvFile != "" {
		if err := godotenv.Load(cfg.EnvFile); err != nil {
			return Config{}, fmt.Errorf("failed to load env file: %w", err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
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
			cfg.Port = 3318 // default
		}
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		if cfg.DatabaseType != "sqlite" {
			return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
		}
		cfg.DatabaseURL = "citizen-clips.db"
	}

	if cfg.ClientID == "" {
		cfg.ClientID = os.Getenv("CLIENT_ID")
	}
	if cfg.ClientSecret == "" {
		cfg.ClientSecret = os.Getenv("CLIENT_SECRET")
	}
	if cfg.CallbackURL == "" {
		cfg.CallbackURL = os.Getenv("CALLBACK_URL")
	}
	if cfg.CallbackURL == "" {
		cfg.CallbackURL = fmt.Sprintf("http://localhost:%d/auth/discord/callback", cfg.Port)
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = os.Getenv("LOG_LEVEL")
		if cfg.LogLevel == "" {
			cfg.LogLevel = "info"
		}
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = os.Getenv("LOG_FORMAT")
		if cfg.LogFormat == "" {
			cfg.LogFormat = "text"
		}
	}

	if cfg.MaxInFlight < 0 {
		cfg.MaxInFlight = 0
		if v := os.Getenv("MAX_IN_FLIGHT"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return Config{}, errors.New("invalid MAX_IN_FLIGHT env variable")
			}
			cfg.MaxInFlight = n
		}
	}

	// Secrets - MUST be provided
	if cfg.BotToken == "" {
		cfg.BotToken = os.Getenv("BOT_TOKEN")
	}
	if cfg.BotToken == "" {
		return Config{}, errors.New("BOT_TOKEN required")
	}

	if cfg.SessionSalt == "" {
		cfg.SessionSalt = os.Getenv("SESSION_SECRET")
	}
	if cfg.SessionSalt == "" {
		return Config{}, errors.New("SESSION_SECRET required")
	}

	return cfg, nil
}
