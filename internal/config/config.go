// Package config reads the environment into an immutable Config.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"tournament-stats/internal/ratelimit"
)

// ErrInvalid marks a configuration problem. The CLI exits with status 2.
var ErrInvalid = errors.New("invalid configuration")

const (
	TierDev        = "dev"
	TierProduction = "production"
)

// Config is built once by Load and passed to constructors by value.
type Config struct {
	RiotAPIKey string
	Region     string
	KeyTier    string
	// APIDelay is the minimum spacing between Riot calls
	APIDelay time.Duration

	Codes []string

	CredentialsFile string
	SpreadsheetID   string
	SpreadsheetName string
	Worksheet       string

	Location       *time.Location
	MaxAttempts    int
	RetryBaseDelay time.Duration

	DiscordWebhookURL string
}

// EnvPaths are tried in order by LoadEnv.
var EnvPaths = []string{".env", "../.env"}

// LoadEnv loads the first .env file found and returns its path, or "" when
// none exists. Variables already set in the environment win.
func LoadEnv(paths ...string) string {
	if len(paths) == 0 {
		paths = EnvPaths
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err == nil {
			return path
		}
	}
	log.Println("No .env file found, using environment variables")
	return ""
}

// Load parses the process environment. Call LoadEnv first to pick up a
// .env file.
func Load() (Config, error) {
	cfg := Config{
		Region:          envOr("RIOT_REGION", "americas"),
		KeyTier:         strings.ToLower(envOr("RIOT_KEY_TIER", TierDev)),
		CredentialsFile: envOr("GOOGLE_CREDENTIALS_FILE", "credentials.json"),
		SpreadsheetID:   strings.TrimSpace(os.Getenv("SPREADSHEET_ID")),
		SpreadsheetName: envOr("SPREADSHEET_NAME", "Tournament Stats"),
		Worksheet:       envOr("WORKSHEET_NAME", "Sheet1"),

		DiscordWebhookURL: strings.TrimSpace(os.Getenv("DISCORD_WEBHOOK_URL")),
	}

	cfg.RiotAPIKey = strings.TrimSpace(os.Getenv("RIOT_API_KEY"))
	if cfg.RiotAPIKey == "" {
		cfg.RiotAPIKey = strings.TrimSpace(os.Getenv("RIOT-DEV-KEY"))
	}
	if cfg.RiotAPIKey == "" {
		return Config{}, fmt.Errorf("%w: RIOT_API_KEY is not set", ErrInvalid)
	}

	if cfg.KeyTier != TierDev && cfg.KeyTier != TierProduction {
		return Config{}, fmt.Errorf("%w: RIOT_KEY_TIER must be %q or %q, got %q", ErrInvalid, TierDev, TierProduction, cfg.KeyTier)
	}

	var err error
	if cfg.APIDelay, err = parseDelay("RIOT_API_DELAY", 1200*time.Millisecond); err != nil {
		return Config{}, err
	}
	if cfg.RetryBaseDelay, err = parseDelay("RETRY_BASE_DELAY", 2*time.Second); err != nil {
		return Config{}, err
	}

	cfg.MaxAttempts = 3
	if v := strings.TrimSpace(os.Getenv("MAX_ATTEMPTS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Config{}, fmt.Errorf("%w: MAX_ATTEMPTS must be a positive integer, got %q", ErrInvalid, v)
		}
		cfg.MaxAttempts = n
	}

	if cfg.Location, err = ParseLocation(envOr("GAME_TIMEZONE", "America/New_York")); err != nil {
		return Config{}, err
	}

	cfg.Codes = ParseCodes(os.Getenv("TOURNAMENT_CODES"))
	if path := strings.TrimSpace(os.Getenv("TOURNAMENT_CODES_FILE")); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("%w: read TOURNAMENT_CODES_FILE: %v", ErrInvalid, err)
		}
		cfg.Codes = append(cfg.Codes, ParseCodes(string(data))...)
	}
	if len(cfg.Codes) == 0 {
		return Config{}, fmt.Errorf("%w: no tournament codes (set TOURNAMENT_CODES or TOURNAMENT_CODES_FILE)", ErrInvalid)
	}

	return cfg, nil
}

// RateWindows returns the Riot limits for the configured key tier.
func (c Config) RateWindows() []ratelimit.Window {
	if c.KeyTier == TierProduction {
		return ratelimit.ProductionWindows()
	}
	return ratelimit.DevWindows()
}

// ParseCodes splits s on commas and newlines. Entries are trimmed; blanks
// and lines starting with # are dropped. Order is kept.
func ParseCodes(s string) []string {
	var codes []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			continue
		}
		for _, code := range strings.Split(line, ",") {
			if code = strings.TrimSpace(code); code != "" {
				codes = append(codes, code)
			}
		}
	}
	return codes
}

// ParseLocation accepts an IANA zone name ("America/New_York") or a whole
// hour UTC offset ("-5").
func ParseLocation(s string) (*time.Location, error) {
	s = strings.TrimSpace(s)
	if hours, err := strconv.Atoi(s); err == nil {
		if hours < -12 || hours > 14 {
			return nil, fmt.Errorf("%w: GAME_TIMEZONE offset out of range: %d", ErrInvalid, hours)
		}
		return time.FixedZone(fmt.Sprintf("UTC%+d", hours), hours*3600), nil
	}
	loc, err := time.LoadLocation(s)
	if err != nil {
		return nil, fmt.Errorf("%w: GAME_TIMEZONE: %v", ErrInvalid, err)
	}
	return loc, nil
}

// parseDelay reads a Go duration ("1500ms") or plain seconds ("1.2").
func parseDelay(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil && secs >= 0 {
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: %s must be a duration or seconds, got %q", ErrInvalid, key, v)
	}
	return d, nil
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
