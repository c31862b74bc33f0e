package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"tagboard/internal/storage"
)

// DefaultCategoryCaps is used when TAG_TREE_CATEGORY_CAPS is unset.
const DefaultCategoryCaps = "artist:15,copyright:15,character:20,general:40,meta:10"

// Config holds all configuration for the application.
type Config struct {
	DBPath      string
	DBAuthToken string
	APIPort     string
	AdminToken  string

	LogLevel  slog.Level
	LogFormat string

	PageSize            int
	NotePageSize        int
	WildcardTagLimit    int
	WildcardMinLiterals int
	NoteMinQueryLength  int
	NoteCandidateLimit  int

	TagIDCacheSize    int
	PostSetCacheSize  int
	WildcardCacheSize int
	WildcardCacheTTL  time.Duration
	TagTreeCacheSize  int
	TagTreeCacheTTL   time.Duration
	BrowseCacheTTL    time.Duration
	NoteCacheSize     int
	NoteCacheTTL      time.Duration

	CategoryCaps map[storage.Category]int
	TagBlacklist []string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates every value.
// If a .env file exists in the current directory or project root, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	// Check current directory first, then walk up to find project root (where go.mod is)
	_ = godotenv.Load() // Try current directory

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break // Reached filesystem root
			}
			dir = parent
		}
	}

	cfg := &Config{
		DBPath:      getEnv("DB_PATH", "./data/tagboard.db"),
		DBAuthToken: getEnv("DB_AUTH_TOKEN", ""),
		APIPort:     getEnv("API_PORT", "9000"),
		AdminToken:  getEnv("ADMIN_TOKEN", ""),
		LogFormat:   strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	if cfg.LogLevel, err = parseLogLevel(getEnv("LOG_LEVEL", "info")); err != nil {
		return nil, err
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	ints := []struct {
		key  string
		def  int
		dest *int
	}{
		{"PAGE_SIZE", 40, &cfg.PageSize},
		{"NOTE_PAGE_SIZE", 20, &cfg.NotePageSize},
		{"WILDCARD_TAG_LIMIT", 500, &cfg.WildcardTagLimit},
		{"WILDCARD_MIN_LITERALS", 2, &cfg.WildcardMinLiterals},
		{"NOTE_MIN_QUERY_LENGTH", 3, &cfg.NoteMinQueryLength},
		{"NOTE_CANDIDATE_LIMIT", 2000, &cfg.NoteCandidateLimit},
		{"TAG_ID_CACHE_SIZE", 10000, &cfg.TagIDCacheSize},
		{"POST_SET_CACHE_SIZE", 256, &cfg.PostSetCacheSize},
		{"WILDCARD_CACHE_SIZE", 1024, &cfg.WildcardCacheSize},
		{"TAG_TREE_CACHE_SIZE", 512, &cfg.TagTreeCacheSize},
		{"NOTE_CACHE_SIZE", 256, &cfg.NoteCacheSize},
	}
	for _, v := range ints {
		if *v.dest, err = getPositiveInt(v.key, v.def); err != nil {
			return nil, err
		}
	}

	durations := []struct {
		key  string
		def  time.Duration
		dest *time.Duration
	}{
		{"WILDCARD_CACHE_TTL", 5 * time.Minute, &cfg.WildcardCacheTTL},
		{"TAG_TREE_CACHE_TTL", 2 * time.Minute, &cfg.TagTreeCacheTTL},
		{"BROWSE_CACHE_TTL", time.Hour, &cfg.BrowseCacheTTL},
		{"NOTE_CACHE_TTL", 2 * time.Minute, &cfg.NoteCacheTTL},
	}
	for _, v := range durations {
		if *v.dest, err = getDuration(v.key, v.def); err != nil {
			return nil, err
		}
	}

	if cfg.CategoryCaps, err = ParseCategoryCaps(getEnv("TAG_TREE_CATEGORY_CAPS", DefaultCategoryCaps)); err != nil {
		return nil, fmt.Errorf("TAG_TREE_CATEGORY_CAPS: %w", err)
	}
	cfg.TagBlacklist = splitList(getEnv("TAG_BLACKLIST", ""))

	// Create the data directory for local database files
	if !storage.IsRemoteDSN(cfg.DBPath) {
		dataDir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	return cfg, nil
}

// ParseCategoryCaps parses "category:n" pairs separated by commas. Category names
// are case-insensitive; a cap of 0 leaves the category out of the no-selection listing.
func ParseCategoryCaps(s string) (map[storage.Category]int, error) {
	caps := make(map[storage.Category]int)
	for _, pair := range splitList(s) {
		name, rawCap, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, fmt.Errorf("invalid cap %q, want category:n", pair)
		}
		category, known := storage.ParseCategory(name)
		if !known {
			return nil, fmt.Errorf("unknown category %q", name)
		}
		n, err := strconv.Atoi(strings.TrimSpace(rawCap))
		if err != nil {
			return nil, fmt.Errorf("cap for %s must be a valid integer: %w", category, err)
		}
		if n < 0 {
			return nil, fmt.Errorf("cap for %s must not be negative", category)
		}
		caps[category] = n
	}
	return caps, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getPositiveInt(key string, defaultValue int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}
	return n, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid duration: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}
	return d, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL must be debug, info, warn or error: %w", err)
	}
	return level, nil
}

// splitList splits a comma-separated value, dropping blank entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
