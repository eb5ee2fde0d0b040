// Package config handles toolkit configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/genelookup"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/graphload"
	"github.com/collaborativebioinformatics/Adding-Datasets-to-KG/internal/storage"
)

// DefaultLedgerPath is where the run ledger lives when MIDAS_LEDGER_PATH is unset.
const DefaultLedgerPath = ".midas/ledger.sqlite"

// Neo4jConfig holds the optional graph database connection settings.
type Neo4jConfig struct {
	URI         string
	User        string
	Password    string
	Database    string
	Timeout     time.Duration
	MaxPoolSize int
}

// Config holds the process-wide settings read from the environment.
type Config struct {
	LogLevel   string // debug, info, warn, error (default "info")
	LogFormat  string // text (default) or json
	LedgerPath string // SQLite run ledger

	GeneLookupURL     string
	GeneLookupTimeout time.Duration
	GeneLookupRPS     float64

	PublishURI string // default publish target for pipeline runs (optional)

	// S3 fields are optional; nil when not configured.
	S3KeyID    *string
	S3Secret   *string
	S3Endpoint *string
	S3Region   *string
	S3URLStyle string

	GCSKeyFile       string
	AzureAccountName string
	AzureAccountKey  string

	Neo4j Neo4jConfig

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// JSONLogs reports whether logs should be emitted as JSON.
func (c *Config) JSONLogs() bool {
	return strings.EqualFold(c.LogFormat, "json")
}

// HasS3Config returns true if the S3 key pair is set.
func (c *Config) HasS3Config() bool {
	return c.S3KeyID != nil && c.S3Secret != nil
}

// StorageCredentials returns the object store credentials for publishers.
func (c *Config) StorageCredentials() storage.Credentials {
	return storage.Credentials{
		S3Endpoint:       deref(c.S3Endpoint),
		S3Region:         deref(c.S3Region),
		S3KeyID:          deref(c.S3KeyID),
		S3Secret:         deref(c.S3Secret),
		S3URLStyle:       c.S3URLStyle,
		GCSKeyFile:       c.GCSKeyFile,
		AzureAccountName: c.AzureAccountName,
		AzureAccountKey:  c.AzureAccountKey,
	}
}

// GeneLookup returns the MyGene.info client settings.
func (c *Config) GeneLookup() genelookup.Config {
	return genelookup.Config{
		URL:               c.GeneLookupURL,
		Timeout:           c.GeneLookupTimeout,
		RequestsPerSecond: c.GeneLookupRPS,
	}
}

// Graph returns the Neo4j loader settings. The loader is disabled when the URI is empty.
func (c *Config) Graph() graphload.Config {
	return graphload.Config{
		URI:         c.Neo4j.URI,
		User:        c.Neo4j.User,
		Password:    c.Neo4j.Password,
		Database:    c.Neo4j.Database,
		Timeout:     c.Neo4j.Timeout,
		MaxPoolSize: c.Neo4j.MaxPoolSize,
	}
}

// LoadFromEnv loads configuration from environment variables.
// Object store and Neo4j variables are optional.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		LogLevel:         os.Getenv("MIDAS_LOG_LEVEL"),
		LogFormat:        strings.ToLower(os.Getenv("MIDAS_LOG_FORMAT")),
		LedgerPath:       os.Getenv("MIDAS_LEDGER_PATH"),
		GeneLookupURL:    os.Getenv("MIDAS_GENE_LOOKUP_URL"),
		PublishURI:       os.Getenv("MIDAS_PUBLISH_URI"),
		S3URLStyle:       firstEnv("MIDAS_S3_URL_STYLE", "URL_STYLE"),
		GCSKeyFile:       os.Getenv("MIDAS_GCS_KEY_FILE"),
		AzureAccountName: os.Getenv("MIDAS_AZURE_ACCOUNT_NAME"),
		AzureAccountKey:  os.Getenv("MIDAS_AZURE_ACCOUNT_KEY"),
		Neo4j: Neo4jConfig{
			URI:      os.Getenv("NEO4J_URI"),
			User:     os.Getenv("NEO4J_USER"),
			Password: os.Getenv("NEO4J_PASSWORD"),
			Database: os.Getenv("NEO4J_DATABASE"),
		},
	}

	if v := os.Getenv("MIDAS_GENE_LOOKUP_TIMEOUT"); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("MIDAS_GENE_LOOKUP_TIMEOUT: %w", err)
		}
		cfg.GeneLookupTimeout = d
	}
	if v := os.Getenv("MIDAS_GENE_LOOKUP_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return nil, fmt.Errorf("MIDAS_GENE_LOOKUP_RPS: invalid rate %q", v)
		}
		cfg.GeneLookupRPS = f
	}

	// S3 fields are optional; only set if present. The unprefixed names
	// match the DuckDB secret variables used by the data platform.
	if v := firstEnv("MIDAS_S3_KEY_ID", "KEY_ID"); v != "" {
		cfg.S3KeyID = &v
	}
	if v := firstEnv("MIDAS_S3_SECRET", "SECRET"); v != "" {
		cfg.S3Secret = &v
	}
	if v := firstEnv("MIDAS_S3_ENDPOINT", "ENDPOINT"); v != "" {
		cfg.S3Endpoint = &v
	}
	if v := firstEnv("MIDAS_S3_REGION", "REGION"); v != "" {
		cfg.S3Region = &v
	}

	if v := os.Getenv("NEO4J_TIMEOUT_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("NEO4J_TIMEOUT_SECONDS: invalid value %q", v)
		}
		cfg.Neo4j.Timeout = time.Duration(n) * time.Second
	}
	if v := os.Getenv("NEO4J_MAX_POOL_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("NEO4J_MAX_POOL_SIZE: invalid value %q", v)
		}
		cfg.Neo4j.MaxPoolSize = n
	}
	// NEO4J_ENABLED=false keeps the connection settings but skips loading.
	if !parseBoolEnvDefault("NEO4J_ENABLED", true) {
		cfg.Neo4j.URI = ""
	}

	// Defaults
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	switch cfg.LogFormat {
	case "":
		cfg.LogFormat = "text"
	case "text", "json":
	default:
		cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("unknown MIDAS_LOG_FORMAT %q, using text", cfg.LogFormat))
		cfg.LogFormat = "text"
	}
	if cfg.LedgerPath == "" {
		cfg.LedgerPath = DefaultLedgerPath
	}
	if cfg.GeneLookupURL == "" {
		cfg.GeneLookupURL = genelookup.DefaultURL
	}
	if cfg.GeneLookupTimeout == 0 {
		cfg.GeneLookupTimeout = genelookup.DefaultTimeout
	}
	if (cfg.S3KeyID == nil) != (cfg.S3Secret == nil) {
		cfg.Warnings = append(cfg.Warnings, "only one of the S3 key id and secret is set; s3:// publishing will fail")
	}
	if (cfg.AzureAccountName == "") != (cfg.AzureAccountKey == "") {
		cfg.Warnings = append(cfg.Warnings, "MIDAS_AZURE_ACCOUNT_NAME and MIDAS_AZURE_ACCOUNT_KEY must be set together")
	}
	if cfg.Neo4j.URI != "" && cfg.Neo4j.User == "" {
		cfg.Warnings = append(cfg.Warnings, "NEO4J_URI is set without NEO4J_USER")
	}
	return cfg, nil
}

// parseDuration accepts a Go duration ("45s") or a bare number of seconds.
func parseDuration(v string) (time.Duration, error) {
	if n, err := strconv.Atoi(v); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative duration %q", v)
		}
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", v)
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", v)
	}
	return d, nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func parseBoolEnvDefault(key string, defaultVal bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	if v == "" {
		return defaultVal
	}
	if v == "0" || v == "false" || v == "no" || v == "off" {
		return false
	}
	if v == "1" || v == "true" || v == "yes" || v == "on" {
		return true
	}
	return defaultVal
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil // .env not found is not an error
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = stripQuotes(strings.TrimSpace(value))
		// Only set if not already in the environment (env vars take precedence)
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes from a value.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
