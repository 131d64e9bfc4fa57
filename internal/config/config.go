package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Vulnerability source kinds.
const (
	SourceNVD   = "nvd"
	SourceLocal = "local"
)

// Config holds all application configuration.
type Config struct {
	Addr   string
	DBPath string
	Debug  bool

	// OUIDBPath is an optional IEEE registry built by oui_import.
	OUIDBPath    string
	OUICacheSize int

	CVESource  string
	CVEAPIURL  string
	CVEAPIKey  string
	CVEDBPath  string
	CVETimeout time.Duration
	CVEResults int

	Workers         int
	FallbackVendors []string

	AdminUser     string
	AdminPassword string
}

// Load parses command line flags and environment variables to populate Config.
// Flags take precedence over environment variables.
func Load() *Config {
	cfg, err := Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

// Parse populates Config from the environment, then from args using fs.
func Parse(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{}
	dataDir := getDefaultDataDir()

	cfg.Addr = getEnv("IOTSEC_ADDR", ":8080")
	cfg.DBPath = getEnv("IOTSEC_DB", filepath.Join(dataDir, "iotsec.db"))
	cfg.Debug = getEnvBool("IOTSEC_DEBUG", false)
	cfg.OUIDBPath = getEnv("IOTSEC_OUI_DB", "")
	cfg.OUICacheSize = getEnvInt("IOTSEC_OUI_CACHE", 1000)
	cfg.CVESource = getEnv("IOTSEC_CVE_SOURCE", SourceNVD)
	cfg.CVEAPIURL = getEnv("IOTSEC_CVE_API_URL", "https://services.nvd.nist.gov/rest/json/cves/2.0")
	cfg.CVEAPIKey = getEnv("IOTSEC_CVE_API_KEY", "")
	cfg.CVEDBPath = getEnv("IOTSEC_CVE_DB", filepath.Join(dataDir, "cve.db"))
	cfg.CVETimeout = getEnvDuration("IOTSEC_CVE_TIMEOUT", 10*time.Second)
	cfg.CVEResults = getEnvInt("IOTSEC_CVE_RESULTS", 20)
	cfg.Workers = getEnvInt("IOTSEC_WORKERS", 8)
	fallback := getEnv("IOTSEC_FALLBACK_VENDORS", "")
	cfg.AdminUser = getEnv("IOTSEC_ADMIN_USER", "admin")
	cfg.AdminPassword = getEnv("IOTSEC_ADMIN_PASSWORD", "")

	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP server address")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to SQLite database")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable verbose debug logging")
	fs.StringVar(&cfg.OUIDBPath, "oui-db", cfg.OUIDBPath, "Path to OUI registry database (empty to use built-in table only)")
	fs.IntVar(&cfg.OUICacheSize, "oui-cache", cfg.OUICacheSize, "OUI lookup cache size")
	fs.StringVar(&cfg.CVESource, "cve-source", cfg.CVESource, "Vulnerability source: nvd or local")
	fs.StringVar(&cfg.CVEAPIURL, "cve-api-url", cfg.CVEAPIURL, "NVD CVE API endpoint")
	fs.StringVar(&cfg.CVEAPIKey, "cve-api-key", cfg.CVEAPIKey, "NVD API key")
	fs.StringVar(&cfg.CVEDBPath, "cve-db", cfg.CVEDBPath, "Path to local CVE mirror")
	fs.DurationVar(&cfg.CVETimeout, "cve-timeout", cfg.CVETimeout, "Per-call vulnerability source timeout")
	fs.IntVar(&cfg.CVEResults, "cve-results", cfg.CVEResults, "Results requested per vendor query")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "Concurrent device pipelines")
	fs.StringVar(&fallback, "fallback-vendors", fallback, "Vendors queried when a lookup names no vendor (comma separated)")
	fs.StringVar(&cfg.AdminUser, "admin-user", cfg.AdminUser, "Initial operator username")
	fs.StringVar(&cfg.AdminPassword, "admin-password", cfg.AdminPassword, "Initial operator password (empty to skip provisioning)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.FallbackVendors = splitList(fallback)
	return cfg, cfg.Validate()
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch c.CVESource {
	case SourceNVD, SourceLocal:
	default:
		return fmt.Errorf("unknown cve source %q", c.CVESource)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.CVETimeout <= 0 {
		return fmt.Errorf("cve timeout must be positive, got %s", c.CVETimeout)
	}
	if c.CVEResults <= 0 {
		return fmt.Errorf("cve results must be positive, got %d", c.CVEResults)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// getDefaultDataDir returns ~/.iotsec, creating it if needed, or the
// current directory when that fails.
func getDefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Printf("Warning: Could not get user home directory, using current dir: %v", err)
		return "."
	}

	dir := filepath.Join(home, ".iotsec")
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Printf("Warning: Could not create .iotsec directory, using current dir: %v", err)
		return "."
	}
	return dir
}
