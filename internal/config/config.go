package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// MaxListLimit is the hard cap on rows returned by the list view.
const MaxListLimit = 50

// Config holds application configuration.
type Config struct {
	// DatabaseURL selects the storage target.
	// postgres:// and postgresql:// URLs use Postgres; anything else is a SQLite path.
	DatabaseURL string `json:"database_url,omitempty"`

	// Host and Port form the HTTP listen address.
	Host string `json:"host,omitempty"`
	Port int    `json:"port,omitempty"`

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	// Used for local add-in development; see `notepane certs`.
	TLSCertFile string `json:"tls_cert_file,omitempty"`
	TLSKeyFile  string `json:"tls_key_file,omitempty"`

	// CORSOrigin is the allowed origin for cross-origin requests.
	CORSOrigin string `json:"cors_origin,omitempty"`

	// ListLimit is the number of rows shown by the list view (capped at MaxListLimit).
	ListLimit int `json:"list_limit,omitempty"`

	// MaxNoteChars rejects note text longer than this many characters.
	MaxNoteChars int `json:"max_note_chars,omitempty"`

	// DBReuseConns keeps released connections idle for reuse.
	// By default every operation opens a fresh connection and closes it on return.
	// Nil means unset, so an explicit false in an overlay still wins.
	DBReuseConns *bool `json:"db_reuse_conns,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// LookupFunc reads a single environment value, like os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Host:         "localhost",
		Port:         3000,
		CORSOrigin:   "*",
		ListLimit:    MaxListLimit,
		MaxNoteChars: 100000,
	}
}

// Addr returns the host:port listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// TLSEnabled reports whether a certificate/key pair is configured.
func (c *Config) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// ReuseConns reports whether released connections are kept idle.
func (c *Config) ReuseConns() bool {
	return c.DBReuseConns != nil && *c.DBReuseConns
}

// EffectiveListLimit returns ListLimit bounded to (0, MaxListLimit].
func (c *Config) EffectiveListLimit() int {
	if c.ListLimit <= 0 || c.ListLimit > MaxListLimit {
		return MaxListLimit
	}
	return c.ListLimit
}

// Load loads configuration from an optional JSON file and merges it over defaults.
// An empty path or a missing file yields the default config.
func Load(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	cfg, err := loadFileRaw(path)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// LoadWithEnv applies defaults, then the JSON file at path, then the environment.
// Environment values take precedence over the file.
func LoadWithEnv(path string, lookup LookupFunc) (*Config, error) {
	fileCfg, err := loadFileRaw(path)
	if err != nil {
		return nil, err
	}
	envCfg, err := FromEnv(lookup)
	if err != nil {
		return nil, err
	}
	return Merge(Merge(DefaultConfig(), fileCfg), envCfg), nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given .env files into the process
// environment. Missing files are skipped; existing variables are not overridden.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// FromEnv builds an overlay config from environment values.
// Unset keys leave zero values so Merge keeps the base.
func FromEnv(lookup LookupFunc) (*Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	cfg := &Config{
		DatabaseURL: get("DATABASE_URL"),
		Host:        get("HOST"),
		TLSCertFile: get("TLS_CERT_FILE"),
		TLSKeyFile:  get("TLS_KEY_FILE"),
		CORSOrigin:  get("CORS_ORIGIN"),
	}

	if v := get("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("invalid PORT %q", v)
		}
		cfg.Port = port
	}
	if v := get("NOTES_LIST_LIMIT"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 {
			return nil, fmt.Errorf("invalid NOTES_LIST_LIMIT %q", v)
		}
		cfg.ListLimit = limit
	}
	if v := get("DB_REUSE_CONNS"); v != "" {
		reuse, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid DB_REUSE_CONNS %q", v)
		}
		cfg.DBReuseConns = &reuse
	}

	return cfg, nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the path is empty or the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.DatabaseURL = firstNonEmpty(overlay.DatabaseURL, base.DatabaseURL)
	result.Host = firstNonEmpty(overlay.Host, base.Host)
	result.TLSCertFile = firstNonEmpty(overlay.TLSCertFile, base.TLSCertFile)
	result.TLSKeyFile = firstNonEmpty(overlay.TLSKeyFile, base.TLSKeyFile)
	result.CORSOrigin = firstNonEmpty(overlay.CORSOrigin, base.CORSOrigin)

	result.Port = overlay.Port
	if result.Port == 0 {
		result.Port = base.Port
	}

	result.ListLimit = overlay.ListLimit
	if result.ListLimit == 0 {
		result.ListLimit = base.ListLimit
	}

	result.MaxNoteChars = overlay.MaxNoteChars
	if result.MaxNoteChars == 0 {
		result.MaxNoteChars = base.MaxNoteChars
	}

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	// Booleans: overlay wins when set, else base
	result.DBReuseConns = overlay.DBReuseConns
	if result.DBReuseConns == nil {
		result.DBReuseConns = base.DBReuseConns
	}

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
