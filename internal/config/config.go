package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

const (
	DefaultTokenTTL       = time.Hour
	DefaultRequestTimeout = 30 * time.Second
)

type Config struct {
	Server         ServerConfig         `yaml:"server"`
	Token          TokenConfig          `yaml:"token"`
	Password       PasswordConfig       `yaml:"password"`
	PrincipalStore PrincipalStoreConfig `yaml:"principal_store"`
	Routes         []RouteConfig        `yaml:"routes"`
	Audit          AuditConfig          `yaml:"audit"`
	CORS           CORSConfig           `yaml:"cors"`
	LoginRateLimit RateLimitConfig      `yaml:"login_rate_limit"`
}

type ServerConfig struct {
	// Addr is the listen address of the API.
	Addr string `yaml:"addr"`

	// OpsAddr serves /healthz, /about and /metrics outside the route policy.
	// Empty disables the ops listener.
	OpsAddr string `yaml:"ops_addr"`

	// RequestTimeout bounds the handling of a single API request, including principal lookup.
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// TokenConfig holds the signing configuration for session tokens.
type TokenConfig struct {
	// Secret is the HMAC key. It can be overridden via POKEREVIEW_TOKEN_SECRET.
	Secret string `yaml:"secret"`

	// TTL is the lifetime of issued tokens.
	TTL time.Duration `yaml:"ttl"`

	// Issuer is written to and required in the "iss" claim, if set.
	Issuer string `yaml:"issuer"`
}

type PasswordConfig struct {
	// Cost is the bcrypt work factor, 0 selects the library default.
	Cost int `yaml:"cost"`
}

// PrincipalStoreConfig selects the credential backend.
type PrincipalStoreConfig struct {
	Type   string         `yaml:"type"`    // e.g., "memory", "sql"
	Config map[string]any `yaml:",inline"` // Capture remaining fields
}

// RouteConfig is a single entry of the route authorization table.
type RouteConfig struct {
	Pattern string `yaml:"pattern"`
	Access  string `yaml:"access"` // "public" or "authenticated"
	Expr    string `yaml:"expr"`
}

// AuditConfig holds configuration for auditing.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	Type    string `yaml:"type"` // e.g., "file", "memory"

	// Capacity bounds the memory auditor; zero uses the auditor's default.
	Capacity int `yaml:"capacity"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxAge         int      `yaml:"max_age"`
}

type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

// Load reads and parses the configuration file at the given path.
// It returns a Config struct or an error if loading/parsing/validation fails.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML data, applies defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config file: %w", err)
	}
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.ApplyDefaults()
	return &cfg
}

func (c *Config) ApplyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.RequestTimeout == 0 {
		c.Server.RequestTimeout = DefaultRequestTimeout
	}
	if c.Token.TTL == 0 {
		c.Token.TTL = DefaultTokenTTL
	}
	if c.PrincipalStore.Type == "" {
		c.PrincipalStore.Type = "memory"
	}
	if c.LoginRateLimit.Requests == 0 {
		c.LoginRateLimit.Requests = 10
	}
	if c.LoginRateLimit.Window == 0 {
		c.LoginRateLimit.Window = time.Minute
	}
	if c.CORS.MaxAge == 0 {
		c.CORS.MaxAge = 300
	}
}

// Validate checks values that can be checked without building components.
// The token secret is checked when the codec is built, since it may come from the environment.
func (c *Config) Validate() error {
	if c.Token.TTL < time.Second || c.Token.TTL%time.Second != 0 {
		return fmt.Errorf("token.ttl must be a positive whole number of seconds, got %s", c.Token.TTL)
	}
	if c.Server.RequestTimeout < 0 {
		return fmt.Errorf("server.request_timeout must be positive")
	}
	if c.LoginRateLimit.Requests < 0 || c.LoginRateLimit.Window < 0 {
		return fmt.Errorf("login_rate_limit must not be negative")
	}

	for idx, r := range c.Routes {
		if r.Pattern == "" {
			return fmt.Errorf("route at index %d has empty pattern", idx)
		}
		if r.Access == "" {
			return fmt.Errorf("route %q has empty access", r.Pattern)
		}
	}

	if c.Audit.Enabled {
		switch c.Audit.Type {
		case "memory":
		case "file":
			if c.Audit.Path == "" {
				return fmt.Errorf("audit.path is required for file auditing")
			}
		default:
			return fmt.Errorf("unknown audit type %q", c.Audit.Type)
		}
	}

	return nil
}
