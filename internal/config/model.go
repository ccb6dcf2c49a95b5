// internal/config/model.go
//
// Typed configuration model for the panel.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                               – dotenv values,
//   • `conf/panel.yaml`                             – primary static file,
//   • `PLAYERADMIN_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with `vault:` is resolved through the Vault
// client *before* unmarshalling, so the model never stores Vault URIs, only
// plain strings.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   • Durations accept Go syntax ("5s", "30m").
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr   string        `koanf:"listen_addr"   validate:"required,hostname_port"`
	ForceHTTPS   bool          `koanf:"force_https"`
	ReadTimeout  time.Duration `koanf:"read_timeout"  validate:"gte=0"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"gte=0"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"  validate:"gte=0"`
}

//
// Backend section
//

// Backend points at the players REST service.  BaseURL is the origin (and
// optional path prefix) under which `/rest/players` lives.
type Backend struct {
	BaseURL string        `koanf:"base_url" validate:"required,url"`
	Timeout time.Duration `koanf:"timeout"  validate:"gte=0"`
}

//
// Panel section
//

// Panel holds UI behaviour.
type Panel struct {
	DefaultPageSize int    `koanf:"default_page_size" validate:"oneof=5 10 15 20"`
	DateLayout      string `koanf:"date_layout"`
	CSRFKey         string `koanf:"csrf_key"` // base64url, ≥32 bytes; usually a vault: ref
	TemplateDir     string `koanf:"template_dir"`
	NoCache         bool   `koanf:"no_cache"`
}

//
// State section
//

// State selects where per-session pagination state is kept and how long
// idle panels stay in memory.
type State struct {
	Driver        string        `koanf:"driver"         validate:"oneof=memory mysql redis"`
	MySQLDSN      string        `koanf:"mysql_dsn"      validate:"required_if=Driver mysql"`
	RedisAddr     string        `koanf:"redis_addr"     validate:"required_if=Driver redis"`
	RedisPassword string        `koanf:"redis_password"`
	RedisDB       int           `koanf:"redis_db"       validate:"gte=0"`
	TTL           time.Duration `koanf:"ttl"            validate:"gte=0"` // stored state lifetime
	IdleTTL       time.Duration `koanf:"idle_ttl"       validate:"gte=0"`
	MaxEntries    int           `koanf:"max_entries"    validate:"gte=0"`
	EvictInterval time.Duration `koanf:"evict_interval" validate:"gte=0"`
}

//
// Logging and GeoIP sections
//

// Logging controls the zap logger.  Dir is relative to Paths.Root unless
// absolute.
type Logging struct {
	Dir   string `koanf:"dir"`
	Level string `koanf:"level" validate:"omitempty,oneof=debug info warn error"`
	Tee   bool   `koanf:"tee"`
}

// GeoIP points at an optional GeoLite2-City database.
type GeoIP struct {
	DBPath string `koanf:"db_path"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.
type Paths struct {
	Root string // PLAYERADMIN_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP    HTTP    `koanf:"http"`
	Backend Backend `koanf:"backend"`
	Panel   Panel   `koanf:"panel"`
	State   State   `koanf:"state"`
	Logging Logging `koanf:"logging"`
	GeoIP   GeoIP   `koanf:"geoip"`
	Paths   Paths   `koanf:"-"`
}

// applyDefaults fills zero values that have a sensible default.
func (c *Config) applyDefaults() {
	if c.HTTP.ListenAddr == "" {
		c.HTTP.ListenAddr = ":8080"
	}
	if c.Backend.Timeout == 0 {
		c.Backend.Timeout = 10 * time.Second
	}
	if c.Panel.DefaultPageSize == 0 {
		c.Panel.DefaultPageSize = 5
	}
	if c.State.Driver == "" {
		c.State.Driver = "memory"
	}
	if c.State.TTL == 0 {
		c.State.TTL = 30 * 24 * time.Hour
	}
	if c.Logging.Dir == "" {
		c.Logging.Dir = "logs"
	}
}
