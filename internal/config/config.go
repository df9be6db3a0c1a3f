package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Evaluation modes accepted by geofence.default_mode.
const (
	ModeDirectory = "directory"
	ModeDiscovery = "discovery"
)

// Config holds the configuration settings for the geofence service.
//
// Fields:
// - Env: The current environment (e.g., local, development, production).
// - HTTP: Settings of the public API server.
// - Provider: The upstream spatial-feature service used for discovery.
// - Geocoder: The reverse geocoding service used to describe points.
// - Geofence: Evaluation defaults.
// - Directory: How the in-memory building directory is seeded.
// - Database: Optional PostgreSQL source of predefined buildings.
// - Redis: Optional cache of discovery results.
type Config struct {
	Env       string          `mapstructure:"env"`       // Env is the current environment: local, development, production.
	HTTP      HTTPConfig      `mapstructure:"http"`      // HTTP holds the API server configuration.
	Provider  ProviderConfig  `mapstructure:"provider"`  // Provider selects and tunes the spatial data provider.
	Geocoder  GeocoderConfig  `mapstructure:"geocoder"`  // Geocoder selects the reverse geocoding provider.
	Geofence  GeofenceConfig  `mapstructure:"geofence"`  // Geofence holds evaluation defaults.
	Directory DirectoryConfig `mapstructure:"directory"` // Directory controls seeding.
	Database  PostgresConfig  `mapstructure:"postgres"`  // Database holds the postgres database configuration.
	Redis     RedisConfig     `mapstructure:"redis"`     // Redis holds the discovery cache configuration.
}

type HTTPConfig struct {
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type ProviderConfig struct {
	Type      string        `mapstructure:"type"`       // overpass or google
	APIKey    string        `mapstructure:"api_key"`    // required for google
	BaseURL   string        `mapstructure:"base_url"`   // Overpass interpreter override
	UserAgent string        `mapstructure:"user_agent"` // Overpass User-Agent override
	Timeout   time.Duration `mapstructure:"timeout"`    // per-request timeout
	RateLimit int           `mapstructure:"rate_limit"` // requests per second, 0 disables limiting
}

type GeocoderConfig struct {
	Type      string        `mapstructure:"type"`       // nominatim, google or none
	APIKey    string        `mapstructure:"api_key"`    // required for google
	BaseURL   string        `mapstructure:"base_url"`   // Nominatim endpoint override
	UserAgent string        `mapstructure:"user_agent"` // Nominatim User-Agent override
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit int           `mapstructure:"rate_limit"`
}

type GeofenceConfig struct {
	DefaultRadiusMeters float64 `mapstructure:"default_radius_meters"`
	MaxBuildings        int     `mapstructure:"max_buildings"`
	DiscoveryBuffer     float64 `mapstructure:"discovery_buffer"`
	DefaultMode         string  `mapstructure:"default_mode"`
}

type DirectoryConfig struct {
	SeedExamples bool          `mapstructure:"seed_examples"`
	SeedLimit    int           `mapstructure:"seed_limit"`    // max rows read from postgres
	SyncInterval time.Duration `mapstructure:"sync_interval"` // 0 loads from postgres once
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
// An empty Host disables database seeding.
type PostgresConfig struct {
	Host     string `mapstructure:"host"`     // Host is the database server address.
	Port     string `mapstructure:"port"`     // Port is the database server port.
	User     string `mapstructure:"user"`     // User is the database user.
	Password string `mapstructure:"password"` // Password is the database user's password.
	Name     string `mapstructure:"db_name"`  // Name is the name of the database.
}

// RedisConfig configures the discovery cache. An empty Addr disables caching.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// Load reads configuration from .env, an optional YAML file named by
// PERIMETER_CONFIG_FILE and PERIMETER_* environment variables, in increasing priority.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path := os.Getenv("PERIMETER_CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	// PERIMETER_GEOFENCE_MAX_BUILDINGS -> geofence.max_buildings
	v.SetEnvPrefix("PERIMETER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Database settings keep the unprefixed names shared with other services.
	for key, env := range map[string]string{
		"postgres.host":     "DB_HOST",
		"postgres.port":     "DB_PORT",
		"postgres.user":     "DB_USERNAME",
		"postgres.password": "DB_PASSWORD",
		"postgres.db_name":  "DB_NAME",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad is like Load but panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "production")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.shutdown_timeout", 10*time.Second)
	v.SetDefault("provider.type", "overpass")
	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.base_url", "")
	v.SetDefault("provider.user_agent", "")
	v.SetDefault("provider.timeout", 10*time.Second)
	v.SetDefault("provider.rate_limit", 1)
	v.SetDefault("geocoder.type", "nominatim")
	v.SetDefault("geocoder.api_key", "")
	v.SetDefault("geocoder.base_url", "")
	v.SetDefault("geocoder.user_agent", "")
	v.SetDefault("geocoder.timeout", 5*time.Second)
	v.SetDefault("geocoder.rate_limit", 1)
	v.SetDefault("geofence.default_radius_meters", 100.0)
	v.SetDefault("geofence.max_buildings", 50)
	v.SetDefault("geofence.discovery_buffer", 1.2)
	v.SetDefault("geofence.default_mode", ModeDirectory)
	v.SetDefault("directory.seed_examples", true)
	v.SetDefault("directory.seed_limit", 1000)
	v.SetDefault("directory.sync_interval", time.Duration(0))
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 5*time.Minute)
}

// Validate checks that configuration values are present and sane.
func (c *Config) Validate() error {
	var errs []error

	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("http.port must be 1-65535, got %d", c.HTTP.Port))
	}
	if c.Provider.Timeout <= 0 {
		errs = append(errs, errors.New("provider.timeout must be positive"))
	}
	if c.Provider.RateLimit < 0 {
		errs = append(errs, errors.New("provider.rate_limit must not be negative"))
	}
	if c.Geocoder.Type != "none" && c.Geocoder.Timeout <= 0 {
		errs = append(errs, errors.New("geocoder.timeout must be positive"))
	}
	if c.Geocoder.RateLimit < 0 {
		errs = append(errs, errors.New("geocoder.rate_limit must not be negative"))
	}
	if c.Geofence.DefaultRadiusMeters <= 0 {
		errs = append(errs, errors.New("geofence.default_radius_meters must be positive"))
	}
	if c.Geofence.MaxBuildings <= 0 {
		errs = append(errs, errors.New("geofence.max_buildings must be positive"))
	}
	if c.Geofence.DiscoveryBuffer < 1 {
		errs = append(errs, errors.New("geofence.discovery_buffer must be at least 1"))
	}
	if c.Geofence.DefaultMode != ModeDirectory && c.Geofence.DefaultMode != ModeDiscovery {
		errs = append(errs, fmt.Errorf("geofence.default_mode must be %q or %q, got %q",
			ModeDirectory, ModeDiscovery, c.Geofence.DefaultMode))
	}
	if c.Directory.SeedLimit <= 0 {
		errs = append(errs, errors.New("directory.seed_limit must be positive"))
	}
	if c.Directory.SyncInterval < 0 {
		errs = append(errs, errors.New("directory.sync_interval must not be negative"))
	}
	if c.Redis.Addr != "" && c.Redis.TTL <= 0 {
		errs = append(errs, errors.New("redis.ttl must be positive when redis.addr is set"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %w", errors.Join(errs...))
	}
	return nil
}
