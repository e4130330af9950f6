package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	NATS        NATSConfig        `mapstructure:"nats"`
	Valkey      ValkeyConfig      `mapstructure:"valkey"`
	Telemetry   TelemetryConfig   `mapstructure:"telemetry"`
	Temporal    TemporalConfig    `mapstructure:"temporal"`
	Log         LogConfig         `mapstructure:"log"`
	Proximity   ProximityConfig   `mapstructure:"proximity"`
	Rewards     RewardsConfig     `mapstructure:"rewards"`
	Tracking    TrackingConfig    `mapstructure:"tracking"`
	Attractions AttractionsConfig `mapstructure:"attractions"`
	Users       UsersConfig       `mapstructure:"users"`
	TripPricer  TripPricerConfig  `mapstructure:"trip_pricer"`
	GPS         GPSConfig         `mapstructure:"gps"`
	Simulation  SimulationConfig  `mapstructure:"simulation"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
	// RequestsPerMinute caps requests per client IP. Zero disables it.
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int32  `mapstructure:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

// ValkeyConfig points at the shared cache. An empty Addr selects the
// in-process cache.
type ValkeyConfig struct {
	Addr               string `mapstructure:"addr"`
	Password           string `mapstructure:"password"`
	DB                 int    `mapstructure:"db"`
	DisableClientCache bool   `mapstructure:"disable_client_cache"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
	Enabled   bool   `mapstructure:"enabled"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ProximityConfig struct {
	RewardBufferMiles    float64 `mapstructure:"reward_buffer_miles"`
	VisibilityRangeMiles float64 `mapstructure:"visibility_range_miles"`
}

type RewardsConfig struct {
	PoolSize    int           `mapstructure:"pool_size"`
	WaitTimeout time.Duration `mapstructure:"wait_timeout"`
	DedupBy     string        `mapstructure:"dedup_by"`
	RateLimit   float64       `mapstructure:"rate_limit"`
}

type TrackingConfig struct {
	PoolSize     int           `mapstructure:"pool_size"`
	Interval     time.Duration `mapstructure:"interval"`
	RoundTimeout time.Duration `mapstructure:"round_timeout"`
	Enabled      bool          `mapstructure:"enabled"`
}

type AttractionsConfig struct {
	Source      string `mapstructure:"source"`
	NearbyLimit int    `mapstructure:"nearby_limit"`
}

type UsersConfig struct {
	InternalCount int  `mapstructure:"internal_count"`
	TestMode      bool `mapstructure:"test_mode"`
}

type TripPricerConfig struct {
	APIKey    string  `mapstructure:"api_key"`
	RateLimit float64 `mapstructure:"rate_limit"`
}

type GPSConfig struct {
	RateLimit float64 `mapstructure:"rate_limit"`
}

type SimulationConfig struct {
	Latency time.Duration `mapstructure:"latency"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()
	setDefaults(v, service)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: TOURGUIDE_REWARDS_POOL_SIZE → rewards.pool_size
	v.SetEnvPrefix("TOURGUIDE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, service string) {
	cpus := runtime.NumCPU()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 70)
	v.SetDefault("server.requests_per_minute", 0)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "tourguide")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "tourguide")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("nats.url", "")
	v.SetDefault("valkey.addr", "")
	v.SetDefault("valkey.password", "")
	v.SetDefault("valkey.db", 0)
	v.SetDefault("valkey.disable_client_cache", false)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "tourguide-tracking")
	v.SetDefault("temporal.enabled", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("proximity.reward_buffer_miles", 10)
	v.SetDefault("proximity.visibility_range_miles", 200)
	v.SetDefault("rewards.pool_size", 4*cpus)
	v.SetDefault("rewards.wait_timeout", "60s")
	v.SetDefault("rewards.dedup_by", "name")
	v.SetDefault("rewards.rate_limit", 0)
	v.SetDefault("tracking.pool_size", cpus)
	v.SetDefault("tracking.interval", "5m")
	v.SetDefault("tracking.round_timeout", "15m")
	v.SetDefault("tracking.enabled", true)
	v.SetDefault("attractions.source", "simulated")
	v.SetDefault("attractions.nearby_limit", 5)
	v.SetDefault("users.internal_count", 100)
	v.SetDefault("users.test_mode", true)
	v.SetDefault("trip_pricer.api_key", "test-server-api-key")
	v.SetDefault("trip_pricer.rate_limit", 0)
	v.SetDefault("gps.rate_limit", 0)
	v.SetDefault("simulation.latency", "0s")
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}

	switch c.Attractions.Source {
	case "simulated":
	case "postgres":
		if c.Database.Host == "" {
			errs = append(errs, "database.host is required")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
		}
		if c.Database.User == "" {
			errs = append(errs, "database.user is required")
		}
		if c.Database.DBName == "" {
			errs = append(errs, "database.dbname is required")
		}
	default:
		errs = append(errs, fmt.Sprintf("attractions.source must be simulated or postgres, got %q", c.Attractions.Source))
	}
	if c.Attractions.NearbyLimit <= 0 {
		errs = append(errs, "attractions.nearby_limit must be positive")
	}

	if c.Proximity.RewardBufferMiles <= 0 {
		errs = append(errs, "proximity.reward_buffer_miles must be positive")
	}
	if c.Proximity.VisibilityRangeMiles <= 0 {
		errs = append(errs, "proximity.visibility_range_miles must be positive")
	}

	if c.Rewards.PoolSize < 1 {
		errs = append(errs, "rewards.pool_size must be at least 1")
	}
	if c.Rewards.WaitTimeout < 0 {
		errs = append(errs, "rewards.wait_timeout must not be negative")
	}
	if c.Rewards.DedupBy != "name" && c.Rewards.DedupBy != "id" {
		errs = append(errs, fmt.Sprintf("rewards.dedup_by must be name or id, got %q", c.Rewards.DedupBy))
	}

	if c.Tracking.PoolSize < 1 {
		errs = append(errs, "tracking.pool_size must be at least 1")
	}
	if c.Tracking.Enabled && c.Tracking.Interval <= 0 {
		errs = append(errs, "tracking.interval must be positive when tracking is enabled")
	}

	if c.Users.InternalCount < 0 {
		errs = append(errs, "users.internal_count must not be negative")
	}
	if c.Temporal.Enabled && c.Temporal.TaskQueue == "" {
		errs = append(errs, "temporal.task_queue is required when temporal is enabled")
	}
	if c.Simulation.Latency < 0 {
		errs = append(errs, "simulation.latency must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
