package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("tourguide-test")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Proximity.RewardBufferMiles != 10 {
		t.Errorf("reward buffer = %v, want 10", cfg.Proximity.RewardBufferMiles)
	}
	if cfg.Proximity.VisibilityRangeMiles != 200 {
		t.Errorf("visibility range = %v, want 200", cfg.Proximity.VisibilityRangeMiles)
	}
	if cfg.Rewards.WaitTimeout != 60*time.Second {
		t.Errorf("wait timeout = %v, want 60s", cfg.Rewards.WaitTimeout)
	}
	if cfg.Tracking.Interval != 5*time.Minute {
		t.Errorf("interval = %v, want 5m", cfg.Tracking.Interval)
	}
	if cfg.Attractions.NearbyLimit != 5 {
		t.Errorf("nearby limit = %d, want 5", cfg.Attractions.NearbyLimit)
	}
	if cfg.Rewards.DedupBy != "name" {
		t.Errorf("dedup_by = %q, want name", cfg.Rewards.DedupBy)
	}
	if cfg.Telemetry.ServiceName != "tourguide-test" {
		t.Errorf("service name = %q", cfg.Telemetry.ServiceName)
	}
	if cfg.Rewards.PoolSize < 1 || cfg.Tracking.PoolSize < 1 {
		t.Errorf("pool sizes must default to at least 1")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("TOURGUIDE_PROXIMITY_REWARD_BUFFER_MILES", "25")
	t.Setenv("TOURGUIDE_REWARDS_DEDUP_BY", "id")
	t.Setenv("TOURGUIDE_TRACKING_INTERVAL", "30s")

	cfg, err := Load("tourguide")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Proximity.RewardBufferMiles != 25 {
		t.Errorf("reward buffer = %v, want 25", cfg.Proximity.RewardBufferMiles)
	}
	if cfg.Rewards.DedupBy != "id" {
		t.Errorf("dedup_by = %q, want id", cfg.Rewards.DedupBy)
	}
	if cfg.Tracking.Interval != 30*time.Second {
		t.Errorf("interval = %v, want 30s", cfg.Tracking.Interval)
	}
}

func validConfig() Config {
	return Config{
		Server:      ServerConfig{Port: 8080, ReadTimeout: 10, WriteTimeout: 10},
		Attractions: AttractionsConfig{Source: "simulated", NearbyLimit: 5},
		Proximity:   ProximityConfig{RewardBufferMiles: 10, VisibilityRangeMiles: 200},
		Rewards:     RewardsConfig{PoolSize: 4, WaitTimeout: time.Minute, DedupBy: "name"},
		Tracking:    TrackingConfig{PoolSize: 1, Interval: time.Minute, Enabled: true},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"bad dedup", func(c *Config) { c.Rewards.DedupBy = "email" }, "rewards.dedup_by"},
		{"negative buffer", func(c *Config) { c.Proximity.RewardBufferMiles = -1 }, "proximity.reward_buffer_miles"},
		{"zero buffer", func(c *Config) { c.Proximity.RewardBufferMiles = 0 }, "proximity.reward_buffer_miles"},
		{"zero visibility range", func(c *Config) { c.Proximity.VisibilityRangeMiles = 0 }, "proximity.visibility_range_miles"},
		{"zero pool", func(c *Config) { c.Rewards.PoolSize = 0 }, "rewards.pool_size"},
		{"unknown source", func(c *Config) { c.Attractions.Source = "csv" }, "attractions.source"},
		{"postgres without host", func(c *Config) {
			c.Attractions.Source = "postgres"
			c.Database = DatabaseConfig{Port: 5432, User: "u", DBName: "d"}
		}, "database.host"},
		{"tracking without interval", func(c *Config) { c.Tracking.Interval = 0 }, "tracking.interval"},
		{"disabled tracking ignores interval", func(c *Config) {
			c.Tracking.Enabled = false
			c.Tracking.Interval = 0
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate_CollectsAll(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = -1
	cfg.Rewards.PoolSize = 0
	cfg.Attractions.NearbyLimit = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, key := range []string{"server.port", "rewards.pool_size", "attractions.nearby_limit"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("expected %s in %v", key, err)
		}
	}
}
