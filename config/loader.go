package config

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Extract  ExtractConfig
	Stats    StatsConfig
	DuckDB   DuckDBConfig
	Supabase SupabaseConfig
	Env      string
}

type ExtractConfig struct {
	Backoff   BackoffConfig
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type BackoffConfig struct {
	RetryWaitMin time.Duration `mapstructure:"retry_wait_min"`
	RetryWaitMax time.Duration `mapstructure:"retry_wait_max"`
	RetryMax     int           `mapstructure:"retry_max"`
}

// RateLimitConfig spaces out requests against the stats API, which bans
// clients that hammer it. Delay is the fixed sleep before every request,
// Jitter the random extra on top, MaxWorkers the fetch pool size.
type RateLimitConfig struct {
	Delay      time.Duration `mapstructure:"delay"`
	Jitter     time.Duration `mapstructure:"jitter"`
	MaxWorkers int           `mapstructure:"max_workers"`
}

type StatsConfig struct {
	BaseURL          string        `mapstructure:"base_url"`
	LeagueID         string        `mapstructure:"league_id"`
	DirectorySeason  string        `mapstructure:"directory_season"`
	Timeout          time.Duration `mapstructure:"timeout"`
	TimeoutRetryWait time.Duration `mapstructure:"timeout_retry_wait"`
}

type DuckDBConfig struct {
	Path              string   `mapstructure:"path"`
	ConnInitFnQueries []string `mapstructure:"conn_init_fn_queries"`
}

type SupabaseConfig struct {
	PlayersTable     string `mapstructure:"players_table"`
	CareerStatsTable string `mapstructure:"career_stats_table"`
}

// NewConfig loads the configuration from the provided base config reader
// and merges it with the environment-specific configuration.
func NewConfig(baseConfigReader io.Reader, envConfigReader io.Reader, env string) (*Config, error) {
	if env == "" { // Use the provided 'env' or default to "dev"
		env = "dev"
	}

	viper.SetConfigType("yaml")

	// Read the base configuration
	if err := viper.ReadConfig(baseConfigReader); err != nil {
		return nil, fmt.Errorf("error reading base config: %w", err)
	}

	// Merge with environment-specific configuration (only if provided)
	if envConfigReader != nil {
		if err := viper.MergeConfig(envConfigReader); err != nil {
			log.Printf("Error merging environment-specific config: %s", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	// Set the environment directly
	config.Env = env

	return &config, nil
}
