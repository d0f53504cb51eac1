package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for slate
type Config struct {
	Read ReadConfig
	Scan ScanConfig
	Log  LogConfig
}

// ReadConfig controls the streaming record reader.
type ReadConfig struct {
	BadRecordThreshold float64 // Fraction of corrupt records tolerated before the stream fails (0..1, default 0)
	StrictTypeChecking bool    // Require every requested column to exist in the file schema
}

// ScanConfig controls the CLI scan command.
type ScanConfig struct {
	MaxConcurrentFiles int // Readers running at once across input files (default: NumCPU, min 1)
}

type LogConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment and config file
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Environment variables
	v.SetEnvPrefix("SLATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file (optional)
	v.SetConfigName("slate")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/slate/")
	v.AddConfigPath("$HOME/.slate/")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	cfg := &Config{
		Read: ReadConfig{
			BadRecordThreshold: v.GetFloat64("read.bad_record_threshold"),
			StrictTypeChecking: v.GetBool("read.strict_type_checking"),
		},
		Scan: ScanConfig{
			MaxConcurrentFiles: v.GetInt("scan.max_concurrent_files"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("read.bad_record_threshold", 0.0)
	v.SetDefault("read.strict_type_checking", true)

	v.SetDefault("scan.max_concurrent_files", runtime.NumCPU())

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Validate checks configuration invariants before any reader is built.
func (c *Config) Validate() error {
	if c.Read.BadRecordThreshold < 0 || c.Read.BadRecordThreshold > 1 {
		return fmt.Errorf("invalid read.bad_record_threshold %f: must be within [0, 1]", c.Read.BadRecordThreshold)
	}
	if c.Scan.MaxConcurrentFiles < 1 {
		return fmt.Errorf("invalid scan.max_concurrent_files %d: must be >= 1", c.Scan.MaxConcurrentFiles)
	}
	return nil
}
