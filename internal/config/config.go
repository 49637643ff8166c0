// Package config loads tidyflow configuration from defaults, an optional
// config file, and TIDYFLOW_* environment variables.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete tidyflow configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Session SessionConfig `mapstructure:"session"`
	Run     RunConfig     `mapstructure:"run"`
}

// ServerConfig identifies the MCP server.
type ServerConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// SessionConfig controls the per-workdir session layout.
type SessionConfig struct {
	// PrimaryFile is the default target script when an operation omits a
	// filename.
	PrimaryFile string `mapstructure:"primary_file"`
	// StateDirName is the hidden subdirectory of the workdir holding the
	// persisted state file.
	StateDirName string `mapstructure:"state_dir_name"`
	// LibDirName is the per-workdir R library directory exported to the
	// child process as R_LIBS_USER.
	LibDirName string `mapstructure:"lib_dir_name"`
}

// RunConfig holds execution-time defaults.
type RunConfig struct {
	// ScriptTimeout is the default limit for run_r_script.
	ScriptTimeout time.Duration `mapstructure:"script_timeout"`
	// ExpressionTimeout is the default limit for run_r_expression and
	// inspect_r_objects.
	ExpressionTimeout time.Duration `mapstructure:"expression_timeout"`
}

func setDefaults() {
	viper.SetDefault("server.name", "tidyflow")
	viper.SetDefault("server.version", "0.1.0")
	viper.SetDefault("session.primary_file", "agent.R")
	viper.SetDefault("session.state_dir_name", ".tidyflow")
	viper.SetDefault("session.lib_dir_name", "R_libs")
	viper.SetDefault("run.script_timeout", 120*time.Second)
	viper.SetDefault("run.expression_timeout", 60*time.Second)
}

// Load reads configuration. A missing config file is not an error; file
// values override defaults and environment variables override both.
func Load() (*Config, error) {
	setDefaults()

	viper.SetConfigName("tidyflow")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/tidyflow")

	viper.SetEnvPrefix("TIDYFLOW")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration without consulting the
// environment or any config file.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Name: "tidyflow", Version: "0.1.0"},
		Session: SessionConfig{
			PrimaryFile:  "agent.R",
			StateDirName: ".tidyflow",
			LibDirName:   "R_libs",
		},
		Run: RunConfig{
			ScriptTimeout:     120 * time.Second,
			ExpressionTimeout: 60 * time.Second,
		},
	}
}
