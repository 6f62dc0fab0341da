package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Sandbox  SandboxConfig  `mapstructure:"sandbox"`
	Security SecurityConfig `mapstructure:"security"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Transport string `mapstructure:"transport"`
	HTTPPort  int    `mapstructure:"http_port"`
}

// SandboxConfig holds sandbox configuration
type SandboxConfig struct {
	Backend             string `mapstructure:"backend"`
	MaxExecutionTimeSec int    `mapstructure:"max_execution_time_sec"`
	MaxOutputBytes      int    `mapstructure:"max_output_bytes"`
	NodeCommand         string `mapstructure:"node_command"`
	ContainerRuntime    string `mapstructure:"container_runtime"`
	ContainerImage      string `mapstructure:"container_image"`
	MemoryMB            int    `mapstructure:"memory_mb"`
}

// SecurityConfig holds the analyzer policy configuration
type SecurityConfig struct {
	ViolationCountThreshold int      `mapstructure:"violation_count_threshold"`
	BlockingSeverities      []string `mapstructure:"blocking_severities"`
	MaxCodeBytes            int      `mapstructure:"max_code_bytes"`
	CatalogFile             string   `mapstructure:"catalog_file"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Mode  string `mapstructure:"mode"`
	Level string `mapstructure:"level"`
}

// New loads and validates the application configuration
func New() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Set default values
	viper.SetDefault("server.transport", "stdio")
	viper.SetDefault("server.http_port", 8080)
	viper.SetDefault("sandbox.backend", "inprocess")
	viper.SetDefault("sandbox.max_execution_time_sec", 30)
	viper.SetDefault("sandbox.max_output_bytes", 8192)
	viper.SetDefault("sandbox.node_command", "node")
	viper.SetDefault("sandbox.container_runtime", "docker")
	viper.SetDefault("sandbox.container_image", "node:20-alpine")
	viper.SetDefault("sandbox.memory_mb", 256)
	viper.SetDefault("security.violation_count_threshold", 5)
	viper.SetDefault("security.blocking_severities", []string{"high"})
	viper.SetDefault("security.max_code_bytes", 10000)
	viper.SetDefault("security.catalog_file", "")
	viper.SetDefault("logging.mode", "production")
	viper.SetDefault("logging.level", "info")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// If config file not found, continue with defaults
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

// validate ensures the configuration is valid
func (c *Config) validate() error {
	if c.Server.Transport != "stdio" && c.Server.Transport != "http" {
		return fmt.Errorf("invalid server.transport: %s, must be 'stdio' or 'http'", c.Server.Transport)
	}

	supportedBackends := map[string]bool{
		"inprocess":  true,
		"subprocess": true,
		"container":  true,
	}
	if !supportedBackends[c.Sandbox.Backend] {
		return fmt.Errorf("unsupported sandbox.backend: %s", c.Sandbox.Backend)
	}

	if c.Sandbox.MaxExecutionTimeSec <= 0 {
		return fmt.Errorf("sandbox.max_execution_time_sec must be positive, got: %d", c.Sandbox.MaxExecutionTimeSec)
	}

	if c.Sandbox.MaxOutputBytes <= 0 {
		return fmt.Errorf("sandbox.max_output_bytes must be positive, got: %d", c.Sandbox.MaxOutputBytes)
	}

	if c.Sandbox.Backend == "subprocess" && c.Sandbox.NodeCommand == "" {
		return fmt.Errorf("sandbox.node_command must be set for the subprocess backend")
	}

	if c.Sandbox.Backend == "container" {
		if c.Sandbox.ContainerRuntime != "docker" && c.Sandbox.ContainerRuntime != "podman" {
			return fmt.Errorf("unsupported sandbox.container_runtime: %s, must be 'docker' or 'podman'", c.Sandbox.ContainerRuntime)
		}
		if c.Sandbox.MemoryMB <= 0 {
			return fmt.Errorf("sandbox.memory_mb must be positive, got: %d", c.Sandbox.MemoryMB)
		}
	}

	if c.Security.ViolationCountThreshold < 0 {
		return fmt.Errorf("security.violation_count_threshold must not be negative, got: %d", c.Security.ViolationCountThreshold)
	}

	if len(c.Security.BlockingSeverities) == 0 {
		return fmt.Errorf("security.blocking_severities must not be empty")
	}
	for _, s := range c.Security.BlockingSeverities {
		if s != "low" && s != "medium" && s != "high" {
			return fmt.Errorf("invalid severity in security.blocking_severities: %s", s)
		}
	}

	if c.Security.MaxCodeBytes <= 0 {
		return fmt.Errorf("security.max_code_bytes must be positive, got: %d", c.Security.MaxCodeBytes)
	}

	return nil
}

// GetTimeout returns the default execution timeout as a duration
func (c *Config) GetTimeout() time.Duration {
	return time.Duration(c.Sandbox.MaxExecutionTimeSec) * time.Second
}
