// Package config loads taskflow settings from a YAML file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/maxkimambo/taskflow/internal/errors"
)

// Config represents the complete taskflow configuration
type Config struct {
	MaxParallelTasks int             `yaml:"max_parallel_tasks"`
	TaskTimeout      time.Duration   `yaml:"task_timeout"`
	DefaultRetries   uint64          `yaml:"default_retries"`
	RetryInterval    time.Duration   `yaml:"retry_interval"`
	Container        ContainerConfig `yaml:"container"`
	Log              LogConfig       `yaml:"log"`
}

// ContainerConfig holds settings for CONTAINER tasks
type ContainerConfig struct {
	// Runtime is a docker-compatible CLI
	Runtime   string   `yaml:"runtime"`
	Pull      string   `yaml:"pull"`
	ExtraArgs []string `yaml:"extra_args"`
}

// LogConfig holds logging settings. LOG_MODE and LOG_FORMAT still win.
type LogConfig struct {
	Mode   string `yaml:"mode"`
	Format string `yaml:"format"`
}

// Default returns a Config with default values
func Default() *Config {
	return &Config{
		MaxParallelTasks: 10,
		TaskTimeout:      15 * time.Minute,
		DefaultRetries:   0,
		RetryInterval:    500 * time.Millisecond,
		Container: ContainerConfig{
			Runtime: "docker",
		},
		Log: LogConfig{
			Mode:   "normal",
			Format: "text",
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewInvalidConfigError("config", path, "cannot read file").WithOriginalError(err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewInvalidConfigError("config", path, "invalid YAML").WithOriginalError(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var (
	pullPolicies = []string{"", "always", "missing", "never"}
	logModes     = []string{"", "normal", "quiet", "verbose", "debug"}
	logFormats   = []string{"", "text", "json"}
)

// Validate checks every field and returns the first invalid one
func (c *Config) Validate() error {
	if c.MaxParallelTasks < 1 {
		return errors.NewInvalidConfigError("max_parallel_tasks", c.MaxParallelTasks, "must be at least 1")
	}
	if c.TaskTimeout < 0 {
		return errors.NewInvalidConfigError("task_timeout", c.TaskTimeout, "must not be negative")
	}
	if c.RetryInterval < 0 {
		return errors.NewInvalidConfigError("retry_interval", c.RetryInterval, "must not be negative")
	}
	if strings.TrimSpace(c.Container.Runtime) == "" {
		return errors.NewInvalidConfigError("container.runtime", c.Container.Runtime, "is required")
	}
	if !oneOf(c.Container.Pull, pullPolicies) {
		return errors.NewInvalidConfigError("container.pull", c.Container.Pull,
			fmt.Sprintf("must be one of %s", strings.Join(pullPolicies[1:], ", ")))
	}
	if !oneOf(c.Log.Mode, logModes) {
		return errors.NewInvalidConfigError("log.mode", c.Log.Mode,
			fmt.Sprintf("must be one of %s", strings.Join(logModes[1:], ", ")))
	}
	if !oneOf(c.Log.Format, logFormats) {
		return errors.NewInvalidConfigError("log.format", c.Log.Format,
			fmt.Sprintf("must be one of %s", strings.Join(logFormats[1:], ", ")))
	}
	return nil
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
