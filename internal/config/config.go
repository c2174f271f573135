package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/deployconf/internal/config/schema"
	"github.com/eugenenazirov/deployconf/internal/record"
	"github.com/eugenenazirov/deployconf/internal/resolver"
)

const (
	defaultPort           = "8080"
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
	defaultLogLevel       = "info"
	defaultPolicy         = resolver.PolicyEnvironmentConditional
)

// ErrInvalidConfig wraps every validation failure of the final configuration.
var ErrInvalidConfig = errors.New("invalid configuration")

var logLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	Port                 string
	ShutdownGracePeriod  time.Duration
	ReadHeaderTimeout    time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	EnableRequestLogging bool
	RateLimitRPS         float64
	RateLimitBurst       int
	LogLevel             string
	Deployment           Deployment
}

// Deployment holds the base path resolution settings and the optional parts
// of the configuration record.
type Deployment struct {
	Policy        resolver.Policy
	FixedPath     string
	OverrideEnv   string
	ModeEnv       string
	ProductionTag string
	Devtools      bool
	Head          *record.HeadMetadata
}

// Resolver returns the resolver described by d.
func (d Deployment) Resolver() resolver.Resolver {
	return resolver.Resolver{
		Policy:        d.Policy,
		FixedPath:     d.FixedPath,
		ProductionTag: d.ProductionTag,
	}
}

// RecordOptions returns the non-path record settings described by d.
func (d Deployment) RecordOptions() record.Options {
	return record.Options{
		Head:     d.Head.Clone(),
		Devtools: d.Devtools,
	}
}

// yamlConfig represents the YAML configuration file structure.
type yamlConfig struct {
	Port                 string         `yaml:"port"`
	ShutdownGracePeriod  string         `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string         `yaml:"read_header_timeout"`
	WriteTimeout         string         `yaml:"write_timeout"`
	IdleTimeout          string         `yaml:"idle_timeout"`
	EnableRequestLogging *bool          `yaml:"enable_request_logging"`
	LogLevel             string         `yaml:"log_level"`
	RateLimit            yamlRateLimit  `yaml:"rate_limit"`
	Deployment           yamlDeployment `yaml:"deployment"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS   *float64 `yaml:"rps"`
	Burst *int     `yaml:"burst"`
}

// yamlDeployment represents the deployment section in YAML.
type yamlDeployment struct {
	Policy        string               `yaml:"policy"`
	FixedPath     string               `yaml:"fixed_path"`
	OverrideEnv   string               `yaml:"override_env"`
	ModeEnv       string               `yaml:"mode_env"`
	ProductionTag string               `yaml:"production_tag"`
	Devtools      *bool                `yaml:"devtools"`
	Head          *record.HeadMetadata `yaml:"head"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile     string
	Port           *string
	RateLimitRPS   *float64
	RateLimitBurst *int
	LogLevel       *string
	Policy         *string
	FixedPath      *string
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	// Environment variables sit just above defaults.
	applyEnvConfig(&cfg)

	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		if err := applyYAMLConfig(&cfg, yamlCfg); err != nil {
			return Config{}, fmt.Errorf("apply YAML config: %w", err)
		}
	}

	if overrides != nil {
		if err := applyCLIOverrides(&cfg, overrides); err != nil {
			return Config{}, err
		}
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		Port:                 defaultPort,
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
		LogLevel:             defaultLogLevel,
		Deployment: Deployment{
			Policy:        defaultPolicy,
			FixedPath:     resolver.DefaultFixedPath,
			OverrideEnv:   resolver.DefaultOverrideKey,
			ModeEnv:       resolver.DefaultModeKey,
			ProductionTag: resolver.DefaultProductionTag,
			Devtools:      true,
		},
	}
}

// loadFromFile validates and decodes a YAML configuration file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	if err := schema.ValidateYAML(data); err != nil {
		return nil, fmt.Errorf("validate schema: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) error {
	if yamlCfg.Port != "" {
		cfg.Port = yamlCfg.Port
	}

	durations := []struct {
		raw    string
		target *time.Duration
	}{
		{yamlCfg.ShutdownGracePeriod, &cfg.ShutdownGracePeriod},
		{yamlCfg.ReadHeaderTimeout, &cfg.ReadHeaderTimeout},
		{yamlCfg.WriteTimeout, &cfg.WriteTimeout},
		{yamlCfg.IdleTimeout, &cfg.IdleTimeout},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		if parsed, err := time.ParseDuration(d.raw); err == nil {
			*d.target = parsed
		}
	}

	if yamlCfg.EnableRequestLogging != nil {
		cfg.EnableRequestLogging = *yamlCfg.EnableRequestLogging
	}

	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = strings.ToLower(yamlCfg.LogLevel)
	}

	if yamlCfg.RateLimit.RPS != nil {
		cfg.RateLimitRPS = *yamlCfg.RateLimit.RPS
	}

	if yamlCfg.RateLimit.Burst != nil {
		cfg.RateLimitBurst = *yamlCfg.RateLimit.Burst
	}

	dep := yamlCfg.Deployment
	if dep.Policy != "" {
		policy, err := resolver.ParsePolicy(dep.Policy)
		if err != nil {
			return err
		}
		cfg.Deployment.Policy = policy
	}
	if dep.FixedPath != "" {
		cfg.Deployment.FixedPath = dep.FixedPath
	}
	if dep.OverrideEnv != "" {
		cfg.Deployment.OverrideEnv = dep.OverrideEnv
	}
	if dep.ModeEnv != "" {
		cfg.Deployment.ModeEnv = dep.ModeEnv
	}
	if dep.ProductionTag != "" {
		cfg.Deployment.ProductionTag = dep.ProductionTag
	}
	if dep.Devtools != nil {
		cfg.Deployment.Devtools = *dep.Devtools
	}
	if dep.Head != nil {
		cfg.Deployment.Head = dep.Head.Clone()
	}

	return nil
}

// applyEnvConfig applies environment variable configuration. Malformed values
// are ignored so the next lower source stays in effect.
func applyEnvConfig(cfg *Config) {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.Port = port
	}

	if rps := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}

	if burst := strings.TrimSpace(os.Getenv("RATE_LIMIT_BURST")); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.RateLimitBurst = value
		}
	}

	if level := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))); level != "" {
		if _, ok := logLevels[level]; ok {
			cfg.LogLevel = level
		}
	}

	if raw := strings.TrimSpace(os.Getenv("BASE_PATH_POLICY")); raw != "" {
		if policy, err := resolver.ParsePolicy(raw); err == nil {
			cfg.Deployment.Policy = policy
		}
	}

	if fixed := strings.TrimSpace(os.Getenv("BASE_PATH_FIXED")); fixed != "" {
		cfg.Deployment.FixedPath = fixed
	}
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) error {
	if overrides.Port != nil && *overrides.Port != "" {
		cfg.Port = *overrides.Port
	}

	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}

	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}

	if overrides.LogLevel != nil && *overrides.LogLevel != "" {
		cfg.LogLevel = strings.ToLower(*overrides.LogLevel)
	}

	if overrides.Policy != nil && *overrides.Policy != "" {
		policy, err := resolver.ParsePolicy(*overrides.Policy)
		if err != nil {
			return fmt.Errorf("parse policy: %w", err)
		}
		cfg.Deployment.Policy = policy
	}

	if overrides.FixedPath != nil && *overrides.FixedPath != "" {
		cfg.Deployment.FixedPath = *overrides.FixedPath
	}

	return nil
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.Port) == "" {
		return fmt.Errorf("%w: port cannot be empty", ErrInvalidConfig)
	}
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("%w: RATE_LIMIT_RPS must be >= 0", ErrInvalidConfig)
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("%w: RATE_LIMIT_BURST must be >= 0", ErrInvalidConfig)
	}
	if _, ok := logLevels[cfg.LogLevel]; !ok {
		return fmt.Errorf("%w: unsupported log level %q", ErrInvalidConfig, cfg.LogLevel)
	}

	dep := cfg.Deployment
	if !dep.Policy.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, resolver.ErrUnknownPolicy)
	}
	if dep.FixedPath == "" {
		return fmt.Errorf("%w: fixed path cannot be empty", ErrInvalidConfig)
	}
	if dep.ProductionTag == "" {
		return fmt.Errorf("%w: production tag cannot be empty", ErrInvalidConfig)
	}
	if dep.OverrideEnv == "" || dep.ModeEnv == "" {
		return fmt.Errorf("%w: environment variable names cannot be empty", ErrInvalidConfig)
	}
	return nil
}
