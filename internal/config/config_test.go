package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/eugenenazirov/deployconf/internal/resolver"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "LOG_LEVEL", "BASE_PATH_POLICY", "BASE_PATH_FIXED"} {
		t.Setenv(key, "")
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func strPtr(s string) *string { return &s }

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != defaultPort {
		t.Fatalf("expected default port %s, got %s", defaultPort, cfg.Port)
	}
	if cfg.ShutdownGracePeriod != 10*time.Second {
		t.Fatalf("unexpected shutdown grace period: %s", cfg.ShutdownGracePeriod)
	}
	if cfg.Deployment.Policy != resolver.PolicyEnvironmentConditional {
		t.Fatalf("unexpected default policy: %s", cfg.Deployment.Policy)
	}
	if cfg.Deployment.FixedPath != resolver.DefaultFixedPath {
		t.Fatalf("unexpected default fixed path: %s", cfg.Deployment.FixedPath)
	}
	if cfg.Deployment.OverrideEnv != resolver.DefaultOverrideKey || cfg.Deployment.ModeEnv != resolver.DefaultModeKey {
		t.Fatalf("unexpected environment keys: %+v", cfg.Deployment)
	}
	if !cfg.Deployment.Devtools {
		t.Fatalf("expected devtools enabled by default")
	}
	if cfg.Deployment.Head != nil {
		t.Fatalf("expected no head metadata by default")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("BASE_PATH_POLICY", "override-with-fallback")
	t.Setenv("BASE_PATH_FIXED", "/site/")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "9000" {
		t.Fatalf("expected overridden port, got %s", cfg.Port)
	}
	if cfg.Deployment.Policy != resolver.PolicyOverrideWithFallback {
		t.Fatalf("expected env policy, got %s", cfg.Deployment.Policy)
	}
	if cfg.Deployment.FixedPath != "/site/" {
		t.Fatalf("expected env fixed path, got %s", cfg.Deployment.FixedPath)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected debug log level, got %s", cfg.LogLevel)
	}
}

func TestLoadIgnoresMalformedEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("BASE_PATH_POLICY", "sometimes")
	t.Setenv("RATE_LIMIT_RPS", "fast")
	t.Setenv("LOG_LEVEL", "loud")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Deployment.Policy != defaultPolicy {
		t.Fatalf("expected default policy, got %s", cfg.Deployment.Policy)
	}
	if cfg.RateLimitRPS != defaultRateLimitRPS {
		t.Fatalf("expected default rps, got %v", cfg.RateLimitRPS)
	}
	if cfg.LogLevel != defaultLogLevel {
		t.Fatalf("expected default log level, got %s", cfg.LogLevel)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")

	path := writeConfigFile(t, `
port: "7070"
write_timeout: 3s
enable_request_logging: false
rate_limit:
  rps: 0
  burst: 0
deployment:
  policy: fixed
  fixed_path: /docs/
  production_tag: prod
  devtools: false
  head:
    title: Solar
    html_lang: en
    meta:
      - name: description
        content: Planets
`)

	cfg, err := Load(&CLIOverrides{ConfigFile: path})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "7070" {
		t.Fatalf("expected YAML port to beat env, got %s", cfg.Port)
	}
	if cfg.WriteTimeout != 3*time.Second {
		t.Fatalf("unexpected write timeout %s", cfg.WriteTimeout)
	}
	if cfg.EnableRequestLogging {
		t.Fatalf("expected request logging disabled")
	}
	if cfg.RateLimitRPS != 0 || cfg.RateLimitBurst != 0 {
		t.Fatalf("expected rate limit disabled, got %v/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if cfg.ReadHeaderTimeout != 5*time.Second {
		t.Fatalf("expected untouched default read header timeout, got %s", cfg.ReadHeaderTimeout)
	}

	dep := cfg.Deployment
	if dep.Policy != resolver.PolicyFixed || dep.FixedPath != "/docs/" || dep.ProductionTag != "prod" {
		t.Fatalf("unexpected deployment settings: %+v", dep)
	}
	if dep.Devtools {
		t.Fatalf("expected devtools disabled")
	}
	if dep.Head == nil || dep.Head.Title != "Solar" || len(dep.Head.Meta) != 1 {
		t.Fatalf("unexpected head metadata: %+v", dep.Head)
	}
}

func TestLoadYAMLKeepsDefaultsForOmittedSections(t *testing.T) {
	clearEnv(t)
	path := writeConfigFile(t, "port: \"7070\"\n")

	cfg, err := Load(&CLIOverrides{ConfigFile: path})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !cfg.EnableRequestLogging {
		t.Fatalf("expected request logging to stay enabled")
	}
	if cfg.RateLimitRPS != defaultRateLimitRPS || cfg.RateLimitBurst != defaultRateLimitBurst {
		t.Fatalf("expected default rate limits, got %v/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
}

func TestLoadYAMLRejectsSchemaViolations(t *testing.T) {
	clearEnv(t)
	path := writeConfigFile(t, "deployment:\n  base_url: /x/\n")

	if _, err := Load(&CLIOverrides{ConfigFile: path}); err == nil {
		t.Fatalf("expected schema validation error")
	}
}

func TestLoadYAMLRejectsUnknownPolicy(t *testing.T) {
	clearEnv(t)
	path := writeConfigFile(t, "deployment:\n  policy: sometimes\n")

	_, err := Load(&CLIOverrides{ConfigFile: path})
	if !errors.Is(err, resolver.ErrUnknownPolicy) {
		t.Fatalf("expected ErrUnknownPolicy, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(&CLIOverrides{ConfigFile: filepath.Join(t.TempDir(), "missing.yaml")}); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadCLIOverridesWin(t *testing.T) {
	clearEnv(t)
	t.Setenv("BASE_PATH_POLICY", "fixed")
	path := writeConfigFile(t, "port: \"7070\"\ndeployment:\n  policy: fixed\n")

	rps := 3.0
	burst := 4
	cfg, err := Load(&CLIOverrides{
		ConfigFile:     path,
		Port:           strPtr("6060"),
		RateLimitRPS:   &rps,
		RateLimitBurst: &burst,
		Policy:         strPtr("overrideWithFallback"),
		FixedPath:      strPtr("/cli/"),
		LogLevel:       strPtr("warn"),
	})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "6060" {
		t.Fatalf("expected CLI port, got %s", cfg.Port)
	}
	if cfg.RateLimitRPS != 3 || cfg.RateLimitBurst != 4 {
		t.Fatalf("expected CLI rate limits, got %v/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if cfg.Deployment.Policy != resolver.PolicyOverrideWithFallback {
		t.Fatalf("expected CLI policy, got %s", cfg.Deployment.Policy)
	}
	if cfg.Deployment.FixedPath != "/cli/" {
		t.Fatalf("expected CLI fixed path, got %s", cfg.Deployment.FixedPath)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("expected CLI log level, got %s", cfg.LogLevel)
	}
}

func TestLoadCLIRejectsInvalidValues(t *testing.T) {
	clearEnv(t)

	if _, err := Load(&CLIOverrides{Policy: strPtr("nope")}); !errors.Is(err, resolver.ErrUnknownPolicy) {
		t.Fatalf("expected ErrUnknownPolicy, got %v", err)
	}
	if _, err := Load(&CLIOverrides{LogLevel: strPtr("trace")}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestDeploymentResolver(t *testing.T) {
	dep := defaultConfig().Deployment
	dep.Policy = resolver.PolicyEnvironmentConditional
	dep.FixedPath = "/site/"

	r := dep.Resolver()
	if got := r.Resolve(resolver.Inputs{Mode: "production", ModeSet: true}); got != "/site/" {
		t.Fatalf("expected /site/, got %q", got)
	}
	if got := r.Resolve(resolver.Inputs{Mode: "development", ModeSet: true}); got != "/" {
		t.Fatalf("expected root, got %q", got)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := map[string]func(*Config){
		"empty port":     func(c *Config) { c.Port = " " },
		"negative rps":   func(c *Config) { c.RateLimitRPS = -1 },
		"negative burst": func(c *Config) { c.RateLimitBurst = -1 },
		"zero policy":    func(c *Config) { c.Deployment.Policy = 0 },
		"empty fixed":    func(c *Config) { c.Deployment.FixedPath = "" },
		"empty tag":      func(c *Config) { c.Deployment.ProductionTag = "" },
		"empty mode key": func(c *Config) { c.Deployment.ModeEnv = "" },
		"bad log level":  func(c *Config) { c.LogLevel = "verbose" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := defaultConfig()
			mutate(&cfg)
			if err := validateConfig(cfg); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}

	if err := validateConfig(defaultConfig()); err != nil {
		t.Fatalf("expected defaults to be valid: %v", err)
	}
}
