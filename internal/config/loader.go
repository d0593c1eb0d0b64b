package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

// SplitList parses a comma-separated list value. Blank or whitespace-only
// input means "not configured" and yields nil; individual items are trimmed
// and empty items dropped.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Load reads the config file, applies environment overrides, and returns
// a merged Config. Missing files produce defaults only.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	cfg.OpenWebUI.APIKey = expandEnvVars(cfg.OpenWebUI.APIKey)
	return cfg, nil
}

// applyDefaults fills zero-value fields with sensible defaults. A YAML file
// that sets only some fields must not zero out the rest.
func applyDefaults(cfg *Config) {
	if cfg.OpenWebUI.URL == "" {
		cfg.OpenWebUI.URL = "http://localhost:3000"
	}
	if cfg.Agents.CacheDurationSeconds == 0 {
		cfg.Agents.CacheDurationSeconds = 600
	}
	if cfg.Server.Transport == "" {
		cfg.Server.Transport = "stdio"
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Style == "" {
		cfg.Logging.Style = "pretty"
	}
}

// applyEnvOverrides reads the deployment environment variables and overrides
// config values. Names match the original OpenWebUI proxy deployment so an
// existing .env keeps working.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OPENWEBUI_URL"); v != "" {
		cfg.OpenWebUI.URL = v
	}
	if v := os.Getenv("OPENWEBUI_API_KEY"); v != "" {
		cfg.OpenWebUI.APIKey = v
	}
	if v, ok := os.LookupEnv("AGENT_WHITELIST"); ok {
		cfg.Agents.Whitelist = SplitList(v)
	}
	if v, ok := os.LookupEnv("AGENT_BLACKLIST"); ok {
		cfg.Agents.Blacklist = SplitList(v)
	}
	if v := os.Getenv("CACHE_DURATION_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			cfg.Agents.CacheDurationSeconds = secs
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("MCP_TRANSPORT"); v != "" {
		cfg.Server.Transport = v
	}
	if v := os.Getenv("MCP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
}
