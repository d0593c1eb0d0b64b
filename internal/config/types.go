package config

import "time"

// Config is the root configuration for mcp-openwebui.
type Config struct {
	OpenWebUI OpenWebUIConfig `yaml:"openwebui,omitempty"`
	Agents    AgentsConfig    `yaml:"agents,omitempty"`
	Server    ServerConfig    `yaml:"server,omitempty"`
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
}

// OpenWebUIConfig points at the upstream OpenWebUI instance.
type OpenWebUIConfig struct {
	URL    string `yaml:"url,omitempty"`
	APIKey string `yaml:"apiKey,omitempty"` // supports ${ENV_VAR} references
}

// AgentsConfig controls which workspace agents are exposed and for how long
// the directory listing is cached.
type AgentsConfig struct {
	Whitelist            []string `yaml:"whitelist,omitempty"` // empty = no restriction
	Blacklist            []string `yaml:"blacklist,omitempty"` // always wins over whitelist
	CacheDurationSeconds int      `yaml:"cacheDurationSeconds,omitempty"`
}

// CacheDuration returns the configured cache lifetime.
func (a AgentsConfig) CacheDuration() time.Duration {
	return time.Duration(a.CacheDurationSeconds) * time.Second
}

// ServerConfig selects the MCP transport.
type ServerConfig struct {
	Transport string `yaml:"transport,omitempty"` // "stdio" | "sse" | "httpstream"
	Host      string `yaml:"host,omitempty"`      // bind host for network transports
	Port      int    `yaml:"port,omitempty"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // trace, debug, info, warn, error, fatal, silent
	Style string `yaml:"style,omitempty"` // "pretty" | "json"
	File  string `yaml:"file,omitempty"`  // optional log file, teed with stderr
}
