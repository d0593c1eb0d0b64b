package config

import (
	"os"
	"path/filepath"
)

const defaultBaseDir = ".mcp-openwebui"

// Paths holds resolved filesystem paths for mcp-openwebui data.
type Paths struct {
	Base   string // ~/.mcp-openwebui
	Config string // ~/.mcp-openwebui/config.yaml
	Logs   string // ~/.mcp-openwebui/logs
}

// ResolvePaths computes the standard paths from the home directory.
// If MCP_OPENWEBUI_HOME is set, it overrides the default base directory.
func ResolvePaths() (Paths, error) {
	base := os.Getenv("MCP_OPENWEBUI_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, err
		}
		base = filepath.Join(home, defaultBaseDir)
	}

	return Paths{
		Base:   base,
		Config: filepath.Join(base, "config.yaml"),
		Logs:   filepath.Join(base, "logs"),
	}, nil
}

// EnsureDirs creates the standard directories if they don't exist.
func (p Paths) EnsureDirs() error {
	for _, d := range []string{p.Base, p.Logs} {
		if err := os.MkdirAll(d, 0o700); err != nil {
			return err
		}
	}
	return nil
}
