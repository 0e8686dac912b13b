// Package config loads Catenary's TOML configuration, layering defaults,
// a user config directory file, a project-local .catenary.toml discovered
// by walking up from the working directory, an explicit file, and
// CATENARY_* environment overrides — grounded on original_source/src/config.rs,
// with TOML decoding delegated to github.com/BurntSushi/toml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ServerConfig names the command used to spawn one language's server.
type ServerConfig struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
}

// LanguageCommands is a per-language run-tool allowlist, active only when
// that language is detected in the target workspace (SPEC_FULL.md §7).
type LanguageCommands struct {
	Allowed []string `toml:"allowed"`
}

// RunToolConfig configures the `run` tool's command allowlist. "*" in
// Allowed means unrestricted.
type RunToolConfig struct {
	Allowed   []string                    `toml:"allowed"`
	Languages map[string]LanguageCommands `toml:"languages"`
}

// ToolsConfig groups tool-specific settings.
type ToolsConfig struct {
	Run RunToolConfig `toml:"run"`
}

// LockConfig configures internal/locks' default timeout/grace.
type LockConfig struct {
	TimeoutSecs int `toml:"timeout_secs"`
	GraceSecs   int `toml:"grace_secs"`
}

// Config is Catenary's full, merged configuration.
type Config struct {
	Servers         map[string]ServerConfig `toml:"servers"`
	Tools           ToolsConfig             `toml:"tools"`
	Locks           LockConfig              `toml:"locks"`
	LogLevel        string                  `toml:"log_level"`
	IdleTimeoutSecs int                     `toml:"idle_timeout_secs"`
	NotifySocket    string                  `toml:"notify_socket"`
}

// Defaults returns the built-in baseline configuration.
func Defaults() Config {
	return Config{
		Servers:         map[string]ServerConfig{},
		Tools:           ToolsConfig{Run: RunToolConfig{Allowed: []string{}, Languages: map[string]LanguageCommands{}}},
		Locks:           LockConfig{TimeoutSecs: 180, GraceSecs: 30},
		LogLevel:        "info",
		IdleTimeoutSecs: 300,
	}
}

// Load builds the final Config by layering, in increasing priority:
// defaults, a user config dir file, a project-local .catenary.toml found by
// walking up from cwd, explicitFile if non-empty, then CATENARY_* env vars.
func Load(explicitFile string) (Config, error) {
	cfg := Defaults()

	if userDir, err := os.UserConfigDir(); err == nil {
		userFile := filepath.Join(userDir, "catenary", "config.toml")
		if err := mergeFile(&cfg, userFile); err != nil {
			return cfg, err
		}
	}

	if cwd, err := os.Getwd(); err == nil {
		if projectFile, ok := findProjectConfig(cwd); ok {
			if err := mergeFile(&cfg, projectFile); err != nil {
				return cfg, err
			}
		}
	}

	if explicitFile != "" {
		if err := mergeFile(&cfg, explicitFile); err != nil {
			return cfg, err
		}
	}

	applyEnvOverrides(&cfg)

	return cfg, nil
}

// findProjectConfig walks up from dir looking for .catenary.toml.
func findProjectConfig(dir string) (string, bool) {
	for {
		candidate := filepath.Join(dir, ".catenary.toml")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// mergeFile decodes path (if it exists) and overlays its fields onto cfg.
func mergeFile(cfg *Config, path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	var layer Config
	if _, err := toml.DecodeFile(path, &layer); err != nil {
		return fmt.Errorf("config: decoding %s: %w", path, err)
	}
	mergeInto(cfg, layer)
	return nil
}

// mergeInto overlays every non-zero field of layer onto cfg.
func mergeInto(cfg *Config, layer Config) {
	for lang, sc := range layer.Servers {
		if cfg.Servers == nil {
			cfg.Servers = map[string]ServerConfig{}
		}
		cfg.Servers[lang] = sc
	}
	if len(layer.Tools.Run.Allowed) > 0 {
		cfg.Tools.Run.Allowed = layer.Tools.Run.Allowed
	}
	for lang, lc := range layer.Tools.Run.Languages {
		if cfg.Tools.Run.Languages == nil {
			cfg.Tools.Run.Languages = map[string]LanguageCommands{}
		}
		cfg.Tools.Run.Languages[lang] = lc
	}
	if layer.Locks.TimeoutSecs != 0 {
		cfg.Locks.TimeoutSecs = layer.Locks.TimeoutSecs
	}
	if layer.Locks.GraceSecs != 0 {
		cfg.Locks.GraceSecs = layer.Locks.GraceSecs
	}
	if layer.LogLevel != "" {
		cfg.LogLevel = layer.LogLevel
	}
	if layer.IdleTimeoutSecs != 0 {
		cfg.IdleTimeoutSecs = layer.IdleTimeoutSecs
	}
	if layer.NotifySocket != "" {
		cfg.NotifySocket = layer.NotifySocket
	}
}

// applyEnvOverrides honors CATENARY_LOG_LEVEL, CATENARY_IDLE_TIMEOUT_SECS,
// and CATENARY_NOTIFY_SOCKET, matching the original's env-var layer.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CATENARY_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("CATENARY_NOTIFY_SOCKET"); v != "" {
		cfg.NotifySocket = v
	}
	if v := os.Getenv("CATENARY_IDLE_TIMEOUT_SECS"); v != "" {
		var secs int
		if _, err := fmt.Sscanf(v, "%d", &secs); err == nil && secs > 0 {
			cfg.IdleTimeoutSecs = secs
		}
	}
}
