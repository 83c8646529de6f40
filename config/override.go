// Package config owns the process-wide config-location override slots
// described in spec §9: "Config-location overrides mutate process-wide
// state before configuration is loaded (set_codex_home_override,
// set_config_file_override)." Actual TOML parsing and config-file
// loading are out of scope (spec §1 Non-goals); this package only owns
// the override values an external config loader consults, so once set
// they win over the environment default.
package config

import "sync"

var (
	mu                 sync.RWMutex
	codexHomeOverride  string
	configFileOverride string
)

// SetCodexHomeOverride sets the directory that wins over the
// environment's default home-directory resolution (e.g. $CODEX_HOME).
// An empty string clears the override, restoring environment-default
// resolution.
func SetCodexHomeOverride(dir string) {
	mu.Lock()
	defer mu.Unlock()
	codexHomeOverride = dir
}

// CodexHomeOverride returns the current override and whether one is set.
func CodexHomeOverride() (string, bool) {
	mu.RLock()
	defer mu.RUnlock()
	return codexHomeOverride, codexHomeOverride != ""
}

// SetConfigFileOverride sets the path that wins over the default config
// file location. An empty string clears the override.
func SetConfigFileOverride(path string) {
	mu.Lock()
	defer mu.Unlock()
	configFileOverride = path
}

// ConfigFileOverride returns the current override and whether one is set.
func ConfigFileOverride() (string, bool) {
	mu.RLock()
	defer mu.RUnlock()
	return configFileOverride, configFileOverride != ""
}
