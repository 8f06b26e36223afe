package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the build pipeline configuration: the loader repository,
// tool pins, and retry/timeout knobs. Everything has a usable default;
// a config file only overrides.
type Config struct {
	// RepoURL is the loader repository to clone
	RepoURL string `yaml:"repo_url"`

	// NodeVersion is the pinned Node.js version the frontend build requires
	NodeVersion string `yaml:"node_version"`

	// NodeInstallerURL is where the pinned Node.js installer is downloaded from
	NodeInstallerURL string `yaml:"node_installer_url"`

	// RuntimeSubtrees are the directories every runtime tree must contain
	RuntimeSubtrees []string `yaml:"runtime_subtrees"`

	// InstallTimeout bounds OS-level install/uninstall steps
	InstallTimeout time.Duration `yaml:"install_timeout"`

	// SettleDelay is the wait after an installer exits before probing
	SettleDelay time.Duration `yaml:"settle_delay"`

	// ProbeRetries is how often a freshly installed tool is re-probed
	ProbeRetries int `yaml:"probe_retries"`

	// ProbeDelay is the wait between post-install probes
	ProbeDelay time.Duration `yaml:"probe_delay"`
}

// Default returns the configuration for a stock Decky Loader build.
func Default() *Config {
	return &Config{
		RepoURL:          "https://github.com/SteamDeckHomebrew/decky-loader.git",
		NodeVersion:      "18.18.0",
		NodeInstallerURL: "https://nodejs.org/dist/v18.18.0/node-v18.18.0-x64.msi",
		RuntimeSubtrees:  []string{"data", "logs", "plugins", "services", "settings", "themes"},
		InstallTimeout:   10 * time.Minute,
		SettleDelay:      10 * time.Second,
		ProbeRetries:     3,
		ProbeDelay:       5 * time.Second,
	}
}

// Load reads a Config from a YAML file, filling unset fields from the
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.RepoURL == "" {
		return fmt.Errorf("repo_url must not be empty")
	}
	if c.NodeVersion == "" {
		return fmt.Errorf("node_version must not be empty")
	}
	if len(c.RuntimeSubtrees) == 0 {
		return fmt.Errorf("runtime_subtrees must not be empty")
	}
	if c.ProbeRetries < 1 {
		return fmt.Errorf("probe_retries must be at least 1")
	}
	return nil
}
