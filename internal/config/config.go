// Package config handles loading changespec.toml configuration files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Defaults applied when neither config file sets a value.
const (
	DefaultMinInterval  = 5 * time.Minute
	DefaultCheckTimeout = 2 * time.Minute
	DefaultCloudRoot    = "~/cloud"
	DefaultSrcBase      = "src"
)

// Config represents the changespec.toml configuration file.
type Config struct {
	Sync      Sync      `toml:"sync"`
	Commands  Commands  `toml:"commands"`
	Workspace Workspace `toml:"workspace"`
}

// Sync contains polling configuration.
type Sync struct {
	// MinInterval is the throttle window between checks of one ChangeSpec.
	MinInterval Duration `toml:"min-interval"`

	// CheckTimeout bounds a single external check.
	CheckTimeout Duration `toml:"check-timeout"`
}

// Commands names the external commands invoked by checks. Each receives the
// ChangeSpec name as its final argument.
type Commands struct {
	Submitted string `toml:"submitted"`
	Comments  string `toml:"comments"`
	Presubmit string `toml:"presubmit"`
}

// Workspace locates project checkouts: <cloud-root>/<project>/<src-base>.
type Workspace struct {
	CloudRoot string `toml:"cloud-root"`
	SrcBase   string `toml:"src-base"`
}

// Duration decodes TOML strings like "5m" into a time.Duration.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", text, err)
	}
	if parsed < 0 {
		return fmt.Errorf("duration %q cannot be negative", text)
	}
	d.Duration = parsed
	return nil
}

// Load loads configuration from dir and the global config file.
// Missing files are not errors; unset values take their defaults.
func Load(dir string) (*Config, error) {
	globalPath, err := GlobalConfigPath()
	if err != nil {
		return nil, err
	}

	globalCfg, _, err := loadConfigFile(globalPath)
	if err != nil {
		return nil, err
	}

	localCfg, localMeta, err := loadConfigFile(filepath.Join(dir, "changespec.toml"))
	if err != nil {
		return nil, err
	}

	merged := mergeConfigs(globalCfg, localCfg, localMeta)
	merged.applyDefaults()
	return merged, nil
}

// GlobalConfigPath returns ~/.config/changespec/config.toml.
func GlobalConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "changespec", "config.toml"), nil
}

func loadConfigFile(path string) (*Config, toml.MetaData, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, toml.MetaData{}, nil
	}
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	var cfg Config
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("parse config file %s: %w", path, err)
	}

	return &cfg, meta, nil
}

func mergeConfigs(globalCfg, localCfg *Config, localMeta toml.MetaData) *Config {
	if globalCfg == nil {
		globalCfg = &Config{}
	}
	if localCfg == nil {
		localCfg = &Config{}
	}

	merged := Config{}
	merged.Sync.MinInterval = mergeDuration(localMeta.IsDefined("sync", "min-interval"), localCfg.Sync.MinInterval, globalCfg.Sync.MinInterval)
	merged.Sync.CheckTimeout = mergeDuration(localMeta.IsDefined("sync", "check-timeout"), localCfg.Sync.CheckTimeout, globalCfg.Sync.CheckTimeout)
	merged.Commands.Submitted = mergeString(localMeta.IsDefined("commands", "submitted"), localCfg.Commands.Submitted, globalCfg.Commands.Submitted)
	merged.Commands.Comments = mergeString(localMeta.IsDefined("commands", "comments"), localCfg.Commands.Comments, globalCfg.Commands.Comments)
	merged.Commands.Presubmit = mergeString(localMeta.IsDefined("commands", "presubmit"), localCfg.Commands.Presubmit, globalCfg.Commands.Presubmit)
	merged.Workspace.CloudRoot = mergeString(localMeta.IsDefined("workspace", "cloud-root"), localCfg.Workspace.CloudRoot, globalCfg.Workspace.CloudRoot)
	merged.Workspace.SrcBase = mergeString(localMeta.IsDefined("workspace", "src-base"), localCfg.Workspace.SrcBase, globalCfg.Workspace.SrcBase)

	return &merged
}

func mergeString(localDefined bool, localValue, globalValue string) string {
	value := globalValue
	if localDefined {
		value = localValue
	}
	return strings.TrimSpace(value)
}

func mergeDuration(localDefined bool, localValue, globalValue Duration) Duration {
	if localDefined {
		return localValue
	}
	return globalValue
}

func (c *Config) applyDefaults() {
	if c.Sync.MinInterval.Duration == 0 {
		c.Sync.MinInterval.Duration = DefaultMinInterval
	}
	if c.Sync.CheckTimeout.Duration == 0 {
		c.Sync.CheckTimeout.Duration = DefaultCheckTimeout
	}
	if c.Workspace.CloudRoot == "" {
		c.Workspace.CloudRoot = DefaultCloudRoot
	}
	if c.Workspace.SrcBase == "" {
		c.Workspace.SrcBase = DefaultSrcBase
	}
}
