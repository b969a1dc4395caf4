// Package config models vaultkeeper's persisted settings: backup roots,
// retention policy, per-game/per-path overrides, and cloud sync options.
// Loading goes through viper so the same file can be overridden by
// environment variables (VAULTKEEPER_*) without extra plumbing.
package config

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"vaultkeeper/internal/manifest"
)

// Root identifies one scanned root directory and the store it belongs to,
// used to find secondary manifests and resolve installDir entries.
type Root struct {
	Path  string          `yaml:"path" mapstructure:"path"`
	Store manifest.Store  `yaml:"store" mapstructure:"store"`
}

// BackupSettings groups the options that apply specifically to the backup
// operation.
type BackupSettings struct {
	Path           string          `yaml:"path" mapstructure:"path"`
	IgnoredGames   []string        `yaml:"ignoredGames,omitempty" mapstructure:"ignoredGames"`
	Filter         BackupFilter    `yaml:"filter" mapstructure:"filter"`
	ToggledPaths   ToggledPaths    `yaml:"toggledPaths,omitempty" mapstructure:"toggledPaths"`
	ToggledReg     ToggledRegistry `yaml:"toggledRegistry,omitempty" mapstructure:"toggledRegistry"`
	Retention      Retention       `yaml:"retention" mapstructure:"retention"`
	Format         BackupFormats   `yaml:"format" mapstructure:"format"`
}

// RestoreSettings groups the options that apply specifically to the
// restore operation.
type RestoreSettings struct {
	Path         string          `yaml:"path" mapstructure:"path"`
	IgnoredGames []string        `yaml:"ignoredGames,omitempty" mapstructure:"ignoredGames"`
	ToggledPaths ToggledPaths    `yaml:"toggledPaths,omitempty" mapstructure:"toggledPaths"`
	ToggledReg   ToggledRegistry `yaml:"toggledRegistry,omitempty" mapstructure:"toggledRegistry"`
}

// Config is the full settings tree.
type Config struct {
	Roots       []Root            `yaml:"roots" mapstructure:"roots"`
	Redirects   []RedirectConfig  `yaml:"redirects,omitempty" mapstructure:"redirects"`
	Backup      BackupSettings    `yaml:"backup" mapstructure:"backup"`
	Restore     RestoreSettings   `yaml:"restore" mapstructure:"restore"`
	Cloud       Cloud             `yaml:"cloud" mapstructure:"cloud"`
	Apps        Apps              `yaml:"apps" mapstructure:"apps"`
	CustomGames []CustomGame      `yaml:"customGames,omitempty" mapstructure:"customGames"`
}

// Default returns a Config with every field at its documented default,
// the same shape the original ships when no config file exists yet.
func Default() Config {
	return Config{
		Backup: BackupSettings{
			Retention: DefaultRetention(),
			Format:    DefaultBackupFormats(),
		},
		Cloud: DefaultCloud(),
		Apps:  DefaultApps(),
	}
}

// Load reads a YAML config file at path via viper, overridable by
// environment variables with the VAULTKEEPER_ prefix (e.g.
// VAULTKEEPER_CLOUD_SYNCHRONIZE=false).
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("vaultkeeper")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := Default()

	if err := v.ReadInConfig(); err != nil {
		if errors.As(err, new(viper.ConfigFileNotFoundError)) || os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, errors.Wrap(err, "reading config file")
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "decoding config")
	}

	return cfg, nil
}

// Save writes cfg as YAML to path.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "encoding config")
	}
	return os.WriteFile(path, data, 0o644)
}
