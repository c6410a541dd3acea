// Package config provides configuration management for the aifgen CLI.
//
// Precedence (highest to lowest): flags > AIFGEN_ env vars > aifgen.yaml
// > defaults. The project root is found by searching upward for
// aifgen.yaml; relative paths in the configuration resolve against it.
package config

import (
	sharedcfg "github.com/aifstack-labs/aifgen/internal/config"
)

// Config holds all CLI configuration options.
type Config struct {
	ProjectName  string   `koanf:"project_name"`
	PackageDir   string   `koanf:"package_dir"`
	Environment  string   `koanf:"environment"`
	Verbose      bool     `koanf:"verbose"`
	OutputFormat string   `koanf:"output"`
	ConfigFiles  []string `koanf:"config_files"`

	// ProjectRoot is derived, never read from the file.
	ProjectRoot string `koanf:"-"`
}

// RuntimeConfigFiles returns the runtime configuration file list written
// into generated assets, falling back to the convention default.
func (c *Config) RuntimeConfigFiles() []string {
	if len(c.ConfigFiles) > 0 {
		return c.ConfigFiles
	}
	return sharedcfg.DefaultConfigFiles(c.ProjectName)
}

// Default configuration values - uses shared defaults from internal/config.
const (
	DefaultPackageDir = sharedcfg.DefaultPackageDir
	DefaultEnv        = sharedcfg.DefaultEnv
	DefaultOutput     = sharedcfg.DefaultOutput
)
