// Package config holds shared configuration defaults and the {ENV}
// placeholder convention used by the generated runtime configuration
// lists.
package config

import "strings"

// Default configuration values.
const (
	// DefaultPackageDir is the package root relative to the project
	// root. The project root is the directory holding aifgen.yaml.
	DefaultPackageDir = "."

	DefaultEnv    = "dev"
	DefaultOutput = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)

// EnvPlaceholder is the literal kept in generated configuration file
// lists and replaced per deployment by the runtime configuration loader.
const EnvPlaceholder = "{ENV}"

// DefaultConfigFiles returns the ordered runtime configuration file list
// written into generated assets: the shared base configuration followed
// by the project's per-environment warehouse configuration.
func DefaultConfigFiles(project string) []string {
	return []string{
		"aif/common/aif/resources/config/base.yaml",
		"aif/" + project + "/resources/config/" + EnvPlaceholder + "/dwh.yaml",
	}
}

// ResolveEnv substitutes the {ENV} placeholder in each path.
func ResolveEnv(paths []string, env string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = strings.ReplaceAll(p, EnvPlaceholder, env)
	}
	return out
}
