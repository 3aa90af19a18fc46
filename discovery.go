// FILE: lixenwraith/confman/discovery.go
package confman

import (
	"os"
	"path/filepath"
	"strings"
)

// FileDiscoveryOptions configures automatic config file discovery
type FileDiscoveryOptions struct {
	// Base name of config file (without extension)
	Name string

	// Extensions to try (in order)
	Extensions []string

	// Custom search paths (in addition to defaults)
	Paths []string

	// Environment variable to check for explicit path
	EnvVar string

	// CLI flag to check (e.g., "--config")
	CLIFlag string

	// Whether to search in XDG config directories
	UseXDG bool

	// Whether to search in current directory
	UseCurrentDir bool
}

// DefaultDiscoveryOptions returns sensible defaults
func DefaultDiscoveryOptions(appName string) FileDiscoveryOptions {
	return FileDiscoveryOptions{
		Name:          appName,
		Extensions:    []string{".toml", ".yaml", ".yml", ".json", ".ini", ".conf"},
		EnvVar:        strings.ToUpper(appName) + "_CONFIG",
		CLIFlag:       "--config",
		UseXDG:        true,
		UseCurrentDir: true,
	}
}

// WithFileDiscovery adds a file layer resolved at build time. A path named by
// the CLI flag or the environment variable must exist; otherwise the first
// existing candidate is loaded, and finding none contributes nothing.
func (b *Builder) WithFileDiscovery(opts FileDiscoveryOptions) *Builder {
	b.layers = append(b.layers, func(b *Builder) (Source, bool, error) {
		path, explicit := discoverFile(opts, b.args, b.getenv)
		if path == "" {
			// No file found is not an error - app can run with defaults/env
			return nil, false, nil
		}
		fileOpts := []FileOption{WithRegistry(b.registry)}
		if !explicit {
			fileOpts = append(fileOpts, WithOptional())
		}
		return NewFileSource(path, fileOpts...), true, nil
	})
	return b
}

// discoverFile resolves the configuration path. explicit is true when the path
// came from the CLI flag or the environment variable.
func discoverFile(opts FileDiscoveryOptions, args []string, getenv func(string) string) (path string, explicit bool) {
	// Check CLI args first (highest priority)
	if opts.CLIFlag != "" {
		for i, arg := range args {
			if arg == opts.CLIFlag && i+1 < len(args) {
				return args[i+1], true
			}
			if value, ok := strings.CutPrefix(arg, opts.CLIFlag+"="); ok {
				return value, true
			}
		}
	}

	if opts.EnvVar != "" {
		if p := getenv(opts.EnvVar); p != "" {
			return p, true
		}
	}

	// Custom paths first
	searchPaths := append([]string(nil), opts.Paths...)

	if opts.UseCurrentDir {
		if cwd, err := os.Getwd(); err == nil {
			searchPaths = append(searchPaths, cwd)
		}
	}

	if opts.UseXDG {
		searchPaths = append(searchPaths, xdgConfigPaths(opts.Name, getenv)...)
	}

	for _, dir := range searchPaths {
		for _, ext := range opts.Extensions {
			candidate := filepath.Join(expandHome(dir), opts.Name+ext)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, false
			}
		}
	}

	return "", false
}

// xdgConfigPaths returns XDG-compliant config search paths
func xdgConfigPaths(appName string, getenv func(string) string) []string {
	var paths []string

	if xdgHome := getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		paths = append(paths, filepath.Join(xdgHome, appName))
	} else if home := getenv("HOME"); home != "" {
		paths = append(paths, filepath.Join(home, ".config", appName))
	}

	if xdgDirs := getenv("XDG_CONFIG_DIRS"); xdgDirs != "" {
		for _, dir := range filepath.SplitList(xdgDirs) {
			paths = append(paths, filepath.Join(dir, appName))
		}
	} else {
		// Default system paths
		paths = append(paths,
			filepath.Join("/etc/xdg", appName),
			filepath.Join("/etc", appName),
		)
	}

	return paths
}
