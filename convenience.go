// FILE: lixenwraith/confman/convenience.go
package confman

import (
	"fmt"
	"os"
)

// Quick loads configuration with the standard precedence
// arguments > environment > file > defaults in a single call.
// structDefaults may be nil, envPrefix empty (no environment layer) and
// configFile empty (no file); a named file that does not exist is skipped.
// Arguments come from os.Args[1:].
func Quick(structDefaults any, envPrefix, configFile string) (*Config, error) {
	b := NewBuilder().
		WithDefaults(structDefaults).
		WithEnvPrefix(envPrefix).
		WithArgs(os.Args[1:])

	if configFile != "" {
		b = b.WithOptionalFile(configFile)
	}

	return b.Build()
}

// MustQuick is like Quick but panics on error
func MustQuick(structDefaults any, envPrefix, configFile string) *Config {
	cfg, err := Quick(structDefaults, envPrefix, configFile)
	if err != nil {
		panic(fmt.Sprintf("config initialization failed: %v", err))
	}
	return cfg
}
