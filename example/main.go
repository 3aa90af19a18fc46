// FILE: lixenwraith/confman/example/main.go
package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lixenwraith/confman"
)

// AppConfig is the target structure for the merged configuration.
type AppConfig struct {
	Server struct {
		Host     string        `toml:"host"`
		Port     int64         `toml:"port"`
		LogLevel string        `toml:"log_level"`
		Timeout  time.Duration `toml:"timeout"`
	} `toml:"server"`
	FeatureFlags map[string]bool `toml:"feature_flags"`
}

const schema = `{
  "type": "object",
  "properties": {
    "server": {
      "type": "object",
      "properties": {
        "port": {"type": "integer", "minimum": 1, "maximum": 65535}
      }
    }
  }
}`

func main() {
	dir, err := os.MkdirTemp("", "confman-example-")
	if err != nil {
		log.Fatalf("failed to create work dir: %v", err)
	}
	defer os.RemoveAll(dir)

	// PART 1: write a base file in TOML
	log.Println("---")
	log.Println("PART 1: writing base configuration")

	base, err := confman.MappingFrom(map[string]any{
		"server": map[string]any{
			"host":      "localhost",
			"port":      8080,
			"log_level": "info",
		},
		"feature_flags": map[string]any{"enable_metrics": true},
	})
	if err != nil {
		log.Fatalf("failed to build base tree: %v", err)
	}

	basePath := filepath.Join(dir, "app.toml")
	if err := confman.NewFileSource(basePath).Dump(base); err != nil {
		log.Fatalf("failed to write %s: %v", basePath, err)
	}
	log.Printf("wrote %s", basePath)

	// PART 2: defaults < file < optional local file < environment < arguments
	log.Println("---")
	log.Println("PART 2: loading with the builder")

	defaults := &AppConfig{}
	defaults.Server.Timeout = 30 * time.Second
	defaults.Server.LogLevel = "warn"

	os.Setenv("APP_SERVER__PORT", "9090")
	defer os.Unsetenv("APP_SERVER__PORT")

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var target AppConfig
	cfg, err := confman.NewBuilder().
		WithDefaults(defaults).
		WithFile(basePath).
		WithOptionalFile(filepath.Join(dir, "app.local.yaml")).
		WithEnvPrefix("APP_").
		WithArgs([]string{"--server.log_level=debug"}).
		WithSchema([]byte(schema)).
		WithLogger(logger).
		BuildAndScan(&target)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	log.Printf("config: %s", cfg)
	log.Printf("server: %s:%d (log level %s, timeout %s)",
		target.Server.Host, target.Server.Port, target.Server.LogLevel, target.Server.Timeout)
	log.Printf("features: %v", target.FeatureFlags)

	// PART 3: convert the merged result to YAML and INI
	log.Println("---")
	log.Println("PART 3: encoding the merged configuration")

	for _, format := range []confman.Format{confman.FormatYAML, confman.FormatINI} {
		out, err := cfg.Encode(format)
		if err != nil {
			log.Fatalf("failed to encode %s: %v", format, err)
		}
		fmt.Printf("# %s\n%s\n", format, out)
	}

	// PART 4: store a secret with restricted permissions
	log.Println("---")
	log.Println("PART 4: raw secret file")

	secret := confman.NewRawSource(filepath.Join(dir, "secrets", "token"), confman.WithFileMode(0o600))
	if err := secret.DumpText("s3cret\n"); err != nil {
		log.Fatalf("failed to write secret: %v", err)
	}
	info, err := os.Stat(secret.Path())
	if err != nil {
		log.Fatalf("failed to stat secret: %v", err)
	}
	log.Printf("secret written with mode %v", info.Mode().Perm())
}
