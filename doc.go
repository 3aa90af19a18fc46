// FILE: lixenwraith/confman/doc.go

// Package confman loads layered configuration for Go applications from in-memory
// maps, defaults structs, files (JSON, TOML, INI, YAML), environment variables and
// command-line arguments, merges them in priority order, optionally validates the
// result against a JSON Schema and exposes it as an immutable Config.
//
// Features:
//   - Closed tagged-union tree (Value / Mapping) with insertion order preserved
//   - Ordered sources; later sources override earlier ones, nested mappings merge
//   - Format codecs with a capability registry (a missing codec is an ordinary error)
//   - Environment variables mapped to nested keys with "__" separators
//   - Crash-safe atomic writes for configuration files and raw blobs
//   - Typed errors that can be matched broadly (ErrConfiguration) or narrowly
//
// Quick Start:
//
//	type AppConfig struct {
//	    Server struct {
//	        Host string `toml:"host"`
//	        Port int    `toml:"port"`
//	    } `toml:"server"`
//	}
//
//	defaults := AppConfig{}
//	defaults.Server.Host = "localhost"
//	defaults.Server.Port = 8080
//
//	cfg, err := confman.Quick(defaults, "MYAPP_", "config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	host, _ := cfg.GetString("server.host")
//	port, _ := cfg.GetInt64("server.port")
//
// Precedence follows source registration order (last wins):
//
//	base, _ := confman.NewStructSource(defaults)
//	env, _ := confman.NewEnvSource("MYAPP_")
//	m, err := confman.NewManager([]confman.Source{
//	    base,
//	    confman.NewFileSource("/etc/myapp/config.yaml", confman.WithOptional()),
//	    env,
//	}, confman.WithLogger(slog.Default()))
//	cfg, err := m.Load()
//
// Thread Safety:
// A Manager is read-only after construction and Load may be called concurrently.
// A Config never changes after it is returned. Concurrent Dump calls on the same
// path are not synchronized, but readers never observe a partially written file.
package confman
