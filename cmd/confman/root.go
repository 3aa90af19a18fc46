// FILE: lixenwraith/confman/cmd/confman/root.go
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/lixenwraith/confman"
	"github.com/spf13/cobra"
)

// sourceFlags selects the sources merged by show and get.
type sourceFlags struct {
	files         []string
	optionalFiles []string
	envPrefix     string
	schemaPath    string
	sets          []string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.files, "file", "f", nil, "configuration file to merge (repeatable, must exist)")
	cmd.Flags().StringArrayVar(&f.optionalFiles, "optional-file", nil, "configuration file merged only if present (repeatable)")
	cmd.Flags().StringVarP(&f.envPrefix, "env-prefix", "e", "", "merge environment variables with this prefix, e.g. MYAPP_")
	cmd.Flags().StringVar(&f.schemaPath, "schema", "", "JSON Schema file the merged configuration must satisfy")
	cmd.Flags().StringArrayVar(&f.sets, "set", nil, "override a value, e.g. --set server.port=9090 (repeatable)")
}

// load merges files in flag order, then the environment, then --set values.
func (f *sourceFlags) load(logger *slog.Logger) (*confman.Config, error) {
	b := confman.NewBuilder().WithLogger(logger)

	for _, path := range f.files {
		b = b.WithFile(path)
	}
	for _, path := range f.optionalFiles {
		b = b.WithOptionalFile(path)
	}
	if f.envPrefix != "" {
		b = b.WithEnvPrefix(f.envPrefix)
	}
	if len(f.sets) > 0 {
		args := make([]string, len(f.sets))
		for i, s := range f.sets {
			args[i] = "--" + s
		}
		b = b.WithArgs(args)
	}
	if f.schemaPath != "" {
		schema, err := os.ReadFile(f.schemaPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema: %w", err)
		}
		b = b.WithSchema(schema)
	}

	return b.Build()
}

// cliState is shared by the subcommands of one invocation.
type cliState struct {
	logger *slog.Logger
}

// NewRootCommand builds the confman command tree.
func NewRootCommand(version, commit, date string) *cobra.Command {
	var verbose bool
	state := &cliState{logger: slog.New(slog.DiscardHandler)}

	rootCmd := &cobra.Command{
		Use:   "confman",
		Short: "Layered configuration loader and converter",
		Long: `confman merges configuration from JSON, TOML, INI and YAML files, environment
variables and command-line overrides, validates the result against an optional
JSON Schema, and converts configuration files between formats.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			state.logger = newLogger(cmd.ErrOrStderr(), verbose)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log each source as it loads")

	// Add subcommands
	rootCmd.AddCommand(newShowCommand(state))
	rootCmd.AddCommand(newGetCommand(state))
	rootCmd.AddCommand(newConvertCommand())
	rootCmd.AddCommand(newRawCommand())

	return rootCmd
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
