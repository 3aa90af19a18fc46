// FILE: lixenwraith/confman/cmd/confman/show.go
package main

import (
	"fmt"
	"strings"

	"github.com/lixenwraith/confman"
	"github.com/spf13/cobra"
)

// newShowCommand creates the show subcommand
func newShowCommand(state *cliState) *cobra.Command {
	var (
		flags  sourceFlags
		format string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the merged configuration",
		Long: `Show merges the given sources in order (files, environment, --set overrides),
validates the result and prints it in the requested format.

Example:
  confman show -f base.toml --optional-file local.yaml -e MYAPP_ --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(state.logger)
			if err != nil {
				return err
			}
			out, err := cfg.Encode(confman.Format(strings.ToLower(format)))
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&format, "format", string(confman.FormatJSON), "output format: json, toml, ini or yaml")

	return cmd
}

// newGetCommand creates the get subcommand
func newGetCommand(state *cliState) *cobra.Command {
	var flags sourceFlags

	cmd := &cobra.Command{
		Use:   "get <path>",
		Short: "Print one value of the merged configuration",
		Long: `Get merges the sources like show and prints the value at a dotted path.
Scalars print as plain text, sections and lists in diagnostic form.

Example:
  confman get -f app.yaml -e MYAPP_ database.port`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load(state.logger)
			if err != nil {
				return err
			}

			path := args[0]
			v, ok := cfg.Get(path)
			if !ok {
				return fmt.Errorf("path not found: %s", path)
			}

			if v.IsScalar() || v.IsNull() {
				s, err := cfg.GetString(path)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), s)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), v.String())
			return nil
		},
	}

	flags.register(cmd)

	return cmd
}
