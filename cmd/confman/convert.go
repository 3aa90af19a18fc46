// FILE: lixenwraith/confman/cmd/confman/convert.go
package main

import (
	"fmt"
	"io/fs"
	"strconv"

	"github.com/lixenwraith/confman"
	"github.com/spf13/cobra"
)

// newConvertCommand creates the convert subcommand
func newConvertCommand() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "convert <input> <output>",
		Short: "Convert a configuration file to another format",
		Long: `Convert reads one configuration file and atomically writes it to another path.
Both formats follow the file extensions.

Example:
  confman convert settings.ini settings.yaml --mode 0600`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := confman.NewFileSource(args[0])
			v, _, err := in.Load()
			if err != nil {
				return err
			}
			tree, _ := v.AsMapping()

			var opts []confman.FileOption
			if mode != "" {
				m, err := parseMode(mode)
				if err != nil {
					return err
				}
				opts = append(opts, confman.WithDumpMode(m))
			}

			out := confman.NewFileSource(args[1], opts...)
			if err := out.Dump(tree); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", out.Path())
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "octal permission bits for the output file, e.g. 0600")

	return cmd
}

// parseMode reads an octal permission string.
func parseMode(s string) (fs.FileMode, error) {
	m, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid mode %q: %w", s, err)
	}
	return fs.FileMode(m), nil
}
