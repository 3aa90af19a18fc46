// FILE: lixenwraith/confman/cmd/confman/raw.go
package main

import (
	"fmt"
	"io"

	"github.com/lixenwraith/confman"
	"github.com/spf13/cobra"
	"golang.org/x/text/encoding/ianaindex"
)

// rawFlags are shared by raw read and raw write.
type rawFlags struct {
	binary   bool
	charset  string
	optional bool
	mode     string
}

func (f *rawFlags) source(path string) (*confman.RawSource, error) {
	var opts []confman.RawOption
	if f.binary {
		opts = append(opts, confman.WithBinary())
	}
	if f.optional {
		opts = append(opts, confman.WithRawOptional())
	}
	if f.charset != "" {
		enc, err := ianaindex.IANA.Encoding(f.charset)
		if err != nil {
			return nil, fmt.Errorf("unknown charset %q: %w", f.charset, err)
		}
		if enc == nil {
			return nil, fmt.Errorf("charset %q is not supported", f.charset)
		}
		opts = append(opts, confman.WithEncoding(enc))
	}
	if f.mode != "" {
		m, err := parseMode(f.mode)
		if err != nil {
			return nil, err
		}
		opts = append(opts, confman.WithFileMode(m))
	}
	return confman.NewRawSource(path, opts...), nil
}

// newRawCommand creates the raw subcommand
func newRawCommand() *cobra.Command {
	var flags rawFlags

	cmd := &cobra.Command{
		Use:   "raw",
		Short: "Read or write an opaque file (secret, certificate, template)",
	}
	cmd.PersistentFlags().BoolVar(&flags.binary, "binary", false, "treat content as bytes instead of text")
	cmd.PersistentFlags().StringVar(&flags.charset, "charset", "", "text encoding by IANA name, e.g. ISO-8859-1 (default strict UTF-8)")

	readCmd := &cobra.Command{
		Use:   "read <path>",
		Short: "Print the file content to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := flags.source(args[0])
			if err != nil {
				return err
			}
			if src.Binary() {
				data, _, err := src.LoadBytes()
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			text, _, err := src.LoadText()
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), text)
			return err
		},
	}
	readCmd.Flags().BoolVar(&flags.optional, "optional", false, "print nothing instead of failing when the file is missing")

	writeCmd := &cobra.Command{
		Use:   "write <path>",
		Short: "Atomically replace the file with stdin",
		Long: `Write reads all of stdin and atomically replaces the file, applying --mode to
the temporary file before any content is written and to the final file.

Example:
  printf 's3cret' | confman raw write /etc/myapp/token --mode 0600`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := flags.source(args[0])
			if err != nil {
				return err
			}
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			if src.Binary() {
				return src.DumpBytes(data)
			}
			return src.DumpText(string(data))
		},
	}
	writeCmd.Flags().StringVar(&flags.mode, "mode", "", "octal permission bits, e.g. 0600")

	cmd.AddCommand(readCmd, writeCmd)

	return cmd
}
