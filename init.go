package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/phobologic/apicover/internal/config"
)

// newInitCmd implements `apicover init`, which writes a config file holding
// the default settings so they can be edited instead of passed as flags.
func newInitCmd(stdout, stderr io.Writer) *cobra.Command {
	var dryRun, force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a default " + config.DefaultFile,
		Long: `Write the default apicover settings to a YAML config file.

path defaults to ./` + config.DefaultFile + `. An existing file is left untouched
unless --force is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.Marshal(config.Default())
			if err != nil {
				return fmt.Errorf("encoding config: %w", err)
			}

			if dryRun {
				_, _ = stdout.Write(data)
				return nil
			}

			path := config.DefaultFile
			if len(args) > 0 {
				path = args[0]
			}

			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				} else if !errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("checking %s: %w", path, err)
				}
			}

			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}

			_, _ = fmt.Fprintf(stderr, "wrote apicover config to %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the config without writing it")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}
