package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jhuilla/gate/internal/config"
)

func newInitCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter " + config.FileName,
		Long: `Write a starter ` + config.FileName + ` to the current directory.
Refuses to overwrite an existing file unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("determining workspace: %w", err)
			}
			path := filepath.Join(wd, config.FileName)

			flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
			if !force {
				flags |= os.O_EXCL
			}
			f, err := os.OpenFile(path, flags, 0o644)
			if errors.Is(err, fs.ErrExist) {
				return config.Errorf(err, "%s already exists; use --force to overwrite", config.FileName)
			}
			if err != nil {
				return fmt.Errorf("writing %s: %w", config.FileName, err)
			}
			if _, err := f.WriteString(config.Template); err != nil {
				_ = f.Close()
				return fmt.Errorf("writing %s: %w", config.FileName, err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("writing %s: %w", config.FileName, err)
			}

			fmt.Fprintf(a.stderr, "Wrote %s\n", config.FileName)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing "+config.FileName)
	return cmd
}
