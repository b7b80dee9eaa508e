package cli

import (
	"github.com/spf13/cobra"

	"github.com/stixforge/stixforge/internal/config"
	"github.com/stixforge/stixforge/internal/logging"
	"github.com/stixforge/stixforge/internal/textnorm"
)

func newNormalizeCmd() *cobra.Command {
	cfg := config.DefaultConfig()
	cfg.CheckOnly = true // no output dir or modes required

	cmd := &cobra.Command{
		Use:   "normalize <input-dir>",
		Short: "Normalize report encodings and punctuation without processing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.InputDir = config.NormalizeDirArg(args[0])
			if cfg.CleanDir == "" {
				cfg.CleanDir = config.DeriveCleanDir(cfg.InputDir)
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log, err := logging.NewLogger(&cfg)
			if err != nil {
				return err
			}
			defer log.Close()

			_, err = textnorm.NormalizeDir(cfg.InputDir, cfg.CleanDir, cfg.Verbose, log)
			return err
		},
	}

	cmd.Flags().StringVar(&cfg.CleanDir, "clean-dir", "", "normalized-input directory (default sibling clean_<input>)")
	addCommonFlags(cmd, &cfg)
	return cmd
}
