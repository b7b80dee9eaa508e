package cli

import (
	"github.com/spf13/cobra"

	"github.com/stixforge/stixforge/internal/check"
	"github.com/stixforge/stixforge/internal/config"
	"github.com/stixforge/stixforge/internal/logging"
)

func newCheckCmd() *cobra.Command {
	cfg := config.DefaultConfig()
	cfg.CheckOnly = true

	cmd := &cobra.Command{
		Use:   "check [input-dir [output-dir]]",
		Short: "Diagnose engine availability, credentials, and directory access",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				cfg.InputDir = config.NormalizeDirArg(args[0])
			}
			if len(args) > 1 {
				cfg.OutputDir = config.NormalizeDirArg(args[1])
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log, err := logging.NewLogger(&cfg)
			if err != nil {
				return err
			}
			defer log.Close()

			check.RunCheck(&cfg, log)
			return nil
		},
	}

	cmd.Flags().StringVar(&cfg.EngineBin, "engine-bin", cfg.EngineBin, "engine binary")
	cmd.Flags().StringVar(&cfg.EngineURL, "engine-url", "", "remote engine endpoint")
	addCommonFlags(cmd, &cfg)
	return cmd
}
