package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stixforge/stixforge/internal/batch"
	"github.com/stixforge/stixforge/internal/check"
	"github.com/stixforge/stixforge/internal/config"
	"github.com/stixforge/stixforge/internal/display"
	"github.com/stixforge/stixforge/internal/logging"
)

func newBatchCmd() *cobra.Command {
	cfg := config.DefaultConfig()
	var modes, extractions, labels string

	cmd := &cobra.Command{
		Use:   "batch <input-dir> <output-dir>",
		Short: "Process every report in a directory across all selected modes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.InputDir = config.NormalizeDirArg(args[0])
			cfg.OutputDir = config.NormalizeDirArg(args[1])
			cfg.Modes = config.SplitList(modes)
			if extractions != "" {
				cfg.Extractions = config.SplitList(extractions)
			}
			cfg.Labels = config.SplitList(labels)

			if err := cfg.Validate(); err != nil {
				return err
			}
			inputAbs, err := filepath.Abs(cfg.InputDir)
			if err != nil {
				return err
			}
			outputAbs, err := filepath.Abs(cfg.OutputDir)
			if err != nil {
				return err
			}
			if err := cfg.ValidatePaths(inputAbs, outputAbs); err != nil {
				return err
			}

			log, err := logging.NewLogger(&cfg)
			if err != nil {
				return err
			}
			defer log.Close()

			display.PrintBanner()

			if !cfg.DryRun {
				if err := check.CheckDeps(&cfg); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			report, err := batch.NewCoordinator(&cfg, log).Run(ctx)
			if err != nil {
				return err
			}
			if report.ZeroSucceeded() {
				return fmt.Errorf("no tasks succeeded (%d failed, %d timed out)",
					report.Failed, report.TimedOut)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&modes, "modes", "m", "standard", "comma-separated processing modes")
	f.StringVarP(&extractions, "extractions", "e", "", "comma-separated extraction selectors (default pattern_*)")
	f.StringVar(&cfg.CleanDir, "clean-dir", "", "normalized-input directory (default sibling clean_<input>)")
	f.StringVar((*string)(&cfg.TLPLevel), "tlp", string(cfg.TLPLevel), "TLP level: clear, green, amber, amber_strict, red")
	f.IntVar(&cfg.Confidence, "confidence", config.ConfidenceUnset, "confidence score 0-100")
	f.StringVar(&labels, "labels", "", "comma-separated labels for produced bundles")
	f.StringVar(&cfg.EngineBin, "engine-bin", cfg.EngineBin, "engine binary")
	f.StringVar(&cfg.EngineName, "engine-name", cfg.EngineName, "engine name used in output filenames")
	f.StringVar(&cfg.EngineURL, "engine-url", "", "remote engine endpoint (overrides --engine-bin)")
	f.StringVar(&cfg.EngineWorkDir, "engine-work-dir", cfg.EngineWorkDir, "directory the engine writes bundles into")
	f.DurationVar(&cfg.TaskTimeout, "task-timeout", cfg.TaskTimeout, "per-task timeout")
	f.IntVarP(&cfg.Workers, "workers", "w", cfg.Workers, "concurrent tasks")
	f.BoolVar(&cfg.DryRun, "dry-run", false, "expand and log tasks without invoking the engine")
	f.BoolVar(&cfg.SkipExisting, "skip-existing", false, "skip tasks whose output file already exists")
	addCommonFlags(cmd, &cfg)
	return cmd
}
