package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run the data-quality battery against the recomputed star schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

		db, err := openDB(cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		violations, err := newPipeline(cfg, db, logger).Validate()
		if err != nil {
			return err
		}
		if len(violations) == 0 {
			logger.Info("All data-quality checks passed")
			return nil
		}

		for _, v := range violations {
			logger.Warn("Data quality violation", zap.String("violation", v.String()))
		}
		return fmt.Errorf("%d data-quality violations found", len(violations))
	},
}
