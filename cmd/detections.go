package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var detectionsCmd = &cobra.Command{
	Use:   "detections",
	Short: "Reload raw image detections from the YOLO results file",
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

		n, err := newPipeline(cfg, db, logger).LoadDetections()
		if err != nil {
			return err
		}

		logger.Info("Detection load complete", zap.Int("detections", n))
		return nil
	},
}
