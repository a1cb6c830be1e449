package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mikiyasegaye/From-Raw-Telegram-Data-to-an-Analytical-API/internal/pipeline"
)

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Rebuild the star schema from the current raw tables",
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

		report := &pipeline.RunReport{}
		if err := newPipeline(cfg, db, logger).Transform(report); err != nil {
			return err
		}

		logger.Info("Transform complete",
			zap.Int("staging", report.StagingRows),
			zap.Int("channels", report.ChannelRows),
			zap.Int("dates", report.DateRows),
			zap.Int("message_facts", report.MessageFacts),
			zap.Int("detection_facts", report.DetectionFacts))
		return nil
	},
}
