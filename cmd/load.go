package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Reload the raw tables from the data lake and detection results",
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

		p := newPipeline(cfg, db, logger)

		msgs, err := p.LoadMessages()
		if err != nil {
			return err
		}
		dets, err := p.LoadDetections()
		if err != nil {
			return err
		}

		logger.Info("Raw load complete", zap.Int("messages", msgs), zap.Int("detections", dets))
		return nil
	},
}
