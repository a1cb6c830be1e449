package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: load, transform, validate",
	RunE:  runPipeline,
}

func runPipeline(cmd *cobra.Command, args []string) error {
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

	report, err := newPipeline(cfg, db, logger).Run()
	if report != nil {
		if out, jsonErr := json.MarshalIndent(report, "", "  "); jsonErr == nil {
			fmt.Println(string(out))
		}
	}
	return err
}
