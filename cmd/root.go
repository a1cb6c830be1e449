package cmd

import (
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mikiyasegaye/From-Raw-Telegram-Data-to-an-Analytical-API/internal/config"
	"github.com/mikiyasegaye/From-Raw-Telegram-Data-to-an-Analytical-API/internal/pipeline"
	"github.com/mikiyasegaye/From-Raw-Telegram-Data-to-an-Analytical-API/internal/repository"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "telegram-analytics",
	Short: "Telegram medical business analytics warehouse: ELT pipeline and API",
	RunE:  runPipeline,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "configs/config.yml", "path to the YAML config file")

	rootCmd.AddCommand(apiCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(detectionsCmd)
	rootCmd.AddCommand(transformCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(runCmd)
}

// setup loads .env and the YAML config and builds the logger every command
// shares.
func setup() (*config.Config, *zap.Logger, error) {
	_ = godotenv.Load() // .env is optional

	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, nil, err
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func openDB(cfg *config.Config, logger *zap.Logger) (*sqlx.DB, error) {
	return repository.NewPostgresDB(cfg.Database.URL, logger)
}

func newPipeline(cfg *config.Config, db *sqlx.DB, logger *zap.Logger) *pipeline.Pipeline {
	rawRepo := repository.NewRawRepository(db, logger)
	warehouseRepo := repository.NewWarehouseRepository(db, logger)
	return pipeline.New(rawRepo, warehouseRepo, cfg, logger)
}
