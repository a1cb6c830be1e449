package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mikiyasegaye/From-Raw-Telegram-Data-to-an-Analytical-API/internal/models"
	"github.com/mikiyasegaye/From-Raw-Telegram-Data-to-an-Analytical-API/internal/transform"
)

// Config holds the application's configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	DataLake DataLakeConfig `yaml:"data_lake"`
	Pipeline PipelineConfig `yaml:"pipeline"`
}

// DatabaseConfig contains configuration for the warehouse connection.
type DatabaseConfig struct {
	URL            string `yaml:"url"`
	MigrationsPath string `yaml:"migrations_path"`
}

// ServerConfig configures the analytical API server.
type ServerConfig struct {
	Port string `yaml:"port"`
}

// DataLakeConfig points at the scraper's output on disk.
type DataLakeConfig struct {
	MessagesDir   string `yaml:"messages_dir"`
	DetectionsCSV string `yaml:"detections_csv"`
}

// PipelineConfig carries the data-driven pieces of the transformation:
// the channel classification table and the medical keyword list. Both have
// built-in defaults so an empty config still produces a working pipeline.
type PipelineConfig struct {
	Channels        map[string]models.ChannelClassification `yaml:"channels"`
	MedicalKeywords []string                                `yaml:"medical_keywords"`
}

// LoadConfig reads configuration from the specified YAML file. DATABASE_URL
// in the environment wins over the file, matching how the deployment
// supplies credentials.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		c.Database.URL = url
	}
	if c.Database.MigrationsPath == "" {
		c.Database.MigrationsPath = "migrations"
	}
	if c.Server.Port == "" {
		c.Server.Port = ":8000"
	}
	if c.DataLake.MessagesDir == "" {
		c.DataLake.MessagesDir = "data/raw/telegram_messages"
	}
	if c.DataLake.DetectionsCSV == "" {
		c.DataLake.DetectionsCSV = "results/medical_detection_results.csv"
	}
	if len(c.Pipeline.MedicalKeywords) == 0 {
		c.Pipeline.MedicalKeywords = transform.MedicalKeywords
	}
	if len(c.Pipeline.Channels) == 0 {
		c.Pipeline.Channels = DefaultChannels()
	}
}

// DefaultChannels is the built-in classification table for the channels the
// scraper tracks out of the box. Unknown channels fall through to
// transform.DefaultClassification.
func DefaultChannels() map[string]models.ChannelClassification {
	return map[string]models.ChannelClassification{
		"CheMed123": {
			Category:    "Pharmaceutical Supplier",
			Description: "Medicine and medical equipment sourcing and supply",
			Sector:      "Healthcare",
		},
		"lobelia4cosmetics": {
			Category:    "Cosmetics & Beauty",
			Description: "American and Canadian cosmetics and beauty products",
			Sector:      "Beauty",
		},
		"tikvahpharma": {
			Category:    "Pharma Marketing",
			Description: "Pharma consulting, sales, marketing and promotion",
			Sector:      "Healthcare",
		},
	}
}
