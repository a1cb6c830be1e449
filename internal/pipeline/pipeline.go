// Package pipeline sequences the batch ELT run: load the data lake into the
// raw schema, recompute the star schema wholesale, then run the validation
// battery. One run at a time, run-to-completion; concurrency control is the
// caller's (scheduler's) problem.
package pipeline

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mikiyasegaye/From-Raw-Telegram-Data-to-an-Analytical-API/internal/config"
	"github.com/mikiyasegaye/From-Raw-Telegram-Data-to-an-Analytical-API/internal/loader"
	"github.com/mikiyasegaye/From-Raw-Telegram-Data-to-an-Analytical-API/internal/models"
	"github.com/mikiyasegaye/From-Raw-Telegram-Data-to-an-Analytical-API/internal/repository"
	"github.com/mikiyasegaye/From-Raw-Telegram-Data-to-an-Analytical-API/internal/transform"
	"github.com/mikiyasegaye/From-Raw-Telegram-Data-to-an-Analytical-API/internal/validate"
)

// ErrValidationFailed marks a run whose derived tables were rebuilt but
// failed the data-quality battery. The tables stay in place; the violations
// in the report say why the run doesn't count as clean.
var ErrValidationFailed = errors.New("pipeline validation failed")

// RunReport summarizes one pipeline run.
type RunReport struct {
	RunID          string               `json:"run_id"`
	StartedAt      time.Time            `json:"started_at"`
	FinishedAt     time.Time            `json:"finished_at"`
	RawMessages    int                  `json:"raw_messages"`
	RawDetections  int                  `json:"raw_detections"`
	StagingRows    int                  `json:"staging_rows"`
	ChannelRows    int                  `json:"channel_rows"`
	DateRows       int                  `json:"date_rows"`
	MessageFacts   int                  `json:"message_facts"`
	DetectionFacts int                  `json:"detection_facts"`
	Violations     []validate.Violation `json:"violations,omitempty"`
}

func (r RunReport) Failed() bool { return len(r.Violations) > 0 }

// Pipeline wires the loaders, the pure transformation core and the
// repositories together.
type Pipeline struct {
	raw       repository.RawRepository
	warehouse repository.WarehouseRepository
	cfg       *config.Config
	logger    *zap.Logger
	now       func() time.Time
}

func New(raw repository.RawRepository, warehouse repository.WarehouseRepository, cfg *config.Config, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		raw:       raw,
		warehouse: warehouse,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// LoadMessages reloads raw.telegram_messages from the scraper's data lake.
func (p *Pipeline) LoadMessages() (int, error) {
	msgs, err := loader.ReadMessagesDir(p.cfg.DataLake.MessagesDir, p.now().UTC(), p.logger)
	if err != nil {
		return 0, err
	}
	if err := p.raw.ReplaceMessages(msgs); err != nil {
		return 0, err
	}
	return len(msgs), nil
}

// LoadDetections reloads raw.image_detections from the YOLO results file.
// A missing file is not an error: image detection runs on its own cadence,
// and the previous load stays queryable.
func (p *Pipeline) LoadDetections() (int, error) {
	path := p.cfg.DataLake.DetectionsCSV
	if _, err := os.Stat(path); os.IsNotExist(err) {
		p.logger.Warn("Detection results file not found, keeping previous load", zap.String("path", path))
		return 0, nil
	}
	dets, err := loader.ReadDetectionsCSV(path, p.now().UTC())
	if err != nil {
		return 0, err
	}
	if err := p.raw.ReplaceDetections(dets); err != nil {
		return 0, err
	}
	return len(dets), nil
}

// derived is the full in-memory result of one transformation pass.
type derived struct {
	staging    []models.StagingMessage
	channels   []models.ChannelDim
	dates      []models.DateDim
	messages   []models.MessageFact
	detections []models.ImageDetectionFact
}

// recompute derives the whole star schema from the current raw tables.
// Pure with respect to the database: nothing is written.
func (p *Pipeline) recompute() (*derived, error) {
	raws, err := p.raw.ListMessages()
	if err != nil {
		return nil, err
	}
	dets, err := p.raw.ListDetections()
	if err != nil {
		return nil, err
	}

	d := &derived{}
	d.staging = transform.NormalizeMessages(raws, p.cfg.Pipeline.MedicalKeywords)
	d.channels = transform.BuildChannelDims(d.staging, p.cfg.Pipeline.Channels)
	d.dates = transform.BuildDateDims(d.staging)
	d.messages = transform.BuildMessageFacts(d.staging, d.channels, d.dates)
	d.detections = transform.BuildDetectionFacts(dets, d.messages)
	return d, nil
}

// Transform recomputes and swaps every derived table in dependency order.
// Each table is all-or-nothing; a failure partway leaves the tables already
// swapped on their new version and the rest on the previous one.
func (p *Pipeline) Transform(report *RunReport) error {
	d, err := p.recompute()
	if err != nil {
		return err
	}

	report.StagingRows = len(d.staging)
	report.ChannelRows = len(d.channels)
	report.DateRows = len(d.dates)
	report.MessageFacts = len(d.messages)
	report.DetectionFacts = len(d.detections)

	if err := p.warehouse.ReplaceChannelDims(d.channels); err != nil {
		return fmt.Errorf("dim_channels: %w", err)
	}
	if err := p.warehouse.ReplaceDateDims(d.dates); err != nil {
		return fmt.Errorf("dim_dates: %w", err)
	}
	if err := p.warehouse.ReplaceMessageFacts(d.messages); err != nil {
		return fmt.Errorf("fct_messages: %w", err)
	}
	if err := p.warehouse.ReplaceDetectionFacts(d.detections); err != nil {
		return fmt.Errorf("fct_image_detections: %w", err)
	}
	return nil
}

// Validate recomputes the star schema from the raw tables and runs the
// battery against it. The transformation is deterministic, so this checks
// exactly what Transform writes for the same raw state.
func (p *Pipeline) Validate() ([]validate.Violation, error) {
	d, err := p.recompute()
	if err != nil {
		return nil, err
	}
	return validate.Run(validate.Tables{
		Channels:   d.channels,
		Dates:      d.dates,
		Messages:   d.messages,
		Detections: d.detections,
	}), nil
}

// Run executes the full pipeline: load, transform, validate. The returned
// report is always populated; the error is ErrValidationFailed when the
// battery found violations.
func (p *Pipeline) Run() (*RunReport, error) {
	report := &RunReport{
		RunID:     uuid.NewString(),
		StartedAt: p.now().UTC(),
	}
	logger := p.logger.With(zap.String("run_id", report.RunID))

	logger.Info("Pipeline run started")

	n, err := p.LoadMessages()
	if err != nil {
		return report, fmt.Errorf("load messages: %w", err)
	}
	report.RawMessages = n
	logger.Info("Raw messages loaded", zap.Int("rows", n))

	n, err = p.LoadDetections()
	if err != nil {
		return report, fmt.Errorf("load detections: %w", err)
	}
	report.RawDetections = n
	logger.Info("Raw detections loaded", zap.Int("rows", n))

	if err := p.Transform(report); err != nil {
		return report, fmt.Errorf("transform: %w", err)
	}
	logger.Info("Star schema rebuilt",
		zap.Int("staging", report.StagingRows),
		zap.Int("channels", report.ChannelRows),
		zap.Int("dates", report.DateRows),
		zap.Int("message_facts", report.MessageFacts),
		zap.Int("detection_facts", report.DetectionFacts))

	violations, err := p.Validate()
	if err != nil {
		return report, fmt.Errorf("validate: %w", err)
	}
	report.Violations = violations
	report.FinishedAt = p.now().UTC()

	if report.Failed() {
		for _, v := range violations {
			logger.Warn("Data quality violation", zap.String("violation", v.String()))
		}
		logger.Error("Pipeline run failed validation", zap.Int("violations", len(violations)))
		return report, ErrValidationFailed
	}

	logger.Info("Pipeline run completed", zap.Duration("took", report.FinishedAt.Sub(report.StartedAt)))
	return report, nil
}
