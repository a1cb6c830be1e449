package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mikiyasegaye/From-Raw-Telegram-Data-to-an-Analytical-API/internal/config"
	"github.com/mikiyasegaye/From-Raw-Telegram-Data-to-an-Analytical-API/internal/models"
	"github.com/mikiyasegaye/From-Raw-Telegram-Data-to-an-Analytical-API/internal/repository"
	"github.com/mikiyasegaye/From-Raw-Telegram-Data-to-an-Analytical-API/internal/transform"
)

// fakeRawStore keeps the raw tables in memory.
type fakeRawStore struct {
	messages   []models.RawMessage
	detections []models.RawImageDetection
}

func (f *fakeRawStore) ReplaceMessages(msgs []models.RawMessage) error {
	f.messages = msgs
	return nil
}

func (f *fakeRawStore) ReplaceDetections(dets []models.RawImageDetection) error {
	f.detections = dets
	return nil
}

func (f *fakeRawStore) ListMessages() ([]models.RawMessage, error) {
	return f.messages, nil
}

func (f *fakeRawStore) ListDetections() ([]models.RawImageDetection, error) {
	return f.detections, nil
}

// fakeWarehouse records the replaced derived tables; the read side is
// unused by the pipeline.
type fakeWarehouse struct {
	channels   []models.ChannelDim
	dates      []models.DateDim
	messages   []models.MessageFact
	detections []models.ImageDetectionFact
	replaced   []string
}

func (f *fakeWarehouse) ReplaceChannelDims(dims []models.ChannelDim) error {
	f.channels = dims
	f.replaced = append(f.replaced, "dim_channels")
	return nil
}

func (f *fakeWarehouse) ReplaceDateDims(dims []models.DateDim) error {
	f.dates = dims
	f.replaced = append(f.replaced, "dim_dates")
	return nil
}

func (f *fakeWarehouse) ReplaceMessageFacts(facts []models.MessageFact) error {
	f.messages = facts
	f.replaced = append(f.replaced, "fct_messages")
	return nil
}

func (f *fakeWarehouse) ReplaceDetectionFacts(facts []models.ImageDetectionFact) error {
	f.detections = facts
	f.replaced = append(f.replaced, "fct_image_detections")
	return nil
}

func (f *fakeWarehouse) ListChannels() ([]models.ChannelDim, error)    { return f.channels, nil }
func (f *fakeWarehouse) GetChannel(string) (*models.ChannelDim, error) { return nil, nil }
func (f *fakeWarehouse) ChannelDailyActivity(string, time.Time) ([]repository.DailyActivity, error) {
	return nil, nil
}
func (f *fakeWarehouse) SearchMessages(string, string, int) ([]models.MessageFact, error) {
	return nil, nil
}
func (f *fakeWarehouse) MedicalContentStats(time.Time) (*repository.MedicalContentStats, error) {
	return nil, nil
}
func (f *fakeWarehouse) EngagementTrend(time.Time) ([]models.DateDim, error) { return nil, nil }
func (f *fakeWarehouse) TopProducts([]string, time.Time, int) ([]repository.ProductMention, error) {
	return nil, nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.DataLake.MessagesDir = filepath.Join(dir, "telegram_messages")
	cfg.DataLake.DetectionsCSV = filepath.Join(dir, "detections.csv")
	cfg.Pipeline.Channels = config.DefaultChannels()
	cfg.Pipeline.MedicalKeywords = transform.MedicalKeywords
	return cfg
}

const lakeFixture = `[
  {
    "message_id": 101,
    "channel_name": "tikvahpharma",
    "message_text": "New medicine Paracetamol in stock",
    "message_date": "2025-07-09T10:00:00+00:00",
    "has_media": true,
    "media_type": "photo",
    "file_path": "data/raw/images/tikvahpharma/101.jpg",
    "views": 10,
    "forwards": 2,
    "replies": 1
  },
  {
    "message_id": 102,
    "channel_name": "tikvahpharma",
    "message_text": "Office closed tomorrow",
    "message_date": "2025-07-11T10:00:00+00:00"
  }
]`

const detectionsFixture = `image_file,class_name,confidence,bbox,bbox_normalized
tikvahpharma_101.jpg,pill,0.91,"[10, 20, 30, 40]","[0.1, 0.2, 0.3, 0.4]"
`

func newTestPipeline(t *testing.T) (*Pipeline, *fakeRawStore, *fakeWarehouse, *config.Config) {
	cfg := testConfig(t)
	raw := &fakeRawStore{}
	warehouse := &fakeWarehouse{}
	p := New(raw, warehouse, cfg, zap.NewNop())
	return p, raw, warehouse, cfg
}

func TestRunFullPipeline(t *testing.T) {
	p, raw, warehouse, cfg := newTestPipeline(t)
	writeFile(t, filepath.Join(cfg.DataLake.MessagesDir, "2025-07-09", "tikvahpharma.json"), lakeFixture)
	writeFile(t, cfg.DataLake.DetectionsCSV, detectionsFixture)

	report, err := p.Run()
	if err != nil {
		t.Fatalf("run failed: %v (violations: %v)", err, report.Violations)
	}

	if report.RunID == "" {
		t.Fatalf("report missing run id")
	}
	if report.RawMessages != 2 || report.RawDetections != 1 {
		t.Fatalf("raw counts = %d/%d", report.RawMessages, report.RawDetections)
	}
	if report.StagingRows != 2 || report.ChannelRows != 1 {
		t.Fatalf("derived counts = %d/%d", report.StagingRows, report.ChannelRows)
	}
	// Spine spans 2025-07-09..2025-07-11 including the silent day.
	if report.DateRows != 3 {
		t.Fatalf("date_rows = %d, want 3", report.DateRows)
	}
	if report.MessageFacts != 2 || report.DetectionFacts != 1 {
		t.Fatalf("fact counts = %d/%d", report.MessageFacts, report.DetectionFacts)
	}
	if len(raw.messages) != 2 {
		t.Fatalf("raw store holds %d messages", len(raw.messages))
	}

	wantOrder := []string{"dim_channels", "dim_dates", "fct_messages", "fct_image_detections"}
	if len(warehouse.replaced) != len(wantOrder) {
		t.Fatalf("replaced tables: %v", warehouse.replaced)
	}
	for i, table := range wantOrder {
		if warehouse.replaced[i] != table {
			t.Fatalf("replace order %v, want %v", warehouse.replaced, wantOrder)
		}
	}

	// Detection linked through the filename heuristic.
	det := warehouse.detections[0]
	if det.MessageID == nil || *det.MessageID != 101 {
		t.Fatalf("detection link = %v", det.MessageID)
	}

	ch := warehouse.channels[0]
	if ch.ChannelID != "tikvahpharma" || ch.Sector != "Healthcare" {
		t.Fatalf("channel dim = %+v", ch)
	}
	if ch.MedicalContentPct != 50 {
		t.Fatalf("medical_content_pct = %v", ch.MedicalContentPct)
	}
}

func TestRunFlagsValidationFailure(t *testing.T) {
	p, _, warehouse, cfg := newTestPipeline(t)
	// Two files in the same partition yield the same message id twice.
	writeFile(t, filepath.Join(cfg.DataLake.MessagesDir, "2025-07-09", "a.json"),
		`{"message_id": 5, "channel_name": "tikvahpharma", "message_text": "Paracetamol in stock", "message_date": "2025-07-09T10:00:00+00:00"}`)
	writeFile(t, filepath.Join(cfg.DataLake.MessagesDir, "2025-07-09", "b.json"),
		`{"message_id": 5, "channel_name": "tikvahpharma", "message_text": "Paracetamol in stock", "message_date": "2025-07-09T10:00:00+00:00"}`)

	report, err := p.Run()
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed, got %v", err)
	}
	if !report.Failed() || len(report.Violations) == 0 {
		t.Fatalf("report should carry violations")
	}
	// Tables are still rebuilt; the violations only mark the run dirty.
	if len(warehouse.replaced) != 4 {
		t.Fatalf("derived tables should be written before validation: %v", warehouse.replaced)
	}
}

func TestLoadDetectionsMissingFileKeepsPrevious(t *testing.T) {
	p, raw, _, _ := newTestPipeline(t)
	raw.detections = []models.RawImageDetection{{ImageFile: "old.jpg", ClassName: "pill"}}

	n, err := p.LoadDetections()
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("expected 0 new rows, got %d", n)
	}
	if len(raw.detections) != 1 || raw.detections[0].ImageFile != "old.jpg" {
		t.Fatalf("previous load should be kept: %v", raw.detections)
	}
}

func TestTransformIsIdempotent(t *testing.T) {
	p, raw, warehouse, _ := newTestPipeline(t)
	date := time.Date(2025, 7, 9, 10, 0, 0, 0, time.UTC)
	path := "data/raw/images/tikvahpharma/1.jpg"
	id1, id2 := int64(1), int64(2)
	medical := "New medicine arrived at the pharmacy"
	plain := "Office closed tomorrow"
	raw.messages = []models.RawMessage{
		{ID: &id1, Date: &date, Message: &medical, HasMedia: true, MediaPath: &path,
			Channel: "tikvahpharma", ExtractionDate: date},
		{ID: &id2, Date: &date, Message: &plain,
			Channel: "tikvahpharma", ExtractionDate: date},
	}
	raw.detections = []models.RawImageDetection{{
		ImageFile: "tikvahpharma_1.jpg", ClassName: "pill", Confidence: 0.9,
		BboxX1: 10, BboxY1: 20, BboxX2: 30, BboxY2: 40,
		BboxNormX1: 0.1, BboxNormY1: 0.2, BboxNormX2: 0.3, BboxNormY2: 0.4,
		CreatedAt: date,
	}}

	if err := p.Transform(&RunReport{}); err != nil {
		t.Fatal(err)
	}
	firstChannels := warehouse.channels
	firstDates := warehouse.dates
	firstMessages := warehouse.messages
	firstDetections := warehouse.detections

	if err := p.Transform(&RunReport{}); err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(firstChannels, warehouse.channels) {
		t.Fatalf("dim_channels changed on rerun:\n%+v\nvs\n%+v", firstChannels, warehouse.channels)
	}
	if !reflect.DeepEqual(firstDates, warehouse.dates) {
		t.Fatalf("dim_dates changed on rerun")
	}
	if !reflect.DeepEqual(firstMessages, warehouse.messages) {
		t.Fatalf("fct_messages changed on rerun:\n%+v\nvs\n%+v", firstMessages, warehouse.messages)
	}
	if !reflect.DeepEqual(firstDetections, warehouse.detections) {
		t.Fatalf("fct_image_detections changed on rerun:\n%+v\nvs\n%+v", firstDetections, warehouse.detections)
	}
}

func TestValidateMatchesTransform(t *testing.T) {
	p, raw, warehouse, _ := newTestPipeline(t)
	path := "data/raw/images/tikvahpharma/1.jpg"
	date := time.Date(2025, 7, 9, 10, 0, 0, 0, time.UTC)
	id := int64(1)
	text := "New medicine arrived at the pharmacy"
	raw.messages = []models.RawMessage{{
		ID: &id, Date: &date, Message: &text,
		HasMedia: true, MediaPath: &path,
		Channel: "tikvahpharma", ExtractionDate: date,
	}}

	violations, err := p.Validate()
	if err != nil {
		t.Fatal(err)
	}
	if len(violations) != 0 {
		t.Fatalf("unexpected violations: %v", violations)
	}

	report := &RunReport{}
	if err := p.Transform(report); err != nil {
		t.Fatal(err)
	}
	if report.MessageFacts != len(warehouse.messages) {
		t.Fatalf("report says %d facts, warehouse holds %d", report.MessageFacts, len(warehouse.messages))
	}
}
