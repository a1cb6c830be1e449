package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mikiyasegaye/From-Raw-Telegram-Data-to-an-Analytical-API/internal/models"
	"github.com/mikiyasegaye/From-Raw-Telegram-Data-to-an-Analytical-API/internal/repository"
)

type stubWarehouse struct {
	channels []models.ChannelDim
	channel  *models.ChannelDim
	err      error
}

func (s *stubWarehouse) ReplaceChannelDims([]models.ChannelDim) error   { return nil }
func (s *stubWarehouse) ReplaceDateDims([]models.DateDim) error         { return nil }
func (s *stubWarehouse) ReplaceMessageFacts([]models.MessageFact) error { return nil }

func (s *stubWarehouse) ReplaceDetectionFacts([]models.ImageDetectionFact) error { return nil }

func (s *stubWarehouse) ListChannels() ([]models.ChannelDim, error) {
	return s.channels, s.err
}

func (s *stubWarehouse) GetChannel(string) (*models.ChannelDim, error) {
	return s.channel, s.err
}

func (s *stubWarehouse) ChannelDailyActivity(string, time.Time) ([]repository.DailyActivity, error) {
	return []repository.DailyActivity{{Messages: 3}}, s.err
}

func (s *stubWarehouse) SearchMessages(string, string, int) ([]models.MessageFact, error) {
	return []models.MessageFact{{MessageID: 1}}, s.err
}

func (s *stubWarehouse) MedicalContentStats(time.Time) (*repository.MedicalContentStats, error) {
	return &repository.MedicalContentStats{TotalMessages: 10, MedicalMessages: 4, MedicalPct: 40}, s.err
}

func (s *stubWarehouse) EngagementTrend(time.Time) ([]models.DateDim, error) {
	return nil, s.err
}

func (s *stubWarehouse) TopProducts([]string, time.Time, int) ([]repository.ProductMention, error) {
	return []repository.ProductMention{{Product: "paracetamol", Mentions: 5}}, s.err
}

func testRouter(w repository.WarehouseRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAnalyticsHandler(w, zap.NewNop())
	r := gin.New()
	r.GET("/api/channels", h.GetChannels)
	r.GET("/api/channels/:name/activity", h.GetChannelActivity)
	r.GET("/api/search/messages", h.SearchMessages)
	r.GET("/api/reports/medical-content", h.GetMedicalContentStats)
	r.GET("/api/reports/top-products", h.GetTopProducts)
	return r
}

func doGet(t *testing.T, r *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestGetChannels(t *testing.T) {
	stub := &stubWarehouse{channels: []models.ChannelDim{{ChannelID: "tikvahpharma"}}}
	rec := doGet(t, testRouter(stub), "/api/channels")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got []models.ChannelDim
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ChannelID != "tikvahpharma" {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestGetChannelsError(t *testing.T) {
	stub := &stubWarehouse{err: errors.New("db down")}
	rec := doGet(t, testRouter(stub), "/api/channels")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestGetChannelActivityNotFound(t *testing.T) {
	rec := doGet(t, testRouter(&stubWarehouse{}), "/api/channels/ghost/activity")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestGetChannelActivity(t *testing.T) {
	stub := &stubWarehouse{channel: &models.ChannelDim{ChannelID: "tikvahpharma"}}
	rec := doGet(t, testRouter(stub), "/api/channels/tikvahpharma/activity?days=7")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got ChannelActivityResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.PeriodDays != 7 || got.Channel.ChannelID != "tikvahpharma" {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestSearchMessagesRequiresQuery(t *testing.T) {
	rec := doGet(t, testRouter(&stubWarehouse{}), "/api/search/messages")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	rec = doGet(t, testRouter(&stubWarehouse{}), "/api/search/messages?query=paracetamol")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestGetMedicalContentStats(t *testing.T) {
	rec := doGet(t, testRouter(&stubWarehouse{}), "/api/reports/medical-content")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got struct {
		Stats      repository.MedicalContentStats `json:"stats"`
		PeriodDays int                            `json:"period_days"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Stats.MedicalPct != 40 || got.PeriodDays != 30 {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestIntQueryClamping(t *testing.T) {
	stub := &stubWarehouse{channel: &models.ChannelDim{ChannelID: "x"}}
	rec := doGet(t, testRouter(stub), "/api/channels/x/activity?days=9999")
	var got ChannelActivityResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.PeriodDays != 365 {
		t.Fatalf("days should clamp to 365, got %d", got.PeriodDays)
	}

	rec = doGet(t, testRouter(stub), "/api/channels/x/activity?days=junk")
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.PeriodDays != 30 {
		t.Fatalf("bad input should fall back to default, got %d", got.PeriodDays)
	}
}
