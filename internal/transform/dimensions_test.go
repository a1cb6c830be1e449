package transform

import (
	"testing"
	"time"

	"github.com/mikiyasegaye/From-Raw-Telegram-Data-to-an-Analytical-API/internal/models"
)

func TestPercentage(t *testing.T) {
	cases := []struct {
		part, total int64
		want        float64
	}{
		{0, 0, 0},
		{5, 0, 0},
		{1, 3, 33.33},
		{2, 3, 66.67},
		{3, 3, 100},
	}
	for _, tc := range cases {
		if got := percentage(tc.part, tc.total); got != tc.want {
			t.Fatalf("percentage(%d, %d) = %v, want %v", tc.part, tc.total, got, tc.want)
		}
	}
}

func stagingMsg(id int64, channel string, day time.Time, medical, media bool) models.StagingMessage {
	return models.StagingMessage{
		MessageID:   id,
		ChannelName: channel,
		MessageDate: day.Add(10 * time.Hour),
		MessageDay:  day,
		IsMedical:   medical,
		HasMedia:    media,
	}
}

func TestBuildChannelDims(t *testing.T) {
	day := time.Date(2025, 7, 9, 0, 0, 0, 0, time.UTC)
	lookup := map[string]models.ChannelClassification{
		"tikvahpharma": {Category: "Pharma Marketing", Description: "Pharma consulting", Sector: "Healthcare"},
	}
	sender := int64(42)
	msgs := []models.StagingMessage{
		stagingMsg(1, "tikvahpharma", day, true, false),
		stagingMsg(2, "tikvahpharma", day, false, true),
		stagingMsg(3, "unknown_channel", day, false, false),
	}
	msgs[0].SenderID = &sender
	msgs[1].SenderID = &sender

	dims := BuildChannelDims(msgs, lookup)
	if len(dims) != 2 {
		t.Fatalf("expected 2 channel rows, got %d", len(dims))
	}

	// Sorted by channel id.
	pharma, other := dims[0], dims[1]
	if pharma.ChannelID != "tikvahpharma" || other.ChannelID != "unknown_channel" {
		t.Fatalf("unexpected order: %q, %q", pharma.ChannelID, other.ChannelID)
	}
	if pharma.Sector != "Healthcare" {
		t.Fatalf("sector = %q", pharma.Sector)
	}
	if pharma.TotalMessages != 2 || pharma.MedicalMessages != 1 || pharma.MessagesWithMedia != 1 {
		t.Fatalf("counts = %d/%d/%d", pharma.TotalMessages, pharma.MedicalMessages, pharma.MessagesWithMedia)
	}
	if pharma.MedicalContentPct != 50 || pharma.MediaPct != 50 {
		t.Fatalf("pcts = %v/%v", pharma.MedicalContentPct, pharma.MediaPct)
	}
	if pharma.UniqueSenders != 1 {
		t.Fatalf("unique_senders = %d", pharma.UniqueSenders)
	}

	if other.Category != DefaultClassification.Category || other.Sector != DefaultClassification.Sector {
		t.Fatalf("unclassified channel got %q/%q", other.Category, other.Sector)
	}
}

func TestBuildDateDimsGapFreeSpine(t *testing.T) {
	d1 := time.Date(2025, 7, 9, 0, 0, 0, 0, time.UTC)
	d3 := time.Date(2025, 7, 11, 0, 0, 0, 0, time.UTC)
	msgs := []models.StagingMessage{
		stagingMsg(1, "ch", d1, true, false),
		stagingMsg(2, "ch", d3, false, true),
	}

	dims := BuildDateDims(msgs)
	if len(dims) != 3 {
		t.Fatalf("expected 3 spine days, got %d", len(dims))
	}
	for i := 1; i < len(dims); i++ {
		if !dims[i].DateID.Equal(dims[i-1].DateID.AddDate(0, 0, 1)) {
			t.Fatalf("spine gap between %v and %v", dims[i-1].DateID, dims[i].DateID)
		}
	}

	gap := dims[1]
	if gap.TotalMessages != 0 || gap.MedicalContentPct != 0 || gap.AvgMessageLength != 0 {
		t.Fatalf("gap day should be zero-filled, got %+v", gap)
	}
	if gap.DayName != "Thursday" || gap.IsWeekend {
		t.Fatalf("calendar attrs wrong for 2025-07-10: %q weekend=%v", gap.DayName, gap.IsWeekend)
	}
	if gap.Quarter != 3 || gap.Season != "Summer" {
		t.Fatalf("quarter=%d season=%q", gap.Quarter, gap.Season)
	}
}

func TestBuildDateDimsEmpty(t *testing.T) {
	if dims := BuildDateDims(nil); len(dims) != 0 {
		t.Fatalf("expected empty spine, got %d rows", len(dims))
	}
}

func TestSeason(t *testing.T) {
	cases := []struct {
		m    time.Month
		want string
	}{
		{time.December, "Winter"},
		{time.February, "Winter"},
		{time.March, "Spring"},
		{time.July, "Summer"},
		{time.October, "Autumn"},
	}
	for _, tc := range cases {
		if got := season(tc.m); got != tc.want {
			t.Fatalf("season(%v) = %q, want %q", tc.m, got, tc.want)
		}
	}
}
