// Package validate implements the post-build data-quality battery. Every
// check is read-only and returns the rows violating an invariant; an empty
// result means the check passed. Violations are reported, never corrected.
package validate

import (
	"fmt"
	"time"

	"github.com/mikiyasegaye/From-Raw-Telegram-Data-to-an-Analytical-API/internal/models"
)

// HealthcareSector is the sector label the domain-consistency check keys on.
const HealthcareSector = "Healthcare"

// MinHealthcareMedicalPct is the minimum acceptable average medical-content
// percentage across healthcare channels. Anything lower points at systemic
// misclassification rather than channel-level noise.
const MinHealthcareMedicalPct = 5.0

// Violation is one row failing one check.
type Violation struct {
	Check  string `json:"check"`
	Table  string `json:"table"`
	Key    string `json:"key"`
	Detail string `json:"detail"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s[%s]: %s", v.Check, v.Table, v.Key, v.Detail)
}

// Tables is the full derived state of one pipeline run.
type Tables struct {
	Channels   []models.ChannelDim
	Dates      []models.DateDim
	Messages   []models.MessageFact
	Detections []models.ImageDetectionFact
}

// Run executes the whole battery and returns every violation found.
func Run(t Tables) []Violation {
	var out []Violation
	out = append(out, checkChannelKeys(t.Channels)...)
	out = append(out, checkDateSpine(t.Dates)...)
	out = append(out, checkMessageKeys(t.Messages)...)
	out = append(out, checkDetectionKeys(t.Detections)...)
	out = append(out, checkReferentialIntegrity(t)...)
	out = append(out, checkNonNegative(t)...)
	out = append(out, checkRanges(t)...)
	out = append(out, checkHealthcareConsistency(t.Channels)...)
	return out
}

func checkChannelKeys(channels []models.ChannelDim) []Violation {
	var out []Violation
	seen := make(map[string]bool, len(channels))
	for _, ch := range channels {
		if ch.ChannelID == "" {
			out = append(out, Violation{"unique_channel_id", "dim_channels", ch.ChannelName, "null channel_id"})
			continue
		}
		if seen[ch.ChannelID] {
			out = append(out, Violation{"unique_channel_id", "dim_channels", ch.ChannelID, "duplicate channel_id"})
		}
		seen[ch.ChannelID] = true
	}
	return out
}

// checkDateSpine verifies uniqueness plus spine contiguity: every day in
// [min, max] appears exactly once.
func checkDateSpine(dates []models.DateDim) []Violation {
	if len(dates) == 0 {
		return nil
	}
	var out []Violation
	seen := make(map[string]bool, len(dates))
	minDay, maxDay := dates[0].DateID, dates[0].DateID
	for _, d := range dates {
		if d.DateID.IsZero() {
			out = append(out, Violation{"unique_date_id", "dim_dates", "", "null date_id"})
			continue
		}
		key := dayKey(d.DateID)
		if seen[key] {
			out = append(out, Violation{"unique_date_id", "dim_dates", key, "duplicate date_id"})
		}
		seen[key] = true
		if d.DateID.Before(minDay) {
			minDay = d.DateID
		}
		if d.DateID.After(maxDay) {
			maxDay = d.DateID
		}
	}
	for day := minDay; !day.After(maxDay); day = day.AddDate(0, 0, 1) {
		if !seen[dayKey(day)] {
			out = append(out, Violation{"date_spine_contiguous", "dim_dates", dayKey(day), "missing day in spine"})
		}
	}
	return out
}

func checkMessageKeys(facts []models.MessageFact) []Violation {
	var out []Violation
	seen := make(map[int64]bool, len(facts))
	for _, f := range facts {
		if seen[f.MessageID] {
			out = append(out, Violation{"unique_message_id", "fct_messages", fmt.Sprint(f.MessageID), "duplicate message_id"})
		}
		seen[f.MessageID] = true
	}
	return out
}

func checkDetectionKeys(dets []models.ImageDetectionFact) []Violation {
	var out []Violation
	seen := make(map[int64]bool, len(dets))
	for _, d := range dets {
		if seen[d.DetectionID] {
			out = append(out, Violation{"unique_detection_id", "fct_image_detections", fmt.Sprint(d.DetectionID), "duplicate detection_id"})
		}
		seen[d.DetectionID] = true
	}
	return out
}

func checkReferentialIntegrity(t Tables) []Violation {
	channels := make(map[string]bool, len(t.Channels))
	for _, ch := range t.Channels {
		channels[ch.ChannelID] = true
	}
	dates := make(map[string]bool, len(t.Dates))
	for _, d := range t.Dates {
		dates[dayKey(d.DateID)] = true
	}

	var out []Violation
	for _, f := range t.Messages {
		key := fmt.Sprint(f.MessageID)
		if !channels[f.ChannelID] {
			out = append(out, Violation{"fk_channel", "fct_messages", key,
				fmt.Sprintf("channel_id %q not in dim_channels", f.ChannelID)})
		}
		if !dates[dayKey(f.DateID)] {
			out = append(out, Violation{"fk_date", "fct_messages", key,
				fmt.Sprintf("date_id %s not in dim_dates", dayKey(f.DateID))})
		}
	}
	return out
}

func checkNonNegative(t Tables) []Violation {
	var out []Violation
	for _, f := range t.Messages {
		key := fmt.Sprint(f.MessageID)
		for name, v := range map[string]int64{
			"views":            f.Views,
			"forwards":         f.Forwards,
			"replies":          f.Replies,
			"reaction_count":   f.ReactionCount,
			"engagement_score": f.EngagementScore,
			"content_score":    f.ContentScore,
			"viral_score":      f.ViralScore,
		} {
			if v < 0 {
				out = append(out, Violation{"non_negative", "fct_messages", key,
					fmt.Sprintf("%s = %d", name, v)})
			}
		}
	}
	for _, ch := range t.Channels {
		for name, v := range map[string]int64{
			"total_messages":  ch.TotalMessages,
			"total_views":     ch.TotalViews,
			"total_forwards":  ch.TotalForwards,
			"total_replies":   ch.TotalReplies,
			"total_reactions": ch.TotalReactions,
		} {
			if v < 0 {
				out = append(out, Violation{"non_negative", "dim_channels", ch.ChannelID,
					fmt.Sprintf("%s = %d", name, v)})
			}
		}
	}
	return out
}

func checkRanges(t Tables) []Violation {
	var out []Violation
	for _, ch := range t.Channels {
		out = append(out, checkPercent("dim_channels", ch.ChannelID, "medical_content_pct", ch.MedicalContentPct)...)
		out = append(out, checkPercent("dim_channels", ch.ChannelID, "media_pct", ch.MediaPct)...)
	}
	for _, d := range t.Dates {
		out = append(out, checkPercent("dim_dates", dayKey(d.DateID), "medical_content_pct", d.MedicalContentPct)...)
		out = append(out, checkPercent("dim_dates", dayKey(d.DateID), "media_pct", d.MediaPct)...)
	}
	for _, det := range t.Detections {
		key := fmt.Sprint(det.DetectionID)
		if det.Confidence < 0 || det.Confidence > 1 {
			out = append(out, Violation{"confidence_range", "fct_image_detections", key,
				fmt.Sprintf("confidence = %v", det.Confidence)})
		}
		if det.BboxX1 >= det.BboxX2 {
			out = append(out, Violation{"bbox_order", "fct_image_detections", key,
				fmt.Sprintf("bbox_x1 %d >= bbox_x2 %d", det.BboxX1, det.BboxX2)})
		}
		if det.BboxY1 >= det.BboxY2 {
			out = append(out, Violation{"bbox_order", "fct_image_detections", key,
				fmt.Sprintf("bbox_y1 %d >= bbox_y2 %d", det.BboxY1, det.BboxY2)})
		}
		for name, v := range map[string]float64{
			"bbox_norm_x1": det.BboxNormX1,
			"bbox_norm_y1": det.BboxNormY1,
			"bbox_norm_x2": det.BboxNormX2,
			"bbox_norm_y2": det.BboxNormY2,
		} {
			if v < 0 || v > 1 {
				out = append(out, Violation{"bbox_norm_range", "fct_image_detections", key,
					fmt.Sprintf("%s = %v", name, v)})
			}
		}
	}
	return out
}

func checkPercent(table, key, name string, v float64) []Violation {
	if v < 0 || v > 100 {
		return []Violation{{"percentage_range", table, key, fmt.Sprintf("%s = %v", name, v)}}
	}
	return nil
}

// checkHealthcareConsistency flags systemic keyword misclassification:
// every healthcare-sector channel must show some medical content, and the
// average across them must clear MinHealthcareMedicalPct.
func checkHealthcareConsistency(channels []models.ChannelDim) []Violation {
	var out []Violation
	var sum float64
	var count int
	for _, ch := range channels {
		if ch.Sector != HealthcareSector {
			continue
		}
		count++
		sum += ch.MedicalContentPct
		if ch.MedicalContentPct <= 0 {
			out = append(out, Violation{"healthcare_medical_content", "dim_channels", ch.ChannelID,
				"healthcare channel with zero medical content"})
		}
	}
	if count > 0 {
		avg := sum / float64(count)
		if avg < MinHealthcareMedicalPct {
			out = append(out, Violation{"healthcare_medical_content", "dim_channels", "*",
				fmt.Sprintf("average medical content %.2f%% below %.0f%%", avg, MinHealthcareMedicalPct)})
		}
	}
	return out
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
