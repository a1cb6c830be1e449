package transform

import (
	"sort"
	"strings"

	"github.com/mikiyasegaye/From-Raw-Telegram-Data-to-an-Analytical-API/internal/models"
)

// Confidence buckets for detection facts.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// BuildMessageFacts joins each staging message against the channel and date
// dimensions. The joins are outer: a miss never drops the fact row, it just
// leaves the dimension attributes nil for the validation layer to flag.
func BuildMessageFacts(msgs []models.StagingMessage, channels []models.ChannelDim, dates []models.DateDim) []models.MessageFact {
	channelByID := make(map[string]models.ChannelDim, len(channels))
	for _, ch := range channels {
		channelByID[ch.ChannelID] = ch
	}
	dateByID := make(map[string]models.DateDim, len(dates))
	for _, d := range dates {
		dateByID[d.DateID.Format("2006-01-02")] = d
	}

	facts := make([]models.MessageFact, 0, len(msgs))
	for _, msg := range msgs {
		fact := models.MessageFact{
			MessageID:       msg.MessageID,
			ChannelID:       msg.ChannelName,
			DateID:          msg.MessageDay,
			MessageText:     msg.MessageText,
			MessageLength:   msg.MessageLength,
			MessageDate:     msg.MessageDate,
			SenderID:        msg.SenderID,
			SenderName:      msg.SenderName,
			HasMedia:        msg.HasMedia,
			MediaType:       msg.MediaType,
			MediaPath:       msg.MediaPath,
			Views:           msg.Views,
			Forwards:        msg.Forwards,
			Replies:         msg.Replies,
			ReactionCount:   msg.ReactionCount,
			ContentType:     msg.ContentType,
			IsMedical:       msg.IsMedical,
			ContentCategory: contentCategory(msg.IsMedical, msg.HasMedia),
			EngagementScore: maxInt64(msg.Views, 0),
			ContentScore:    maxInt64(msg.MessageLength, 0),
			ViralScore:      viralScore(msg.Views, msg.Forwards, msg.Replies, msg.ReactionCount),
		}

		if ch, ok := channelByID[msg.ChannelName]; ok {
			category, sector := ch.Category, ch.Sector
			fact.ChannelCategory = &category
			fact.ChannelSector = &sector
		}
		if d, ok := dateByID[msg.MessageDay.Format("2006-01-02")]; ok {
			dayName, weekend := d.DayName, d.IsWeekend
			fact.DayName = &dayName
			fact.IsWeekend = &weekend
		}

		facts = append(facts, fact)
	}
	return facts
}

// viralScore weights engagement counts with a three-tier fallback. The
// branch order matters: messages without view data would otherwise be
// scored zero even when heavily replied to.
func viralScore(views, forwards, replies, reactions int64) int64 {
	switch {
	case views > 0 && forwards > 0:
		return views + 2*forwards + 3*replies + 2*reactions
	case views > 0:
		return views + 3*replies + 2*reactions
	default:
		return 3*replies + 2*reactions
	}
}

func contentCategory(isMedical, hasMedia bool) string {
	switch {
	case isMedical && hasMedia:
		return "Medical Media"
	case isMedical:
		return "Medical Text"
	case hasMedia:
		return "Non-Medical Media"
	default:
		return "Non-Medical Text"
	}
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// BuildDetectionFacts ranks raw detections into fact rows and links each to
// a message fact when the channel name occurs as a substring of the image
// reference. The link is a documented heuristic: it also requires the
// candidate message to carry media with a stored file path, and it is not a
// guaranteed-correct foreign key.
func BuildDetectionFacts(dets []models.RawImageDetection, facts []models.MessageFact) []models.ImageDetectionFact {
	ordered := make([]models.RawImageDetection, len(dets))
	copy(ordered, dets)
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		if a.ImageFile != b.ImageFile {
			return a.ImageFile < b.ImageFile
		}
		return a.ClassName < b.ClassName
	})

	// Media-bearing candidates in message-id order so the heuristic join
	// resolves the same way on every run.
	candidates := make([]models.MessageFact, 0, len(facts))
	for _, f := range facts {
		if f.HasMedia && f.MediaPath != nil {
			candidates = append(candidates, f)
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].MessageID < candidates[j].MessageID })

	out := make([]models.ImageDetectionFact, 0, len(ordered))
	for i, det := range ordered {
		fact := models.ImageDetectionFact{
			DetectionID:     int64(i + 1),
			ImageFile:       det.ImageFile,
			ClassName:       det.ClassName,
			Confidence:      det.Confidence,
			ConfidenceLevel: confidenceLevel(det.Confidence),
			BboxX1:          det.BboxX1,
			BboxY1:          det.BboxY1,
			BboxX2:          det.BboxX2,
			BboxY2:          det.BboxY2,
			BboxNormX1:      det.BboxNormX1,
			BboxNormY1:      det.BboxNormY1,
			BboxNormX2:      det.BboxNormX2,
			BboxNormY2:      det.BboxNormY2,
			DetectedAt:      det.CreatedAt,
		}

		for _, cand := range candidates {
			if cand.ChannelID == "" {
				continue
			}
			if strings.Contains(det.ImageFile, cand.ChannelID) {
				id, channel := cand.MessageID, cand.ChannelID
				fact.MessageID = &id
				fact.ChannelID = &channel
				break
			}
		}

		out = append(out, fact)
	}
	return out
}

func confidenceLevel(confidence float64) string {
	switch {
	case confidence >= 0.8:
		return ConfidenceHigh
	case confidence >= 0.5:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
