package transform

import (
	"time"
	"unicode/utf8"

	"github.com/mikiyasegaye/From-Raw-Telegram-Data-to-an-Analytical-API/internal/models"
)

// Content type tags assigned during normalization.
const (
	ContentTypeText  = "text"
	ContentTypeMedia = "media"
	ContentTypeOther = "other"
)

// UnknownSender is the sentinel display name used when a message carries no
// sender first or last name.
const UnknownSender = "Unknown"

// NormalizeMessages produces one staging row per raw message with a non-null
// id. Records without an id are dropped, not reported. Missing optional
// counts default to zero; a missing message timestamp falls back to the
// extraction date.
func NormalizeMessages(raws []models.RawMessage, keywords []string) []models.StagingMessage {
	out := make([]models.StagingMessage, 0, len(raws))
	for _, raw := range raws {
		if raw.ID == nil {
			continue
		}

		text := ""
		if raw.Message != nil {
			text = *raw.Message
		}

		ts := raw.ExtractionDate
		if raw.Date != nil {
			ts = *raw.Date
		}
		day := truncateDay(ts)

		out = append(out, models.StagingMessage{
			MessageID:      *raw.ID,
			MessageText:    text,
			MessageLength:  int64(utf8.RuneCountInString(text)),
			MessageDate:    ts,
			MessageDay:     day,
			MessageWeek:    truncateWeek(day),
			MessageMonth:   truncateMonth(day),
			SenderID:       raw.SenderID,
			SenderName:     senderDisplayName(raw.SenderFirstName, raw.SenderLastName),
			ReplyToMsgID:   raw.ReplyToMsgID,
			ForwardFromID:  raw.ForwardFromID,
			HasMedia:       raw.HasMedia,
			MediaType:      raw.MediaType,
			MediaPath:      raw.MediaPath,
			Views:          int64OrZero(raw.Views),
			Forwards:       int64OrZero(raw.Forwards),
			Replies:        int64OrZero(raw.Replies),
			ReactionCount:  int64(len(raw.Reactions)),
			ContentType:    contentType(raw.HasMedia, text),
			HasText:        text != "",
			IsMedical:      IsMedicalContent(text, keywords),
			ChannelName:    raw.Channel,
			ExtractionDate: raw.ExtractionDate,
		})
	}
	return out
}

func senderDisplayName(first, last *string) string {
	switch {
	case present(first) && present(last):
		return *first + " " + *last
	case present(first):
		return *first
	case present(last):
		return *last
	default:
		return UnknownSender
	}
}

func contentType(hasMedia bool, text string) string {
	switch {
	case hasMedia:
		return ContentTypeMedia
	case text != "":
		return ContentTypeText
	default:
		return ContentTypeOther
	}
}

func present(s *string) bool {
	return s != nil && *s != ""
}

func int64OrZero(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// truncateWeek returns the Monday of the week containing the given day,
// matching date_trunc('week', ...) semantics.
func truncateWeek(day time.Time) time.Time {
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func truncateMonth(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
}
