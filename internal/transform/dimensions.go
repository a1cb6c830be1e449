package transform

import (
	"math"
	"sort"
	"time"

	"github.com/mikiyasegaye/From-Raw-Telegram-Data-to-an-Analytical-API/internal/models"
)

// DefaultClassification is applied to any channel name missing from the
// configured lookup table.
var DefaultClassification = models.ChannelClassification{
	Category:    "Other",
	Description: "General business content",
	Sector:      "Other",
}

// dimAggregate is the aggregation shared by both dimensions: channel and
// date grouping differ only in the key.
type dimAggregate struct {
	totalMessages     int64
	messagesWithMedia int64
	medicalMessages   int64
	totalViews        int64
	totalForwards     int64
	totalReplies      int64
	totalReactions    int64
	totalLength       int64
	senders           map[int64]struct{}
	firstMessageAt    time.Time
	lastMessageAt     time.Time
}

func (a *dimAggregate) add(msg models.StagingMessage) {
	if a.senders == nil {
		a.senders = make(map[int64]struct{})
	}
	a.totalMessages++
	if msg.HasMedia {
		a.messagesWithMedia++
	}
	if msg.IsMedical {
		a.medicalMessages++
	}
	a.totalViews += msg.Views
	a.totalForwards += msg.Forwards
	a.totalReplies += msg.Replies
	a.totalReactions += msg.ReactionCount
	a.totalLength += msg.MessageLength
	if msg.SenderID != nil {
		a.senders[*msg.SenderID] = struct{}{}
	}
	if a.firstMessageAt.IsZero() || msg.MessageDate.Before(a.firstMessageAt) {
		a.firstMessageAt = msg.MessageDate
	}
	if msg.MessageDate.After(a.lastMessageAt) {
		a.lastMessageAt = msg.MessageDate
	}
}

func (a *dimAggregate) avgLength() float64 {
	if a.totalMessages == 0 {
		return 0
	}
	return round2(float64(a.totalLength) / float64(a.totalMessages))
}

// percentage returns round(100*part/total, 2), and 0 for an empty group
// rather than dividing by zero.
func percentage(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return round2(100 * float64(part) / float64(total))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// BuildChannelDims aggregates staging rows into one dimension row per
// distinct channel name, classified via the exact-match lookup table.
// Rows come back sorted by channel id.
func BuildChannelDims(msgs []models.StagingMessage, lookup map[string]models.ChannelClassification) []models.ChannelDim {
	groups := make(map[string]*dimAggregate)
	for _, msg := range msgs {
		agg, ok := groups[msg.ChannelName]
		if !ok {
			agg = &dimAggregate{}
			groups[msg.ChannelName] = agg
		}
		agg.add(msg)
	}

	dims := make([]models.ChannelDim, 0, len(groups))
	for name, agg := range groups {
		class, ok := lookup[name]
		if !ok {
			class = DefaultClassification
		}
		first := agg.firstMessageAt
		last := agg.lastMessageAt
		dims = append(dims, models.ChannelDim{
			ChannelID:         name,
			ChannelName:       name,
			Category:          class.Category,
			Description:       class.Description,
			Sector:            class.Sector,
			TotalMessages:     agg.totalMessages,
			UniqueSenders:     int64(len(agg.senders)),
			MessagesWithMedia: agg.messagesWithMedia,
			MedicalMessages:   agg.medicalMessages,
			TotalViews:        agg.totalViews,
			TotalForwards:     agg.totalForwards,
			TotalReplies:      agg.totalReplies,
			TotalReactions:    agg.totalReactions,
			AvgMessageLength:  agg.avgLength(),
			MedicalContentPct: percentage(agg.medicalMessages, agg.totalMessages),
			MediaPct:          percentage(agg.messagesWithMedia, agg.totalMessages),
			FirstMessageAt:    &first,
			LastMessageAt:     &last,
		})
	}

	sort.Slice(dims, func(i, j int) bool { return dims[i].ChannelID < dims[j].ChannelID })
	return dims
}

// BuildDateDims produces a gap-free calendar spine over
// [min(message_day), max(message_day)], one row per day, zero-filled for
// days without activity. An empty input produces an empty spine.
func BuildDateDims(msgs []models.StagingMessage) []models.DateDim {
	if len(msgs) == 0 {
		return nil
	}

	groups := make(map[time.Time]*dimAggregate)
	minDay := msgs[0].MessageDay
	maxDay := msgs[0].MessageDay
	for _, msg := range msgs {
		day := msg.MessageDay
		if day.Before(minDay) {
			minDay = day
		}
		if day.After(maxDay) {
			maxDay = day
		}
		agg, ok := groups[day]
		if !ok {
			agg = &dimAggregate{}
			groups[day] = agg
		}
		agg.add(msg)
	}

	var dims []models.DateDim
	for day := minDay; !day.After(maxDay); day = day.AddDate(0, 0, 1) {
		agg := groups[day]
		if agg == nil {
			agg = &dimAggregate{}
		}
		_, week := day.ISOWeek()
		dims = append(dims, models.DateDim{
			DateID:            day,
			Year:              day.Year(),
			Month:             int(day.Month()),
			MonthName:         day.Month().String(),
			Day:               day.Day(),
			DayOfWeek:         int(day.Weekday()),
			DayName:           day.Weekday().String(),
			DayOfYear:         day.YearDay(),
			WeekOfYear:        week,
			Quarter:           (int(day.Month())-1)/3 + 1,
			Season:            season(day.Month()),
			IsWeekend:         day.Weekday() == time.Saturday || day.Weekday() == time.Sunday,
			TotalMessages:     agg.totalMessages,
			UniqueSenders:     int64(len(agg.senders)),
			MessagesWithMedia: agg.messagesWithMedia,
			MedicalMessages:   agg.medicalMessages,
			TotalViews:        agg.totalViews,
			TotalForwards:     agg.totalForwards,
			TotalReplies:      agg.totalReplies,
			TotalReactions:    agg.totalReactions,
			AvgMessageLength:  agg.avgLength(),
			MedicalContentPct: percentage(agg.medicalMessages, agg.totalMessages),
			MediaPct:          percentage(agg.messagesWithMedia, agg.totalMessages),
		})
	}
	return dims
}

func season(m time.Month) string {
	switch m {
	case time.December, time.January, time.February:
		return "Winter"
	case time.March, time.April, time.May:
		return "Spring"
	case time.June, time.July, time.August:
		return "Summer"
	default:
		return "Autumn"
	}
}
