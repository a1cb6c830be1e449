// Package loader maps the scraper's on-disk output (the data lake) into raw
// warehouse rows. It is the boundary adapter to the ingestion collaborator:
// everything downstream reads from raw tables only.
package loader

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mikiyasegaye/From-Raw-Telegram-Data-to-an-Analytical-API/internal/models"
)

// scrapedMessage mirrors the JSON the Telegram scraper writes per message.
type scrapedMessage struct {
	MessageID       *int64            `json:"message_id"`
	ChannelName     string            `json:"channel_name"`
	ChannelTitle    string            `json:"channel_title"`
	SenderID        *int64            `json:"sender_id"`
	SenderUsername  *string           `json:"sender_username"`
	SenderFirstName *string           `json:"sender_first_name"`
	SenderLastName  *string           `json:"sender_last_name"`
	MessageText     *string           `json:"message_text"`
	MessageDate     *string           `json:"message_date"`
	ReplyToMsgID    *int64            `json:"reply_to_msg_id"`
	ForwardFromID   *int64            `json:"forward_from_id"`
	ForwardFromName *string           `json:"forward_from_name"`
	HasMedia        bool              `json:"has_media"`
	MediaType       *string           `json:"media_type"`
	FilePath        *string           `json:"file_path"`
	Views           *int64            `json:"views"`
	Forwards        *int64            `json:"forwards"`
	Replies         *int64            `json:"replies"`
	Reactions       []models.Reaction `json:"reactions"`
}

// ReadMessagesDir walks the data lake
// (<dir>/<YYYY-MM-DD>/<channel>.json) and returns one raw row per scraped
// message. Files that fail to parse are skipped with a log line; a partial
// lake is normal while the scraper is mid-run.
func ReadMessagesDir(dir string, now time.Time, logger *zap.Logger) ([]models.RawMessage, error) {
	var out []models.RawMessage

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}

		msgs, err := readMessagesFile(path, now)
		if err != nil {
			logger.Warn("Skipping unreadable data lake file", zap.String("path", path), zap.Error(err))
			return nil
		}
		logger.Info("Loaded data lake file", zap.String("path", path), zap.Int("messages", len(msgs)))
		out = append(out, msgs...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk data lake %s: %w", dir, err)
	}
	return out, nil
}

func readMessagesFile(path string, now time.Time) ([]models.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// A file holds either a message array or a single message object.
	var scraped []scrapedMessage
	if err := json.Unmarshal(data, &scraped); err != nil {
		var single scrapedMessage
		if err2 := json.Unmarshal(data, &single); err2 != nil {
			return nil, err
		}
		scraped = []scrapedMessage{single}
	}

	channel := channelFromPath(path)
	extraction := extractionDateFromPath(path, now)

	out := make([]models.RawMessage, 0, len(scraped))
	for _, m := range scraped {
		raw := models.RawMessage{
			ID:              m.MessageID,
			Message:         m.MessageText,
			SenderID:        m.SenderID,
			SenderUsername:  m.SenderUsername,
			SenderFirstName: m.SenderFirstName,
			SenderLastName:  m.SenderLastName,
			ReplyToMsgID:    m.ReplyToMsgID,
			ForwardFromID:   m.ForwardFromID,
			ForwardFromName: m.ForwardFromName,
			HasMedia:        m.HasMedia,
			MediaType:       m.MediaType,
			MediaFilename:   m.FilePath,
			MediaPath:       m.FilePath,
			Views:           m.Views,
			Forwards:        m.Forwards,
			Replies:         m.Replies,
			Reactions:       m.Reactions,
			Channel:         channel,
			ExtractionDate:  extraction,
			CreatedAt:       now,
		}
		if m.ChannelName != "" {
			raw.Channel = m.ChannelName
		}
		if m.MessageDate != nil {
			if ts, ok := parseMessageDate(*m.MessageDate); ok {
				raw.Date = &ts
			}
		}
		out = append(out, raw)
	}
	return out, nil
}

func parseMessageDate(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

// channelFromPath derives the channel name from the file name
// (<channel>.json) when the message itself doesn't carry one.
func channelFromPath(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".json")
}

// extractionDateFromPath reads the YYYY-MM-DD partition directory; files
// outside a dated partition get the load time.
func extractionDateFromPath(path string, now time.Time) time.Time {
	dir := filepath.Base(filepath.Dir(path))
	if ts, err := time.Parse("2006-01-02", dir); err == nil {
		return ts
	}
	return now
}
