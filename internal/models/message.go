package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Reaction is a single reaction entry attached to a scraped message.
type Reaction struct {
	Emoji string `json:"emoji"`
	Count int64  `json:"count"`
}

// ReactionList is stored as JSONB in raw.telegram_messages.
type ReactionList []Reaction

func (r ReactionList) Value() (driver.Value, error) {
	if r == nil {
		return nil, nil
	}
	return json.Marshal(r)
}

func (r *ReactionList) Scan(src interface{}) error {
	if src == nil {
		*r = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, r)
	case string:
		return json.Unmarshal([]byte(v), r)
	default:
		return fmt.Errorf("cannot scan %T into ReactionList", src)
	}
}

// RawMessage represents one scraped record in 'raw.telegram_messages'.
// Everything except the channel name is nullable: the scraper emits whatever
// Telegram exposed for a given message.
type RawMessage struct {
	ID              *int64       `db:"id"`
	Date            *time.Time   `db:"date"`
	Message         *string      `db:"message"`
	SenderID        *int64       `db:"sender_id"`
	SenderUsername  *string      `db:"sender_username"`
	SenderFirstName *string      `db:"sender_first_name"`
	SenderLastName  *string      `db:"sender_last_name"`
	ReplyToMsgID    *int64       `db:"reply_to_msg_id"`
	ForwardFromID   *int64       `db:"forward_from_id"`
	ForwardFromName *string      `db:"forward_from_name"`
	HasMedia        bool         `db:"has_media"`
	MediaType       *string      `db:"media_type"`
	MediaFilename   *string      `db:"media_filename"`
	MediaPath       *string      `db:"media_path"`
	Views           *int64       `db:"views"`
	Forwards        *int64       `db:"forwards"`
	Replies         *int64       `db:"replies"`
	Reactions       ReactionList `db:"reactions"`
	Channel         string       `db:"channel"`
	ExtractionDate  time.Time    `db:"extraction_date"`
	CreatedAt       time.Time    `db:"created_at"`
}

// StagingMessage is one cleaned row in 'stg_telegram_messages', produced per
// raw message with a non-null id. Missing optional counts default to zero.
type StagingMessage struct {
	MessageID      int64     `db:"message_id"`
	MessageText    string    `db:"message_text"`
	MessageLength  int64     `db:"message_length"`
	MessageDate    time.Time `db:"message_date"`
	MessageDay     time.Time `db:"message_day"`
	MessageWeek    time.Time `db:"message_week"`
	MessageMonth   time.Time `db:"message_month"`
	SenderID       *int64    `db:"sender_id"`
	SenderName     string    `db:"sender_name"`
	ReplyToMsgID   *int64    `db:"reply_to_msg_id"`
	ForwardFromID  *int64    `db:"forward_from_id"`
	HasMedia       bool      `db:"has_media"`
	MediaType      *string   `db:"media_type"`
	MediaPath      *string   `db:"media_path"`
	Views          int64     `db:"views"`
	Forwards       int64     `db:"forwards"`
	Replies        int64     `db:"replies"`
	ReactionCount  int64     `db:"reaction_count"`
	ContentType    string    `db:"content_type"` // text, media, other
	HasText        bool      `db:"has_text"`
	IsMedical      bool      `db:"is_medical_content"`
	ChannelName    string    `db:"channel_name"`
	ExtractionDate time.Time `db:"extraction_date"`
}
