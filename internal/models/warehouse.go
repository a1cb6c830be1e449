package models

import "time"

// ChannelClassification is the static category lookup applied to channel
// dimension rows. Entries come from configuration so new channels don't
// require a code change.
type ChannelClassification struct {
	Category    string `yaml:"category" json:"category"`
	Description string `yaml:"description" json:"description"`
	Sector      string `yaml:"sector" json:"sector"`
}

// ChannelDim is one row of 'dim_channels', keyed by channel name.
type ChannelDim struct {
	ChannelID         string     `db:"channel_id" json:"channel_id"`
	ChannelName       string     `db:"channel_name" json:"channel_name"`
	Category          string     `db:"category" json:"category"`
	Description       string     `db:"description" json:"description"`
	Sector            string     `db:"sector" json:"sector"`
	TotalMessages     int64      `db:"total_messages" json:"total_messages"`
	UniqueSenders     int64      `db:"unique_senders" json:"unique_senders"`
	MessagesWithMedia int64      `db:"messages_with_media" json:"messages_with_media"`
	MedicalMessages   int64      `db:"medical_messages" json:"medical_messages"`
	TotalViews        int64      `db:"total_views" json:"total_views"`
	TotalForwards     int64      `db:"total_forwards" json:"total_forwards"`
	TotalReplies      int64      `db:"total_replies" json:"total_replies"`
	TotalReactions    int64      `db:"total_reactions" json:"total_reactions"`
	AvgMessageLength  float64    `db:"avg_message_length" json:"avg_message_length"`
	MedicalContentPct float64    `db:"medical_content_pct" json:"medical_content_pct"`
	MediaPct          float64    `db:"media_pct" json:"media_pct"`
	FirstMessageAt    *time.Time `db:"first_message_at" json:"first_message_at,omitempty"`
	LastMessageAt     *time.Time `db:"last_message_at" json:"last_message_at,omitempty"`
}

// DateDim is one row of 'dim_dates'. The table is a gap-free spine over the
// observed message days: days without any activity are present with
// zero-filled aggregates.
type DateDim struct {
	DateID            time.Time `db:"date_id" json:"date_id"`
	Year              int       `db:"year" json:"year"`
	Month             int       `db:"month" json:"month"`
	MonthName         string    `db:"month_name" json:"month_name"`
	Day               int       `db:"day" json:"day"`
	DayOfWeek         int       `db:"day_of_week" json:"day_of_week"` // 0=Sunday
	DayName           string    `db:"day_name" json:"day_name"`
	DayOfYear         int       `db:"day_of_year" json:"day_of_year"`
	WeekOfYear        int       `db:"week_of_year" json:"week_of_year"`
	Quarter           int       `db:"quarter" json:"quarter"`
	Season            string    `db:"season" json:"season"`
	IsWeekend         bool      `db:"is_weekend" json:"is_weekend"`
	TotalMessages     int64     `db:"total_messages" json:"total_messages"`
	UniqueSenders     int64     `db:"unique_senders" json:"unique_senders"`
	MessagesWithMedia int64     `db:"messages_with_media" json:"messages_with_media"`
	MedicalMessages   int64     `db:"medical_messages" json:"medical_messages"`
	TotalViews        int64     `db:"total_views" json:"total_views"`
	TotalForwards     int64     `db:"total_forwards" json:"total_forwards"`
	TotalReplies      int64     `db:"total_replies" json:"total_replies"`
	TotalReactions    int64     `db:"total_reactions" json:"total_reactions"`
	AvgMessageLength  float64   `db:"avg_message_length" json:"avg_message_length"`
	MedicalContentPct float64   `db:"medical_content_pct" json:"medical_content_pct"`
	MediaPct          float64   `db:"media_pct" json:"media_pct"`
}

// MessageFact is one row of 'fct_messages': one per staging message, joined
// against both dimensions. Dimension attributes are pointers because the
// join is outer — a miss leaves them nil and surfaces later as a
// referential-integrity violation.
type MessageFact struct {
	MessageID       int64     `db:"message_id" json:"message_id"`
	ChannelID       string    `db:"channel_id" json:"channel_id"`
	DateID          time.Time `db:"date_id" json:"date_id"`
	MessageText     string    `db:"message_text" json:"message_text"`
	MessageLength   int64     `db:"message_length" json:"message_length"`
	MessageDate     time.Time `db:"message_date" json:"message_date"`
	SenderID        *int64    `db:"sender_id" json:"sender_id,omitempty"`
	SenderName      string    `db:"sender_name" json:"sender_name"`
	HasMedia        bool      `db:"has_media" json:"has_media"`
	MediaType       *string   `db:"media_type" json:"media_type,omitempty"`
	MediaPath       *string   `db:"media_path" json:"media_path,omitempty"`
	Views           int64     `db:"views" json:"views"`
	Forwards        int64     `db:"forwards" json:"forwards"`
	Replies         int64     `db:"replies" json:"replies"`
	ReactionCount   int64     `db:"reaction_count" json:"reaction_count"`
	ContentType     string    `db:"content_type" json:"content_type"`
	IsMedical       bool      `db:"is_medical_content" json:"is_medical_content"`
	ContentCategory string    `db:"content_category" json:"content_category"`
	EngagementScore int64     `db:"engagement_score" json:"engagement_score"`
	ContentScore    int64     `db:"content_score" json:"content_score"`
	ViralScore      int64     `db:"viral_score" json:"viral_score"`

	// Joined dimension attributes (nil on join miss).
	ChannelCategory *string `db:"channel_category" json:"channel_category,omitempty"`
	ChannelSector   *string `db:"channel_sector" json:"channel_sector,omitempty"`
	DayName         *string `db:"day_name" json:"day_name,omitempty"`
	IsWeekend       *bool   `db:"is_weekend" json:"is_weekend,omitempty"`
}

// RawImageDetection is one YOLO detection in 'raw.image_detections'.
type RawImageDetection struct {
	ImageFile  string    `db:"image_file"`
	ClassName  string    `db:"class_name"`
	Confidence float64   `db:"confidence"`
	BboxX1     int64     `db:"bbox_x1"`
	BboxY1     int64     `db:"bbox_y1"`
	BboxX2     int64     `db:"bbox_x2"`
	BboxY2     int64     `db:"bbox_y2"`
	BboxNormX1 float64   `db:"bbox_norm_x1"`
	BboxNormY1 float64   `db:"bbox_norm_y1"`
	BboxNormX2 float64   `db:"bbox_norm_x2"`
	BboxNormY2 float64   `db:"bbox_norm_y2"`
	CreatedAt  time.Time `db:"created_at"`
}

// ImageDetectionFact is one row of 'fct_image_detections'. DetectionID is a
// stable rank over (created_at, image_file, class_name). The message link is
// a best-effort substring match on the channel name inside the image file
// reference, not a true foreign key.
type ImageDetectionFact struct {
	DetectionID     int64     `db:"detection_id" json:"detection_id"`
	ImageFile       string    `db:"image_file" json:"image_file"`
	ClassName       string    `db:"class_name" json:"class_name"`
	Confidence      float64   `db:"confidence" json:"confidence"`
	ConfidenceLevel string    `db:"confidence_level" json:"confidence_level"` // high, medium, low
	BboxX1          int64     `db:"bbox_x1" json:"bbox_x1"`
	BboxY1          int64     `db:"bbox_y1" json:"bbox_y1"`
	BboxX2          int64     `db:"bbox_x2" json:"bbox_x2"`
	BboxY2          int64     `db:"bbox_y2" json:"bbox_y2"`
	BboxNormX1      float64   `db:"bbox_norm_x1" json:"bbox_norm_x1"`
	BboxNormY1      float64   `db:"bbox_norm_y1" json:"bbox_norm_y1"`
	BboxNormX2      float64   `db:"bbox_norm_x2" json:"bbox_norm_x2"`
	BboxNormY2      float64   `db:"bbox_norm_y2" json:"bbox_norm_y2"`
	DetectedAt      time.Time `db:"detected_at" json:"detected_at"`
	MessageID       *int64    `db:"message_id" json:"message_id,omitempty"`
	ChannelID       *string   `db:"channel_id" json:"channel_id,omitempty"`
}
