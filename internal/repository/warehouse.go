package repository

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/mikiyasegaye/From-Raw-Telegram-Data-to-an-Analytical-API/internal/models"
)

// WarehouseRepository owns the derived star-schema tables. Writers use
// replace semantics: each table is rebuilt into <table>_new inside a
// transaction and renamed over the previous version, so readers observe
// either the old or the new complete table, never a partial one.
type WarehouseRepository interface {
	ReplaceChannelDims(dims []models.ChannelDim) error
	ReplaceDateDims(dims []models.DateDim) error
	ReplaceMessageFacts(facts []models.MessageFact) error
	ReplaceDetectionFacts(facts []models.ImageDetectionFact) error

	ListChannels() ([]models.ChannelDim, error)
	GetChannel(name string) (*models.ChannelDim, error)
	ChannelDailyActivity(name string, since time.Time) ([]DailyActivity, error)
	SearchMessages(query, channel string, limit int) ([]models.MessageFact, error)
	MedicalContentStats(since time.Time) (*MedicalContentStats, error)
	EngagementTrend(since time.Time) ([]models.DateDim, error)
	TopProducts(terms []string, since time.Time, limit int) ([]ProductMention, error)
}

// DailyActivity is one day of posting activity for a channel.
type DailyActivity struct {
	Date            time.Time `db:"date_id" json:"date"`
	Messages        int64     `db:"messages" json:"messages"`
	TotalViews      int64     `db:"total_views" json:"total_views"`
	MedicalMessages int64     `db:"medical_messages" json:"medical_messages"`
	AvgViralScore   float64   `db:"avg_viral_score" json:"avg_viral_score"`
}

// MedicalContentStats summarizes medical vs non-medical performance.
type MedicalContentStats struct {
	TotalMessages           int64   `db:"total_messages" json:"total_messages"`
	MedicalMessages         int64   `db:"medical_messages" json:"medical_messages"`
	NonMedicalMessages      int64   `db:"non_medical_messages" json:"non_medical_messages"`
	MedicalPct              float64 `db:"-" json:"medical_percentage"`
	AvgEngagementMedical    float64 `db:"avg_engagement_medical" json:"avg_engagement_medical"`
	AvgEngagementNonMedical float64 `db:"avg_engagement_non_medical" json:"avg_engagement_non_medical"`
}

// ProductMention aggregates fact rows mentioning one product term.
type ProductMention struct {
	Product         string     `db:"-" json:"product_name"`
	Mentions        int64      `db:"mentions" json:"mention_count"`
	TotalEngagement int64      `db:"total_engagement" json:"total_engagement"`
	AvgEngagement   float64    `db:"avg_engagement" json:"avg_engagement"`
	LastMentioned   *time.Time `db:"last_mentioned" json:"last_mentioned,omitempty"`
}

type warehouseRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewWarehouseRepository(db *sqlx.DB, logger *zap.Logger) WarehouseRepository {
	return &warehouseRepository{db: db, logger: logger}
}

const channelDimDDL = `CREATE TABLE %s (
	channel_id TEXT PRIMARY KEY,
	channel_name TEXT NOT NULL,
	category TEXT NOT NULL,
	description TEXT NOT NULL,
	sector TEXT NOT NULL,
	total_messages BIGINT NOT NULL,
	unique_senders BIGINT NOT NULL,
	messages_with_media BIGINT NOT NULL,
	medical_messages BIGINT NOT NULL,
	total_views BIGINT NOT NULL,
	total_forwards BIGINT NOT NULL,
	total_replies BIGINT NOT NULL,
	total_reactions BIGINT NOT NULL,
	avg_message_length DOUBLE PRECISION NOT NULL,
	medical_content_pct DOUBLE PRECISION NOT NULL,
	media_pct DOUBLE PRECISION NOT NULL,
	first_message_at TIMESTAMP,
	last_message_at TIMESTAMP
)`

const dateDimDDL = `CREATE TABLE %s (
	date_id DATE PRIMARY KEY,
	year INT NOT NULL,
	month INT NOT NULL,
	month_name TEXT NOT NULL,
	day INT NOT NULL,
	day_of_week INT NOT NULL,
	day_name TEXT NOT NULL,
	day_of_year INT NOT NULL,
	week_of_year INT NOT NULL,
	quarter INT NOT NULL,
	season TEXT NOT NULL,
	is_weekend BOOLEAN NOT NULL,
	total_messages BIGINT NOT NULL,
	unique_senders BIGINT NOT NULL,
	messages_with_media BIGINT NOT NULL,
	medical_messages BIGINT NOT NULL,
	total_views BIGINT NOT NULL,
	total_forwards BIGINT NOT NULL,
	total_replies BIGINT NOT NULL,
	total_reactions BIGINT NOT NULL,
	avg_message_length DOUBLE PRECISION NOT NULL,
	medical_content_pct DOUBLE PRECISION NOT NULL,
	media_pct DOUBLE PRECISION NOT NULL
)`

const messageFactDDL = `CREATE TABLE %s (
	message_id BIGINT PRIMARY KEY,
	channel_id TEXT NOT NULL,
	date_id DATE NOT NULL,
	message_text TEXT NOT NULL,
	message_length BIGINT NOT NULL,
	message_date TIMESTAMP NOT NULL,
	sender_id BIGINT,
	sender_name TEXT NOT NULL,
	has_media BOOLEAN NOT NULL,
	media_type TEXT,
	media_path TEXT,
	views BIGINT NOT NULL,
	forwards BIGINT NOT NULL,
	replies BIGINT NOT NULL,
	reaction_count BIGINT NOT NULL,
	content_type TEXT NOT NULL,
	is_medical_content BOOLEAN NOT NULL,
	content_category TEXT NOT NULL,
	engagement_score BIGINT NOT NULL,
	content_score BIGINT NOT NULL,
	viral_score BIGINT NOT NULL,
	channel_category TEXT,
	channel_sector TEXT,
	day_name TEXT,
	is_weekend BOOLEAN
)`

const detectionFactDDL = `CREATE TABLE %s (
	detection_id BIGINT PRIMARY KEY,
	image_file TEXT NOT NULL,
	class_name TEXT NOT NULL,
	confidence DOUBLE PRECISION NOT NULL,
	confidence_level TEXT NOT NULL,
	bbox_x1 BIGINT NOT NULL,
	bbox_y1 BIGINT NOT NULL,
	bbox_x2 BIGINT NOT NULL,
	bbox_y2 BIGINT NOT NULL,
	bbox_norm_x1 DOUBLE PRECISION NOT NULL,
	bbox_norm_y1 DOUBLE PRECISION NOT NULL,
	bbox_norm_x2 DOUBLE PRECISION NOT NULL,
	bbox_norm_y2 DOUBLE PRECISION NOT NULL,
	detected_at TIMESTAMP NOT NULL,
	message_id BIGINT,
	channel_id TEXT
)`

// rebuild creates <table>_new from ddl, lets insert fill it, then swaps it
// into place. The swap happens in the same transaction as the build, so a
// failed run leaves the previous table untouched.
func (r *warehouseRepository) rebuild(table, ddl string, insert func(tx *sqlx.Tx, tmp string) error) error {
	tmp := table + "_new"

	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DROP TABLE IF EXISTS ` + tmp); err != nil {
		return fmt.Errorf("failed to drop stale %s: %w", tmp, err)
	}
	if _, err := tx.Exec(fmt.Sprintf(ddl, tmp)); err != nil {
		return fmt.Errorf("failed to create %s: %w", tmp, err)
	}
	if err := insert(tx, tmp); err != nil {
		return fmt.Errorf("failed to fill %s: %w", tmp, err)
	}
	if _, err := tx.Exec(`DROP TABLE IF EXISTS ` + table); err != nil {
		return fmt.Errorf("failed to drop previous %s: %w", table, err)
	}
	if _, err := tx.Exec(fmt.Sprintf(`ALTER TABLE %s RENAME TO %s`, tmp, table)); err != nil {
		return fmt.Errorf("failed to swap %s into place: %w", table, err)
	}

	return tx.Commit()
}

func namedInsertChunks[T any](tx *sqlx.Tx, query string, rows []T) error {
	for start := 0; start < len(rows); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		if _, err := tx.NamedExec(query, rows[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (r *warehouseRepository) ReplaceChannelDims(dims []models.ChannelDim) error {
	err := r.rebuild("dim_channels", channelDimDDL, func(tx *sqlx.Tx, tmp string) error {
		query := fmt.Sprintf(`INSERT INTO %s (
			channel_id, channel_name, category, description, sector, total_messages,
			unique_senders, messages_with_media, medical_messages, total_views,
			total_forwards, total_replies, total_reactions, avg_message_length,
			medical_content_pct, media_pct, first_message_at, last_message_at
		) VALUES (
			:channel_id, :channel_name, :category, :description, :sector, :total_messages,
			:unique_senders, :messages_with_media, :medical_messages, :total_views,
			:total_forwards, :total_replies, :total_reactions, :avg_message_length,
			:medical_content_pct, :media_pct, :first_message_at, :last_message_at
		)`, tmp)
		return namedInsertChunks(tx, query, dims)
	})
	if err != nil {
		return err
	}
	r.logger.Info("Rebuilt dim_channels", zap.Int("rows", len(dims)))
	return nil
}

func (r *warehouseRepository) ReplaceDateDims(dims []models.DateDim) error {
	err := r.rebuild("dim_dates", dateDimDDL, func(tx *sqlx.Tx, tmp string) error {
		query := fmt.Sprintf(`INSERT INTO %s (
			date_id, year, month, month_name, day, day_of_week, day_name, day_of_year,
			week_of_year, quarter, season, is_weekend, total_messages, unique_senders,
			messages_with_media, medical_messages, total_views, total_forwards,
			total_replies, total_reactions, avg_message_length, medical_content_pct, media_pct
		) VALUES (
			:date_id, :year, :month, :month_name, :day, :day_of_week, :day_name, :day_of_year,
			:week_of_year, :quarter, :season, :is_weekend, :total_messages, :unique_senders,
			:messages_with_media, :medical_messages, :total_views, :total_forwards,
			:total_replies, :total_reactions, :avg_message_length, :medical_content_pct, :media_pct
		)`, tmp)
		return namedInsertChunks(tx, query, dims)
	})
	if err != nil {
		return err
	}
	r.logger.Info("Rebuilt dim_dates", zap.Int("rows", len(dims)))
	return nil
}

func (r *warehouseRepository) ReplaceMessageFacts(facts []models.MessageFact) error {
	err := r.rebuild("fct_messages", messageFactDDL, func(tx *sqlx.Tx, tmp string) error {
		query := fmt.Sprintf(`INSERT INTO %s (
			message_id, channel_id, date_id, message_text, message_length, message_date,
			sender_id, sender_name, has_media, media_type, media_path, views, forwards,
			replies, reaction_count, content_type, is_medical_content, content_category,
			engagement_score, content_score, viral_score, channel_category, channel_sector,
			day_name, is_weekend
		) VALUES (
			:message_id, :channel_id, :date_id, :message_text, :message_length, :message_date,
			:sender_id, :sender_name, :has_media, :media_type, :media_path, :views, :forwards,
			:replies, :reaction_count, :content_type, :is_medical_content, :content_category,
			:engagement_score, :content_score, :viral_score, :channel_category, :channel_sector,
			:day_name, :is_weekend
		)`, tmp)
		return namedInsertChunks(tx, query, facts)
	})
	if err != nil {
		return err
	}
	r.logger.Info("Rebuilt fct_messages", zap.Int("rows", len(facts)))
	return nil
}

func (r *warehouseRepository) ReplaceDetectionFacts(facts []models.ImageDetectionFact) error {
	err := r.rebuild("fct_image_detections", detectionFactDDL, func(tx *sqlx.Tx, tmp string) error {
		query := fmt.Sprintf(`INSERT INTO %s (
			detection_id, image_file, class_name, confidence, confidence_level,
			bbox_x1, bbox_y1, bbox_x2, bbox_y2, bbox_norm_x1, bbox_norm_y1,
			bbox_norm_x2, bbox_norm_y2, detected_at, message_id, channel_id
		) VALUES (
			:detection_id, :image_file, :class_name, :confidence, :confidence_level,
			:bbox_x1, :bbox_y1, :bbox_x2, :bbox_y2, :bbox_norm_x1, :bbox_norm_y1,
			:bbox_norm_x2, :bbox_norm_y2, :detected_at, :message_id, :channel_id
		)`, tmp)
		return namedInsertChunks(tx, query, facts)
	})
	if err != nil {
		return err
	}
	r.logger.Info("Rebuilt fct_image_detections", zap.Int("rows", len(facts)))
	return nil
}

func (r *warehouseRepository) ListChannels() ([]models.ChannelDim, error) {
	var dims []models.ChannelDim
	query := `SELECT * FROM dim_channels ORDER BY total_messages DESC, channel_id`
	if err := r.db.Select(&dims, query); err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	return dims, nil
}

func (r *warehouseRepository) GetChannel(name string) (*models.ChannelDim, error) {
	var dim models.ChannelDim
	err := r.db.Get(&dim, `SELECT * FROM dim_channels WHERE channel_id = $1`, name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get channel %s: %w", name, err)
	}
	return &dim, nil
}

func (r *warehouseRepository) ChannelDailyActivity(name string, since time.Time) ([]DailyActivity, error) {
	var rows []DailyActivity
	query := `
		SELECT
			date_id,
			COUNT(*) AS messages,
			COALESCE(SUM(views), 0) AS total_views,
			COUNT(*) FILTER (WHERE is_medical_content) AS medical_messages,
			COALESCE(AVG(viral_score), 0) AS avg_viral_score
		FROM fct_messages
		WHERE channel_id = $1 AND message_date >= $2
		GROUP BY date_id
		ORDER BY date_id
	`
	if err := r.db.Select(&rows, query, name, since); err != nil {
		return nil, fmt.Errorf("failed to query channel activity: %w", err)
	}
	return rows, nil
}

func (r *warehouseRepository) SearchMessages(search, channel string, limit int) ([]models.MessageFact, error) {
	var facts []models.MessageFact
	query := `
		SELECT * FROM fct_messages
		WHERE message_text ILIKE '%' || $1 || '%'
		  AND ($2 = '' OR channel_id = $2)
		ORDER BY viral_score DESC, message_date DESC
		LIMIT $3
	`
	if err := r.db.Select(&facts, query, search, channel, limit); err != nil {
		return nil, fmt.Errorf("failed to search messages: %w", err)
	}
	return facts, nil
}

func (r *warehouseRepository) MedicalContentStats(since time.Time) (*MedicalContentStats, error) {
	var stats MedicalContentStats
	query := `
		SELECT
			COUNT(*) AS total_messages,
			COUNT(*) FILTER (WHERE is_medical_content) AS medical_messages,
			COUNT(*) FILTER (WHERE NOT is_medical_content) AS non_medical_messages,
			COALESCE(AVG(engagement_score) FILTER (WHERE is_medical_content), 0) AS avg_engagement_medical,
			COALESCE(AVG(engagement_score) FILTER (WHERE NOT is_medical_content), 0) AS avg_engagement_non_medical
		FROM fct_messages
		WHERE message_date >= $1
	`
	if err := r.db.Get(&stats, query, since); err != nil {
		return nil, fmt.Errorf("failed to query medical content stats: %w", err)
	}
	if stats.TotalMessages > 0 {
		stats.MedicalPct = 100 * float64(stats.MedicalMessages) / float64(stats.TotalMessages)
	}
	return &stats, nil
}

func (r *warehouseRepository) EngagementTrend(since time.Time) ([]models.DateDim, error) {
	var rows []models.DateDim
	query := `SELECT * FROM dim_dates WHERE date_id >= $1 ORDER BY date_id`
	if err := r.db.Select(&rows, query, since); err != nil {
		return nil, fmt.Errorf("failed to query engagement trend: %w", err)
	}
	return rows, nil
}

// TopProducts counts fact rows mentioning each product term. One query per
// term is fine at this scale; the terms list is a handful of entries.
func (r *warehouseRepository) TopProducts(terms []string, since time.Time, limit int) ([]ProductMention, error) {
	query := `
		SELECT
			COUNT(*) AS mentions,
			COALESCE(SUM(engagement_score), 0) AS total_engagement,
			COALESCE(AVG(engagement_score), 0) AS avg_engagement,
			MAX(message_date) AS last_mentioned
		FROM fct_messages
		WHERE is_medical_content
		  AND message_text ILIKE '%' || $1 || '%'
		  AND message_date >= $2
	`

	out := make([]ProductMention, 0, len(terms))
	for _, term := range terms {
		var m ProductMention
		if err := r.db.Get(&m, query, term, since); err != nil {
			return nil, fmt.Errorf("failed to count mentions of %q: %w", term, err)
		}
		if m.Mentions == 0 {
			continue
		}
		m.Product = term
		out = append(out, m)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Mentions != out[j].Mentions {
			return out[i].Mentions > out[j].Mentions
		}
		return out[i].TotalEngagement > out[j].TotalEngagement
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
