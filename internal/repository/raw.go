package repository

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/mikiyasegaye/From-Raw-Telegram-Data-to-an-Analytical-API/internal/models"
)

// insertBatchSize keeps the expanded multi-row INSERTs under the postgres
// parameter limit.
const insertBatchSize = 500

// RawRepository manages the raw schema the ingestion side writes into and
// the transformation stage reads from.
type RawRepository interface {
	ReplaceMessages(msgs []models.RawMessage) error
	ReplaceDetections(dets []models.RawImageDetection) error
	ListMessages() ([]models.RawMessage, error)
	ListDetections() ([]models.RawImageDetection, error)
}

type rawRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewRawRepository(db *sqlx.DB, logger *zap.Logger) RawRepository {
	return &rawRepository{db: db, logger: logger}
}

// ReplaceMessages reloads raw.telegram_messages from the data lake in one
// transaction: readers see the previous load until commit.
func (r *rawRepository) ReplaceMessages(msgs []models.RawMessage) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM raw.telegram_messages`); err != nil {
		return fmt.Errorf("failed to clear raw messages: %w", err)
	}

	query := `INSERT INTO raw.telegram_messages (
		id, date, message, sender_id, sender_username, sender_first_name, sender_last_name,
		reply_to_msg_id, forward_from_id, forward_from_name, has_media, media_type,
		media_filename, media_path, views, forwards, replies, reactions, channel,
		extraction_date, created_at
	) VALUES (
		:id, :date, :message, :sender_id, :sender_username, :sender_first_name, :sender_last_name,
		:reply_to_msg_id, :forward_from_id, :forward_from_name, :has_media, :media_type,
		:media_filename, :media_path, :views, :forwards, :replies, :reactions, :channel,
		:extraction_date, :created_at
	)`

	for start := 0; start < len(msgs); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(msgs) {
			end = len(msgs)
		}
		if _, err := tx.NamedExec(query, msgs[start:end]); err != nil {
			return fmt.Errorf("failed to insert raw messages: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	r.logger.Info("Reloaded raw messages", zap.Int("rows", len(msgs)))
	return nil
}

func (r *rawRepository) ReplaceDetections(dets []models.RawImageDetection) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM raw.image_detections`); err != nil {
		return fmt.Errorf("failed to clear raw detections: %w", err)
	}

	query := `INSERT INTO raw.image_detections (
		image_file, class_name, confidence, bbox_x1, bbox_y1, bbox_x2, bbox_y2,
		bbox_norm_x1, bbox_norm_y1, bbox_norm_x2, bbox_norm_y2, created_at
	) VALUES (
		:image_file, :class_name, :confidence, :bbox_x1, :bbox_y1, :bbox_x2, :bbox_y2,
		:bbox_norm_x1, :bbox_norm_y1, :bbox_norm_x2, :bbox_norm_y2, :created_at
	)`

	for start := 0; start < len(dets); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(dets) {
			end = len(dets)
		}
		if _, err := tx.NamedExec(query, dets[start:end]); err != nil {
			return fmt.Errorf("failed to insert raw detections: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	r.logger.Info("Reloaded raw detections", zap.Int("rows", len(dets)))
	return nil
}

func (r *rawRepository) ListMessages() ([]models.RawMessage, error) {
	var msgs []models.RawMessage
	query := `SELECT id, date, message, sender_id, sender_username, sender_first_name,
		sender_last_name, reply_to_msg_id, forward_from_id, forward_from_name, has_media,
		media_type, media_filename, media_path, views, forwards, replies, reactions,
		channel, extraction_date, created_at
	FROM raw.telegram_messages`
	if err := r.db.Select(&msgs, query); err != nil {
		return nil, fmt.Errorf("failed to list raw messages: %w", err)
	}
	return msgs, nil
}

func (r *rawRepository) ListDetections() ([]models.RawImageDetection, error) {
	var dets []models.RawImageDetection
	query := `SELECT image_file, class_name, confidence, bbox_x1, bbox_y1, bbox_x2, bbox_y2,
		bbox_norm_x1, bbox_norm_y1, bbox_norm_x2, bbox_norm_y2, created_at
	FROM raw.image_detections`
	if err := r.db.Select(&dets, query); err != nil {
		return nil, fmt.Errorf("failed to list raw detections: %w", err)
	}
	return dets, nil
}
