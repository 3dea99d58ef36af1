package services

import (
	"context"

	"github.com/isdelr/budget-manager-be/internal/database"
	"github.com/isdelr/budget-manager-be/internal/models"
	"github.com/rs/zerolog/log"
)

// Activity levels.
const (
	LevelInfo = "info"
	LevelWarn = "warn"
)

// ActivityServiceProvider defines the interface for the account activity log.
type ActivityServiceProvider interface {
	CreateActivity(ctx context.Context, activityType, level, message string, userID *int64) error
	GetRecentForUser(ctx context.Context, userID int64, limit int) ([]models.Activity, error)
}

// ActivityService records account actions and system notices.
type ActivityService struct {
	db *database.DB
}

// NewActivityService creates a new ActivityService.
func NewActivityService(db *database.DB) *ActivityService {
	return &ActivityService{db: db}
}

// CreateActivity logs a new entry. userID is nil for system-wide entries.
func (s *ActivityService) CreateActivity(ctx context.Context, activityType, level, message string, userID *int64) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO activity (user_id, type, level, message) VALUES (?, ?, ?, ?)",
		userID, activityType, level, message)
	return err
}

// GetRecentForUser returns a user's newest entries first.
func (s *ActivityService) GetRecentForUser(ctx context.Context, userID int64, limit int) ([]models.Activity, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, type, level, message, created_at FROM activity WHERE user_id = ? ORDER BY id DESC LIMIT ?",
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.Activity{}
	for rows.Next() {
		var a models.Activity
		if err := rows.Scan(&a.ID, &a.UserID, &a.Type, &a.Level, &a.Message, &a.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, a)
	}
	return entries, rows.Err()
}

// record writes an activity entry; failures are logged, never returned.
func record(ctx context.Context, activity ActivityServiceProvider, activityType, level, message string, userID *int64) {
	if activity == nil {
		return
	}
	if err := activity.CreateActivity(ctx, activityType, level, message, userID); err != nil {
		log.Warn().Err(err).Str("type", activityType).Msg("Failed to record activity")
	}
}
