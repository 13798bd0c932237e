package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/kawooya/remitta/internal/models"
)

type NotificationRepository interface {
	Insert(notification *models.Notification) (*models.Notification, error)
	FanOutSystem(title, description string) (int64, error)
	GetAllByUser(userID int64) ([]models.Notification, error)
	MarkRead(id, userID int64) (bool, error)
	MarkAllRead(userID int64) (int64, error)
	CountUnread(userID int64) (int, error)
}

type NotificationRepositoryImpl struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &NotificationRepositoryImpl{db: db}
}

func (repo *NotificationRepositoryImpl) Insert(notification *models.Notification) (*models.Notification, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var created models.Notification

	query := `
		INSERT INTO notifications (title, description, user_id, type)
		VALUES ($1, $2, $3, $4)
		RETURNING *`

	err := repo.db.GetContext(ctx, &created, query,
		notification.Title,
		notification.Description,
		notification.UserID,
		notification.Type,
	)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

// FanOutSystem writes one system notification row per existing user, so each
// user keeps an independent read state. Returns the number of rows created.
func (repo *NotificationRepositoryImpl) FanOutSystem(title, description string) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		INSERT INTO notifications (title, description, user_id, type)
		SELECT $1, $2, id, $3 FROM users`

	result, err := repo.db.ExecContext(ctx, query, title, description, models.NotificationTypeSystem)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func (repo *NotificationRepositoryImpl) GetAllByUser(userID int64) ([]models.Notification, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var notifications []models.Notification

	query := `SELECT * FROM notifications WHERE user_id = $1 ORDER BY created_at DESC`

	err := repo.db.SelectContext(ctx, &notifications, query, userID)
	if err != nil {
		return nil, err
	}

	return notifications, nil
}

func (repo *NotificationRepositoryImpl) MarkRead(id, userID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		UPDATE notifications
		SET is_read = TRUE
		WHERE id = $1 AND user_id = $2 AND is_read = FALSE`

	result, err := repo.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

func (repo *NotificationRepositoryImpl) MarkAllRead(userID int64) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`

	result, err := repo.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func (repo *NotificationRepositoryImpl) CountUnread(userID int64) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var count int

	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`

	err := repo.db.GetContext(ctx, &count, query, userID)
	if err != nil {
		return 0, err
	}

	return count, nil
}
