package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/kawooya/remitta/internal/models"
)

type MessageRepository interface {
	Insert(message *models.Message) (*models.Message, error)
	GetByOrder(orderID int64) ([]models.Message, error)
	GetByOrderForUser(orderID, userID int64) ([]models.Message, error)
	GetDirectThread(user1ID, user2ID int64) ([]models.Message, error)
	MarkOrderMessagesRead(orderID, recipientID int64) (int64, error)
	MarkDirectMessagesRead(fromUserID, toUserID int64) (int64, error)
	CountUnread(userID int64) (int, error)
}

type MessageRepositoryImpl struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) MessageRepository {
	return &MessageRepositoryImpl{db: db}
}

func (repo *MessageRepositoryImpl) Insert(message *models.Message) (*models.Message, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var created models.Message

	query := `
		INSERT INTO messages (message, order_id, sender_id, recipient_id, sender_type, sender_name, recipient_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING *`

	err := repo.db.GetContext(ctx, &created, query,
		message.Message,
		message.OrderID,
		message.SenderID,
		message.RecipientID,
		message.SenderType,
		message.SenderName,
		message.RecipientName,
	)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (repo *MessageRepositoryImpl) GetByOrder(orderID int64) ([]models.Message, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var messages []models.Message

	query := `SELECT * FROM messages WHERE order_id = $1 ORDER BY created_at ASC`

	err := repo.db.SelectContext(ctx, &messages, query, orderID)
	if err != nil {
		return nil, err
	}

	return messages, nil
}

// GetByOrderForUser filters an order thread down to messages the given user
// sent or received. Used when several parties share one order thread.
func (repo *MessageRepositoryImpl) GetByOrderForUser(orderID, userID int64) ([]models.Message, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var messages []models.Message

	query := `
		SELECT * FROM messages
		WHERE order_id = $1 AND (sender_id = $2 OR recipient_id = $2)
		ORDER BY created_at ASC`

	err := repo.db.SelectContext(ctx, &messages, query, orderID, userID)
	if err != nil {
		return nil, err
	}

	return messages, nil
}

// GetDirectThread returns the direct (order-less) conversation between two
// users, both directions, oldest first.
func (repo *MessageRepositoryImpl) GetDirectThread(user1ID, user2ID int64) ([]models.Message, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var messages []models.Message

	query := `
		SELECT * FROM messages
		WHERE order_id IS NULL
			AND ((sender_id = $1 AND recipient_id = $2) OR (sender_id = $2 AND recipient_id = $1))
		ORDER BY created_at ASC`

	err := repo.db.SelectContext(ctx, &messages, query, user1ID, user2ID)
	if err != nil {
		return nil, err
	}

	return messages, nil
}

// MarkOrderMessagesRead flips every unread message on the order addressed to
// the recipient. The is_read predicate makes re-invocation a no-op.
func (repo *MessageRepositoryImpl) MarkOrderMessagesRead(orderID, recipientID int64) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		UPDATE messages
		SET is_read = TRUE
		WHERE order_id = $1 AND recipient_id = $2 AND is_read = FALSE`

	result, err := repo.db.ExecContext(ctx, query, orderID, recipientID)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func (repo *MessageRepositoryImpl) MarkDirectMessagesRead(fromUserID, toUserID int64) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		UPDATE messages
		SET is_read = TRUE
		WHERE order_id IS NULL AND sender_id = $1 AND recipient_id = $2 AND is_read = FALSE`

	result, err := repo.db.ExecContext(ctx, query, fromUserID, toUserID)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func (repo *MessageRepositoryImpl) CountUnread(userID int64) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var count int

	query := `SELECT COUNT(*) FROM messages WHERE recipient_id = $1 AND is_read = FALSE`

	err := repo.db.GetContext(ctx, &count, query, userID)
	if err != nil {
		return 0, err
	}

	return count, nil
}
