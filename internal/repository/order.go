package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/kawooya/remitta/internal/models"
)

type OrderRepository interface {
	Insert(order *models.Order) (*models.Order, error)
	GetOne(id int64) (*models.Order, bool, error)
	GetAll() ([]models.Order, error)
	GetAllByUser(userID int64) ([]models.Order, error)
	GetByStatus(status string) ([]models.Order, error)
	GetByStatusAndUser(status string, userID int64) ([]models.Order, error)
	GetByStatusAndMember(status string, memberID int64) ([]models.Order, error)
	GetByStatusAndDateRange(status string, start, end time.Time) ([]models.Order, error)
	GetByStatusPaginated(status string, limit, offset int) ([]models.Order, int, error)
	CountByStatus(status string) (int, error)
	UpdateStatus(id int64, status string) (*models.Order, bool, error)
	AssignMember(orderID, memberID int64) (*models.Order, bool, error)
	Delete(id int64) (bool, error)
}

type OrderRepositoryImpl struct {
	db *sqlx.DB
}

func NewOrderRepository(db *sqlx.DB) OrderRepository {
	return &OrderRepositoryImpl{db: db}
}

func (repo *OrderRepositoryImpl) Insert(order *models.Order) (*models.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var created models.Order

	query := `
		INSERT INTO orders (
			user_id, member_id, amount, from_currency_id, receiver_currency_id,
			receiver_place, sender_name, sender_phone, sender_address, relationship,
			receiver_name, receiver_phone, receiver_address, bank
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING *`

	err := repo.db.GetContext(ctx, &created, query,
		order.UserID,
		order.MemberID,
		order.Amount,
		order.FromCurrencyID,
		order.ReceiverCurrencyID,
		order.ReceiverPlace,
		order.SenderName,
		order.SenderPhone,
		order.SenderAddress,
		order.Relationship,
		order.ReceiverName,
		order.ReceiverPhone,
		order.ReceiverAddress,
		order.Bank,
	)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (repo *OrderRepositoryImpl) GetOne(id int64) (*models.Order, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var order models.Order

	query := `SELECT * FROM orders WHERE id = $1`

	err := repo.db.GetContext(ctx, &order, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &order, true, err
}

func (repo *OrderRepositoryImpl) GetAll() ([]models.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var orders []models.Order

	query := `SELECT * FROM orders ORDER BY created_at DESC`

	err := repo.db.SelectContext(ctx, &orders, query)
	if err != nil {
		return nil, err
	}

	return orders, nil
}

// GetAllByUser returns orders the user either placed or is assigned to.
func (repo *OrderRepositoryImpl) GetAllByUser(userID int64) ([]models.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var orders []models.Order

	query := `SELECT * FROM orders WHERE user_id = $1 OR member_id = $1 ORDER BY created_at DESC`

	err := repo.db.SelectContext(ctx, &orders, query, userID)
	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (repo *OrderRepositoryImpl) GetByStatus(status string) ([]models.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var orders []models.Order

	query := `SELECT * FROM orders WHERE status = $1 ORDER BY created_at DESC`

	err := repo.db.SelectContext(ctx, &orders, query, status)
	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (repo *OrderRepositoryImpl) GetByStatusAndUser(status string, userID int64) ([]models.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var orders []models.Order

	query := `SELECT * FROM orders WHERE status = $1 AND user_id = $2 ORDER BY created_at DESC`

	err := repo.db.SelectContext(ctx, &orders, query, status, userID)
	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (repo *OrderRepositoryImpl) GetByStatusAndMember(status string, memberID int64) ([]models.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var orders []models.Order

	query := `SELECT * FROM orders WHERE status = $1 AND member_id = $2 ORDER BY created_at DESC`

	err := repo.db.SelectContext(ctx, &orders, query, status, memberID)
	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (repo *OrderRepositoryImpl) GetByStatusAndDateRange(status string, start, end time.Time) ([]models.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var orders []models.Order

	query := `
		SELECT * FROM orders
		WHERE status = $1 AND created_at >= $2 AND created_at <= $3
		ORDER BY created_at DESC`

	err := repo.db.SelectContext(ctx, &orders, query, status, start, end)
	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (repo *OrderRepositoryImpl) GetByStatusPaginated(status string, limit, offset int) ([]models.Order, int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var total int
	err := repo.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM orders WHERE status = $1`, status)
	if err != nil {
		return nil, 0, err
	}

	var orders []models.Order

	query := `
		SELECT * FROM orders
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	err = repo.db.SelectContext(ctx, &orders, query, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (repo *OrderRepositoryImpl) CountByStatus(status string) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var count int

	err := repo.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM orders WHERE status = $1`, status)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// UpdateStatus applies the transition as a single conditional update so two
// concurrent calls cannot both pass the completed guard. The second return
// value is false when no row matched, either because the order does not
// exist or because it is already completed.
func (repo *OrderRepositoryImpl) UpdateStatus(id int64, status string) (*models.Order, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var order models.Order

	query := `
		UPDATE orders
		SET status = $1, updated_at = now()
		WHERE id = $2 AND status <> $3
		RETURNING *`

	err := repo.db.GetContext(ctx, &order, query, status, id, models.OrderStatusCompleted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	return &order, true, nil
}

// AssignMember sets or overwrites the assignee. Allowed at any status;
// no assignment history is kept.
func (repo *OrderRepositoryImpl) AssignMember(orderID, memberID int64) (*models.Order, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var order models.Order

	query := `
		UPDATE orders
		SET member_id = $1, updated_at = now()
		WHERE id = $2
		RETURNING *`

	err := repo.db.GetContext(ctx, &order, query, memberID, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	return &order, true, nil
}

func (repo *OrderRepositoryImpl) Delete(id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	result, err := repo.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}
