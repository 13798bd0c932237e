package repository

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/kawooya/remitta/assets"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/lib/pq"
)

const defaultTimeout = 3 * time.Second

// Database interface defines available repositories
type Database interface {
	User() UserRepository
	Currency() CurrencyRepository
	Order() OrderRepository
	Collection() CollectionRepository
	Message() MessageRepository
	Notification() NotificationRepository
	Activity() ActivityRepository

	Close() error
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// DatabaseImpl implements the Database interface
type DatabaseImpl struct {
	db               *sqlx.DB
	userRepo         UserRepository
	currencyRepo     CurrencyRepository
	orderRepo        OrderRepository
	collectionRepo   CollectionRepository
	messageRepo      MessageRepository
	notificationRepo NotificationRepository
	activityRepo     ActivityRepository

	mu sync.Mutex
}

// New initializes a database connection and runs migrations if enabled
func New(dsn string, automigrate bool) (Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	db, err := sqlx.ConnectContext(ctx, "postgres", "postgres://"+dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(2 * time.Hour)

	if automigrate {
		iofsDriver, err := iofs.New(assets.EmbeddedFiles, "migrations")
		if err != nil {
			return nil, err
		}

		migrator, err := migrate.NewWithSourceInstance("iofs", iofsDriver, "postgres://"+dsn)
		if err != nil {
			return nil, err
		}

		if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return nil, err
		}
	}

	return &DatabaseImpl{db: db}, nil
}

func (d *DatabaseImpl) Close() error {
	return d.db.Close()
}

func (d *DatabaseImpl) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	tx, err := d.db.BeginTxx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

func (d *DatabaseImpl) User() UserRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.userRepo == nil {
		d.userRepo = NewUserRepository(d.db)
	}
	return d.userRepo
}

func (d *DatabaseImpl) Currency() CurrencyRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.currencyRepo == nil {
		d.currencyRepo = NewCurrencyRepository(d.db)
	}
	return d.currencyRepo
}

func (d *DatabaseImpl) Order() OrderRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.orderRepo == nil {
		d.orderRepo = NewOrderRepository(d.db)
	}
	return d.orderRepo
}

func (d *DatabaseImpl) Collection() CollectionRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.collectionRepo == nil {
		d.collectionRepo = NewCollectionRepository(d.db)
	}
	return d.collectionRepo
}

func (d *DatabaseImpl) Message() MessageRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.messageRepo == nil {
		d.messageRepo = NewMessageRepository(d.db)
	}
	return d.messageRepo
}

func (d *DatabaseImpl) Notification() NotificationRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.notificationRepo == nil {
		d.notificationRepo = NewNotificationRepository(d.db)
	}
	return d.notificationRepo
}

func (d *DatabaseImpl) Activity() ActivityRepository {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.activityRepo == nil {
		d.activityRepo = NewActivityRepository(d.db)
	}
	return d.activityRepo
}
