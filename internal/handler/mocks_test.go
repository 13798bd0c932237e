package handler

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/kawooya/remitta/internal/errHandler"
	"github.com/kawooya/remitta/internal/helper"
	"github.com/kawooya/remitta/internal/models"
	"github.com/stretchr/testify/mock"
)

func newTestErrHandler() *errHandler.ErrorHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return errHandler.New("", "http://localhost", nil, logger)
}

func newTestHelper(wg *sync.WaitGroup) *helper.HelperRepository {
	baseURL := "http://localhost"
	return helper.New(&baseURL, wg, newTestErrHandler())
}

// MockUserRepo implements UserRepository but only mocks the needed methods.
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Insert(user *models.User, tx *sqlx.Tx) (int64, error) {
	return 0, nil
}

func (m *MockUserRepo) GetOne(id int64) (*models.User, bool, error) {
	args := m.Called(id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Bool(1), args.Error(2)
}

func (m *MockUserRepo) GetByEmail(email string) (*models.User, bool, error) {
	args := m.Called(email)
	user, _ := args.Get(0).(*models.User)
	return user, args.Bool(1), args.Error(2)
}

func (m *MockUserRepo) GetAll() ([]models.User, error) {
	return nil, nil
}

func (m *MockUserRepo) GetAllByRole(role string) ([]models.User, error) {
	return nil, nil
}

func (m *MockUserRepo) CheckIfPhoneNumberExist(phoneNumber string) (bool, error) {
	return false, nil
}

func (m *MockUserRepo) UpdateProfile(id int64, fullName, address, phoneNumber string) error {
	return nil
}

func (m *MockUserRepo) UpdatePassword(id int64, hashedPassword string) error {
	return nil
}

func (m *MockUserRepo) ChangeProfilePicture(id int64, url string) error {
	return nil
}

func (m *MockUserRepo) SetStatus(id int64, status string) error {
	return nil
}

type MockOrderRepo struct {
	mock.Mock
}

func (m *MockOrderRepo) Insert(order *models.Order) (*models.Order, error) {
	args := m.Called(order)
	created, _ := args.Get(0).(*models.Order)
	return created, args.Error(1)
}

func (m *MockOrderRepo) GetOne(id int64) (*models.Order, bool, error) {
	args := m.Called(id)
	order, _ := args.Get(0).(*models.Order)
	return order, args.Bool(1), args.Error(2)
}

func (m *MockOrderRepo) GetAll() ([]models.Order, error) {
	return nil, nil
}

func (m *MockOrderRepo) GetAllByUser(userID int64) ([]models.Order, error) {
	return nil, nil
}

func (m *MockOrderRepo) GetByStatus(status string) ([]models.Order, error) {
	args := m.Called(status)
	orders, _ := args.Get(0).([]models.Order)
	return orders, args.Error(1)
}

func (m *MockOrderRepo) GetByStatusAndUser(status string, userID int64) ([]models.Order, error) {
	return nil, nil
}

func (m *MockOrderRepo) GetByStatusAndMember(status string, memberID int64) ([]models.Order, error) {
	return nil, nil
}

func (m *MockOrderRepo) GetByStatusAndDateRange(status string, start, end time.Time) ([]models.Order, error) {
	return nil, nil
}

func (m *MockOrderRepo) GetByStatusPaginated(status string, limit, offset int) ([]models.Order, int, error) {
	args := m.Called(status, limit, offset)
	orders, _ := args.Get(0).([]models.Order)
	return orders, args.Int(1), args.Error(2)
}

func (m *MockOrderRepo) CountByStatus(status string) (int, error) {
	args := m.Called(status)
	return args.Int(0), args.Error(1)
}

func (m *MockOrderRepo) UpdateStatus(id int64, status string) (*models.Order, bool, error) {
	args := m.Called(id, status)
	order, _ := args.Get(0).(*models.Order)
	return order, args.Bool(1), args.Error(2)
}

func (m *MockOrderRepo) AssignMember(orderID, memberID int64) (*models.Order, bool, error) {
	args := m.Called(orderID, memberID)
	order, _ := args.Get(0).(*models.Order)
	return order, args.Bool(1), args.Error(2)
}

func (m *MockOrderRepo) Delete(id int64) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

type MockCollectionRepo struct {
	mock.Mock
}

func (m *MockCollectionRepo) Insert(collection *models.Collection) (*models.Collection, error) {
	args := m.Called(collection)
	created, _ := args.Get(0).(*models.Collection)
	return created, args.Error(1)
}

func (m *MockCollectionRepo) GetOne(id int64) (*models.Collection, bool, error) {
	args := m.Called(id)
	collection, _ := args.Get(0).(*models.Collection)
	return collection, args.Bool(1), args.Error(2)
}

func (m *MockCollectionRepo) GetAll() ([]models.Collection, error) {
	return nil, nil
}

func (m *MockCollectionRepo) GetByStatus(status string) ([]models.Collection, error) {
	return nil, nil
}

func (m *MockCollectionRepo) GetAllByUser(userID int64) ([]models.Collection, error) {
	return nil, nil
}

func (m *MockCollectionRepo) GetByStatusAndUser(status string, userID int64) ([]models.Collection, error) {
	return nil, nil
}

func (m *MockCollectionRepo) Resolve(id, userID int64, status string) (*models.Collection, bool, error) {
	args := m.Called(id, userID, status)
	collection, _ := args.Get(0).(*models.Collection)
	return collection, args.Bool(1), args.Error(2)
}

func (m *MockCollectionRepo) Balance(userID int64, currencyID *int64) (float64, error) {
	args := m.Called(userID, currencyID)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockCollectionRepo) BalancesByCurrency(userID int64) ([]models.CurrencyBalance, error) {
	args := m.Called(userID)
	balances, _ := args.Get(0).([]models.CurrencyBalance)
	return balances, args.Error(1)
}

type MockMessageRepo struct {
	mock.Mock
}

func (m *MockMessageRepo) Insert(message *models.Message) (*models.Message, error) {
	args := m.Called(message)
	created, _ := args.Get(0).(*models.Message)
	return created, args.Error(1)
}

func (m *MockMessageRepo) GetByOrder(orderID int64) ([]models.Message, error) {
	args := m.Called(orderID)
	messages, _ := args.Get(0).([]models.Message)
	return messages, args.Error(1)
}

func (m *MockMessageRepo) GetByOrderForUser(orderID, userID int64) ([]models.Message, error) {
	args := m.Called(orderID, userID)
	messages, _ := args.Get(0).([]models.Message)
	return messages, args.Error(1)
}

func (m *MockMessageRepo) GetDirectThread(user1ID, user2ID int64) ([]models.Message, error) {
	args := m.Called(user1ID, user2ID)
	messages, _ := args.Get(0).([]models.Message)
	return messages, args.Error(1)
}

func (m *MockMessageRepo) MarkOrderMessagesRead(orderID, recipientID int64) (int64, error) {
	args := m.Called(orderID, recipientID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMessageRepo) MarkDirectMessagesRead(fromUserID, toUserID int64) (int64, error) {
	args := m.Called(fromUserID, toUserID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMessageRepo) CountUnread(userID int64) (int, error) {
	args := m.Called(userID)
	return args.Int(0), args.Error(1)
}

type MockCurrencyRepo struct {
	mock.Mock
}

func (m *MockCurrencyRepo) Insert(currency *models.Currency) (*models.Currency, error) {
	return nil, nil
}

func (m *MockCurrencyRepo) GetOne(id int64) (*models.Currency, bool, error) {
	args := m.Called(id)
	currency, _ := args.Get(0).(*models.Currency)
	return currency, args.Bool(1), args.Error(2)
}

func (m *MockCurrencyRepo) GetByCode(code string) (*models.Currency, bool, error) {
	return nil, false, nil
}

func (m *MockCurrencyRepo) GetAll() ([]models.Currency, error) {
	return nil, nil
}

func (m *MockCurrencyRepo) Update(currency *models.Currency) (bool, error) {
	return false, nil
}

func (m *MockCurrencyRepo) Delete(id int64) (bool, error) {
	return false, nil
}

type MockActivityRepo struct {
	mock.Mock
}

func (m *MockActivityRepo) Insert(log *models.ActivityLog) (*models.ActivityLog, error) {
	return log, nil
}

func (m *MockActivityRepo) CountConsecutiveFailedLoginAttempts(userID int64, actionDesc string) int {
	return 0
}

type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Insert(notification *models.Notification) (*models.Notification, error) {
	args := m.Called(notification)
	created, _ := args.Get(0).(*models.Notification)
	return created, args.Error(1)
}

func (m *MockNotificationRepo) FanOutSystem(title, description string) (int64, error) {
	args := m.Called(title, description)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepo) GetAllByUser(userID int64) ([]models.Notification, error) {
	args := m.Called(userID)
	notifications, _ := args.Get(0).([]models.Notification)
	return notifications, args.Error(1)
}

func (m *MockNotificationRepo) MarkRead(id, userID int64) (bool, error) {
	args := m.Called(id, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockNotificationRepo) MarkAllRead(userID int64) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepo) CountUnread(userID int64) (int, error) {
	args := m.Called(userID)
	return args.Int(0), args.Error(1)
}
