package handler

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/kawooya/remitta/internal/context"
	"github.com/kawooya/remitta/internal/models"
	"github.com/kawooya/remitta/internal/stream"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newOrderTestHandler(orderRepo *MockOrderRepo, userRepo *MockUserRepo, currencyRepo *MockCurrencyRepo, wg *sync.WaitGroup) *OrderHandler {
	return NewOrderHandler(&OrderHandler{
		OrderRepo:    orderRepo,
		UserRepo:     userRepo,
		CurrencyRepo: currencyRepo,
		ActivityRepo: new(MockActivityRepo),
		Kafka:        stream.New("localhost:9092"),
		Helper:       newTestHelper(wg),
		ErrHandler:   newTestErrHandler(),
	})
}

func authenticatedRequest(method, target string, body []byte, user *models.User) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	return context.ContextSetAuthenticatedUser(req, user)
}

var testAdmin = &models.User{
	ID:       1,
	FullName: "Test Admin",
	Email:    "admin@example.com",
	Role:     models.RoleAdmin,
	Status:   models.UserStatusActive,
}

func TestHandleChangeOrderStatus_ValidTransition(t *testing.T) {
	mockOrderRepo := new(MockOrderRepo)
	var wg sync.WaitGroup

	updated := &models.Order{
		ID:             7,
		UserID:         3,
		Amount:         500,
		FromCurrencyID: 1,
		Status:         models.OrderStatusApproved,
	}
	mockOrderRepo.On("UpdateStatus", int64(7), models.OrderStatusApproved).Return(updated, true, nil)

	h := newOrderTestHandler(mockOrderRepo, new(MockUserRepo), new(MockCurrencyRepo), &wg)

	body, _ := json.Marshal(map[string]any{"id": 7, "status": "approved"})
	req := authenticatedRequest("PATCH", "/orders/status", body, testAdmin)
	rr := httptest.NewRecorder()

	h.HandleChangeOrderStatus(rr, req)
	wg.Wait()

	require.Equal(t, http.StatusOK, rr.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))

	data, ok := response["data"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "approved", data["status"])

	mockOrderRepo.AssertExpectations(t)
}

func TestHandleChangeOrderStatus_CompletedIsTerminal(t *testing.T) {
	mockOrderRepo := new(MockOrderRepo)
	var wg sync.WaitGroup

	completed := &models.Order{ID: 7, UserID: 3, Status: models.OrderStatusCompleted}
	mockOrderRepo.On("UpdateStatus", int64(7), models.OrderStatusApproved).Return(nil, false, nil)
	mockOrderRepo.On("GetOne", int64(7)).Return(completed, true, nil)

	h := newOrderTestHandler(mockOrderRepo, new(MockUserRepo), new(MockCurrencyRepo), &wg)

	body, _ := json.Marshal(map[string]any{"id": 7, "status": "approved"})
	req := authenticatedRequest("PATCH", "/orders/status", body, testAdmin)
	rr := httptest.NewRecorder()

	h.HandleChangeOrderStatus(rr, req)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.Contains(t, rr.Body.String(), "completed")

	mockOrderRepo.AssertExpectations(t)
}

func TestHandleChangeOrderStatus_RejectsUnknownStatus(t *testing.T) {
	mockOrderRepo := new(MockOrderRepo)
	var wg sync.WaitGroup

	h := newOrderTestHandler(mockOrderRepo, new(MockUserRepo), new(MockCurrencyRepo), &wg)

	body, _ := json.Marshal(map[string]any{"id": 7, "status": "shipped"})
	req := authenticatedRequest("PATCH", "/orders/status", body, testAdmin)
	rr := httptest.NewRecorder()

	h.HandleChangeOrderStatus(rr, req)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	// the repository must never see an out-of-enum status
	mockOrderRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
}

func TestHandleChangeOrderStatus_UnknownOrder(t *testing.T) {
	mockOrderRepo := new(MockOrderRepo)
	var wg sync.WaitGroup

	mockOrderRepo.On("UpdateStatus", int64(99), models.OrderStatusCancelled).Return(nil, false, nil)
	mockOrderRepo.On("GetOne", int64(99)).Return(nil, false, nil)

	h := newOrderTestHandler(mockOrderRepo, new(MockUserRepo), new(MockCurrencyRepo), &wg)

	body, _ := json.Marshal(map[string]any{"id": 99, "status": "cancelled"})
	req := authenticatedRequest("PATCH", "/orders/status", body, testAdmin)
	rr := httptest.NewRecorder()

	h.HandleChangeOrderStatus(rr, req)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.Contains(t, rr.Body.String(), "not found")
}

func TestHandleAssignMember_RequiresMemberRole(t *testing.T) {
	mockOrderRepo := new(MockOrderRepo)
	mockUserRepo := new(MockUserRepo)
	var wg sync.WaitGroup

	plainUser := &models.User{ID: 5, Role: models.RoleUser, Status: models.UserStatusActive}
	mockUserRepo.On("GetOne", int64(5)).Return(plainUser, true, nil)

	h := newOrderTestHandler(mockOrderRepo, mockUserRepo, new(MockCurrencyRepo), &wg)

	body, _ := json.Marshal(map[string]any{"order_id": 7, "member_id": 5})
	req := authenticatedRequest("PATCH", "/orders/assign", body, testAdmin)
	rr := httptest.NewRecorder()

	h.HandleAssignMember(rr, req)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.Contains(t, rr.Body.String(), "member not found")
	mockOrderRepo.AssertNotCalled(t, "AssignMember", mock.Anything, mock.Anything)
}

func TestHandleAssignMember_Success(t *testing.T) {
	mockOrderRepo := new(MockOrderRepo)
	mockUserRepo := new(MockUserRepo)
	var wg sync.WaitGroup

	member := &models.User{ID: 5, FullName: "Member One", Role: models.RoleMember, Status: models.UserStatusActive}
	mockUserRepo.On("GetOne", int64(5)).Return(member, true, nil)

	assigned := &models.Order{
		ID:       7,
		UserID:   3,
		MemberID: sql.NullInt64{Int64: 5, Valid: true},
		Status:   models.OrderStatusPending,
	}
	mockOrderRepo.On("AssignMember", int64(7), int64(5)).Return(assigned, true, nil)

	h := newOrderTestHandler(mockOrderRepo, mockUserRepo, new(MockCurrencyRepo), &wg)

	body, _ := json.Marshal(map[string]any{"order_id": 7, "member_id": 5})
	req := authenticatedRequest("PATCH", "/orders/assign", body, testAdmin)
	rr := httptest.NewRecorder()

	h.HandleAssignMember(rr, req)
	wg.Wait()

	require.Equal(t, http.StatusOK, rr.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))

	data, ok := response["data"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, float64(5), data["member_id"])

	mockOrderRepo.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
}

func TestHandleCreateOrder_RejectsUnknownCurrency(t *testing.T) {
	mockOrderRepo := new(MockOrderRepo)
	mockCurrencyRepo := new(MockCurrencyRepo)
	var wg sync.WaitGroup

	mockCurrencyRepo.On("GetOne", int64(1)).Return(nil, false, nil)

	h := newOrderTestHandler(mockOrderRepo, new(MockUserRepo), mockCurrencyRepo, &wg)

	body, _ := json.Marshal(map[string]any{
		"amount":               100,
		"from_currency_id":     1,
		"receiver_currency_id": 2,
	})
	req := authenticatedRequest("POST", "/orders", body, testAdmin)
	rr := httptest.NewRecorder()

	h.HandleCreateOrder(rr, req)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	mockOrderRepo.AssertNotCalled(t, "Insert", mock.Anything)
}

func TestHandleOrdersByStatusPaginated_RejectsBadPagination(t *testing.T) {
	mockOrderRepo := new(MockOrderRepo)
	var wg sync.WaitGroup

	h := newOrderTestHandler(mockOrderRepo, new(MockUserRepo), new(MockCurrencyRepo), &wg)

	req := authenticatedRequest("GET", "/orders/pending/paginated?page=0&limit=-5", nil, testAdmin)
	rr := httptest.NewRecorder()

	h.HandleOrdersByStatusPaginated(models.OrderStatusPending)(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	mockOrderRepo.AssertNotCalled(t, "GetByStatusPaginated", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleOrdersByStatusPaginated_ComputesTotalPages(t *testing.T) {
	mockOrderRepo := new(MockOrderRepo)
	var wg sync.WaitGroup

	orders := []models.Order{{ID: 1, Status: models.OrderStatusPending}}
	mockOrderRepo.On("GetByStatusPaginated", models.OrderStatusPending, 10, 10).Return(orders, 25, nil)

	h := newOrderTestHandler(mockOrderRepo, new(MockUserRepo), new(MockCurrencyRepo), &wg)

	req := authenticatedRequest("GET", "/orders/pending/paginated?page=2&limit=10", nil, testAdmin)
	rr := httptest.NewRecorder()

	h.HandleOrdersByStatusPaginated(models.OrderStatusPending)(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))

	data, ok := response["data"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, float64(25), data["total"])
	require.Equal(t, float64(3), data["total_pages"])

	mockOrderRepo.AssertExpectations(t)
}
