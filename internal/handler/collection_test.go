package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/kawooya/remitta/internal/models"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCollectionTestHandler(collectionRepo *MockCollectionRepo, userRepo *MockUserRepo, currencyRepo *MockCurrencyRepo, wg *sync.WaitGroup) *CollectionHandler {
	return NewCollectionHandler(&CollectionHandler{
		CollectionRepo: collectionRepo,
		UserRepo:       userRepo,
		CurrencyRepo:   currencyRepo,
		ActivityRepo:   new(MockActivityRepo),
		Helper:         newTestHelper(wg),
		ErrHandler:     newTestErrHandler(),
	})
}

var testMember = &models.User{
	ID:       5,
	FullName: "Member One",
	Email:    "member@example.com",
	Role:     models.RoleMember,
	Status:   models.UserStatusActive,
}

func TestHandleCreateCollection_Success(t *testing.T) {
	mockCollectionRepo := new(MockCollectionRepo)
	mockUserRepo := new(MockUserRepo)
	mockCurrencyRepo := new(MockCurrencyRepo)
	var wg sync.WaitGroup

	mockUserRepo.On("GetOne", int64(5)).Return(testMember, true, nil)
	mockCurrencyRepo.On("GetOne", int64(2)).Return(&models.Currency{ID: 2, Code: "UGX"}, true, nil)

	created := &models.Collection{ID: 11, UserID: 5, CurrencyID: 2, Amount: 1000, Status: models.CollectionStatusPending}
	mockCollectionRepo.On("Insert", mock.Anything).Return(created, nil)

	h := newCollectionTestHandler(mockCollectionRepo, mockUserRepo, mockCurrencyRepo, &wg)

	body, _ := json.Marshal(map[string]any{"user_id": 5, "currency_id": 2, "amount": 1000})
	req := authenticatedRequest("POST", "/collections", body, testAdmin)
	rr := httptest.NewRecorder()

	h.HandleCreateCollection(rr, req)
	wg.Wait()

	require.Equal(t, http.StatusCreated, rr.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))

	data, ok := response["data"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "pending", data["status"])

	mockCollectionRepo.AssertExpectations(t)
}

func TestHandleCreateCollection_RejectsNonMember(t *testing.T) {
	mockCollectionRepo := new(MockCollectionRepo)
	mockUserRepo := new(MockUserRepo)
	var wg sync.WaitGroup

	plainUser := &models.User{ID: 9, Role: models.RoleUser, Status: models.UserStatusActive}
	mockUserRepo.On("GetOne", int64(9)).Return(plainUser, true, nil)

	h := newCollectionTestHandler(mockCollectionRepo, mockUserRepo, new(MockCurrencyRepo), &wg)

	body, _ := json.Marshal(map[string]any{"user_id": 9, "currency_id": 2, "amount": 1000})
	req := authenticatedRequest("POST", "/collections", body, testAdmin)
	rr := httptest.NewRecorder()

	h.HandleCreateCollection(rr, req)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	mockCollectionRepo.AssertNotCalled(t, "Insert", mock.Anything)
}

func TestHandleCreateCollection_RejectsNonPositiveAmount(t *testing.T) {
	mockCollectionRepo := new(MockCollectionRepo)
	var wg sync.WaitGroup

	h := newCollectionTestHandler(mockCollectionRepo, new(MockUserRepo), new(MockCurrencyRepo), &wg)

	body, _ := json.Marshal(map[string]any{"user_id": 5, "currency_id": 2, "amount": 0})
	req := authenticatedRequest("POST", "/collections", body, testAdmin)
	rr := httptest.NewRecorder()

	h.HandleCreateCollection(rr, req)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	mockCollectionRepo.AssertNotCalled(t, "Insert", mock.Anything)
}

func TestHandleConfirmCollection_Success(t *testing.T) {
	mockCollectionRepo := new(MockCollectionRepo)
	var wg sync.WaitGroup

	confirmed := &models.Collection{ID: 11, UserID: 5, CurrencyID: 2, Amount: 1000, Status: models.CollectionStatusConfirmed}
	mockCollectionRepo.On("Resolve", int64(11), int64(5), models.CollectionStatusConfirmed).Return(confirmed, true, nil)

	h := newCollectionTestHandler(mockCollectionRepo, new(MockUserRepo), new(MockCurrencyRepo), &wg)

	req := authenticatedRequest("PATCH", "/collections/11/confirm", nil, testMember)
	req.SetPathValue("id", "11")
	rr := httptest.NewRecorder()

	h.HandleConfirmCollection(rr, req)
	wg.Wait()

	require.Equal(t, http.StatusOK, rr.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))

	data, ok := response["data"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "confirmed", data["status"])

	mockCollectionRepo.AssertExpectations(t)
}

func TestHandleConfirmCollection_AlreadyResolved(t *testing.T) {
	mockCollectionRepo := new(MockCollectionRepo)
	var wg sync.WaitGroup

	resolved := &models.Collection{ID: 11, UserID: 5, Status: models.CollectionStatusRejected}
	mockCollectionRepo.On("Resolve", int64(11), int64(5), models.CollectionStatusConfirmed).Return(nil, false, nil)
	mockCollectionRepo.On("GetOne", int64(11)).Return(resolved, true, nil)

	h := newCollectionTestHandler(mockCollectionRepo, new(MockUserRepo), new(MockCurrencyRepo), &wg)

	req := authenticatedRequest("PATCH", "/collections/11/confirm", nil, testMember)
	req.SetPathValue("id", "11")
	rr := httptest.NewRecorder()

	h.HandleConfirmCollection(rr, req)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.Contains(t, rr.Body.String(), "already been resolved")
}

func TestHandleRejectCollection_ForeignCollectionReadsAsMissing(t *testing.T) {
	mockCollectionRepo := new(MockCollectionRepo)
	var wg sync.WaitGroup

	foreign := &models.Collection{ID: 11, UserID: 99, Status: models.CollectionStatusPending}
	mockCollectionRepo.On("Resolve", int64(11), int64(5), models.CollectionStatusRejected).Return(nil, false, nil)
	mockCollectionRepo.On("GetOne", int64(11)).Return(foreign, true, nil)

	h := newCollectionTestHandler(mockCollectionRepo, new(MockUserRepo), new(MockCurrencyRepo), &wg)

	req := authenticatedRequest("PATCH", "/collections/11/reject", nil, testMember)
	req.SetPathValue("id", "11")
	rr := httptest.NewRecorder()

	h.HandleRejectCollection(rr, req)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.Contains(t, rr.Body.String(), "collection not found")
}

func TestHandleBalance_WithCurrencyFilter(t *testing.T) {
	mockCollectionRepo := new(MockCollectionRepo)
	var wg sync.WaitGroup

	mockCollectionRepo.On("Balance", int64(5), mock.MatchedBy(func(id *int64) bool {
		return id != nil && *id == 2
	})).Return(float64(36500), nil)

	h := newCollectionTestHandler(mockCollectionRepo, new(MockUserRepo), new(MockCurrencyRepo), &wg)

	req := authenticatedRequest("GET", "/collections/balance?currency_id=2", nil, testMember)
	rr := httptest.NewRecorder()

	h.HandleBalance(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))

	data, ok := response["data"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, float64(36500), data["balance"])

	mockCollectionRepo.AssertExpectations(t)
}

func TestHandleBalance_MayBeNegative(t *testing.T) {
	mockCollectionRepo := new(MockCollectionRepo)
	var wg sync.WaitGroup

	// completed orders exceeding confirmed collections must come through as-is
	mockCollectionRepo.On("Balance", int64(5), (*int64)(nil)).Return(float64(-1200.5), nil)

	h := newCollectionTestHandler(mockCollectionRepo, new(MockUserRepo), new(MockCurrencyRepo), &wg)

	req := authenticatedRequest("GET", "/collections/balance", nil, testMember)
	rr := httptest.NewRecorder()

	h.HandleBalance(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))

	data, ok := response["data"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, float64(-1200.5), data["balance"])

	mockCollectionRepo.AssertExpectations(t)
}

func TestHandleMemberBalance_Success(t *testing.T) {
	mockCollectionRepo := new(MockCollectionRepo)
	mockUserRepo := new(MockUserRepo)
	var wg sync.WaitGroup

	mockUserRepo.On("GetOne", int64(5)).Return(testMember, true, nil)
	mockCollectionRepo.On("Balance", int64(5), (*int64)(nil)).Return(float64(42000), nil)

	h := newCollectionTestHandler(mockCollectionRepo, mockUserRepo, new(MockCurrencyRepo), &wg)

	req := authenticatedRequest("GET", "/collections/balance/5", nil, testAdmin)
	req.SetPathValue("userId", "5")
	rr := httptest.NewRecorder()

	h.HandleMemberBalance(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))

	data, ok := response["data"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, float64(5), data["user_id"])
	require.Equal(t, float64(42000), data["balance"])

	mockCollectionRepo.AssertExpectations(t)
}

func TestHandleMemberBalance_RejectsNonMember(t *testing.T) {
	mockCollectionRepo := new(MockCollectionRepo)
	mockUserRepo := new(MockUserRepo)
	var wg sync.WaitGroup

	plainUser := &models.User{ID: 9, Role: models.RoleUser, Status: models.UserStatusActive}
	mockUserRepo.On("GetOne", int64(9)).Return(plainUser, true, nil)

	h := newCollectionTestHandler(mockCollectionRepo, mockUserRepo, new(MockCurrencyRepo), &wg)

	req := authenticatedRequest("GET", "/collections/balance/9", nil, testAdmin)
	req.SetPathValue("userId", "9")
	rr := httptest.NewRecorder()

	h.HandleMemberBalance(rr, req)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.Contains(t, rr.Body.String(), "member not found")
	mockCollectionRepo.AssertNotCalled(t, "Balance", mock.Anything, mock.Anything)
}

func TestHandleBalancesByCurrency_EmptyLedger(t *testing.T) {
	mockCollectionRepo := new(MockCollectionRepo)
	var wg sync.WaitGroup

	mockCollectionRepo.On("BalancesByCurrency", int64(5)).Return(nil, nil)

	h := newCollectionTestHandler(mockCollectionRepo, new(MockUserRepo), new(MockCurrencyRepo), &wg)

	req := authenticatedRequest("GET", "/collections/balances", nil, testMember)
	rr := httptest.NewRecorder()

	h.HandleBalancesByCurrency(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))

	data, ok := response["data"].([]any)
	require.True(t, ok)
	require.Empty(t, data)
}
