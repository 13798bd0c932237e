package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/kawooya/remitta/internal/config"
	"github.com/kawooya/remitta/internal/models"
	"github.com/stretchr/testify/require"
)

func newAuthTestHandler(userRepo *MockUserRepo, wg *sync.WaitGroup) *AuthHandler {
	var cfg config.Config
	cfg.BaseURL = "http://localhost"
	cfg.Jwt.SecretKey = "test_secret"

	return NewAuthHandler(&AuthHandler{
		UserRepo:     userRepo,
		ActivityRepo: new(MockActivityRepo),
		Helper:       newTestHelper(wg),
		ErrHandler:   newTestErrHandler(),
		Config:       &cfg,
	})
}

func TestHandleAuthLogin_ValidCredentials(t *testing.T) {
	mockUserRepo := new(MockUserRepo)
	var wg sync.WaitGroup

	testUser := &models.User{
		ID:             123,
		Email:          "test@example.com",
		HashedPassword: "$2a$10$oiIYEECpY/GRNs9Fi7Yh1.o4Dw2fTD26eu5z48KYgXkMuOiWlSvqG",
		Role:           models.RoleUser,
		Status:         models.UserStatusActive,
	}

	mockUserRepo.On("GetByEmail", "test@example.com").Return(testUser, true, nil)

	h := newAuthTestHandler(mockUserRepo, &wg)

	requestBody, _ := json.Marshal(map[string]string{
		"email":    "test@example.com",
		"password": "correctpassword",
	})

	req := httptest.NewRequest("POST", "/auth/login", bytes.NewBuffer(requestBody))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	h.HandleAuthLogin(rr, req)
	wg.Wait()

	require.Equal(t, http.StatusOK, rr.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))

	data, ok := response["data"].(map[string]any)
	require.True(t, ok)
	require.Contains(t, data, "auth_token")
	require.Contains(t, data, "token_expiry")
	require.NotEmpty(t, data["auth_token"])

	mockUserRepo.AssertExpectations(t)
}

func TestHandleAuthLogin_BlockedAccount(t *testing.T) {
	mockUserRepo := new(MockUserRepo)
	var wg sync.WaitGroup

	blockedUser := &models.User{
		ID:             123,
		Email:          "test@example.com",
		HashedPassword: "$2a$10$oiIYEECpY/GRNs9Fi7Yh1.o4Dw2fTD26eu5z48KYgXkMuOiWlSvqG",
		Role:           models.RoleUser,
		Status:         models.UserStatusBlocked,
	}

	mockUserRepo.On("GetByEmail", "test@example.com").Return(blockedUser, true, nil)

	h := newAuthTestHandler(mockUserRepo, &wg)

	requestBody, _ := json.Marshal(map[string]string{
		"email":    "test@example.com",
		"password": "correctpassword",
	})

	req := httptest.NewRequest("POST", "/auth/login", bytes.NewBuffer(requestBody))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	h.HandleAuthLogin(rr, req)

	require.Equal(t, http.StatusForbidden, rr.Code)
	require.Contains(t, rr.Body.String(), "blocked")
}

func TestHandleAuthLogin_WrongPassword(t *testing.T) {
	mockUserRepo := new(MockUserRepo)
	var wg sync.WaitGroup

	testUser := &models.User{
		ID:             123,
		Email:          "test@example.com",
		HashedPassword: "$2a$10$oiIYEECpY/GRNs9Fi7Yh1.o4Dw2fTD26eu5z48KYgXkMuOiWlSvqG",
		Role:           models.RoleUser,
		Status:         models.UserStatusActive,
	}

	mockUserRepo.On("GetByEmail", "test@example.com").Return(testUser, true, nil)

	h := newAuthTestHandler(mockUserRepo, &wg)

	requestBody, _ := json.Marshal(map[string]string{
		"email":    "test@example.com",
		"password": "wrongpassword",
	})

	req := httptest.NewRequest("POST", "/auth/login", bytes.NewBuffer(requestBody))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	h.HandleAuthLogin(rr, req)
	wg.Wait()

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}
