package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newNotificationTestHandler(notificationRepo *MockNotificationRepo, userRepo *MockUserRepo) *NotificationHandler {
	return NewNotificationHandler(&NotificationHandler{
		NotificationRepo: notificationRepo,
		UserRepo:         userRepo,
		ErrHandler:       newTestErrHandler(),
	})
}

func TestHandleCreateNotification_SystemFansOut(t *testing.T) {
	mockNotificationRepo := new(MockNotificationRepo)

	mockNotificationRepo.On("FanOutSystem", "Maintenance", "Planned downtime on Saturday").Return(int64(42), nil)

	h := newNotificationTestHandler(mockNotificationRepo, new(MockUserRepo))

	body, _ := json.Marshal(map[string]any{
		"title":       "Maintenance",
		"description": "Planned downtime on Saturday",
		"type":        "system",
	})
	req := authenticatedRequest("POST", "/notifications", body, testAdmin)
	rr := httptest.NewRecorder()

	h.HandleCreateNotification(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))

	data, ok := response["data"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, float64(42), data["created"])

	// system notifications never go through the single-row path
	mockNotificationRepo.AssertNotCalled(t, "Insert", mock.Anything)
	mockNotificationRepo.AssertExpectations(t)
}

func TestHandleCreateNotification_UserTypeNeedsUserID(t *testing.T) {
	mockNotificationRepo := new(MockNotificationRepo)

	h := newNotificationTestHandler(mockNotificationRepo, new(MockUserRepo))

	body, _ := json.Marshal(map[string]any{
		"title":       "Hello",
		"description": "Your order shipped",
		"type":        "user",
	})
	req := authenticatedRequest("POST", "/notifications", body, testAdmin)
	rr := httptest.NewRecorder()

	h.HandleCreateNotification(rr, req)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	mockNotificationRepo.AssertNotCalled(t, "Insert", mock.Anything)
	mockNotificationRepo.AssertNotCalled(t, "FanOutSystem", mock.Anything, mock.Anything)
}

func TestHandleMarkAllNotificationsRead(t *testing.T) {
	mockNotificationRepo := new(MockNotificationRepo)
	mockNotificationRepo.On("MarkAllRead", int64(1)).Return(int64(4), nil)

	h := newNotificationTestHandler(mockNotificationRepo, new(MockUserRepo))

	req := authenticatedRequest("PATCH", "/notifications/read-all", nil, testAdmin)
	rr := httptest.NewRecorder()

	h.HandleMarkAllNotificationsRead(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))

	data, ok := response["data"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, float64(4), data["updated"])

	mockNotificationRepo.AssertExpectations(t)
}
