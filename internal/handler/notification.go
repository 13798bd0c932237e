package handler

import (
	"database/sql"
	"net/http"

	"github.com/kawooya/remitta/internal/context"
	"github.com/kawooya/remitta/internal/errHandler"
	"github.com/kawooya/remitta/internal/models"
	"github.com/kawooya/remitta/internal/repository"
	"github.com/kawooya/remitta/internal/request"
	"github.com/kawooya/remitta/internal/response"
	"github.com/kawooya/remitta/internal/validator"
)

type NotificationHandler struct {
	NotificationRepo repository.NotificationRepository
	UserRepo         repository.UserRepository
	ErrHandler       *errHandler.ErrorHandler
}

func NewNotificationHandler(handler *NotificationHandler) *NotificationHandler {
	return &NotificationHandler{
		NotificationRepo: handler.NotificationRepo,
		UserRepo:         handler.UserRepo,
		ErrHandler:       handler.ErrHandler,
	}
}

// HandleCreateNotification creates either a targeted notification for one
// user or a system notification fanned out to everyone. Admin only.
func (h *NotificationHandler) HandleCreateNotification(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Title       string              `json:"title"`
		Description string              `json:"description"`
		Type        string              `json:"type"`
		UserID      int64               `json:"user_id"`
		Validator   validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.Title), "Title is required")
	input.Validator.Check(validator.NotBlank(input.Description), "Description is required")
	input.Validator.Check(validator.In(input.Type, models.NotificationTypeSystem, models.NotificationTypeUser), "Type must be system or user")

	if input.Type == models.NotificationTypeUser {
		input.Validator.Check(input.UserID > 0, "User id is required for user notifications")
	}

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	if input.Type == models.NotificationTypeSystem {
		created, err := h.NotificationRepo.FanOutSystem(input.Title, input.Description)
		if err != nil {
			h.ErrHandler.ServerError(w, r, err)
			return
		}

		data := map[string]any{
			"created": created,
		}

		message := "Notification sent to all users"
		err = response.JSONCreatedResponse(w, data, message)
		if err != nil {
			h.ErrHandler.ServerError(w, r, err)
		}
		return
	}

	_, found, err := h.UserRepo.GetOne(input.UserID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if !found {
		h.ErrHandler.NotFound(w, r)
		return
	}

	notification, err := h.NotificationRepo.Insert(&models.Notification{
		Title:       input.Title,
		Description: input.Description,
		UserID:      sql.NullInt64{Int64: input.UserID, Valid: true},
		Type:        models.NotificationTypeUser,
	})
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	message := "Notification created successfully"
	err = response.JSONCreatedResponse(w, notification, message)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *NotificationHandler) HandleMyNotifications(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	notifications, err := h.NotificationRepo.GetAllByUser(user.ID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if notifications == nil {
		notifications = []models.Notification{}
	}

	message := "Notifications fetched successfully"
	err = response.JSONOkResponse(w, notifications, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// HandleMarkNotificationRead flips one of the caller's notifications to
// read. Marking an already-read notification is a quiet no-op.
func (h *NotificationHandler) HandleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	id, err := parseIDParam(r, "id")
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	_, err = h.NotificationRepo.MarkRead(id, user.ID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	message := "Notification marked as read"
	err = response.JSONOkResponse(w, nil, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *NotificationHandler) HandleMarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	updated, err := h.NotificationRepo.MarkAllRead(user.ID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	data := map[string]any{
		"updated": updated,
	}

	message := "Notifications marked as read"
	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *NotificationHandler) HandleUnreadNotificationCount(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	count, err := h.NotificationRepo.CountUnread(user.ID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	data := map[string]any{
		"count": count,
	}

	message := "Unread count fetched successfully"
	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
