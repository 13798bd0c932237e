package handler

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/kawooya/remitta/internal/context"
	"github.com/kawooya/remitta/internal/errHandler"
	"github.com/kawooya/remitta/internal/models"
	"github.com/kawooya/remitta/internal/repository"
	"github.com/kawooya/remitta/internal/request"
	"github.com/kawooya/remitta/internal/response"
	"github.com/kawooya/remitta/internal/validator"
)

var (
	ErrSenderNotFound    = errors.New("sender not found")
	ErrRecipientNotFound = errors.New("recipient not found")
)

type MessageResponseData struct {
	ID            int64     `json:"id"`
	Message       string    `json:"message"`
	OrderID       int64     `json:"order_id,omitempty"`
	SenderID      int64     `json:"sender_id,omitempty"`
	RecipientID   int64     `json:"recipient_id,omitempty"`
	SenderType    string    `json:"sender_type"`
	SenderName    string    `json:"sender_name,omitempty"`
	RecipientName string    `json:"recipient_name,omitempty"`
	IsRead        bool      `json:"is_read"`
	CreatedAt     time.Time `json:"created_at"`
}

func newMessageResponseData(message *models.Message) *MessageResponseData {
	return &MessageResponseData{
		ID:            message.ID,
		Message:       message.Message,
		OrderID:       message.OrderID.Int64,
		SenderID:      message.SenderID.Int64,
		RecipientID:   message.RecipientID.Int64,
		SenderType:    message.SenderType,
		SenderName:    message.SenderName.String,
		RecipientName: message.RecipientName.String,
		IsRead:        message.IsRead,
		CreatedAt:     message.CreatedAt,
	}
}

func newMessageListResponseData(messages []models.Message) []*MessageResponseData {
	data := make([]*MessageResponseData, len(messages))
	for i := range messages {
		data[i] = newMessageResponseData(&messages[i])
	}
	return data
}

type MessageHandler struct {
	MessageRepo repository.MessageRepository
	OrderRepo   repository.OrderRepository
	UserRepo    repository.UserRepository
	ErrHandler  *errHandler.ErrorHandler
}

func NewMessageHandler(handler *MessageHandler) *MessageHandler {
	return &MessageHandler{
		MessageRepo: handler.MessageRepo,
		OrderRepo:   handler.OrderRepo,
		UserRepo:    handler.UserRepo,
		ErrHandler:  handler.ErrHandler,
	}
}

// HandleCreateOrderMessage posts into an order thread. When no recipient is
// named the message goes to the order owner, which is how staff reply to a
// customer without looking up their id first.
func (h *MessageHandler) HandleCreateOrderMessage(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	var input struct {
		Message     string              `json:"message"`
		OrderID     int64               `json:"order_id"`
		RecipientID int64               `json:"recipient_id"`
		Validator   validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.Message), "Message is required")
	input.Validator.Check(input.OrderID > 0, "Order id is required")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	order, found, err := h.OrderRepo.GetOne(input.OrderID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if !found {
		response.JSONErrorResponse(w, nil, ErrOrderNotFound.Error(), http.StatusUnprocessableEntity, nil)
		return
	}

	recipientID := input.RecipientID
	if recipientID == 0 {
		recipientID = order.UserID
	}

	recipient, found, err := h.UserRepo.GetOne(recipientID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if !found {
		response.JSONErrorResponse(w, nil, ErrRecipientNotFound.Error(), http.StatusUnprocessableEntity, nil)
		return
	}

	senderType := models.MessageSenderTypeUser
	if user.IsAdmin() {
		senderType = models.MessageSenderTypeAdmin
	}

	message, err := h.MessageRepo.Insert(&models.Message{
		Message:       input.Message,
		OrderID:       sql.NullInt64{Int64: order.ID, Valid: true},
		SenderID:      sql.NullInt64{Int64: user.ID, Valid: true},
		RecipientID:   sql.NullInt64{Int64: recipient.ID, Valid: true},
		SenderType:    senderType,
		SenderName:    sql.NullString{String: user.FullName, Valid: true},
		RecipientName: sql.NullString{String: recipient.FullName, Valid: true},
	})
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	responseMessage := "Message sent successfully"
	err = response.JSONCreatedResponse(w, newMessageResponseData(message), responseMessage)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// HandleCreateDirectMessage posts a message outside any order thread. Sender
// and recipient are resolved separately so the caller learns which side was
// wrong.
func (h *MessageHandler) HandleCreateDirectMessage(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	var input struct {
		Message     string              `json:"message"`
		RecipientID int64               `json:"recipient_id"`
		Validator   validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.Message), "Message is required")
	input.Validator.Check(input.RecipientID > 0, "Recipient id is required")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	sender, found, err := h.UserRepo.GetOne(user.ID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if !found {
		response.JSONErrorResponse(w, nil, ErrSenderNotFound.Error(), http.StatusUnprocessableEntity, nil)
		return
	}

	recipient, found, err := h.UserRepo.GetOne(input.RecipientID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if !found {
		response.JSONErrorResponse(w, nil, ErrRecipientNotFound.Error(), http.StatusUnprocessableEntity, nil)
		return
	}

	senderType := models.MessageSenderTypeUser
	if sender.IsAdmin() {
		senderType = models.MessageSenderTypeAdmin
	}

	message, err := h.MessageRepo.Insert(&models.Message{
		Message:       input.Message,
		SenderID:      sql.NullInt64{Int64: sender.ID, Valid: true},
		RecipientID:   sql.NullInt64{Int64: recipient.ID, Valid: true},
		SenderType:    senderType,
		SenderName:    sql.NullString{String: sender.FullName, Valid: true},
		RecipientName: sql.NullString{String: recipient.FullName, Valid: true},
	})
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	responseMessage := "Message sent successfully"
	err = response.JSONCreatedResponse(w, newMessageResponseData(message), responseMessage)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// HandleOrderChatHistory returns the thread for one order. Admins see the
// full thread; everyone else only the messages they sent or received.
func (h *MessageHandler) HandleOrderChatHistory(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	orderID, err := parseIDParam(r, "id")
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	var messages []models.Message
	if user.IsAdmin() {
		messages, err = h.MessageRepo.GetByOrder(orderID)
	} else {
		messages, err = h.MessageRepo.GetByOrderForUser(orderID, user.ID)
	}
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	message := "Messages fetched successfully"
	err = response.JSONOkResponse(w, newMessageListResponseData(messages), message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// HandleDirectThread returns the direct conversation between the caller and
// another user. A missing or malformed user id yields an empty thread rather
// than an error, so polling clients degrade quietly.
func (h *MessageHandler) HandleDirectThread(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	message := "Messages fetched successfully"

	otherID, err := strconv.ParseInt(r.PathValue("userId"), 10, 64)
	if err != nil || otherID < 1 {
		if err != nil {
			log.Printf("Invalid direct thread user id %q: %v", r.PathValue("userId"), err)
		}
		err = response.JSONOkResponse(w, []*MessageResponseData{}, message, nil)
		if err != nil {
			h.ErrHandler.ServerError(w, r, err)
		}
		return
	}

	messages, err := h.MessageRepo.GetDirectThread(user.ID, otherID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	err = response.JSONOkResponse(w, newMessageListResponseData(messages), message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *MessageHandler) HandleMarkOrderMessagesRead(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	orderID, err := parseIDParam(r, "id")
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	updated, err := h.MessageRepo.MarkOrderMessagesRead(orderID, user.ID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	data := map[string]any{
		"updated": updated,
	}

	message := "Messages marked as read"
	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *MessageHandler) HandleMarkDirectMessagesRead(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	fromUserID, err := parseIDParam(r, "userId")
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	updated, err := h.MessageRepo.MarkDirectMessagesRead(fromUserID, user.ID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	data := map[string]any{
		"updated": updated,
	}

	message := "Messages marked as read"
	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *MessageHandler) HandleUnreadMessageCount(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	count, err := h.MessageRepo.CountUnread(user.ID)
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
