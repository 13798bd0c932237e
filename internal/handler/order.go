package handler

import (
	"encoding/json"
	"errors"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/kawooya/remitta/internal/context"
	"github.com/kawooya/remitta/internal/errHandler"
	"github.com/kawooya/remitta/internal/helper"
	"github.com/kawooya/remitta/internal/models"
	"github.com/kawooya/remitta/internal/repository"
	"github.com/kawooya/remitta/internal/request"
	"github.com/kawooya/remitta/internal/response"
	"github.com/kawooya/remitta/internal/stream"
	"github.com/kawooya/remitta/internal/validator"
)

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrMemberNotFound      = errors.New("member not found")
	ErrOrderAlreadyDone    = errors.New("order has already been completed")
	ErrInvalidOrderStatus  = errors.New("invalid order status")
	ErrInvalidPageOrLimit  = errors.New("page and limit must be positive")
	ErrInvalidCurrencyPair = errors.New("invalid currency selection")
)

const (
	OrderActivityLogCreatedDescription  = "Placed a transfer order"
	OrderActivityLogStatusDescription   = "Changed order status"
	OrderActivityLogAssignedDescription = "Assigned member to order"
	OrderActivityLogDeletedDescription  = "Deleted an order"
)

// OrderEvent is the payload produced on the order topics; the notification
// and mail workers consume it.
type OrderEvent struct {
	OrderID  int64   `json:"order_id"`
	UserID   int64   `json:"user_id"`
	MemberID int64   `json:"member_id,omitempty"`
	Status   string  `json:"status"`
	Amount   float64 `json:"amount"`
}

type OrderResponseData struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"user_id"`
	MemberID           int64     `json:"member_id,omitempty"`
	Amount             float64   `json:"amount"`
	FromCurrencyID     int64     `json:"from_currency_id"`
	ReceiverCurrencyID int64     `json:"receiver_currency_id"`
	ReceiverPlace      string    `json:"receiver_place,omitempty"`
	SenderName         string    `json:"sender_name,omitempty"`
	SenderPhone        string    `json:"sender_phone,omitempty"`
	SenderAddress      string    `json:"sender_address,omitempty"`
	Relationship       string    `json:"relationship,omitempty"`
	ReceiverName       string    `json:"receiver_name,omitempty"`
	ReceiverPhone      string    `json:"receiver_phone,omitempty"`
	ReceiverAddress    string    `json:"receiver_address,omitempty"`
	Bank               string    `json:"bank,omitempty"`
	Status             string    `json:"status"`
	CreatedAt          time.Time `json:"created_at"`
}

func newOrderResponseData(order *models.Order) *OrderResponseData {
	return &OrderResponseData{
		ID:                 order.ID,
		UserID:             order.UserID,
		MemberID:           order.MemberID.Int64,
		Amount:             order.Amount,
		FromCurrencyID:     order.FromCurrencyID,
		ReceiverCurrencyID: order.ReceiverCurrencyID,
		ReceiverPlace:      order.ReceiverPlace,
		SenderName:         order.SenderName,
		SenderPhone:        order.SenderPhone,
		SenderAddress:      order.SenderAddress,
		Relationship:       order.Relationship,
		ReceiverName:       order.ReceiverName,
		ReceiverPhone:      order.ReceiverPhone,
		ReceiverAddress:    order.ReceiverAddress,
		Bank:               order.Bank,
		Status:             order.Status,
		CreatedAt:          order.CreatedAt,
	}
}

func newOrderListResponseData(orders []models.Order) []*OrderResponseData {
	data := make([]*OrderResponseData, len(orders))
	for i := range orders {
		data[i] = newOrderResponseData(&orders[i])
	}
	return data
}

type OrderHandler struct {
	OrderRepo    repository.OrderRepository
	UserRepo     repository.UserRepository
	CurrencyRepo repository.CurrencyRepository
	ActivityRepo repository.ActivityRepository
	Kafka        *stream.KafkaStream
	Helper       *helper.HelperRepository
	ErrHandler   *errHandler.ErrorHandler
}

func NewOrderHandler(handler *OrderHandler) *OrderHandler {
	return &OrderHandler{
		OrderRepo:    handler.OrderRepo,
		UserRepo:     handler.UserRepo,
		CurrencyRepo: handler.CurrencyRepo,
		ActivityRepo: handler.ActivityRepo,
		Kafka:        handler.Kafka,
		Helper:       handler.Helper,
		ErrHandler:   handler.ErrHandler,
	}
}

func (h *OrderHandler) HandleCreateOrder(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	var input struct {
		Amount             float64             `json:"amount"`
		MemberID           int64               `json:"member_id"`
		FromCurrencyID     int64               `json:"from_currency_id"`
		ReceiverCurrencyID int64               `json:"receiver_currency_id"`
		ReceiverPlace      string              `json:"receiver_place"`
		SenderName         string              `json:"sender_name"`
		SenderPhone        string              `json:"sender_phone"`
		SenderAddress      string              `json:"sender_address"`
		Relationship       string              `json:"relationship"`
		ReceiverName       string              `json:"receiver_name"`
		ReceiverPhone      string              `json:"receiver_phone"`
		ReceiverAddress    string              `json:"receiver_address"`
		Bank               string              `json:"bank"`
		Validator          validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(input.Amount > 0, "Amount is required")
	input.Validator.Check(input.FromCurrencyID > 0, "Sending currency is required")
	input.Validator.Check(input.ReceiverCurrencyID > 0, "Receiving currency is required")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	for _, currencyID := range []int64{input.FromCurrencyID, input.ReceiverCurrencyID} {
		_, found, err := h.CurrencyRepo.GetOne(currencyID)
		if err != nil {
			h.ErrHandler.ServerError(w, r, err)
			return
		}
		if !found {
			response.JSONErrorResponse(w, nil, ErrInvalidCurrencyPair.Error(), http.StatusUnprocessableEntity, nil)
			return
		}
	}

	newOrder := &models.Order{
		UserID:             user.ID,
		Amount:             input.Amount,
		FromCurrencyID:     input.FromCurrencyID,
		ReceiverCurrencyID: input.ReceiverCurrencyID,
		ReceiverPlace:      input.ReceiverPlace,
		SenderName:         input.SenderName,
		SenderPhone:        input.SenderPhone,
		SenderAddress:      input.SenderAddress,
		Relationship:       input.Relationship,
		ReceiverName:       input.ReceiverName,
		ReceiverPhone:      input.ReceiverPhone,
		ReceiverAddress:    input.ReceiverAddress,
		Bank:               input.Bank,
	}

	// an up-front member assignment is optional but must resolve
	if input.MemberID > 0 {
		member, found, err := h.UserRepo.GetOne(input.MemberID)
		if err != nil {
			h.ErrHandler.ServerError(w, r, err)
			return
		}
		if !found || !member.IsMember() {
			response.JSONErrorResponse(w, nil, ErrMemberNotFound.Error(), http.StatusUnprocessableEntity, nil)
			return
		}
		newOrder.MemberID.Int64 = input.MemberID
		newOrder.MemberID.Valid = true
	}

	order, err := h.OrderRepo.Insert(newOrder)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	h.Helper.BackgroundTask(r, func() error {
		_, err := h.ActivityRepo.Insert(&models.ActivityLog{
			UserID:      user.ID,
			Entity:      models.ActivityLogOrderEntity,
			EntityId:    strconv.FormatInt(order.ID, 10),
			Description: OrderActivityLogCreatedDescription,
		})

		if err != nil {
			log.Printf("Error logging order creation: %v", err)
			return err
		}

		return nil
	})

	message := "Order created successfully"
	err = response.JSONCreatedResponse(w, newOrderResponseData(order), message)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// HandleChangeOrderStatus validates the target status against the closed
// enum, then lets the repository apply the transition conditionally. A
// miss is classified by re-reading: completed orders report the
// terminality violation, anything else is a plain not-found.
func (h *OrderHandler) HandleChangeOrderStatus(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	var input struct {
		ID        int64               `json:"id"`
		Status    string              `json:"status"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(input.ID > 0, "Order id is required")
	input.Validator.Check(validator.In(input.Status, models.OrderStatuses...), ErrInvalidOrderStatus.Error())

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	order, updated, err := h.OrderRepo.UpdateStatus(input.ID, input.Status)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !updated {
		existing, found, err := h.OrderRepo.GetOne(input.ID)
		if err != nil {
			h.ErrHandler.ServerError(w, r, err)
			return
		}
		if !found {
			response.JSONErrorResponse(w, nil, ErrOrderNotFound.Error(), http.StatusUnprocessableEntity, nil)
			return
		}
		if existing.Status == models.OrderStatusCompleted {
			response.JSONErrorResponse(w, nil, ErrOrderAlreadyDone.Error(), http.StatusUnprocessableEntity, nil)
			return
		}
		h.ErrHandler.ServerError(w, r, errors.New("order status update affected no rows"))
		return
	}

	event := &OrderEvent{
		OrderID:  order.ID,
		UserID:   order.UserID,
		MemberID: order.MemberID.Int64,
		Status:   order.Status,
		Amount:   order.Amount,
	}

	jsonEvent, err := json.Marshal(event)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	// notification and mail workers pick this up
	go h.Kafka.ProduceMessage(stream.OrderStatusTopic, string(jsonEvent))

	h.Helper.BackgroundTask(r, func() error {
		_, err := h.ActivityRepo.Insert(&models.ActivityLog{
			UserID:      user.ID,
			Entity:      models.ActivityLogOrderEntity,
			EntityId:    strconv.FormatInt(order.ID, 10),
			Description: OrderActivityLogStatusDescription + " to " + order.Status,
		})

		if err != nil {
			log.Printf("Error logging order status change: %v", err)
			return err
		}

		return nil
	})

	message := "Order status updated successfully"
	err = response.JSONOkResponse(w, newOrderResponseData(order), message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *OrderHandler) HandleAssignMember(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	var input struct {
		OrderID   int64               `json:"order_id"`
		MemberID  int64               `json:"member_id"`
		Validator validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(input.OrderID > 0, "Order id is required")
	input.Validator.Check(input.MemberID > 0, "Member id is required")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	member, found, err := h.UserRepo.GetOne(input.MemberID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if !found || !member.IsMember() {
		response.JSONErrorResponse(w, nil, ErrMemberNotFound.Error(), http.StatusUnprocessableEntity, nil)
		return
	}

	order, found, err := h.OrderRepo.AssignMember(input.OrderID, input.MemberID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if !found {
		response.JSONErrorResponse(w, nil, ErrOrderNotFound.Error(), http.StatusUnprocessableEntity, nil)
		return
	}

	event := &OrderEvent{
		OrderID:  order.ID,
		UserID:   order.UserID,
		MemberID: order.MemberID.Int64,
		Status:   order.Status,
		Amount:   order.Amount,
	}

	jsonEvent, err := json.Marshal(event)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	go h.Kafka.ProduceMessage(stream.OrderAssignedTopic, string(jsonEvent))

	h.Helper.BackgroundTask(r, func() error {
		_, err := h.ActivityRepo.Insert(&models.ActivityLog{
			UserID:      user.ID,
			Entity:      models.ActivityLogOrderEntity,
			EntityId:    strconv.FormatInt(order.ID, 10),
			Description: OrderActivityLogAssignedDescription,
		})

		if err != nil {
			log.Printf("Error logging member assignment: %v", err)
			return err
		}

		return nil
	})

	message := "Member assigned successfully"
	err = response.JSONOkResponse(w, newOrderResponseData(order), message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *OrderHandler) HandleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	id, err := parseIDParam(r, "id")
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	deleted, err := h.OrderRepo.Delete(id)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if !deleted {
		h.ErrHandler.NotFound(w, r)
		return
	}

	h.Helper.BackgroundTask(r, func() error {
		_, err := h.ActivityRepo.Insert(&models.ActivityLog{
			UserID:      user.ID,
			Entity:      models.ActivityLogOrderEntity,
			EntityId:    strconv.FormatInt(id, 10),
			Description: OrderActivityLogDeletedDescription,
		})

		if err != nil {
			log.Printf("Error logging order deletion: %v", err)
			return err
		}

		return nil
	})

	message := "Order deleted successfully"
	err = response.JSONOkResponse(w, nil, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *OrderHandler) HandleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	order, found, err := h.OrderRepo.GetOne(id)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if !found {
		h.ErrHandler.NotFound(w, r)
		return
	}

	message := "Order fetched successfully"
	err = response.JSONOkResponse(w, newOrderResponseData(order), message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *OrderHandler) HandleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.OrderRepo.GetAll()
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	message := "Orders fetched successfully"
	err = response.JSONOkResponse(w, newOrderListResponseData(orders), message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *OrderHandler) HandleMyOrders(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	orders, err := h.OrderRepo.GetAllByUser(user.ID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	message := "Orders fetched successfully"
	err = response.JSONOkResponse(w, newOrderListResponseData(orders), message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// HandleOrdersByStatus serves the plain listing for one status; date-range
// filtering and user/member scoping come in through query parameters.
func (h *OrderHandler) HandleOrdersByStatus(status string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		queryValues := retrieveUrlQueryValues(r)

		var orders []models.Order
		var err error

		switch {
		case queryValues.StartDate != nil && queryValues.EndDate != nil:
			// the end date is inclusive, so push it to the end of the day
			end := queryValues.EndDate.Add(24*time.Hour - time.Nanosecond)
			orders, err = h.OrderRepo.GetByStatusAndDateRange(status, *queryValues.StartDate, end)
		case r.URL.Query().Get("user_id") != "":
			var userID int64
			userID, err = strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
			if err != nil {
				h.ErrHandler.BadRequest(w, r, err)
				return
			}
			orders, err = h.OrderRepo.GetByStatusAndUser(status, userID)
		case r.URL.Query().Get("member_id") != "":
			var memberID int64
			memberID, err = strconv.ParseInt(r.URL.Query().Get("member_id"), 10, 64)
			if err != nil {
				h.ErrHandler.BadRequest(w, r, err)
				return
			}
			orders, err = h.OrderRepo.GetByStatusAndMember(status, memberID)
		default:
			orders, err = h.OrderRepo.GetByStatus(status)
		}

		if err != nil {
			h.ErrHandler.ServerError(w, r, err)
			return
		}

		message := "Orders fetched successfully"
		err = response.JSONOkResponse(w, newOrderListResponseData(orders), message, nil)
		if err != nil {
			h.ErrHandler.ServerError(w, r, err)
		}
	}
}

func (h *OrderHandler) HandleOrdersByStatusPaginated(status string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		queryValues := retrieveUrlQueryValues(r)

		// reject bad pagination before touching the store
		if queryValues.Page < 1 || queryValues.Limit < 1 {
			h.ErrHandler.BadRequest(w, r, ErrInvalidPageOrLimit)
			return
		}

		orders, total, err := h.OrderRepo.GetByStatusPaginated(status, queryValues.Limit, queryValues.Offset)
		if err != nil {
			h.ErrHandler.ServerError(w, r, err)
			return
		}

		totalPages := int(math.Ceil(float64(total) / float64(queryValues.Limit)))

		data := map[string]any{
			"orders":      newOrderListResponseData(orders),
			"total":       total,
			"total_pages": totalPages,
		}

		message := "Orders fetched successfully"
		err = response.JSONOkResponse(w, data, message, nil)
		if err != nil {
			h.ErrHandler.ServerError(w, r, err)
		}
	}
}

func (h *OrderHandler) HandleOrdersByStatusCount(status string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count, err := h.OrderRepo.CountByStatus(status)
		if err != nil {
			h.ErrHandler.ServerError(w, r, err)
			return
		}

		data := map[string]any{
			"count": count,
		}

		message := "Order count fetched successfully"
		err = response.JSONOkResponse(w, data, message, nil)
		if err != nil {
			h.ErrHandler.ServerError(w, r, err)
		}
	}
}
