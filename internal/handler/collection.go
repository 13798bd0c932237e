package handler

import (
	"errors"
	"log"
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
	"github.com/kawooya/remitta/internal/validator"
)

var (
	ErrCollectionNotFound = errors.New("collection not found")
	ErrCollectionResolved = errors.New("collection has already been resolved")
)

const (
	CollectionActivityLogCreatedDescription   = "Recorded a float collection"
	CollectionActivityLogConfirmedDescription = "Confirmed a float collection"
	CollectionActivityLogRejectedDescription  = "Rejected a float collection"
)

type CollectionResponseData struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	CurrencyID int64     `json:"currency_id"`
	Amount     float64   `json:"amount"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

func newCollectionResponseData(collection *models.Collection) *CollectionResponseData {
	return &CollectionResponseData{
		ID:         collection.ID,
		UserID:     collection.UserID,
		CurrencyID: collection.CurrencyID,
		Amount:     collection.Amount,
		Status:     collection.Status,
		CreatedAt:  collection.CreatedAt,
	}
}

func newCollectionListResponseData(collections []models.Collection) []*CollectionResponseData {
	data := make([]*CollectionResponseData, len(collections))
	for i := range collections {
		data[i] = newCollectionResponseData(&collections[i])
	}
	return data
}

type CollectionHandler struct {
	CollectionRepo repository.CollectionRepository
	UserRepo       repository.UserRepository
	CurrencyRepo   repository.CurrencyRepository
	ActivityRepo   repository.ActivityRepository
	Helper         *helper.HelperRepository
	ErrHandler     *errHandler.ErrorHandler
}

func NewCollectionHandler(handler *CollectionHandler) *CollectionHandler {
	return &CollectionHandler{
		CollectionRepo: handler.CollectionRepo,
		UserRepo:       handler.UserRepo,
		CurrencyRepo:   handler.CurrencyRepo,
		ActivityRepo:   handler.ActivityRepo,
		Helper:         handler.Helper,
		ErrHandler:     handler.ErrHandler,
	}
}

// HandleCreateCollection records cash handed to a member. Admin only; the
// entry starts out pending and waits for the member's confirmation.
func (h *CollectionHandler) HandleCreateCollection(w http.ResponseWriter, r *http.Request) {
	admin := context.ContextGetAuthenticatedUser(r)

	var input struct {
		UserID     int64               `json:"user_id"`
		CurrencyID int64               `json:"currency_id"`
		Amount     float64             `json:"amount"`
		Validator  validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(input.UserID > 0, "User id is required")
	input.Validator.Check(input.CurrencyID > 0, "Currency id is required")
	input.Validator.Check(input.Amount > 0, "Amount must be greater than zero")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	member, found, err := h.UserRepo.GetOne(input.UserID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if !found || !member.IsMember() {
		response.JSONErrorResponse(w, nil, ErrMemberNotFound.Error(), http.StatusUnprocessableEntity, nil)
		return
	}

	_, found, err = h.CurrencyRepo.GetOne(input.CurrencyID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if !found {
		response.JSONErrorResponse(w, nil, ErrCurrencyNotFound.Error(), http.StatusUnprocessableEntity, nil)
		return
	}

	collection, err := h.CollectionRepo.Insert(&models.Collection{
		UserID:     input.UserID,
		CurrencyID: input.CurrencyID,
		Amount:     input.Amount,
	})
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	h.Helper.BackgroundTask(r, func() error {
		_, err := h.ActivityRepo.Insert(&models.ActivityLog{
			UserID:      admin.ID,
			Entity:      models.ActivityLogCollectionEntity,
			EntityId:    strconv.FormatInt(collection.ID, 10),
			Description: CollectionActivityLogCreatedDescription,
		})

		if err != nil {
			log.Printf("Error logging collection creation: %v", err)
			return err
		}

		return nil
	})

	message := "Collection recorded successfully"
	err = response.JSONCreatedResponse(w, newCollectionResponseData(collection), message)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *CollectionHandler) HandleConfirmCollection(w http.ResponseWriter, r *http.Request) {
	h.resolveCollection(w, r, models.CollectionStatusConfirmed, CollectionActivityLogConfirmedDescription, "Collection confirmed successfully")
}

func (h *CollectionHandler) HandleRejectCollection(w http.ResponseWriter, r *http.Request) {
	h.resolveCollection(w, r, models.CollectionStatusRejected, CollectionActivityLogRejectedDescription, "Collection rejected successfully")
}

// resolveCollection lets the owning member settle a pending entry. The
// repository applies the transition conditionally; a miss is re-read to
// distinguish an already-resolved entry from a missing or foreign one.
func (h *CollectionHandler) resolveCollection(w http.ResponseWriter, r *http.Request, status, activityDescription, message string) {
	user := context.ContextGetAuthenticatedUser(r)

	id, err := parseIDParam(r, "id")
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	collection, resolved, err := h.CollectionRepo.Resolve(id, user.ID, status)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if !resolved {
		existing, found, err := h.CollectionRepo.GetOne(id)
		if err != nil {
			h.ErrHandler.ServerError(w, r, err)
			return
		}
		// a collection belonging to someone else reads as not found
		if !found || existing.UserID != user.ID {
			response.JSONErrorResponse(w, nil, ErrCollectionNotFound.Error(), http.StatusUnprocessableEntity, nil)
			return
		}
		response.JSONErrorResponse(w, nil, ErrCollectionResolved.Error(), http.StatusUnprocessableEntity, nil)
		return
	}

	h.Helper.BackgroundTask(r, func() error {
		_, err := h.ActivityRepo.Insert(&models.ActivityLog{
			UserID:      user.ID,
			Entity:      models.ActivityLogCollectionEntity,
			EntityId:    strconv.FormatInt(collection.ID, 10),
			Description: activityDescription,
		})

		if err != nil {
			log.Printf("Error logging collection resolution: %v", err)
			return err
		}

		return nil
	})

	err = response.JSONOkResponse(w, newCollectionResponseData(collection), message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// HandleListCollections serves every entry; an optional status query
// parameter narrows the listing.
func (h *CollectionHandler) HandleListCollections(w http.ResponseWriter, r *http.Request) {
	var collections []models.Collection
	var err error

	if status := r.URL.Query().Get("status"); status != "" {
		if !validator.In(status, models.CollectionStatusPending, models.CollectionStatusConfirmed, models.CollectionStatusRejected) {
			h.ErrHandler.BadRequest(w, r, errors.New("invalid collection status"))
			return
		}
		collections, err = h.CollectionRepo.GetByStatus(status)
	} else {
		collections, err = h.CollectionRepo.GetAll()
	}
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	message := "Collections fetched successfully"
	err = response.JSONOkResponse(w, newCollectionListResponseData(collections), message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *CollectionHandler) HandleMyCollections(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	var collections []models.Collection
	var err error

	if status := r.URL.Query().Get("status"); status != "" {
		if !validator.In(status, models.CollectionStatusPending, models.CollectionStatusConfirmed, models.CollectionStatusRejected) {
			h.ErrHandler.BadRequest(w, r, errors.New("invalid collection status"))
			return
		}
		collections, err = h.CollectionRepo.GetByStatusAndUser(status, user.ID)
	} else {
		collections, err = h.CollectionRepo.GetAllByUser(user.ID)
	}
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	message := "Collections fetched successfully"
	err = response.JSONOkResponse(w, newCollectionListResponseData(collections), message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// HandleBalance reports confirmed collections minus completed orders for the
// authenticated member. An optional currency_id query parameter scopes the
// sums to one currency.
func (h *CollectionHandler) HandleBalance(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	var currencyID *int64
	if raw := r.URL.Query().Get("currency_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.ErrHandler.BadRequest(w, r, err)
			return
		}
		currencyID = &parsed
	}

	balance, err := h.CollectionRepo.Balance(user.ID, currencyID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	data := map[string]any{
		"balance": balance,
	}

	message := "Balance fetched successfully"
	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// HandleMemberBalance is the admin view of a member's ledger position,
// computed exactly like the member's own balance endpoint.
func (h *CollectionHandler) HandleMemberBalance(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r, "userId")
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	member, found, err := h.UserRepo.GetOne(userID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if !found || !member.IsMember() {
		response.JSONErrorResponse(w, nil, ErrMemberNotFound.Error(), http.StatusUnprocessableEntity, nil)
		return
	}

	var currencyID *int64
	if raw := r.URL.Query().Get("currency_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.ErrHandler.BadRequest(w, r, err)
			return
		}
		currencyID = &parsed
	}

	balance, err := h.CollectionRepo.Balance(userID, currencyID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	data := map[string]any{
		"user_id": userID,
		"balance": balance,
	}

	message := "Balance fetched successfully"
	err = response.JSONOkResponse(w, data, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *CollectionHandler) HandleBalancesByCurrency(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	balances, err := h.CollectionRepo.BalancesByCurrency(user.ID)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	if balances == nil {
		balances = []models.CurrencyBalance{}
	}

	message := "Balances fetched successfully"
	err = response.JSONOkResponse(w, balances, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
