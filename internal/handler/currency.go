package handler

import (
	"errors"
	"net/http"

	"github.com/kawooya/remitta/internal/errHandler"
	"github.com/kawooya/remitta/internal/models"
	"github.com/kawooya/remitta/internal/rates"
	"github.com/kawooya/remitta/internal/repository"
	"github.com/kawooya/remitta/internal/request"
	"github.com/kawooya/remitta/internal/response"
	"github.com/kawooya/remitta/internal/validator"
)

var ErrCurrencyNotFound = errors.New("currency not found")

type CurrencyHandler struct {
	CurrencyRepo repository.CurrencyRepository
	Converter    *rates.Converter
	ErrHandler   *errHandler.ErrorHandler
}

func NewCurrencyHandler(handler *CurrencyHandler) *CurrencyHandler {
	return &CurrencyHandler{
		CurrencyRepo: handler.CurrencyRepo,
		Converter:    handler.Converter,
		ErrHandler:   handler.ErrHandler,
	}
}

func (h *CurrencyHandler) HandleCreateCurrency(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name          string              `json:"name"`
		Code          string              `json:"code"`
		Symbol        string              `json:"symbol"`
		RatePerDollar float64             `json:"rate_per_dollar"`
		Validator     validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.Name), "Name is required")
	input.Validator.Check(validator.NotBlank(input.Code), "Code is required")
	input.Validator.Check(validator.NotBlank(input.Symbol), "Symbol is required")
	input.Validator.Check(input.RatePerDollar > 0, "Rate per dollar must be greater than zero")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	_, found, err := h.CurrencyRepo.GetByCode(input.Code)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if found {
		input.Validator.AddError("Currency code already exists")
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	currency, err := h.CurrencyRepo.Insert(&models.Currency{
		Name:          input.Name,
		Code:          input.Code,
		Symbol:        input.Symbol,
		RatePerDollar: input.RatePerDollar,
	})
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	message := "Currency created successfully"
	err = response.JSONCreatedResponse(w, currency, message)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *CurrencyHandler) HandleListCurrencies(w http.ResponseWriter, r *http.Request) {
	currencies, err := h.CurrencyRepo.GetAll()
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	message := "Currencies fetched successfully"
	err = response.JSONOkResponse(w, currencies, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *CurrencyHandler) HandleUpdateCurrency(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	var input struct {
		Name          string              `json:"name"`
		Code          string              `json:"code"`
		Symbol        string              `json:"symbol"`
		RatePerDollar float64             `json:"rate_per_dollar"`
		Validator     validator.Validator `json:"-"`
	}

	err = request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(validator.NotBlank(input.Name), "Name is required")
	input.Validator.Check(validator.NotBlank(input.Code), "Code is required")
	input.Validator.Check(validator.NotBlank(input.Symbol), "Symbol is required")
	input.Validator.Check(input.RatePerDollar > 0, "Rate per dollar must be greater than zero")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	updated, err := h.CurrencyRepo.Update(&models.Currency{
		ID:            id,
		Name:          input.Name,
		Code:          input.Code,
		Symbol:        input.Symbol,
		RatePerDollar: input.RatePerDollar,
	})
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if !updated {
		h.ErrHandler.NotFound(w, r)
		return
	}

	message := "Currency updated successfully"
	err = response.JSONOkResponse(w, nil, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

func (h *CurrencyHandler) HandleDeleteCurrency(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	deleted, err := h.CurrencyRepo.Delete(id)
	if err != nil {
		if errors.Is(err, repository.ErrCurrencyInUse) {
			response.JSONErrorResponse(w, nil, "Currency is in use and cannot be deleted", http.StatusUnprocessableEntity, nil)
			return
		}
		h.ErrHandler.ServerError(w, r, err)
		return
	}
	if !deleted {
		h.ErrHandler.NotFound(w, r)
		return
	}

	message := "Currency deleted successfully"
	err = response.JSONOkResponse(w, nil, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}

// HandleConvert is the one public endpoint: quote a conversion between two
// stored currencies. Feed trouble never fails the request; the converter
// falls back to stored rates on its own.
func (h *CurrencyHandler) HandleConvert(w http.ResponseWriter, r *http.Request) {
	var input struct {
		SenderAmount       float64             `json:"sender_amount"`
		SenderCurrencyID   int64               `json:"sender_currency_id"`
		ReceiverCurrencyID int64               `json:"receiver_currency_id"`
		Validator          validator.Validator `json:"-"`
	}

	err := request.DecodeJSON(w, r, &input)
	if err != nil {
		h.ErrHandler.BadRequest(w, r, err)
		return
	}

	input.Validator.Check(input.SenderAmount > 0, "Sender amount must be greater than zero")
	input.Validator.Check(input.SenderCurrencyID > 0, "Sender currency is required")
	input.Validator.Check(input.ReceiverCurrencyID > 0, "Receiver currency is required")

	if input.Validator.HasErrors() {
		h.ErrHandler.FailedValidation(w, r, input.Validator.Errors)
		return
	}

	conversion, err := h.Converter.Convert(r.Context(), input.SenderAmount, input.SenderCurrencyID, input.ReceiverCurrencyID)
	if err != nil {
		if errors.Is(err, rates.ErrCurrencyNotFound) {
			response.JSONErrorResponse(w, nil, ErrCurrencyNotFound.Error(), http.StatusUnprocessableEntity, nil)
			return
		}
		h.ErrHandler.ServerError(w, r, err)
		return
	}

	message := "Conversion completed successfully"
	err = response.JSONOkResponse(w, conversion, message, nil)
	if err != nil {
		h.ErrHandler.ServerError(w, r, err)
	}
}
