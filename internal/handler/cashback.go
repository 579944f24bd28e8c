// internal/handler/cashback.go
package handler

import (
	"cashback/internal/domain"
	"cashback/internal/period"
	"cashback/internal/service"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	val "cashback/internal/validator"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type CashbackHandler struct {
	svc *service.Service
}

func NewCashbackHandler(svc *service.Service) *CashbackHandler {
	return &CashbackHandler{svc: svc}
}

// AddBank godoc
// @Summary Add a bank
// @Tags cashback
// @Accept json
// @Produce json
// @Param request body AddBankRequest true "Bank"
// @Success 200 {object} domain.Bank
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/banks [post]
func (h *CashbackHandler) AddBank(c *gin.Context) {
	var req AddBankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bank, err := h.svc.AddBank(c.Request.Context(), req.Name, req.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bank)
}

// AddCard godoc
// @Summary Add a card to a bank
// @Tags cashback
// @Accept json
// @Produce json
// @Param request body AddCardRequest true "Card"
// @Success 200 {object} domain.Card
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/cards [post]
func (h *CashbackHandler) AddCard(c *gin.Context) {
	var req AddCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	card, err := h.svc.AddCard(c.Request.Context(), req.Name, req.Bank)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

// AddCashback godoc
// @Summary Add a cashback category for a card
// @Tags cashback
// @Accept json
// @Produce json
// @Param request body AddCashbackRequest true "Category"
// @Success 200 {object} CategoryResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/cashback [post]
func (h *CashbackHandler) AddCashback(c *gin.Context) {
	var req AddCashbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cat, err := h.svc.AddCashback(c.Request.Context(), req.Card, req.Category, req.Percent, req.Permanent, req.Period)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, CategoryResponse{
		Card:      req.Card,
		Category:  cat.Name,
		Percent:   cat.Percent,
		Permanent: cat.Permanent,
		Period:    h.svc.PeriodLabel(cat.Period),
	})
}

// RemoveCashback godoc
// @Summary Remove a cashback category
// @Param card query string true "Card name"
// @Param period query string true "current or future"
// @Param category query string true "Category name"
// @Success 200 {object} map[string]string{"status":"ok"}
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/cashback [delete]
func (h *CashbackHandler) RemoveCashback(c *gin.Context) {
	card := c.Query("card")
	periodToken := c.Query("period")
	category := c.Query("category")
	if card == "" || periodToken == "" || category == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "card, period, and category query params required"})
		return
	}

	if err := h.svc.RemoveCashback(c.Request.Context(), card, periodToken, category); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// AddTransaction godoc
// @Summary Record a purchase against a card
// @Tags cashback
// @Accept json
// @Produce json
// @Param request body AddTransactionRequest true "Transaction"
// @Success 200 {object} map[string]string{"status":"ok"}
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/transactions [post]
func (h *CashbackHandler) AddTransaction(c *gin.Context) {
	var req AddTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.Transaction(c.Request.Context(), req.Card, req.Category, req.Value); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// EstimateCashback godoc
// @Summary Remaining cashback budget per card
// @Success 200 {array} domain.CardEstimate
// @Router /api/v1/estimate [get]
func (h *CashbackHandler) EstimateCashback(c *gin.Context) {
	estimates, err := h.svc.EstimateCashback(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if estimates == nil {
		estimates = []domain.CardEstimate{}
	}
	c.JSON(http.StatusOK, estimates)
}

// Choose godoc
// @Summary Best card for a purchase
// @Param category query string true "Category name"
// @Param value query number false "Purchase value"
// @Success 200 {object} ChooseResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/choose [get]
func (h *CashbackHandler) Choose(c *gin.Context) {
	category := c.Query("category")
	if category == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category query param required"})
		return
	}
	value := 0.0
	if v := c.Query("value"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "value must be a number"})
			return
		}
		value = parsed
	}

	card, percent, err := h.svc.Choose(c.Request.Context(), category, value)
	if err != nil {
		respondError(c, err)
		return
	}
	if card == nil {
		c.JSON(http.StatusOK, ChooseResponse{})
		return
	}
	c.JSON(http.StatusOK, ChooseResponse{Card: card.Name, Percent: percent})
}

// ListCards godoc
// @Summary Cards still worth paying with
// @Success 200 {array} domain.Card
// @Router /api/v1/cards [get]
func (h *CashbackHandler) ListCards(c *gin.Context) {
	cards, err := h.svc.ListCards(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if cards == nil {
		cards = []domain.Card{}
	}
	c.JSON(http.StatusOK, cards)
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, period.ErrInvalidPeriod):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		slog.Error("request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

// === DTO ===

type AddBankRequest struct {
	Name  string   `json:"name" validate:"required,notblank"`
	Limit *float64 `json:"limit" validate:"omitempty,gte=0"`
}

type AddCardRequest struct {
	Name string `json:"name" validate:"required,notblank"`
	Bank string `json:"bank" validate:"required,notblank"`
}

type AddCashbackRequest struct {
	Card      string  `json:"card" validate:"required,notblank"`
	Category  string  `json:"category" validate:"required,notblank"`
	Percent   float64 `json:"percent" validate:"gte=0,lte=100"`
	Permanent bool    `json:"permanent"`
	Period    string  `json:"period" validate:"required,period"`
}

type AddTransactionRequest struct {
	Card     string  `json:"card" validate:"required,notblank"`
	Category string  `json:"category" validate:"required,notblank"`
	Value    float64 `json:"value" validate:"gte=0"`
}

type CategoryResponse struct {
	Card      string  `json:"card"`
	Category  string  `json:"category"`
	Percent   float64 `json:"percent"`
	Permanent bool    `json:"permanent"`
	Period    string  `json:"period"`
}

type ChooseResponse struct {
	Card    string  `json:"card,omitempty"`
	Percent float64 `json:"percent,omitempty"`
}

func validateStruct(v any) error {
	if err := val.Validate.Struct(v); err != nil {
		var errs []string
		for _, e := range err.(validator.ValidationErrors) {
			errs = append(errs, fieldErrorToString(e))
		}
		return fmt.Errorf("invalid input: %s", strings.Join(errs, "; "))
	}
	return nil
}

func fieldErrorToString(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "period":
		return fmt.Sprintf("%s must be current or future", e.Field())
	case "notblank":
		return fmt.Sprintf("%s must not be blank", e.Field())
	case "gte", "lte":
		return fmt.Sprintf("%s is out of range", e.Field())
	default:
		return fmt.Sprintf("%s is invalid", e.Field())
	}
}
