package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bawantha395/tcms-app-sub004/internal/dto"
	"github.com/bawantha395/tcms-app-sub004/internal/models"
	appErrors "github.com/bawantha395/tcms-app-sub004/pkg/errors"
	"github.com/bawantha395/tcms-app-sub004/pkg/response"
)

type transactionService interface {
	Record(ctx context.Context, req dto.CreateTransactionRequest) (*models.Transaction, error)
	List(ctx context.Context, query dto.TransactionListQuery) ([]models.Transaction, *models.Pagination, error)
}

// TransactionHandler exposes counter receipt endpoints.
type TransactionHandler struct {
	transactions transactionService
}

// NewTransactionHandler constructs the handler.
func NewTransactionHandler(transactions transactionService) *TransactionHandler {
	return &TransactionHandler{transactions: transactions}
}

// Create godoc
// @Summary Record a counter payment
// @Description Persists a receipt under an open drawer session and classifies its card type
// @Tags Transactions
// @Accept json
// @Produce json
// @Param payload body dto.CreateTransactionRequest true "Transaction payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid transaction payload"))
		return
	}

	tx, err := h.transactions.Record(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, tx)
}

// List godoc
// @Summary List recorded payments
// @Tags Transactions
// @Produce json
// @Param sessionId query string false "Session ID"
// @Param date query string false "Paid-on date (YYYY-MM-DD)"
// @Param classId query string false "Class ID"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	var query dto.TransactionListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}

	transactions, pagination, err := h.transactions.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, transactions, pagination)
}
