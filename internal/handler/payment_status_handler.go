package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bawantha395/tcms-app-sub004/internal/dto"
	"github.com/bawantha395/tcms-app-sub004/internal/models"
	"github.com/bawantha395/tcms-app-sub004/pkg/dateonly"
	appErrors "github.com/bawantha395/tcms-app-sub004/pkg/errors"
	"github.com/bawantha395/tcms-app-sub004/pkg/response"
)

type statusResolver interface {
	Status(ctx context.Context, enrollmentID string, at time.Time) (*models.EnrollmentStatusView, error)
	StatusByClass(ctx context.Context, classID string, at time.Time) (*dto.BulkPaymentStatusResponse, error)
}

// PaymentStatusHandler exposes enrollment payment-status endpoints.
type PaymentStatusHandler struct {
	statuses statusResolver
}

// NewPaymentStatusHandler constructs the handler.
func NewPaymentStatusHandler(statuses statusResolver) *PaymentStatusHandler {
	return &PaymentStatusHandler{statuses: statuses}
}

// Status godoc
// @Summary Enrollment payment status
// @Description Resolves tracking state and card view for one enrollment
// @Tags PaymentStatus
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param at query string false "Evaluation date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /enrollments/{id}/payment-status [get]
func (h *PaymentStatusHandler) Status(c *gin.Context) {
	var query dto.PaymentStatusQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}

	at, err := evaluationInstant(query.At)
	if err != nil {
		response.Error(c, err)
		return
	}

	view, err := h.statuses.Status(c.Request.Context(), c.Param("id"), at)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// StatusByClass godoc
// @Summary Bulk payment status for a class roster
// @Tags PaymentStatus
// @Produce json
// @Param classId query string true "Class ID"
// @Param at query string false "Evaluation date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /enrollments/payment-status [get]
func (h *PaymentStatusHandler) StatusByClass(c *gin.Context) {
	var query dto.BulkPaymentStatusQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "classId required"))
		return
	}

	at, err := evaluationInstant(query.At)
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := h.statuses.StatusByClass(c.Request.Context(), query.ClassID, at)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// evaluationInstant maps an optional YYYY-MM-DD query value to the instant the
// resolver should evaluate at. Empty means now.
func evaluationInstant(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	date, err := dateonly.Parse(raw)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "at must be YYYY-MM-DD")
	}
	return time.Date(date.Year, date.Month, date.Day, 0, 0, 0, 0, time.UTC), nil
}
