package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/bawantha395/tcms-app-sub004/internal/dto"
	"github.com/bawantha395/tcms-app-sub004/internal/models"
	appErrors "github.com/bawantha395/tcms-app-sub004/pkg/errors"
)

type fakeStatusResolver struct {
	view    *models.EnrollmentStatusView
	bulk    *dto.BulkPaymentStatusResponse
	err     error
	lastID  string
	lastAt  time.Time
	classID string
}

func (f *fakeStatusResolver) Status(_ context.Context, enrollmentID string, at time.Time) (*models.EnrollmentStatusView, error) {
	f.lastID = enrollmentID
	f.lastAt = at
	return f.view, f.err
}

func (f *fakeStatusResolver) StatusByClass(_ context.Context, classID string, at time.Time) (*dto.BulkPaymentStatusResponse, error) {
	f.classID = classID
	f.lastAt = at
	return f.bulk, f.err
}

func TestPaymentStatusHandlerStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	resolver := &fakeStatusResolver{
		view: &models.EnrollmentStatusView{
			EnrollmentID: "enr-1",
			Status:       models.ViewStatusFreeCard,
			Tracking:     models.PaymentTrackingInfo{CanAccess: true, Status: models.TrackingStatusFreeCard},
		},
	}
	handler := NewPaymentStatusHandler(resolver)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/enrollments/enr-1/payment-status?at=2024-03-05", nil)
	c.Params = gin.Params{{Key: "id", Value: "enr-1"}}

	handler.Status(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "enr-1", resolver.lastID)
	assert.Equal(t, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), resolver.lastAt)

	var envelope responseEnvelope
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "free-card", envelope.Data["status"])
}

func TestPaymentStatusHandlerStatusBadDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewPaymentStatusHandler(&fakeStatusResolver{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/enrollments/enr-1/payment-status?at=05-03-2024", nil)
	c.Params = gin.Params{{Key: "id", Value: "enr-1"}}

	handler.Status(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPaymentStatusHandlerStatusNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewPaymentStatusHandler(&fakeStatusResolver{err: appErrors.ErrNotFound})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/enrollments/missing/payment-status", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Status(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPaymentStatusHandlerStatusByClass(t *testing.T) {
	gin.SetMode(gin.TestMode)
	resolver := &fakeStatusResolver{
		bulk: &dto.BulkPaymentStatusResponse{ClassID: "class-1", PaymentRequiredCount: 2},
	}
	handler := NewPaymentStatusHandler(resolver)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/enrollments/payment-status?classId=class-1", nil)

	handler.StatusByClass(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "class-1", resolver.classID)
	// Empty "at" means evaluate now; the zero instant signals that downstream.
	assert.True(t, resolver.lastAt.IsZero())
}

func TestPaymentStatusHandlerStatusByClassRequiresClassID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewPaymentStatusHandler(&fakeStatusResolver{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/enrollments/payment-status", nil)

	handler.StatusByClass(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type responseEnvelope struct {
	Data map[string]interface{} `json:"data"`
	Meta map[string]interface{} `json:"meta"`
}
