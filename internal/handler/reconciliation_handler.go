package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bawantha395/tcms-app-sub004/internal/models"
	"github.com/bawantha395/tcms-app-sub004/internal/service"
	"github.com/bawantha395/tcms-app-sub004/pkg/dateonly"
	appErrors "github.com/bawantha395/tcms-app-sub004/pkg/errors"
	"github.com/bawantha395/tcms-app-sub004/pkg/export"
	"github.com/bawantha395/tcms-app-sub004/pkg/response"
)

// ReconciliationHandler exposes session and day-end reconciliation reports.
type ReconciliationHandler struct {
	reports *service.ReconciliationService
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
}

// NewReconciliationHandler constructs the handler.
func NewReconciliationHandler(reports *service.ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{
		reports: reports,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
	}
}

// SessionReport godoc
// @Summary Session reconciliation report
// @Tags Reconciliation
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reconciliation/sessions/{id}/report [get]
func (h *ReconciliationHandler) SessionReport(c *gin.Context) {
	report, err := h.reports.SessionReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// DailyReport godoc
// @Summary Day-end reconciliation report
// @Tags Reconciliation
// @Produce json
// @Param date query string true "Report date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /reconciliation/daily [get]
func (h *ReconciliationHandler) DailyReport(c *gin.Context) {
	date, err := dateonly.Parse(c.Query("date"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD"))
		return
	}
	report, err := h.reports.DailyReport(c.Request.Context(), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// ExportSessionReport godoc
// @Summary Download a session report inline
// @Description Renders the report synchronously in the requested format
// @Tags Reconciliation
// @Produce octet-stream
// @Param id path string true "Session ID"
// @Param format query string true "csv or pdf"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /reconciliation/sessions/{id}/report/export [get]
func (h *ReconciliationHandler) ExportSessionReport(c *gin.Context) {
	format := models.ExportFormat(c.DefaultQuery("format", string(models.ExportFormatCSV)))

	report, err := h.reports.SessionReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	dataset, title := service.BuildReportDataset(report)

	var payload []byte
	var contentType string
	switch format {
	case models.ExportFormatCSV:
		payload, err = h.csv.Render(dataset)
		contentType = "text/csv"
	case models.ExportFormatPDF:
		payload, err = h.pdf.Render(dataset, title)
		contentType = "application/pdf"
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("reconciliation_%s.%s", report.ReportDate, format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}
