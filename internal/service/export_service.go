package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bawantha395/tcms-app-sub004/internal/models"
	"github.com/bawantha395/tcms-app-sub004/pkg/dateonly"
	"github.com/bawantha395/tcms-app-sub004/pkg/export"
	"github.com/bawantha395/tcms-app-sub004/pkg/storage"
)

type reportProvider interface {
	SessionReport(ctx context.Context, sessionID string) (*models.ReconciliationReport, error)
	DailyReport(ctx context.Context, date dateonly.Date) (*models.ReconciliationReport, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	ExpiresAt    time.Time
}

// ExportService renders reconciliation reports into downloadable files. The
// dataset mirrors the report verbatim: summary rows carry the balance fields
// and the table carries one row per class aggregate.
type ExportService struct {
	reports reportProvider
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(reports reportProvider, files fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		reports: reports,
		storage: files,
		csv:     csv,
		pdf:     pdf,
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
	}
}

// Generate builds the report selected by the job params and stores the
// rendered export.
func (s *ExportService) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}

	report, err := s.loadReport(ctx, job.Params)
	if err != nil {
		return nil, err
	}

	dataset, title := BuildReportDataset(report)

	var payload []byte
	switch job.Params.Format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := s.buildFilename(job)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	signedURL := fmt.Sprintf("%s/exports/download/%s", prefix, token)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          signedURL,
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) loadReport(ctx context.Context, params models.ExportJobParams) (*models.ReconciliationReport, error) {
	if params.SessionID != "" {
		return s.reports.SessionReport(ctx, params.SessionID)
	}
	date, err := dateonly.Parse(params.Date)
	if err != nil {
		return nil, fmt.Errorf("parse report date: %w", err)
	}
	return s.reports.DailyReport(ctx, date)
}

func (s *ExportService) buildFilename(job *models.ExportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	scope := sanitizeFilename(job.Params.SessionID)
	if job.Params.SessionID == "" {
		scope = sanitizeFilename(job.Params.Date)
	}
	return fmt.Sprintf("reconciliation_%s_%s.%s", scope, timestamp, job.Params.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

// BuildReportDataset flattens a reconciliation report into tabular form. The
// numbers are formatted from the report fields verbatim.
func BuildReportDataset(report *models.ReconciliationReport) (export.Dataset, string) {
	summary := [][2]string{
		{"Report Date", report.ReportDate.String()},
	}
	if report.SessionID != "" {
		summary = append(summary, [2]string{"Session ID", report.SessionID})
	}
	summary = append(summary,
		[2]string{"Opening Balance", report.OpeningBalance.StringFixed(2)},
		[2]string{"Total Collections", report.TotalCollections.StringFixed(2)},
		[2]string{"Expected Closing Balance", report.ExpectedClosingBalance.StringFixed(2)},
		[2]string{"Cash Drawer Balance", report.CashDrawerBalance.StringFixed(2)},
		[2]string{"Variance", report.Variance.StringFixed(2)},
		[2]string{"Receipts", fmt.Sprintf("%d", report.ReceiptCount)},
		[2]string{"Unique Receipts", fmt.Sprintf("%d", report.UniqueTransactionCount)},
		[2]string{"Enrollments Requiring Payment", fmt.Sprintf("%d", report.PaymentRequiredCount)},
	)

	headers := []string{"Class ID", "Class Name", "Teacher", "Receipts", "Full Cards", "Half Cards", "Free Cards", "Admission Fees", "Total Amount"}
	rows := make([]map[string]string, 0, len(report.PerClass))
	for _, class := range report.PerClass {
		rows = append(rows, map[string]string{
			"Class ID":       class.ClassID,
			"Class Name":     class.ClassName,
			"Teacher":        class.Teacher,
			"Receipts":       fmt.Sprintf("%d", class.TransactionCount),
			"Full Cards":     fmt.Sprintf("%d", class.FullCount),
			"Half Cards":     fmt.Sprintf("%d", class.HalfCount),
			"Free Cards":     fmt.Sprintf("%d", class.FreeCount),
			"Admission Fees": class.AdmissionFeeAmount.StringFixed(2),
			"Total Amount":   class.TotalAmount.StringFixed(2),
		})
	}

	title := fmt.Sprintf("Cash Reconciliation %s", report.ReportDate)
	return export.Dataset{Summary: summary, Headers: headers, Rows: rows}, title
}
