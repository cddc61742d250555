package dto

import (
	"time"
)

// CreateExportRequest queues an asynchronous reconciliation report export.
// Exactly one of SessionID or Date selects the report variant.
type CreateExportRequest struct {
	SessionID string `json:"sessionId"`
	Date      string `json:"date"`
	Format    string `json:"format" binding:"required,oneof=csv pdf"`
}

// ExportJobResponse reports the lifecycle of an export job.
type ExportJobResponse struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	Format      string     `json:"format"`
	DownloadURL string     `json:"downloadUrl,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}
