package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/bawantha395/tcms-app-sub004/internal/models"
)

func exportJobRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "params", "status", "progress", "result_url", "created_by", "created_at", "finished_at", "error_message",
	})
}

func TestExportJobRepositoryCreateDefaults(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewExportJobRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO export_jobs")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	job := &models.ExportJob{Params: models.ExportJobParams{SessionID: "sess-1", Format: models.ExportFormatCSV}, CreatedBy: "user-1"}
	require.NoError(t, repo.Create(context.Background(), job))
	require.NotEmpty(t, job.ID)
	require.Equal(t, models.ExportStatusQueued, job.Status)
	require.False(t, job.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExportJobRepositoryUpdatePartial(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewExportJobRepository(db)

	status := models.ExportStatusProcessing
	progress := 10
	mock.ExpectExec(regexp.QuoteMeta("UPDATE export_jobs SET status = $1, progress = $2 WHERE id = $3")).
		WithArgs(status, progress, "job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), "job-1", UpdateExportJobParams{Status: &status, Progress: &progress})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExportJobRepositoryUpdateNoFields(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewExportJobRepository(db)

	// No SET clause means no query at all.
	require.NoError(t, repo.Update(context.Background(), "job-1", UpdateExportJobParams{}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExportJobRepositoryListQueued(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewExportJobRepository(db)

	createdAt := time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM export_jobs WHERE status = 'QUEUED' ORDER BY created_at ASC LIMIT $1")).
		WithArgs(50).
		WillReturnRows(exportJobRows().
			AddRow("job-1", []byte(`{"sessionId":"sess-1","format":"csv"}`), models.ExportStatusQueued, 0, nil, "user-1", createdAt, nil, nil))

	jobs, err := repo.ListQueued(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.Equal(t, "sess-1", jobs[0].Params.SessionID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExportJobRepositoryListFinishedBefore(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewExportJobRepository(db)

	cutoff := time.Date(2024, time.March, 14, 0, 0, 0, 0, time.UTC)
	finishedAt := cutoff.Add(-2 * time.Hour)
	mock.ExpectQuery(regexp.QuoteMeta("FROM export_jobs WHERE status = 'FINISHED' AND finished_at IS NOT NULL AND finished_at < $1 ORDER BY finished_at ASC LIMIT $2")).
		WithArgs(cutoff, 100).
		WillReturnRows(exportJobRows().
			AddRow("job-9", []byte(`{"date":"2024-03-10","format":"pdf"}`), models.ExportStatusFinished, 100, "/api/v1/exports/download/tok", "user-1", finishedAt.Add(-time.Hour), finishedAt, nil))

	jobs, err := repo.ListFinishedBefore(context.Background(), cutoff, 100)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.NotNil(t, jobs[0].FinishedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}
