package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/bawantha395/tcms-app-sub004/internal/models"
)

// EnrollmentRepository handles persistence of enrollments and their payment
// histories. Histories are loaded most-recent-last, which is the order the
// tracking resolver expects.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

const enrollmentColumns = `id, student_id, class_id, class_name, status, payment_status, total_fee, paid_amount, next_payment_date, tracking_enabled, tracking_free_days`

// FindByID returns one enrollment with its payment history attached.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	query := fmt.Sprintf(`SELECT %s FROM enrollments WHERE id = $1`, enrollmentColumns)
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	if err := r.attachHistories(ctx, []*models.Enrollment{&enrollment}); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// ListByClass returns every enrollment of a class, histories attached.
func (r *EnrollmentRepository) ListByClass(ctx context.Context, classID string) ([]models.Enrollment, error) {
	query := fmt.Sprintf(`SELECT %s FROM enrollments WHERE class_id = $1 ORDER BY id ASC`, enrollmentColumns)
	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, classID); err != nil {
		return nil, fmt.Errorf("list class enrollments: %w", err)
	}
	if err := r.attachHistoriesSlice(ctx, enrollments); err != nil {
		return nil, err
	}
	return enrollments, nil
}

// ListActive returns active enrollments across all classes, histories
// attached. Used by payment-required counts on reports and dashboards.
func (r *EnrollmentRepository) ListActive(ctx context.Context) ([]models.Enrollment, error) {
	query := fmt.Sprintf(`SELECT %s FROM enrollments WHERE status = $1 ORDER BY id ASC`, enrollmentColumns)
	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, models.EnrollmentStatusActive); err != nil {
		return nil, fmt.Errorf("list active enrollments: %w", err)
	}
	if err := r.attachHistoriesSlice(ctx, enrollments); err != nil {
		return nil, err
	}
	return enrollments, nil
}

// RecordPaymentEvent appends one payment event to an enrollment's history.
func (r *EnrollmentRepository) RecordPaymentEvent(ctx context.Context, event *models.PaymentEvent) error {
	const query = `INSERT INTO enrollment_payments (id, enrollment_id, paid_on, amount, next_payment_date, free_days, tracking_enabled)
VALUES (:id, :enrollment_id, :paid_on, :amount, :next_payment_date, :free_days, :tracking_enabled)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("record payment event: %w", err)
	}
	return nil
}

func (r *EnrollmentRepository) attachHistoriesSlice(ctx context.Context, enrollments []models.Enrollment) error {
	refs := make([]*models.Enrollment, len(enrollments))
	for i := range enrollments {
		refs[i] = &enrollments[i]
	}
	return r.attachHistories(ctx, refs)
}

func (r *EnrollmentRepository) attachHistories(ctx context.Context, enrollments []*models.Enrollment) error {
	if len(enrollments) == 0 {
		return nil
	}
	ids := make([]string, 0, len(enrollments))
	byID := make(map[string]*models.Enrollment, len(enrollments))
	for _, enrollment := range enrollments {
		ids = append(ids, enrollment.ID)
		byID[enrollment.ID] = enrollment
	}

	const query = `SELECT id, enrollment_id, paid_on, amount, next_payment_date, free_days, tracking_enabled
FROM enrollment_payments WHERE enrollment_id = ANY($1) ORDER BY paid_on ASC, id ASC`
	var events []models.PaymentEvent
	if err := r.db.SelectContext(ctx, &events, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("load payment histories: %w", err)
	}
	for _, event := range events {
		if enrollment, ok := byID[event.EnrollmentID]; ok {
			enrollment.PaymentHistory = append(enrollment.PaymentHistory, event)
		}
	}
	return nil
}
