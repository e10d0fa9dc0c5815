package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/vo-tracker-api/internal/models"
)

const paymentColumns = "id, payment_number, submission_date, gross_amount, advance_recovery, retention_amount, vat_amount, net_payment, status, certified_date, payment_date, remarks, created_at, updated_at"

// PaymentRepository manages payment_applications rows.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs a PaymentRepository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// List returns a page of payment applications, newest payment number first.
func (r *PaymentRepository) List(ctx context.Context, filter models.PaymentApplicationFilter) ([]models.PaymentApplication, int, error) {
	base := "FROM payment_applications WHERE 1=1"
	var args []interface{}
	if filter.Status != nil {
		base += fmt.Sprintf(" AND status = $%d", len(args)+1)
		args = append(args, string(*filter.Status))
	}

	items := make([]models.PaymentApplication, 0)
	if size, offset, ok := pageWindow(filter.Page, filter.Limit); ok {
		query := fmt.Sprintf("SELECT %s %s ORDER BY payment_number DESC, id DESC LIMIT %d OFFSET %d", paymentColumns, base, size, offset)
		if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
			return nil, 0, fmt.Errorf("list payment applications: %w", err)
		}
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count payment applications: %w", err)
	}
	return items, total, nil
}

// FindByID fetches a payment application by ID.
func (r *PaymentRepository) FindByID(ctx context.Context, id int64) (*models.PaymentApplication, error) {
	query := fmt.Sprintf("SELECT %s FROM payment_applications WHERE id = $1", paymentColumns)
	var item models.PaymentApplication
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		return nil, err
	}
	return &item, nil
}

// ExistsByNumber reports whether another application already uses number.
// excludeID is ignored when zero.
func (r *PaymentRepository) ExistsByNumber(ctx context.Context, number int, excludeID int64) (bool, error) {
	var exists bool
	const query = `SELECT EXISTS (SELECT 1 FROM payment_applications WHERE payment_number = $1 AND id <> $2)`
	if err := r.db.GetContext(ctx, &exists, query, number, excludeID); err != nil {
		return false, fmt.Errorf("check payment number: %w", err)
	}
	return exists, nil
}

// Create inserts a payment application and populates its ID.
func (r *PaymentRepository) Create(ctx context.Context, item *models.PaymentApplication) error {
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	const query = `INSERT INTO payment_applications (payment_number, submission_date, gross_amount, advance_recovery, retention_amount, vat_amount, net_payment, status, certified_date, payment_date, remarks, created_at, updated_at)
		VALUES (:payment_number, :submission_date, :gross_amount, :advance_recovery, :retention_amount, :vat_amount, :net_payment, :status, :certified_date, :payment_date, :remarks, :created_at, :updated_at)
		RETURNING id`
	rows, err := r.db.NamedQueryContext(ctx, query, item)
	if err != nil {
		return fmt.Errorf("create payment application: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return fmt.Errorf("create payment application: %w", err)
		}
		return fmt.Errorf("create payment application: no id returned")
	}
	if err := rows.Scan(&item.ID); err != nil {
		return fmt.Errorf("scan payment application id: %w", err)
	}
	return rows.Err()
}

// Update rewrites every mutable column.
func (r *PaymentRepository) Update(ctx context.Context, item *models.PaymentApplication) error {
	now := time.Now().UTC()
	if !now.After(item.UpdatedAt) {
		now = item.UpdatedAt.Add(time.Microsecond)
	}
	item.UpdatedAt = now

	const query = `UPDATE payment_applications SET payment_number = :payment_number, submission_date = :submission_date, gross_amount = :gross_amount, advance_recovery = :advance_recovery, retention_amount = :retention_amount, vat_amount = :vat_amount, net_payment = :net_payment, status = :status, certified_date = :certified_date, payment_date = :payment_date, remarks = :remarks, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, item)
	if err != nil {
		return fmt.Errorf("update payment application: %w", err)
	}
	return expectAffected(res)
}

// Delete removes a payment application.
func (r *PaymentRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM payment_applications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete payment application: %w", err)
	}
	return expectAffected(res)
}
