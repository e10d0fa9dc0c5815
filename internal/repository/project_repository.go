package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/vo-tracker-api/internal/models"
)

const projectColumns = "id, project_code, project_name, original_contract_value, revised_contract_value, advance_payment_percentage, advance_payment_balance, retention_percentage, retention_balance, work_done_percentage, planned_work_done_percentage, amount_received, created_at, updated_at"

// ProjectRepository persists project detail snapshots.
type ProjectRepository struct {
	db *sqlx.DB
}

// NewProjectRepository constructs a ProjectRepository.
func NewProjectRepository(db *sqlx.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Latest returns the most recently created snapshot.
func (r *ProjectRepository) Latest(ctx context.Context) (*models.ProjectDetails, error) {
	query := fmt.Sprintf("SELECT %s FROM project_details ORDER BY created_at DESC, id DESC LIMIT 1", projectColumns)
	var details models.ProjectDetails
	if err := r.db.GetContext(ctx, &details, query); err != nil {
		return nil, err
	}
	return &details, nil
}

// Upsert inserts the snapshot or overwrites the row sharing its project code.
// It reports whether a new row was created.
func (r *ProjectRepository) Upsert(ctx context.Context, details *models.ProjectDetails) (bool, error) {
	now := time.Now().UTC()
	details.CreatedAt = now
	details.UpdatedAt = now

	const query = `INSERT INTO project_details (project_code, project_name, original_contract_value, revised_contract_value, advance_payment_percentage, advance_payment_balance, retention_percentage, retention_balance, work_done_percentage, planned_work_done_percentage, amount_received, created_at, updated_at)
		VALUES (:project_code, :project_name, :original_contract_value, :revised_contract_value, :advance_payment_percentage, :advance_payment_balance, :retention_percentage, :retention_balance, :work_done_percentage, :planned_work_done_percentage, :amount_received, :created_at, :updated_at)
		ON CONFLICT (project_code) DO UPDATE SET project_name = EXCLUDED.project_name, original_contract_value = EXCLUDED.original_contract_value, revised_contract_value = EXCLUDED.revised_contract_value, advance_payment_percentage = EXCLUDED.advance_payment_percentage, advance_payment_balance = EXCLUDED.advance_payment_balance, retention_percentage = EXCLUDED.retention_percentage, retention_balance = EXCLUDED.retention_balance, work_done_percentage = EXCLUDED.work_done_percentage, planned_work_done_percentage = EXCLUDED.planned_work_done_percentage, amount_received = EXCLUDED.amount_received, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at, (xmax = 0) AS inserted`
	rows, err := r.db.NamedQueryContext(ctx, query, details)
	if err != nil {
		return false, fmt.Errorf("upsert project details: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return false, fmt.Errorf("upsert project details: %w", err)
		}
		return false, fmt.Errorf("upsert project details: no row returned")
	}
	var inserted bool
	if err := rows.Scan(&details.ID, &details.CreatedAt, &details.UpdatedAt, &inserted); err != nil {
		return false, fmt.Errorf("scan project details: %w", err)
	}
	return inserted, rows.Err()
}
