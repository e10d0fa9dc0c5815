package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/vo-tracker-api/internal/models"
)

const variationOrderColumns = "id, subject, submission_type, submission_reference, response_reference, vor_reference, dvo_reference, submission_date, dvo_issued_date, assessment_value, proposal_value, approved_amount, status, remarks, action_notes, proposed_file_url, assessed_file_url, approved_file_url, exclude_from_stats, created_at, updated_at"

var variationOrderSorts = map[models.VOSortField]string{
	models.VOSortSubmissionDate: "submission_date",
	models.VOSortCreatedAt:      "created_at",
	models.VOSortProposalValue:  "proposal_value",
	models.VOSortApprovedAmount: "approved_amount",
}

// File URL columns are only written through SetFileURL.
var variationOrderPatchable = map[string]bool{
	"subject":              true,
	"submission_type":      true,
	"submission_reference": true,
	"response_reference":   true,
	"vor_reference":        true,
	"dvo_reference":        true,
	"submission_date":      true,
	"dvo_issued_date":      true,
	"assessment_value":     true,
	"proposal_value":       true,
	"approved_amount":      true,
	"status":               true,
	"remarks":              true,
	"action_notes":         true,
	"exclude_from_stats":   true,
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// VariationOrderRepository manages persistence for variation orders.
type VariationOrderRepository struct {
	db *sqlx.DB
}

// NewVariationOrderRepository constructs a VariationOrderRepository.
func NewVariationOrderRepository(db *sqlx.DB) *VariationOrderRepository {
	return &VariationOrderRepository{db: db}
}

// List returns one page of variation orders matching filter along with the total match count.
func (r *VariationOrderRepository) List(ctx context.Context, filter models.VariationOrderFilter) ([]models.VariationOrder, int, error) {
	base, args := variationOrderWhere(filter)

	orders := make([]models.VariationOrder, 0)
	if size, offset, ok := pageWindow(filter.Page, filter.Limit); ok {
		query := fmt.Sprintf("SELECT %s %s %s LIMIT %d OFFSET %d", variationOrderColumns, base, variationOrderOrder(filter), size, offset)
		if err := r.db.SelectContext(ctx, &orders, query, args...); err != nil {
			return nil, 0, fmt.Errorf("list variation orders: %w", err)
		}
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count variation orders: %w", err)
	}

	return orders, total, nil
}

// ListAll returns every match in list order, capped at max rows.
func (r *VariationOrderRepository) ListAll(ctx context.Context, filter models.VariationOrderFilter, max int) ([]models.VariationOrder, error) {
	base, args := variationOrderWhere(filter)
	query := fmt.Sprintf("SELECT %s %s %s", variationOrderColumns, base, variationOrderOrder(filter))
	if max > 0 {
		query += fmt.Sprintf(" LIMIT %d", max)
	}
	orders := make([]models.VariationOrder, 0)
	if err := r.db.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, fmt.Errorf("export variation orders: %w", err)
	}
	return orders, nil
}

// FindByID fetches a variation order by ID.
func (r *VariationOrderRepository) FindByID(ctx context.Context, id int64) (*models.VariationOrder, error) {
	query := fmt.Sprintf("SELECT %s FROM variation_orders WHERE id = $1", variationOrderColumns)
	var vo models.VariationOrder
	if err := r.db.GetContext(ctx, &vo, query, id); err != nil {
		return nil, err
	}
	return &vo, nil
}

// Create inserts a variation order and populates its generated ID.
func (r *VariationOrderRepository) Create(ctx context.Context, vo *models.VariationOrder) error {
	now := time.Now().UTC()
	vo.CreatedAt = now
	vo.UpdatedAt = now

	const query = `INSERT INTO variation_orders (subject, submission_type, submission_reference, response_reference, vor_reference, dvo_reference, submission_date, dvo_issued_date, assessment_value, proposal_value, approved_amount, status, remarks, action_notes, proposed_file_url, assessed_file_url, approved_file_url, exclude_from_stats, created_at, updated_at)
		VALUES (:subject, :submission_type, :submission_reference, :response_reference, :vor_reference, :dvo_reference, :submission_date, :dvo_issued_date, :assessment_value, :proposal_value, :approved_amount, :status, :remarks, :action_notes, :proposed_file_url, :assessed_file_url, :approved_file_url, :exclude_from_stats, :created_at, :updated_at)
		RETURNING id`
	rows, err := r.db.NamedQueryContext(ctx, query, vo)
	if err != nil {
		return fmt.Errorf("create variation order: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return fmt.Errorf("create variation order: %w", err)
		}
		return fmt.Errorf("create variation order: no id returned")
	}
	if err := rows.Scan(&vo.ID); err != nil {
		return fmt.Errorf("scan variation order id: %w", err)
	}
	return rows.Err()
}

// Patch assigns only the given columns in a single statement and returns the
// stored row. updated_at always moves forward. sql.ErrNoRows means the id
// does not exist.
func (r *VariationOrderRepository) Patch(ctx context.Context, id int64, changes []models.FieldChange) (*models.VariationOrder, error) {
	sets := make([]string, 0, len(changes)+1)
	args := make([]interface{}, 0, len(changes)+2)
	for _, change := range changes {
		if !variationOrderPatchable[change.Column] {
			return nil, fmt.Errorf("patch variation order: column %q is not patchable", change.Column)
		}
		args = append(args, change.Value)
		sets = append(sets, fmt.Sprintf("%s = $%d", change.Column, len(args)))
	}
	args = append(args, time.Now().UTC())
	sets = append(sets, fmt.Sprintf("updated_at = GREATEST($%d, updated_at + INTERVAL '1 microsecond')", len(args)))
	args = append(args, id)

	query := fmt.Sprintf("UPDATE variation_orders SET %s WHERE id = $%d RETURNING %s", strings.Join(sets, ", "), len(args), variationOrderColumns)
	var vo models.VariationOrder
	if err := r.db.GetContext(ctx, &vo, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("patch variation order: %w", err)
	}
	return &vo, nil
}

// SetFileURL points the stage's file column at url.
func (r *VariationOrderRepository) SetFileURL(ctx context.Context, id int64, stage models.FileStage, url string) (time.Time, error) {
	column := stage.Column()
	if column == "" {
		return time.Time{}, fmt.Errorf("unknown file stage %q", stage)
	}
	now := time.Now().UTC()
	query := fmt.Sprintf("UPDATE variation_orders SET %s = $1, updated_at = $2 WHERE id = $3", column)
	res, err := r.db.ExecContext(ctx, query, url, now, id)
	if err != nil {
		return time.Time{}, fmt.Errorf("set variation order file: %w", err)
	}
	if err := expectAffected(res); err != nil {
		return time.Time{}, err
	}
	return now, nil
}

// Delete permanently removes a variation order.
func (r *VariationOrderRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM variation_orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete variation order: %w", err)
	}
	return expectAffected(res)
}

// AggregateByStatus sums non-excluded variation orders per status. Null
// amounts contribute zero.
func (r *VariationOrderRepository) AggregateByStatus(ctx context.Context) ([]models.StatusAggregate, error) {
	const query = `SELECT status, COUNT(*) AS count, COALESCE(SUM(proposal_value), 0) AS proposal_sum, COALESCE(SUM(approved_amount), 0) AS approved_sum FROM variation_orders WHERE exclude_from_stats = FALSE GROUP BY status`
	var rows []models.StatusAggregate
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("aggregate variation orders: %w", err)
	}
	return rows, nil
}

func variationOrderWhere(filter models.VariationOrderFilter) (string, []interface{}) {
	base := "FROM variation_orders WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		search := "%" + likeEscaper.Replace(strings.ToLower(filter.Search)) + "%"
		n := len(args) + 1
		conditions = append(conditions, fmt.Sprintf("(LOWER(subject) LIKE $%d OR LOWER(COALESCE(submission_reference, '')) LIKE $%d OR LOWER(COALESCE(response_reference, '')) LIKE $%d OR LOWER(COALESCE(vor_reference, '')) LIKE $%d OR LOWER(COALESCE(dvo_reference, '')) LIKE $%d)", n, n, n, n, n))
		args = append(args, search)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, string(*filter.Status))
	}
	if filter.SubmissionType != nil {
		conditions = append(conditions, fmt.Sprintf("submission_type = $%d", len(args)+1))
		args = append(args, string(*filter.SubmissionType))
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}
	return base, args
}

func variationOrderOrder(filter models.VariationOrderFilter) string {
	column, ok := variationOrderSorts[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	order := strings.ToUpper(string(filter.SortOrder))
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	return fmt.Sprintf("ORDER BY %s %s NULLS LAST, id %s", column, order, order)
}

// pageWindow turns page/limit into LIMIT and OFFSET. ok is false when the
// offset is not representable, which can only be past the last page.
func pageWindow(page, limit int) (size, offset int, ok bool) {
	if page < 1 {
		page = 1
	}
	size = limit
	if size <= 0 || size > 100 {
		size = 20
	}
	if page-1 > math.MaxInt/size {
		return size, 0, false
	}
	return size, (page - 1) * size, true
}

func expectAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
