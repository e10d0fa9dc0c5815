package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/vo-tracker-api/internal/dto"
	"github.com/noah-isme/vo-tracker-api/internal/models"
	"github.com/noah-isme/vo-tracker-api/internal/validation"
	appErrors "github.com/noah-isme/vo-tracker-api/pkg/errors"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	// keeps (page-1)*limit inside a 32-bit int
	maxPage         = 10_000_000
)

type variationOrderRepository interface {
	List(ctx context.Context, filter models.VariationOrderFilter) ([]models.VariationOrder, int, error)
	ListAll(ctx context.Context, filter models.VariationOrderFilter, max int) ([]models.VariationOrder, error)
	FindByID(ctx context.Context, id int64) (*models.VariationOrder, error)
	Create(ctx context.Context, vo *models.VariationOrder) error
	Patch(ctx context.Context, id int64, changes []models.FieldChange) (*models.VariationOrder, error)
	SetFileURL(ctx context.Context, id int64, stage models.FileStage, url string) (time.Time, error)
	Delete(ctx context.Context, id int64) error
}

type statisticsInvalidator interface {
	Invalidate(ctx context.Context)
}

// VariationOrderService implements VO queries and mutations.
type VariationOrderService struct {
	repo      variationOrderRepository
	validator *validator.Validate
	stats     statisticsInvalidator
	activity  *ActivityService
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewVariationOrderService constructs a VariationOrderService.
func NewVariationOrderService(repo variationOrderRepository, validate *validator.Validate, stats statisticsInvalidator, activity *ActivityService, metrics *MetricsService, logger *zap.Logger) *VariationOrderService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VariationOrderService{repo: repo, validator: validate, stats: stats, activity: activity, metrics: metrics, logger: logger}
}

// ParseListQuery validates raw list parameters, reporting every violation.
func (s *VariationOrderService) ParseListQuery(q dto.ListVariationOrdersQuery) (models.VariationOrderFilter, error) {
	var errs validation.Errors
	errs.Struct(s.validator, q)
	filter := buildListFilter(&errs, q)
	if err := errs.Err("invalid list query"); err != nil {
		return models.VariationOrderFilter{}, err
	}
	return filter, nil
}

// buildListFilter converts already tag-validated parameters, applying the
// default createdAt/desc ordering.
func buildListFilter(errs *validation.Errors, q dto.ListVariationOrdersQuery) models.VariationOrderFilter {
	filter := models.VariationOrderFilter{
		Search:    strings.TrimSpace(q.Search),
		SortBy:    models.VOSortField(q.SortBy),
		SortOrder: models.SortOrder(q.SortOrder),
	}
	if q.Status != "" {
		status := models.VOStatus(q.Status)
		filter.Status = &status
	}
	if q.SubmissionType != "" {
		subType := models.SubmissionType(q.SubmissionType)
		filter.SubmissionType = &subType
	}
	if filter.SortBy == "" {
		filter.SortBy = models.VOSortCreatedAt
	}
	if filter.SortOrder == "" {
		filter.SortOrder = models.SortDesc
	}
	filter.Page, filter.Limit = parsePaging(errs, q.Page, q.Limit)
	return filter
}

// parsePaging applies the shared page/limit rules. A limit above the maximum
// is rejected rather than capped.
func parsePaging(errs *validation.Errors, rawPage, rawLimit string) (int, int) {
	page, limit := 1, defaultPageSize
	if rawPage = strings.TrimSpace(rawPage); rawPage != "" {
		n, err := strconv.Atoi(rawPage)
		switch {
		case err != nil && !(errors.Is(err, strconv.ErrRange) && n > 0), n < 1:
			errs.Add("page", "must be a positive integer")
		case n > maxPage:
			errs.Add("page", fmt.Sprintf("must be at most %d", maxPage))
		default:
			page = n
		}
	}
	if rawLimit = strings.TrimSpace(rawLimit); rawLimit != "" {
		n, err := strconv.Atoi(rawLimit)
		switch {
		case err != nil || n < 1:
			errs.Add("limit", "must be a positive integer")
		case n > maxPageSize:
			errs.Add("limit", fmt.Sprintf("must be at most %d", maxPageSize))
		default:
			limit = n
		}
	}
	return page, limit
}

// List returns one page of VOs and its pagination metadata.
func (s *VariationOrderService) List(ctx context.Context, filter models.VariationOrderFilter) ([]models.VariationOrder, *models.Pagination, error) {
	orders, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list variation orders")
	}
	return orders, models.NewPagination(filter.Page, filter.Limit, total), nil
}

// Get returns a VO by ID.
func (s *VariationOrderService) Get(ctx context.Context, id int64) (*models.VariationOrder, error) {
	vo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, voStoreError(err, "failed to load variation order")
	}
	return vo, nil
}

// Create validates req and stores a new VO.
func (s *VariationOrderService) Create(ctx context.Context, actor Actor, req dto.CreateVariationOrderRequest) (*models.VariationOrder, error) {
	var errs validation.Errors
	errs.Struct(s.validator, req)

	vo := &models.VariationOrder{
		Subject:             strings.TrimSpace(req.Subject),
		SubmissionType:      models.SubmissionType(req.SubmissionType),
		SubmissionReference: nullableText(req.SubmissionReference),
		ResponseReference:   nullableText(req.ResponseReference),
		VORReference:        nullableText(req.VORReference),
		DVOReference:        nullableText(req.DVOReference),
		DVOIssuedDate:       errs.OptionalDate("dvoIssuedDate", req.DVOIssuedDate),
		AssessmentValue:     errs.Amount("assessmentValue", req.AssessmentValue),
		ProposalValue:       errs.Amount("proposalValue", req.ProposalValue),
		ApprovedAmount:      errs.Amount("approvedAmount", req.ApprovedAmount),
		Status:              models.DefaultVOStatus,
		Remarks:             nullableText(req.Remarks),
		ActionNotes:         nullableText(req.ActionNotes),
		ExcludeFromStats:    req.ExcludeFromStats,
	}
	if req.Subject != "" && vo.Subject == "" {
		errs.Add("subject", "is required")
	}
	if req.SubmissionDate != "" {
		vo.SubmissionDate, _ = errs.Date("submissionDate", req.SubmissionDate)
	}
	if req.Status != nil {
		vo.Status = models.VOStatus(*req.Status)
	}
	if err := errs.Err("invalid variation order"); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, vo); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create variation order")
	}
	s.afterMutation(ctx, actor, models.ActivityCreate, vo.ID, "Created VO: "+vo.Subject)
	return vo, nil
}

// Update applies a partial update. Omitted fields are untouched; nullable
// fields sent as null or "" are cleared.
func (s *VariationOrderService) Update(ctx context.Context, actor Actor, id int64, req dto.UpdateVariationOrderRequest) (*models.VariationOrder, error) {
	var errs validation.Errors
	errs.Struct(s.validator, req)

	var changes []models.FieldChange
	set := func(column string, value interface{}) {
		changes = append(changes, models.FieldChange{Column: column, Value: value})
	}

	if req.Subject.Set {
		subject := strings.TrimSpace(req.Subject.Value)
		if req.Subject.Null || subject == "" {
			errs.Add("subject", "is required")
		} else {
			set("subject", subject)
		}
	}
	if req.SubmissionType.Set {
		if req.SubmissionType.Null || req.SubmissionType.Value == "" {
			errs.Add("submissionType", "is required")
		} else {
			set("submission_type", models.SubmissionType(req.SubmissionType.Value))
		}
	}
	if req.SubmissionReference.Set {
		set("submission_reference", optionalText(req.SubmissionReference))
	}
	if req.ResponseReference.Set {
		set("response_reference", optionalText(req.ResponseReference))
	}
	if req.VORReference.Set {
		set("vor_reference", optionalText(req.VORReference))
	}
	if req.DVOReference.Set {
		set("dvo_reference", optionalText(req.DVOReference))
	}
	if req.SubmissionDate.Set {
		if req.SubmissionDate.Null {
			errs.Add("submissionDate", "is required")
		} else if date, ok := errs.Date("submissionDate", req.SubmissionDate.Value); ok {
			set("submission_date", date)
		}
	}
	if req.DVOIssuedDate.Set {
		set("dvo_issued_date", errs.OptionalDate("dvoIssuedDate", optionalPtr(req.DVOIssuedDate)))
	}
	if req.AssessmentValue.Set {
		set("assessment_value", errs.Amount("assessmentValue", optionalPtr(req.AssessmentValue)))
	}
	if req.ProposalValue.Set {
		set("proposal_value", errs.Amount("proposalValue", optionalPtr(req.ProposalValue)))
	}
	if req.ApprovedAmount.Set {
		set("approved_amount", errs.Amount("approvedAmount", optionalPtr(req.ApprovedAmount)))
	}
	if req.Status.Set {
		if req.Status.Null || req.Status.Value == "" {
			errs.Add("status", "is required")
		} else {
			set("status", models.VOStatus(req.Status.Value))
		}
	}
	if req.Remarks.Set {
		set("remarks", optionalText(req.Remarks))
	}
	if req.ActionNotes.Set {
		set("action_notes", optionalText(req.ActionNotes))
	}
	if req.ExcludeFromStats.Set {
		if req.ExcludeFromStats.Null {
			errs.Add("excludeFromStats", "must be a boolean")
		} else {
			set("exclude_from_stats", req.ExcludeFromStats.Value)
		}
	}
	if err := errs.Err("invalid variation order"); err != nil {
		return nil, err
	}

	// One UPDATE: concurrent patches of different fields both survive.
	vo, err := s.repo.Patch(ctx, id, changes)
	if err != nil {
		return nil, voStoreError(err, "failed to update variation order")
	}
	s.afterMutation(ctx, actor, models.ActivityUpdate, vo.ID, "Updated VO: "+vo.Subject)
	return vo, nil
}

// Delete permanently removes a VO. Its activity history is kept.
func (s *VariationOrderService) Delete(ctx context.Context, actor Actor, id int64) error {
	vo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return voStoreError(err, "failed to load variation order")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return voStoreError(err, "failed to delete variation order")
	}
	s.afterMutation(ctx, actor, models.ActivityDelete, id, "Deleted VO: "+vo.Subject)
	return nil
}

func (s *VariationOrderService) afterMutation(ctx context.Context, actor Actor, action models.ActivityAction, id int64, details string) {
	if s.stats != nil {
		s.stats.Invalidate(ctx)
	}
	s.metrics.RecordVOMutation(string(action))
	s.activity.Record(ctx, actor, action, models.EntityVariationOrder, strconv.FormatInt(id, 10), details)
}

func voStoreError(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "variation order not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

// nullableText trims s and maps blank input to nil.
func nullableText(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func optionalText(o dto.Optional[string]) *string {
	return nullableText(optionalPtr(o))
}

// optionalPtr returns nil for a null Optional and a pointer to its value otherwise.
func optionalPtr[T any](o dto.Optional[T]) *T {
	if !o.Present() {
		return nil
	}
	v := o.Value
	return &v
}
