package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/vo-tracker-api/internal/dto"
	"github.com/noah-isme/vo-tracker-api/internal/models"
	"github.com/noah-isme/vo-tracker-api/internal/validation"
	appErrors "github.com/noah-isme/vo-tracker-api/pkg/errors"
)

type paymentRepository interface {
	List(ctx context.Context, filter models.PaymentApplicationFilter) ([]models.PaymentApplication, int, error)
	FindByID(ctx context.Context, id int64) (*models.PaymentApplication, error)
	ExistsByNumber(ctx context.Context, number int, excludeID int64) (bool, error)
	Create(ctx context.Context, item *models.PaymentApplication) error
	Update(ctx context.Context, item *models.PaymentApplication) error
	Delete(ctx context.Context, id int64) error
}

// PaymentService manages interim payment applications.
type PaymentService struct {
	repo      paymentRepository
	validator *validator.Validate
	activity  *ActivityService
	logger    *zap.Logger
}

// NewPaymentService constructs a PaymentService.
func NewPaymentService(repo paymentRepository, validate *validator.Validate, activity *ActivityService, logger *zap.Logger) *PaymentService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{repo: repo, validator: validate, activity: activity, logger: logger}
}

// ParseListQuery validates raw list parameters.
func (s *PaymentService) ParseListQuery(q dto.ListPaymentApplicationsQuery) (models.PaymentApplicationFilter, error) {
	var errs validation.Errors
	errs.Struct(s.validator, q)
	var filter models.PaymentApplicationFilter
	if q.Status != "" {
		status := models.PaymentStatus(q.Status)
		filter.Status = &status
	}
	filter.Page, filter.Limit = parsePaging(&errs, q.Page, q.Limit)
	if err := errs.Err("invalid list query"); err != nil {
		return models.PaymentApplicationFilter{}, err
	}
	return filter, nil
}

// List returns a page of payment applications.
func (s *PaymentService) List(ctx context.Context, filter models.PaymentApplicationFilter) ([]models.PaymentApplication, *models.Pagination, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payment applications")
	}
	return items, models.NewPagination(filter.Page, filter.Limit, total), nil
}

// Get returns one payment application.
func (s *PaymentService) Get(ctx context.Context, id int64) (*models.PaymentApplication, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, paymentStoreError(err, "failed to load payment application")
	}
	return item, nil
}

// Create validates req and stores a payment application. A missing net
// payment is derived from the other amounts.
func (s *PaymentService) Create(ctx context.Context, actor Actor, req dto.CreatePaymentApplicationRequest) (*models.PaymentApplication, error) {
	var errs validation.Errors
	errs.Struct(s.validator, req)

	item := &models.PaymentApplication{
		PaymentNumber:   req.PaymentNumber,
		Status:          models.PaymentStatusSubmitted,
		AdvanceRecovery: zeroIfNull(errs.Amount("advanceRecovery", req.AdvanceRecovery)),
		RetentionAmount: zeroIfNull(errs.Amount("retentionAmount", req.RetentionAmount)),
		VATAmount:       zeroIfNull(errs.Amount("vatAmount", req.VATAmount)),
		CertifiedDate:   errs.OptionalDate("certifiedDate", req.CertifiedDate),
		PaymentDate:     errs.OptionalDate("paymentDate", req.PaymentDate),
		Remarks:         nullableText(req.Remarks),
	}
	gross := errs.Amount("grossAmount", &req.GrossAmount)
	if req.GrossAmount.Blank() {
		errs.Add("grossAmount", "is required")
	}
	item.GrossAmount = zeroIfNull(gross)
	net := errs.Amount("netPayment", req.NetPayment)
	if req.SubmissionDate != "" {
		item.SubmissionDate, _ = errs.Date("submissionDate", req.SubmissionDate)
	}
	if req.Status != nil {
		item.Status = models.PaymentStatus(*req.Status)
	}
	if err := errs.Err("invalid payment application"); err != nil {
		return nil, err
	}
	if net.Valid {
		item.NetPayment = net.Decimal
	} else {
		item.NetPayment = item.DerivedNetPayment()
	}

	if err := s.ensureUniqueNumber(ctx, item.PaymentNumber, 0); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create payment application")
	}
	s.record(ctx, actor, models.ActivityCreate, item, "Created")
	return item, nil
}

// Update applies a partial update. When any amount changes and netPayment is
// not supplied, the net payment is re-derived.
func (s *PaymentService) Update(ctx context.Context, actor Actor, id int64, req dto.UpdatePaymentApplicationRequest) (*models.PaymentApplication, error) {
	var errs validation.Errors
	errs.Struct(s.validator, req)

	var patch []func(*models.PaymentApplication)
	add := func(fn func(*models.PaymentApplication)) { patch = append(patch, fn) }
	amountsChanged := false

	if req.PaymentNumber.Set {
		if req.PaymentNumber.Null {
			errs.Add("paymentNumber", "is required")
		} else {
			add(func(p *models.PaymentApplication) { p.PaymentNumber = req.PaymentNumber.Value })
		}
	}
	if req.SubmissionDate.Set {
		if req.SubmissionDate.Null {
			errs.Add("submissionDate", "is required")
		} else if date, ok := errs.Date("submissionDate", req.SubmissionDate.Value); ok {
			add(func(p *models.PaymentApplication) { p.SubmissionDate = date })
		}
	}
	requiredAmount := func(field string, o dto.Optional[dto.Numeric], set func(*models.PaymentApplication, decimal.Decimal)) {
		if !o.Set {
			return
		}
		amountsChanged = true
		v := errs.Amount(field, optionalPtr(o))
		add(func(p *models.PaymentApplication) { set(p, zeroIfNull(v)) })
	}
	if req.GrossAmount.Set && (!req.GrossAmount.Present() || req.GrossAmount.Value.Blank()) {
		errs.Add("grossAmount", "is required")
	} else {
		requiredAmount("grossAmount", req.GrossAmount, func(p *models.PaymentApplication, d decimal.Decimal) { p.GrossAmount = d })
	}
	requiredAmount("advanceRecovery", req.AdvanceRecovery, func(p *models.PaymentApplication, d decimal.Decimal) { p.AdvanceRecovery = d })
	requiredAmount("retentionAmount", req.RetentionAmount, func(p *models.PaymentApplication, d decimal.Decimal) { p.RetentionAmount = d })
	requiredAmount("vatAmount", req.VATAmount, func(p *models.PaymentApplication, d decimal.Decimal) { p.VATAmount = d })

	var net decimal.NullDecimal
	if req.NetPayment.Set {
		net = errs.Amount("netPayment", optionalPtr(req.NetPayment))
	}
	if req.Status.Set {
		if req.Status.Null || req.Status.Value == "" {
			errs.Add("status", "is required")
		} else {
			add(func(p *models.PaymentApplication) { p.Status = models.PaymentStatus(req.Status.Value) })
		}
	}
	if req.CertifiedDate.Set {
		date := errs.OptionalDate("certifiedDate", optionalPtr(req.CertifiedDate))
		add(func(p *models.PaymentApplication) { p.CertifiedDate = date })
	}
	if req.PaymentDate.Set {
		date := errs.OptionalDate("paymentDate", optionalPtr(req.PaymentDate))
		add(func(p *models.PaymentApplication) { p.PaymentDate = date })
	}
	if req.Remarks.Set {
		v := optionalText(req.Remarks)
		add(func(p *models.PaymentApplication) { p.Remarks = v })
	}
	if err := errs.Err("invalid payment application"); err != nil {
		return nil, err
	}

	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, paymentStoreError(err, "failed to load payment application")
	}
	for _, fn := range patch {
		fn(item)
	}
	switch {
	case net.Valid:
		item.NetPayment = net.Decimal
	case req.NetPayment.Set || amountsChanged:
		item.NetPayment = item.DerivedNetPayment()
	}

	if req.PaymentNumber.Present() {
		if err := s.ensureUniqueNumber(ctx, item.PaymentNumber, item.ID); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, paymentStoreError(err, "failed to update payment application")
	}
	s.record(ctx, actor, models.ActivityUpdate, item, "Updated")
	return item, nil
}

// Delete removes a payment application.
func (s *PaymentService) Delete(ctx context.Context, actor Actor, id int64) error {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return paymentStoreError(err, "failed to load payment application")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return paymentStoreError(err, "failed to delete payment application")
	}
	s.record(ctx, actor, models.ActivityDelete, item, "Deleted")
	return nil
}

func (s *PaymentService) ensureUniqueNumber(ctx context.Context, number int, excludeID int64) error {
	exists, err := s.repo.ExistsByNumber(ctx, number, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check payment number")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("payment application #%d already exists", number))
	}
	return nil
}

func (s *PaymentService) record(ctx context.Context, actor Actor, action models.ActivityAction, item *models.PaymentApplication, verb string) {
	s.activity.Record(ctx, actor, action, models.EntityPaymentApplication, strconv.FormatInt(item.ID, 10),
		fmt.Sprintf("%s payment application #%d", verb, item.PaymentNumber))
}

func paymentStoreError(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "payment application not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func zeroIfNull(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}
