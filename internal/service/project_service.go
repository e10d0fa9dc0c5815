package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/vo-tracker-api/internal/dto"
	"github.com/noah-isme/vo-tracker-api/internal/models"
	"github.com/noah-isme/vo-tracker-api/internal/validation"
	appErrors "github.com/noah-isme/vo-tracker-api/pkg/errors"
)

type projectRepository interface {
	Latest(ctx context.Context) (*models.ProjectDetails, error)
	Upsert(ctx context.Context, details *models.ProjectDetails) (bool, error)
}

// ProjectService manages the contract-level project snapshot.
type ProjectService struct {
	repo      projectRepository
	validator *validator.Validate
	activity  *ActivityService
	logger    *zap.Logger
}

// NewProjectService constructs a ProjectService.
func NewProjectService(repo projectRepository, validate *validator.Validate, activity *ActivityService, logger *zap.Logger) *ProjectService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProjectService{repo: repo, validator: validate, activity: activity, logger: logger}
}

// Latest returns the newest snapshot.
func (s *ProjectService) Latest(ctx context.Context) (*models.ProjectDetails, error) {
	details, err := s.repo.Latest(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "project details not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load project details")
	}
	return details, nil
}

// Upsert validates req and creates or replaces the snapshot for its project code.
func (s *ProjectService) Upsert(ctx context.Context, actor Actor, req dto.UpsertProjectDetailsRequest) (*models.ProjectDetails, bool, error) {
	var errs validation.Errors
	errs.Struct(s.validator, req)

	details := &models.ProjectDetails{
		ProjectCode:               strings.TrimSpace(req.ProjectCode),
		ProjectName:               strings.TrimSpace(req.ProjectName),
		OriginalContractValue:     errs.Amount("originalContractValue", req.OriginalContractValue),
		RevisedContractValue:      errs.Amount("revisedContractValue", req.RevisedContractValue),
		AdvancePaymentPercentage:  errs.Percentage("advancePaymentPercentage", req.AdvancePaymentPercentage),
		AdvancePaymentBalance:     errs.Amount("advancePaymentBalance", req.AdvancePaymentBalance),
		RetentionPercentage:       errs.Percentage("retentionPercentage", req.RetentionPercentage),
		RetentionBalance:          errs.Amount("retentionBalance", req.RetentionBalance),
		WorkDonePercentage:        errs.Percentage("workDonePercentage", req.WorkDonePercentage),
		PlannedWorkDonePercentage: errs.Percentage("plannedWorkDonePercentage", req.PlannedWorkDonePercentage),
		AmountReceived:            errs.Amount("amountReceived", req.AmountReceived),
	}
	// whitespace-only values pass the required tag
	if req.ProjectCode != "" && details.ProjectCode == "" {
		errs.Add("projectCode", "is required")
	}
	if req.ProjectName != "" && details.ProjectName == "" {
		errs.Add("projectName", "is required")
	}
	if err := errs.Err("invalid project details"); err != nil {
		return nil, false, err
	}

	inserted, err := s.repo.Upsert(ctx, details)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save project details")
	}

	action, verb := models.ActivityUpdate, "Updated"
	if inserted {
		action, verb = models.ActivityCreate, "Created"
	}
	s.activity.Record(ctx, actor, action, models.EntityProjectDetails, details.ProjectCode, verb+" project details: "+details.ProjectName)
	return details, inserted, nil
}
