package service

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/vo-tracker-api/internal/dto"
	"github.com/noah-isme/vo-tracker-api/internal/models"
	"github.com/noah-isme/vo-tracker-api/internal/validation"
	appErrors "github.com/noah-isme/vo-tracker-api/pkg/errors"
	"github.com/noah-isme/vo-tracker-api/pkg/storage"
)

type uploadRepository interface {
	FindByID(ctx context.Context, id int64) (*models.VariationOrder, error)
	SetFileURL(ctx context.Context, id int64, stage models.FileStage, url string) (time.Time, error)
}

// UploadInput describes one multipart document.
type UploadInput struct {
	Stage       string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadConfig bounds accepted documents.
type UploadConfig struct {
	MaxFileSize  int64
	AllowedMIMEs []string
}

// UploadService stores VO documents and links them to their approval stage.
type UploadService struct {
	repo      uploadRepository
	store     storage.ObjectStore
	validator *validator.Validate
	activity  *ActivityService
	metrics   *MetricsService
	logger    *zap.Logger
	maxSize   int64
	allowed   map[string]struct{}
}

// NewUploadService constructs an UploadService.
func NewUploadService(repo uploadRepository, store storage.ObjectStore, validate *validator.Validate, activity *ActivityService, metrics *MetricsService, logger *zap.Logger, cfg UploadConfig) *UploadService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	allowed := make(map[string]struct{}, len(cfg.AllowedMIMEs))
	for _, m := range cfg.AllowedMIMEs {
		allowed[strings.ToLower(m)] = struct{}{}
	}
	return &UploadService{repo: repo, store: store, validator: validate, activity: activity, metrics: metrics, logger: logger, maxSize: cfg.MaxFileSize, allowed: allowed}
}

// MaxFileSize is the largest accepted document in bytes; 0 means unbounded.
func (s *UploadService) MaxFileSize() int64 {
	return s.maxSize
}

// Upload stores the document first and only then points the VO at it, so a
// record never references a missing object. If the record update fails the
// stored object is removed again.
func (s *UploadService) Upload(ctx context.Context, actor Actor, id int64, in UploadInput) (*dto.UploadFileResponse, error) {
	var errs validation.Errors
	errs.Struct(s.validator, dto.UploadFileRequest{Stage: in.Stage})
	contentType := s.checkFile(&errs, in)
	if err := errs.Err("invalid upload"); err != nil {
		return nil, err
	}
	stage := models.FileStage(in.Stage)

	vo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, voStoreError(err, "failed to load variation order")
	}

	key := fmt.Sprintf("variation-orders/%d/%s/%s%s", id, stage, uuid.NewString(), strings.ToLower(filepath.Ext(in.Filename)))
	url, err := s.store.Put(ctx, key, in.Body, contentType)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUploadFailed.Code, appErrors.ErrUploadFailed.Status, "failed to store file")
	}

	if _, err := s.repo.SetFileURL(ctx, id, stage, url); err != nil {
		if delErr := s.store.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			s.logger.Warn("failed to remove orphaned upload", zap.String("key", key), zap.Error(delErr))
		}
		return nil, voStoreError(err, "failed to link uploaded file")
	}

	s.metrics.ObserveUpload(in.Size)
	s.metrics.RecordVOMutation(string(models.ActivityUpload))
	s.activity.Record(ctx, actor, models.ActivityUpload, models.EntityVariationOrder, strconv.FormatInt(id, 10),
		fmt.Sprintf("Uploaded %s file for VO: %s", stage, vo.Subject))

	return &dto.UploadFileResponse{VariationOrderID: id, Stage: string(stage), URL: url}, nil
}

func (s *UploadService) checkFile(errs *validation.Errors, in UploadInput) string {
	if in.Body == nil || in.Size <= 0 {
		errs.Add("file", "is required")
		return ""
	}
	if s.maxSize > 0 && in.Size > s.maxSize {
		errs.Add("file", fmt.Sprintf("must be at most %d bytes", s.maxSize))
	}
	contentType := "application/octet-stream"
	if in.ContentType != "" {
		if parsed, _, err := mime.ParseMediaType(in.ContentType); err == nil {
			contentType = strings.ToLower(parsed)
		}
	}
	if len(s.allowed) > 0 {
		if _, ok := s.allowed[contentType]; !ok {
			errs.Add("file", fmt.Sprintf("content type %s is not allowed", contentType))
		}
	}
	return contentType
}
