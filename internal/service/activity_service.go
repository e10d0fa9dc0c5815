package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/vo-tracker-api/internal/models"
	appErrors "github.com/noah-isme/vo-tracker-api/pkg/errors"
	"github.com/noah-isme/vo-tracker-api/pkg/jobs"
)

const activityJobType = "activity.record"

type activityRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	Recent(ctx context.Context, limit int) ([]models.ActivityLog, error)
}

type activityEnqueuer interface {
	TryEnqueue(job jobs.Job) error
}

// Actor identifies who performed a mutation.
type Actor struct {
	UserID string
	Email  string
}

// ActorFromClaims derives the actor from verified token claims.
func ActorFromClaims(claims *models.JWTClaims) Actor {
	if claims == nil {
		return Actor{}
	}
	return Actor{UserID: claims.UserID, Email: claims.Email}
}

// ActivityService appends audit entries after a mutation has committed and
// serves the recent feed. Recording never fails the caller.
type ActivityService struct {
	repo    activityRepository
	queue   activityEnqueuer
	retries int
	metrics *MetricsService
	logger  *zap.Logger
	limit   int
	timeout time.Duration
}

// NewActivityService constructs an ActivityService writing synchronously.
func NewActivityService(repo activityRepository, metrics *MetricsService, logger *zap.Logger, limit int) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if limit <= 0 {
		limit = 20
	}
	return &ActivityService{repo: repo, metrics: metrics, logger: logger, limit: limit, timeout: 5 * time.Second}
}

// UseQueue hands subsequent entries to queue instead of writing inline.
// maxRetries must match the queue's retry budget so the final failure is
// counted once.
func (s *ActivityService) UseQueue(queue activityEnqueuer, maxRetries int) {
	s.queue = queue
	s.retries = maxRetries
}

// Record appends one entry. Failures are logged and counted only.
func (s *ActivityService) Record(ctx context.Context, actor Actor, action models.ActivityAction, entityType, entityID, details string) {
	if s == nil {
		return
	}
	entry := &models.ActivityLog{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		CreatedAt:  time.Now().UTC(),
	}
	if actor.UserID != "" {
		entry.UserID = &actor.UserID
	}
	if actor.Email != "" {
		entry.UserEmail = &actor.Email
	}
	if details != "" {
		entry.Details = &details
	}

	if s.queue != nil {
		if err := s.queue.TryEnqueue(jobs.Job{Type: activityJobType, Payload: entry}); err != nil {
			s.fail(entry, err)
		}
		return
	}

	// The request context may already be cancelled once the response is
	// written, so the write gets its own deadline.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()
	if err := s.repo.Create(writeCtx, entry); err != nil {
		s.fail(entry, err)
	}
}

// HandleJob is the queue handler for asynchronous entries.
func (s *ActivityService) HandleJob(ctx context.Context, job jobs.Job) error {
	entry, ok := job.Payload.(*models.ActivityLog)
	if !ok {
		s.logger.Error("unexpected activity job payload", zap.String("job_id", job.ID))
		return nil
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		if job.Attempt >= s.retries {
			s.fail(entry, err)
		}
		return err
	}
	return nil
}

// Recent returns the newest entries, newest first.
func (s *ActivityService) Recent(ctx context.Context) ([]models.ActivityLog, error) {
	entries, err := s.repo.Recent(ctx, s.limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity")
	}
	return entries, nil
}

func (s *ActivityService) fail(entry *models.ActivityLog, err error) {
	s.metrics.RecordActivityFailure()
	s.logger.Warn("activity log write failed",
		zap.String("action", string(entry.Action)),
		zap.String("entity_type", entry.EntityType),
		zap.String("entity_id", entry.EntityID),
		zap.Error(err),
	)
}
