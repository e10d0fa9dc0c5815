package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/vo-tracker-api/internal/dto"
	"github.com/noah-isme/vo-tracker-api/internal/models"
	"github.com/noah-isme/vo-tracker-api/internal/validation"
	appErrors "github.com/noah-isme/vo-tracker-api/pkg/errors"
	"github.com/noah-isme/vo-tracker-api/pkg/export"
)

const exportTitle = "Variation Order Register"

var registerHeaders = []string{
	"ID", "Subject", "Submission Type", "Submission Ref", "Response Ref", "VOR Ref", "DVO Ref",
	"Submission Date", "DVO Issued Date", "Assessment Value", "Proposal Value", "Approved Amount",
	"Status", "Excluded From Stats", "Remarks",
}

type exportRepository interface {
	ListAll(ctx context.Context, filter models.VariationOrderFilter, max int) ([]models.VariationOrder, error)
}

type statisticsReader interface {
	Get(ctx context.Context) (*models.VOStatistics, bool, error)
}

// ExportResult is a rendered register ready to stream.
type ExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
	Rows        int
}

// ExportService renders the filtered VO register as CSV, XLSX or PDF.
type ExportService struct {
	repo      exportRepository
	stats     statisticsReader
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	maxRows   int
	now       func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(repo exportRepository, stats statisticsReader, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, maxRows int) *ExportService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRows <= 0 {
		maxRows = 5000
	}
	return &ExportService{repo: repo, stats: stats, validator: validate, metrics: metrics, logger: logger, maxRows: maxRows, now: time.Now}
}

// Export applies the list filters and ordering without pagination.
func (s *ExportService) Export(ctx context.Context, q dto.ExportVariationOrdersQuery) (*ExportResult, error) {
	var errs validation.Errors
	errs.Struct(s.validator, q)
	filter := buildListFilter(&errs, q.ListVariationOrdersQuery)
	if err := errs.Err("invalid export query"); err != nil {
		return nil, err
	}
	renderer, ok := export.ForFormat(q.Format)
	if !ok {
		return nil, appErrors.Validation("invalid export query", []appErrors.FieldError{{Field: "format", Reason: "must be one of: csv, xlsx, pdf"}})
	}

	orders, err := s.repo.ListAll(ctx, filter, s.maxRows)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load variation orders")
	}

	dataset := export.Dataset{Headers: registerHeaders, Rows: make([]map[string]string, 0, len(orders))}
	for i := range orders {
		dataset.Rows = append(dataset.Rows, registerRow(&orders[i]))
	}
	if q.Format == "pdf" {
		stats, _, err := s.stats.Get(ctx)
		if err != nil {
			return nil, err
		}
		dataset.Summary = statisticsSummary(stats)
	}

	body, err := renderer.Render(dataset, exportTitle)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	s.metrics.ObserveExport(q.Format, len(orders))
	if len(orders) == s.maxRows {
		s.logger.Info("export truncated at row cap", zap.Int("max_rows", s.maxRows), zap.String("format", q.Format))
	}

	return &ExportResult{
		Filename:    fmt.Sprintf("variation-orders-%s.%s", s.now().UTC().Format("20060102-150405"), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Body:        body,
		Rows:        len(orders),
	}, nil
}

func registerRow(vo *models.VariationOrder) map[string]string {
	return map[string]string{
		"ID":                  strconv.FormatInt(vo.ID, 10),
		"Subject":             vo.Subject,
		"Submission Type":     string(vo.SubmissionType),
		"Submission Ref":      textValue(vo.SubmissionReference),
		"Response Ref":        textValue(vo.ResponseReference),
		"VOR Ref":             textValue(vo.VORReference),
		"DVO Ref":             textValue(vo.DVOReference),
		"Submission Date":     vo.SubmissionDate.Format("2006-01-02"),
		"DVO Issued Date":     dateValue(vo.DVOIssuedDate),
		"Assessment Value":    amountValue(vo.AssessmentValue),
		"Proposal Value":      amountValue(vo.ProposalValue),
		"Approved Amount":     amountValue(vo.ApprovedAmount),
		"Status":              vo.Status.Label(),
		"Excluded From Stats": strconv.FormatBool(vo.ExcludeFromStats),
		"Remarks":             textValue(vo.Remarks),
	}
}

func statisticsSummary(stats *models.VOStatistics) []export.SummaryLine {
	lines := make([]export.SummaryLine, 0, len(stats.Breakdown)+3)
	for _, b := range stats.Breakdown {
		lines = append(lines, export.SummaryLine{
			Label: b.Label,
			Value: fmt.Sprintf("%d (%s)", b.Count, b.Amount.StringFixed(2)),
		})
	}
	return append(lines,
		export.SummaryLine{Label: "Total VOs", Value: strconv.Itoa(stats.Counts.Total)},
		export.SummaryLine{Label: "Total Submitted Value", Value: stats.TotalSubmittedValue.StringFixed(2)},
		export.SummaryLine{Label: "Total Approved Value", Value: stats.TotalApprovedValue.StringFixed(2)},
	)
}

func textValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func dateValue(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func amountValue(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.StringFixed(2)
}
