package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/vo-tracker-api/internal/dto"
	"github.com/noah-isme/vo-tracker-api/internal/models"
)

type stubStatistics struct {
	stats *models.VOStatistics
	calls int
}

func (s *stubStatistics) Get(ctx context.Context) (*models.VOStatistics, bool, error) {
	s.calls++
	return s.stats, false, nil
}

func newExportService(repo *mockVORepo, stats *stubStatistics) *ExportService {
	svc := NewExportService(repo, stats, nil, nil, nil, 50)
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC) }
	return svc
}

func TestExportCSVAppliesFilters(t *testing.T) {
	repo := newMockVORepo(seededVO())
	stats := &stubStatistics{}
	svc := newExportService(repo, stats)

	q := dto.ExportVariationOrdersQuery{Format: "csv"}
	q.Status = "PendingWithRSG"
	q.SortBy = "proposalValue"
	q.SortOrder = "asc"
	result, err := svc.Export(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, "variation-orders-20240601-083000.csv", result.Filename)
	assert.Equal(t, 1, result.Rows)
	assert.Equal(t, 50, repo.lastMax)
	require.NotNil(t, repo.lastFilter.Status)
	assert.Equal(t, models.VOSortProposalValue, repo.lastFilter.SortBy)
	assert.Equal(t, models.SortAsc, repo.lastFilter.SortOrder)
	assert.Zero(t, stats.calls)

	records, err := csv.NewReader(bytes.NewReader(result.Body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, registerHeaders, records[0])
	assert.Equal(t, "Pool deck waterproofing", records[1][1])
	assert.Equal(t, "1500.00", records[1][10])
	assert.Equal(t, "Pending with RSG", records[1][12])
}

func TestExportPDFIncludesStatistics(t *testing.T) {
	stats, err := Aggregate([]models.StatusAggregate{
		{Status: models.VOStatusPendingWithRSG, Count: 1, ProposalSum: decimal.RequireFromString("1500"), ApprovedSum: decimal.Zero},
	})
	require.NoError(t, err)
	statsReader := &stubStatistics{stats: stats}
	svc := newExportService(newMockVORepo(seededVO()), statsReader)

	result, err := svc.Export(context.Background(), dto.ExportVariationOrdersQuery{Format: "pdf"})
	require.NoError(t, err)
	assert.Equal(t, 1, statsReader.calls)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, bytes.HasPrefix(result.Body, []byte("%PDF")))

	summary := statisticsSummary(stats)
	assert.Equal(t, "1 (1500.00)", summary[1].Value)
	assert.Equal(t, "1500.00", summary[len(summary)-2].Value)
}

func TestExportXLSX(t *testing.T) {
	svc := newExportService(newMockVORepo(seededVO()), &stubStatistics{})

	result, err := svc.Export(context.Background(), dto.ExportVariationOrdersQuery{Format: "xlsx"})
	require.NoError(t, err)
	assert.Equal(t, "variation-orders-20240601-083000.xlsx", result.Filename)
	assert.True(t, bytes.HasPrefix(result.Body, []byte("PK")))
}

func TestExportRejectsBadQuery(t *testing.T) {
	svc := newExportService(newMockVORepo(), &stubStatistics{})

	q := dto.ExportVariationOrdersQuery{Format: "docx"}
	q.Limit = "500"
	_, err := svc.Export(context.Background(), q)
	require.Error(t, err)
	fields := fieldReasons(t, err)
	assert.Contains(t, fields, "format")
	assert.Contains(t, fields, "limit")
}
