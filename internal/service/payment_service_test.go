package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/vo-tracker-api/internal/dto"
	"github.com/noah-isme/vo-tracker-api/internal/models"
	appErrors "github.com/noah-isme/vo-tracker-api/pkg/errors"
)

type mockPaymentRepo struct {
	items      map[int64]models.PaymentApplication
	nextID     int64
	lastFilter models.PaymentApplicationFilter
}

func newMockPaymentRepo(items ...models.PaymentApplication) *mockPaymentRepo {
	m := &mockPaymentRepo{items: map[int64]models.PaymentApplication{}, nextID: 10}
	for _, item := range items {
		m.items[item.ID] = item
	}
	return m
}

func (m *mockPaymentRepo) List(ctx context.Context, filter models.PaymentApplicationFilter) ([]models.PaymentApplication, int, error) {
	m.lastFilter = filter
	out := make([]models.PaymentApplication, 0, len(m.items))
	for _, item := range m.items {
		out = append(out, item)
	}
	return out, len(out), nil
}

func (m *mockPaymentRepo) FindByID(ctx context.Context, id int64) (*models.PaymentApplication, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &item, nil
}

func (m *mockPaymentRepo) ExistsByNumber(ctx context.Context, number int, excludeID int64) (bool, error) {
	for _, item := range m.items {
		if item.PaymentNumber == number && item.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockPaymentRepo) Create(ctx context.Context, item *models.PaymentApplication) error {
	m.nextID++
	item.ID = m.nextID
	m.items[item.ID] = *item
	return nil
}

func (m *mockPaymentRepo) Update(ctx context.Context, item *models.PaymentApplication) error {
	if _, ok := m.items[item.ID]; !ok {
		return sql.ErrNoRows
	}
	m.items[item.ID] = *item
	return nil
}

func (m *mockPaymentRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

func seededPayment() models.PaymentApplication {
	return models.PaymentApplication{
		ID:              3,
		PaymentNumber:   4,
		SubmissionDate:  time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		GrossAmount:     decimal.RequireFromString("10000"),
		AdvanceRecovery: decimal.RequireFromString("1000"),
		RetentionAmount: decimal.RequireFromString("500"),
		VATAmount:       decimal.RequireFromString("1500"),
		NetPayment:      decimal.RequireFromString("10000"),
		Status:          models.PaymentStatusSubmitted,
	}
}

func TestPaymentCreateDerivesNetPayment(t *testing.T) {
	repo := newMockPaymentRepo()
	activity := &mockActivityRepo{}
	svc := NewPaymentService(repo, nil, NewActivityService(activity, nil, nil, 20), nil)

	item, err := svc.Create(context.Background(), admin, dto.CreatePaymentApplicationRequest{
		PaymentNumber:   1,
		SubmissionDate:  "2024-01-31",
		GrossAmount:     "100000.00",
		AdvanceRecovery: numPtr("10000"),
		RetentionAmount: numPtr("5000"),
		VATAmount:       numPtr("12750.50"),
	})
	require.NoError(t, err)
	assert.Equal(t, "97750.50", item.NetPayment.StringFixed(2))
	assert.Equal(t, models.PaymentStatusSubmitted, item.Status)

	require.Len(t, activity.entries, 1)
	assert.Equal(t, models.EntityPaymentApplication, activity.entries[0].EntityType)
	assert.Equal(t, "Created payment application #1", *activity.entries[0].Details)
}

func TestPaymentCreateKeepsExplicitNetPayment(t *testing.T) {
	svc := NewPaymentService(newMockPaymentRepo(), nil, nil, nil)

	item, err := svc.Create(context.Background(), admin, dto.CreatePaymentApplicationRequest{
		PaymentNumber:  2,
		SubmissionDate: "2024-01-31",
		GrossAmount:    "500",
		NetPayment:     numPtr("450"),
		Status:         strPtr("Certified"),
	})
	require.NoError(t, err)
	assert.Equal(t, "450", item.NetPayment.String())
	assert.Equal(t, models.PaymentStatusCertified, item.Status)
}

func TestPaymentCreateValidation(t *testing.T) {
	svc := NewPaymentService(newMockPaymentRepo(), nil, nil, nil)

	_, err := svc.Create(context.Background(), admin, dto.CreatePaymentApplicationRequest{
		Status:        strPtr("Rejected"),
		VATAmount:     numPtr("-3"),
		CertifiedDate: strPtr("yesterday"),
	})
	require.Error(t, err)
	fields := fieldReasons(t, err)
	assert.Contains(t, fields, "paymentNumber")
	assert.Contains(t, fields, "submissionDate")
	assert.Equal(t, "is required", fields["grossAmount"])
	assert.Contains(t, fields, "status")
	assert.Contains(t, fields, "vatAmount")
	assert.Contains(t, fields, "certifiedDate")
}

func TestPaymentCreateDuplicateNumber(t *testing.T) {
	svc := NewPaymentService(newMockPaymentRepo(seededPayment()), nil, nil, nil)

	_, err := svc.Create(context.Background(), admin, dto.CreatePaymentApplicationRequest{
		PaymentNumber:  4,
		SubmissionDate: "2024-03-01",
		GrossAmount:    "1",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrConflict))
}

func TestPaymentUpdateRederivesNetPayment(t *testing.T) {
	repo := newMockPaymentRepo(seededPayment())
	svc := NewPaymentService(repo, nil, nil, nil)

	var req dto.UpdatePaymentApplicationRequest
	require.NoError(t, json.Unmarshal([]byte(`{"grossAmount":"20000","remarks":"revised","paymentNumber":4}`), &req))
	item, err := svc.Update(context.Background(), admin, 3, req)
	require.NoError(t, err)
	assert.Equal(t, "20000", item.NetPayment.String())
	assert.Equal(t, "revised", *item.Remarks)
	assert.Equal(t, seededPayment().SubmissionDate, item.SubmissionDate)
}

func TestPaymentUpdateLeavesNetPaymentWhenAmountsUntouched(t *testing.T) {
	repo := newMockPaymentRepo(seededPayment())
	svc := NewPaymentService(repo, nil, nil, nil)

	var req dto.UpdatePaymentApplicationRequest
	require.NoError(t, json.Unmarshal([]byte(`{"status":"Paid","paymentDate":"2024-04-10"}`), &req))
	item, err := svc.Update(context.Background(), admin, 3, req)
	require.NoError(t, err)
	assert.Equal(t, "10000", item.NetPayment.String())
	assert.Equal(t, models.PaymentStatusPaid, item.Status)
	require.NotNil(t, item.PaymentDate)
}

func TestPaymentUpdateRejectsNullRequired(t *testing.T) {
	svc := NewPaymentService(newMockPaymentRepo(seededPayment()), nil, nil, nil)

	var req dto.UpdatePaymentApplicationRequest
	require.NoError(t, json.Unmarshal([]byte(`{"grossAmount":null,"status":null,"paymentNumber":null}`), &req))
	_, err := svc.Update(context.Background(), admin, 3, req)
	require.Error(t, err)
	fields := fieldReasons(t, err)
	assert.Equal(t, "is required", fields["grossAmount"])
	assert.Equal(t, "is required", fields["status"])
	assert.Equal(t, "is required", fields["paymentNumber"])
}

func TestPaymentListAndDelete(t *testing.T) {
	repo := newMockPaymentRepo(seededPayment())
	svc := NewPaymentService(repo, nil, nil, nil)

	filter, err := svc.ParseListQuery(dto.ListPaymentApplicationsQuery{Status: "Submitted", Limit: "5"})
	require.NoError(t, err)
	items, pagination, err := svc.List(context.Background(), filter)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 5, pagination.Limit)
	require.NotNil(t, repo.lastFilter.Status)

	_, err = svc.ParseListQuery(dto.ListPaymentApplicationsQuery{Limit: "1000"})
	require.Error(t, err)

	require.NoError(t, svc.Delete(context.Background(), admin, 3))
	_, err = svc.Get(context.Background(), 3)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}
