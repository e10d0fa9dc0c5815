package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"sort"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/vo-tracker-api/internal/models"
	"github.com/noah-isme/vo-tracker-api/internal/service"
)

type memoryPaymentRepo struct {
	items  map[int64]models.PaymentApplication
	nextID int64
}

func (m *memoryPaymentRepo) List(ctx context.Context, filter models.PaymentApplicationFilter) ([]models.PaymentApplication, int, error) {
	out := make([]models.PaymentApplication, 0, len(m.items))
	for _, item := range m.items {
		if filter.Status != nil && item.Status != *filter.Status {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaymentNumber > out[j].PaymentNumber })
	return out, len(out), nil
}

func (m *memoryPaymentRepo) FindByID(ctx context.Context, id int64) (*models.PaymentApplication, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &item, nil
}

func (m *memoryPaymentRepo) ExistsByNumber(ctx context.Context, number int, excludeID int64) (bool, error) {
	for id, item := range m.items {
		if item.PaymentNumber == number && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryPaymentRepo) Create(ctx context.Context, item *models.PaymentApplication) error {
	m.nextID++
	item.ID = m.nextID
	m.items[item.ID] = *item
	return nil
}

func (m *memoryPaymentRepo) Update(ctx context.Context, item *models.PaymentApplication) error {
	if _, ok := m.items[item.ID]; !ok {
		return sql.ErrNoRows
	}
	m.items[item.ID] = *item
	return nil
}

func (m *memoryPaymentRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

type memoryProjectRepo struct {
	byCode map[string]models.ProjectDetails
	last   string
}

func (m *memoryProjectRepo) Latest(ctx context.Context) (*models.ProjectDetails, error) {
	details, ok := m.byCode[m.last]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &details, nil
}

func (m *memoryProjectRepo) Upsert(ctx context.Context, details *models.ProjectDetails) (bool, error) {
	_, exists := m.byCode[details.ProjectCode]
	if !exists {
		details.ID = int64(len(m.byCode) + 1)
	}
	m.byCode[details.ProjectCode] = *details
	m.last = details.ProjectCode
	return !exists, nil
}

func buildContractRouter(t *testing.T) (*gin.Engine, *memoryPaymentRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	payments := &memoryPaymentRepo{items: map[int64]models.PaymentApplication{}}
	projects := &memoryProjectRepo{byCode: map[string]models.ProjectDetails{}}

	router := gin.New()
	RegisterRoutes(router, "/api/v1", roleTokens{}, Handlers{
		Auth:            NewAuthHandler(nil),
		VariationOrders: NewVariationOrderHandler(nil, nil, nil, nil),
		Activity:        NewActivityHandler(nil),
		Projects:        NewProjectHandler(service.NewProjectService(projects, nil, nil, nil)),
		Payments:        NewPaymentHandler(service.NewPaymentService(payments, nil, nil, nil)),
		Metrics:         NewMetricsHandler(nil, nil),
	})
	return router, payments
}

func TestProjectDetailsRoutes(t *testing.T) {
	router, _ := buildContractRouter(t)
	admin, viewer := string(models.RoleAdmin), string(models.RoleViewer)

	w := performRequest(router, http.MethodGet, "/api/v1/project-details", viewer, nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)

	payload := []byte(`{"projectCode":"HW-01","projectName":"Harbour Walk","originalContractValue":"1500000.00","workDonePercentage":42.5}`)
	w = performRequest(router, http.MethodPut, "/api/v1/project-details", viewer, payload, "application/json")
	require.Equal(t, http.StatusForbidden, w.Code)

	w = performRequest(router, http.MethodPut, "/api/v1/project-details", admin, payload, "application/json")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	payload = []byte(`{"projectCode":"HW-01","projectName":"Harbour Walk Phase 1","workDonePercentage":55}`)
	w = performRequest(router, http.MethodPut, "/api/v1/project-details", admin, payload, "application/json")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = performRequest(router, http.MethodGet, "/api/v1/project-details", viewer, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var details models.ProjectDetails
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &details))
	assert.Equal(t, "Harbour Walk Phase 1", details.ProjectName)
	assert.Equal(t, "55", details.WorkDonePercentage.Decimal.String())

	w = performRequest(router, http.MethodPut, "/api/v1/project-details", admin, []byte(`{"projectCode":"HW-01","projectName":"x","retentionPercentage":120}`), "application/json")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "retentionPercentage", decode(t, w).Error.Details[0].Field)
}

func TestPaymentApplicationRoutes(t *testing.T) {
	router, repo := buildContractRouter(t)
	admin, viewer := string(models.RoleAdmin), string(models.RoleViewer)

	payload := []byte(`{"paymentNumber":1,"submissionDate":"2024-03-01","grossAmount":"1000","advanceRecovery":"100","retentionAmount":"50","vatAmount":"10"}`)
	w := performRequest(router, http.MethodPost, "/api/v1/payment-applications", viewer, payload, "application/json")
	require.Equal(t, http.StatusForbidden, w.Code)

	w = performRequest(router, http.MethodPost, "/api/v1/payment-applications", admin, payload, "application/json")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.PaymentApplication
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &created))
	assert.Equal(t, "860", created.NetPayment.String())
	assert.Equal(t, models.PaymentStatusSubmitted, created.Status)

	w = performRequest(router, http.MethodPost, "/api/v1/payment-applications", admin, payload, "application/json")
	require.Equal(t, http.StatusConflict, w.Code)

	w = performRequest(router, http.MethodPatch, "/api/v1/payment-applications/1", admin, []byte(`{"status":"Certified","certifiedDate":"2024-03-20"}`), "application/json")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.PaymentStatusCertified, repo.items[1].Status)
	assert.Equal(t, "860", repo.items[1].NetPayment.String())

	w = performRequest(router, http.MethodGet, "/api/v1/payment-applications?status=Certified", viewer, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 1, env.Pagination.Total)

	w = performRequest(router, http.MethodGet, "/api/v1/payment-applications?status=Rejected", viewer, nil, "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(router, http.MethodDelete, "/api/v1/payment-applications/1", admin, nil, "")
	require.Equal(t, http.StatusNoContent, w.Code)
	w = performRequest(router, http.MethodGet, "/api/v1/payment-applications/1", viewer, nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)
}
