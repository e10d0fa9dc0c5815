package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sort"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/vo-tracker-api/internal/dto"
	"github.com/noah-isme/vo-tracker-api/internal/models"
	"github.com/noah-isme/vo-tracker-api/internal/service"
	appErrors "github.com/noah-isme/vo-tracker-api/pkg/errors"
)

// roleTokens accepts the role name itself as the bearer token.
type roleTokens struct{}

func (roleTokens) ValidateToken(token string) (*models.JWTClaims, error) {
	switch models.UserRole(token) {
	case models.RoleAdmin, models.RoleViewer:
		return &models.JWTClaims{UserID: "user-" + token, Email: token + "@example.com", Role: models.UserRole(token)}, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

type memoryVORepo struct {
	orders map[int64]models.VariationOrder
	nextID int64
}

func (m *memoryVORepo) List(ctx context.Context, filter models.VariationOrderFilter) ([]models.VariationOrder, int, error) {
	out := make([]models.VariationOrder, 0, len(m.orders))
	for _, vo := range m.orders {
		out = append(out, vo)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, len(out), nil
}

func (m *memoryVORepo) ListAll(ctx context.Context, filter models.VariationOrderFilter, max int) ([]models.VariationOrder, error) {
	out, _, err := m.List(ctx, filter)
	return out, err
}

func (m *memoryVORepo) FindByID(ctx context.Context, id int64) (*models.VariationOrder, error) {
	vo, ok := m.orders[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &vo, nil
}

func (m *memoryVORepo) Create(ctx context.Context, vo *models.VariationOrder) error {
	m.nextID++
	vo.ID = m.nextID
	vo.CreatedAt = time.Now().UTC()
	vo.UpdatedAt = vo.CreatedAt
	m.orders[vo.ID] = *vo
	return nil
}

func (m *memoryVORepo) Patch(ctx context.Context, id int64, changes []models.FieldChange) (*models.VariationOrder, error) {
	vo, ok := m.orders[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	rv := reflect.ValueOf(&vo).Elem()
	for _, change := range changes {
		for i := 0; i < rv.NumField(); i++ {
			if rv.Type().Field(i).Tag.Get("db") == change.Column {
				rv.Field(i).Set(reflect.ValueOf(change.Value))
			}
		}
	}
	vo.UpdatedAt = time.Now().UTC()
	m.orders[id] = vo
	return &vo, nil
}

func (m *memoryVORepo) SetFileURL(ctx context.Context, id int64, stage models.FileStage, url string) (time.Time, error) {
	return time.Now(), nil
}

func (m *memoryVORepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.orders[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.orders, id)
	return nil
}

type stubStats struct{ hit bool }

func (s stubStats) Get(ctx context.Context) (*models.VOStatistics, bool, error) {
	stats, err := service.Aggregate(nil)
	return stats, s.hit, err
}

type recordingUploads struct {
	last  service.UploadInput
	calls int
	max   int64
}

func (r *recordingUploads) MaxFileSize() int64 {
	return r.max
}

func (r *recordingUploads) Upload(ctx context.Context, actor service.Actor, id int64, in service.UploadInput) (*dto.UploadFileResponse, error) {
	r.calls++
	r.last = in
	return &dto.UploadFileResponse{VariationOrderID: id, Stage: in.Stage, URL: "/api/v1/files/x.pdf"}, nil
}

type stubExports struct{}

func (stubExports) Export(ctx context.Context, q dto.ExportVariationOrdersQuery) (*service.ExportResult, error) {
	if q.Format != "csv" {
		return nil, appErrors.Validation("invalid export query", []appErrors.FieldError{{Field: "format", Reason: "must be one of: csv, xlsx, pdf"}})
	}
	return &service.ExportResult{Filename: "variation-orders-20240101-000000.csv", ContentType: "text/csv; charset=utf-8", Body: []byte("ID\n")}, nil
}

func buildRouter(t *testing.T) (*gin.Engine, *memoryVORepo, *recordingUploads) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo := &memoryVORepo{orders: map[int64]models.VariationOrder{}}
	uploads := &recordingUploads{}
	orders := service.NewVariationOrderService(repo, nil, nil, nil, nil, nil)

	router := gin.New()
	RegisterRoutes(router, "/api/v1", roleTokens{}, Handlers{
		Auth:            NewAuthHandler(nil),
		VariationOrders: NewVariationOrderHandler(orders, stubStats{hit: true}, uploads, stubExports{}),
		Activity:        NewActivityHandler(nil),
		Projects:        NewProjectHandler(nil),
		Payments:        NewPaymentHandler(nil),
		Metrics:         NewMetricsHandler(nil, nil),
	})
	return router, repo, uploads
}

func performRequest(r http.Handler, method, path, role string, body []byte, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if role != "" {
		req.Header.Set("Authorization", "Bearer "+role)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Data       json.RawMessage        `json:"data"`
	Error      *appErrors.Error       `json:"error"`
	Pagination *models.Pagination     `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestVariationOrderRoutes(t *testing.T) {
	router, repo, uploads := buildRouter(t)
	admin, viewer := string(models.RoleAdmin), string(models.RoleViewer)

	t.Run("list requires authentication", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/api/v1/variation-orders", "", nil, "")
		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "UNAUTHORIZED", decode(t, w).Error.Code)
	})

	t.Run("list rejects oversized limit", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/api/v1/variation-orders?limit=101&page=abc", viewer, nil, "")
		require.Equal(t, http.StatusBadRequest, w.Code)
		env := decode(t, w)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
		fields := map[string]string{}
		for _, d := range env.Error.Details {
			fields[d.Field] = d.Reason
		}
		assert.Equal(t, "must be at most 100", fields["limit"])
		assert.Contains(t, fields, "page")
	})

	t.Run("viewer cannot create", func(t *testing.T) {
		w := performRequest(router, http.MethodPost, "/api/v1/variation-orders", viewer, []byte(`{}`), "application/json")
		require.Equal(t, http.StatusForbidden, w.Code)
	})

	var created models.VariationOrder
	t.Run("admin creates", func(t *testing.T) {
		payload := `{"subject":"Lobby finishes","submissionType":"VO","submissionDate":"2024-02-10","proposalValue":1250.75,"remarks":"initial"}`
		w := performRequest(router, http.MethodPost, "/api/v1/variation-orders", admin, []byte(payload), "application/json")
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		require.NoError(t, json.Unmarshal(decode(t, w).Data, &created))
		assert.Equal(t, models.VOStatusPendingWithFFC, created.Status)
		assert.Equal(t, "1250.75", created.ProposalValue.Decimal.String())
	})

	t.Run("create reports malformed body", func(t *testing.T) {
		w := performRequest(router, http.MethodPost, "/api/v1/variation-orders", admin, []byte(`{"subject":`), "application/json")
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("patch clears remarks only", func(t *testing.T) {
		w := performRequest(router, http.MethodPatch, "/api/v1/variation-orders/1", admin, []byte(`{"remarks":null}`), "application/json")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		stored := repo.orders[created.ID]
		assert.Nil(t, stored.Remarks)
		assert.Equal(t, "Lobby finishes", stored.Subject)
	})

	t.Run("list returns pagination", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/api/v1/variation-orders", viewer, nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		env := decode(t, w)
		require.NotNil(t, env.Pagination)
		assert.Equal(t, 1, env.Pagination.Total)
		assert.Equal(t, 20, env.Pagination.Limit)
	})

	t.Run("statistics carries cache metadata", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/api/v1/variation-orders/statistics", viewer, nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, decode(t, w).Meta["cache_hit"])
	})

	t.Run("export streams attachment", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/api/v1/variation-orders/export?format=csv", viewer, nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Disposition"), "variation-orders-20240101-000000.csv")
		assert.Equal(t, "ID\n", w.Body.String())

		w = performRequest(router, http.MethodGet, "/api/v1/variation-orders/export?format=docx", viewer, nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("upload passes multipart fields", func(t *testing.T) {
		body := &bytes.Buffer{}
		mw := multipart.NewWriter(body)
		require.NoError(t, mw.WriteField("stage", "proposed"))
		part, err := mw.CreateFormFile("file", "letter.pdf")
		require.NoError(t, err)
		_, _ = part.Write([]byte("%PDF-1.4"))
		require.NoError(t, mw.Close())

		w := performRequest(router, http.MethodPost, "/api/v1/variation-orders/1/files", admin, body.Bytes(), mw.FormDataContentType())
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "proposed", uploads.last.Stage)
		assert.Equal(t, "letter.pdf", uploads.last.Filename)
		assert.Equal(t, int64(8), uploads.last.Size)
	})

	t.Run("viewer cannot delete", func(t *testing.T) {
		w := performRequest(router, http.MethodDelete, "/api/v1/variation-orders/1", viewer, nil, "")
		require.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, repo.orders, created.ID)
	})

	t.Run("admin deletes", func(t *testing.T) {
		w := performRequest(router, http.MethodDelete, "/api/v1/variation-orders/1", admin, nil, "")
		require.Equal(t, http.StatusNoContent, w.Code)

		w = performRequest(router, http.MethodGet, "/api/v1/variation-orders/1", viewer, nil, "")
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/api/v1/variation-orders/abc", viewer, nil, "")
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func multipartUpload(t *testing.T, stage, filename string, content []byte) ([]byte, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	require.NoError(t, mw.WriteField("stage", stage))
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return body.Bytes(), mw.FormDataContentType()
}

func TestUploadBodyLimit(t *testing.T) {
	router, _, uploads := buildRouter(t)
	uploads.max = 1024
	admin := string(models.RoleAdmin)

	t.Run("oversized body is refused before the handler reads the file", func(t *testing.T) {
		body, contentType := multipartUpload(t, "proposed", "drawing.pdf", bytes.Repeat([]byte("x"), 1024+uploadFormOverhead+1))
		w := performRequest(router, http.MethodPost, "/api/v1/variation-orders/1/files", admin, body, contentType)
		require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		env := decode(t, w)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
		require.Len(t, env.Error.Details, 1)
		assert.Equal(t, "file", env.Error.Details[0].Field)
		assert.Equal(t, "must be at most 1024 bytes", env.Error.Details[0].Reason)
		assert.Zero(t, uploads.calls)
	})

	t.Run("body within the limit reaches the service", func(t *testing.T) {
		body, contentType := multipartUpload(t, "assessed", "letter.pdf", bytes.Repeat([]byte("x"), 1024))
		w := performRequest(router, http.MethodPost, "/api/v1/variation-orders/1/files", admin, body, contentType)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, 1, uploads.calls)
		assert.Equal(t, "assessed", uploads.last.Stage)
		assert.Equal(t, int64(1024), uploads.last.Size)
	})
}

func TestHealthEndpoints(t *testing.T) {
	router, _, _ := buildRouter(t)

	w := performRequest(router, http.MethodGet, "/health", "", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = performRequest(router, http.MethodGet, "/ready", "", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}
