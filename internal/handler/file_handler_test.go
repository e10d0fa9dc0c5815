package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/vo-tracker-api/pkg/storage"
)

func TestFileHandlerDownload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store, err := storage.NewLocalStorage(t.TempDir(), "/api/v1/files")
	require.NoError(t, err)
	_, err = store.Put(context.Background(), "variation-orders/1/proposed/a.pdf", strings.NewReader("%PDF-1.4"), "application/pdf")
	require.NoError(t, err)

	router := gin.New()
	router.GET("/files/*key", NewFileHandler(store).Download)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/files/variation-orders/1/proposed/a.pdf", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF-1.4", w.Body.String())

	for _, path := range []string{"/files/variation-orders/1/proposed/missing.pdf", "/files/../../etc/passwd", "/files/variation-orders"} {
		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
}
