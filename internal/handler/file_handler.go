package handler

import (
	"errors"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/vo-tracker-api/pkg/errors"
	"github.com/noah-isme/vo-tracker-api/pkg/response"
	"github.com/noah-isme/vo-tracker-api/pkg/storage"
)

type fileOpener interface {
	Open(key string) (*os.File, error)
}

// FileHandler streams documents kept by the local storage driver.
type FileHandler struct {
	files fileOpener
}

// NewFileHandler constructs FileHandler.
func NewFileHandler(files fileOpener) *FileHandler {
	return &FileHandler{files: files}
}

// Download godoc
// @Summary Download an uploaded document
// @Tags Files
// @Produce octet-stream
// @Param key path string true "Object key"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /files/{key} [get]
func (h *FileHandler) Download(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	file, err := h.files.Open(key)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidKey) || errors.Is(err, os.ErrNotExist) {
			response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "file not found"))
			return
		}
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil || info.IsDir() {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "file not found"))
		return
	}
	if ct := mime.TypeByExtension(filepath.Ext(key)); ct != "" {
		c.Header("Content-Type", ct)
	}
	c.Header("Content-Disposition", "inline; filename=\""+filepath.Base(key)+"\"")
	http.ServeContent(c.Writer, c.Request, filepath.Base(key), info.ModTime(), file)
}
