package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/vo-tracker-api/internal/dto"
	"github.com/noah-isme/vo-tracker-api/internal/middleware"
	"github.com/noah-isme/vo-tracker-api/internal/models"
	"github.com/noah-isme/vo-tracker-api/internal/service"
	appErrors "github.com/noah-isme/vo-tracker-api/pkg/errors"
	"github.com/noah-isme/vo-tracker-api/pkg/response"
)

type variationOrderService interface {
	ParseListQuery(q dto.ListVariationOrdersQuery) (models.VariationOrderFilter, error)
	List(ctx context.Context, filter models.VariationOrderFilter) ([]models.VariationOrder, *models.Pagination, error)
	Get(ctx context.Context, id int64) (*models.VariationOrder, error)
	Create(ctx context.Context, actor service.Actor, req dto.CreateVariationOrderRequest) (*models.VariationOrder, error)
	Update(ctx context.Context, actor service.Actor, id int64, req dto.UpdateVariationOrderRequest) (*models.VariationOrder, error)
	Delete(ctx context.Context, actor service.Actor, id int64) error
}

type statisticsService interface {
	Get(ctx context.Context) (*models.VOStatistics, bool, error)
}

type uploadService interface {
	MaxFileSize() int64
	Upload(ctx context.Context, actor service.Actor, id int64, in service.UploadInput) (*dto.UploadFileResponse, error)
}

type exportService interface {
	Export(ctx context.Context, q dto.ExportVariationOrdersQuery) (*service.ExportResult, error)
}

// uploadFormOverhead is the request body allowance on top of the file size
// for multipart boundaries, part headers and the stage field.
const uploadFormOverhead = 64 << 10

// VariationOrderHandler exposes variation order endpoints.
type VariationOrderHandler struct {
	orders  variationOrderService
	stats   statisticsService
	uploads uploadService
	exports exportService
}

// NewVariationOrderHandler constructs VariationOrderHandler.
func NewVariationOrderHandler(orders variationOrderService, stats statisticsService, uploads uploadService, exports exportService) *VariationOrderHandler {
	return &VariationOrderHandler{orders: orders, stats: stats, uploads: uploads, exports: exports}
}

// List godoc
// @Summary List variation orders
// @Tags VariationOrders
// @Produce json
// @Param search query string false "Case-insensitive match on subject and references"
// @Param status query string false "Workflow status"
// @Param submissionType query string false "Submission type"
// @Param sortBy query string false "submissionDate, createdAt, proposalValue or approvedAmount"
// @Param sortOrder query string false "asc or desc"
// @Param page query int false "Page"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /variation-orders [get]
func (h *VariationOrderHandler) List(c *gin.Context) {
	var q dto.ListVariationOrdersQuery
	if err := bindQuery(c, &q); err != nil {
		response.Error(c, err)
		return
	}
	filter, err := h.orders.ParseListQuery(q)
	if err != nil {
		response.Error(c, err)
		return
	}
	orders, pagination, err := h.orders.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, orders, pagination)
}

// Get godoc
// @Summary Get variation order
// @Tags VariationOrders
// @Produce json
// @Param id path int true "Variation order ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /variation-orders/{id} [get]
func (h *VariationOrderHandler) Get(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	vo, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, vo, nil)
}

// Create godoc
// @Summary Create variation order
// @Tags VariationOrders
// @Accept json
// @Produce json
// @Param payload body dto.CreateVariationOrderRequest true "Variation order"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /variation-orders [post]
func (h *VariationOrderHandler) Create(c *gin.Context) {
	var req dto.CreateVariationOrderRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	vo, err := h.orders.Create(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, vo)
}

// Update godoc
// @Summary Partially update variation order
// @Description Omitted fields are left unchanged; null or "" clears optional fields.
// @Tags VariationOrders
// @Accept json
// @Produce json
// @Param id path int true "Variation order ID"
// @Param payload body dto.UpdateVariationOrderRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /variation-orders/{id} [patch]
func (h *VariationOrderHandler) Update(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpdateVariationOrderRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	vo, err := h.orders.Update(c.Request.Context(), actorFromContext(c), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, vo, nil)
}

// Delete godoc
// @Summary Delete variation order
// @Tags VariationOrders
// @Param id path int true "Variation order ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /variation-orders/{id} [delete]
func (h *VariationOrderHandler) Delete(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.orders.Delete(c.Request.Context(), actorFromContext(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Statistics godoc
// @Summary Variation order statistics
// @Description Counts per status and decimal totals over VOs not excluded from stats.
// @Tags VariationOrders
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /variation-orders/statistics [get]
func (h *VariationOrderHandler) Statistics(c *gin.Context) {
	stats, hit, err := h.stats.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, stats, nil, middleware.ExtractMeta(c))
}

// Upload godoc
// @Summary Upload a stage document
// @Tags VariationOrders
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Variation order ID"
// @Param stage formData string true "proposed, assessed or approved"
// @Param file formData file true "Document"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /variation-orders/{id}/files [post]
func (h *VariationOrderHandler) Upload(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if limit := h.uploads.MaxFileSize(); limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+uploadFormOverhead)
		if _, err := c.MultipartForm(); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				response.Error(c, appErrors.Validation("invalid upload", []appErrors.FieldError{
					{Field: "file", Reason: fmt.Sprintf("must be at most %d bytes", limit)},
				}))
				return
			}
		}
	}
	in := service.UploadInput{Stage: c.PostForm("stage")}
	header, err := c.FormFile("file")
	if err == nil {
		file, openErr := header.Open()
		if openErr != nil {
			response.Error(c, appErrors.Wrap(openErr, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unreadable upload"))
			return
		}
		defer file.Close()
		in.Filename = header.Filename
		in.ContentType = header.Header.Get("Content-Type")
		in.Size = header.Size
		in.Body = file
	}
	res, err := h.uploads.Upload(c.Request.Context(), actorFromContext(c), id, in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Export godoc
// @Summary Export the variation order register
// @Description Same filters and ordering as the list endpoint, without pagination.
// @Tags VariationOrders
// @Produce text/csv
// @Produce application/pdf
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string true "csv, xlsx or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /variation-orders/export [get]
func (h *VariationOrderHandler) Export(c *gin.Context) {
	var q dto.ExportVariationOrdersQuery
	if err := bindQuery(c, &q); err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.exports.Export(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, result.ContentType, result.Body)
}
