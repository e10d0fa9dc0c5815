package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/vo-tracker-api/internal/dto"
	"github.com/noah-isme/vo-tracker-api/internal/service"
	"github.com/noah-isme/vo-tracker-api/pkg/response"
)

// PaymentHandler exposes payment application endpoints.
type PaymentHandler struct {
	payments *service.PaymentService
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// List godoc
// @Summary List payment applications
// @Tags PaymentApplications
// @Produce json
// @Param status query string false "Submitted, UnderReview, Certified or Paid"
// @Param page query int false "Page"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} response.Envelope
// @Router /payment-applications [get]
func (h *PaymentHandler) List(c *gin.Context) {
	var q dto.ListPaymentApplicationsQuery
	if err := bindQuery(c, &q); err != nil {
		response.Error(c, err)
		return
	}
	filter, err := h.payments.ParseListQuery(q)
	if err != nil {
		response.Error(c, err)
		return
	}
	items, pagination, err := h.payments.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get payment application
// @Tags PaymentApplications
// @Produce json
// @Param id path int true "Payment application ID"
// @Success 200 {object} response.Envelope
// @Router /payment-applications/{id} [get]
func (h *PaymentHandler) Get(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	item, err := h.payments.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Create godoc
// @Summary Create payment application
// @Tags PaymentApplications
// @Accept json
// @Produce json
// @Param payload body dto.CreatePaymentApplicationRequest true "Payment application"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /payment-applications [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	var req dto.CreatePaymentApplicationRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	item, err := h.payments.Create(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Partially update payment application
// @Tags PaymentApplications
// @Accept json
// @Produce json
// @Param id path int true "Payment application ID"
// @Param payload body dto.UpdatePaymentApplicationRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /payment-applications/{id} [patch]
func (h *PaymentHandler) Update(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpdatePaymentApplicationRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	item, err := h.payments.Update(c.Request.Context(), actorFromContext(c), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete payment application
// @Tags PaymentApplications
// @Param id path int true "Payment application ID"
// @Success 204
// @Router /payment-applications/{id} [delete]
func (h *PaymentHandler) Delete(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.payments.Delete(c.Request.Context(), actorFromContext(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
