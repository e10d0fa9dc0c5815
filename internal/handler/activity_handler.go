package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/vo-tracker-api/internal/service"
	"github.com/noah-isme/vo-tracker-api/pkg/response"
)

// ActivityHandler serves the audit feed.
type ActivityHandler struct {
	activity *service.ActivityService
}

// NewActivityHandler constructs ActivityHandler.
func NewActivityHandler(activity *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activity: activity}
}

// Recent godoc
// @Summary Recent activity
// @Description Newest audit entries first.
// @Tags Activity
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /activity [get]
func (h *ActivityHandler) Recent(c *gin.Context) {
	entries, err := h.activity.Recent(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}
