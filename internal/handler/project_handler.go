package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/vo-tracker-api/internal/dto"
	"github.com/noah-isme/vo-tracker-api/internal/service"
	"github.com/noah-isme/vo-tracker-api/pkg/response"
)

// ProjectHandler exposes the project details snapshot.
type ProjectHandler struct {
	projects *service.ProjectService
}

// NewProjectHandler constructs ProjectHandler.
func NewProjectHandler(projects *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// Get godoc
// @Summary Latest project details
// @Tags ProjectDetails
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /project-details [get]
func (h *ProjectHandler) Get(c *gin.Context) {
	details, err := h.projects.Latest(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, details, nil)
}

// Upsert godoc
// @Summary Create or replace project details
// @Description Keyed by projectCode. Responds 201 when a new snapshot was inserted.
// @Tags ProjectDetails
// @Accept json
// @Produce json
// @Param payload body dto.UpsertProjectDetailsRequest true "Project details"
// @Success 200 {object} response.Envelope
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /project-details [put]
func (h *ProjectHandler) Upsert(c *gin.Context) {
	var req dto.UpsertProjectDetailsRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	details, inserted, err := h.projects.Upsert(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if inserted {
		response.Created(c, details)
		return
	}
	response.JSON(c, http.StatusOK, details, nil)
}
