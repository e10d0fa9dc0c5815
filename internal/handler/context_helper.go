package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/vo-tracker-api/internal/middleware"
	"github.com/noah-isme/vo-tracker-api/internal/models"
	"github.com/noah-isme/vo-tracker-api/internal/service"
	appErrors "github.com/noah-isme/vo-tracker-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, _ := middleware.Claims(c)
	return claims
}

func actorFromContext(c *gin.Context) service.Actor {
	return service.ActorFromClaims(claimsFromContext(c))
}

// idParam parses the :id path segment as a positive integer.
func idParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, appErrors.Validation("invalid id", []appErrors.FieldError{{Field: "id", Reason: "must be a positive integer"}})
	}
	return id, nil
}

// bindJSON decodes the request body. Malformed JSON and type mismatches are
// reported as a validation failure on the body.
func bindJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload").
			WithDetails(appErrors.FieldError{Field: "body", Reason: err.Error()})
	}
	return nil
}

// bindQuery decodes the query string. A value that cannot be mapped onto dst
// is reported as a validation failure on the query.
func bindQuery(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindQuery(dst); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query").
			WithDetails(appErrors.FieldError{Field: "query", Reason: err.Error()})
	}
	return nil
}
