// Package handlers implements the HTTP endpoints of the market API.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rentscope/geointel/internal/domain/aggregation"
	"github.com/rentscope/geointel/pkg/errors"
)

// errorBody is the uniform error envelope.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// respondError maps an application error onto its HTTP status and envelope.
func respondError(c *gin.Context, err error) {
	var ae *errors.AppError
	if !errors.As(err, &ae) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": errorBody{
			Code:    string(errors.ErrCodeInternal),
			Message: "internal error",
		}})
		return
	}
	c.JSON(ae.Code.HTTPStatus(), gin.H{"error": errorBody{
		Code:    string(ae.Code),
		Message: ae.Message,
		Detail:  ae.Detail,
	}})
}

// filterFromQuery reads the shared scope parameters.
func filterFromQuery(c *gin.Context) aggregation.Filter {
	return aggregation.Filter{
		City:         c.Query("city"),
		District:     c.Query("district"),
		BuildingType: c.Query("building_type"),
	}
}
