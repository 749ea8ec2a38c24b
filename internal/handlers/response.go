package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/songhub/backend/internal/services"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

func respondSuccess(c *gin.Context, code int, message string, data interface{}) {
	body := gin.H{"status": statusSuccess, "message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(code, body)
}

func respondError(c *gin.Context, code int, message string, fields map[string]string) {
	body := gin.H{"status": statusError, "message": message}
	if len(fields) > 0 {
		body["errors"] = fields
	}
	c.JSON(code, body)
}

// respondServiceError maps the service error taxonomy onto the envelope.
// Persistence failures only ever show failMsg; the details were logged by the service.
func respondServiceError(c *gin.Context, err error, notFoundMsg, failMsg string) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		respondError(c, http.StatusUnprocessableEntity, "The given data was invalid.", ve.Fields)
	case errors.Is(err, services.ErrNotFound):
		respondError(c, http.StatusNotFound, notFoundMsg, nil)
	default:
		respondError(c, http.StatusInternalServerError, failMsg, nil)
	}
}

// paramID parses the :id path parameter, answering 404 itself when it is not an id.
func paramID(c *gin.Context, notFoundMsg string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, http.StatusNotFound, notFoundMsg, nil)
		return 0, false
	}
	return uint(id), true
}
