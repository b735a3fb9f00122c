package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"demo/interview/internal/model"
)

const (
	codeInvalidRequestBody = "invalid_request_body"
	codeValidationFailed   = "validation_failed"
	codeInvalidDateFormat  = "invalid_date_format"
	codeMissingDateBound   = "missing_date_bound"
	codeInvalidFilter      = "invalid_filter"
	codeOrderNotFound      = "order_not_found"
	codeInternalError      = "internal_error"
)

func writeError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, gin.H{"error": code, "msg": msg})
}

// writeServiceError maps a service error onto a status and error code.
func writeServiceError(c *gin.Context, err error) {
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  codeValidationFailed,
			"msg":    ve.Error(),
			"fields": ve.Fields,
		})
	case errors.Is(err, model.ErrInvalidDateFormat):
		writeError(c, http.StatusBadRequest, codeInvalidDateFormat, err.Error())
	case errors.Is(err, model.ErrOrderNotFound):
		writeError(c, http.StatusNotFound, codeOrderNotFound, err.Error())
	default:
		log.Printf("request method=%s path=%s error=%v", c.Request.Method, c.Request.URL.Path, err)
		writeError(c, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
