// Package handlers provides HTTP request handlers for the presentation layer.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mockdrill/mockdrill-go/internal/domain/errs"
)

// respondError maps domain sentinels to HTTP status codes. Anything
// unrecognized is a 500.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrValidation), errors.Is(err, errs.ErrStageIncomplete):
		status = http.StatusBadRequest
	case errors.Is(err, errs.ErrInvalidCredential), errors.Is(err, errs.ErrMissingCredential):
		status = http.StatusUnauthorized
	case errors.Is(err, errs.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errs.ErrAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, errs.ErrMalformedResponse):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrBusy):
		status = http.StatusConflict
	case errors.Is(err, errs.ErrDeliveryFailed):
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
