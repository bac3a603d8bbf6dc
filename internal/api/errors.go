package api

import (
	"errors"
	"log"
	"net/http"

	"applyflow/internal/apperr"

	"github.com/gin-gonic/gin"
)

var kindStatus = map[apperr.Kind]int{
	apperr.KindNotFound:      http.StatusNotFound,
	apperr.KindForbidden:     http.StatusForbidden,
	apperr.KindConflict:      http.StatusConflict,
	apperr.KindAlreadyExists: http.StatusConflict,
	apperr.KindBadRequest:    http.StatusBadRequest,
	apperr.KindUnavailable:   http.StatusServiceUnavailable,
}

// writeError maps a taxonomy error to its HTTP status. Unavailable (and
// unclassified) errors are logged with full detail and surfaced without
// internals.
func writeError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		status = http.StatusServiceUnavailable
	}
	message := "Service unavailable"
	if kind == apperr.KindUnavailable {
		log.Printf("[api] %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	} else {
		message = err.Error()
		var ae *apperr.Error
		if errors.As(err, &ae) {
			message = ae.Message
		}
	}
	c.JSON(status, gin.H{"error": gin.H{"message": message}})
}

func currentUserID(c *gin.Context) uint {
	userId, _ := c.Get("userId")
	id, _ := userId.(uint)
	return id
}

func currentUserIsAdmin(c *gin.Context) bool {
	isAdmin, _ := c.Get("isAdmin")
	admin, _ := isAdmin.(bool)
	return admin
}
