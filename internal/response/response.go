package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Dton04/BookingHotel-sub000/internal/domain"
)

// Success writes a 200 with the payload.
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// Created writes a 201 with the payload.
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, gin.H{"data": data})
}

// Paginated writes a 200 with the payload and paging metadata.
func Paginated(c *gin.Context, data any, total int64, page, limit int) {
	c.JSON(http.StatusOK, gin.H{
		"data": data,
		"meta": gin.H{"total": total, "page": page, "limit": limit},
	})
}

// BadRequest writes a 400 with the message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message, "code": "validation"})
}

// Error maps a domain error to its HTTP status. Conflicts are kept
// distinguishable from validation failures so clients can tell "bad
// input" from "lost the race".
func Error(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "validation"})
	case domain.IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "conflict"})
	case domain.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "code": "not_found"})
	case domain.IsUnavailable(err):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "code": "unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error", "code": "internal"})
	}
}
