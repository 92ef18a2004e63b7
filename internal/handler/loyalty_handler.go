package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Dton04/BookingHotel-sub000/internal/application"
	"github.com/Dton04/BookingHotel-sub000/internal/auth"
	"github.com/Dton04/BookingHotel-sub000/internal/middleware"
	"github.com/Dton04/BookingHotel-sub000/internal/response"
)

// LoyaltyHandler handles HTTP requests for the points ledger.
type LoyaltyHandler struct {
	service *application.LoyaltyService
}

// NewLoyaltyHandler creates a new LoyaltyHandler.
func NewLoyaltyHandler(service *application.LoyaltyService) *LoyaltyHandler {
	return &LoyaltyHandler{service: service}
}

// RegisterRoutes registers all loyalty routes on the given router group.
func (h *LoyaltyHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	loyalty := r.Group("/loyalty")
	loyalty.Use(middleware.AuthMiddleware(jwtManager))
	{
		loyalty.GET("/me", h.GetMyBalance)
	}
}

// GetMyBalance handles GET /api/v1/loyalty/me
func (h *LoyaltyHandler) GetMyBalance(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	res, err := h.service.GetBalance(c.Request.Context(), claims.Email)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, res)
}
