package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Dton04/BookingHotel-sub000/internal/application"
	"github.com/Dton04/BookingHotel-sub000/internal/auth"
	"github.com/Dton04/BookingHotel-sub000/internal/domain/discount"
	"github.com/Dton04/BookingHotel-sub000/internal/middleware"
	"github.com/Dton04/BookingHotel-sub000/internal/response"
)

// AdminHandler handles the back-office surface: booking oversight, revenue
// stats, and discount catalog management.
type AdminHandler struct {
	bookings  *application.BookingService
	discounts *application.DiscountService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(bookings *application.BookingService, discounts *application.DiscountService) *AdminHandler {
	return &AdminHandler{bookings: bookings, discounts: discounts}
}

// RegisterRoutes registers all admin routes on the given router group.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(jwtManager))
	admin.Use(middleware.RequireRole(auth.RoleAdmin))
	{
		admin.GET("/bookings", h.ListBookings)
		admin.GET("/stats/bookings", h.GetStats)
		admin.POST("/discounts", h.CreateDiscount)
		admin.DELETE("/discounts/:id", h.DeactivateDiscount)
	}
}

// ListBookings handles GET /api/v1/admin/bookings
func (h *AdminHandler) ListBookings(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	list, total, err := h.bookings.ListBookings(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	dtos := make([]BookingDTO, 0, len(list))
	for _, b := range list {
		dtos = append(dtos, toBookingDTO(b))
	}
	response.Paginated(c, dtos, total, page, limit)
}

// GetStats handles GET /api/v1/admin/stats/bookings
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.bookings.GetStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stats)
}

type createDiscountRequest struct {
	Code             string      `json:"code"`
	Type             string      `json:"type" binding:"required"`
	ValueType        string      `json:"value_type" binding:"required"`
	Value            int64       `json:"value" binding:"required"`
	RoomTypeIDs      []uuid.UUID `json:"room_type_ids"`
	StartDate        time.Time   `json:"start_date" binding:"required"`
	EndDate          time.Time   `json:"end_date" binding:"required"`
	MinBookingAmount int64       `json:"min_booking_amount"`
	MaxDiscount      int64       `json:"max_discount"`
	Stackable        bool        `json:"stackable"`
	MembershipLevel  int         `json:"membership_level"`
	MinSpending      int64       `json:"min_spending"`
}

// CreateDiscount handles POST /api/v1/admin/discounts
func (h *AdminHandler) CreateDiscount(c *gin.Context) {
	var req createDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	d, err := h.discounts.CreateDiscount(c.Request.Context(), application.CreateDiscountRequest{
		Code:             req.Code,
		Type:             discount.Type(req.Type),
		ValueType:        discount.ValueType(req.ValueType),
		Value:            req.Value,
		RoomTypeIDs:      req.RoomTypeIDs,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		MinBookingAmount: req.MinBookingAmount,
		MaxDiscount:      req.MaxDiscount,
		Stackable:        req.Stackable,
		MembershipLevel:  req.MembershipLevel,
		MinSpending:      req.MinSpending,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toDiscountDTO(d))
}

// DeactivateDiscount handles DELETE /api/v1/admin/discounts/:id
func (h *AdminHandler) DeactivateDiscount(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid discount ID")
		return
	}

	if err := h.discounts.Deactivate(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"deactivated": true})
}
