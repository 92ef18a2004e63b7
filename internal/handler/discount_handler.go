package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Dton04/BookingHotel-sub000/internal/application"
	"github.com/Dton04/BookingHotel-sub000/internal/auth"
	"github.com/Dton04/BookingHotel-sub000/internal/domain/discount"
	"github.com/Dton04/BookingHotel-sub000/internal/middleware"
	"github.com/Dton04/BookingHotel-sub000/internal/response"
)

// DiscountHandler handles HTTP requests for discount evaluation and the
// guest-facing catalog.
type DiscountHandler struct {
	service *application.DiscountService
}

// NewDiscountHandler creates a new DiscountHandler.
func NewDiscountHandler(service *application.DiscountService) *DiscountHandler {
	return &DiscountHandler{service: service}
}

// RegisterRoutes registers all discount routes on the given router group.
func (h *DiscountHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	discounts := r.Group("/discounts")
	discounts.Use(middleware.AuthMiddleware(jwtManager))
	{
		discounts.GET("/active", h.ListActive)
		discounts.GET("/code/:code", h.GetByCode)
		discounts.POST("/validate", h.Validate)
	}

	// Applying discounts re-prices a booking, so the route lives under
	// the booking resource.
	r.POST("/bookings/:id/discounts", middleware.AuthMiddleware(jwtManager), h.ApplyToBooking)
}

// DiscountDTO is the wire shape of a discount.
type DiscountDTO struct {
	ID               uuid.UUID   `json:"id"`
	Code             string      `json:"code,omitempty"`
	Type             string      `json:"type"`
	ValueType        string      `json:"value_type"`
	Value            int64       `json:"value"`
	RoomTypeIDs      []uuid.UUID `json:"room_type_ids,omitempty"`
	StartDate        time.Time   `json:"start_date"`
	EndDate          time.Time   `json:"end_date"`
	MinBookingAmount int64       `json:"min_booking_amount,omitempty"`
	MaxDiscount      int64       `json:"max_discount,omitempty"`
	Stackable        bool        `json:"stackable"`
	MembershipLevel  int         `json:"membership_level,omitempty"`
	MinSpending      int64       `json:"min_spending,omitempty"`
}

func toDiscountDTO(d *discount.Discount) DiscountDTO {
	return DiscountDTO{
		ID:               d.ID(),
		Code:             d.Code(),
		Type:             string(d.Type()),
		ValueType:        string(d.ValueType()),
		Value:            d.Value(),
		RoomTypeIDs:      d.RoomTypeIDs(),
		StartDate:        d.StartDate(),
		EndDate:          d.EndDate(),
		MinBookingAmount: d.MinBookingAmount(),
		MaxDiscount:      d.MaxDiscount(),
		Stackable:        d.Stackable(),
		MembershipLevel:  d.MembershipLevel(),
		MinSpending:      d.MinSpending(),
	}
}

// ListActive handles GET /api/v1/discounts/active
func (h *DiscountHandler) ListActive(c *gin.Context) {
	active, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	dtos := make([]DiscountDTO, 0, len(active))
	for _, d := range active {
		dtos = append(dtos, toDiscountDTO(d))
	}
	response.Success(c, dtos)
}

// GetByCode handles GET /api/v1/discounts/code/:code
func (h *DiscountHandler) GetByCode(c *gin.Context) {
	d, err := h.service.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, toDiscountDTO(d))
}

type applyDiscountsRequest struct {
	Codes []string `json:"codes"`
}

type validateDiscountsRequest struct {
	Codes      []string  `json:"codes"`
	Amount     int64     `json:"amount" binding:"required,gt=0"`
	RoomTypeID uuid.UUID `json:"room_type_id" binding:"required"`
	GuestEmail string    `json:"guest_email" binding:"required,email"`
}

// Validate handles POST /api/v1/discounts/validate. It previews the
// discounted price for a prospective booking without consuming anything.
func (h *DiscountHandler) Validate(c *gin.Context) {
	var req validateDiscountsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	res, err := h.service.Validate(c.Request.Context(), application.ValidateRequest{
		Codes:      req.Codes,
		Amount:     req.Amount,
		RoomTypeID: req.RoomTypeID,
		GuestEmail: req.GuestEmail,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, res)
}

// ApplyToBooking handles POST /api/v1/bookings/:id/discounts where :id
// is the booking to re-price.
func (h *DiscountHandler) ApplyToBooking(c *gin.Context) {
	bookingID, ok := parseID(c)
	if !ok {
		return
	}

	var req applyDiscountsRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		response.BadRequest(c, err.Error())
		return
	}

	res, err := h.service.ApplyToBooking(c.Request.Context(), bookingID, req.Codes)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, res)
}
