package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Dton04/BookingHotel-sub000/internal/application"
	"github.com/Dton04/BookingHotel-sub000/internal/auth"
	"github.com/Dton04/BookingHotel-sub000/internal/domain/booking"
	"github.com/Dton04/BookingHotel-sub000/internal/middleware"
	"github.com/Dton04/BookingHotel-sub000/internal/response"
)

// BookingHandler handles HTTP requests for the booking lifecycle.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	bookings := r.Group("/bookings")
	bookings.Use(middleware.AuthMiddleware(jwtManager))
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("/:id", h.GetBooking)
		bookings.GET("/:id/payment-deadline", h.CheckDeadline)
		bookings.POST("/:id/confirm", middleware.RequireRole(auth.RoleStaff), h.ConfirmBooking)
		bookings.POST("/:id/cancel", h.CancelBooking)
		bookings.POST("/:id/extend", h.ExtendStay)
		bookings.POST("/:id/reassign", middleware.RequireRole(auth.RoleStaff), h.ReassignRoom)
		bookings.POST("/:id/points", middleware.RequireRole(auth.RoleStaff), h.EarnPoints)
	}

	// Availability probing is open to unauthenticated guests.
	r.GET("/room-types/:id/availability", h.CheckAvailability)
}

// CheckAvailability handles GET /api/v1/room-types/:id/availability
func (h *BookingHandler) CheckAvailability(c *gin.Context) {
	roomTypeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid room type ID")
		return
	}

	checkin, err := time.Parse(time.RFC3339, c.Query("checkin"))
	if err != nil {
		response.BadRequest(c, "checkin must be RFC3339")
		return
	}
	checkout, err := time.Parse(time.RFC3339, c.Query("checkout"))
	if err != nil {
		response.BadRequest(c, "checkout must be RFC3339")
		return
	}
	guests, err := strconv.Atoi(c.DefaultQuery("guests", "1"))
	if err != nil || guests < 1 {
		response.BadRequest(c, "guests must be a positive integer")
		return
	}

	res, err := h.service.CheckAvailability(c.Request.Context(), roomTypeID, checkin, checkout, guests)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, res)
}

type createBookingRequest struct {
	RoomTypeID    uuid.UUID `json:"room_type_id" binding:"required"`
	GuestName     string    `json:"guest_name" binding:"required"`
	GuestEmail    string    `json:"guest_email" binding:"required"`
	GuestPhone    string    `json:"guest_phone"`
	Checkin       time.Time `json:"checkin" binding:"required"`
	Checkout      time.Time `json:"checkout" binding:"required"`
	Adults        int       `json:"adults" binding:"required,min=1"`
	Children      int       `json:"children" binding:"min=0"`
	PaymentMethod string    `json:"payment_method" binding:"required"`
}

// CreateBooking handles POST /api/v1/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	res, err := h.service.CreateBooking(c.Request.Context(), application.CreateBookingRequest{
		RoomTypeID:    req.RoomTypeID,
		GuestName:     req.GuestName,
		GuestEmail:    req.GuestEmail,
		GuestPhone:    req.GuestPhone,
		Checkin:       req.Checkin,
		Checkout:      req.Checkout,
		Adults:        req.Adults,
		Children:      req.Children,
		PaymentMethod: booking.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toEnvelopeDTO(res))
}

// GetBooking handles GET /api/v1/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	res, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toEnvelopeDTO(res))
}

// CheckDeadline handles GET /api/v1/bookings/:id/payment-deadline
func (h *BookingHandler) CheckDeadline(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	res, err := h.service.CheckPaymentDeadline(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, res)
}

// ConfirmBooking handles POST /api/v1/bookings/:id/confirm
func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	res, err := h.service.ConfirmBooking(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toEnvelopeDTO(res))
}

type cancelBookingRequest struct {
	Reason string `json:"reason"`
}

// CancelBooking handles POST /api/v1/bookings/:id/cancel
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req cancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		response.BadRequest(c, err.Error())
		return
	}

	res, err := h.service.CancelBooking(c.Request.Context(), id, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toEnvelopeDTO(res))
}

type extendStayRequest struct {
	NewCheckout time.Time `json:"new_checkout" binding:"required"`
}

// ExtendStay handles POST /api/v1/bookings/:id/extend
func (h *BookingHandler) ExtendStay(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req extendStayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	res, err := h.service.ExtendStay(c.Request.Context(), id, req.NewCheckout)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toEnvelopeDTO(res))
}

type reassignRoomRequest struct {
	NewRoomTypeID uuid.UUID `json:"new_room_type_id" binding:"required"`
}

// ReassignRoom handles POST /api/v1/bookings/:id/reassign
func (h *BookingHandler) ReassignRoom(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req reassignRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	res, err := h.service.ReassignRoom(c.Request.Context(), id, req.NewRoomTypeID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toEnvelopeDTO(res))
}

// EarnPoints handles POST /api/v1/bookings/:id/points. It is a retry
// path for points that could not be awarded during confirmation; posting
// twice for the same booking returns the stored prior result.
func (h *BookingHandler) EarnPoints(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	res, err := h.service.EarnPointsForBooking(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, res)
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return uuid.Nil, false
	}
	return id, true
}
