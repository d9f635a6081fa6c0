package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/coralbay-resort/booking-backend/internal/models"
	"github.com/coralbay-resort/booking-backend/internal/services"
)

// BookingHandler handles booking lifecycle endpoints
type BookingHandler struct {
	bookingService *services.BookingService
	logger         *logrus.Logger
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(bookingService *services.BookingService, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		logger:         logger,
	}
}

// requesterPhone resolves the opaque requester identifier for reads.
// Write operations carry it in the body instead.
func requesterPhone(c *gin.Context) (string, bool) {
	phone := c.GetHeader("X-User-Phone")
	if phone == "" {
		phone = c.Query("user_phone")
	}
	if phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_user_phone", "message": "user_phone is required"})
		return "", false
	}
	return phone, true
}

func bookingIDParam(c *gin.Context) (uuid.UUID, bool) {
	bookingID, err := uuid.Parse(c.Param("booking_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_booking_id", "message": "invalid booking_id"})
		return uuid.Nil, false
	}
	return bookingID, true
}

// CreateBooking creates a pending booking with a capacity hold
// @Summary Create booking
// @Description Reserves capacity and creates a pending booking with an expiring hold
// @Tags Bookings
// @Accept json
// @Produce json
// @Param request body models.CreateBookingRequest true "Booking request"
// @Success 201 {object} models.Booking
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Failure 409 {object} map[string]interface{} "Capacity exhausted or slot unavailable"
// @Router /bookings [post]
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	booking, err := h.bookingService.CreateBooking(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// GetBooking returns a booking owned by the requester
// @Summary Get booking
// @Tags Bookings
// @Produce json
// @Param booking_id path string true "Booking ID"
// @Param user_phone query string true "Requester phone"
// @Success 200 {object} models.Booking
// @Failure 403 {object} map[string]interface{} "Booking owned by another requester"
// @Failure 404 {object} map[string]interface{} "Booking not found"
// @Router /bookings/{booking_id} [get]
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, ok := bookingIDParam(c)
	if !ok {
		return
	}
	phone, ok := requesterPhone(c)
	if !ok {
		return
	}

	booking, err := h.bookingService.GetBooking(bookingID, phone)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// ListBookings returns the requester's bookings
// @Summary List bookings
// @Tags Bookings
// @Produce json
// @Param user_phone query string true "Requester phone"
// @Param status query string false "Filter by status"
// @Success 200 {object} map[string]interface{}
// @Router /bookings [get]
func (h *BookingHandler) ListBookings(c *gin.Context) {
	phone, ok := requesterPhone(c)
	if !ok {
		return
	}

	var status *models.BookingStatus
	if raw := c.Query("status"); raw != "" {
		st := models.BookingStatus(raw)
		if !st.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_status", "message": "unknown booking status"})
			return
		}
		status = &st
	}

	bookings, err := h.bookingService.ListBookings(phone, status)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list bookings")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// ConfirmBooking confirms a pending booking before its hold lapses
// @Summary Confirm booking
// @Description Transitions a pending booking to confirmed; idempotent for already-confirmed bookings
// @Tags Bookings
// @Accept json
// @Produce json
// @Param booking_id path string true "Booking ID"
// @Param request body models.ConfirmBookingRequest true "Confirm request"
// @Success 200 {object} models.Booking
// @Failure 403 {object} map[string]interface{} "Booking owned by another requester"
// @Failure 404 {object} map[string]interface{} "Booking not found"
// @Failure 409 {object} map[string]interface{} "Hold expired or invalid state"
// @Router /bookings/{booking_id}/confirm [post]
func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	bookingID, ok := bookingIDParam(c)
	if !ok {
		return
	}

	var req models.ConfirmBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	booking, err := h.bookingService.ConfirmBooking(bookingID, req.UserPhone)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// CancelBooking cancels a booking and releases its capacity
// @Summary Cancel booking
// @Description Cancels a pending or confirmed booking, subject to the cancellation deadline
// @Tags Bookings
// @Accept json
// @Produce json
// @Param booking_id path string true "Booking ID"
// @Param request body models.CancelBookingRequest true "Cancel request"
// @Success 200 {object} models.Booking
// @Failure 403 {object} map[string]interface{} "Booking owned by another requester"
// @Failure 404 {object} map[string]interface{} "Booking not found"
// @Failure 409 {object} map[string]interface{} "Deadline passed or invalid state"
// @Router /bookings/{booking_id}/cancel [post]
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	bookingID, ok := bookingIDParam(c)
	if !ok {
		return
	}

	var req models.CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	booking, err := h.bookingService.CancelBooking(bookingID, req.UserPhone, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// MarkCompleted records that the guest attended
// @Summary Mark booking completed
// @Tags Bookings
// @Produce json
// @Param booking_id path string true "Booking ID"
// @Success 200 {object} models.Booking
// @Failure 404 {object} map[string]interface{} "Booking not found"
// @Failure 409 {object} map[string]interface{} "Not confirmed or slot not elapsed"
// @Router /admin/bookings/{booking_id}/complete [post]
func (h *BookingHandler) MarkCompleted(c *gin.Context) {
	bookingID, ok := bookingIDParam(c)
	if !ok {
		return
	}

	booking, err := h.bookingService.MarkCompleted(bookingID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// MarkNoShow records that the guest did not attend
// @Summary Mark booking no-show
// @Tags Bookings
// @Produce json
// @Param booking_id path string true "Booking ID"
// @Success 200 {object} models.Booking
// @Failure 404 {object} map[string]interface{} "Booking not found"
// @Failure 409 {object} map[string]interface{} "Not confirmed or slot not elapsed"
// @Router /admin/bookings/{booking_id}/no-show [post]
func (h *BookingHandler) MarkNoShow(c *gin.Context) {
	bookingID, ok := bookingIDParam(c)
	if !ok {
		return
	}

	booking, err := h.bookingService.MarkNoShow(bookingID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}
