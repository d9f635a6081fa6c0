package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coralbay-resort/booking-backend/internal/models"
)

// errorStatus maps a domain error to its HTTP status and machine-readable
// error code. Unmapped errors surface as 500 without leaking internals.
var errorStatus = map[error]struct {
	status int
	code   string
}{
	models.ErrActivityNotFound:         {http.StatusNotFound, "activity_not_found"},
	models.ErrSlotNotFound:             {http.StatusNotFound, "time_slot_not_found"},
	models.ErrBookingNotFound:          {http.StatusNotFound, "booking_not_found"},
	models.ErrInvalidParticipants:      {http.StatusBadRequest, "invalid_participants"},
	models.ErrActivityInactive:         {http.StatusBadRequest, "activity_inactive"},
	models.ErrCapacityExceeded:         {http.StatusConflict, "capacity_exceeded"},
	models.ErrSlotExpired:              {http.StatusConflict, "time_slot_expired"},
	models.ErrSlotClosed:               {http.StatusConflict, "time_slot_closed"},
	models.ErrInvalidState:             {http.StatusConflict, "invalid_state"},
	models.ErrBookingExpired:           {http.StatusConflict, "booking_expired"},
	models.ErrCancellationWindowClosed: {http.StatusConflict, "cancellation_window_closed"},
	models.ErrForbidden:                {http.StatusForbidden, "forbidden"},
}

// respondError writes the JSON error response for a domain error
func respondError(c *gin.Context, err error) {
	for sentinel, mapping := range errorStatus {
		if errors.Is(err, sentinel) {
			c.JSON(mapping.status, gin.H{
				"error":   mapping.code,
				"message": sentinel.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "internal_error",
		"message": "an internal error occurred",
	})
}
