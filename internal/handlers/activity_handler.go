package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/coralbay-resort/booking-backend/internal/database"
	"github.com/coralbay-resort/booking-backend/internal/models"
)

// ActivityHandler handles activity catalog and availability endpoints
type ActivityHandler struct {
	activities *database.ActivityRepository
	slots      *database.TimeSlotRepository
	logger     *logrus.Logger
}

// NewActivityHandler creates a new ActivityHandler
func NewActivityHandler(
	activities *database.ActivityRepository,
	slots *database.TimeSlotRepository,
	logger *logrus.Logger,
) *ActivityHandler {
	return &ActivityHandler{
		activities: activities,
		slots:      slots,
		logger:     logger,
	}
}

// ListActivities returns the active activity catalog
// @Summary List activities
// @Description Returns active activities, optionally filtered by category
// @Tags Activities
// @Produce json
// @Param category query string false "Activity category"
// @Success 200 {object} map[string]interface{}
// @Router /activities [get]
func (h *ActivityHandler) ListActivities(c *gin.Context) {
	var category *models.ActivityCategory
	if raw := c.Query("category"); raw != "" {
		cat := models.ActivityCategory(raw)
		if !cat.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_category", "message": "unknown activity category"})
			return
		}
		category = &cat
	}

	activities, err := h.activities.List(category)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list activities")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"activities": activities,
		"count":      len(activities),
	})
}

// GetActivity returns a single activity by ID
// @Summary Get activity
// @Tags Activities
// @Produce json
// @Param activity_id path string true "Activity ID"
// @Success 200 {object} models.Activity
// @Failure 404 {object} map[string]interface{} "Activity not found"
// @Router /activities/{activity_id} [get]
func (h *ActivityHandler) GetActivity(c *gin.Context) {
	activityID, err := uuid.Parse(c.Param("activity_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_activity_id", "message": "invalid activity_id"})
		return
	}

	activity, err := h.activities.GetActivity(activityID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, activity)
}

// GetAvailability returns an activity's open future slots in a date range
// @Summary Get slot availability
// @Description Returns open future time slots with remaining capacity
// @Tags Activities
// @Produce json
// @Param activity_id path string true "Activity ID"
// @Param from query string false "Range start (RFC 3339, default now)"
// @Param to query string false "Range end (RFC 3339, default now+7d)"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{} "Activity not found"
// @Router /activities/{activity_id}/availability [get]
func (h *ActivityHandler) GetAvailability(c *gin.Context) {
	activityID, err := uuid.Parse(c.Param("activity_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_activity_id", "message": "invalid activity_id"})
		return
	}

	if _, err := h.activities.GetActivity(activityID); err != nil {
		respondError(c, err)
		return
	}

	now := time.Now()
	from := now
	to := now.Add(7 * 24 * time.Hour)

	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_range", "message": "from must be RFC 3339"})
			return
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_range", "message": "to must be RFC 3339"})
			return
		}
		to = parsed
	}
	if to.Before(from) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_range", "message": "to must not precede from"})
		return
	}

	slots, err := h.slots.GetAvailability(activityID, from, to)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list availability")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"activity_id": activityID,
		"from":        from,
		"to":          to,
		"time_slots":  slots,
		"count":       len(slots),
	})
}
