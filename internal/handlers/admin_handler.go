package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/coralbay-resort/booking-backend/internal/services"
)

// AdminHandler handles operational endpoints for background jobs
type AdminHandler struct {
	expirationSvc *services.ExpirationService
	cronSvc       *services.CronService
	logger        *logrus.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(
	expirationSvc *services.ExpirationService,
	cronSvc *services.CronService,
	logger *logrus.Logger,
) *AdminHandler {
	return &AdminHandler{
		expirationSvc: expirationSvc,
		cronSvc:       cronSvc,
		logger:        logger,
	}
}

// RunExpirationSweep triggers an expiration sweep immediately
// @Summary Run expiration sweep
// @Description Cancels pending bookings whose hold has lapsed and releases their capacity
// @Tags Admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /admin/jobs/expiration-sweep [post]
func (h *AdminHandler) RunExpirationSweep(c *gin.Context) {
	expired, err := h.expirationSvc.RunOnce()
	if err != nil {
		h.logger.WithError(err).Error("Manual expiration sweep failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sweep_failed", "message": "expiration sweep failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "expiration sweep completed",
		"expired_count": expired,
	})
}

// RunReminder24h triggers the day-before reminder job immediately
// @Summary Run 24h reminder job
// @Tags Admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /admin/jobs/reminder-24h [post]
func (h *AdminHandler) RunReminder24h(c *gin.Context) {
	sent, err := h.cronSvc.RunReminder24hNow()
	if err != nil {
		h.logger.WithError(err).Error("Manual 24h reminder job failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "job_failed", "message": "24h reminder job failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "24h reminder job completed", "sent": sent})
}

// RunReminder1h triggers the final reminder job immediately
// @Summary Run 1h reminder job
// @Tags Admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /admin/jobs/reminder-1h [post]
func (h *AdminHandler) RunReminder1h(c *gin.Context) {
	sent, err := h.cronSvc.RunReminder1hNow()
	if err != nil {
		h.logger.WithError(err).Error("Manual 1h reminder job failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "job_failed", "message": "1h reminder job failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "1h reminder job completed", "sent": sent})
}

// GetJobStatus returns the status of scheduled jobs
// @Summary Get scheduled job status
// @Tags Admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /admin/jobs [get]
func (h *AdminHandler) GetJobStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.cronSvc.GetJobStatus())
}
