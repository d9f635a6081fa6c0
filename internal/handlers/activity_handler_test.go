package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coralbay-resort/booking-backend/internal/database"
	"github.com/coralbay-resort/booking-backend/internal/models"
)

func newTestRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	sqlxDB := sqlx.NewDb(db, "sqlmock")

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	handler := NewActivityHandler(
		database.NewActivityRepository(sqlxDB),
		database.NewTimeSlotRepository(sqlxDB),
		logger,
	)

	router := gin.New()
	router.GET("/activities", handler.ListActivities)
	router.GET("/activities/:activity_id", handler.GetActivity)
	router.GET("/activities/:activity_id/availability", handler.GetAvailability)
	return router, mock
}

func activityRow(id uuid.UUID) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "name", "slug", "description", "category", "price", "currency",
		"duration_minutes", "capacity_per_slot", "location",
		"pending_hold_minutes", "cancellation_deadline_hours",
		"is_active", "created_at", "updated_at",
	}).AddRow(
		id, "Sunset Kayak Tour", "sunset-kayak-tour", "", "watersports", 45.50, "USD",
		120, 8, "North Beach", 30, 24, true, now, now,
	)
}

func TestListActivities(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		router, mock := newTestRouter(t)

		mock.ExpectQuery(`SELECT (.+) FROM activities`).
			WillReturnRows(activityRow(uuid.New()))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/activities", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, float64(1), body["count"])
	})

	t.Run("Invalid Category", func(t *testing.T) {
		router, _ := newTestRouter(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/activities?category=golf", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetActivityEndpoint(t *testing.T) {
	t.Run("Not Found", func(t *testing.T) {
		router, mock := newTestRouter(t)
		activityID := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM activities`).
			WithArgs(activityID).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/activities/"+activityID.String(), nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "activity_not_found", body["error"])
	})

	t.Run("Invalid ID", func(t *testing.T) {
		router, _ := newTestRouter(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/activities/not-a-uuid", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetAvailabilityEndpoint(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		router, mock := newTestRouter(t)
		activityID := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM activities`).
			WithArgs(activityID).
			WillReturnRows(activityRow(activityID))

		slotRows := sqlmock.NewRows([]string{
			"id", "activity_id", "start_time", "end_time",
			"capacity", "booked_count", "is_available", "created_at",
		}).AddRow(uuid.New(), activityID, time.Now().Add(time.Hour), time.Now().Add(2*time.Hour), 8, 3, true, time.Now())

		mock.ExpectQuery(`SELECT (.+) FROM time_slots`).
			WillReturnRows(slotRows)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/activities/"+activityID.String()+"/availability", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, float64(1), body["count"])
	})

	t.Run("Bad Range", func(t *testing.T) {
		router, mock := newTestRouter(t)
		activityID := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM activities`).
			WithArgs(activityID).
			WillReturnRows(activityRow(activityID))

		w := httptest.NewRecorder()
		url := fmt.Sprintf("/activities/%s/availability?from=2026-09-10T00:00:00Z&to=2026-09-01T00:00:00Z", activityID)
		req := httptest.NewRequest(http.MethodGet, url, nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRespondErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err    error
		status int
		code   string
	}{
		{models.ErrBookingNotFound, http.StatusNotFound, "booking_not_found"},
		{models.ErrForbidden, http.StatusForbidden, "forbidden"},
		{models.ErrCapacityExceeded, http.StatusConflict, "capacity_exceeded"},
		{models.ErrBookingExpired, http.StatusConflict, "booking_expired"},
		{models.ErrCancellationWindowClosed, http.StatusConflict, "cancellation_window_closed"},
		{models.ErrInvalidParticipants, http.StatusBadRequest, "invalid_participants"},
		{fmt.Errorf("unexpected"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondError(c, tc.err)

			assert.Equal(t, tc.status, w.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.code, body["error"])
		})
	}
}
