package maintenance

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"courtsync/core/clock"
	resmodels "courtsync/feature/reservation/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestApp(t *testing.T, name string, devMode bool) (*fiber.App, *gorm.DB) {
	db := setupTestDB(t, name)
	clk := clock.New(db, devMode)
	svc := NewService(db, clk, zap.NewNop(), nil)

	app := fiber.New()
	NewHandler(svc, clk, devMode, zap.NewNop()).RegisterRoutes(app)
	return app, db
}

func TestHandleRun(t *testing.T) {
	app, db := setupTestApp(t, "handler_run", false)

	// Expired e-wallet booking so the report carries a nonzero count.
	db.Create(&resmodels.Reservation{
		ID:            "r1",
		Status:        resmodels.StatusPendingPayment,
		PaymentMethod: resmodels.PaymentEWallet,
		CreatedAt:     time.Now().UTC().Add(-30 * time.Minute),
		StartTime:     time.Now().UTC().Add(time.Hour),
		EndTime:       time.Now().UTC().Add(2 * time.Hour),
	})

	req := httptest.NewRequest("POST", "/maintenance/run", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var report Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.True(t, report.Success)
	assert.Equal(t, 1, report.Reservations.Expired)

	var r resmodels.Reservation
	require.NoError(t, db.First(&r, "id = ?", "r1").Error)
	assert.Equal(t, resmodels.StatusCancelled, r.Status)
}

func TestHandleRun_GetAlias(t *testing.T) {
	app, _ := setupTestApp(t, "handler_run_get", false)

	resp, err := app.Test(httptest.NewRequest("GET", "/maintenance/run", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestHandleGetTime(t *testing.T) {
	app, _ := setupTestApp(t, "handler_gettime", true)

	resp, err := app.Test(httptest.NewRequest("GET", "/dev/time", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, float64(0), body["offset_ms"])
	assert.Contains(t, body, "now")
	assert.Contains(t, body, "real_time")
}

func TestHandleGetTime_ForbiddenInProduction(t *testing.T) {
	app, _ := setupTestApp(t, "handler_gettime_prod", false)

	resp, err := app.Test(httptest.NewRequest("GET", "/dev/time", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestHandleSetTime_Offset(t *testing.T) {
	app, _ := setupTestApp(t, "handler_settime", true)

	payload := []byte(`{"offset_ms": 86400000}`)
	req := httptest.NewRequest("POST", "/dev/time", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, float64(86400000), body["offset_ms"])

	// The offset persists and is visible on subsequent reads.
	resp, err = app.Test(httptest.NewRequest("GET", "/dev/time", nil))
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, float64(86400000), body["offset_ms"])
}

func TestHandleSetTime_TargetTime(t *testing.T) {
	app, _ := setupTestApp(t, "handler_settime_target", true)

	target := time.Now().UTC().Add(48 * time.Hour).Format(time.RFC3339)
	payload := []byte(`{"target_time": "` + target + `"}`)
	req := httptest.NewRequest("POST", "/dev/time", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	// time.Until runs between request build and handling, so accept a
	// small drift below the full 48h.
	offsetMs, ok := body["offset_ms"].(float64)
	require.True(t, ok)
	assert.InDelta(t, (48 * time.Hour).Milliseconds(), offsetMs, float64((5 * time.Second).Milliseconds()))
}

func TestHandleSetTime_Reset(t *testing.T) {
	app, _ := setupTestApp(t, "handler_settime_reset", true)

	payload := []byte(`{"offset_ms": 3600000}`)
	req := httptest.NewRequest("POST", "/dev/time", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	_, err := app.Test(req)
	require.NoError(t, err)

	req = httptest.NewRequest("POST", "/dev/time", bytes.NewReader([]byte(`{"reset": true}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, float64(0), body["offset_ms"])
}

func TestHandleSetTime_BadRequests(t *testing.T) {
	app, _ := setupTestApp(t, "handler_settime_bad", true)

	cases := []struct {
		name    string
		payload string
	}{
		{"empty body", `{}`},
		{"invalid target_time", `{"target_time": "tomorrow"}`},
		{"malformed json", `{"offset_ms": `},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/dev/time", bytes.NewReader([]byte(tc.payload)))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestHandleSetTime_ForbiddenInProduction(t *testing.T) {
	app, _ := setupTestApp(t, "handler_settime_prod", false)

	payload := []byte(`{"offset_ms": 1000}`)
	req := httptest.NewRequest("POST", "/dev/time", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
