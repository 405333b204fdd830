package reservation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRouter(t *testing.T) (*gin.Engine, *fixture) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := setup(t)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if raw := c.GetHeader("X-Test-User-ID"); raw != "" {
			id, _ := strconv.ParseInt(raw, 10, 64)
			c.Set("user_id", id)
		}
		c.Next()
	})
	h := NewHandler(f.svc, 20)
	RegisterRoutes(r.Group("/api/v1"), h)
	RegisterAdminRoutes(r.Group("/api/v1/admin"), h)
	return r, f
}

func doJSON(r *gin.Engine, method, path string, userID int64, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User-ID", strconv.FormatInt(userID, 10))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestStudioReservationEndpoint_Conflict(t *testing.T) {
	r, f := setupTestRouter(t)
	path := fmt.Sprintf("/api/v1/studios/%d/reservations", f.studio.ID)

	body := func(from, to int) map[string]any {
		return map[string]any{
			"contact_name":  "Awa Koné",
			"contact_email": "awa@example.com",
			"start_at":      f.day.Add(time.Duration(from) * time.Hour).Format(time.RFC3339),
			"end_at":        f.day.Add(time.Duration(to) * time.Hour).Format(time.RFC3339),
		}
	}

	rr := doJSON(r, http.MethodPost, path, 1, body(10, 12))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = doJSON(r, http.MethodPost, path, 2, body(11, 13))
	require.Equal(t, http.StatusConflict, rr.Code)
	var errResp struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &errResp))
	assert.False(t, errResp.Success)
	assert.Equal(t, "SLOT_TAKEN", errResp.Error.Code)
	assert.Equal(t, "this slot is already booked for this studio", errResp.Error.Message)

	rr = doJSON(r, http.MethodPost, path, 2, body(13, 12))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSON(r, http.MethodPost, path, 2, map[string]any{"contact_name": "x"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAdminEndpoints(t *testing.T) {
	r, f := setupTestRouter(t)

	res, err := f.svc.CreateForStudio(t.Context(), 1, f.studio.ID, f.request(10, 12))
	require.NoError(t, err)

	rr := doJSON(r, http.MethodPatch, fmt.Sprintf("/api/v1/admin/reservations/%d", res.ID), 100,
		map[string]any{"status": "CONFIRMED", "note": "checked"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = doJSON(r, http.MethodGet, fmt.Sprintf("/api/v1/admin/reservations/%d", res.ID), 100, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var detail struct {
		Data Detail `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &detail))
	assert.Equal(t, StatusConfirmed, detail.Data.Reservation.Status)
	assert.Len(t, detail.Data.History, 2)

	rr = doJSON(r, http.MethodGet, "/api/v1/admin/reservations?status=CONFIRMED&date_from="+f.day.Format("2006-01-02"), 100, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list struct {
		Data struct {
			Total int64 `json:"total"`
			Stats Stats `json:"stats"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Equal(t, int64(1), list.Data.Total)
	assert.Equal(t, int64(1), list.Data.Stats.Upcoming)

	rr = doJSON(r, http.MethodGet, "/api/v1/admin/reservations?date_from=yesterday", 100, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSON(r, http.MethodPost, fmt.Sprintf("/api/v1/admin/reservations/%d/cancel", res.ID), 100, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(r, http.MethodGet, "/api/v1/admin/reservations/999", 100, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = doJSON(r, http.MethodGet, fmt.Sprintf("/api/v1/reservations/mine/%d", res.ID), 2, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}
