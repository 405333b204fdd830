package partner

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

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
	api := r.Group("/api/v1")
	RegisterPublicRoutes(api, h)
	RegisterPartnerRoutes(api, h)
	RegisterAdminRoutes(api.Group("/admin"), h)
	return r, f
}

func call(r *gin.Engine, method, path string, userID int64, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID > 0 {
		req.Header.Set("X-Test-User-ID", strconv.FormatInt(userID, 10))
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestPartnerProgramEndpoints(t *testing.T) {
	r, f := setupTestRouter(t)

	rr := call(r, http.MethodPost, "/api/v1/partners/applications", 0, map[string]any{
		"full_name": "Mariam Sawadogo",
		"phone":     "+22676000000",
		"email":     "mariam@example.com",
		"id_number": "B999",
		"region_id": f.region.ID,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created struct {
		Data struct {
			ID int64 `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))

	rr = call(r, http.MethodPost, "/api/v1/partners/applications", 0, map[string]any{"full_name": "x"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = call(r, http.MethodPost, fmt.Sprintf("/api/v1/admin/partners/applications/%d/approve", created.Data.ID), 1, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var approved struct {
		Data Activation `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &approved))
	partnerUser := approved.Data.Partner.UserID

	rr = call(r, http.MethodPost, "/api/v1/partner/contracts", partnerUser, map[string]any{
		"client_name":     "Mairie",
		"client_type":     "institution",
		"contract_amount": 1000000,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var contract struct {
		Data Contract `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &contract))
	assert.Equal(t, int64(200000), contract.Data.CommissionAmount)

	rr = call(r, http.MethodPost, "/api/v1/partner/contracts", 9999, map[string]any{
		"client_name": "X", "client_type": "company", "contract_amount": 1,
	})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = call(r, http.MethodGet, "/api/v1/admin/partners/contracts", 1, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = call(r, http.MethodPost, fmt.Sprintf("/api/v1/admin/partners/contracts/%d/validate", contract.Data.ID), 1, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = call(r, http.MethodPost, fmt.Sprintf("/api/v1/admin/partners/contracts/%d/validate", contract.Data.ID), 1, nil)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = call(r, http.MethodPost, fmt.Sprintf("/api/v1/admin/partners/%d/payments", approved.Data.Partner.ID), 1, map[string]any{
		"amount": 500000, "payment_method": "cash",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = call(r, http.MethodGet, "/api/v1/partner/dashboard", partnerUser, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var dash struct {
		Data Dashboard `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &dash))
	assert.Equal(t, int64(200000), dash.Data.PendingCommission)
	assert.Equal(t, "BF-OUAG-001", dash.Data.Partner.Code)

	rr = call(r, http.MethodGet, "/api/v1/admin/partners/top", 1, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}
