package simulator

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietddude/orderpipe/internal/core/domain"
)

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestValidateNormalMode(t *testing.T) {
	inj := New(domain.ModeNormal)
	srv := httptest.NewServer(inj.Handler())
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/validate",
		map[string]any{"order_id": "o1", "product": "widget", "quantity": 2})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		OrderID string `json:"order_id"`
		Valid   bool   `json:"valid"`
		Message string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "o1", body.OrderID)
	assert.True(t, body.Valid)
}

func TestValidateDownMode(t *testing.T) {
	inj := New(domain.ModeDown)
	srv := httptest.NewServer(inj.Handler())
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/validate", map[string]any{"order_id": "o1"})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestValidateErrorMode(t *testing.T) {
	inj := New(domain.ModeError)
	srv := httptest.NewServer(inj.Handler())
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/validate", map[string]any{"order_id": "o1"})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestValidateSlowModeDelays(t *testing.T) {
	inj := New(domain.ModeSlow)
	inj.SetSlowDelay(100 * time.Millisecond)
	srv := httptest.NewServer(inj.Handler())
	defer srv.Close()

	start := time.Now()
	resp := postJSON(t, srv.URL+"/validate", map[string]any{"order_id": "o1"})
	elapsed := time.Since(start)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond)
}

func TestSetFailureModeSwitchesAtRuntime(t *testing.T) {
	inj := New(domain.ModeNormal)
	srv := httptest.NewServer(inj.Handler())
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/set_failure_mode", map[string]string{"mode": "down"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.ModeDown, inj.Mode())

	resp = postJSON(t, srv.URL+"/validate", map[string]any{"order_id": "o1"})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestSetFailureModeRejectsUnknownMode(t *testing.T) {
	inj := New(domain.ModeNormal)
	srv := httptest.NewServer(inj.Handler())
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/set_failure_mode", map[string]string{"mode": "chaos"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, domain.ModeNormal, inj.Mode())
}

func TestHealthReflectsDownMode(t *testing.T) {
	inj := New(domain.ModeNormal)
	srv := httptest.NewServer(inj.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	inj.SetMode(domain.ModeDown)
	resp, err = http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
