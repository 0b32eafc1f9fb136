package auth_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHealthEndpoints(t *testing.T) {
	baseURL := setupAuthContainer(t)

	resp := doJSON(t, http.MethodGet, baseURL+"/livez", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[map[string]any](t, resp)
	require.Equal(t, "ok", body["status"])

	resp = doJSON(t, http.MethodGet, baseURL+"/readyz", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody[map[string]any](t, resp)
	require.Equal(t, "ok", body["status"])
}
