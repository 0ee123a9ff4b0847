package api_test

import (
	"io"
	"net/http"
	"testing"

	_ "github.com/dom/reader/docs"
	"github.com/dom/reader/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter_PublicEndpoints(t *testing.T) {
	ts := testutil.NewTestServer(t)

	tests := []struct {
		name         string
		path         string
		wantContains string
	}{
		{name: "health", path: "/health", wantContains: "OK"},
		{name: "openapi document", path: "/swagger/doc.json", wantContains: "/readbooks/Create"},
		{name: "swagger ui", path: "/swagger/index.html", wantContains: "swagger-ui"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(ts.BaseURL() + tt.path)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Contains(t, string(body), tt.wantContains)
		})
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	cfg := testutil.TestConfig()
	cfg.CORSAllowedOrigin = "http://localhost:4200"
	ts := testutil.NewTestServerWithConfig(t, cfg)

	req, err := http.NewRequest(http.MethodOptions, ts.APIURL("/auth/login"), nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:4200")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp := testutil.Do(t, req)
	assert.Equal(t, "http://localhost:4200", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Less(t, resp.StatusCode, 300)
}
