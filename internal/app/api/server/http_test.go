package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	cfgpkg "github.com/toylink/donations/pkg/config"
)

func TestRegisterRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &cfgpkg.Config{CORS: cfgpkg.CORSConfig{AllowOrigins: []string{"https://toylink.test"}}}
	r := newEngine(cfg)
	registerRoutes(r, routeDeps{Log: zap.NewNop().Sugar(), Cfg: cfg})

	paths := map[string]bool{}
	for _, rt := range r.Routes() {
		paths[rt.Method+" "+rt.Path] = true
	}
	require.True(t, paths["GET /healthz"])
	require.True(t, paths["GET /swagger/*any"])
	require.True(t, paths["POST /api/v1/donations"])
	require.True(t, paths["POST /api/v1/webhook/mercadopago"])
	require.True(t, paths["GET /api/v1/admin/dashboard"])

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://toylink.test")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "https://toylink.test", w.Header().Get("Access-Control-Allow-Origin"))
	require.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
