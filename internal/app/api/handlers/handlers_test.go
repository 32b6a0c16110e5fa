package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/toylink/donations/internal/app/service/admin"
	"github.com/toylink/donations/internal/app/service/donation"
	"github.com/toylink/donations/internal/app/service/payment"
	"github.com/toylink/donations/internal/app/service/statistics"
	"github.com/toylink/donations/internal/app/service/webhook"
	"github.com/toylink/donations/internal/models"
	"github.com/toylink/donations/pkg/types"
)

type stubDonations struct {
	createErr  error
	warning    string
	getErr     error
	confirmErr error
}

func (s *stubDonations) CreateDonation(_ context.Context, req *donation.CreateDonationRequest) (*donation.CreateDonationResult, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &donation.CreateDonationResult{
		Payment: &models.Payment{ID: 42, Amount: decimal.RequireFromString(req.Amount), Status: types.PaymentStatusPending},
		Warning: s.warning,
	}, nil
}

func (s *stubDonations) GetDonation(_ context.Context, id uint) (*models.Payment, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return &models.Payment{ID: id, Status: types.PaymentStatusPending}, nil
}

func (s *stubDonations) ConfirmStatus(_ context.Context, id uint) (*donation.ConfirmResult, error) {
	if s.confirmErr != nil {
		return nil, s.confirmErr
	}
	return &donation.ConfirmResult{Payment: &models.Payment{ID: id, Status: types.PaymentStatusApproved}, Level: donation.ConfirmLevelSuccess, Message: "payment approved, thank you for your donation!"}, nil
}

type stubWebhook struct {
	method string
	body   string
}

func (s *stubWebhook) Handle(_ context.Context, method string, body []byte) webhook.Outcome {
	s.method, s.body = method, string(body)
	if method != http.MethodPost {
		return webhook.Outcome{HTTPStatus: http.StatusMethodNotAllowed, Body: "method not allowed"}
	}
	return webhook.Outcome{HTTPStatus: http.StatusOK, Body: "OK"}
}

type stubAuth struct{}

func (stubAuth) Login(_ context.Context, email, password string) (*admin.LoginResponse, error) {
	if email == "admin@toylink.test" && password == "pw" {
		return &admin.LoginResponse{Token: "good"}, nil
	}
	return nil, admin.ErrInvalidCredentials
}

func (stubAuth) ParseToken(token string) (string, error) {
	if token == "good" {
		return "admin-1", nil
	}
	return "", admin.ErrInvalidToken
}

type stubDashboard struct {
	last *statistics.DashboardRequest
}

func (s *stubDashboard) GetDashboard(_ context.Context, req *statistics.DashboardRequest) (*statistics.DashboardResponse, error) {
	s.last = req
	if req.Status == "paid" {
		return nil, fmt.Errorf("%w: unknown status", payment.ErrValidation)
	}
	return &statistics.DashboardResponse{Page: 1, PageSize: 20, Aggregates: statistics.Aggregates{ApprovedCount: 2}}, nil
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func doJSON(r http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestApiCreateDonation(t *testing.T) {
	r := newRouter()
	svc := &stubDonations{warning: "donation registered, but PIX generation failed: down"}
	RegisterDonationRoutes(r.Group("/api/v1/donations"), svc)

	w := doJSON(r, http.MethodPost, "/api/v1/donations", map[string]any{"amount": "25.50", "category": "toys"})
	require.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		Code int                    `json:"code"`
		Data CreateDonationResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 0, resp.Code)
	require.Equal(t, "/donations/42", resp.Data.WaitingURL)
	require.Contains(t, resp.Data.Warning, "PIX generation failed")

	svc.createErr = fmt.Errorf("%w: invalid amount", payment.ErrValidation)
	w = doJSON(r, http.MethodPost, "/api/v1/donations", map[string]any{"amount": "abc"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "invalid amount")
}

func TestApiGetAndConfirmDonation(t *testing.T) {
	r := newRouter()
	svc := &stubDonations{}
	RegisterDonationRoutes(r.Group("/api/v1/donations"), svc)

	w := doJSON(r, http.MethodGet, "/api/v1/donations/7", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"id":7`)

	w = doJSON(r, http.MethodGet, "/api/v1/donations/abc", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/api/v1/donations/7/confirm", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"level":"success"`)

	svc.getErr = fmt.Errorf("%w: id 8", payment.ErrNotFound)
	w = doJSON(r, http.MethodGet, "/api/v1/donations/8", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	svc.confirmErr = fmt.Errorf("%w: timeout", payment.ErrProvider)
	w = doJSON(r, http.MethodPost, "/api/v1/donations/7/confirm", nil)
	require.Equal(t, http.StatusBadGateway, w.Code)

	svc.confirmErr = errors.New("boom")
	w = doJSON(r, http.MethodPost, "/api/v1/donations/7/confirm", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestApiMercadoPagoWebhook(t *testing.T) {
	r := newRouter()
	h := &stubWebhook{}
	RegisterWebhookRoutes(r.Group("/api/v1/webhook"), h, zap.NewNop().Sugar())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook/mercadopago", strings.NewReader(`{"topic":"payment","resource":"1"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "OK", w.Body.String())
	require.Equal(t, `{"topic":"payment","resource":"1"}`, h.body)
	require.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/webhook/mercadopago", nil))
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	require.Equal(t, http.MethodGet, h.method)
}

func TestAdminRoutes(t *testing.T) {
	r := newRouter()
	dash := &stubDashboard{}
	RegisterAdminRoutes(r.Group("/api/v1/admin"), stubAuth{}, dash)

	w := doJSON(r, http.MethodPost, "/api/v1/admin/login", map[string]string{"email": "admin@toylink.test", "password": "pw"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"token":"good"`)

	w = doJSON(r, http.MethodPost, "/api/v1/admin/login", map[string]string{"email": "admin@toylink.test", "password": "nope"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodPost, "/api/v1/admin/login", map[string]string{"email": "admin@toylink.test"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodGet, "/api/v1/admin/dashboard", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Nil(t, dash.last)

	w = doJSON(r, http.MethodGet, "/api/v1/admin/dashboard?status=approved&category=toys&page=2", nil, "Authorization", "Bearer good")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, &statistics.DashboardRequest{Status: "approved", Category: "toys", Page: "2"}, dash.last)
	require.Contains(t, w.Body.String(), `"approved_count":2`)

	w = doJSON(r, http.MethodGet, "/api/v1/admin/dashboard?status=paid", nil, "Authorization", "Bearer good")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApiHealthz(t *testing.T) {
	r := newRouter()
	RegisterHealthRoutes(r, nil)
	w := doJSON(r, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)

	r = newRouter()
	RegisterHealthRoutes(r, func(context.Context) error { return errors.New("db down") })
	w = doJSON(r, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Contains(t, w.Body.String(), "db down")
}

func TestRegisterRoutes_RegistersEndpoints(t *testing.T) {
	r := newRouter()
	RegisterHealthRoutes(r, nil)
	RegisterDonationRoutes(r.Group("/api/v1/donations"), nil)
	RegisterWebhookRoutes(r.Group("/api/v1/webhook"), nil, nil)
	RegisterAdminRoutes(r.Group("/api/v1/admin"), nil, nil)

	routes := r.Routes()
	contains := func(target string) bool {
		for _, rt := range routes {
			if rt.Method+" "+rt.Path == target {
				return true
			}
		}
		return false
	}

	require.True(t, contains("GET /healthz"))
	require.True(t, contains("POST /api/v1/donations"))
	require.True(t, contains("GET /api/v1/donations/:id"))
	require.True(t, contains("POST /api/v1/donations/:id/confirm"))
	require.True(t, contains("POST /api/v1/webhook/mercadopago"))
	require.True(t, contains("GET /api/v1/webhook/mercadopago"))
	require.True(t, contains("POST /api/v1/admin/login"))
	require.True(t, contains("GET /api/v1/admin/dashboard"))
}
