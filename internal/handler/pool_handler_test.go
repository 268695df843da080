package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ticketline/ticketline/internal/domain"
	"github.com/ticketline/ticketline/internal/pool"
	"github.com/ticketline/ticketline/pkg/response"
)

// MockPoolService is a mock implementation of PoolService for testing
type MockPoolService struct {
	ConfigureFunc    func(ctx context.Context, cfg *domain.EventConfiguration) (*domain.EventConfiguration, error)
	ReleaseFunc      func(ctx context.Context, vendorID string, count int) error
	PurchaseFunc     func(ctx context.Context, customerID string, requested int) (*pool.Purchased, error)
	StatusFunc       func() *pool.Status
	CachedStatusFunc func(ctx context.Context) (map[string]string, error)
	ReloadFunc       func(ctx context.Context) error
}

func (m *MockPoolService) Configure(ctx context.Context, cfg *domain.EventConfiguration) (*domain.EventConfiguration, error) {
	if m.ConfigureFunc != nil {
		return m.ConfigureFunc(ctx, cfg)
	}
	return cfg, nil
}

func (m *MockPoolService) Release(ctx context.Context, vendorID string, count int) error {
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(ctx, vendorID, count)
	}
	return nil
}

func (m *MockPoolService) Purchase(ctx context.Context, customerID string, requested int) (*pool.Purchased, error) {
	if m.PurchaseFunc != nil {
		return m.PurchaseFunc(ctx, customerID, requested)
	}
	return &pool.Purchased{}, nil
}

func (m *MockPoolService) Status() *pool.Status {
	if m.StatusFunc != nil {
		return m.StatusFunc()
	}
	return &pool.Status{}
}

func (m *MockPoolService) CachedStatus(ctx context.Context) (map[string]string, error) {
	if m.CachedStatusFunc != nil {
		return m.CachedStatusFunc(ctx)
	}
	return nil, nil
}

func (m *MockPoolService) Reload(ctx context.Context) error {
	if m.ReloadFunc != nil {
		return m.ReloadFunc(ctx)
	}
	return nil
}

func setupPoolRouter(svc *MockPoolService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	h := NewPoolHandler(svc)
	p := router.Group("/pool")
	{
		p.GET("/status", h.Status)
		p.POST("/configure", h.Configure)
		p.POST("/reload", h.Reload)
		p.POST("/release", h.Release)
		p.POST("/purchase", h.Purchase)
	}

	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, *response.Response) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var envelope response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return w, &envelope
}

func TestPoolHandlerConfigure(t *testing.T) {
	svc := &MockPoolService{
		ConfigureFunc: func(ctx context.Context, cfg *domain.EventConfiguration) (*domain.EventConfiguration, error) {
			cfg.ID = "cfg-1"
			return cfg, nil
		},
	}
	router := setupPoolRouter(svc)

	w, envelope := doJSON(t, router, http.MethodPost, "/pool/configure", gin.H{
		"event_name":              "go live fest",
		"max_capacity":            100,
		"ticket_release_rate":     10,
		"customer_retrieval_rate": 5,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, envelope.Success)
}

func TestPoolHandlerConfigureMissingFields(t *testing.T) {
	router := setupPoolRouter(&MockPoolService{})

	w, envelope := doJSON(t, router, http.MethodPost, "/pool/configure", gin.H{
		"event_name": "go live fest",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, envelope.Success)
}

func TestPoolHandlerConfigureInvalid(t *testing.T) {
	svc := &MockPoolService{
		ConfigureFunc: func(ctx context.Context, cfg *domain.EventConfiguration) (*domain.EventConfiguration, error) {
			return nil, domain.ErrInvalidConfiguration
		},
	}
	router := setupPoolRouter(svc)

	w, envelope := doJSON(t, router, http.MethodPost, "/pool/configure", gin.H{
		"event_name":              "go live fest",
		"max_capacity":            100,
		"ticket_release_rate":     10,
		"customer_retrieval_rate": 5,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "BAD_REQUEST", envelope.Error.Code)
}

func TestPoolHandlerPurchase(t *testing.T) {
	svc := &MockPoolService{
		PurchaseFunc: func(ctx context.Context, customerID string, requested int) (*pool.Purchased, error) {
			tickets := []*domain.Ticket{
				domain.NewTicket("v1", customerID, "go live fest"),
				domain.NewTicket("v1", customerID, "go live fest"),
			}
			return &pool.Purchased{Count: 2, Tickets: tickets}, nil
		},
	}
	router := setupPoolRouter(svc)

	w, envelope := doJSON(t, router, http.MethodPost, "/pool/purchase", gin.H{
		"customer_id": "c1",
		"count":       5,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	require.True(t, envelope.Success)

	data, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(5), data["requested"])
	assert.Equal(t, float64(2), data["purchased"])
}

func TestPoolHandlerPurchaseNotConfigured(t *testing.T) {
	svc := &MockPoolService{
		PurchaseFunc: func(ctx context.Context, customerID string, requested int) (*pool.Purchased, error) {
			return nil, domain.ErrNotConfigured
		},
	}
	router := setupPoolRouter(svc)

	w, envelope := doJSON(t, router, http.MethodPost, "/pool/purchase", gin.H{
		"customer_id": "c1",
		"count":       5,
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "NOT_CONFIGURED", envelope.Error.Code)
}

func TestPoolHandlerReleaseLimitExceeded(t *testing.T) {
	svc := &MockPoolService{
		ReleaseFunc: func(ctx context.Context, vendorID string, count int) error {
			return domain.ErrReleaseLimitExceeded
		},
	}
	router := setupPoolRouter(svc)

	w, envelope := doJSON(t, router, http.MethodPost, "/pool/release", gin.H{
		"vendor_id": "v1",
		"count":     10,
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, envelope.Success)
}

func TestPoolHandlerStatus(t *testing.T) {
	svc := &MockPoolService{
		StatusFunc: func() *pool.Status {
			return &pool.Status{
				Configured:       true,
				EventName:        "go live fest",
				AvailableTickets: 42,
			}
		},
	}
	router := setupPoolRouter(svc)

	w, envelope := doJSON(t, router, http.MethodGet, "/pool/status", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	require.True(t, envelope.Success)

	data, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(42), data["available_tickets"])
}

func TestPoolHandlerStatusCached(t *testing.T) {
	svc := &MockPoolService{
		CachedStatusFunc: func(ctx context.Context) (map[string]string, error) {
			return map[string]string{"available_tickets": "7"}, nil
		},
	}
	router := setupPoolRouter(svc)

	w, envelope := doJSON(t, router, http.MethodGet, "/pool/status?cached=true", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	require.True(t, envelope.Success)

	data, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "7", data["available_tickets"])
}

func TestPoolHandlerStatusCachedMissFallsBack(t *testing.T) {
	svc := &MockPoolService{
		StatusFunc: func() *pool.Status {
			return &pool.Status{Configured: true, AvailableTickets: 3}
		},
	}
	router := setupPoolRouter(svc)

	w, envelope := doJSON(t, router, http.MethodGet, "/pool/status?cached=true", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	require.True(t, envelope.Success)

	data, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(3), data["available_tickets"])
}
