package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"digital-wallet/internal/core/domain"
	"digital-wallet/internal/core/ports/mocks"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestAuditLog_SettleSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAudit := mocks.NewMockAuditService(ctrl)

	userID := uuid.New()
	var got *domain.AuditLog
	mockAudit.EXPECT().Log(gomock.Any(), gomock.Any()).Do(
		func(_ context.Context, entry *domain.AuditLog) { got = entry },
	)

	r := gin.New()
	r.Use(AuditLog(mockAudit))
	r.POST("/api/v1/transactions", func(c *gin.Context) {
		c.Set(CtxUserID, userID)
		c.Set(CtxResourceID, "tx-1")
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/transactions", nil))

	assert.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, got)
	assert.Equal(t, domain.AuditActionSettle, got.Action)
	assert.Equal(t, "transaction", got.ResourceType)
	assert.Equal(t, "tx-1", got.ResourceID)
	require.NotNil(t, got.UserID)
	assert.Equal(t, userID, *got.UserID)
	assert.Contains(t, got.Details, `"status":201`)
}

func TestAuditLog_MatchesRoutePattern(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAudit := mocks.NewMockAuditService(ctrl)

	var got *domain.AuditLog
	mockAudit.EXPECT().Log(gomock.Any(), gomock.Any()).Do(
		func(_ context.Context, entry *domain.AuditLog) { got = entry },
	)

	r := gin.New()
	r.Use(AuditLog(mockAudit))
	r.POST("/api/v1/merchants/:id/items", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/merchants/"+uuid.NewString()+"/items", nil))

	require.NotNil(t, got)
	assert.Equal(t, domain.AuditActionCreateItem, got.Action)
	assert.Nil(t, got.UserID)
}

func TestAuditLog_SkipsGET(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAudit := mocks.NewMockAuditService(ctrl)
	// No expectations: Log must not be called for reads.

	r := gin.New()
	r.Use(AuditLog(mockAudit))
	r.GET("/api/v1/wallets/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"balance": "100.00"})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/wallets/me", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuditLog_SkipsFailedRequests(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAudit := mocks.NewMockAuditService(ctrl)

	r := gin.New()
	r.Use(AuditLog(mockAudit))
	r.POST("/api/v1/transactions", func(c *gin.Context) {
		c.JSON(http.StatusPaymentRequired, gin.H{"error_code": "PAY_001"})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/transactions", nil))
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
}

func TestRouteAction(t *testing.T) {
	tests := []struct {
		method   string
		route    string
		action   domain.AuditAction
		resource string
	}{
		{"POST", "/api/v1/users", domain.AuditActionRegister, "user"},
		{"POST", "/api/v1/auth/login", domain.AuditActionLogin, "session"},
		{"POST", "/api/v1/wallets", domain.AuditActionCreateWallet, "wallet"},
		{"POST", "/api/v1/wallets/me/topup", domain.AuditActionTopup, "transaction"},
		{"POST", "/api/v1/transactions", domain.AuditActionSettle, "transaction"},
		{"POST", "/api/v1/merchants", domain.AuditActionCreateMerchant, "merchant"},
		{"POST", "/api/v1/merchants/:id/items", domain.AuditActionCreateItem, "item"},
		{"GET", "/api/v1/transactions", "", ""},
		{"POST", "/unknown", "", ""},
	}

	for _, tc := range tests {
		action, resource := routeAction(tc.method, tc.route)
		assert.Equal(t, tc.action, action, "%s %s", tc.method, tc.route)
		assert.Equal(t, tc.resource, resource, "%s %s", tc.method, tc.route)
	}
}
