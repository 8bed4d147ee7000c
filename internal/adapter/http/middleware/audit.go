package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"digital-wallet/internal/core/domain"
	"digital-wallet/internal/core/ports"
	"digital-wallet/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CtxResourceID lets a handler name the resource it created or changed.
const CtxResourceID = "audit_resource_id"

// AuditLog records successful write operations. Routes are matched by
// their registered pattern, so path parameters do not matter.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}
		action, resourceType := routeAction(c.Request.Method, c.FullPath())
		if action == "" {
			return
		}

		var userID *uuid.UUID
		if id, ok := UserID(c); ok {
			userID = &id
		}

		details, _ := json.Marshal(map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"request_id": c.GetString(response.RequestIDKey),
		})

		auditSvc.Log(c.Request.Context(), &domain.AuditLog{
			ID:           uuid.New(),
			UserID:       userID,
			Action:       action,
			ResourceType: resourceType,
			ResourceID:   c.GetString(CtxResourceID),
			IPAddress:    c.ClientIP(),
			Details:      string(details),
			CreatedAt:    time.Now().UTC(),
		})
	}
}

func routeAction(method, route string) (domain.AuditAction, string) {
	if method != http.MethodPost {
		return "", ""
	}
	switch route {
	case "/api/v1/users":
		return domain.AuditActionRegister, "user"
	case "/api/v1/auth/login":
		return domain.AuditActionLogin, "session"
	case "/api/v1/wallets":
		return domain.AuditActionCreateWallet, "wallet"
	case "/api/v1/wallets/me/topup":
		return domain.AuditActionTopup, "transaction"
	case "/api/v1/transactions":
		return domain.AuditActionSettle, "transaction"
	case "/api/v1/merchants":
		return domain.AuditActionCreateMerchant, "merchant"
	case "/api/v1/merchants/:id/items":
		return domain.AuditActionCreateItem, "item"
	}
	return "", ""
}
