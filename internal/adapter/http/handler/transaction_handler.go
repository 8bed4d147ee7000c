package handler

import (
	"digital-wallet/internal/adapter/http/dto"
	"digital-wallet/internal/adapter/http/middleware"
	"digital-wallet/internal/core/domain"
	"digital-wallet/internal/core/ports"
	"digital-wallet/pkg/apperror"
	"digital-wallet/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderIdempotencyKey carries the client's retry token for purchases.
const HeaderIdempotencyKey = "Idempotency-Key"

const maxIdempotencyKeyLen = 128

// TransactionHandler handles purchases and the caller's ledger.
type TransactionHandler struct {
	settleSvc ports.SettlementService
	querySvc  ports.QueryService
	pageSize  int
}

// NewTransactionHandler creates a new TransactionHandler. pageSize is the
// fixed page size used for listings.
func NewTransactionHandler(settleSvc ports.SettlementService, querySvc ports.QueryService, pageSize int) *TransactionHandler {
	return &TransactionHandler{settleSvc: settleSvc, querySvc: querySvc, pageSize: pageSize}
}

// Settle handles POST /api/v1/transactions.
func (h *TransactionHandler) Settle(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.SettleRequest
	if !bindJSON(c, &req) {
		return
	}
	key := c.GetHeader(HeaderIdempotencyKey)
	if len(key) > maxIdempotencyKeyLen {
		response.Error(c, apperror.InvalidArgument("Idempotency-Key too long"))
		return
	}

	txn, err := h.settleSvc.Settle(c.Request.Context(), ports.SettleRequest{
		UserID:         userID,
		ItemID:         uuid.MustParse(req.ItemID),
		Quantity:       req.Quantity,
		IdempotencyKey: key,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxResourceID, txn.ID.String())
	response.Created(c, dto.NewTransactionResponse(txn))
}

// List handles GET /api/v1/transactions?page=N[&type=PURCHASE|TOPUP].
func (h *TransactionHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	page, ok := pageRequest(c, h.pageSize)
	if !ok {
		return
	}

	params := ports.TransactionListParams{
		UserID:   &userID,
		Page:     page.Page,
		PageSize: page.PageSize,
	}
	if raw := c.Query("type"); raw != "" {
		t := domain.TransactionType(raw)
		if t != domain.TransactionTypePurchase && t != domain.TransactionTypeTopup {
			response.Error(c, apperror.InvalidArgument("type must be PURCHASE or TOPUP"))
			return
		}
		params.Type = &t
	}

	result, err := h.querySvc.ListTransactions(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewTransactionListResponse(result))
}

// Get handles GET /api/v1/transactions/:id. Another user's entry is a 404.
func (h *TransactionHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	txn, err := h.querySvc.GetTransaction(c.Request.Context(), id, &userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewTransactionResponse(txn))
}
