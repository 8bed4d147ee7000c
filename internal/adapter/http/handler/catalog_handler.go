package handler

import (
	"digital-wallet/internal/adapter/http/dto"
	"digital-wallet/internal/adapter/http/middleware"
	"digital-wallet/internal/core/ports"
	"digital-wallet/pkg/response"

	"github.com/gin-gonic/gin"
)

// CatalogHandler handles merchants and their items.
type CatalogHandler struct {
	catalogSvc ports.CatalogService
	pageSize   int
}

func NewCatalogHandler(catalogSvc ports.CatalogService, pageSize int) *CatalogHandler {
	return &CatalogHandler{catalogSvc: catalogSvc, pageSize: pageSize}
}

// CreateMerchant handles POST /api/v1/merchants. The caller becomes the owner.
func (h *CatalogHandler) CreateMerchant(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.CreateMerchantRequest
	if !bindJSON(c, &req) {
		return
	}

	m, err := h.catalogSvc.CreateMerchant(c.Request.Context(), ports.CreateMerchantRequest{
		OwnerID:     userID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxResourceID, m.ID.String())
	response.Created(c, dto.NewMerchantResponse(m))
}

// ListMerchants handles GET /api/v1/merchants?page=N.
func (h *CatalogHandler) ListMerchants(c *gin.Context) {
	page, ok := pageRequest(c, h.pageSize)
	if !ok {
		return
	}

	result, err := h.catalogSvc.ListMerchants(c.Request.Context(), page)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewPageResponse(result, dto.NewMerchantResponse))
}

// GetMerchant handles GET /api/v1/merchants/:id.
func (h *CatalogHandler) GetMerchant(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	m, err := h.catalogSvc.GetMerchant(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewMerchantResponse(m))
}

// CreateItem handles POST /api/v1/merchants/:id/items. Owner only.
func (h *CatalogHandler) CreateItem(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	merchantID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.CreateItemRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.catalogSvc.CreateItem(c.Request.Context(), ports.CreateItemRequest{
		UserID:      userID,
		MerchantID:  merchantID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxResourceID, item.ID.String())
	response.Created(c, dto.NewItemResponse(item))
}

// ListItems handles GET /api/v1/merchants/:id/items?page=N.
func (h *CatalogHandler) ListItems(c *gin.Context) {
	merchantID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	page, ok := pageRequest(c, h.pageSize)
	if !ok {
		return
	}

	result, err := h.catalogSvc.ListItems(c.Request.Context(), merchantID, page)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewPageResponse(result, dto.NewItemResponse))
}

// GetItem handles GET /api/v1/items/:id.
func (h *CatalogHandler) GetItem(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	item, err := h.catalogSvc.GetItem(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewItemResponse(item))
}
