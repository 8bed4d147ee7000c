package service

import (
	"context"
	"strings"
	"time"

	"digital-wallet/internal/core/domain"
	"digital-wallet/internal/core/ports"
	"digital-wallet/pkg/apperror"

	"github.com/google/uuid"
)

type catalogService struct {
	merchantRepo ports.MerchantRepository
	itemRepo     ports.ItemRepository
}

// NewCatalogService creates a new merchant and item management service.
func NewCatalogService(
	merchantRepo ports.MerchantRepository,
	itemRepo ports.ItemRepository,
) ports.CatalogService {
	return &catalogService{
		merchantRepo: merchantRepo,
		itemRepo:     itemRepo,
	}
}

func (s *catalogService) CreateMerchant(ctx context.Context, req ports.CreateMerchantRequest) (*domain.Merchant, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.InvalidArgument("merchant name is required")
	}

	merchant := &domain.Merchant{
		ID:          uuid.New(),
		OwnerID:     req.OwnerID,
		Name:        name,
		Description: req.Description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.merchantRepo.Create(ctx, merchant); err != nil {
		return nil, storeError("create merchant", err)
	}
	return merchant, nil
}

func (s *catalogService) GetMerchant(ctx context.Context, id uuid.UUID) (*domain.Merchant, error) {
	merchant, err := s.merchantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get merchant", err)
	}
	if merchant == nil {
		return nil, apperror.ErrMerchantNotFound()
	}
	return merchant, nil
}

func (s *catalogService) ListMerchants(ctx context.Context, page ports.PageRequest) (*ports.Page[domain.Merchant], error) {
	if !page.Valid() {
		return nil, apperror.InvalidArgument("page and page size must be at least 1")
	}
	merchants, total, err := s.merchantRepo.List(ctx, page)
	if err != nil {
		return nil, storeError("list merchants", err)
	}
	return ports.NewPage(merchants, page, total), nil
}

// CreateItem adds an item to a merchant. Only the merchant's owner may do so.
func (s *catalogService) CreateItem(ctx context.Context, req ports.CreateItemRequest) (*domain.Item, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.InvalidArgument("item name is required")
	}
	if !domain.IsValidMoney(req.Price) {
		return nil, apperror.InvalidArgument("price must be non-negative with at most 2 decimal places")
	}

	merchant, err := s.GetMerchant(ctx, req.MerchantID)
	if err != nil {
		return nil, err
	}
	if !merchant.IsOwnedBy(req.UserID) {
		return nil, apperror.ErrForbidden()
	}

	item := &domain.Item{
		ID:          uuid.New(),
		MerchantID:  merchant.ID,
		Name:        name,
		Description: req.Description,
		Price:       req.Price,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, storeError("create item", err)
	}
	return item, nil
}

func (s *catalogService) GetItem(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get item", err)
	}
	if item == nil {
		return nil, apperror.ErrItemNotFound()
	}
	return item, nil
}

func (s *catalogService) ListItems(ctx context.Context, merchantID uuid.UUID, page ports.PageRequest) (*ports.Page[domain.Item], error) {
	if !page.Valid() {
		return nil, apperror.InvalidArgument("page and page size must be at least 1")
	}
	if _, err := s.GetMerchant(ctx, merchantID); err != nil {
		return nil, err
	}
	items, total, err := s.itemRepo.ListByMerchant(ctx, merchantID, page)
	if err != nil {
		return nil, storeError("list items", err)
	}
	return ports.NewPage(items, page, total), nil
}
