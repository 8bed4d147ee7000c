package memory

import (
	"context"
	"fmt"
	"sort"

	"digital-wallet/internal/core/domain"
	"digital-wallet/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UserRepo implements ports.UserRepository.
type UserRepo struct {
	store *Store
}

func NewUserRepo(store *Store) *UserRepo {
	return &UserRepo{store: store}
}

func (r *UserRepo) Create(_ context.Context, u *domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.users {
		if existing.ID == u.ID || existing.Username == u.Username || existing.Email == u.Email {
			return fmt.Errorf("insert user: %w", domain.ErrDuplicateKey)
		}
	}
	r.store.users[u.ID] = *u
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.ID == id }), nil
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Username == username }), nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email == email }), nil
}

func (r *UserRepo) find(match func(*domain.User) bool) *domain.User {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, u := range r.store.users {
		if match(&u) {
			found := u
			return &found
		}
	}
	return nil
}

// MerchantRepo implements ports.MerchantRepository.
type MerchantRepo struct {
	store *Store
}

func NewMerchantRepo(store *Store) *MerchantRepo {
	return &MerchantRepo{store: store}
}

func (r *MerchantRepo) Create(_ context.Context, m *domain.Merchant) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.merchants[m.ID]; ok {
		return fmt.Errorf("insert merchant: %w", domain.ErrDuplicateKey)
	}
	r.store.merchants[m.ID] = *m
	return nil
}

func (r *MerchantRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Merchant, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	m, ok := r.store.merchants[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *MerchantRepo) List(_ context.Context, page ports.PageRequest) ([]domain.Merchant, int64, error) {
	r.store.mu.RLock()
	all := make([]domain.Merchant, 0, len(r.store.merchants))
	for _, m := range r.store.merchants {
		all = append(all, m)
	}
	r.store.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID.String() > all[j].ID.String()
	})
	return paginate(all, page), int64(len(all)), nil
}

// ItemRepo implements ports.ItemRepository.
type ItemRepo struct {
	store *Store
}

func NewItemRepo(store *Store) *ItemRepo {
	return &ItemRepo{store: store}
}

func (r *ItemRepo) Create(_ context.Context, item *domain.Item) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.merchants[item.MerchantID]; !ok {
		return fmt.Errorf("insert item: unknown merchant %s", item.MerchantID)
	}
	r.store.items[item.ID] = *item
	return nil
}

func (r *ItemRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Item, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	it, ok := r.store.items[id]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

func (r *ItemRepo) GetByIDTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Item, error) {
	if _, err := asMemTx(tx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *ItemRepo) ListByMerchant(_ context.Context, merchantID uuid.UUID, page ports.PageRequest) ([]domain.Item, int64, error) {
	r.store.mu.RLock()
	var all []domain.Item
	for _, it := range r.store.items {
		if it.MerchantID == merchantID {
			all = append(all, it)
		}
	}
	r.store.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID.String() > all[j].ID.String()
	})
	return paginate(all, page), int64(len(all)), nil
}

// AuditRepo implements ports.AuditRepository.
type AuditRepo struct {
	store *Store
}

func NewAuditRepo(store *Store) *AuditRepo {
	return &AuditRepo{store: store}
}

func (r *AuditRepo) Create(_ context.Context, entry *domain.AuditLog) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.audit = append(r.store.audit, *entry)
	return nil
}

// Entries returns a copy of the audit trail.
func (r *AuditRepo) Entries() []domain.AuditLog {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return append([]domain.AuditLog(nil), r.store.audit...)
}

func paginate[T any](all []T, page ports.PageRequest) []T {
	start := page.Offset()
	if start < 0 || start >= len(all) {
		return nil
	}
	end := start + page.PageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}
