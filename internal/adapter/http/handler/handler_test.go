package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"digital-wallet/internal/adapter/http/middleware"
	"digital-wallet/internal/core/domain"
	"digital-wallet/internal/core/ports"
	"digital-wallet/internal/core/ports/mocks"
	"digital-wallet/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// serve mounts h at route, authenticates as userID when non-nil and runs one request.
func serve(method, route, path string, userID *uuid.UUID, body interface{}, h gin.HandlerFunc, headers ...string) *httptest.ResponseRecorder {
	r := gin.New()
	if userID != nil {
		id := *userID
		r.Use(func(c *gin.Context) {
			c.Set(middleware.CtxUserID, id)
			c.Next()
		})
	}
	r.Handle(method, route, h)

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
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

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok, "body: %s", w.Body.String())
	return data
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	code, _ := resp["error_code"].(string)
	return code
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// --- Users ---

func TestRegister_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewUserHandler(mockAuth)

	userID := uuid.New()
	mockAuth.EXPECT().Register(gomock.Any(), ports.RegisterRequest{
		Email:     "ada@example.com",
		Username:  "ada",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Password:  "  password123",
	}).Return(&domain.User{
		ID:           userID,
		Email:        "ada@example.com",
		Username:     "ada",
		FirstName:    "Ada",
		LastName:     "Lovelace",
		PasswordHash: "$argon2id$secret",
	}, nil)

	w := serve(http.MethodPost, "/users", "/users", nil, map[string]string{
		"email":      "ada@example.com",
		"username":   "ada",
		"first_name": " Ada ",
		"last_name":  "Lovelace",
		"password":   "  password123",
	}, h.Register)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, userID.String(), data["id"])
	assert.Equal(t, "ada", data["username"])
	assert.NotContains(t, w.Body.String(), "argon2id")
}

func TestRegister_ValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewUserHandler(mocks.NewMockAuthService(ctrl))

	tests := []struct {
		name string
		body interface{}
	}{
		{"empty body", "{}"},
		{"short password", map[string]string{"email": "a@b.co", "username": "abc", "password": "short"}},
		{"bad username", map[string]string{"email": "a@b.co", "username": "a b<c>", "password": "password123"}},
		{"bad email", map[string]string{"email": "nope", "username": "abc", "password": "password123"}},
		{"malformed json", "{"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(http.MethodPost, "/users", "/users", nil, tt.body, h.Register)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "VAL_001", errorCode(t, w))
		})
	}
}

func TestRegister_UserExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewUserHandler(mockAuth)

	mockAuth.EXPECT().Register(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrUserExists())

	w := serve(http.MethodPost, "/users", "/users", nil, map[string]string{
		"email": "taken@example.com", "username": "taken", "password": "password123",
	}, h.Register)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "AUTH_002", errorCode(t, w))
}

func TestLogin_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewUserHandler(mockAuth)

	expiry := time.Now().Add(time.Hour)
	mockAuth.EXPECT().Login(gomock.Any(), "ada", "password123").Return("jwt-token", expiry, nil)

	w := serve(http.MethodPost, "/auth/login", "/auth/login", nil,
		map[string]string{"username": "ada", "password": "password123"}, h.Login)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "jwt-token", data["access_token"])
	assert.Equal(t, "Bearer", data["token_type"])
	assert.Equal(t, float64(expiry.Unix()), data["expiry"])
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewUserHandler(mockAuth)

	mockAuth.EXPECT().Login(gomock.Any(), "ada", "wrong-pass").
		Return("", time.Time{}, apperror.ErrInvalidCredentials())

	w := serve(http.MethodPost, "/auth/login", "/auth/login", nil,
		map[string]string{"username": "ada", "password": "wrong-pass"}, h.Login)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "AUTH_001", errorCode(t, w))
}

func TestMe(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewUserHandler(mockAuth)

	userID := uuid.New()
	mockAuth.EXPECT().Me(gomock.Any(), userID).Return(&domain.User{ID: userID, Username: "ada"}, nil)

	w := serve(http.MethodGet, "/users/me", "/users/me", &userID, nil, h.Me)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ada", decodeData(t, w)["username"])

	w = serve(http.MethodGet, "/users/me", "/users/me", nil, nil, h.Me)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// --- Wallets ---

func TestCreateWallet(t *testing.T) {
	userID := uuid.New()
	walletID := uuid.New()

	tests := []struct {
		name    string
		body    interface{}
		initial string
	}{
		{"no body", nil, "0"},
		{"initial balance", `{"initial_balance": "100.00"}`, "100"},
		{"numeric initial balance", `{"initial_balance": 12.5}`, "12.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockWallet := mocks.NewMockWalletService(ctrl)
			h := NewWalletHandler(mockWallet)

			mockWallet.EXPECT().
				CreateWallet(gomock.Any(), userID, gomock.Cond(func(x any) bool {
					return x.(decimal.Decimal).Equal(money(tt.initial))
				})).
				Return(&domain.Wallet{ID: walletID, UserID: userID, Balance: money(tt.initial)}, nil)

			w := serve(http.MethodPost, "/wallets", "/wallets", &userID, tt.body, h.Create)
			assert.Equal(t, http.StatusCreated, w.Code)
			data := decodeData(t, w)
			assert.Equal(t, walletID.String(), data["id"])
			assert.Equal(t, money(tt.initial).StringFixed(2), data["balance"])
		})
	}
}

func TestCreateWallet_RejectsBadInitialBalance(t *testing.T) {
	userID := uuid.New()
	ctrl := gomock.NewController(t)
	h := NewWalletHandler(mocks.NewMockWalletService(ctrl))

	for _, body := range []string{`{"initial_balance": "-1"}`, `{"initial_balance": "1.005"}`, `{"initial_balance": "abc"}`} {
		w := serve(http.MethodPost, "/wallets", "/wallets", &userID, body, h.Create)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestCreateWallet_Duplicate(t *testing.T) {
	userID := uuid.New()
	ctrl := gomock.NewController(t)
	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockWallet)

	mockWallet.EXPECT().CreateWallet(gomock.Any(), userID, gomock.Any()).Return(nil, apperror.ErrWalletExists())

	w := serve(http.MethodPost, "/wallets", "/wallets", &userID, nil, h.Create)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "WAL_002", errorCode(t, w))
}

func TestGetWallet(t *testing.T) {
	userID := uuid.New()
	ctrl := gomock.NewController(t)
	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockWallet)

	mockWallet.EXPECT().GetWallet(gomock.Any(), userID).
		Return(&domain.Wallet{ID: uuid.New(), UserID: userID, Balance: money("40")}, nil)

	w := serve(http.MethodGet, "/wallets/me", "/wallets/me", &userID, nil, h.Get)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "40.00", decodeData(t, w)["balance"])
}

func TestGetWallet_NotFound(t *testing.T) {
	userID := uuid.New()
	ctrl := gomock.NewController(t)
	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockWallet)

	mockWallet.EXPECT().GetWallet(gomock.Any(), userID).Return(nil, apperror.ErrWalletNotFound())

	w := serve(http.MethodGet, "/wallets/me", "/wallets/me", &userID, nil, h.Get)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "WAL_001", errorCode(t, w))
}

func TestTopup(t *testing.T) {
	userID := uuid.New()
	ctrl := gomock.NewController(t)
	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockWallet)

	txID := uuid.New()
	mockWallet.EXPECT().
		Topup(gomock.Any(), userID, gomock.Cond(func(x any) bool {
			return x.(decimal.Decimal).Equal(money("25.50"))
		})).
		Return(&domain.Transaction{ID: txID, Type: domain.TransactionTypeTopup, Amount: money("25.5")}, nil)

	w := serve(http.MethodPost, "/wallets/me/topup", "/wallets/me/topup", &userID, `{"amount": "25.50"}`, h.Topup)
	assert.Equal(t, http.StatusCreated, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, txID.String(), data["id"])
	assert.Equal(t, "TOPUP", data["type"])
	assert.Equal(t, "25.50", data["amount"])
	_, hasItem := data["item_id"]
	assert.False(t, hasItem)
}

func TestTopup_RejectsNonPositive(t *testing.T) {
	userID := uuid.New()
	ctrl := gomock.NewController(t)
	h := NewWalletHandler(mocks.NewMockWalletService(ctrl))

	for _, body := range []string{`{"amount": "0"}`, `{"amount": "-5"}`, `{}`} {
		w := serve(http.MethodPost, "/wallets/me/topup", "/wallets/me/topup", &userID, body, h.Topup)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestReconcile(t *testing.T) {
	userID := uuid.New()
	ctrl := gomock.NewController(t)
	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockWallet)

	walletID := uuid.New()
	mockWallet.EXPECT().Reconcile(gomock.Any(), userID).Return(&ports.Reconciliation{
		WalletID:      walletID,
		Balance:       money("40"),
		LedgerBalance: money("40"),
		Consistent:    true,
	}, nil)

	w := serve(http.MethodGet, "/wallets/me/reconcile", "/wallets/me/reconcile", &userID, nil, h.Reconcile)
	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "40.00", data["ledger_balance"])
	assert.Equal(t, true, data["consistent"])
}

// --- Transactions ---

func TestSettle_Success(t *testing.T) {
	userID := uuid.New()
	itemID := uuid.New()
	walletID := uuid.New()
	txID := uuid.New()

	ctrl := gomock.NewController(t)
	mockSettle := mocks.NewMockSettlementService(ctrl)
	h := NewTransactionHandler(mockSettle, mocks.NewMockQueryService(ctrl), 50)

	mockSettle.EXPECT().Settle(gomock.Any(), ports.SettleRequest{
		UserID:         userID,
		ItemID:         itemID,
		Quantity:       2,
		IdempotencyKey: "order-1",
	}).Return(&domain.Transaction{
		ID:        txID,
		Type:      domain.TransactionTypePurchase,
		UserID:    userID,
		ItemID:    &itemID,
		WalletID:  walletID,
		Quantity:  2,
		Amount:    money("60"),
		CreatedAt: time.Now().UTC(),
	}, nil)

	w := serve(http.MethodPost, "/transactions", "/transactions", &userID,
		map[string]interface{}{"item_id": itemID.String(), "quantity": 2}, h.Settle,
		HeaderIdempotencyKey, "order-1")

	assert.Equal(t, http.StatusCreated, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, txID.String(), data["id"])
	assert.Equal(t, "PURCHASE", data["type"])
	assert.Equal(t, itemID.String(), data["item_id"])
	assert.Equal(t, walletID.String(), data["wallet_id"])
	assert.Equal(t, float64(2), data["quantity"])
	assert.Equal(t, "60.00", data["amount"])
}

func TestSettle_ValidationError(t *testing.T) {
	userID := uuid.New()
	ctrl := gomock.NewController(t)
	h := NewTransactionHandler(mocks.NewMockSettlementService(ctrl), mocks.NewMockQueryService(ctrl), 50)

	tests := []struct {
		name string
		body string
	}{
		{"missing item", `{"quantity": 1}`},
		{"bad item id", `{"item_id": "not-a-uuid", "quantity": 1}`},
		{"zero quantity", `{"item_id": "` + uuid.NewString() + `", "quantity": 0}`},
		{"negative quantity", `{"item_id": "` + uuid.NewString() + `", "quantity": -3}`},
		{"quantity beyond int32", `{"item_id": "` + uuid.NewString() + `", "quantity": 3000000000}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(http.MethodPost, "/transactions", "/transactions", &userID, tt.body, h.Settle)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "VAL_001", errorCode(t, w))
		})
	}
}

func TestSettle_IdempotencyKeyTooLong(t *testing.T) {
	userID := uuid.New()
	ctrl := gomock.NewController(t)
	h := NewTransactionHandler(mocks.NewMockSettlementService(ctrl), mocks.NewMockQueryService(ctrl), 50)

	body := `{"item_id": "` + uuid.NewString() + `", "quantity": 1}`
	w := serve(http.MethodPost, "/transactions", "/transactions", &userID, body, h.Settle,
		HeaderIdempotencyKey, strings.Repeat("k", 200))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSettle_ServiceErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"insufficient funds", apperror.ErrInsufficientFunds(), http.StatusPaymentRequired, "PAY_001"},
		{"wallet missing", apperror.ErrWalletNotFound(), http.StatusNotFound, "WAL_001"},
		{"item missing", apperror.ErrItemNotFound(), http.StatusNotFound, "ITM_001"},
		{"conflict", apperror.ErrConflict(errors.New("40001")), http.StatusConflict, "PAY_003"},
		{"timeout", apperror.ErrTimeout(context.DeadlineExceeded), http.StatusServiceUnavailable, "SYS_002"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userID := uuid.New()
			ctrl := gomock.NewController(t)
			mockSettle := mocks.NewMockSettlementService(ctrl)
			h := NewTransactionHandler(mockSettle, mocks.NewMockQueryService(ctrl), 50)

			mockSettle.EXPECT().Settle(gomock.Any(), gomock.Any()).Return(nil, tt.err)

			body := `{"item_id": "` + uuid.NewString() + `", "quantity": 1}`
			w := serve(http.MethodPost, "/transactions", "/transactions", &userID, body, h.Settle)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}
}

func TestListTransactions(t *testing.T) {
	userID := uuid.New()
	ctrl := gomock.NewController(t)
	mockQuery := mocks.NewMockQueryService(ctrl)
	h := NewTransactionHandler(mocks.NewMockSettlementService(ctrl), mockQuery, 50)

	entries := make([]domain.Transaction, 20)
	for i := range entries {
		entries[i] = domain.Transaction{ID: uuid.New(), Type: domain.TransactionTypePurchase, Amount: money("0.10")}
	}
	mockQuery.EXPECT().ListTransactions(gomock.Any(), ports.TransactionListParams{
		UserID:   &userID,
		Page:     3,
		PageSize: 50,
	}).Return(ports.NewPage(entries, ports.PageRequest{Page: 3, PageSize: 50}, 120), nil)

	w := serve(http.MethodGet, "/transactions", "/transactions?page=3", &userID, nil, h.List)
	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, float64(3), data["page"])
	assert.Equal(t, float64(3), data["page_count"])
	assert.Equal(t, float64(50), data["size_per_page"])
	assert.Equal(t, float64(120), data["total"])
	assert.Len(t, data["transactions"], 20)
}

func TestListTransactions_DefaultsToFirstPageAndFiltersType(t *testing.T) {
	userID := uuid.New()
	ctrl := gomock.NewController(t)
	mockQuery := mocks.NewMockQueryService(ctrl)
	h := NewTransactionHandler(mocks.NewMockSettlementService(ctrl), mockQuery, 50)

	topup := domain.TransactionTypeTopup
	mockQuery.EXPECT().ListTransactions(gomock.Any(), ports.TransactionListParams{
		UserID:   &userID,
		Type:     &topup,
		Page:     1,
		PageSize: 50,
	}).Return(ports.NewPage[domain.Transaction](nil, ports.PageRequest{Page: 1, PageSize: 50}, 0), nil)

	w := serve(http.MethodGet, "/transactions", "/transactions?type=TOPUP", &userID, nil, h.List)
	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, []interface{}{}, data["transactions"])
	assert.Equal(t, float64(0), data["page_count"])
}

func TestListTransactions_BadQuery(t *testing.T) {
	userID := uuid.New()
	ctrl := gomock.NewController(t)
	mockQuery := mocks.NewMockQueryService(ctrl)
	h := NewTransactionHandler(mocks.NewMockSettlementService(ctrl), mockQuery, 50)

	for _, path := range []string{"/transactions?page=abc", "/transactions?type=REFUND"} {
		w := serve(http.MethodGet, "/transactions", path, &userID, nil, h.List)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}

	// page=0 reaches the service, which rejects it.
	mockQuery.EXPECT().ListTransactions(gomock.Any(), gomock.Any()).
		Return(nil, apperror.InvalidArgument("page and page size must be at least 1"))
	w := serve(http.MethodGet, "/transactions", "/transactions?page=0", &userID, nil, h.List)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VAL_001", errorCode(t, w))
}

func TestGetTransaction(t *testing.T) {
	userID := uuid.New()
	txID := uuid.New()
	ctrl := gomock.NewController(t)
	mockQuery := mocks.NewMockQueryService(ctrl)
	h := NewTransactionHandler(mocks.NewMockSettlementService(ctrl), mockQuery, 50)

	mockQuery.EXPECT().GetTransaction(gomock.Any(), txID, &userID).
		Return(&domain.Transaction{ID: txID, Type: domain.TransactionTypePurchase, Amount: money("5")}, nil)

	w := serve(http.MethodGet, "/transactions/:id", "/transactions/"+txID.String(), &userID, nil, h.Get)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "5.00", decodeData(t, w)["amount"])
}

func TestGetTransaction_NotFoundAndBadID(t *testing.T) {
	userID := uuid.New()
	ctrl := gomock.NewController(t)
	mockQuery := mocks.NewMockQueryService(ctrl)
	h := NewTransactionHandler(mocks.NewMockSettlementService(ctrl), mockQuery, 50)

	mockQuery.EXPECT().GetTransaction(gomock.Any(), gomock.Any(), &userID).
		Return(nil, apperror.ErrTransactionNotFound())

	w := serve(http.MethodGet, "/transactions/:id", "/transactions/"+uuid.NewString(), &userID, nil, h.Get)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "TXN_001", errorCode(t, w))

	w = serve(http.MethodGet, "/transactions/:id", "/transactions/xyz", &userID, nil, h.Get)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Catalog ---

func TestCreateMerchant(t *testing.T) {
	userID := uuid.New()
	ctrl := gomock.NewController(t)
	mockCatalog := mocks.NewMockCatalogService(ctrl)
	h := NewCatalogHandler(mockCatalog, 50)

	merchantID := uuid.New()
	mockCatalog.EXPECT().CreateMerchant(gomock.Any(), ports.CreateMerchantRequest{
		OwnerID:     userID,
		Name:        "Tom &amp; Jerry",
		Description: "cheese",
	}).Return(&domain.Merchant{ID: merchantID, OwnerID: userID, Name: "Tom &amp; Jerry"}, nil)

	w := serve(http.MethodPost, "/merchants", "/merchants", &userID,
		map[string]string{"name": "Tom & Jerry", "description": "cheese"}, h.CreateMerchant)
	assert.Equal(t, http.StatusCreated, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, merchantID.String(), data["id"])
	assert.Equal(t, userID.String(), data["owner_id"])
}

func TestCreateItem(t *testing.T) {
	userID := uuid.New()
	merchantID := uuid.New()
	ctrl := gomock.NewController(t)
	mockCatalog := mocks.NewMockCatalogService(ctrl)
	h := NewCatalogHandler(mockCatalog, 50)

	mockCatalog.EXPECT().CreateItem(gomock.Any(), gomock.Cond(func(x any) bool {
		req := x.(ports.CreateItemRequest)
		return req.UserID == userID && req.MerchantID == merchantID && req.Price.Equal(money("30"))
	})).Return(&domain.Item{ID: uuid.New(), MerchantID: merchantID, Name: "Widget", Price: money("30")}, nil)

	w := serve(http.MethodPost, "/merchants/:id/items", "/merchants/"+merchantID.String()+"/items", &userID,
		`{"name": "Widget", "price": "30.00"}`, h.CreateItem)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "30.00", decodeData(t, w)["price"])
}

func TestCreateItem_Errors(t *testing.T) {
	userID := uuid.New()
	merchantID := uuid.New()
	ctrl := gomock.NewController(t)
	mockCatalog := mocks.NewMockCatalogService(ctrl)
	h := NewCatalogHandler(mockCatalog, 50)
	path := "/merchants/" + merchantID.String() + "/items"

	w := serve(http.MethodPost, "/merchants/:id/items", path, &userID, `{"name": "Widget", "price": "1.999"}`, h.CreateItem)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	mockCatalog.EXPECT().CreateItem(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrForbidden())
	w = serve(http.MethodPost, "/merchants/:id/items", path, &userID, `{"name": "Widget", "price": "2"}`, h.CreateItem)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "AUTH_005", errorCode(t, w))
}

func TestListMerchantsAndItems(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCatalog := mocks.NewMockCatalogService(ctrl)
	h := NewCatalogHandler(mockCatalog, 10)

	merchants := []domain.Merchant{{ID: uuid.New(), Name: "A"}, {ID: uuid.New(), Name: "B"}}
	mockCatalog.EXPECT().ListMerchants(gomock.Any(), ports.PageRequest{Page: 2, PageSize: 10}).
		Return(ports.NewPage(merchants, ports.PageRequest{Page: 2, PageSize: 10}, 12), nil)

	w := serve(http.MethodGet, "/merchants", "/merchants?page=2", nil, nil, h.ListMerchants)
	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Len(t, data["items"], 2)
	assert.Equal(t, float64(2), data["page_count"])

	merchantID := uuid.New()
	items := []domain.Item{{ID: uuid.New(), MerchantID: merchantID, Price: money("1")}}
	mockCatalog.EXPECT().ListItems(gomock.Any(), merchantID, ports.PageRequest{Page: 1, PageSize: 10}).
		Return(ports.NewPage(items, ports.PageRequest{Page: 1, PageSize: 10}, 1), nil)

	w = serve(http.MethodGet, "/merchants/:id/items", "/merchants/"+merchantID.String()+"/items", nil, nil, h.ListItems)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeData(t, w)["items"], 1)
}

func TestGetMerchantAndItem(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCatalog := mocks.NewMockCatalogService(ctrl)
	h := NewCatalogHandler(mockCatalog, 10)

	merchantID := uuid.New()
	mockCatalog.EXPECT().GetMerchant(gomock.Any(), merchantID).Return(nil, apperror.ErrMerchantNotFound())
	w := serve(http.MethodGet, "/merchants/:id", "/merchants/"+merchantID.String(), nil, nil, h.GetMerchant)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "MER_001", errorCode(t, w))

	itemID := uuid.New()
	mockCatalog.EXPECT().GetItem(gomock.Any(), itemID).
		Return(&domain.Item{ID: itemID, Name: "Widget", Price: money("0.1")}, nil)
	w = serve(http.MethodGet, "/items/:id", "/items/"+itemID.String(), nil, nil, h.GetItem)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0.10", decodeData(t, w)["price"])
}

// --- Dashboard ---

func TestGetStats(t *testing.T) {
	userID := uuid.New()
	ctrl := gomock.NewController(t)
	mockQuery := mocks.NewMockQueryService(ctrl)
	h := NewDashboardHandler(mockQuery)

	mockQuery.EXPECT().GetDashboardStats(gomock.Any(), userID, "week").Return(&ports.TransactionStats{
		TotalTransactions: 3,
		Purchases:         2,
		Topups:            1,
		TotalSpent:        money("60"),
		TotalToppedUp:     money("100"),
	}, nil)

	w := serve(http.MethodGet, "/dashboard/stats", "/dashboard/stats?period=week", &userID, nil, h.GetStats)
	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "week", data["period"])
	assert.Equal(t, float64(2), data["purchases"])
	assert.Equal(t, "60.00", data["total_spent"])
	assert.Equal(t, "100.00", data["total_topped_up"])
}

func TestGetStats_InvalidPeriod(t *testing.T) {
	userID := uuid.New()
	ctrl := gomock.NewController(t)
	mockQuery := mocks.NewMockQueryService(ctrl)
	h := NewDashboardHandler(mockQuery)

	mockQuery.EXPECT().GetDashboardStats(gomock.Any(), userID, "year").
		Return(nil, apperror.InvalidArgument("invalid period"))

	w := serve(http.MethodGet, "/dashboard/stats", "/dashboard/stats?period=year", &userID, nil, h.GetStats)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Health & docs ---

func TestHealthCheck(t *testing.T) {
	ctrl := gomock.NewController(t)
	pg := mocks.NewMockHealthChecker(ctrl)
	rd := mocks.NewMockHealthChecker(ctrl)
	pg.EXPECT().Name().Return("postgresql").AnyTimes()
	rd.EXPECT().Name().Return("redis").AnyTimes()
	pg.EXPECT().Ping(gomock.Any()).Return(nil)
	rd.EXPECT().Ping(gomock.Any()).Return(errors.New("connection refused"))

	w := serve(http.MethodGet, "/health", "/health", nil, nil, HealthCheck(pg, rd))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp struct {
		Status       string               `json:"status"`
		Dependencies map[string]depStatus `json:"dependencies"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "healthy", resp.Dependencies["postgresql"].Status)
	assert.Equal(t, "unhealthy", resp.Dependencies["redis"].Status)
	assert.Equal(t, "connection refused", resp.Dependencies["redis"].Error)
}

func TestHealthCheck_AllHealthy(t *testing.T) {
	ctrl := gomock.NewController(t)
	pg := mocks.NewMockHealthChecker(ctrl)
	pg.EXPECT().Name().Return("postgresql").AnyTimes()
	pg.EXPECT().Ping(gomock.Any()).Return(nil)

	w := serve(http.MethodGet, "/health", "/health", nil, nil, HealthCheck(pg))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
}

func TestSwagger(t *testing.T) {
	h := NewSwaggerHandler([]byte("openapi: 3.0.3\n"))

	w := serve(http.MethodGet, "/swagger/spec", "/swagger/spec", nil, nil, h.Spec)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "openapi: 3.0.3\n", w.Body.String())

	w = serve(http.MethodGet, "/swagger", "/swagger", nil, nil, h.UI)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/swagger/spec")

	w = serve(http.MethodGet, "/swagger/spec", "/swagger/spec", nil, nil, NewSwaggerHandler(nil).Spec)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
