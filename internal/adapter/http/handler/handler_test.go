package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"padlink-ledger/internal/adapter/http/dto"
	"padlink-ledger/internal/core/domain"
	"padlink-ledger/internal/core/ports"
	"padlink-ledger/internal/core/ports/mocks"
	"padlink-ledger/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func appendRequestBody() dto.AppendTransactionRequest {
	return dto.AppendTransactionRequest{
		ID:              "tx-1",
		DonationID:      "don-1",
		DonorID:         "donor-1",
		DonorName:       "Alice",
		Quantity:        50,
		PadType:         "regular",
		Location:        "Hanoi",
		TransactionType: "created",
		Description:     "donation created",
	}
}

// --- Ledger Handler Tests ---

func TestAppendTransaction_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewLedgerHandler(mockLedger)

	reqBody := appendRequestBody()
	mockLedger.EXPECT().AppendTransaction(gomock.Any(), reqBody.ToDomain()).Return(&domain.Block{
		Index:        1,
		Timestamp:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Payload:      reqBody.ToDomain(),
		PreviousHash: "00prev",
		Hash:         "00abc",
		Nonce:        7,
	}, nil)

	body, _ := json.Marshal(reqBody)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/ledger/transactions", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.AppendTransaction(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["index"])
	assert.Equal(t, "00abc", data["hash"])
	assert.Equal(t, "00prev", data["previous_hash"])
}

func TestAppendTransaction_ValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewLedgerHandler(mockLedger)

	// Empty body => binding error
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/ledger/transactions", bytes.NewReader([]byte("{}")))
	c.Request.Header.Set("Content-Type", "application/json")

	h.AppendTransaction(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Binding failures carry the cross-domain validation code, not a wallet one.
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "VAL_001", resp["error_code"])
}

func TestAppendTransaction_ChainConflict(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewLedgerHandler(mockLedger)

	reqBody := appendRequestBody()
	mockLedger.EXPECT().AppendTransaction(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrChainConflict())

	body, _ := json.Marshal(reqBody)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/ledger/transactions", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.AppendTransaction(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "CHAIN_002", resp["error_code"])
}

func TestVerifyChain_ReportsBrokenLink(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewLedgerHandler(mockLedger)

	mockLedger.EXPECT().VerifyChainIntegrity(gomock.Any()).Return(&ports.IntegrityReport{
		IsValid:           false,
		TotalBlocks:       5,
		LastVerifiedIndex: 2,
		Error:             "broken link at index 3",
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/ledger/verify", nil)

	h.VerifyChain(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, false, data["is_valid"])
	assert.Equal(t, float64(2), data["last_verified_index"])
}

func TestGetLatestBlock_EmptyChain(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewLedgerHandler(mockLedger)

	mockLedger.EXPECT().GetLatestBlock(gomock.Any()).Return(nil, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/ledger/blocks/latest", nil)

	h.GetLatestBlock(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// --- Wallet Handler Tests ---

func TestCreateWallet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockWallet)

	mockWallet.EXPECT().CreateWallet(gomock.Any(), "user-1").
		Return("0xPL1234567890abcdef1234567890abcdef123456", nil)

	body, _ := json.Marshal(dto.CreateWalletRequest{UserID: "user-1"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/wallets", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.CreateWallet(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "user-1", data["user_id"])
	assert.Equal(t, float64(domain.WelcomeBonusAmount), data["balance"])
}

func TestCreateWallet_Duplicate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockWallet)

	mockWallet.EXPECT().CreateWallet(gomock.Any(), "user-1").
		Return("", apperror.ErrWalletAlreadyExists())

	body, _ := json.Marshal(dto.CreateWalletRequest{UserID: "user-1"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/wallets", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.CreateWallet(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "WAL_001", resp["error_code"])
}

func TestDebit_InsufficientBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockWallet)

	mockWallet.EXPECT().DebitWallet(gomock.Any(), gomock.Any()).
		Return(int64(0), apperror.ErrInsufficientBalance())

	body, _ := json.Marshal(dto.WalletMutationRequest{UserID: "user-1", Amount: 500})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/wallets/debit", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Debit(c)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
}

func TestTransfer_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockWallet)

	mockWallet.EXPECT().TransferTokens(gomock.Any(), ports.TransferRequest{
		FromUserID:  "bob",
		ToUserID:    "alice",
		Amount:      30,
		Description: "thanks",
	}).Return(nil)

	body, _ := json.Marshal(dto.TransferRequest{
		FromUserID: "bob", ToUserID: "alice", Amount: 30, Description: "thanks",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/wallets/transfer", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Transfer(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetHistory_MapsTransactions(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockWallet)

	mockWallet.EXPECT().GetTransactionHistory(gomock.Any(), "user-1").Return([]domain.WalletTransaction{
		{UserID: "user-1", Type: domain.WalletTxDebit, Amount: -30, Description: "redeem", CreatedAt: time.Now()},
		{UserID: "user-1", Type: domain.WalletTxInitialCredit, Amount: 100, CreatedAt: time.Now().Add(-time.Hour)},
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/wallets/user-1/transactions", nil)
	c.Params = gin.Params{{Key: "userId", Value: "user-1"}}

	h.GetHistory(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].([]interface{})
	require.Len(t, data, 2)
	first := data[0].(map[string]interface{})
	assert.Equal(t, "debit", first["transaction_type"])
	assert.Equal(t, float64(-30), first["amount"])
}

func TestGetState_FreshUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockWallet)

	mockWallet.EXPECT().ValidateWalletState(gomock.Any(), "user-1").Return(&ports.WalletState{
		HasWallet:       false,
		HasBonus:        false,
		CanCreateWallet: true,
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/wallets/user-1/state", nil)
	c.Params = gin.Params{{Key: "userId", Value: "user-1"}}

	h.GetState(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, true, data["can_create_wallet"])
}
