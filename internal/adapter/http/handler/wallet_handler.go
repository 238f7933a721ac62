package handler

import (
	"padlink-ledger/internal/adapter/http/dto"
	"padlink-ledger/internal/core/domain"
	"padlink-ledger/internal/core/ports"
	"padlink-ledger/pkg/apperror"
	"padlink-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// WalletHandler handles token wallet endpoints.
type WalletHandler struct {
	walletSvc ports.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc ports.WalletService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc}
}

// CreateWallet handles POST /api/v1/wallets.
func (h *WalletHandler) CreateWallet(c *gin.Context) {
	var req dto.CreateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	address, err := h.walletSvc.CreateWallet(c.Request.Context(), req.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.CreateWalletResponse{
		UserID:  req.UserID,
		Address: address,
		Balance: domain.WelcomeBonusAmount,
	})
}

// GetBalance handles GET /api/v1/wallets/:userId/balance.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID := c.Param("userId")

	balance, err := h.walletSvc.GetBalance(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{
		UserID:  userID,
		Balance: balance,
	})
}

// Credit handles POST /api/v1/wallets/credit.
func (h *WalletHandler) Credit(c *gin.Context) {
	var req dto.WalletMutationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	balance, err := h.walletSvc.CreditWallet(c.Request.Context(), ports.WalletMutation{
		UserID:            req.UserID,
		Amount:            req.Amount,
		Description:       req.Description,
		RelatedDonationID: req.RelatedDonationID,
		RelatedLedgerHash: req.RelatedLedgerHash,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{UserID: req.UserID, Balance: balance})
}

// Debit handles POST /api/v1/wallets/debit.
func (h *WalletHandler) Debit(c *gin.Context) {
	var req dto.WalletMutationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	balance, err := h.walletSvc.DebitWallet(c.Request.Context(), ports.WalletMutation{
		UserID:            req.UserID,
		Amount:            req.Amount,
		Description:       req.Description,
		RelatedDonationID: req.RelatedDonationID,
		RelatedLedgerHash: req.RelatedLedgerHash,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{UserID: req.UserID, Balance: balance})
}

// Transfer handles POST /api/v1/wallets/transfer.
func (h *WalletHandler) Transfer(c *gin.Context) {
	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	err := h.walletSvc.TransferTokens(c.Request.Context(), ports.TransferRequest{
		FromUserID:        req.FromUserID,
		ToUserID:          req.ToUserID,
		Amount:            req.Amount,
		Description:       req.Description,
		RelatedDonationID: req.RelatedDonationID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"transferred": req.Amount})
}

// GetHistory handles GET /api/v1/wallets/:userId/transactions.
func (h *WalletHandler) GetHistory(c *gin.Context) {
	userID := c.Param("userId")

	txns, err := h.walletSvc.GetTransactionHistory(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromWalletTransactions(txns))
}

// GetState handles GET /api/v1/wallets/:userId/state.
func (h *WalletHandler) GetState(c *gin.Context) {
	userID := c.Param("userId")

	state, err := h.walletSvc.ValidateWalletState(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, state)
}

// Reconcile handles GET /api/v1/wallets/:userId/reconcile.
func (h *WalletHandler) Reconcile(c *gin.Context) {
	userID := c.Param("userId")

	report, err := h.walletSvc.Reconcile(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, report)
}
