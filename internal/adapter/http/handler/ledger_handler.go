package handler

import (
	"padlink-ledger/internal/adapter/http/dto"
	"padlink-ledger/internal/core/ports"
	"padlink-ledger/pkg/apperror"
	"padlink-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// LedgerHandler handles blockchain ledger endpoints.
type LedgerHandler struct {
	ledgerSvc ports.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerSvc ports.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerSvc: ledgerSvc}
}

// AppendTransaction handles POST /api/v1/ledger/transactions.
func (h *LedgerHandler) AppendTransaction(c *gin.Context) {
	var req dto.AppendTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	block, err := h.ledgerSvc.AppendTransaction(c.Request.Context(), req.ToDomain())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.FromBlock(block))
}

// ListBlocks handles GET /api/v1/ledger/blocks.
func (h *LedgerHandler) ListBlocks(c *gin.Context) {
	blocks, err := h.ledgerSvc.GetAllBlocks(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromBlocks(blocks))
}

// GetLatestBlock handles GET /api/v1/ledger/blocks/latest.
func (h *LedgerHandler) GetLatestBlock(c *gin.Context) {
	block, err := h.ledgerSvc.GetLatestBlock(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if block == nil {
		response.Error(c, apperror.ErrNotFound("block"))
		return
	}

	response.OK(c, dto.FromBlock(block))
}

// VerifyChain handles GET /api/v1/ledger/verify.
func (h *LedgerHandler) VerifyChain(c *gin.Context) {
	report, err := h.ledgerSvc.VerifyChainIntegrity(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, report)
}

// GetBlocksByDonation handles GET /api/v1/ledger/donations/:donationId.
func (h *LedgerHandler) GetBlocksByDonation(c *gin.Context) {
	donationID := c.Param("donationId")
	if donationID == "" {
		response.Error(c, apperror.Validation("donation id is required"))
		return
	}

	blocks, err := h.ledgerSvc.FindBlocksByDonation(c.Request.Context(), donationID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromBlocks(blocks))
}

// GetBlocksByUser handles GET /api/v1/ledger/users/:userId.
func (h *LedgerHandler) GetBlocksByUser(c *gin.Context) {
	userID := c.Param("userId")
	if userID == "" {
		response.Error(c, apperror.Validation("user id is required"))
		return
	}

	blocks, err := h.ledgerSvc.FindBlocksByUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromBlocks(blocks))
}
