package dto

import (
	"time"

	"padlink-ledger/internal/core/domain"
)

// AppendTransactionRequest is the request body for recording a donation
// lifecycle event on the ledger.
type AppendTransactionRequest struct {
	ID              string `json:"id" binding:"required,safe_id,max=100"`
	DonationID      string `json:"donation_id" binding:"required,safe_id,max=100"`
	DonorID         string `json:"donor_id" binding:"required,safe_id,max=100"`
	DonorName       string `json:"donor_name" binding:"required,max=100"`
	RecipientID     string `json:"recipient_id" binding:"omitempty,safe_id,max=100"`
	RecipientName   string `json:"recipient_name" binding:"omitempty,max=100"`
	Quantity        int    `json:"quantity" binding:"required,gt=0"`
	PadType         string `json:"pad_type" binding:"required,max=50"`
	Location        string `json:"location" binding:"required,max=200"`
	TransactionType string `json:"transaction_type" binding:"required,oneof=created reserved completed cancelled"`
	Description     string `json:"description" binding:"max=500"`
}

// ToDomain converts the request into the immutable block payload.
func (r AppendTransactionRequest) ToDomain() domain.DonationTransaction {
	return domain.DonationTransaction{
		ID:              r.ID,
		DonationID:      r.DonationID,
		DonorID:         r.DonorID,
		DonorName:       r.DonorName,
		RecipientID:     r.RecipientID,
		RecipientName:   r.RecipientName,
		Quantity:        r.Quantity,
		PadType:         r.PadType,
		Location:        r.Location,
		TransactionType: domain.TransactionType(r.TransactionType),
		Description:     r.Description,
	}
}

// BlockResponse is the wire representation of one ledger block.
type BlockResponse struct {
	Index        int64                      `json:"index"`
	Timestamp    string                     `json:"timestamp"`
	Payload      domain.DonationTransaction `json:"payload"`
	PreviousHash string                     `json:"previous_hash"`
	Hash         string                     `json:"hash"`
	Nonce        uint64                     `json:"nonce"`
}

// FromBlock converts a domain block into its wire representation.
func FromBlock(b *domain.Block) BlockResponse {
	return BlockResponse{
		Index:        b.Index,
		Timestamp:    b.Timestamp.UTC().Format(time.RFC3339Nano),
		Payload:      b.Payload,
		PreviousHash: b.PreviousHash,
		Hash:         b.Hash,
		Nonce:        b.Nonce,
	}
}

// FromBlocks converts a slice of domain blocks.
func FromBlocks(blocks []domain.Block) []BlockResponse {
	out := make([]BlockResponse, 0, len(blocks))
	for i := range blocks {
		out = append(out, FromBlock(&blocks[i]))
	}
	return out
}

// CreateWalletRequest is the request body for wallet creation.
type CreateWalletRequest struct {
	UserID string `json:"user_id" binding:"required,safe_id,max=100"`
}

// CreateWalletResponse is the response body for successful wallet creation.
type CreateWalletResponse struct {
	UserID  string `json:"user_id"`
	Address string `json:"address"`
	Balance int64  `json:"balance"`
}

// WalletMutationRequest is the request body for a credit or debit.
type WalletMutationRequest struct {
	UserID            string  `json:"user_id" binding:"required,safe_id,max=100"`
	Amount            int64   `json:"amount" binding:"required,gt=0"`
	Description       string  `json:"description" binding:"max=500"`
	RelatedDonationID *string `json:"related_donation_id,omitempty" binding:"omitempty,safe_id,max=100"`
	RelatedLedgerHash *string `json:"related_ledger_hash,omitempty" binding:"omitempty,safe_id,max=64"`
}

// TransferRequest is the request body for a wallet-to-wallet transfer.
type TransferRequest struct {
	FromUserID        string  `json:"from_user_id" binding:"required,safe_id,max=100"`
	ToUserID          string  `json:"to_user_id" binding:"required,safe_id,max=100"`
	Amount            int64   `json:"amount" binding:"required,gt=0"`
	Description       string  `json:"description" binding:"max=500"`
	RelatedDonationID *string `json:"related_donation_id,omitempty" binding:"omitempty,safe_id,max=100"`
}

// BalanceResponse is the response for a balance query.
type BalanceResponse struct {
	UserID  string `json:"user_id"`
	Balance int64  `json:"balance"`
}

// WalletTransactionResponse is the wire representation of one wallet
// transaction log entry.
type WalletTransactionResponse struct {
	ID                string  `json:"id"`
	TransactionType   string  `json:"transaction_type"`
	Amount            int64   `json:"amount"`
	RelatedDonationID *string `json:"related_donation_id,omitempty"`
	RelatedLedgerHash *string `json:"related_ledger_hash,omitempty"`
	Description       string  `json:"description"`
	CreatedAt         string  `json:"created_at"`
}

// FromWalletTransactions converts domain transactions into their wire
// representation.
func FromWalletTransactions(txns []domain.WalletTransaction) []WalletTransactionResponse {
	out := make([]WalletTransactionResponse, 0, len(txns))
	for _, txn := range txns {
		out = append(out, WalletTransactionResponse{
			ID:                txn.ID.String(),
			TransactionType:   string(txn.Type),
			Amount:            txn.Amount,
			RelatedDonationID: txn.RelatedDonationID,
			RelatedLedgerHash: txn.RelatedLedgerHash,
			Description:       txn.Description,
			CreatedAt:         txn.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	return out
}
