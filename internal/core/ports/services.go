package ports

import (
	"context"

	"padlink-ledger/internal/core/domain"
)

// LedgerService owns the single writer path to the chain and the read-side
// integrity verification.
type LedgerService interface {
	// EnsureInitialized creates the genesis block if the chain is empty.
	// Idempotent and race-safe: the loser of a concurrent initialization
	// treats the existing genesis as success.
	EnsureInitialized(ctx context.Context) error
	// AppendTransaction mines a block linking to the current tail and
	// persists it. ChainConflict errors are retryable.
	AppendTransaction(ctx context.Context, payload domain.DonationTransaction) (*domain.Block, error)
	GetAllBlocks(ctx context.Context) ([]domain.Block, error)
	GetLatestBlock(ctx context.Context) (*domain.Block, error)
	// VerifyChainIntegrity walks the chain from genesis to tail. It stops
	// at the first failing link; a single break invalidates the remainder.
	VerifyChainIntegrity(ctx context.Context) (*IntegrityReport, error)
	FindBlocksByDonation(ctx context.Context, donationID string) ([]domain.Block, error)
	FindBlocksByUser(ctx context.Context, userID string) ([]domain.Block, error)
}

// IntegrityReport is the result of a full-chain verification.
type IntegrityReport struct {
	IsValid           bool   `json:"is_valid"`
	TotalBlocks       int64  `json:"total_blocks"`
	LastVerifiedIndex int64  `json:"last_verified_index"`
	Error             string `json:"error,omitempty"`
}

// WalletService owns balance mutation. Mutations are serialized per user;
// operations on different users proceed independently.
type WalletService interface {
	CreateWallet(ctx context.Context, userID string) (string, error)
	GetBalance(ctx context.Context, userID string) (int64, error)
	CreditWallet(ctx context.Context, req WalletMutation) (int64, error)
	DebitWallet(ctx context.Context, req WalletMutation) (int64, error)
	TransferTokens(ctx context.Context, req TransferRequest) error
	GetTransactionHistory(ctx context.Context, userID string) ([]domain.WalletTransaction, error)
	ValidateWalletState(ctx context.Context, userID string) (*WalletState, error)
	// Reconcile checks the invariant balance == sum(transaction amounts).
	Reconcile(ctx context.Context, userID string) (*ReconciliationReport, error)
}

// WalletMutation holds validated input for a credit or debit.
type WalletMutation struct {
	UserID            string
	Amount            int64
	Description       string
	RelatedDonationID *string
	RelatedLedgerHash *string
}

// TransferRequest holds validated input for a two-leg transfer.
type TransferRequest struct {
	FromUserID        string
	ToUserID          string
	Amount            int64
	Description       string
	RelatedDonationID *string
}

// WalletState describes whether a user can still create a wallet.
type WalletState struct {
	HasWallet       bool   `json:"has_wallet"`
	HasBonus        bool   `json:"has_bonus"`
	CanCreateWallet bool   `json:"can_create_wallet"`
	Message         string `json:"message,omitempty"`
}

// ReconciliationReport compares the stored balance against the transaction
// log sum.
type ReconciliationReport struct {
	UserID     string `json:"user_id"`
	Balance    int64  `json:"balance"`
	LedgerSum  int64  `json:"ledger_sum"`
	Reconciled bool   `json:"reconciled"`
}
