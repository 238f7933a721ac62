package ports

import (
	"context"

	"padlink-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// BlockRepository defines persistence for the append-only ledger chain.
// The store must reject an append whose index collides with an existing
// block; implementations surface that as apperror.ErrChainConflict.
type BlockRepository interface {
	Append(ctx context.Context, block *domain.Block) error
	// GetAll returns every block ordered by index ascending.
	GetAll(ctx context.Context) ([]domain.Block, error)
	// GetLatest returns the block with the maximum index, or nil if the
	// chain has not been initialized.
	GetLatest(ctx context.Context) (*domain.Block, error)
}

// WalletRepository defines persistence operations for wallets.
// Methods accepting pgx.Tx are used inside transaction blocks for
// pessimistic locking.
type WalletRepository interface {
	// Create binds a wallet to a user. The user_id primary key makes the
	// bind conditional: a second concurrent creation fails with
	// apperror.ErrWalletAlreadyExists.
	Create(ctx context.Context, tx pgx.Tx, wallet *domain.Wallet) error
	GetByUserID(ctx context.Context, userID string) (*domain.Wallet, error)
	GetByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID string) (*domain.Wallet, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, userID string, balance int64) error
}

// WalletTransactionRepository defines persistence for the append-only
// wallet transaction log.
type WalletTransactionRepository interface {
	// Create appends a transaction row. A second initial_credit row for the
	// same user violates a unique constraint and surfaces as
	// apperror.ErrBonusAlreadyClaimed.
	Create(ctx context.Context, tx pgx.Tx, txn *domain.WalletTransaction) error
	// ListByUser returns the user's transactions newest first.
	ListByUser(ctx context.Context, userID string) ([]domain.WalletTransaction, error)
	// SumByUser returns the arithmetic sum of the user's transaction amounts.
	SumByUser(ctx context.Context, userID string) (int64, error)
	HasInitialCredit(ctx context.Context, userID string) (bool, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
