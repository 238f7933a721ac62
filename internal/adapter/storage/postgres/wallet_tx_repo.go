package postgres

import (
	"context"
	"fmt"

	"padlink-ledger/internal/core/domain"
	"padlink-ledger/pkg/apperror"

	"github.com/jackc/pgx/v5"
)

// WalletTxRepo implements ports.WalletTransactionRepository.
type WalletTxRepo struct {
	pool Pool
}

// NewWalletTxRepo creates a new WalletTxRepo.
func NewWalletTxRepo(pool Pool) *WalletTxRepo {
	return &WalletTxRepo{pool: pool}
}

// Create appends a transaction row. The partial unique index on
// (user_id) WHERE transaction_type = 'initial_credit' makes the welcome
// bonus a one-time event; a violation surfaces as BonusAlreadyClaimed.
func (r *WalletTxRepo) Create(ctx context.Context, tx pgx.Tx, txn *domain.WalletTransaction) error {
	query := `INSERT INTO wallet_transactions
		(id, user_id, transaction_type, amount, related_donation_id, related_ledger_hash, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := tx.Exec(ctx, query,
		txn.ID, txn.UserID, string(txn.Type), txn.Amount,
		txn.RelatedDonationID, txn.RelatedLedgerHash, txn.Description, txn.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.ErrBonusAlreadyClaimed()
		}
		return fmt.Errorf("insert wallet transaction: %w", err)
	}
	return nil
}

// ListByUser returns the user's transactions newest first.
func (r *WalletTxRepo) ListByUser(ctx context.Context, userID string) ([]domain.WalletTransaction, error) {
	query := `SELECT id, user_id, transaction_type, amount, related_donation_id, related_ledger_hash, description, created_at
		FROM wallet_transactions WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query wallet transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.WalletTransaction
	for rows.Next() {
		var (
			txn    domain.WalletTransaction
			txType string
		)
		if err := rows.Scan(&txn.ID, &txn.UserID, &txType, &txn.Amount,
			&txn.RelatedDonationID, &txn.RelatedLedgerHash, &txn.Description, &txn.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan wallet transaction: %w", err)
		}
		txn.Type = domain.WalletTransactionType(txType)
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet transactions: %w", err)
	}
	return txns, nil
}

// SumByUser returns the arithmetic sum of the user's transaction amounts.
func (r *WalletTxRepo) SumByUser(ctx context.Context, userID string) (int64, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM wallet_transactions WHERE user_id = $1`

	var sum int64
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum wallet transactions: %w", err)
	}
	return sum, nil
}

// HasInitialCredit reports whether the user has ever received the welcome
// bonus, regardless of whether the wallet row still exists.
func (r *WalletTxRepo) HasInitialCredit(ctx context.Context, userID string) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM wallet_transactions WHERE user_id = $1 AND transaction_type = 'initial_credit'
	)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check initial credit: %w", err)
	}
	return exists, nil
}
