package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"padlink-ledger/internal/core/domain"
	"padlink-ledger/pkg/apperror"

	"github.com/jackc/pgx/v5"
)

// noopTx satisfies pgx.Tx for the in-memory repos; the embedded interface
// panics on anything the tests never call.
type noopTx struct{ pgx.Tx }

func (noopTx) Commit(context.Context) error   { return nil }
func (noopTx) Rollback(context.Context) error { return nil }

type inMemoryTransactor struct{}

func newInMemoryTransactor() *inMemoryTransactor { return &inMemoryTransactor{} }

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return noopTx{}, nil
}

// --- In-Memory Block Repo ---

type inMemoryBlockRepo struct {
	mu     sync.RWMutex
	blocks map[int64]domain.Block
}

func newInMemoryBlockRepo() *inMemoryBlockRepo {
	return &inMemoryBlockRepo{blocks: make(map[int64]domain.Block)}
}

func (r *inMemoryBlockRepo) Append(ctx context.Context, b *domain.Block) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.blocks[b.Index]; exists {
		return apperror.ErrChainConflict()
	}
	r.blocks[b.Index] = *b
	return nil
}

func (r *inMemoryBlockRepo) GetAll(ctx context.Context) ([]domain.Block, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Block, 0, len(r.blocks))
	for _, b := range r.blocks {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}

func (r *inMemoryBlockRepo) GetLatest(ctx context.Context) (*domain.Block, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var latest *domain.Block
	for i := range r.blocks {
		b := r.blocks[i]
		if latest == nil || b.Index > latest.Index {
			latest = &b
		}
	}
	return latest, nil
}

// tamper overwrites a stored block, simulating out-of-band mutation of the
// backing store.
func (r *inMemoryBlockRepo) tamper(index int64, mutate func(b *domain.Block)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := r.blocks[index]
	mutate(&b)
	r.blocks[index] = b
}

// --- In-Memory Wallet Repo ---

type inMemoryWalletRepo struct {
	mu      sync.RWMutex
	wallets map[string]*domain.Wallet
}

func newInMemoryWalletRepo() *inMemoryWalletRepo {
	return &inMemoryWalletRepo{wallets: make(map[string]*domain.Wallet)}
}

func (r *inMemoryWalletRepo) Create(ctx context.Context, tx pgx.Tx, w *domain.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.wallets[w.UserID]; exists {
		return apperror.ErrWalletAlreadyExists()
	}
	cp := *w
	r.wallets[w.UserID] = &cp
	return nil
}

func (r *inMemoryWalletRepo) GetByUserID(ctx context.Context, userID string) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.wallets[userID]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r *inMemoryWalletRepo) GetByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID string) (*domain.Wallet, error) {
	return r.GetByUserID(ctx, userID)
}

func (r *inMemoryWalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, userID string, balance int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[userID]
	if !ok {
		return fmt.Errorf("wallet not found: %s", userID)
	}
	w.Balance = balance
	return nil
}

// --- In-Memory Wallet Transaction Repo ---

type inMemoryWalletTxRepo struct {
	mu   sync.RWMutex
	txns []domain.WalletTransaction
}

func newInMemoryWalletTxRepo() *inMemoryWalletTxRepo {
	return &inMemoryWalletTxRepo{}
}

func (r *inMemoryWalletTxRepo) Create(ctx context.Context, tx pgx.Tx, txn *domain.WalletTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if txn.Type == domain.WalletTxInitialCredit {
		for _, existing := range r.txns {
			if existing.UserID == txn.UserID && existing.Type == domain.WalletTxInitialCredit {
				return apperror.ErrBonusAlreadyClaimed()
			}
		}
	}
	r.txns = append(r.txns, *txn)
	return nil
}

func (r *inMemoryWalletTxRepo) ListByUser(ctx context.Context, userID string) ([]domain.WalletTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.WalletTransaction
	// Insertion order is creation order; newest first means reversed.
	for i := len(r.txns) - 1; i >= 0; i-- {
		if r.txns[i].UserID == userID {
			out = append(out, r.txns[i])
		}
	}
	return out, nil
}

func (r *inMemoryWalletTxRepo) SumByUser(ctx context.Context, userID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var sum int64
	for _, txn := range r.txns {
		if txn.UserID == userID {
			sum += txn.Amount
		}
	}
	return sum, nil
}

func (r *inMemoryWalletTxRepo) HasInitialCredit(ctx context.Context, userID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, txn := range r.txns {
		if txn.UserID == userID && txn.Type == domain.WalletTxInitialCredit {
			return true, nil
		}
	}
	return false, nil
}
