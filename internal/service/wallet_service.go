package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"padlink-ledger/internal/core/domain"
	"padlink-ledger/internal/core/ports"
	"padlink-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// WalletServiceImpl implements ports.WalletService. Balance mutations are
// serialized per user: a keyed mutex guards the in-process read-modify-write
// and a FOR UPDATE row lock guards it at the store. Operations on different
// users proceed independently.
type WalletServiceImpl struct {
	wallets    ports.WalletRepository
	walletTxs  ports.WalletTransactionRepository
	transactor ports.DBTransactor
	log        zerolog.Logger

	userLocks sync.Map // userID -> *sync.Mutex
}

// NewWalletService creates a new WalletServiceImpl.
func NewWalletService(
	wallets ports.WalletRepository,
	walletTxs ports.WalletTransactionRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		wallets:    wallets,
		walletTxs:  walletTxs,
		transactor: transactor,
		log:        log,
	}
}

func (s *WalletServiceImpl) userLock(userID string) *sync.Mutex {
	lock, _ := s.userLocks.LoadOrStore(userID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// lockUsers acquires the per-user mutexes for all given users in sorted
// order so concurrent transfers between the same pair cannot deadlock.
func (s *WalletServiceImpl) lockUsers(userIDs ...string) func() {
	sorted := append([]string(nil), userIDs...)
	sort.Strings(sorted)

	locks := make([]*sync.Mutex, 0, len(sorted))
	for _, id := range sorted {
		lock := s.userLock(id)
		lock.Lock()
		locks = append(locks, lock)
	}
	return func() {
		for i := len(locks) - 1; i >= 0; i-- {
			locks[i].Unlock()
		}
	}
}

// CreateWallet binds a fresh address to the user, credits the fixed welcome
// bonus and records the one-time initial_credit transaction. The existence
// and bonus checks are independent on purpose: either fact can survive a
// partial failure alone, and a retry must be caught by whichever one holds.
func (s *WalletServiceImpl) CreateWallet(ctx context.Context, userID string) (string, error) {
	unlock := s.lockUsers(userID)
	defer unlock()

	existing, err := s.wallets.GetByUserID(ctx, userID)
	if err != nil {
		return "", apperror.ErrDatabaseError(fmt.Errorf("check wallet exists: %w", err))
	}
	if existing != nil {
		return "", apperror.ErrWalletAlreadyExists()
	}

	hasBonus, err := s.walletTxs.HasInitialCredit(ctx, userID)
	if err != nil {
		return "", apperror.ErrDatabaseError(fmt.Errorf("check welcome bonus: %w", err))
	}
	if hasBonus {
		return "", apperror.ErrBonusAlreadyClaimed()
	}

	address, err := GenerateWalletAddress(userID)
	if err != nil {
		return "", apperror.InternalError(err)
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return "", apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	now := time.Now().UTC()
	wallet := &domain.Wallet{
		UserID:    userID,
		Address:   address,
		Balance:   domain.WelcomeBonusAmount,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Conditional bind: the user_id primary key rejects a second concurrent
	// creation, which the repo surfaces as WalletAlreadyExists.
	if err := s.wallets.Create(ctx, dbTx, wallet); err != nil {
		return "", err
	}

	bonusTx := &domain.WalletTransaction{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        domain.WalletTxInitialCredit,
		Amount:      domain.WelcomeBonusAmount,
		Description: "Welcome bonus - Initial wallet credit",
		CreatedAt:   now,
	}
	// A duplicate-key conflict here means a concurrent caller already
	// recorded the bonus; the repo surfaces BonusAlreadyClaimed and the
	// rollback undoes the bind, never leaving a credited balance without a
	// matching log entry.
	if err := s.walletTxs.Create(ctx, dbTx, bonusTx); err != nil {
		return "", err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return "", apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("user_id", userID).
		Str("address", address).
		Int64("balance", domain.WelcomeBonusAmount).
		Msg("wallet created")

	return address, nil
}

// GetBalance returns the user's current balance.
func (s *WalletServiceImpl) GetBalance(ctx context.Context, userID string) (int64, error) {
	wallet, err := s.wallets.GetByUserID(ctx, userID)
	if err != nil {
		return 0, apperror.ErrDatabaseError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return 0, apperror.ErrNotFound("wallet")
	}
	return wallet.Balance, nil
}

// CreditWallet adds tokens to the user's balance and appends a credit row.
// Balance write and log append commit as one storage transaction.
func (s *WalletServiceImpl) CreditWallet(ctx context.Context, req ports.WalletMutation) (int64, error) {
	if req.Amount <= 0 {
		return 0, apperror.ErrInvalidAmount()
	}

	unlock := s.lockUsers(req.UserID)
	defer unlock()

	newBalance, err := s.mutateBalance(ctx, req, domain.WalletTxCredit, req.Amount)
	if err != nil {
		return 0, err
	}

	s.log.Info().
		Str("user_id", req.UserID).
		Int64("amount", req.Amount).
		Int64("balance", newBalance).
		Msg("wallet credited")

	return newBalance, nil
}

// DebitWallet removes tokens from the user's balance and appends a debit row
// with a negative logged amount. Fails with InsufficientBalance before any
// write if the balance cannot cover the amount.
func (s *WalletServiceImpl) DebitWallet(ctx context.Context, req ports.WalletMutation) (int64, error) {
	if req.Amount <= 0 {
		return 0, apperror.ErrInvalidAmount()
	}

	unlock := s.lockUsers(req.UserID)
	defer unlock()

	newBalance, err := s.mutateBalance(ctx, req, domain.WalletTxDebit, -req.Amount)
	if err != nil {
		return 0, err
	}

	s.log.Info().
		Str("user_id", req.UserID).
		Int64("amount", req.Amount).
		Int64("balance", newBalance).
		Msg("wallet debited")

	return newBalance, nil
}

// mutateBalance applies one signed delta under a row lock. Callers hold the
// per-user mutex and have validated the amount.
func (s *WalletServiceImpl) mutateBalance(ctx context.Context, req ports.WalletMutation, txType domain.WalletTransactionType, delta int64) (int64, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.wallets.GetByUserIDForUpdate(ctx, dbTx, req.UserID)
	if err != nil {
		return 0, apperror.ErrDatabaseError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return 0, apperror.ErrNotFound("wallet")
	}

	if delta < 0 && wallet.Balance < -delta {
		return 0, apperror.ErrInsufficientBalance()
	}

	newBalance := wallet.Balance + delta
	if err := s.wallets.UpdateBalance(ctx, dbTx, req.UserID, newBalance); err != nil {
		return 0, apperror.ErrDatabaseError(fmt.Errorf("update balance: %w", err))
	}

	txn := &domain.WalletTransaction{
		ID:                uuid.New(),
		UserID:            req.UserID,
		Type:              txType,
		Amount:            delta,
		RelatedDonationID: req.RelatedDonationID,
		RelatedLedgerHash: req.RelatedLedgerHash,
		Description:       req.Description,
		CreatedAt:         time.Now().UTC(),
	}
	if err := s.walletTxs.Create(ctx, dbTx, txn); err != nil {
		return 0, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return 0, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	return newBalance, nil
}

// TransferTokens moves tokens between two users. Both legs commit in a
// single storage transaction so a failed credit can never leave the sender
// debited; wallet rows are locked in sorted user order to avoid deadlock.
func (s *WalletServiceImpl) TransferTokens(ctx context.Context, req ports.TransferRequest) error {
	if req.Amount <= 0 {
		return apperror.ErrInvalidAmount()
	}
	if req.FromUserID == req.ToUserID {
		return apperror.Validation("cannot transfer tokens to the same wallet")
	}

	unlock := s.lockUsers(req.FromUserID, req.ToUserID)
	defer unlock()

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	locked := make(map[string]*domain.Wallet, 2)
	order := []string{req.FromUserID, req.ToUserID}
	sort.Strings(order)
	for _, userID := range order {
		wallet, err := s.wallets.GetByUserIDForUpdate(ctx, dbTx, userID)
		if err != nil {
			return apperror.ErrDatabaseError(fmt.Errorf("lock wallet: %w", err))
		}
		if wallet == nil {
			return apperror.ErrNotFound("wallet")
		}
		locked[userID] = wallet
	}

	from := locked[req.FromUserID]
	to := locked[req.ToUserID]

	if from.Balance < req.Amount {
		return apperror.ErrInsufficientBalance()
	}

	if err := s.wallets.UpdateBalance(ctx, dbTx, from.UserID, from.Balance-req.Amount); err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("debit sender: %w", err))
	}
	if err := s.wallets.UpdateBalance(ctx, dbTx, to.UserID, to.Balance+req.Amount); err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("credit recipient: %w", err))
	}

	now := time.Now().UTC()
	legs := []*domain.WalletTransaction{
		{
			ID:                uuid.New(),
			UserID:            from.UserID,
			Type:              domain.WalletTxDebit,
			Amount:            -req.Amount,
			RelatedDonationID: req.RelatedDonationID,
			Description:       "Transfer: " + req.Description,
			CreatedAt:         now,
		},
		{
			ID:                uuid.New(),
			UserID:            to.UserID,
			Type:              domain.WalletTxCredit,
			Amount:            req.Amount,
			RelatedDonationID: req.RelatedDonationID,
			Description:       "Received: " + req.Description,
			CreatedAt:         now,
		},
	}
	for _, leg := range legs {
		if err := s.walletTxs.Create(ctx, dbTx, leg); err != nil {
			return err
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("from", req.FromUserID).
		Str("to", req.ToUserID).
		Int64("amount", req.Amount).
		Msg("tokens transferred")

	return nil
}

// GetTransactionHistory returns the user's wallet transactions newest first.
func (s *WalletServiceImpl) GetTransactionHistory(ctx context.Context, userID string) ([]domain.WalletTransaction, error) {
	txns, err := s.walletTxs.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list wallet transactions: %w", err))
	}
	return txns, nil
}

// ValidateWalletState reports whether the user can still create a wallet and
// why not, without mutating anything.
func (s *WalletServiceImpl) ValidateWalletState(ctx context.Context, userID string) (*ports.WalletState, error) {
	wallet, err := s.wallets.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get wallet: %w", err))
	}
	hasBonus, err := s.walletTxs.HasInitialCredit(ctx, userID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("check welcome bonus: %w", err))
	}

	state := &ports.WalletState{
		HasWallet:       wallet != nil,
		HasBonus:        hasBonus,
		CanCreateWallet: true,
	}
	switch {
	case state.HasWallet:
		state.CanCreateWallet = false
		state.Message = "Wallet already exists for this user"
	case state.HasBonus:
		state.CanCreateWallet = false
		state.Message = "Welcome bonus already claimed"
	}
	return state, nil
}

// Reconcile checks the invariant that the stored balance equals the sum of
// the user's logged transaction amounts.
func (s *WalletServiceImpl) Reconcile(ctx context.Context, userID string) (*ports.ReconciliationReport, error) {
	wallet, err := s.wallets.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}

	sum, err := s.walletTxs.SumByUser(ctx, userID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("sum wallet transactions: %w", err))
	}

	report := &ports.ReconciliationReport{
		UserID:     userID,
		Balance:    wallet.Balance,
		LedgerSum:  sum,
		Reconciled: wallet.Balance == sum,
	}
	if !report.Reconciled {
		s.log.Error().
			Str("user_id", userID).
			Int64("balance", wallet.Balance).
			Int64("ledger_sum", sum).
			Msg("wallet reconciliation mismatch")
	}
	return report, nil
}
