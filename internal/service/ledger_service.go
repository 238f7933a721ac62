package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"padlink-ledger/internal/core/domain"
	"padlink-ledger/internal/core/ports"
	"padlink-ledger/pkg/apperror"

	"github.com/rs/zerolog"
)

// LedgerServiceImpl implements ports.LedgerService. It is the single writer
// to the chain: the tail mutex serializes "read latest, mine, append" so two
// appends never mine against the same previous hash. The storage unique
// index on block index is the backstop if a second writer slips through.
type LedgerServiceImpl struct {
	blocks ports.BlockRepository
	chain  *HashChain
	log    zerolog.Logger

	tailMu sync.Mutex
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	blocks ports.BlockRepository,
	chain *HashChain,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		blocks: blocks,
		chain:  chain,
		log:    log,
	}
}

// EnsureInitialized mines and persists the genesis block if the chain is
// empty. Idempotent: safe to call before every append.
func (s *LedgerServiceImpl) EnsureInitialized(ctx context.Context) error {
	s.tailMu.Lock()
	defer s.tailMu.Unlock()
	return s.ensureInitializedLocked(ctx)
}

// ensureInitializedLocked must be called with tailMu held. A concurrent
// writer that appended genesis first surfaces as a ChainConflict from the
// store; that means the chain exists, so the loser discards its own block
// and reports success.
func (s *LedgerServiceImpl) ensureInitializedLocked(ctx context.Context) error {
	latest, err := s.blocks.GetLatest(ctx)
	if err != nil {
		return apperror.ErrChainUnavailable(fmt.Errorf("read chain tail: %w", err))
	}
	if latest != nil {
		return nil
	}

	genesis, err := s.chain.Mine(0, domain.GenesisPayload(), domain.GenesisPreviousHash)
	if err != nil {
		return err
	}

	if err := s.blocks.Append(ctx, genesis); err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code == "CHAIN_002" {
			s.log.Debug().Msg("genesis already created by concurrent writer")
			return nil
		}
		return err
	}

	s.log.Info().
		Str("hash", genesis.Hash).
		Uint64("nonce", genesis.Nonce).
		Msg("genesis block created")

	return nil
}

// AppendTransaction mines a block for the payload against the current tail
// and persists it. The whole read-mine-append sequence is one critical
// section; an index collision at the store surfaces as a retryable
// ChainConflict.
func (s *LedgerServiceImpl) AppendTransaction(ctx context.Context, payload domain.DonationTransaction) (*domain.Block, error) {
	s.tailMu.Lock()
	defer s.tailMu.Unlock()

	if err := s.ensureInitializedLocked(ctx); err != nil {
		return nil, err
	}

	latest, err := s.blocks.GetLatest(ctx)
	if err != nil {
		return nil, apperror.ErrChainUnavailable(fmt.Errorf("read chain tail: %w", err))
	}
	if latest == nil {
		return nil, apperror.ErrChainUnavailable(fmt.Errorf("chain empty after initialization"))
	}

	block, err := s.chain.Mine(latest.Index+1, payload, latest.Hash)
	if err != nil {
		return nil, err
	}

	if err := s.blocks.Append(ctx, block); err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("index", block.Index).
		Str("hash", block.Hash).
		Str("donation_id", payload.DonationID).
		Str("transaction_type", string(payload.TransactionType)).
		Msg("block appended")

	return block, nil
}

// GetAllBlocks returns the full chain ordered by index ascending.
func (s *LedgerServiceImpl) GetAllBlocks(ctx context.Context) ([]domain.Block, error) {
	blocks, err := s.blocks.GetAll(ctx)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("load chain: %w", err))
	}
	return blocks, nil
}

// GetLatestBlock returns the chain tail, or nil if uninitialized.
func (s *LedgerServiceImpl) GetLatestBlock(ctx context.Context) (*domain.Block, error) {
	latest, err := s.blocks.GetLatest(ctx)
	if err != nil {
		return nil, apperror.ErrChainUnavailable(fmt.Errorf("read chain tail: %w", err))
	}
	return latest, nil
}

// VerifyChainIntegrity loads the full chain and re-validates every link from
// genesis to tail. Verification stops at the first failing link: a single
// break invalidates everything past it regardless of how later links look.
// Failures are reported, never repaired. Every call walks the stored chain;
// a remembered result could hide a block rewritten since it was computed.
func (s *LedgerServiceImpl) VerifyChainIntegrity(ctx context.Context) (*ports.IntegrityReport, error) {
	blocks, err := s.blocks.GetAll(ctx)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("load chain: %w", err))
	}

	if len(blocks) == 0 {
		return &ports.IntegrityReport{
			IsValid:           false,
			TotalBlocks:       0,
			LastVerifiedIndex: -1,
			Error:             "no blocks found in chain",
		}, nil
	}

	report := s.walkChain(blocks)

	if !report.IsValid {
		s.log.Error().
			Str("detail", report.Error).
			Int64("last_verified_index", report.LastVerifiedIndex).
			Msg("chain integrity violation detected")
	}

	return report, nil
}

// walkChain performs the actual pairwise validation.
func (s *LedgerServiceImpl) walkChain(blocks []domain.Block) *ports.IntegrityReport {
	total := int64(len(blocks))

	genesis := &blocks[0]
	if !genesis.IsGenesis() {
		return &ports.IntegrityReport{
			IsValid:           false,
			TotalBlocks:       total,
			LastVerifiedIndex: -1,
			Error:             "genesis block sentinel fields malformed",
		}
	}
	if !s.chain.VerifySeal(genesis) {
		return &ports.IntegrityReport{
			IsValid:           false,
			TotalBlocks:       total,
			LastVerifiedIndex: -1,
			Error:             "genesis block digest mismatch",
		}
	}

	for i := 1; i < len(blocks); i++ {
		if !s.chain.VerifyLink(&blocks[i], &blocks[i-1]) {
			return &ports.IntegrityReport{
				IsValid:           false,
				TotalBlocks:       total,
				LastVerifiedIndex: blocks[i-1].Index,
				Error:             fmt.Sprintf("broken link at index %d", blocks[i].Index),
			}
		}
	}

	return &ports.IntegrityReport{
		IsValid:           true,
		TotalBlocks:       total,
		LastVerifiedIndex: blocks[len(blocks)-1].Index,
	}
}

// FindBlocksByDonation returns every block whose payload references the
// donation. Linear scan over the full chain; fine at expected chain sizes,
// a real index would be needed at scale.
func (s *LedgerServiceImpl) FindBlocksByDonation(ctx context.Context, donationID string) ([]domain.Block, error) {
	blocks, err := s.GetAllBlocks(ctx)
	if err != nil {
		return nil, err
	}

	var matched []domain.Block
	for _, b := range blocks {
		if b.Payload.DonationID == donationID {
			matched = append(matched, b)
		}
	}
	return matched, nil
}

// FindBlocksByUser returns every block naming the user as donor or recipient.
func (s *LedgerServiceImpl) FindBlocksByUser(ctx context.Context, userID string) ([]domain.Block, error) {
	blocks, err := s.GetAllBlocks(ctx)
	if err != nil {
		return nil, err
	}

	var matched []domain.Block
	for _, b := range blocks {
		if b.Payload.Involves(userID) {
			matched = append(matched, b)
		}
	}
	return matched, nil
}
