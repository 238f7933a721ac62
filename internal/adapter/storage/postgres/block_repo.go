package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"padlink-ledger/internal/core/domain"
	"padlink-ledger/pkg/apperror"

	"github.com/jackc/pgx/v5"
)

// BlockRepo implements ports.BlockRepository. Timestamps are persisted as
// UTC unix nanoseconds so a storage roundtrip reproduces the block digest
// exactly.
type BlockRepo struct {
	pool Pool
}

// NewBlockRepo creates a new BlockRepo.
func NewBlockRepo(pool Pool) *BlockRepo {
	return &BlockRepo{pool: pool}
}

// Append inserts a block. The primary key on block_index rejects a
// concurrent append against the same tail; that surfaces as a retryable
// ChainConflict.
func (r *BlockRepo) Append(ctx context.Context, b *domain.Block) error {
	query := `INSERT INTO ledger_blocks (block_index, timestamp_ns, payload, previous_hash, hash, nonce)
		VALUES ($1, $2, $3, $4, $5, $6)`

	payload, err := json.Marshal(b.Payload)
	if err != nil {
		return fmt.Errorf("marshal block payload: %w", err)
	}

	_, err = r.pool.Exec(ctx, query,
		b.Index, b.Timestamp.UTC().UnixNano(), payload,
		b.PreviousHash, b.Hash, int64(b.Nonce),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.ErrChainConflict()
		}
		return fmt.Errorf("insert block: %w", err)
	}
	return nil
}

// GetAll returns the full chain ordered by index ascending.
func (r *BlockRepo) GetAll(ctx context.Context) ([]domain.Block, error) {
	query := `SELECT block_index, timestamp_ns, payload, previous_hash, hash, nonce
		FROM ledger_blocks ORDER BY block_index ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query blocks: %w", err)
	}
	defer rows.Close()

	var blocks []domain.Block
	for rows.Next() {
		block, err := scanBlock(rows)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, *block)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blocks: %w", err)
	}
	return blocks, nil
}

// GetLatest returns the block with the maximum index, or nil if the chain
// is empty.
func (r *BlockRepo) GetLatest(ctx context.Context) (*domain.Block, error) {
	query := `SELECT block_index, timestamp_ns, payload, previous_hash, hash, nonce
		FROM ledger_blocks ORDER BY block_index DESC LIMIT 1`

	block, err := scanBlock(r.pool.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return block, nil
}

func scanBlock(row pgx.Row) (*domain.Block, error) {
	var (
		b           domain.Block
		timestampNs int64
		payload     []byte
		nonce       int64
	)
	if err := row.Scan(&b.Index, &timestampNs, &payload, &b.PreviousHash, &b.Hash, &nonce); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan block: %w", err)
	}
	if err := json.Unmarshal(payload, &b.Payload); err != nil {
		return nil, fmt.Errorf("unmarshal block payload: %w", err)
	}
	b.Timestamp = time.Unix(0, timestampNs).UTC()
	b.Nonce = uint64(nonce)
	return &b, nil
}
