package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"padlink-ledger/internal/core/domain"
	"padlink-ledger/pkg/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBlock(index int64, previousHash string) *domain.Block {
	return &domain.Block{
		Index:     index,
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 123456789, time.UTC),
		Payload: domain.DonationTransaction{
			ID:              "tx-1",
			DonationID:      "don-1",
			DonorID:         "donor-1",
			DonorName:       "Alice",
			Quantity:        50,
			PadType:         "regular",
			Location:        "Hanoi",
			TransactionType: domain.TransactionCreated,
			Description:     "donation created",
		},
		PreviousHash: previousHash,
		Hash:         "00abc123",
		Nonce:        17,
	}
}

func blockColumns() []string {
	return []string{"block_index", "timestamp_ns", "payload", "previous_hash", "hash", "nonce"}
}

func blockRow(t *testing.T, b *domain.Block) *pgxmock.Rows {
	t.Helper()
	payload, err := json.Marshal(b.Payload)
	require.NoError(t, err)
	return pgxmock.NewRows(blockColumns()).AddRow(
		b.Index, b.Timestamp.UTC().UnixNano(), payload,
		b.PreviousHash, b.Hash, int64(b.Nonce),
	)
}

func TestBlockRepo_Append(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBlockRepo(mock)
	b := newTestBlock(1, "00prev")
	payload, err := json.Marshal(b.Payload)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO ledger_blocks").
		WithArgs(b.Index, b.Timestamp.UTC().UnixNano(), payload, b.PreviousHash, b.Hash, int64(b.Nonce)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Append(context.Background(), b)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBlockRepo_Append_IndexCollision(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBlockRepo(mock)
	b := newTestBlock(1, "00prev")

	mock.ExpectExec("INSERT INTO ledger_blocks").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err = repo.Append(context.Background(), b)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CHAIN_002", appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBlockRepo_GetAll(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBlockRepo(mock)
	b0 := newTestBlock(0, domain.GenesisPreviousHash)
	b1 := newTestBlock(1, b0.Hash)

	rows := blockRow(t, b0)
	payload, err := json.Marshal(b1.Payload)
	require.NoError(t, err)
	rows.AddRow(b1.Index, b1.Timestamp.UTC().UnixNano(), payload, b1.PreviousHash, b1.Hash, int64(b1.Nonce))

	mock.ExpectQuery("SELECT .+ FROM ledger_blocks ORDER BY block_index ASC").
		WillReturnRows(rows)

	blocks, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, int64(0), blocks[0].Index)
	assert.Equal(t, b0.Payload, blocks[0].Payload)
	assert.Equal(t, b0.Timestamp, blocks[0].Timestamp)
	assert.Equal(t, uint64(17), blocks[1].Nonce)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBlockRepo_GetLatest(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBlockRepo(mock)
	b := newTestBlock(5, "00prev")

	mock.ExpectQuery("SELECT .+ FROM ledger_blocks ORDER BY block_index DESC LIMIT 1").
		WillReturnRows(blockRow(t, b))

	latest, err := repo.GetLatest(context.Background())
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, int64(5), latest.Index)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBlockRepo_GetLatest_EmptyChain(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBlockRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM ledger_blocks ORDER BY block_index DESC LIMIT 1").
		WillReturnRows(pgxmock.NewRows(blockColumns()))

	latest, err := repo.GetLatest(context.Background())
	require.NoError(t, err)
	assert.Nil(t, latest)
	assert.NoError(t, mock.ExpectationsWereMet())
}
