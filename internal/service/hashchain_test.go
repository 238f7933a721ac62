package service

import (
	"strings"
	"testing"
	"time"

	"padlink-ledger/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPayload(donationID string) domain.DonationTransaction {
	return domain.DonationTransaction{
		ID:              "tx-" + donationID,
		DonationID:      donationID,
		DonorID:         "donor-1",
		DonorName:       "Alice",
		RecipientID:     "recipient-1",
		RecipientName:   "Bob",
		Quantity:        50,
		PadType:         "regular",
		Location:        "Hanoi",
		TransactionType: domain.TransactionCreated,
		Description:     "donation created",
	}
}

func TestHashChain_Mine_SatisfiesDifficulty(t *testing.T) {
	chain := NewHashChain(0)

	block, err := chain.Mine(1, testPayload("don-1"), "prevhash")
	require.NoError(t, err)
	require.NotNil(t, block)

	assert.True(t, strings.HasPrefix(block.Hash, DifficultyPrefix))
	assert.Equal(t, int64(1), block.Index)
	assert.Equal(t, "prevhash", block.PreviousHash)
	assert.Equal(t, block.Hash, chain.ComputeDigest(block.Index, block.Timestamp, block.Payload, block.PreviousHash, block.Nonce))
}

func TestHashChain_ComputeDigest_Deterministic(t *testing.T) {
	chain := NewHashChain(0)
	ts := time.Date(2025, 6, 1, 12, 0, 0, 123456789, time.UTC)
	payload := testPayload("don-1")

	first := chain.ComputeDigest(3, ts, payload, "prev", 42)
	second := chain.ComputeDigest(3, ts, payload, "prev", 42)
	assert.Equal(t, first, second)

	// Same instant in another zone must produce the same digest.
	zone := time.FixedZone("ICT", 7*3600)
	third := chain.ComputeDigest(3, ts.In(zone), payload, "prev", 42)
	assert.Equal(t, first, third)

	// Any field change must produce a different digest.
	assert.NotEqual(t, first, chain.ComputeDigest(4, ts, payload, "prev", 42))
	assert.NotEqual(t, first, chain.ComputeDigest(3, ts.Add(time.Nanosecond), payload, "prev", 42))
	assert.NotEqual(t, first, chain.ComputeDigest(3, ts, payload, "other", 42))
	assert.NotEqual(t, first, chain.ComputeDigest(3, ts, payload, "prev", 43))

	tampered := payload
	tampered.Quantity = 9999
	assert.NotEqual(t, first, chain.ComputeDigest(3, ts, tampered, "prev", 42))
}

func TestHashChain_VerifyLink_ValidPair(t *testing.T) {
	chain := NewHashChain(0)

	genesis, err := chain.Mine(0, domain.GenesisPayload(), domain.GenesisPreviousHash)
	require.NoError(t, err)
	next, err := chain.Mine(1, testPayload("don-1"), genesis.Hash)
	require.NoError(t, err)

	assert.True(t, chain.VerifySeal(genesis))
	assert.True(t, chain.VerifyLink(next, genesis))
}

func TestHashChain_VerifyLink_DetectsTampering(t *testing.T) {
	chain := NewHashChain(0)

	genesis, err := chain.Mine(0, domain.GenesisPayload(), domain.GenesisPreviousHash)
	require.NoError(t, err)
	valid, err := chain.Mine(1, testPayload("don-1"), genesis.Hash)
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(b *domain.Block)
	}{
		{"payload quantity", func(b *domain.Block) { b.Payload.Quantity = 9999 }},
		{"timestamp", func(b *domain.Block) { b.Timestamp = b.Timestamp.Add(time.Second) }},
		{"previous hash", func(b *domain.Block) { b.PreviousHash = "forged" }},
		{"nonce", func(b *domain.Block) { b.Nonce++ }},
		{"stored hash", func(b *domain.Block) { b.Hash = "00" + strings.Repeat("ab", 31) }},
		{"index", func(b *domain.Block) { b.Index = 7 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tampered := *valid
			tc.mutate(&tampered)
			assert.False(t, chain.VerifyLink(&tampered, genesis))
		})
	}
}

func TestHashChain_Mine_AttemptBound(t *testing.T) {
	// A single attempt either hits a valid digest on nonce 0 or exhausts the
	// bound; both outcomes must be consistent with the block returned.
	chain := NewHashChain(1)

	block, err := chain.Mine(1, testPayload("don-1"), "prev")
	if err != nil {
		assertAppError(t, err, "CHAIN_004")
		assert.Nil(t, block)
		return
	}
	require.NotNil(t, block)
	assert.Equal(t, uint64(0), block.Nonce)
	assert.True(t, strings.HasPrefix(block.Hash, DifficultyPrefix))
}
