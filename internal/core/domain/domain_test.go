package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDonationTransaction_Involves(t *testing.T) {
	tx := DonationTransaction{
		DonorID:     "donor-1",
		RecipientID: "recipient-1",
	}

	assert.True(t, tx.Involves("donor-1"))
	assert.True(t, tx.Involves("recipient-1"))
	assert.False(t, tx.Involves("someone-else"))
}

func TestBlock_IsGenesis(t *testing.T) {
	genesis := &Block{Index: 0, PreviousHash: GenesisPreviousHash}
	assert.True(t, genesis.IsGenesis())

	linked := &Block{Index: 1, PreviousHash: "00ab12"}
	assert.False(t, linked.IsGenesis())

	// Index 0 with a real previous hash is not a genesis block.
	forged := &Block{Index: 0, PreviousHash: "00ab12", Timestamp: time.Now()}
	assert.False(t, forged.IsGenesis())
}

func TestGenesisPayload_Fixed(t *testing.T) {
	p := GenesisPayload()

	assert.Equal(t, "genesis", p.ID)
	assert.Equal(t, "genesis", p.DonationID)
	assert.Equal(t, "system", p.DonorID)
	assert.Equal(t, 0, p.Quantity)
	assert.Equal(t, TransactionCreated, p.TransactionType)

	// Two calls must produce identical payloads: the genesis digest depends on it.
	assert.Equal(t, p, GenesisPayload())
}
