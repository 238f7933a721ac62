package domain

import "time"

// TransactionType represents a donation lifecycle transition recorded on the ledger.
type TransactionType string

const (
	TransactionCreated   TransactionType = "created"
	TransactionReserved  TransactionType = "reserved"
	TransactionCompleted TransactionType = "completed"
	TransactionCancelled TransactionType = "cancelled"
)

// GenesisPreviousHash is the fixed sentinel previous-hash of the genesis block.
const GenesisPreviousHash = "0"

// DonationTransaction is the immutable payload of a ledger block. It is
// constructed by the calling domain workflow, embedded verbatim at mining
// time and never altered afterwards. JSON field order is the canonical
// serialization order used for block digests.
type DonationTransaction struct {
	ID              string          `json:"id"`
	DonationID      string          `json:"donationId"`
	DonorID         string          `json:"donorId"`
	DonorName       string          `json:"donorName"`
	RecipientID     string          `json:"recipientId,omitempty"`
	RecipientName   string          `json:"recipientName,omitempty"`
	Quantity        int             `json:"quantity"`
	PadType         string          `json:"padType"`
	Location        string          `json:"location"`
	TransactionType TransactionType `json:"transactionType"`
	Description     string          `json:"description"`
}

// Involves reports whether the transaction names the given user as donor or
// recipient.
func (t DonationTransaction) Involves(userID string) bool {
	return t.DonorID == userID || t.RecipientID == userID
}

// Block is one immutable, hash-linked record in the ledger. Once appended it
// never changes; the chain is append-only.
type Block struct {
	Index        int64               `json:"index"`
	Timestamp    time.Time           `json:"timestamp"`
	Payload      DonationTransaction `json:"payload"`
	PreviousHash string              `json:"previous_hash"`
	Hash         string              `json:"hash"`
	Nonce        uint64              `json:"nonce"`
}

// IsGenesis reports whether the block is the chain root.
func (b *Block) IsGenesis() bool {
	return b.Index == 0 && b.PreviousHash == GenesisPreviousHash
}

// GenesisPayload returns the fixed system payload of the genesis block.
func GenesisPayload() DonationTransaction {
	return DonationTransaction{
		ID:              "genesis",
		DonationID:      "genesis",
		DonorID:         "system",
		DonorName:       "PadLink System",
		Quantity:        0,
		PadType:         "none",
		Location:        "blockchain",
		TransactionType: TransactionCreated,
		Description:     "Genesis Block - PadLink Blockchain Initialized",
	}
}
