package service

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"padlink-ledger/internal/core/domain"
	"padlink-ledger/pkg/apperror"
)

// DifficultyPrefix is the required leading hex of every block digest
// (8 leading zero bits). Fixed at deployment time, never negotiated at
// runtime; raising it is a constant change here.
const DifficultyPrefix = "00"

// HashChain computes and checks block digests. Pure functions: no I/O,
// no persistence.
type HashChain struct {
	// maxAttempts bounds the nonce search; 0 means unbounded. At the fixed
	// difficulty the search terminates after ~256 attempts in expectation.
	maxAttempts uint64
}

// NewHashChain creates a HashChain. maxAttempts == 0 disables the
// mining bound.
func NewHashChain(maxAttempts uint64) *HashChain {
	return &HashChain{maxAttempts: maxAttempts}
}

// blockSeal is the canonical serialization of the five sealed block fields.
// Field order is fixed by this struct; the timestamp is canonicalized as UTC
// unix nanoseconds so that a storage roundtrip reproduces the same digest.
type blockSeal struct {
	Index        int64                      `json:"index"`
	Timestamp    int64                      `json:"timestamp"`
	Payload      domain.DonationTransaction `json:"payload"`
	PreviousHash string                     `json:"previousHash"`
	Nonce        uint64                     `json:"nonce"`
}

// ComputeDigest returns the lowercase hex SHA-256 digest of the canonical
// serialization of the five sealed fields.
func (h *HashChain) ComputeDigest(index int64, timestamp time.Time, payload domain.DonationTransaction, previousHash string, nonce uint64) string {
	seal := blockSeal{
		Index:        index,
		Timestamp:    timestamp.UTC().UnixNano(),
		Payload:      payload,
		PreviousHash: previousHash,
		Nonce:        nonce,
	}
	// Marshal of a struct of scalars cannot fail.
	raw, _ := json.Marshal(seal)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// Mine brute-forces the smallest nonce whose digest satisfies the difficulty
// prefix and returns the fully populated block. The timestamp is fixed once
// before the loop: varying it per attempt would make concurrent miners
// discover different nonces for the same logical block. The search is
// CPU-bound and blocking.
func (h *HashChain) Mine(index int64, payload domain.DonationTransaction, previousHash string) (*domain.Block, error) {
	timestamp := time.Now().UTC()

	for nonce := uint64(0); ; nonce++ {
		if h.maxAttempts > 0 && nonce >= h.maxAttempts {
			return nil, apperror.ErrMiningTimeout(h.maxAttempts)
		}

		digest := h.ComputeDigest(index, timestamp, payload, previousHash, nonce)
		if strings.HasPrefix(digest, DifficultyPrefix) {
			return &domain.Block{
				Index:        index,
				Timestamp:    timestamp,
				Payload:      payload,
				PreviousHash: previousHash,
				Hash:         digest,
				Nonce:        nonce,
			}, nil
		}
	}
}

// VerifyLink reports whether block is a valid successor of previous: the
// link hash matches, the index increments by one, the recomputed digest
// equals the stored hash and the digest satisfies the difficulty prefix.
// Any single failure invalidates the link.
func (h *HashChain) VerifyLink(block, previous *domain.Block) bool {
	if block.PreviousHash != previous.Hash {
		return false
	}
	if block.Index != previous.Index+1 {
		return false
	}
	return h.VerifySeal(block)
}

// VerifySeal checks a block in isolation: stored hash matches the recomputed
// digest and satisfies the difficulty prefix. Used for the genesis block,
// which has no predecessor to link against.
func (h *HashChain) VerifySeal(block *domain.Block) bool {
	digest := h.ComputeDigest(block.Index, block.Timestamp, block.Payload, block.PreviousHash, block.Nonce)
	if digest != block.Hash {
		return false
	}
	return strings.HasPrefix(block.Hash, DifficultyPrefix)
}
