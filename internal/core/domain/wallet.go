package domain

import (
	"time"

	"github.com/google/uuid"
)

// WelcomeBonusAmount is the fixed one-time credit issued when a wallet is
// created. Exactly one initial_credit transaction per user may ever exist.
const WelcomeBonusAmount int64 = 100

// Wallet is a per-user token account. The address is derived once and
// immutable; the balance must always equal the sum of the user's wallet
// transaction amounts.
type Wallet struct {
	UserID    string    `json:"user_id"`
	Address   string    `json:"address"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WalletTransactionType represents the kind of token movement.
type WalletTransactionType string

const (
	WalletTxInitialCredit WalletTransactionType = "initial_credit"
	WalletTxCredit        WalletTransactionType = "credit"
	WalletTxDebit         WalletTransactionType = "debit"
)

// WalletTransaction is an immutable row in the per-user transaction log.
// Amounts are signed: debits are recorded negative so the log sums to the
// current balance.
type WalletTransaction struct {
	ID                uuid.UUID             `json:"id"`
	UserID            string                `json:"user_id"`
	Type              WalletTransactionType `json:"transaction_type"`
	Amount            int64                 `json:"amount"`
	RelatedDonationID *string               `json:"related_donation_id,omitempty"`
	RelatedLedgerHash *string               `json:"related_ledger_hash,omitempty"`
	Description       string                `json:"description"`
	CreatedAt         time.Time             `json:"created_at"`
}
