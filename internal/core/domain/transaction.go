package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType tags a movement of credit ownership.
type TransactionType string

const (
	TxTypeIssue    TransactionType = "issue"
	TxTypeTransfer TransactionType = "transfer"
	TxTypeRetire   TransactionType = "retire"
)

// Transaction is an immutable audit record linking a credit to a movement of
// ownership. FromOwnerID is nil for issuance (minted from nothing). Records
// are append-only: never updated or deleted.
type Transaction struct {
	ID            string          `json:"id" bson:"_id,omitempty"`
	CreditID      string          `json:"credit_id" bson:"credit_id"`
	FromOwnerID   *string         `json:"from_owner_id" bson:"from_owner_id"`
	ToOwnerID     string          `json:"to_owner_id" bson:"to_owner_id"`
	Type          TransactionType `json:"type" bson:"type"`
	VolumeKg      decimal.Decimal `json:"volume_kg" bson:"volume_kg"`
	SettlementRef string          `json:"settlement_ref" bson:"settlement_ref"`
	CreatedAt     time.Time       `json:"created_at" bson:"created_at"`
}
