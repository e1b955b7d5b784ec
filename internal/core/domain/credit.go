package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// CreditStatus represents the lifecycle state of a hydrogen credit.
type CreditStatus string

const (
	StatusIssued   CreditStatus = "issued"
	StatusVerified CreditStatus = "verified"
	StatusOwned    CreditStatus = "owned"
	StatusRetired  CreditStatus = "retired"
)

// validTransitions defines the allowed lifecycle transitions. A retired
// credit is terminal. "owned -> owned" covers resale between buyers.
var validTransitions = map[CreditStatus][]CreditStatus{
	StatusIssued:   {StatusVerified, StatusOwned, StatusRetired},
	StatusVerified: {StatusOwned, StatusRetired},
	StatusOwned:    {StatusOwned, StatusRetired},
}

var (
	ErrInvalidTransition  = errors.New("invalid credit status transition")
	ErrCreditNotFound     = errors.New("credit not found")
	ErrForbidden          = errors.New("access forbidden")
	ErrInvalidVolume      = errors.New("volume must be a positive number")
	ErrStorageFailure     = errors.New("failed to store credit")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
)

// CanTransitionTo reports whether a transition from the current status to
// next is valid.
func (s CreditStatus) CanTransitionTo(next CreditStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// CreditMetadata is the free-form bag attached to a credit at issuance.
type CreditMetadata struct {
	Description string    `json:"description" bson:"description"`
	IssuedAt    time.Time `json:"issued_at" bson:"issued_at"`
	Producer    string    `json:"producer" bson:"producer"`
}

// Credit is the core aggregate: one unit of certified hydrogen production,
// trackable through issuance, verification, ownership transfer and
// retirement. The owner at creation time is always the issuing producer.
type Credit struct {
	ID            string          `json:"id" bson:"_id,omitempty"`
	OwnerID       string          `json:"owner_id" bson:"owner_id"`
	TokenID       string          `json:"token_id" bson:"token_id"`
	VolumeKg      decimal.Decimal `json:"volume_kg" bson:"volume_kg"`
	Status        CreditStatus    `json:"status" bson:"status"`
	SettlementRef string          `json:"settlement_ref" bson:"settlement_ref"`
	Metadata      CreditMetadata  `json:"metadata" bson:"metadata"`
	CreatedAt     time.Time       `json:"created_at" bson:"created_at"`
}
