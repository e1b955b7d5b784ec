package handler

import (
	"time"

	"github.com/hydrochain/hydrochain-api/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

// issueCreditRequest is the issuance payload. Volume is bound as `any` so
// that a missing or non-numeric value survives binding and fails validation
// in the documented order (identity, role, volume) instead of short-circuiting
// at bind time.
type issueCreditRequest struct {
	Volume      any    `json:"volume"`
	Description string `json:"description"`
}

type transferCreditRequest struct {
	ToEmail string `json:"to_email" validate:"required,email"`
}

// --- Response types ---
//
// Response-only types owned by the transport layer. These are intentionally
// separate from domain types so the JSON contract is not coupled to internal
// service changes.

type settlementResponse struct {
	TokenID     string `json:"tokenId"`
	TxHash      string `json:"transactionHash"`
	BlockNumber int64  `json:"blockNumber"`
	Simulated   bool   `json:"simulated"`
}

type creditMetadataResponse struct {
	Description string    `json:"description"`
	IssuedAt    time.Time `json:"issued_at"`
	Producer    string    `json:"producer"`
}

type creditResponse struct {
	ID            string                 `json:"id"`
	OwnerID       string                 `json:"owner_id"`
	TokenID       string                 `json:"token_id"`
	Volume        float64                `json:"volume"`
	Status        string                 `json:"status"`
	SettlementRef string                 `json:"settlement_ref"`
	Metadata      creditMetadataResponse `json:"metadata"`
	CreatedAt     time.Time              `json:"created_at"`
}

type issueCreditResponse struct {
	Success    bool               `json:"success"`
	Credit     creditResponse     `json:"credit"`
	Blockchain settlementResponse `json:"blockchain"`
	Message    string             `json:"message"`
}

type transactionResponse struct {
	ID            string    `json:"id"`
	CreditID      string    `json:"credit_id"`
	FromOwnerID   *string   `json:"from_owner_id"`
	ToOwnerID     string    `json:"to_owner_id"`
	Type          string    `json:"type"`
	Volume        float64   `json:"volume"`
	SettlementRef string    `json:"settlement_ref"`
	CreatedAt     time.Time `json:"created_at"`
}

type listCreditsResponse struct {
	Data []creditResponse `json:"data"`
}

type listTransactionsResponse struct {
	Data []transactionResponse `json:"data"`
}

func toCreditResponse(c *domain.Credit) creditResponse {
	volume, _ := c.VolumeKg.Float64()
	return creditResponse{
		ID:            c.ID,
		OwnerID:       c.OwnerID,
		TokenID:       c.TokenID,
		Volume:        volume,
		Status:        string(c.Status),
		SettlementRef: c.SettlementRef,
		Metadata: creditMetadataResponse{
			Description: c.Metadata.Description,
			IssuedAt:    c.Metadata.IssuedAt,
			Producer:    c.Metadata.Producer,
		},
		CreatedAt: c.CreatedAt,
	}
}

func toTransactionResponse(tx *domain.Transaction) transactionResponse {
	volume, _ := tx.VolumeKg.Float64()
	return transactionResponse{
		ID:            tx.ID,
		CreditID:      tx.CreditID,
		FromOwnerID:   tx.FromOwnerID,
		ToOwnerID:     tx.ToOwnerID,
		Type:          string(tx.Type),
		Volume:        volume,
		SettlementRef: tx.SettlementRef,
		CreatedAt:     tx.CreatedAt,
	}
}
