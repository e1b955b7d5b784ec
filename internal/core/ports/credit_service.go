package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/hydrochain/hydrochain-api/internal/core/domain"
)

// IssueCreditInput carries all data needed to mint a new credit. UserID and
// Email come from the verified auth token; the role check happens inside the
// service against the resolver, not here.
type IssueCreditInput struct {
	UserID      string
	Email       string
	VolumeKg    decimal.Decimal
	Description string
}

// IssueCreditResult is returned on successful issuance.
type IssueCreditResult struct {
	Credit     *domain.Credit
	Settlement *domain.SettlementResult
	Message    string
}

// TransferCreditInput moves ownership of a credit to another user.
type TransferCreditInput struct {
	CreditID    string
	FromUserID  string
	ToUserEmail string
}

// RetireCreditInput permanently retires a credit held by the caller.
type RetireCreditInput struct {
	CreditID string
	UserID   string
}

// VerifyCreditInput marks an issued credit as verified. Caller must hold the
// verifier role (enforced at the transport layer).
type VerifyCreditInput struct {
	CreditID string
}

// GetCreditInput fetches one credit. Auditor and regulatory roles may read
// any credit; everyone else only their own.
type GetCreditInput struct {
	CreditID string
	UserID   string
	Role     domain.Role
}

// CreditService defines the credit lifecycle use cases.
type CreditService interface {
	IssueCredit(ctx context.Context, input IssueCreditInput) (*IssueCreditResult, error)
	TransferCredit(ctx context.Context, input TransferCreditInput) (*domain.Credit, error)
	VerifyCredit(ctx context.Context, input VerifyCreditInput) (*domain.Credit, error)
	RetireCredit(ctx context.Context, input RetireCreditInput) (*domain.Credit, error)
	GetCredit(ctx context.Context, input GetCreditInput) (*domain.Credit, error)
	ListCredits(ctx context.Context, ownerID string) ([]*domain.Credit, error)
	ListTransactions(ctx context.Context, input GetCreditInput) ([]*domain.Transaction, error)
}

// AuditRecorder is the fire-and-forget sink for provenance records. Record
// must not block the caller; persistence failures are logged by the recorder,
// never surfaced.
type AuditRecorder interface {
	Record(tx domain.Transaction)
}
