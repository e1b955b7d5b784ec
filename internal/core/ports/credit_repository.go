package ports

import (
	"context"

	"github.com/hydrochain/hydrochain-api/internal/core/domain"
)

// CreditRepository defines persistence operations for credits.
type CreditRepository interface {
	// Create inserts the credit and fills in its server-generated id.
	Create(ctx context.Context, c *domain.Credit) error
	FindByID(ctx context.Context, id string) (*domain.Credit, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Credit, error)
	// UpdateLifecycle applies a status change (and, for transfers, the new
	// owner) to an existing credit.
	UpdateLifecycle(ctx context.Context, id string, status domain.CreditStatus, ownerID string) error
}

// TransactionRepository defines persistence for the append-only provenance
// chain.
type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.Transaction) error
	// ListByCredit returns the credit's transactions ordered oldest first.
	ListByCredit(ctx context.Context, creditID string) ([]*domain.Transaction, error)
}
