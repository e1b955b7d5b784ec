package ports

import (
	"context"

	"github.com/hydrochain/hydrochain-api/internal/core/domain"
)

// MintRequest carries the data for a single on-chain mint attempt. VolumeUnits
// is the credit volume scaled to the ledger's fixed-point representation
// (6 fractional digits). MetadataURI is a data URI encoding the issuance
// metadata document.
type MintRequest struct {
	VolumeUnits int64
	MetadataURI string
}

// SettlementProvider mints credit tokens on the settlement ledger. The real
// implementation talks to the configured gateway; the simulator synthesizes
// results locally. Mint is attempted exactly once per call; providers must
// not retry internally.
type SettlementProvider interface {
	Mint(ctx context.Context, req MintRequest) (*domain.SettlementResult, error)
}
