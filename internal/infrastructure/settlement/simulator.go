package settlement

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/hydrochain/hydrochain-api/internal/core/domain"
	"github.com/hydrochain/hydrochain-api/internal/core/ports"
)

// simBaseBlock anchors synthetic block heights in a plausible range.
const simBaseBlock = 18_000_000

// Simulator synthesizes settlement results locally. It stands in for the
// chain when it is unconfigured or unavailable, and must be indistinguishable
// in shape from a real result. Mint never fails.
type Simulator struct{}

func NewSimulator() *Simulator {
	return &Simulator{}
}

// Mint returns a time-derived token id, a random transaction hash, and a
// synthetic block height.
func (s *Simulator) Mint(_ context.Context, _ ports.MintRequest) (*domain.SettlementResult, error) {
	return &domain.SettlementResult{
		TokenID:     fmt.Sprintf("GHC_%d", time.Now().UnixNano()),
		TxHash:      "0x" + randomHex(32),
		BlockNumber: simBaseBlock + int64(randomUint32()%1_000_000),
		Simulated:   true,
	}, nil
}

// randomHex returns n random bytes hex-encoded. Falls back to a time-derived
// value when the system's entropy source fails.
func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%0*x", n*2, time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}

func randomUint32() uint32 {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return uint32(time.Now().UnixNano())
	}
	return binary.BigEndian.Uint32(b)
}
