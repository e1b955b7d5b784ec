package settlement

import (
	"context"
	"regexp"
	"testing"

	"github.com/hydrochain/hydrochain-api/internal/core/ports"
)

var (
	tokenIDPattern = regexp.MustCompile(`^GHC_\d+$`)
	txHashPattern  = regexp.MustCompile(`^0x[0-9a-f]{64}$`)
)

func TestSimulator_ResultShape(t *testing.T) {
	sim := NewSimulator()

	result, err := sim.Mint(context.Background(), ports.MintRequest{VolumeUnits: 1_000_000_000})
	if err != nil {
		t.Fatalf("simulator must never fail: %v", err)
	}

	if !tokenIDPattern.MatchString(result.TokenID) {
		t.Errorf("token id must match GHC_<digits>, got %q", result.TokenID)
	}
	if !txHashPattern.MatchString(result.TxHash) {
		t.Errorf("tx hash must be 0x + 64 hex chars, got %q", result.TxHash)
	}
	if result.BlockNumber < simBaseBlock || result.BlockNumber >= simBaseBlock+1_000_000 {
		t.Errorf("block number out of synthetic range: %d", result.BlockNumber)
	}
	if !result.Simulated {
		t.Error("simulated flag must be set")
	}
}

func TestSimulator_DistinctResults(t *testing.T) {
	sim := NewSimulator()

	first, _ := sim.Mint(context.Background(), ports.MintRequest{})
	second, _ := sim.Mint(context.Background(), ports.MintRequest{})

	if first.TxHash == second.TxHash {
		t.Error("two mints must produce distinct tx hashes")
	}
}
