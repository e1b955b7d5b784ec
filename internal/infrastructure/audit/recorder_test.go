package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/hydrochain/hydrochain-api/internal/core/domain"
)

// captureTxRepo records inserts and signals each one on a channel.
type captureTxRepo struct {
	mu       sync.Mutex
	inserted []domain.Transaction
	failErr  error
	done     chan struct{}
}

func newCaptureTxRepo() *captureTxRepo {
	return &captureTxRepo{done: make(chan struct{}, 64)}
}

func (r *captureTxRepo) Create(_ context.Context, tx *domain.Transaction) error {
	defer func() { r.done <- struct{}{} }()
	if r.failErr != nil {
		return r.failErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inserted = append(r.inserted, *tx)
	return nil
}

func (r *captureTxRepo) ListByCredit(context.Context, string) ([]*domain.Transaction, error) {
	return nil, nil
}

func (r *captureTxRepo) await(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-r.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for insert %d of %d", i+1, n)
		}
	}
}

func (r *captureTxRepo) snapshot() []domain.Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Transaction, len(r.inserted))
	copy(out, r.inserted)
	return out
}

func TestRecorder_PersistsRecords(t *testing.T) {
	repo := newCaptureTxRepo()
	rec := NewRecorder(2, repo, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec.Start(ctx)

	rec.Record(domain.Transaction{CreditID: "credit_1", Type: domain.TxTypeIssue, ToOwnerID: "alice_id"})
	repo.await(t, 1)

	inserted := repo.snapshot()
	if len(inserted) != 1 {
		t.Fatalf("expected 1 insert, got %d", len(inserted))
	}
	if inserted[0].CreditID != "credit_1" || inserted[0].Type != domain.TxTypeIssue {
		t.Errorf("unexpected record: %+v", inserted[0])
	}
}

func TestRecorder_PreservesPerCreditOrder(t *testing.T) {
	repo := newCaptureTxRepo()
	rec := NewRecorder(4, repo, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec.Start(ctx)

	// Same credit id always lands on the same worker, so order holds.
	rec.Record(domain.Transaction{CreditID: "credit_1", Type: domain.TxTypeIssue})
	rec.Record(domain.Transaction{CreditID: "credit_1", Type: domain.TxTypeTransfer})
	rec.Record(domain.Transaction{CreditID: "credit_1", Type: domain.TxTypeRetire})
	repo.await(t, 3)

	inserted := repo.snapshot()
	want := []domain.TransactionType{domain.TxTypeIssue, domain.TxTypeTransfer, domain.TxTypeRetire}
	for i, typ := range want {
		if inserted[i].Type != typ {
			t.Fatalf("record %d: expected %q, got %q", i, typ, inserted[i].Type)
		}
	}
}

func TestRecorder_InsertFailureIsSwallowed(t *testing.T) {
	repo := newCaptureTxRepo()
	repo.failErr = errors.New("db unavailable")
	rec := NewRecorder(1, repo, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec.Start(ctx)

	// Failure is logged and counted, never panics or surfaces.
	rec.Record(domain.Transaction{CreditID: "credit_1", Type: domain.TxTypeIssue})
	repo.await(t, 1)

	if len(repo.snapshot()) != 0 {
		t.Error("failed insert must not be recorded")
	}
}

func TestRecorder_ShardIndexIsStable(t *testing.T) {
	rec := NewRecorder(8, newCaptureTxRepo(), zerolog.Nop())

	first := rec.shardIndex("credit_42")
	for i := 0; i < 10; i++ {
		if rec.shardIndex("credit_42") != first {
			t.Fatal("shard index must be deterministic for a credit id")
		}
	}
}
