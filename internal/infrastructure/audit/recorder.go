// Package audit persists provenance transactions off the request path. The
// credit row written by the request is authoritative; a lost provenance record
// is logged and counted, never surfaced to the caller.
package audit

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/hydrochain/hydrochain-api/internal/api/metrics"
	"github.com/hydrochain/hydrochain-api/internal/core/domain"
	"github.com/hydrochain/hydrochain-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	insertTimeout  = 10 * time.Second
)

// Recorder routes provenance records to a fixed set of workers using
// consistent hashing on the credit id, guaranteeing per-credit provenance
// ordering.
type Recorder struct {
	workers []chan domain.Transaction
	repo    ports.TransactionRepository
	log     zerolog.Logger
}

// NewRecorder creates a Recorder with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewRecorder(numWorkers int, repo ports.TransactionRepository, log zerolog.Logger) *Recorder {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	r := &Recorder{
		workers: make([]chan domain.Transaction, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range r.workers {
		r.workers[i] = make(chan domain.Transaction, channelBuffer)
	}
	return r
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (r *Recorder) Start(ctx context.Context) {
	for i, ch := range r.workers {
		go r.runWorker(ctx, i, ch)
	}
}

// Record enqueues a provenance record without blocking the caller. When the
// responsible worker's buffer is full the record is dropped and counted.
func (r *Recorder) Record(tx domain.Transaction) {
	idx := r.shardIndex(tx.CreditID)
	select {
	case r.workers[idx] <- tx:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(r.workers[idx])))
	default:
		metrics.TransactionsDroppedTotal.Inc()
		r.log.Error().
			Str("credit_id", tx.CreditID).
			Str("settlement_ref", tx.SettlementRef).
			Str("type", string(tx.Type)).
			Msg("audit queue full, provenance record dropped")
	}
}

// shardIndex maps a credit id deterministically to a worker index.
func (r *Recorder) shardIndex(creditID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(creditID))
	return int(h.Sum32()) % len(r.workers)
}

func (r *Recorder) runWorker(ctx context.Context, id int, ch <-chan domain.Transaction) {
	for {
		select {
		case <-ctx.Done():
			return
		case tx, ok := <-ch:
			if !ok {
				return
			}
			r.persist(ctx, id, tx)
			metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(float64(len(ch)))
		}
	}
}

// persist inserts one record with its own timeout, detached from any request
// lifetime. Failures are logged with enough detail for an operator to replay
// the record by hand.
func (r *Recorder) persist(ctx context.Context, workerID int, tx domain.Transaction) {
	insertCtx, cancel := context.WithTimeout(ctx, insertTimeout)
	defer cancel()

	if err := r.repo.Create(insertCtx, &tx); err != nil {
		metrics.TransactionsDroppedTotal.Inc()
		r.log.Error().Err(err).
			Str("credit_id", tx.CreditID).
			Str("settlement_ref", tx.SettlementRef).
			Str("type", string(tx.Type)).
			Int("worker_id", workerID).
			Msg("provenance record insert failed")
		return
	}
	metrics.TransactionsRecordedTotal.WithLabelValues(string(tx.Type)).Inc()
}
