package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hydrochain/hydrochain-api/internal/core/domain"
)

const collectionTransactions = "transactions"

type TransactionRepository struct {
	col *mongo.Collection
}

func NewTransactionRepository(db *mongo.Database) *TransactionRepository {
	return &TransactionRepository{col: db.Collection(collectionTransactions)}
}

type transactionDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	CreditID      string             `bson:"credit_id"`
	FromOwnerID   *string            `bson:"from_owner_id"`
	ToOwnerID     string             `bson:"to_owner_id"`
	Type          string             `bson:"type"`
	VolumeKg      string             `bson:"volume_kg"`
	SettlementRef string             `bson:"settlement_ref"`
	CreatedAt     time.Time          `bson:"created_at"`
}

// Create inserts a provenance record. Records are append-only; there is no
// update or delete path.
func (r *TransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := transactionDoc{
		CreditID:      tx.CreditID,
		FromOwnerID:   tx.FromOwnerID,
		ToOwnerID:     tx.ToOwnerID,
		Type:          string(tx.Type),
		VolumeKg:      tx.VolumeKg.String(),
		SettlementRef: tx.SettlementRef,
		CreatedAt:     tx.CreatedAt,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		tx.ID = oid.Hex()
	}
	return nil
}

// ListByCredit returns the credit's transactions ordered oldest first, so the
// result reads as the provenance chain.
func (r *TransactionRepository) ListByCredit(ctx context.Context, creditID string) ([]*domain.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"credit_id": creditID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer cur.Close(ctx)

	var txs []*domain.Transaction
	for cur.Next(ctx) {
		var d transactionDoc
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("decode transaction: %w", err)
		}
		volume, err := decimal.NewFromString(d.VolumeKg)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: parse volume: %w", d.ID.Hex(), err)
		}
		txs = append(txs, &domain.Transaction{
			ID:            d.ID.Hex(),
			CreditID:      d.CreditID,
			FromOwnerID:   d.FromOwnerID,
			ToOwnerID:     d.ToOwnerID,
			Type:          domain.TransactionType(d.Type),
			VolumeKg:      volume,
			SettlementRef: d.SettlementRef,
			CreatedAt:     d.CreatedAt,
		})
	}
	return txs, cur.Err()
}

// EnsureIndexes creates necessary indexes on the transactions collection.
func (r *TransactionRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "credit_id", Value: 1}, {Key: "created_at", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
