package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hydrochain/hydrochain-api/internal/core/domain"
)

const collectionCredits = "credits"

type CreditRepository struct {
	col *mongo.Collection
}

func NewCreditRepository(db *mongo.Database) *CreditRepository {
	return &CreditRepository{col: db.Collection(collectionCredits)}
}

// creditDoc is the Mongo representation of a credit. Volumes are stored as
// strings to keep decimal precision exact.
type creditDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	OwnerID       string             `bson:"owner_id"`
	TokenID       string             `bson:"token_id"`
	VolumeKg      string             `bson:"volume_kg"`
	Status        string             `bson:"status"`
	SettlementRef string             `bson:"settlement_ref"`
	Description   string             `bson:"description"`
	IssuedAt      time.Time          `bson:"issued_at"`
	Producer      string             `bson:"producer"`
	CreatedAt     time.Time          `bson:"created_at"`
}

func toCreditDoc(c *domain.Credit) creditDoc {
	return creditDoc{
		OwnerID:       c.OwnerID,
		TokenID:       c.TokenID,
		VolumeKg:      c.VolumeKg.String(),
		Status:        string(c.Status),
		SettlementRef: c.SettlementRef,
		Description:   c.Metadata.Description,
		IssuedAt:      c.Metadata.IssuedAt,
		Producer:      c.Metadata.Producer,
		CreatedAt:     c.CreatedAt,
	}
}

func (d creditDoc) toDomain() (*domain.Credit, error) {
	volume, err := decimal.NewFromString(d.VolumeKg)
	if err != nil {
		return nil, fmt.Errorf("credit %s: parse volume: %w", d.ID.Hex(), err)
	}
	return &domain.Credit{
		ID:            d.ID.Hex(),
		OwnerID:       d.OwnerID,
		TokenID:       d.TokenID,
		VolumeKg:      volume,
		Status:        domain.CreditStatus(d.Status),
		SettlementRef: d.SettlementRef,
		Metadata: domain.CreditMetadata{
			Description: d.Description,
			IssuedAt:    d.IssuedAt,
			Producer:    d.Producer,
		},
		CreatedAt: d.CreatedAt,
	}, nil
}

// Create inserts a new credit document and fills in the generated id.
func (r *CreditRepository) Create(ctx context.Context, c *domain.Credit) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, toCreditDoc(c))
	if err != nil {
		return fmt.Errorf("insert credit: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		c.ID = oid.Hex()
	}
	return nil
}

func (r *CreditRepository) FindByID(ctx context.Context, id string) (*domain.Credit, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrCreditNotFound
	}

	var d creditDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCreditNotFound
		}
		return nil, fmt.Errorf("find credit: %w", err)
	}
	return d.toDomain()
}

// ListByOwner returns the owner's credits, newest first.
func (r *CreditRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Credit, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list credits: %w", err)
	}
	defer cur.Close(ctx)

	var credits []*domain.Credit
	for cur.Next(ctx) {
		var d creditDoc
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("decode credit: %w", err)
		}
		c, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		credits = append(credits, c)
	}
	return credits, cur.Err()
}

// UpdateLifecycle applies a status change and owner to an existing credit.
func (r *CreditRepository) UpdateLifecycle(ctx context.Context, id string, status domain.CreditStatus, ownerID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrCreditNotFound
	}

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"status": string(status), "owner_id": ownerID}},
	)
	if err != nil {
		return fmt.Errorf("update credit: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrCreditNotFound
	}
	return nil
}

// EnsureIndexes creates necessary indexes on the credits collection.
func (r *CreditRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
		{Keys: bson.D{{Key: "token_id", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
