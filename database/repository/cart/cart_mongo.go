package cartRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coolie/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCartRepo implements CartSnapshotRepository using MongoDB.
type MongoCartRepo struct {
	coll *mongo.Collection
}

// NewMongoCartRepo creates a cart snapshot repository on the given database.
func NewMongoCartRepo(db *mongo.Database) CartSnapshotRepository {
	repo := &MongoCartRepo{coll: db.Collection("cart_snapshots")}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout)
}

// Get retrieves the snapshot stored for userID.
func (r *MongoCartRepo) Get(ctx context.Context, userID string) (*models.CartSnapshot, error) {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	var snap models.CartSnapshot
	if err := r.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&snap); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch cart snapshot for user %s: %w", userID, err)
	}
	return &snap, nil
}

// Save upserts the snapshot.
func (r *MongoCartRepo) Save(ctx context.Context, snap *models.CartSnapshot) error {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	snap.UpdatedAt = time.Now()
	if snap.Items == nil {
		snap.Items = []models.CartItem{}
	}
	// Replace rather than $set so cleared optional fields do not linger.
	filter := bson.M{"userId": snap.UserID}
	opts := options.Replace().SetUpsert(true)

	if _, err := r.coll.ReplaceOne(ctx, filter, snap, opts); err != nil {
		return fmt.Errorf("failed to save cart snapshot for user %s: %w", snap.UserID, err)
	}
	return nil
}
