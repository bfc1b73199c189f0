package users

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ubademy/users-service/internal/shared"
)

const collectionName = "users"

// MongoRepository implements Repository on top of a MongoDB collection.
type MongoRepository struct {
	collection *mongo.Collection
}

// NewMongoRepository constructs the repository for the given database.
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{collection: db.Collection(collectionName)}
}

// EnsureIndexes creates the unique email index. Registration still performs an
// application-level existence check for the friendly conflict message; the
// index closes the check-then-write race.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	return nil
}

func scopeFilter(email string, scope RoleScope) bson.M {
	filter := bson.M{"email": email}
	switch scope {
	case ScopeUser:
		filter["roles"] = bson.M{"$nin": bson.A{AdminRole}}
	case ScopeAdmin:
		filter["roles"] = bson.M{"$in": bson.A{AdminRole}}
	}
	return filter
}

// FindByEmail fetches one account by email within the given role scope.
func (r *MongoRepository) FindByEmail(ctx context.Context, email string, scope RoleScope) (*User, error) {
	var user User
	err := r.collection.FindOne(ctx, scopeFilter(email, scope)).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByID fetches one account by its identifier.
func (r *MongoRepository) FindByID(ctx context.Context, id string) (*User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, shared.ErrNotFound
	}
	var user User
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByIDs fetches the accounts matching the given identifiers. Malformed
// identifiers are skipped rather than failing the whole batch.
func (r *MongoRepository) FindByIDs(ctx context.Context, ids []string) ([]User, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, err
	}
	var found []User
	if err := cursor.All(ctx, &found); err != nil {
		return nil, err
	}
	return found, nil
}

// List returns a page of accounts plus the total matching count. With appOnly
// set, only accounts without the admin role are returned.
func (r *MongoRepository) List(ctx context.Context, offset, limit int64, appOnly bool) ([]User, int64, error) {
	filter := bson.M{}
	if appOnly {
		filter["roles"] = bson.M{"$nin": bson.A{AdminRole}}
	}
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().SetSkip(offset).SetLimit(limit).SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	var page []User
	if err := cursor.All(ctx, &page); err != nil {
		return nil, 0, err
	}
	return page, total, nil
}

// Insert persists a new account document.
func (r *MongoRepository) Insert(ctx context.Context, user *User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return shared.ErrDuplicate
		}
		return err
	}
	return nil
}

// Update replaces the stored document with the given state.
func (r *MongoRepository) Update(ctx context.Context, user *User) error {
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return shared.ErrDuplicate
		}
		return err
	}
	if result.MatchedCount == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// IsAdmin reports whether an account with the given email holds the admin
// role. Used by the access-control middleware on every admin-gated request.
func (r *MongoRepository) IsAdmin(ctx context.Context, email string) (bool, error) {
	err := r.collection.FindOne(ctx, scopeFilter(email, ScopeAdmin)).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

var _ Repository = (*MongoRepository)(nil)
