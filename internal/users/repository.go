package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/secretwall/secretwall/internal/errs"
	"github.com/secretwall/secretwall/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository defines persistence operations for users
type UserRepository interface {
	// Create inserts u and sets its ID. errs.ErrDuplicateUser when the username is taken.
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// FindOrCreateByGoogleID returns the user linked to googleID, creating it on first use.
	FindOrCreateByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	// ListWithSecret returns every user whose secret is non-empty, in store order.
	ListWithSecret(ctx context.Context) ([]*models.User, error)
	// SetSecret overwrites the user's secret. errs.ErrNotFound when id does not resolve.
	SetSecret(ctx context.Context, id primitive.ObjectID, secret string) error
}

// MongoUserRepository implements UserRepository using MongoDB
type MongoUserRepository struct {
	col *mongo.Collection
}

// NewMongoUserRepository creates a new repository for the given collection
func NewMongoUserRepository(col *mongo.Collection) *MongoUserRepository {
	return &MongoUserRepository{col: col}
}

// EnsureIndexes creates the unique sparse indexes on username and googleId.
// Sparse because local users have no googleId and Google users no username.
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	idx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		{Keys: bson.D{{Key: "googleId", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
	}
	if _, err := r.col.Indexes().CreateMany(ctx, idx); err != nil {
		return fmt.Errorf("create user indexes: %w", classify(err))
	}
	return nil
}

func (r *MongoUserRepository) Create(ctx context.Context, u *models.User) error {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if _, err := r.col.InsertOne(ctx, u); err != nil {
		return classify(err)
	}
	return nil
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := r.col.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, classify(err)
	}
	return &u, nil
}

func (r *MongoUserRepository) FindOrCreateByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	now := time.Now().UTC()
	filter := bson.M{"googleId": googleID}
	upd := bson.M{"$setOnInsert": bson.M{
		"googleId":  googleID,
		"createdAt": now,
		"updatedAt": now,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var u models.User
	err := r.col.FindOneAndUpdate(ctx, filter, upd, opts).Decode(&u)
	if err == nil {
		return &u, nil
	}
	// Two concurrent first logins race on the unique index; the loser re-reads the winner.
	if mongo.IsDuplicateKeyError(err) {
		return r.findOne(ctx, filter)
	}
	return nil, classify(err)
}

func (r *MongoUserRepository) ListWithSecret(ctx context.Context) ([]*models.User, error) {
	cur, err := r.col.Find(ctx, bson.M{"secret": bson.M{"$exists": true, "$nin": bson.A{nil, ""}}})
	if err != nil {
		return nil, classify(err)
	}
	defer cur.Close(ctx)
	out := []*models.User{}
	for cur.Next(ctx) {
		var u models.User
		if err := cur.Decode(&u); err != nil {
			return nil, err
		}
		out = append(out, &u)
	}
	if err := cur.Err(); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

func (r *MongoUserRepository) SetSecret(ctx context.Context, id primitive.ObjectID, secret string) error {
	set := bson.M{"$set": bson.M{"secret": secret, "updatedAt": time.Now().UTC()}}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, set)
	if err != nil {
		return classify(err)
	}
	if res.MatchedCount == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// classify maps driver errors onto the shared sentinels.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return errs.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", errs.ErrDuplicateUser, err)
	case mongo.IsNetworkError(err), mongo.IsTimeout(err),
		errors.Is(err, mongo.ErrClientDisconnected), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
	}
	return err
}
