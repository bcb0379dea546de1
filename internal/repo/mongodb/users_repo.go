package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geocoder89/usershub/internal/domain/user"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const collectionName = "users"

type userDoc struct {
	ID         primitive.ObjectID `bson:"_id"`
	Name       string             `bson:"name"`
	Email      string             `bson:"email"`
	Age        int                `bson:"age"`
	City       string             `bson:"city"`
	CreatedAt  time.Time          `bson:"createdAt"`
	ModifiedAt time.Time          `bson:"modifiedAt"`
}

func (d userDoc) toUser() user.User {
	return user.User{
		ID:         d.ID.Hex(),
		Name:       d.Name,
		Email:      d.Email,
		Age:        d.Age,
		City:       d.City,
		CreatedAt:  d.CreatedAt.UTC(),
		ModifiedAt: d.ModifiedAt.UTC(),
	}
}

type UsersRepo struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    func() time.Time
}

func NewUsersRepo(client *mongo.Client, dbName string) *UsersRepo {
	return &UsersRepo{
		client: client,
		coll:   client.Database(dbName).Collection(collectionName),
		now:    time.Now,
	}
}

// bson datetimes carry milliseconds only
func (r *UsersRepo) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Millisecond)
}

// EnsureCollection creates the users collection if it does not exist yet.
func (r *UsersRepo) EnsureCollection(ctx context.Context) error {
	db := r.coll.Database()

	names, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: collectionName}})

	if err != nil {
		return storeErr(err)
	}

	if len(names) > 0 {
		return nil
	}

	err = db.CreateCollection(ctx, collectionName)

	var cmdErr mongo.CommandError
	// NamespaceExists: another process won the race
	if errors.As(err, &cmdErr) && cmdErr.Code == 48 {
		return nil
	}

	return storeErr(err)
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "createdAt", Value: 1},
		{Key: "_id", Value: 1},
	})

	cursor, err := r.coll.Find(ctx, bson.D{}, opts)

	if err != nil {
		return nil, storeErr(err)
	}

	var docs []userDoc

	err = cursor.All(ctx, &docs)

	if err != nil {
		return nil, storeErr(err)
	}

	output := make([]user.User, 0, len(docs))
	for _, d := range docs {
		output = append(output, d.toUser())
	}

	return output, nil
}

func (r *UsersRepo) Create(ctx context.Context, f user.Fields) (user.User, error) {
	err := f.Validate()

	if err != nil {
		return user.User{}, err
	}

	f = f.Normalize()
	now := r.timestamp()

	doc := userDoc{
		ID:         primitive.NewObjectID(),
		Name:       f.Name,
		Email:      f.Email,
		Age:        f.Age,
		City:       f.City,
		CreatedAt:  now,
		ModifiedAt: now,
	}

	_, err = r.coll.InsertOne(ctx, doc)

	if err != nil {
		return user.User{}, storeErr(err)
	}

	return doc.toUser(), nil
}

func (r *UsersRepo) Get(ctx context.Context, id string) (user.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)

	if err != nil {
		// not an id this store could have issued
		return user.User{}, user.ErrNotFound
	}

	var doc userDoc

	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, storeErr(err)
	}

	return doc.toUser(), nil
}

func (r *UsersRepo) Update(ctx context.Context, id string, f user.Fields) (user.User, error) {
	err := f.Validate()

	if err != nil {
		return user.User{}, err
	}

	oid, err := primitive.ObjectIDFromHex(id)

	if err != nil {
		return user.User{}, user.ErrNotFound
	}

	f = f.Normalize()

	update := bson.M{
		"$set": bson.M{
			"name":  f.Name,
			"email": f.Email,
			"age":   f.Age,
			"city":  f.City,
		},
		// $max keeps modifiedAt monotonic
		"$max": bson.M{"modifiedAt": r.timestamp()},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc userDoc

	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, storeErr(err)
	}

	return doc.toUser(), nil
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)

	if err != nil {
		return user.ErrNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})

	if err != nil {
		return storeErr(err)
	}

	if res.DeletedCount == 0 {
		return user.ErrNotFound
	}

	return nil
}

func (r *UsersRepo) Ping(ctx context.Context) error {
	return storeErr(r.client.Ping(ctx, readpref.Primary()))
}

func (r *UsersRepo) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func storeErr(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case mongo.IsNetworkError(err),
		mongo.IsTimeout(err),
		errors.Is(err, mongo.ErrClientDisconnected),
		errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", user.ErrStoreUnavailable, err)
	}

	return err
}
