package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

const defaultMongoDatabase = "usershub"

// NewMongoClient connects and pings the deployment behind uri. The returned
// database name comes from the uri path, falling back to usershub.
func NewMongoClient(ctx context.Context, uri string) (*mongo.Client, string, error) {
	cs, err := connstring.ParseAndValidate(uri)

	if err != nil {
		return nil, "", err
	}

	dbName := cs.Database
	if dbName == "" {
		dbName = defaultMongoDatabase
	}

	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(10)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)

	defer cancel()

	client, err := mongo.Connect(ctx, opts)

	if err != nil {
		return nil, "", err
	}

	err = client.Ping(ctx, readpref.Primary())

	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, "", err
	}

	return client, dbName, nil
}
