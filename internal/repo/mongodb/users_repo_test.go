package mongodb_test

import (
	"context"
	"os"
	"testing"

	"github.com/geocoder89/usershub/internal/db"
	"github.com/geocoder89/usershub/internal/repo/mongodb"
	"github.com/geocoder89/usershub/internal/store/storetest"
	"go.mongodb.org/mongo-driver/bson"
)

// needs a reachable deployment, e.g.
// TEST_MONGO_URI=mongodb://127.0.0.1:27017/usershub_test
func TestUsersRepo_Conformance(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}

	ctx := context.Background()

	client, dbName, err := db.NewMongoClient(ctx, uri)

	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}

	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	storetest.Run(t, func(t *testing.T) storetest.Store {
		repo := mongodb.NewUsersRepo(client, dbName)

		if err := repo.EnsureCollection(ctx); err != nil {
			t.Fatalf("ensure collection: %v", err)
		}

		_, err := client.Database(dbName).Collection("users").DeleteMany(ctx, bson.D{})
		if err != nil {
			t.Fatalf("failed to clear collection: %v", err)
		}

		return repo
	})
}
