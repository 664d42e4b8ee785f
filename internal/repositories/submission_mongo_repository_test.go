package repositories_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"kontak/internal/database"
	"kontak/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Set KONTAK_TEST_MONGO_URI (e.g. mongodb://localhost:27017) to run these tests.
func TestMongoSubmissionRepository(t *testing.T) {
	uri := os.Getenv("KONTAK_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("KONTAK_TEST_MONGO_URI not set")
	}

	testRepositoryContract(t, func(t *testing.T) repositories.SubmissionRepository {
		ctx := context.Background()
		client, err := database.OpenMongo(ctx, uri, 5*time.Second)
		require.NoError(t, err)

		dbName := fmt.Sprintf("kontak_test_%s", uuid.New().String()[:8])
		repo, err := repositories.NewMongoSubmissionRepository(ctx, client, dbName, "submissions", 5*time.Second)
		require.NoError(t, err)

		t.Cleanup(func() {
			_ = client.Database(dbName).Drop(context.Background())
			_ = repo.Close()
		})
		return repo
	})
}
