package repositories_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"kontak/internal/models"
	"kontak/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSubmission(i int) models.NewSubmission {
	return models.NewSubmission{
		SubmissionFields: models.SubmissionFields{
			Name:    "Jane Doe",
			Email:   fmt.Sprintf("jane%d@example.com", i),
			Message: fmt.Sprintf("Hello, this is test message number %d.", i),
		},
		IPAddress: "127.0.0.1",
	}
}

// testRepositoryContract exercises the behaviour every SubmissionRepository must share.
func testRepositoryContract(t *testing.T, newRepo func(t *testing.T) repositories.SubmissionRepository) {
	ctx := context.Background()

	t.Run("AppendAssignsIDAndTimestamp", func(t *testing.T) {
		repo := newRepo(t)
		in := newSubmission(1)

		stored, err := repo.Append(ctx, in)
		require.NoError(t, err)
		assert.NotEmpty(t, stored.ID)
		assert.False(t, stored.CreatedAt.IsZero())
		assert.Equal(t, in.Name, stored.Name)
		assert.Equal(t, in.Email, stored.Email)
		assert.Equal(t, in.Message, stored.Message)
		assert.Equal(t, in.IPAddress, stored.IPAddress)
		assert.Equal(t, newSubmission(1), in)
	})

	t.Run("ListNewestFirst", func(t *testing.T) {
		repo := newRepo(t)
		first, err := repo.Append(ctx, newSubmission(1))
		require.NoError(t, err)
		second, err := repo.Append(ctx, newSubmission(2))
		require.NoError(t, err)

		list, err := repo.List(ctx, 10)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, second.ID, list[0].ID)
		assert.Equal(t, first.ID, list[1].ID)
		assert.False(t, list[0].CreatedAt.Before(list[1].CreatedAt))
	})

	t.Run("ListClampsLimit", func(t *testing.T) {
		repo := newRepo(t)
		for i := 0; i < 60; i++ {
			_, err := repo.Append(ctx, newSubmission(i))
			require.NoError(t, err)
		}

		list, err := repo.List(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, list, repositories.DefaultListLimit)
		assert.Equal(t, "jane59@example.com", list[0].Email)

		list, err = repo.List(ctx, 500)
		require.NoError(t, err)
		assert.Len(t, list, repositories.DefaultListLimit)

		list, err = repo.List(ctx, 5)
		require.NoError(t, err)
		assert.Len(t, list, 5)

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(60), count)
	})

	t.Run("ConcurrentAppendsKeepUniqueIDs", func(t *testing.T) {
		repo := newRepo(t)
		const writers = 20

		var wg sync.WaitGroup
		ids := make(chan string, writers)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				stored, err := repo.Append(ctx, newSubmission(i))
				if assert.NoError(t, err) {
					ids <- stored.ID
				}
			}(i)
		}
		wg.Wait()
		close(ids)

		seen := make(map[string]bool)
		for id := range ids {
			assert.False(t, seen[id], "duplicate id %s", id)
			seen[id] = true
		}
		assert.Len(t, seen, writers)

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(writers), count)
	})

	t.Run("EmptyList", func(t *testing.T) {
		repo := newRepo(t)

		list, err := repo.List(ctx, 50)
		require.NoError(t, err)
		assert.Empty(t, list)

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, 50, repositories.NormalizeLimit(0))
	assert.Equal(t, 50, repositories.NormalizeLimit(-3))
	assert.Equal(t, 50, repositories.NormalizeLimit(51))
	assert.Equal(t, 1, repositories.NormalizeLimit(1))
	assert.Equal(t, 50, repositories.NormalizeLimit(50))
}

func TestStorageError(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := fmt.Errorf("submit: %w", &repositories.StorageError{Op: "append submission", Err: cause})

	assert.ErrorIs(t, err, repositories.ErrStorageUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "append submission")
}
