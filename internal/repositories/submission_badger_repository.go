package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"kontak/internal/models"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const (
	badgerSubmissionPrefix = "sub:"
	badgerSequenceKey      = "seq:submissions"
)

// BadgerSubmissionRepository stores submissions in an embedded Badger database.
//
// Keys are "sub:{createdAt nanos, 19 digits}:{sequence, 20 digits}" so a reverse
// prefix scan yields newest first, with the sequence breaking timestamp ties.
type BadgerSubmissionRepository struct {
	db  *badger.DB
	seq *badger.Sequence
	mu  sync.Mutex
	// last is the most recently assigned createdAt, used to keep it non-decreasing.
	last time.Time
}

// NewBadgerSubmissionRepository creates a repository over an open Badger database.
func NewBadgerSubmissionRepository(db *badger.DB) (*BadgerSubmissionRepository, error) {
	seq, err := db.GetSequence([]byte(badgerSequenceKey), 100)
	if err != nil {
		return nil, unavailable("lease submission sequence", err)
	}
	return &BadgerSubmissionRepository{db: db, seq: seq}, nil
}

func badgerSubmissionKey(createdAt time.Time, seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%019d:%020d", badgerSubmissionPrefix, createdAt.UnixNano(), seq))
}

// Append writes a new submission. Appends are serialized so key order matches insertion order.
func (r *BadgerSubmissionRepository) Append(ctx context.Context, sub models.NewSubmission) (*models.Submission, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("append submission", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	n, err := r.seq.Next()
	if err != nil {
		return nil, unavailable("next submission sequence", err)
	}
	createdAt := time.Now().UTC()
	if createdAt.Before(r.last) {
		createdAt = r.last
	}

	stored := models.Submission{
		ID:        uuid.New().String(),
		Name:      sub.Name,
		Email:     sub.Email,
		Message:   sub.Message,
		IPAddress: sub.IPAddress,
		CreatedAt: createdAt,
	}
	value, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("encode submission: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerSubmissionKey(createdAt, n), value)
	})
	if err != nil {
		return nil, unavailable("append submission", err)
	}
	r.last = createdAt
	return &stored, nil
}

// List performs a reverse prefix scan and decodes at most limit submissions.
func (r *BadgerSubmissionRepository) List(ctx context.Context, limit int) ([]models.Submission, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("list submissions", err)
	}

	limit = NormalizeLimit(limit)
	prefix := []byte(badgerSubmissionPrefix)
	submissions := make([]models.Submission, 0, limit)

	err := r.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		// 0xFF sorts after every digit, so the seek lands on the newest key.
		for it.Seek(append(prefix, 0xFF)); it.ValidForPrefix(prefix) && len(submissions) < limit; it.Next() {
			var sub models.Submission
			err := it.Item().Value(func(value []byte) error {
				return json.Unmarshal(value, &sub)
			})
			if err != nil {
				return err
			}
			submissions = append(submissions, sub)
		}
		return nil
	})
	if err != nil {
		return nil, unavailable("list submissions", err)
	}
	return submissions, nil
}

// Count walks the submission keys without fetching values.
func (r *BadgerSubmissionRepository) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, unavailable("count submissions", err)
	}

	var count int64
	err := r.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		options.Prefix = []byte(badgerSubmissionPrefix)
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, unavailable("count submissions", err)
	}
	return count, nil
}

// Status reports whether the database is still open.
func (r *BadgerSubmissionRepository) Status(_ context.Context) string {
	if r.db.IsClosed() {
		return StatusDisconnected
	}
	return StatusConnected
}

// Close releases the sequence lease and closes the database.
func (r *BadgerSubmissionRepository) Close() error {
	if err := r.seq.Release(); err != nil {
		return fmt.Errorf("release submission sequence: %w", err)
	}
	return r.db.Close()
}
