package repositories

import (
	"context"
	"sync"
	"time"

	"kontak/internal/models"

	"github.com/google/uuid"
)

// MemorySubmissionRepository is an in-memory implementation of SubmissionRepository
// used in demo mode. Submissions are kept in insertion order.
type MemorySubmissionRepository struct {
	submissions []models.Submission
	mu          sync.RWMutex
	now         func() time.Time
}

// NewMemorySubmissionRepository creates a new instance of MemorySubmissionRepository.
func NewMemorySubmissionRepository() *MemorySubmissionRepository {
	return &MemorySubmissionRepository{
		now: time.Now,
	}
}

// Append adds a new submission.
func (r *MemorySubmissionRepository) Append(_ context.Context, sub models.NewSubmission) (*models.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	createdAt := r.now().UTC()
	// Keep createdAt non-decreasing if the wall clock steps backwards.
	if n := len(r.submissions); n > 0 && createdAt.Before(r.submissions[n-1].CreatedAt) {
		createdAt = r.submissions[n-1].CreatedAt
	}

	stored := models.Submission{
		ID:        uuid.New().String(),
		Name:      sub.Name,
		Email:     sub.Email,
		Message:   sub.Message,
		IPAddress: sub.IPAddress,
		CreatedAt: createdAt,
	}
	r.submissions = append(r.submissions, stored)
	return &stored, nil
}

// List returns the most recent submissions, newest first.
func (r *MemorySubmissionRepository) List(_ context.Context, limit int) ([]models.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	limit = NormalizeLimit(limit)
	if limit > len(r.submissions) {
		limit = len(r.submissions)
	}

	list := make([]models.Submission, 0, limit)
	for i := len(r.submissions) - 1; i >= 0 && len(list) < limit; i-- {
		list = append(list, r.submissions[i])
	}
	return list, nil
}

// Count returns the number of stored submissions.
func (r *MemorySubmissionRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.submissions)), nil
}

// Status always reports the in-memory store as available.
func (r *MemorySubmissionRepository) Status(_ context.Context) string {
	return StatusAvailable
}

func (r *MemorySubmissionRepository) Close() error { return nil }
