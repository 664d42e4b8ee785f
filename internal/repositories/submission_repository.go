package repositories

import (
	"context"
	"time"

	"kontak/internal/models"
)

// DefaultListLimit is both the default and the maximum number of submissions returned by List.
const DefaultListLimit = 50

// Connectivity states reported by Status.
const (
	StatusAvailable    = "available"
	StatusConnected    = "connected"
	StatusDisconnected = "disconnected"
)

// SubmissionRepository defines the interface for submission data access.
// Implementations must be safe for concurrent use.
type SubmissionRepository interface {
	// Append stores an already-validated submission, assigning its ID and creation time.
	Append(ctx context.Context, sub models.NewSubmission) (*models.Submission, error)
	// List returns at most limit submissions, newest first.
	List(ctx context.Context, limit int) ([]models.Submission, error)
	Count(ctx context.Context) (int64, error)
	Status(ctx context.Context) string
	Close() error
}

// NormalizeLimit clamps limit into [1, DefaultListLimit]; non-positive values select the default.
func NormalizeLimit(limit int) int {
	if limit <= 0 || limit > DefaultListLimit {
		return DefaultListLimit
	}
	return limit
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
