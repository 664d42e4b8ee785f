package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"kontak/internal/models"
	"kontak/internal/repositories"
	"kontak/internal/validation"

	"github.com/samber/lo"
)

// UnknownIP is recorded when the caller's address cannot be determined.
const UnknownIP = "unknown"

// EventPublisher publishes notifications about stored submissions.
type EventPublisher interface {
	PublishSubmissionCreated(event interface{}) error
}

// SubmissionService handles business logic related to form submissions.
type SubmissionService struct {
	repo      repositories.SubmissionRepository
	publisher EventPublisher
	now       func() time.Time
}

// NewSubmissionService creates a new SubmissionService. publisher may be nil.
func NewSubmissionService(repo repositories.SubmissionRepository, publisher EventPublisher) *SubmissionService {
	return &SubmissionService{
		repo:      repo,
		publisher: publisher,
		now:       time.Now,
	}
}

// Submit validates the input and stores it. Validation failures are returned as
// field errors with a nil error; the repository is not touched in that case.
func (s *SubmissionService) Submit(ctx context.Context, in validation.Input, ip string) (*models.Submission, []validation.FieldError, error) {
	fields, fieldErrs := validation.Validate(in)
	if len(fieldErrs) > 0 {
		return nil, fieldErrs, nil
	}

	if ip == "" {
		ip = UnknownIP
	}

	stored, err := s.repo.Append(ctx, models.NewSubmission{
		SubmissionFields: fields,
		IPAddress:        ip,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to store submission: %w", err)
	}

	s.publishCreated(*stored)
	return stored, nil, nil
}

func (s *SubmissionService) publishCreated(sub models.Submission) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSubmissionCreated(models.NewSubmissionCreatedEvent(sub)); err != nil {
		log.Printf("Warning: failed to publish submission created event for %s: %v", sub.ID, err)
	}
}

// Recent returns the most recent submissions without their IP addresses.
func (s *SubmissionService) Recent(ctx context.Context) ([]models.PublicSubmission, error) {
	submissions, err := s.repo.List(ctx, repositories.DefaultListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return lo.Map(submissions, func(sub models.Submission, _ int) models.PublicSubmission {
		return sub.Public()
	}), nil
}

// Health reports store connectivity and the number of stored submissions.
// It never fails; an unreadable count is reported as zero.
func (s *SubmissionService) Health(ctx context.Context) models.HealthReport {
	count, err := s.repo.Count(ctx)
	if err != nil {
		log.Printf("Health check could not count submissions: %v", err)
		count = 0
	}
	return models.HealthReport{
		Status:           "OK",
		Timestamp:        s.now().UTC().Format(time.RFC3339),
		DatabaseStatus:   s.repo.Status(ctx),
		SubmissionsCount: count,
	}
}
