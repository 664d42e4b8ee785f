package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"kontak/internal/models"
	"kontak/internal/repositories"
	"kontak/internal/services"
	"kontak/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockSubmissionRepository is a mock implementation of repositories.SubmissionRepository
type MockSubmissionRepository struct {
	mock.Mock
}

func (m *MockSubmissionRepository) Append(ctx context.Context, sub models.NewSubmission) (*models.Submission, error) {
	args := m.Called(ctx, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Submission), args.Error(1)
}

func (m *MockSubmissionRepository) List(ctx context.Context, limit int) ([]models.Submission, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Submission), args.Error(1)
}

func (m *MockSubmissionRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSubmissionRepository) Status(ctx context.Context) string {
	args := m.Called(ctx)
	return args.String(0)
}

func (m *MockSubmissionRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockPublisher is a mock implementation of services.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishSubmissionCreated(event interface{}) error {
	args := m.Called(event)
	return args.Error(0)
}

var validInput = validation.Input{
	Name:    "Jane Doe",
	Email:   "JANE@Example.com",
	Message: "Hello, this is a test message.",
}

func TestSubmissionService_Submit(t *testing.T) {
	mockRepo := new(MockSubmissionRepository)
	mockPublisher := new(MockPublisher)
	service := services.NewSubmissionService(mockRepo, mockPublisher)
	ctx := context.Background()

	expectedNew := models.NewSubmission{
		SubmissionFields: models.SubmissionFields{
			Name:    "Jane Doe",
			Email:   "jane@example.com",
			Message: "Hello, this is a test message.",
		},
		IPAddress: "10.0.0.1",
	}
	stored := &models.Submission{
		ID:        "sub-1",
		Name:      expectedNew.Name,
		Email:     expectedNew.Email,
		Message:   expectedNew.Message,
		IPAddress: expectedNew.IPAddress,
		CreatedAt: time.Now().UTC(),
	}

	mockRepo.On("Append", ctx, expectedNew).Return(stored, nil).Once()
	mockPublisher.On("PublishSubmissionCreated", models.NewSubmissionCreatedEvent(*stored)).Return(nil).Once()

	sub, fieldErrs, err := service.Submit(ctx, validInput, "10.0.0.1")
	assert.NoError(t, err)
	assert.Empty(t, fieldErrs)
	assert.Equal(t, "sub-1", sub.ID)
	mockRepo.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}

func TestSubmissionService_SubmitWithoutIPUsesUnknown(t *testing.T) {
	mockRepo := new(MockSubmissionRepository)
	service := services.NewSubmissionService(mockRepo, nil)

	mockRepo.On("Append", mock.Anything, mock.MatchedBy(func(sub models.NewSubmission) bool {
		return sub.IPAddress == services.UnknownIP
	})).Return(&models.Submission{ID: "sub-2"}, nil).Once()

	sub, _, err := service.Submit(context.Background(), validInput, "")
	assert.NoError(t, err)
	assert.Equal(t, "sub-2", sub.ID)
	mockRepo.AssertExpectations(t)
}

func TestSubmissionService_SubmitInvalidSkipsRepository(t *testing.T) {
	mockRepo := new(MockSubmissionRepository)
	mockPublisher := new(MockPublisher)
	service := services.NewSubmissionService(mockRepo, mockPublisher)

	sub, fieldErrs, err := service.Submit(context.Background(), validation.Input{Name: "A", Email: "x", Message: "y"}, "10.0.0.1")
	assert.NoError(t, err)
	assert.Nil(t, sub)
	assert.NotEmpty(t, fieldErrs)
	mockRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	mockPublisher.AssertNotCalled(t, "PublishSubmissionCreated", mock.Anything)
}

func TestSubmissionService_SubmitStorageFailure(t *testing.T) {
	mockRepo := new(MockSubmissionRepository)
	mockPublisher := new(MockPublisher)
	service := services.NewSubmissionService(mockRepo, mockPublisher)

	storageErr := &repositories.StorageError{Op: "append submission", Err: fmt.Errorf("connection reset")}
	mockRepo.On("Append", mock.Anything, mock.Anything).Return(nil, storageErr).Once()

	sub, fieldErrs, err := service.Submit(context.Background(), validInput, "10.0.0.1")
	assert.Error(t, err)
	assert.ErrorIs(t, err, repositories.ErrStorageUnavailable)
	assert.Nil(t, sub)
	assert.Empty(t, fieldErrs)
	mockPublisher.AssertNotCalled(t, "PublishSubmissionCreated", mock.Anything)
}

func TestSubmissionService_PublishFailureDoesNotFailSubmit(t *testing.T) {
	mockRepo := new(MockSubmissionRepository)
	mockPublisher := new(MockPublisher)
	service := services.NewSubmissionService(mockRepo, mockPublisher)

	mockRepo.On("Append", mock.Anything, mock.Anything).Return(&models.Submission{ID: "sub-3"}, nil).Once()
	mockPublisher.On("PublishSubmissionCreated", mock.Anything).Return(fmt.Errorf("broker down")).Once()

	sub, _, err := service.Submit(context.Background(), validInput, "10.0.0.1")
	assert.NoError(t, err)
	assert.Equal(t, "sub-3", sub.ID)
	mockPublisher.AssertExpectations(t)
}

func TestSubmissionService_Recent(t *testing.T) {
	mockRepo := new(MockSubmissionRepository)
	service := services.NewSubmissionService(mockRepo, nil)

	createdAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mockRepo.On("List", mock.Anything, repositories.DefaultListLimit).Return([]models.Submission{
		{ID: "2", Name: "B", Email: "b@example.com", Message: "second message", IPAddress: "10.0.0.2", CreatedAt: createdAt},
		{ID: "1", Name: "A", Email: "a@example.com", Message: "first message!", IPAddress: "10.0.0.1", CreatedAt: createdAt},
	}, nil).Once()

	list, err := service.Recent(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []models.PublicSubmission{
		{ID: "2", Name: "B", Email: "b@example.com", Message: "second message", CreatedAt: createdAt},
		{ID: "1", Name: "A", Email: "a@example.com", Message: "first message!", CreatedAt: createdAt},
	}, list)
	mockRepo.AssertExpectations(t)
}

func TestSubmissionService_RecentStorageFailure(t *testing.T) {
	mockRepo := new(MockSubmissionRepository)
	service := services.NewSubmissionService(mockRepo, nil)

	mockRepo.On("List", mock.Anything, repositories.DefaultListLimit).Return(nil, &repositories.StorageError{Op: "list", Err: fmt.Errorf("timeout")}).Once()

	list, err := service.Recent(context.Background())
	assert.ErrorIs(t, err, repositories.ErrStorageUnavailable)
	assert.Nil(t, list)
}

func TestSubmissionService_Health(t *testing.T) {
	mockRepo := new(MockSubmissionRepository)
	service := services.NewSubmissionService(mockRepo, nil)

	mockRepo.On("Count", mock.Anything).Return(int64(7), nil).Once()
	mockRepo.On("Status", mock.Anything).Return(repositories.StatusConnected).Once()

	report := service.Health(context.Background())
	assert.Equal(t, "OK", report.Status)
	assert.Equal(t, repositories.StatusConnected, report.DatabaseStatus)
	assert.Equal(t, int64(7), report.SubmissionsCount)
	_, err := time.Parse(time.RFC3339, report.Timestamp)
	assert.NoError(t, err)
}

func TestSubmissionService_HealthWithBrokenStore(t *testing.T) {
	mockRepo := new(MockSubmissionRepository)
	service := services.NewSubmissionService(mockRepo, nil)

	mockRepo.On("Count", mock.Anything).Return(int64(0), &repositories.StorageError{Op: "count", Err: fmt.Errorf("down")}).Once()
	mockRepo.On("Status", mock.Anything).Return(repositories.StatusDisconnected).Once()

	report := service.Health(context.Background())
	assert.Equal(t, "OK", report.Status)
	assert.Equal(t, repositories.StatusDisconnected, report.DatabaseStatus)
	assert.Zero(t, report.SubmissionsCount)
}
