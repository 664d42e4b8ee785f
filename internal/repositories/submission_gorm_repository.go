package repositories

import (
	"context"
	"fmt"
	"time"

	"kontak/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// submissionRecord is the SQL row shape. seq breaks createdAt ties in insertion order.
type submissionRecord struct {
	Seq       uint64    `gorm:"column:seq;primaryKey;autoIncrement"`
	ID        string    `gorm:"column:id;type:varchar(36);uniqueIndex;not null"`
	Name      string    `gorm:"column:name;type:varchar(100);not null"`
	Email     string    `gorm:"column:email;type:varchar(255);not null"`
	Message   string    `gorm:"column:message;type:text;not null"`
	IPAddress string    `gorm:"column:ip_address;type:varchar(64);not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (submissionRecord) TableName() string {
	return "submissions"
}

func (r submissionRecord) toModel() models.Submission {
	return models.Submission{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		Message:   r.Message,
		IPAddress: r.IPAddress,
		CreatedAt: r.CreatedAt,
	}
}

// GORMSubmissionRepository is a GORM implementation of SubmissionRepository
// backed by SQLite or PostgreSQL.
type GORMSubmissionRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewGORMSubmissionRepository creates a new instance of GORMSubmissionRepository.
// The schema must already exist; see database.Migrate.
func NewGORMSubmissionRepository(db *gorm.DB, timeout time.Duration) *GORMSubmissionRepository {
	return &GORMSubmissionRepository{
		db:      db,
		timeout: timeout,
	}
}

// Append inserts a new submission row. createdAt is kept at the microsecond
// precision PostgreSQL stores.
func (r *GORMSubmissionRepository) Append(ctx context.Context, sub models.NewSubmission) (*models.Submission, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	record := submissionRecord{
		ID:        uuid.New().String(),
		Name:      sub.Name,
		Email:     sub.Email,
		Message:   sub.Message,
		IPAddress: sub.IPAddress,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, unavailable("append submission", err)
	}

	stored := record.toModel()
	return &stored, nil
}

// List retrieves the most recent submissions from the database.
func (r *GORMSubmissionRepository) List(ctx context.Context, limit int) ([]models.Submission, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var records []submissionRecord
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("seq DESC").
		Limit(NormalizeLimit(limit)).
		Find(&records).Error
	if err != nil {
		return nil, unavailable("list submissions", err)
	}

	submissions := make([]models.Submission, 0, len(records))
	for _, rec := range records {
		submissions = append(submissions, rec.toModel())
	}
	return submissions, nil
}

// Count returns the number of rows in the submissions table.
func (r *GORMSubmissionRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var count int64
	if err := r.db.WithContext(ctx).Model(&submissionRecord{}).Count(&count).Error; err != nil {
		return 0, unavailable("count submissions", err)
	}
	return count, nil
}

// Status pings the underlying connection pool.
func (r *GORMSubmissionRepository) Status(ctx context.Context) string {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	sqlDB, err := r.db.DB()
	if err != nil {
		return StatusDisconnected
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return StatusDisconnected
	}
	return StatusConnected
}

// Close closes the underlying connection pool.
func (r *GORMSubmissionRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("resolve sql db: %w", err)
	}
	return sqlDB.Close()
}
