package repositories

import (
	"context"
	"fmt"
	"time"

	"kontak/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type submissionDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Message   string             `bson:"message"`
	IPAddress string             `bson:"ip_address"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (d submissionDocument) toModel() models.Submission {
	return models.Submission{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Email:     d.Email,
		Message:   d.Message,
		IPAddress: d.IPAddress,
		CreatedAt: d.CreatedAt,
	}
}

// MongoSubmissionRepository stores submissions as documents in a MongoDB collection.
// ObjectIDs increase within a process, so sorting on _id breaks createdAt ties.
type MongoSubmissionRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
	timeout    time.Duration
}

// NewMongoSubmissionRepository creates a repository over the given collection and
// ensures the created_at index used by List.
func NewMongoSubmissionRepository(ctx context.Context, client *mongo.Client, database, collection string, timeout time.Duration) (*MongoSubmissionRepository, error) {
	r := &MongoSubmissionRepository{
		client:     client,
		collection: client.Database(database).Collection(collection),
		timeout:    timeout,
	}

	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
	})
	if err != nil {
		return nil, unavailable("create created_at index", err)
	}
	return r, nil
}

// Append inserts a new submission document.
func (r *MongoSubmissionRepository) Append(ctx context.Context, sub models.NewSubmission) (*models.Submission, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	doc := submissionDocument{
		ID:        primitive.NewObjectID(),
		Name:      sub.Name,
		Email:     sub.Email,
		Message:   sub.Message,
		IPAddress: sub.IPAddress,
		// BSON dates carry millisecond precision.
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return nil, unavailable("insert submission", err)
	}

	stored := doc.toModel()
	return &stored, nil
}

// List returns the most recent submission documents.
func (r *MongoSubmissionRepository) List(ctx context.Context, limit int) ([]models.Submission, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(NormalizeLimit(limit)))
	cursor, err := r.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, unavailable("find submissions", err)
	}
	defer cursor.Close(ctx)

	var docs []submissionDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, unavailable("decode submissions", err)
	}

	submissions := make([]models.Submission, 0, len(docs))
	for _, d := range docs {
		submissions = append(submissions, d.toModel())
	}
	return submissions, nil
}

// Count returns the number of documents in the collection.
func (r *MongoSubmissionRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	n, err := r.collection.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, unavailable("count submissions", err)
	}
	return n, nil
}

// Status pings the primary.
func (r *MongoSubmissionRepository) Status(ctx context.Context) string {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.client.Ping(ctx, readpref.Primary()); err != nil {
		return StatusDisconnected
	}
	return StatusConnected
}

// Close disconnects the client.
func (r *MongoSubmissionRepository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect mongo: %w", err)
	}
	return nil
}
