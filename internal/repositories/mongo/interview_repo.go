package mongo

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"crisp/interview/internal/models"
)

// InterviewRepo wraps the interviews collection
type InterviewRepo struct{ col *mongo.Collection }

// NewInterviewRepo connects to Mongo and ensures an index on candidate_id
func NewInterviewRepo(c *Client) (*InterviewRepo, error) {
	db, err := c.DB()
	if err != nil {
		return nil, err
	}

	colName := os.Getenv("INTERVIEWS_COLLECTION")
	if colName == "" {
		colName = "interviews"
	}

	col := db.Collection(colName)
	r := &InterviewRepo{col: col}

	_, _ = r.col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.M{"candidate_id": 1},
	})

	return r, nil
}

// Create schedules a new interview
func (r *InterviewRepo) Create(ctx context.Context, interview *models.Interview) (*models.Interview, error) {
	if interview.CandidateID == "" {
		return nil, errors.New("candidate_id required")
	}
	now := time.Now().UTC()
	if interview.ID == "" {
		interview.ID = uuid.New().String()
	}
	if interview.Status == "" {
		interview.Status = "scheduled"
	}
	interview.CreatedAt, interview.UpdatedAt = now, now

	if _, err := r.col.InsertOne(ctx, interview); err != nil {
		return nil, err
	}
	return interview, nil
}

// GetByID retrieves an interview
func (r *InterviewRepo) GetByID(ctx context.Context, id string) (*models.Interview, error) {
	var interview models.Interview
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&interview)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &interview, nil
}

// ListByCandidate retrieves a candidate's interviews, newest first
func (r *InterviewRepo) ListByCandidate(ctx context.Context, candidateID string) ([]models.Interview, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cur, err := r.col.Find(ctx, bson.M{"candidate_id": candidateID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Interview{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetStatus transitions an interview, stamping start and end times
func (r *InterviewRepo) SetStatus(ctx context.Context, id, status string) (*models.Interview, error) {
	now := time.Now().UTC()
	patch := bson.M{"status": status, "updated_at": now}
	switch status {
	case "in-progress":
		patch["start_time"] = now
	case "completed", "cancelled":
		patch["end_time"] = now
	}

	var updated models.Interview
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": patch}, opts).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
