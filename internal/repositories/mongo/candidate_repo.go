package mongo

import (
	"context"
	"errors"
	"math"
	"os"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"crisp/interview/internal/models"
)

// CandidateRepo wraps the candidates collection
type CandidateRepo struct{ col *mongo.Collection }

// NewCandidateRepo connects to Mongo and ensures an index on email
func NewCandidateRepo(c *Client) (*CandidateRepo, error) {
	db, err := c.DB()
	if err != nil {
		return nil, err
	}

	colName := os.Getenv("CANDIDATES_COLLECTION")
	if colName == "" {
		colName = "candidates"
	}

	col := db.Collection(colName)
	r := &CandidateRepo{col: col}

	// Add a unique index on email
	_, _ = r.col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.M{"email": 1},
		Options: options.Index().SetUnique(true),
	})

	return r, nil
}

// Create inserts a new candidate in pending status
func (r *CandidateRepo) Create(ctx context.Context, candidate *models.Candidate) (*models.Candidate, error) {
	if candidate.Email == "" {
		return nil, errors.New("email required")
	}
	now := time.Now().UTC()
	if candidate.ID == "" {
		candidate.ID = uuid.New().String()
	}
	if candidate.Status == "" {
		candidate.Status = "pending"
	}
	if candidate.Answers == nil {
		candidate.Answers = []models.ScoredAnswer{}
	}
	candidate.CreatedAt, candidate.UpdatedAt = now, now

	if _, err := r.col.InsertOne(ctx, candidate); err != nil {
		return nil, err
	}
	return candidate, nil
}

// GetByID retrieves a candidate
func (r *CandidateRepo) GetByID(ctx context.Context, id string) (*models.Candidate, error) {
	var candidate models.Candidate
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&candidate)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &candidate, nil
}

// List retrieves candidates, optionally filtered by status
func (r *CandidateRepo) List(ctx context.Context, status string, limit int64) ([]models.Candidate, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	opts := options.Find().SetSort(bson.M{"created_at": -1})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Candidate{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies a partial patch to a candidate
func (r *CandidateRepo) Update(ctx context.Context, id string, patch bson.M) (*models.Candidate, error) {
	patch["updated_at"] = time.Now().UTC()
	var updated models.Candidate
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

// AppendScoredAnswer pushes a scored answer onto the candidate record
// and recomputes the running average score. The candidate moves to
// in-progress on the first answer.
func (r *CandidateRepo) AppendScoredAnswer(ctx context.Context, id string, answer models.ScoredAnswer) (*models.Candidate, error) {
	var updated models.Candidate
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{
			"$push": bson.M{"answers": answer},
			"$set":  bson.M{"status": "in-progress", "updated_at": time.Now().UTC()},
		},
		opts,
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	average := averageScore(updated.Answers)
	if average != updated.Score {
		return r.Update(ctx, id, bson.M{"score": average})
	}
	return &updated, nil
}

// Complete records the final score and summary for a candidate
func (r *CandidateRepo) Complete(ctx context.Context, id string, summary string) (*models.Candidate, error) {
	candidate, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.Update(ctx, id, bson.M{
		"status":  "completed",
		"summary": summary,
		"score":   averageScore(candidate.Answers),
	})
}

// Delete removes a candidate
func (r *CandidateRepo) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats aggregates dashboard counts and the overall average score
func (r *CandidateRepo) Stats(ctx context.Context) (*models.CandidateStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":       "$status",
			"count":     bson.M{"$sum": 1},
			"avg_score": bson.M{"$avg": "$score"},
		}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		Status   string  `bson:"_id"`
		Count    int64   `bson:"count"`
		AvgScore float64 `bson:"avg_score"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}

	stats := &models.CandidateStats{}
	var scored int64
	var scoreTotal float64
	for _, row := range rows {
		switch row.Status {
		case "pending":
			stats.Pending = row.Count
		case "in-progress":
			stats.InProgress = row.Count
		case "completed":
			stats.Completed = row.Count
		case "rejected":
			stats.Rejected = row.Count
		}
		if row.Status == "completed" || row.Status == "in-progress" {
			scored += row.Count
			scoreTotal += row.AvgScore * float64(row.Count)
		}
	}
	if scored > 0 {
		stats.AverageScore = math.Round(scoreTotal/float64(scored)*100) / 100
	}
	return stats, nil
}

func averageScore(answers []models.ScoredAnswer) int {
	if len(answers) == 0 {
		return 0
	}
	total := 0
	for _, a := range answers {
		total += a.Score
	}
	return int(math.Round(float64(total) / float64(len(answers))))
}
