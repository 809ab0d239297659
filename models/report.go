package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	db "fixit-api/database"
)

// Status lifecycle of a report.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// ParseStatus rejects everything outside the three known values.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusInProgress, StatusCompleted:
		return Status(s), nil
	}
	return "", errors.New("unknown status: " + s)
}

type Report struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ProblemTitle string             `json:"problemTitle" bson:"problemTitle"`
	Description  string             `json:"description" bson:"description"`
	Latitude     float64            `json:"latitude" bson:"latitude"`
	Longitude    float64            `json:"longitude" bson:"longitude"`
	PlaceName    string             `json:"placeName" bson:"placeName"`
	PhotoURL     string             `json:"photoUrl,omitempty" bson:"photoUrl,omitempty"`
	PhotoBase64  string             `json:"photoBase64,omitempty" bson:"photoBase64,omitempty"`
	UserEmail    string             `json:"userEmail" bson:"userEmail"`
	Status       Status             `json:"status" bson:"status"`
	// Finished is the historical boolean the first app versions wrote
	// instead of Status. Kept in sync on write, folded into Status on read.
	Finished  *bool     `json:"-" bson:"finished,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// Normalize folds the legacy finished flag into the status enum so the
// rest of the code only ever sees pending/in_progress/completed.
func (r *Report) Normalize() {
	if r.Status == "" {
		if r.Finished != nil && *r.Finished {
			r.Status = StatusCompleted
		} else {
			r.Status = StatusPending
		}
	}
	finished := r.Status == StatusCompleted
	r.Finished = &finished
}

// Validate applies the submission rules: location and description are
// always required, and so is the title. The photo stays optional.
func (r *Report) Validate() error {
	if r.Latitude == 0 && r.Longitude == 0 {
		return errors.New("location is required")
	}
	if strings.TrimSpace(r.Description) == "" {
		return errors.New("description is required")
	}
	if strings.TrimSpace(r.ProblemTitle) == "" {
		return errors.New("title is required")
	}
	return nil
}

// CreateReport persists a new submission. Status always starts pending
// and createdAt is server-assigned.
func CreateReport(report Report) (*Report, error) {
	if err := report.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	report.ID = primitive.NewObjectID()
	report.Status = StatusPending
	report.CreatedAt = time.Now()
	report.Normalize()

	_, err := db.ReportCollection.InsertOne(ctx, report)
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func GetReportByID(id string) (*Report, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var report Report
	err = db.ReportCollection.FindOne(ctx, bson.M{"_id": objID}).Decode(&report)
	if err != nil {
		return nil, err
	}
	report.Normalize()
	return &report, nil
}

func GetAllReports() ([]Report, error) {
	return findReports(bson.M{})
}

func GetReportsByEmail(email string) ([]Report, error) {
	return findReports(bson.M{"userEmail": email})
}

func findReports(filter bson.M) ([]Report, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := db.ReportCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reports []Report
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, err
	}
	for i := range reports {
		reports[i].Normalize()
	}
	return reports, nil
}

func DeleteReport(id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := db.ReportCollection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// StatusCounts buckets a user's reports for the profile stats cards.
type StatusCounts struct {
	Total      int64 `json:"total"`
	Completed  int64 `json:"completed"`
	InProgress int64 `json:"inProgress"`
	Pending    int64 `json:"pending"`
}

func CountReportsByStatus(email string) (*StatusCounts, error) {
	reports, err := GetReportsByEmail(email)
	if err != nil {
		return nil, err
	}

	counts := StatusCounts{Total: int64(len(reports))}
	for _, r := range reports {
		switch r.Status {
		case StatusCompleted:
			counts.Completed++
		case StatusInProgress:
			counts.InProgress++
		default:
			counts.Pending++
		}
	}
	return &counts, nil
}

// MongoReportStore adapts the reports collection to the interface the
// status service works against.
type MongoReportStore struct{}

func (MongoReportStore) Get(ctx context.Context, id string) (*Report, error) {
	return GetReportByID(id)
}

func (MongoReportStore) SetStatus(ctx context.Context, id string, status Status) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}

	// Both representations are written so old clients reading the
	// finished switch keep working.
	update := bson.M{"$set": bson.M{
		"status":   status,
		"finished": status == StatusCompleted,
	}}

	result, err := db.ReportCollection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
