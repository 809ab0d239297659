package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	db "fixit-api/database"
	"fixit-api/models"
)

// SearchReportsService filters reports by free-text keyword and/or a
// set of statuses, for the admin dashboard.
func SearchReportsService(keyword string, statusList []string) ([]models.Report, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	filter := bson.M{}

	if keyword != "" {
		filter["$or"] = []bson.M{
			{"problemTitle": bson.M{"$regex": keyword, "$options": "i"}},
			{"description": bson.M{"$regex": keyword, "$options": "i"}},
			{"placeName": bson.M{"$regex": keyword, "$options": "i"}},
		}
	}

	if len(statusList) > 0 {
		filter["status"] = bson.M{"$in": statusList}
	}

	cursor, err := db.ReportCollection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reports []models.Report
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, err
	}
	for i := range reports {
		reports[i].Normalize()
	}
	return reports, nil
}
