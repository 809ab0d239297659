package models

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	db "fixit-api/database"
)

// Notification is one status-change message for a report owner. It is
// written unsent/unread when an admin changes a status and delivered as
// a push the next time the owner starts a session.
type Notification struct {
	ID               primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserEmail        string             `json:"userEmail" bson:"userEmail"`
	ReportID         string             `json:"reportId" bson:"reportId"`
	PlaceName        string             `json:"placeName" bson:"placeName"`
	Status           Status             `json:"status" bson:"status"`
	Description      string             `json:"description" bson:"description"`
	Title            string             `json:"title" bson:"title"`
	Body             string             `json:"body" bson:"body"`
	Read             bool               `json:"read" bson:"read"`
	NotificationSent bool               `json:"notificationSent" bson:"notificationSent"`
	CreatedAt        time.Time          `json:"createdAt" bson:"createdAt"`
}

func statusMessage(status Status) string {
	switch status {
	case StatusPending:
		return "Raporti juaj është pranuar dhe është në pritje"
	case StatusInProgress:
		return "Raporti juaj është në proces rregullimi"
	case StatusCompleted:
		return "Raporti juaj është përfunduar dhe problemi është rregulluar!"
	default:
		return "Statusi i raportit tuaj është përditësuar"
	}
}

func statusEmoji(status Status) string {
	switch status {
	case StatusPending:
		return "⏳"
	case StatusInProgress:
		return "🔧"
	case StatusCompleted:
		return "✔"
	default:
		return "📋"
	}
}

// ComposeNotification builds the display strings shown on the device.
func ComposeNotification(status Status, placeName string) (title, body string) {
	title = statusEmoji(status) + " Statusi i raportit u përditësua"
	body = statusMessage(status) + " - " + placeName
	return title, body
}

// MongoNotificationStore is the notifications collection behind the
// relay's store interface.
type MongoNotificationStore struct{}

func (MongoNotificationStore) Insert(ctx context.Context, n *Notification) error {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	n.CreatedAt = time.Now()
	_, err := db.NotificationCollection.InsertOne(ctx, n)
	return err
}

func (MongoNotificationStore) FindPending(ctx context.Context, userEmail string) ([]Notification, error) {
	filter := bson.M{
		"userEmail":        userEmail,
		"read":             false,
		"notificationSent": false,
	}

	cursor, err := db.NotificationCollection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notifications []Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (MongoNotificationStore) MarkSent(ctx context.Context, id string) error {
	return setNotificationField(ctx, id, "notificationSent")
}

func (MongoNotificationStore) MarkRead(ctx context.Context, id string) error {
	return setNotificationField(ctx, id, "read")
}

func setNotificationField(ctx context.Context, id, field string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}
	_, err = db.NotificationCollection.UpdateOne(ctx,
		bson.M{"_id": objID},
		bson.M{"$set": bson.M{field: true}},
	)
	return err
}

// HasRecent reports whether a notification for the same report and
// status was written inside the suppression window.
func (MongoNotificationStore) HasRecent(ctx context.Context, reportID string, status Status, since time.Time) (bool, error) {
	filter := bson.M{
		"reportId":  reportID,
		"status":    status,
		"createdAt": bson.M{"$gte": since},
	}
	count, err := db.NotificationCollection.CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// PendingEmails lists the distinct recipients that still hold unsent
// notifications; the cron sweep walks this list.
func (MongoNotificationStore) PendingEmails(ctx context.Context) ([]string, error) {
	filter := bson.M{"read": false, "notificationSent": false}
	values, err := db.NotificationCollection.Distinct(ctx, "userEmail", filter)
	if err != nil {
		return nil, err
	}

	emails := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			emails = append(emails, s)
		}
	}
	return emails, nil
}

// GetNotificationsByEmail returns a user's notifications, newest first.
func GetNotificationsByEmail(email string) ([]Notification, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := db.NotificationCollection.Find(ctx, bson.M{"userEmail": email}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notifications []Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}
