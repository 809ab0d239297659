package db

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Client global MongoDB connection, set by InitDB.
var Client *mongo.Client

var dbName = "fixit_db"

var ReportCollection *mongo.Collection
var UserCollection *mongo.Collection
var NotificationCollection *mongo.Collection
var MessageCollection *mongo.Collection

func InitDB() {
	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		log.Fatal("MONGODB_URI not set in .env")
	}
	if name := strings.TrimSpace(os.Getenv("MONGO_DB")); name != "" {
		dbName = name
	}

	clientOptions := options.Client().ApplyURI(mongoURI)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}

	err = client.Ping(ctx, nil)
	if err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}

	Client = client
	ReportCollection = client.Database(dbName).Collection("reports")
	UserCollection = client.Database(dbName).Collection("users")
	NotificationCollection = client.Database(dbName).Collection("notifications")
	MessageCollection = client.Database(dbName).Collection("messages")

	if err := createIndexes(); err != nil {
		log.Println("index creation warnings:", err)
	}

	log.Println("Connected to MongoDB!")
}

func DisconnectDB() {
	if Client == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := Client.Disconnect(ctx)
	if err != nil {
		log.Println("Failed to disconnect MongoDB:", err)
		return
	}
	log.Println("Disconnected from MongoDB")
}

// OpenCollection returns a collection by name.
func OpenCollection(collectionName string) *mongo.Collection {
	return Client.Database(dbName).Collection(collectionName)
}

// createIndexes backs the hot paths: reports by owner, the pending
// notification lookup, unique user emails. Failures are warnings only.
func createIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var errs []string

	if _, err := ReportCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userEmail", Value: 1}, {Key: "createdAt", Value: -1}},
	}); err != nil {
		errs = append(errs, "reports userEmail: "+err.Error())
	}
	if _, err := NotificationCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userEmail", Value: 1}, {Key: "read", Value: 1}, {Key: "notificationSent", Value: 1}},
	}); err != nil {
		errs = append(errs, "notifications pending: "+err.Error())
	}
	if _, err := UserCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		errs = append(errs, "users email: "+err.Error())
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
