package models

import (
	"context"
	"os"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	db "fixit-api/database"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	FirstName       string             `json:"firstName" bson:"firstName"`
	LastName        string             `json:"lastName" bson:"lastName"`
	Email           string             `json:"email" bson:"email"`
	Password        string             `json:"-" bson:"password"`
	Role            string             `json:"role" bson:"role"`
	Status          string             `json:"status" bson:"status"`
	ProfileImageURL string             `json:"profileImageUrl,omitempty" bson:"profileImageUrl,omitempty"`
	// Push delivery: the device token registered at login and the
	// opt-in switch from notification settings.
	PushToken            string    `json:"-" bson:"pushToken,omitempty"`
	NotificationsEnabled bool      `json:"notificationsEnabled" bson:"notificationsEnabled"`
	CreatedAt            time.Time `json:"createdAt" bson:"createdAt"`
}

// RoleForEmail decides the role once, at account creation: the one
// configured admin address gets admin, everyone else is a user.
func RoleForEmail(email string) string {
	adminEmail := strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL")))
	if adminEmail != "" && strings.ToLower(strings.TrimSpace(email)) == adminEmail {
		return RoleAdmin
	}
	return RoleUser
}

func CreateUser(user User) (*User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user.ID = primitive.NewObjectID()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.Role = RoleForEmail(user.Email)
	user.Status = "active"
	user.NotificationsEnabled = true
	user.CreatedAt = time.Now()

	_, err := db.UserCollection.InsertOne(ctx, user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func FindUserByEmail(email string) (*User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var user User
	err := db.UserCollection.FindOne(ctx,
		bson.M{"email": strings.ToLower(strings.TrimSpace(email))},
	).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func FindUserByID(id string) (*User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var user User
	err = db.UserCollection.FindOne(ctx, bson.M{"_id": objID}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func UpdateUserFields(id string, fields bson.M) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = db.UserCollection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": fields})
	return err
}

// MongoUserStore exposes the lookups the push permission check needs.
type MongoUserStore struct{}

func (MongoUserStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	return FindUserByEmail(email)
}
