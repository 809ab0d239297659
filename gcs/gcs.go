package gcs

import (
	"context"
	"log"
	"os"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

var Client *storage.Client

// Bucket is the photo bucket, from GCS_BUCKET.
var Bucket string

// InitGCS connects to Cloud Storage and checks the photo bucket is
// reachable. Photo upload is optional infrastructure: when the client
// stays nil, reports keep their base64 payload instead.
func InitGCS() {
	Bucket = os.Getenv("GCS_BUCKET")
	if Bucket == "" {
		log.Println("GCS_BUCKET not set, photos will be stored inline")
		return
	}

	ctx := context.Background()
	var err error
	var opts []option.ClientOption
	if creds := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); creds != "" {
		opts = append(opts, option.WithCredentialsFile(creds))
	}

	Client, err = storage.NewClient(ctx, opts...)
	if err != nil {
		log.Fatalf("Failed to connect to Google Cloud Storage: %v", err)
	}

	_, err = Client.Bucket(Bucket).Attrs(ctx)
	if err != nil {
		log.Fatalf("Cannot access bucket %s: %v", Bucket, err)
	}
	log.Printf("Bucket %s ready", Bucket)
}

func Close() {
	if Client != nil {
		Client.Close()
	}
}
