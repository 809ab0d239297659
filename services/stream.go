package services

import (
	"context"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	db "fixit-api/database"
	"fixit-api/models"
)

// ReportEvent is one change observed on the reports collection.
type ReportEvent struct {
	OperationType string         `bson:"operationType" json:"operationType"`
	FullDocument  *models.Report `bson:"fullDocument" json:"report,omitempty"`
	DocumentKey   struct {
		ID interface{} `bson:"_id" json:"id"`
	} `bson:"documentKey" json:"documentKey"`
}

// WatchReports subscribes to the reports change stream and returns a
// channel of events plus a cancel func that tears the subscription
// down. The channel closes when the stream ends or cancel is called;
// every subscriber owns exactly one stream and one cancel.
func WatchReports(ctx context.Context, log zerolog.Logger) (<-chan ReportEvent, context.CancelFunc, error) {
	ctx, cancel := context.WithCancel(ctx)

	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	stream, err := db.ReportCollection.Watch(ctx, mongo.Pipeline{}, opts)
	if err != nil {
		cancel()
		return nil, nil, err
	}

	events := make(chan ReportEvent)

	go func() {
		defer close(events)
		defer stream.Close(context.Background())

		for stream.Next(ctx) {
			var event ReportEvent
			if err := stream.Decode(&event); err != nil {
				log.Error().Err(err).Msg("failed to decode report change event")
				continue
			}
			if event.FullDocument != nil {
				event.FullDocument.Normalize()
			}

			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("report change stream ended")
		}
	}()

	return events, cancel, nil
}
