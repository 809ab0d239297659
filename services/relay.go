package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"fixit-api/models"
)

// NotificationStore is the slice of the notifications collection the
// relay needs. models.MongoNotificationStore implements it.
type NotificationStore interface {
	Insert(ctx context.Context, n *models.Notification) error
	FindPending(ctx context.Context, userEmail string) ([]models.Notification, error)
	MarkSent(ctx context.Context, id string) error
	MarkRead(ctx context.Context, id string) error
	HasRecent(ctx context.Context, reportID string, status models.Status, since time.Time) (bool, error)
	PendingEmails(ctx context.Context) ([]string, error)
}

// Push is what ends up on the user's device.
type Push struct {
	UserEmail string
	Title     string
	Body      string
	Data      map[string]string
}

// Pusher abstracts the push gateway. Permission answers whether the
// recipient can receive pushes at all; a false aborts the whole batch
// so the records stay pending for the next session.
type Pusher interface {
	Permission(ctx context.Context, userEmail string) (bool, error)
	Send(ctx context.Context, push Push) error
}

// Relay decouples "a status changed" from "the user was told". Writes
// append an unsent record; delivery happens on the owner's next
// session start (or the periodic sweep) and flips notificationSent.
type Relay struct {
	store  NotificationStore
	pusher Pusher
	log    zerolog.Logger
}

func NewRelay(store NotificationStore, pusher Pusher, log zerolog.Logger) *Relay {
	return &Relay{store: store, pusher: pusher, log: log}
}

// Write appends one notification record for a status change. The push
// itself is deferred; nothing is sent here.
func (r *Relay) Write(ctx context.Context, userEmail, reportID, placeName string, status models.Status, description string) error {
	title, body := models.ComposeNotification(status, placeName)

	n := &models.Notification{
		UserEmail:        userEmail,
		ReportID:         reportID,
		PlaceName:        placeName,
		Status:           status,
		Description:      description,
		Title:            title,
		Body:             body,
		Read:             false,
		NotificationSent: false,
	}

	if err := r.store.Insert(ctx, n); err != nil {
		r.log.Error().Err(err).Str("reportId", reportID).Msg("failed to save notification")
		return err
	}
	return nil
}

// DeliverPending pushes every unread, unsent notification for the user
// and marks each one sent. Records are handled independently: one
// failed send must not block the rest. Returns how many were pushed.
func (r *Relay) DeliverPending(ctx context.Context, userEmail string) (int, error) {
	pending, err := r.store.FindPending(ctx, userEmail)
	if err != nil {
		r.log.Error().Err(err).Str("userEmail", userEmail).Msg("failed to query pending notifications")
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	ok, err := r.pusher.Permission(ctx, userEmail)
	if err != nil {
		r.log.Error().Err(err).Str("userEmail", userEmail).Msg("push permission check failed")
		return 0, err
	}
	if !ok {
		// Leave everything unsent; the next session retries.
		r.log.Warn().Str("userEmail", userEmail).Msg("push not permitted, keeping notifications pending")
		return 0, nil
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	sent := 0

	for _, n := range pending {
		wg.Add(1)
		go func(n models.Notification) {
			defer wg.Done()

			push := Push{
				UserEmail: n.UserEmail,
				Title:     n.Title,
				Body:      n.Body,
				Data: map[string]string{
					"reportId":  n.ReportID,
					"status":    string(n.Status),
					"placeName": n.PlaceName,
				},
			}
			if err := r.pusher.Send(ctx, push); err != nil {
				r.log.Error().Err(err).Str("id", n.ID.Hex()).Msg("failed to send push")
				return
			}
			if err := r.store.MarkSent(ctx, n.ID.Hex()); err != nil {
				r.log.Error().Err(err).Str("id", n.ID.Hex()).Msg("failed to mark notification sent")
				return
			}

			mu.Lock()
			sent++
			mu.Unlock()
		}(n)
	}
	wg.Wait()

	r.log.Info().Int("sent", sent).Str("userEmail", userEmail).Msg("delivered pending notifications")
	return sent, nil
}

// MarkRead is idempotent; re-reading a read notification is a no-op.
func (r *Relay) MarkRead(ctx context.Context, id string) error {
	if err := r.store.MarkRead(ctx, id); err != nil {
		r.log.Error().Err(err).Str("id", id).Msg("failed to mark notification read")
		return err
	}
	return nil
}

// Sweep re-runs delivery for every recipient still holding unsent
// records. Run from cron so that a push missed at login is retried
// without waiting for the next session.
func (r *Relay) Sweep(ctx context.Context) {
	emails, err := r.store.PendingEmails(ctx)
	if err != nil {
		r.log.Error().Err(err).Msg("sweep: failed to list pending recipients")
		return
	}
	for _, email := range emails {
		if _, err := r.DeliverPending(ctx, email); err != nil {
			r.log.Error().Err(err).Str("userEmail", email).Msg("sweep: delivery failed")
		}
	}
}
