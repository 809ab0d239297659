package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"fixit-api/models"
)

type fakeNotifStore struct {
	mu        sync.Mutex
	records   map[string]*models.Notification
	insertErr error
	recent    bool
}

func newFakeNotifStore() *fakeNotifStore {
	return &fakeNotifStore{records: make(map[string]*models.Notification)}
}

func (s *fakeNotifStore) Insert(ctx context.Context, n *models.Notification) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n.ID = primitive.NewObjectID()
	n.CreatedAt = time.Now()
	copied := *n
	s.records[n.ID.Hex()] = &copied
	return nil
}

func (s *fakeNotifStore) FindPending(ctx context.Context, userEmail string) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notification
	for _, n := range s.records {
		if n.UserEmail == userEmail && !n.Read && !n.NotificationSent {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (s *fakeNotifStore) MarkSent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.records[id]; ok {
		n.NotificationSent = true
	}
	return nil
}

func (s *fakeNotifStore) MarkRead(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.records[id]; ok {
		n.Read = true
	}
	return nil
}

func (s *fakeNotifStore) HasRecent(ctx context.Context, reportID string, status models.Status, since time.Time) (bool, error) {
	return s.recent, nil
}

func (s *fakeNotifStore) PendingEmails(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[string]bool{}
	var emails []string
	for _, n := range s.records {
		if !n.Read && !n.NotificationSent && !seen[n.UserEmail] {
			seen[n.UserEmail] = true
			emails = append(emails, n.UserEmail)
		}
	}
	return emails, nil
}

func (s *fakeNotifStore) all() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notification
	for _, n := range s.records {
		out = append(out, *n)
	}
	return out
}

type fakePusher struct {
	mu         sync.Mutex
	permitted  bool
	failReport string // report id whose push should fail
	sent       []Push
}

func (p *fakePusher) Permission(ctx context.Context, userEmail string) (bool, error) {
	return p.permitted, nil
}

func (p *fakePusher) Send(ctx context.Context, push Push) error {
	if p.failReport != "" && push.Data["reportId"] == p.failReport {
		return errors.New("push gateway rejected message")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, push)
	return nil
}

func (p *fakePusher) sentCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sent)
}

func newTestRelay(store *fakeNotifStore, pusher *fakePusher) *Relay {
	return NewRelay(store, pusher, zerolog.Nop())
}

func TestRelayWrite_CreatesUnsentUnreadRecord(t *testing.T) {
	store := newFakeNotifStore()
	relay := newTestRelay(store, &fakePusher{permitted: true})

	err := relay.Write(context.Background(), "alice@example.com", "r1", "Prishtinë", models.StatusCompleted, "Gropë e madhe")
	require.NoError(t, err)

	records := store.all()
	require.Len(t, records, 1)
	n := records[0]
	assert.Equal(t, "alice@example.com", n.UserEmail)
	assert.Equal(t, "r1", n.ReportID)
	assert.Equal(t, models.StatusCompleted, n.Status)
	assert.False(t, n.Read)
	assert.False(t, n.NotificationSent)
	assert.Equal(t, "✔ Statusi i raportit u përditësua", n.Title)
	assert.Equal(t, "Raporti juaj është përfunduar dhe problemi është rregulluar! - Prishtinë", n.Body)
}

func TestRelayWrite_StoreFailureReturnedToCaller(t *testing.T) {
	store := newFakeNotifStore()
	store.insertErr = errors.New("store unreachable")
	relay := newTestRelay(store, &fakePusher{permitted: true})

	err := relay.Write(context.Background(), "alice@example.com", "r1", "Prishtinë", models.StatusPending, "")
	assert.Error(t, err)
}

func TestDeliverPending_NoopWhenNothingPending(t *testing.T) {
	store := newFakeNotifStore()
	pusher := &fakePusher{permitted: true}
	relay := newTestRelay(store, pusher)

	sent, err := relay.DeliverPending(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Equal(t, 0, pusher.sentCount())
}

func TestDeliverPending_SendsOnceAndMarksSent(t *testing.T) {
	store := newFakeNotifStore()
	pusher := &fakePusher{permitted: true}
	relay := newTestRelay(store, pusher)

	require.NoError(t, relay.Write(context.Background(), "alice@example.com", "r1", "Prishtinë", models.StatusCompleted, ""))

	sent, err := relay.DeliverPending(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	require.Equal(t, 1, pusher.sentCount())
	assert.Equal(t, "r1", pusher.sent[0].Data["reportId"])
	assert.Equal(t, "completed", pusher.sent[0].Data["status"])

	// Second run right after must schedule nothing.
	sent, err = relay.DeliverPending(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Equal(t, 1, pusher.sentCount())
}

func TestDeliverPending_PermissionDeniedKeepsRecordsPending(t *testing.T) {
	store := newFakeNotifStore()
	pusher := &fakePusher{permitted: false}
	relay := newTestRelay(store, pusher)

	require.NoError(t, relay.Write(context.Background(), "alice@example.com", "r1", "Prishtinë", models.StatusInProgress, ""))

	sent, err := relay.DeliverPending(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Equal(t, 0, pusher.sentCount())

	for _, n := range store.all() {
		assert.False(t, n.NotificationSent, "denied permission must leave records unsent")
	}
}

func TestDeliverPending_OneFailureDoesNotBlockOthers(t *testing.T) {
	store := newFakeNotifStore()
	pusher := &fakePusher{permitted: true, failReport: "bad"}
	relay := newTestRelay(store, pusher)

	ctx := context.Background()
	require.NoError(t, relay.Write(ctx, "alice@example.com", "bad", "Prizren", models.StatusPending, ""))
	require.NoError(t, relay.Write(ctx, "alice@example.com", "r2", "Pejë", models.StatusCompleted, ""))
	require.NoError(t, relay.Write(ctx, "alice@example.com", "r3", "Gjakovë", models.StatusInProgress, ""))

	sent, err := relay.DeliverPending(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	var stillPending int
	for _, n := range store.all() {
		if !n.NotificationSent {
			stillPending++
			assert.Equal(t, "bad", n.ReportID)
		}
	}
	assert.Equal(t, 1, stillPending)
}

func TestMarkRead_Idempotent(t *testing.T) {
	store := newFakeNotifStore()
	relay := newTestRelay(store, &fakePusher{permitted: true})

	ctx := context.Background()
	require.NoError(t, relay.Write(ctx, "alice@example.com", "r1", "Prishtinë", models.StatusCompleted, ""))
	id := store.all()[0].ID.Hex()

	require.NoError(t, relay.MarkRead(ctx, id))
	require.NoError(t, relay.MarkRead(ctx, id))
	assert.True(t, store.all()[0].Read)
}

func TestSweep_DeliversForEveryPendingRecipient(t *testing.T) {
	store := newFakeNotifStore()
	pusher := &fakePusher{permitted: true}
	relay := newTestRelay(store, pusher)

	ctx := context.Background()
	require.NoError(t, relay.Write(ctx, "alice@example.com", "r1", "Prishtinë", models.StatusCompleted, ""))
	require.NoError(t, relay.Write(ctx, "bob@example.com", "r2", "Prizren", models.StatusPending, ""))

	relay.Sweep(ctx)

	assert.Equal(t, 2, pusher.sentCount())
	for _, n := range store.all() {
		assert.True(t, n.NotificationSent)
	}
}
