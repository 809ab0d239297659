package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"fixit-api/models"
)

// ReportStore is the slice of the reports collection the status
// service needs. models.MongoReportStore implements it.
type ReportStore interface {
	Get(ctx context.Context, id string) (*models.Report, error)
	SetStatus(ctx context.Context, id string, status models.Status) error
}

// TransitionPolicy is the configurable guard on status changes. An
// empty Allowed map keeps the historical behavior: any status may
// follow any other, including itself, and every change re-notifies
// the owner (admins use that to re-ping). SuppressWindow, when set,
// drops a notification if an identical one was written within it.
type TransitionPolicy struct {
	Allowed        map[models.Status][]models.Status
	SuppressWindow time.Duration
}

func DefaultPolicy() TransitionPolicy {
	return TransitionPolicy{}
}

func (p TransitionPolicy) allows(from, to models.Status) bool {
	if len(p.Allowed) == 0 {
		return true
	}
	for _, s := range p.Allowed[from] {
		if s == to {
			return true
		}
	}
	return false
}

// StatusService validates and applies status changes and triggers the
// relay's write step.
type StatusService struct {
	reports ReportStore
	relay   *Relay
	policy  TransitionPolicy
	log     zerolog.Logger
}

func NewStatusService(reports ReportStore, relay *Relay, policy TransitionPolicy, log zerolog.Logger) *StatusService {
	return &StatusService{reports: reports, relay: relay, policy: policy, log: log}
}

// SetStatus persists the new status and appends a notification for the
// owner. The notification write is best-effort: if it fails, the
// status change stands and the failure is only logged.
func (s *StatusService) SetStatus(ctx context.Context, sess Session, reportID string, newStatus models.Status) (*models.Report, error) {
	if !sess.IsAdmin() {
		return nil, ErrForbidden
	}
	if _, err := models.ParseStatus(string(newStatus)); err != nil {
		return nil, ErrBadStatus
	}

	report, err := s.reports.Get(ctx, reportID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load report: %w", err)
	}

	if !s.policy.allows(report.Status, newStatus) {
		return nil, ErrTransitionNotAllowed
	}

	if err := s.reports.SetStatus(ctx, reportID, newStatus); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update status: %w", err)
	}

	report.Status = newStatus
	report.Normalize()

	if report.UserEmail != "" && s.shouldNotify(ctx, reportID, newStatus) {
		if err := s.relay.Write(ctx, report.UserEmail, reportID, report.PlaceName, newStatus, report.Description); err != nil {
			// Status change already succeeded; do not roll back.
			s.log.Error().Err(err).Str("reportId", reportID).Msg("status saved but notification write failed")
		}
	}

	return report, nil
}

func (s *StatusService) shouldNotify(ctx context.Context, reportID string, status models.Status) bool {
	if s.policy.SuppressWindow <= 0 {
		return true
	}
	since := time.Now().Add(-s.policy.SuppressWindow)
	recent, err := s.relay.store.HasRecent(ctx, reportID, status, since)
	if err != nil {
		s.log.Error().Err(err).Str("reportId", reportID).Msg("suppression check failed, notifying anyway")
		return true
	}
	return !recent
}
