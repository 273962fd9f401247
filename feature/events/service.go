package events

import (
	"context"
	"time"

	"report-service/core/contentrepo"
	"report-service/feature/events/models"

	"go.uber.org/zap"
)

// Service exposes the event log operations used by the HTTP layer.
type Service struct {
	repo       contentrepo.Searcher
	mapper     *Mapper
	reconciler *Reconciler
	collector  *Collector
	store      EventStore
	runs       RunStore
	logger     *zap.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewService creates a new events service.
func NewService(repo contentrepo.Searcher, mapper *Mapper, reconciler *Reconciler, collector *Collector, store EventStore, runs RunStore, logger *zap.Logger) *Service {
	return &Service{
		repo:       repo,
		mapper:     mapper,
		reconciler: reconciler,
		collector:  collector,
		store:      store,
		runs:       runs,
		logger:     logger,
		now:        time.Now,
	}
}

// Import runs one reconciliation pass against the given root and returns the
// number of new log entries.
func (s *Service) Import(ctx context.Context, rootID string) (int, error) {
	return s.reconciler.Run(ctx, rootID)
}

// RepositoryEvents maps the live repository content of a root into loose
// event maps, without touching the stored log. Inspection aid for checking
// what a pass would see.
func (s *Service) RepositoryEvents(ctx context.Context, rootID string) ([]map[string]any, error) {
	snapshots, err := s.repo.Search(ctx, rootID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	events := make([]map[string]any, 0, len(snapshots))
	for _, snap := range snapshots {
		events = append(events, s.mapper.ToRawEvent(snap, now))
	}
	return events, nil
}

// StoredEvents returns all stored events scoped to the given root's folder.
func (s *Service) StoredEvents(rootID string) ([]models.EventRecord, error) {
	return s.store.FindByScope(ScopeForFolder(rootID))
}

// Metrics builds the current metrics report.
func (s *Service) Metrics() (*MetricsReport, error) {
	return s.collector.Collect()
}

// History returns the most recent synchronization runs.
func (s *Service) History(limit int) ([]models.SyncRun, error) {
	return s.runs.Recent(limit)
}
