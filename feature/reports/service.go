package reports

import (
	"context"
	"time"

	"report-service/core/contentrepo"
	"report-service/feature/events"

	"go.uber.org/zap"
)

// rowTimeFormat is the human-readable timestamp format used in report rows.
const rowTimeFormat = "02/01/2006 15:04"

// Row is one document line of a retention report.
type Row struct {
	FileName       string `json:"fileName"`
	NodeKind       string `json:"nodeKind"`
	CreatedAt      string `json:"createdAt"`
	ExpirationDate string `json:"expirationDate"`
	ElapsedDays    int64  `json:"elapsedDays"`
}

// Report is a point-in-time retention report over the live repository content.
type Report struct {
	RootID      string `json:"rootId"`
	GeneratedAt string `json:"generatedAt"`
	Documents   int    `json:"documents"`
	Rows        []Row  `json:"rows"`
}

// Service builds retention reports from live repository snapshots.
type Service struct {
	repo     contentrepo.Searcher
	mapper   *events.Mapper
	archiver *Archiver
	logger   *zap.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewService creates a new reports service. The archiver may be nil when
// object storage is not configured.
func NewService(repo contentrepo.Searcher, mapper *events.Mapper, archiver *Archiver, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		mapper:   mapper,
		archiver: archiver,
		logger:   logger,
		now:      time.Now,
	}
}

// Build fetches the current repository content and renders one row per
// document. Documents without a creation date are reported as created now,
// with a full retention window ahead.
func (s *Service) Build(ctx context.Context, rootID string) (*Report, error) {
	snapshots, err := s.repo.Search(ctx, rootID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	rows := make([]Row, 0, len(snapshots))
	for _, snap := range snapshots {
		createdAt := snap.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		rows = append(rows, Row{
			FileName:       snap.Name,
			NodeKind:       string(snap.Kind),
			CreatedAt:      createdAt.Format(rowTimeFormat),
			ExpirationDate: s.mapper.ExpirationDate(createdAt).Format(rowTimeFormat),
			ElapsedDays:    events.CalendarDaysBetween(createdAt, now),
		})
	}

	return &Report{
		RootID:      rootID,
		GeneratedAt: now.Format(time.RFC3339),
		Documents:   len(rows),
		Rows:        rows,
	}, nil
}

// BuildAndArchive builds a report and writes it to object storage. Returns
// the object key the archive was stored under.
func (s *Service) BuildAndArchive(ctx context.Context, rootID string) (*Report, string, error) {
	report, err := s.Build(ctx, rootID)
	if err != nil {
		return nil, "", err
	}
	if s.archiver == nil {
		return report, "", ErrArchivalDisabled
	}

	key, err := s.archiver.Store(ctx, report)
	if err != nil {
		return nil, "", err
	}
	s.logger.Info("Archived retention report",
		zap.String("root_id", rootID),
		zap.String("object_key", key))
	return report, key, nil
}

// Archives lists the stored archive keys for a root, newest key last.
func (s *Service) Archives(ctx context.Context, rootID string) ([]string, error) {
	if s.archiver == nil {
		return nil, ErrArchivalDisabled
	}
	return s.archiver.List(ctx, rootID)
}
