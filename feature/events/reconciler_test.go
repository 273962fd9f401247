package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"report-service/core/contentrepo"
	"report-service/core/database"
	"report-service/feature/events/models"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubSearcher struct {
	snapshots []contentrepo.DocumentSnapshot
	err       error
}

func (s *stubSearcher) Search(ctx context.Context, rootID string) ([]contentrepo.DocumentSnapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.snapshots, nil
}

func newTestReconciler(t *testing.T, repo *stubSearcher) (*Reconciler, EventStore, RunStore) {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	assert.NoError(t, err)
	assert.NoError(t, Migrate(db))

	store := NewEventStore(db)
	runs := NewRunStore(db)
	r := NewReconciler(repo, store, runs, NewMapper(90), zap.NewNop())
	return r, store, runs
}

func docSnapshot(id, name string, createdAt, modifiedAt time.Time) contentrepo.DocumentSnapshot {
	return contentrepo.DocumentSnapshot{
		ID:         id,
		Name:       name,
		ParentID:   "root",
		CreatedAt:  createdAt,
		ModifiedAt: modifiedAt,
		Creator:    &contentrepo.Actor{ID: "alice", DisplayName: "Alice"},
		MimeType:   "application/pdf",
		SizeBytes:  1024,
		HasContent: true,
	}
}

func TestRunRecordsNewDocument(t *testing.T) {
	createdAt := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	now := time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC)

	repo := &stubSearcher{snapshots: []contentrepo.DocumentSnapshot{
		docSnapshot("doc-1", "invoice.pdf", createdAt, createdAt),
	}}
	r, store, _ := newTestReconciler(t, repo)
	r.now = func() time.Time { return now }

	count, err := r.Run(context.Background(), "root")
	assert.NoError(t, err)
	assert.Equal(t, 1, count)

	rec, err := store.LatestByDocument("doc-1")
	assert.NoError(t, err)
	if assert.NotNil(t, rec) {
		assert.Equal(t, models.KindAdded, rec.Kind)
		assert.Equal(t, "Alice (alice)", rec.Actor)
		if assert.NotNil(t, rec.ElapsedDays) {
			assert.Equal(t, int64(0), *rec.ElapsedDays)
		}
	}
}

func TestRunIsIdempotent(t *testing.T) {
	createdAt := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	now := time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC)

	repo := &stubSearcher{snapshots: []contentrepo.DocumentSnapshot{
		docSnapshot("doc-1", "invoice.pdf", createdAt, createdAt),
	}}
	r, store, _ := newTestReconciler(t, repo)
	r.now = func() time.Time { return now }

	first, err := r.Run(context.Background(), "root")
	assert.NoError(t, err)
	assert.Equal(t, 1, first)

	second, err := r.Run(context.Background(), "root")
	assert.NoError(t, err)
	assert.Equal(t, 0, second)

	total, err := store.CountAll()
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestRunBackfillsMissedDays(t *testing.T) {
	createdAt := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	repo := &stubSearcher{snapshots: []contentrepo.DocumentSnapshot{
		docSnapshot("doc-1", "invoice.pdf", createdAt, createdAt),
	}}
	r, store, _ := newTestReconciler(t, repo)

	r.now = func() time.Time { return time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC) }
	_, err := r.Run(context.Background(), "root")
	assert.NoError(t, err)

	// Three days pass without a run.
	later := time.Date(2024, 1, 4, 10, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return later }

	count, err := r.Run(context.Background(), "root")
	assert.NoError(t, err)
	assert.Equal(t, 3, count)

	all, err := store.FindAll()
	assert.NoError(t, err)

	var updates []models.EventRecord
	for _, rec := range all {
		if rec.Kind == models.KindStatsUpdate {
			updates = append(updates, rec)
		}
	}
	assert.Len(t, updates, 3)

	seen := make(map[int64]time.Time)
	for _, u := range updates {
		if assert.NotNil(t, u.ElapsedDays) {
			seen[*u.ElapsedDays] = u.Timestamp
		}
	}
	// One record per missed day, dated at that day's midnight.
	assert.True(t, seen[1].Equal(StartOfDay(later).AddDate(0, 0, -2)))
	assert.True(t, seen[2].Equal(StartOfDay(later).AddDate(0, 0, -1)))
	assert.True(t, seen[3].Equal(StartOfDay(later)))

	// A third run on the same day adds nothing.
	again, err := r.Run(context.Background(), "root")
	assert.NoError(t, err)
	assert.Equal(t, 0, again)
}

func TestRunRecordsDeletionOnce(t *testing.T) {
	createdAt := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	now := time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC)

	repo := &stubSearcher{snapshots: []contentrepo.DocumentSnapshot{
		docSnapshot("doc-1", "invoice.pdf", createdAt, createdAt),
	}}
	r, store, _ := newTestReconciler(t, repo)
	r.now = func() time.Time { return now }

	_, err := r.Run(context.Background(), "root")
	assert.NoError(t, err)

	// The document disappears from the repository.
	repo.snapshots = nil
	r.now = func() time.Time { return now.Add(time.Hour) }

	count, err := r.Run(context.Background(), "root")
	assert.NoError(t, err)
	assert.Equal(t, 1, count)

	rec, err := store.LatestByDocument("doc-1")
	assert.NoError(t, err)
	if assert.NotNil(t, rec) {
		assert.Equal(t, models.KindDeleted, rec.Kind)
		assert.Equal(t, models.SystemActor, rec.Actor)
		assert.Equal(t, models.StatusDeleted, rec.Detail[models.DetailStatus])
		assert.Contains(t, rec.Detail, models.DetailDeletionDate)
		assert.NotContains(t, rec.Detail, models.DetailElapsedDays)
		assert.NotContains(t, rec.Detail, models.DetailExpiration)
		assert.Nil(t, rec.ElapsedDays)
	}

	// Another run must not record a second deletion.
	r.now = func() time.Time { return now.Add(2 * time.Hour) }
	count, err = r.Run(context.Background(), "root")
	assert.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestRunCatchUpWithoutCheckpoint(t *testing.T) {
	createdAt := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	modifiedAt := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	now := time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)

	snap := docSnapshot("doc-1", "invoice.pdf", createdAt, modifiedAt)
	repo := &stubSearcher{snapshots: []contentrepo.DocumentSnapshot{snap}}
	r, store, _ := newTestReconciler(t, repo)
	r.now = func() time.Time { return now }

	// Seed the log with the exact Modified record the diff would produce,
	// without any tracking checkpoint.
	seed := r.mapper.ToEventRecord(snap, now)
	seed.StripTracking()
	assert.NoError(t, store.Save(&seed))

	count, err := r.Run(context.Background(), "root")
	assert.NoError(t, err)
	assert.Equal(t, 1, count)

	checkpoint, err := store.LatestWithTracking("doc-1")
	assert.NoError(t, err)
	if assert.NotNil(t, checkpoint) {
		assert.Equal(t, models.KindStatsUpdate, checkpoint.Kind)
		assert.True(t, checkpoint.Timestamp.Equal(StartOfDay(now)))
		if assert.NotNil(t, checkpoint.ElapsedDays) {
			assert.Equal(t, int64(2), *checkpoint.ElapsedDays)
		}
	}

	// Re-running on the same day must not add a second catch-up record.
	again, err := r.Run(context.Background(), "root")
	assert.NoError(t, err)
	assert.Equal(t, 0, again)
}

func TestRunAbortsOnFetchFailure(t *testing.T) {
	repo := &stubSearcher{err: errors.New("connection refused")}
	r, store, runs := newTestReconciler(t, repo)

	_, err := r.Run(context.Background(), "root")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "repository fetch failed")

	total, err := store.CountAll()
	assert.NoError(t, err)
	assert.Equal(t, int64(0), total)

	history, err := runs.Recent(10)
	assert.NoError(t, err)
	assert.Empty(t, history)
}

func TestRunRecordsSyncHistory(t *testing.T) {
	createdAt := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	now := time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC)

	repo := &stubSearcher{snapshots: []contentrepo.DocumentSnapshot{
		docSnapshot("doc-1", "a.pdf", createdAt, createdAt),
		docSnapshot("doc-2", "b.pdf", createdAt.Add(time.Minute), createdAt.Add(time.Minute)),
	}}
	r, _, runs := newTestReconciler(t, repo)
	r.now = func() time.Time { return now }

	count, err := r.Run(context.Background(), "root")
	assert.NoError(t, err)
	assert.Equal(t, 2, count)

	history, err := runs.Recent(10)
	assert.NoError(t, err)
	if assert.Len(t, history, 1) {
		assert.Equal(t, 2, history[0].ActiveDocuments)
		assert.Equal(t, 2, history[0].NewEvents)
	}
}

func TestRunHandlesSameInstantUploads(t *testing.T) {
	// A bulk upload: two distinct documents, same actor, same timestamps.
	// Their candidate records share the dedup triplet; only one can be
	// stored and the run must not error out.
	createdAt := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	now := time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC)

	repo := &stubSearcher{snapshots: []contentrepo.DocumentSnapshot{
		docSnapshot("doc-1", "a.pdf", createdAt, createdAt),
		docSnapshot("doc-2", "b.pdf", createdAt, createdAt),
	}}
	r, store, _ := newTestReconciler(t, repo)
	r.now = func() time.Time { return now }

	count, err := r.Run(context.Background(), "root")
	assert.NoError(t, err)
	assert.Equal(t, 1, count)

	total, err := store.CountAll()
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)

	// The collision must not wedge subsequent runs either.
	again, err := r.Run(context.Background(), "root")
	assert.NoError(t, err)
	assert.Equal(t, 0, again)
}

func TestRunHandlesOverlappingBackfillWindows(t *testing.T) {
	// Two same-actor documents created at the same instant produce backfill
	// records on the same midnights. The overlap collapses to one record per
	// midnight, within a batch and across runs.
	createdAt := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	repo := &stubSearcher{snapshots: []contentrepo.DocumentSnapshot{
		docSnapshot("doc-1", "a.pdf", createdAt, createdAt),
		docSnapshot("doc-2", "b.pdf", createdAt, createdAt),
	}}
	r, store, _ := newTestReconciler(t, repo)

	r.now = func() time.Time { return time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC) }
	_, err := r.Run(context.Background(), "root")
	assert.NoError(t, err)

	later := time.Date(2024, 1, 4, 10, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return later }

	count, err := r.Run(context.Background(), "root")
	assert.NoError(t, err)
	assert.Equal(t, 3, count)

	// And the pass stays clean when the midnights are already stored.
	again, err := r.Run(context.Background(), "root")
	assert.NoError(t, err)
	assert.Equal(t, 0, again)

	all, err := store.FindAll()
	assert.NoError(t, err)
	updates := 0
	for _, rec := range all {
		if rec.Kind == models.KindStatsUpdate {
			updates++
		}
	}
	assert.Equal(t, 3, updates)
}

func TestRunRecordsMultipleDeletionsInOnePass(t *testing.T) {
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	repo := &stubSearcher{snapshots: []contentrepo.DocumentSnapshot{
		docSnapshot("doc-1", "a.pdf", base, base),
		docSnapshot("doc-2", "b.pdf", base.Add(time.Minute), base.Add(time.Minute)),
	}}
	r, store, _ := newTestReconciler(t, repo)

	// A ticking clock: every read advances one second, so the two deletion
	// records get distinct timestamps within the same pass.
	tick := 0
	r.now = func() time.Time {
		tick++
		return base.Add(6*time.Hour + time.Duration(tick)*time.Second)
	}

	_, err := r.Run(context.Background(), "root")
	assert.NoError(t, err)

	repo.snapshots = nil
	count, err := r.Run(context.Background(), "root")
	assert.NoError(t, err)
	assert.Equal(t, 2, count)

	var timestamps []time.Time
	for _, id := range []string{"doc-1", "doc-2"} {
		rec, err := store.LatestByDocument(id)
		assert.NoError(t, err)
		if assert.NotNil(t, rec) {
			assert.Equal(t, models.KindDeleted, rec.Kind)
			timestamps = append(timestamps, rec.Timestamp)
		}
	}
	if assert.Len(t, timestamps, 2) {
		assert.False(t, timestamps[0].Equal(timestamps[1]))
	}
}

func TestRunDefersDeletionOnTimestampCollision(t *testing.T) {
	// A frozen clock makes both deletion records collide on the triplet.
	// The second deletion is deferred instead of failing the run, and lands
	// on the next pass.
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	repo := &stubSearcher{snapshots: []contentrepo.DocumentSnapshot{
		docSnapshot("doc-1", "a.pdf", base, base),
		docSnapshot("doc-2", "b.pdf", base.Add(time.Minute), base.Add(time.Minute)),
	}}
	r, store, _ := newTestReconciler(t, repo)
	r.now = func() time.Time { return base.Add(6 * time.Hour) }

	_, err := r.Run(context.Background(), "root")
	assert.NoError(t, err)

	repo.snapshots = nil
	count, err := r.Run(context.Background(), "root")
	assert.NoError(t, err)
	assert.Equal(t, 1, count)

	r.now = func() time.Time { return base.Add(7 * time.Hour) }
	count, err = r.Run(context.Background(), "root")
	assert.NoError(t, err)
	assert.Equal(t, 1, count)

	for _, id := range []string{"doc-1", "doc-2"} {
		rec, err := store.LatestByDocument(id)
		assert.NoError(t, err)
		if assert.NotNil(t, rec) {
			assert.Equal(t, models.KindDeleted, rec.Kind)
		}
	}
}

type failingRunStore struct{}

func (f *failingRunStore) Record(run *models.SyncRun) error {
	return errors.New("history table unavailable")
}

func (f *failingRunStore) Recent(limit int) ([]models.SyncRun, error) {
	return nil, nil
}

func TestRunSwallowsHistoryWriteFailure(t *testing.T) {
	createdAt := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	now := time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC)

	repo := &stubSearcher{snapshots: []contentrepo.DocumentSnapshot{
		docSnapshot("doc-1", "invoice.pdf", createdAt, createdAt),
	}}

	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	assert.NoError(t, err)
	assert.NoError(t, Migrate(db))
	store := NewEventStore(db)

	r := NewReconciler(repo, store, &failingRunStore{}, NewMapper(90), zap.NewNop())
	r.now = func() time.Time { return now }

	// A failed history write is logged, not surfaced: the pass committed.
	count, err := r.Run(context.Background(), "root")
	assert.NoError(t, err)
	assert.Equal(t, 1, count)

	rec, err := store.LatestByDocument("doc-1")
	assert.NoError(t, err)
	if assert.NotNil(t, rec) {
		assert.Equal(t, models.KindAdded, rec.Kind)
	}
}
