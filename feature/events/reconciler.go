package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"report-service/core/contentrepo"
	"report-service/feature/events/models"

	"go.uber.org/zap"
)

// Reconciler performs one audit-trail reconciliation pass: it diffs the
// current repository content against the stored log and appends the minimal
// set of new entries (additions, modifications, deletions and day-granularity
// retention tracking).
//
// Runs for the same root are mutually exclusive. The backfill step reads the
// last tracking checkpoint and emits the missing day records; two interleaved
// runs could both observe the same checkpoint and emit overlapping records
// under different timestamps, bypassing the dedup triplet.
type Reconciler struct {
	repo   contentrepo.Searcher
	store  EventStore
	runs   RunStore
	mapper *Mapper
	logger *zap.Logger

	// now is swappable for tests.
	now func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewReconciler wires the reconciliation pass.
func NewReconciler(repo contentrepo.Searcher, store EventStore, runs RunStore, mapper *Mapper, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		repo:   repo,
		store:  store,
		runs:   runs,
		mapper: mapper,
		logger: logger,
		now:    time.Now,
		locks:  make(map[string]*sync.Mutex),
	}
}

// Run executes one reconciliation pass for the given root and returns the
// number of new log entries.
//
// A repository fetch failure aborts the run before any write; the next
// scheduled pass retries wholesale. Failures after a batch has committed
// leave the committed entries in place: every write is dedup-safe, so
// subsequent runs converge forward. Only the final summary write is
// swallowed, since it must never undo the pass it summarizes.
func (r *Reconciler) Run(ctx context.Context, rootID string) (int, error) {
	lock := r.rootLock(rootID)
	lock.Lock()
	defer lock.Unlock()

	log := r.logger.With(zap.String("root_id", rootID))
	log.Info("Starting event synchronization")

	now := r.now()

	snapshots, err := r.repo.Search(ctx, rootID)
	if err != nil {
		return 0, fmt.Errorf("repository fetch failed, aborting run: %w", err)
	}

	total := 0

	deletions, err := r.recordDeletions(snapshots, log)
	total += deletions
	if err != nil {
		return total, err
	}

	added, err := r.recordActiveDiff(snapshots, now, log)
	total += added
	if err != nil {
		return total, err
	}

	backfilled, err := r.recordDayChanges(snapshots, now, log)
	total += backfilled
	if err != nil {
		return total, err
	}

	// History is best-effort: a failed summary write must not fail the
	// already-committed pass.
	run := models.SyncRun{
		ExecutedAt:      now,
		ActiveDocuments: len(snapshots),
		NewEvents:       total,
	}
	if err := r.runs.Record(&run); err != nil {
		log.Error("Failed to record sync history", zap.Error(err))
	}

	log.Info("Synchronization completed",
		zap.Int("active_documents", len(snapshots)),
		zap.Int("new_events", total),
		zap.Int("deletions", deletions),
		zap.Int("added_or_modified", added),
		zap.Int("backfilled", backfilled))

	return total, nil
}

// dedupKey identifies a record by its deduplication triplet.
type dedupKey struct {
	actor string
	ts    int64
	kind  string
}

func tripletOf(rec *models.EventRecord) dedupKey {
	return dedupKey{actor: rec.Actor, ts: rec.Timestamp.UnixNano(), kind: rec.Kind}
}

// rootLock returns the mutex guarding runs for a root.
func (r *Reconciler) rootLock(rootID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[rootID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[rootID] = lock
	}
	return lock
}

// recordDeletions emits one Deleted record for every known document that is
// no longer present and whose latest record is not already a deletion.
// Deletion detection is deliberately global across the whole log, not scoped
// to the current root.
//
// Timestamps are taken per record: every deletion record carries the system
// actor and the Deleted kind, so a shared timestamp would collide on the
// dedup triplet. When a collision still occurs (a coarse clock returning the
// same instant twice) the record is skipped; the document is still absent on
// the next pass and gets its deletion then.
func (r *Reconciler) recordDeletions(snapshots []contentrepo.DocumentSnapshot, log *zap.Logger) (int, error) {
	current := make(map[string]struct{}, len(snapshots))
	for _, snap := range snapshots {
		current[snap.ID] = struct{}{}
	}

	known, err := r.store.KnownDocumentIDs()
	if err != nil {
		return 0, fmt.Errorf("failed to load known document ids: %w", err)
	}

	seen := make(map[dedupKey]struct{})
	count := 0
	for _, id := range known {
		if _, ok := current[id]; ok {
			continue
		}

		last, err := r.store.LatestByDocument(id)
		if err != nil {
			return count, fmt.Errorf("failed to load latest event for %s: %w", id, err)
		}
		if last == nil || last.Kind == models.KindDeleted {
			continue
		}

		ts := r.now()
		detail := last.Detail.Clone()
		if detail == nil {
			detail = models.DetailBag{models.DetailDocumentID: id}
		}
		detail[models.DetailStatus] = models.StatusDeleted
		detail[models.DetailDeletionDate] = ts.Format(time.RFC3339)

		rec := models.EventRecord{
			Actor:     models.SystemActor,
			Scope:     last.Scope,
			Timestamp: ts,
			Kind:      models.KindDeleted,
			Detail:    detail,
			Category:  models.CategoryDocument,
		}
		rec.StripTracking()

		key := tripletOf(&rec)
		if _, dup := seen[key]; dup {
			log.Warn("Deletion timestamp collision, deferring to next run",
				zap.String("document_id", id))
			continue
		}
		exists, err := r.store.ExistsByDedupKey(rec.Actor, rec.Timestamp, rec.Kind)
		if err != nil {
			return count, fmt.Errorf("dedup lookup failed for %s: %w", id, err)
		}
		if exists {
			log.Warn("Deletion timestamp collision, deferring to next run",
				zap.String("document_id", id))
			continue
		}

		if err := r.store.Save(&rec); err != nil {
			return count, fmt.Errorf("failed to save deletion event for %s: %w", id, err)
		}
		seen[key] = struct{}{}
		count++
		log.Info("Document no longer present in repository, recorded deletion",
			zap.String("document_id", id))
	}
	return count, nil
}

// recordActiveDiff maps every snapshot to a candidate record and persists the
// ones whose dedup triplet is not stored yet. The triplet is also checked
// against the batch under construction: two documents uploaded by the same
// actor at the same instant map to identical triplets, and a naive batch
// would trip the unique index and reject every record in it.
func (r *Reconciler) recordActiveDiff(snapshots []contentrepo.DocumentSnapshot, now time.Time, log *zap.Logger) (int, error) {
	if len(snapshots) == 0 {
		return 0, nil
	}

	seen := make(map[dedupKey]struct{}, len(snapshots))
	batch := make([]models.EventRecord, 0, len(snapshots))
	for _, snap := range snapshots {
		rec := r.mapper.ToEventRecord(snap, now)

		// A modification is a point-in-time change record, not a tracking
		// checkpoint; Added records keep both tracking fields.
		if rec.Kind == models.KindModified {
			rec.StripTracking()
		}

		key := tripletOf(&rec)
		if _, dup := seen[key]; dup {
			continue
		}
		exists, err := r.store.ExistsByDedupKey(rec.Actor, rec.Timestamp, rec.Kind)
		if err != nil {
			return 0, fmt.Errorf("dedup lookup failed for %s: %w", snap.ID, err)
		}
		if exists {
			continue
		}
		seen[key] = struct{}{}
		batch = append(batch, rec)
	}

	if len(batch) == 0 {
		return 0, nil
	}
	if err := r.store.SaveBatch(batch); err != nil {
		return 0, fmt.Errorf("failed to save event batch: %w", err)
	}
	log.Info("Saved new repository events", zap.Int("count", len(batch)))
	return len(batch), nil
}

// recordDayChanges backfills Statistics Update records for every active
// document whose elapsed-day count advanced since its last tracking
// checkpoint.
//
// Backfill records of same-actor documents land on the same midnights and
// therefore the same dedup triplets. Only one record can exist per triplet,
// so colliding candidates are dropped, whether the collision is within this
// batch or with a record a previous run committed.
func (r *Reconciler) recordDayChanges(snapshots []contentrepo.DocumentSnapshot, now time.Time, log *zap.Logger) (int, error) {
	seen := make(map[dedupKey]struct{})
	var updates []models.EventRecord

	for _, snap := range snapshots {
		rec := r.mapper.ToEventRecord(snap, now)
		if rec.ElapsedDays == nil {
			// No creation date, nothing to track.
			continue
		}
		currentDays := *rec.ElapsedDays

		checkpoint, err := r.store.LatestWithTracking(snap.ID)
		if err != nil {
			return 0, fmt.Errorf("tracking lookup failed for %s: %w", snap.ID, err)
		}

		if checkpoint != nil {
			storedDays := *checkpoint.ElapsedDays
			if currentDays <= storedDays {
				continue
			}

			log.Info("Day change detected, backfilling missing days",
				zap.String("document", snap.Name),
				zap.Int64("missing_days", currentDays-storedDays))

			// One record per missed day, dated at that day's local midnight.
			for d := storedDays + 1; d <= currentDays; d++ {
				update := r.mapper.ToEventRecord(snap, now)
				update.Timestamp = StartOfDay(now).AddDate(0, 0, int(d-currentDays))
				update.Kind = models.KindStatsUpdate
				update.Detail[models.DetailElapsedDays] = d
				update.SyncDerived()

				key := tripletOf(&update)
				if _, dup := seen[key]; dup {
					continue
				}
				exists, err := r.store.ExistsByDedupKey(update.Actor, update.Timestamp, update.Kind)
				if err != nil {
					return 0, fmt.Errorf("dedup lookup failed for %s: %w", snap.ID, err)
				}
				if exists {
					continue
				}
				seen[key] = struct{}{}
				updates = append(updates, update)
			}
			continue
		}

		// No tracking checkpoint: the document's prior records were all
		// modifications, or it was never logged. Emit a single catch-up
		// record for today unless this run already has company today.
		if currentDays > 0 {
			midnight := StartOfDay(now)
			key := dedupKey{actor: rec.Actor, ts: midnight.UnixNano(), kind: models.KindStatsUpdate}
			if _, dup := seen[key]; dup {
				continue
			}
			exists, err := r.store.ExistsByDedupKey(rec.Actor, midnight, models.KindStatsUpdate)
			if err != nil {
				return 0, fmt.Errorf("dedup lookup failed for %s: %w", snap.ID, err)
			}
			if exists {
				continue
			}

			log.Info("Document without tracking history, recording catch-up checkpoint",
				zap.String("document", snap.Name),
				zap.Int64("elapsed_days", currentDays))

			update := r.mapper.ToEventRecord(snap, now)
			update.Timestamp = midnight
			update.Kind = models.KindStatsUpdate
			update.Detail[models.DetailElapsedDays] = currentDays
			update.SyncDerived()
			seen[key] = struct{}{}
			updates = append(updates, update)
		}
	}

	if len(updates) == 0 {
		return 0, nil
	}
	if err := r.store.SaveBatch(updates); err != nil {
		return 0, fmt.Errorf("failed to save backfill batch: %w", err)
	}
	log.Info("Completed statistics backfill", zap.Int("count", len(updates)))
	return len(updates), nil
}
