package events

import (
	"fmt"
	"time"

	"report-service/core/contentrepo"
	"report-service/feature/events/models"
)

// Mapper derives audit log fields from document snapshots. It centralizes
// actor resolution, event classification and the retention tracking math so
// the reconciler stays focused on diffing.
type Mapper struct {
	retentionDays int
}

// NewMapper creates a mapper with the given retention window in days.
func NewMapper(retentionDays int) *Mapper {
	if retentionDays <= 0 {
		retentionDays = 90
	}
	return &Mapper{retentionDays: retentionDays}
}

// RetentionDays returns the configured retention window.
func (m *Mapper) RetentionDays() int {
	return m.retentionDays
}

// ActorLabel resolves the actor for a snapshot: last modifier, then creator,
// then the synthetic system actor.
func (m *Mapper) ActorLabel(snap contentrepo.DocumentSnapshot) string {
	switch {
	case snap.Modifier != nil:
		return fmt.Sprintf("%s (%s)", snap.Modifier.DisplayName, snap.Modifier.ID)
	case snap.Creator != nil:
		return fmt.Sprintf("%s (%s)", snap.Creator.DisplayName, snap.Creator.ID)
	default:
		return models.SystemActor
	}
}

// ToEventRecord builds the candidate event record for a snapshot.
//
// The detail bag always carries the tracking fields when a creation date is
// known, even for Modified candidates: the backfill step reads the current
// elapsed count from them. The reconciler strips tracking from Modified
// records before persisting.
func (m *Mapper) ToEventRecord(snap contentrepo.DocumentSnapshot, now time.Time) models.EventRecord {
	// Event timestamp: modification date, else creation date, else now.
	timestamp := snap.ModifiedAt
	if timestamp.IsZero() {
		timestamp = snap.CreatedAt
	}
	if timestamp.IsZero() {
		timestamp = now
	}

	kind := models.KindAdded
	if !snap.ModifiedAt.IsZero() && !snap.CreatedAt.IsZero() && !snap.ModifiedAt.Equal(snap.CreatedAt) {
		kind = models.KindModified
	}

	scope := ""
	if snap.ParentID != "" {
		scope = ScopeForFolder(snap.ParentID)
	}

	rec := models.EventRecord{
		Actor:     m.ActorLabel(snap),
		Scope:     scope,
		Timestamp: timestamp,
		Kind:      kind,
		Detail:    m.detailBag(snap, now),
		Category:  models.CategoryDocument,
	}
	rec.SyncDerived()
	return rec
}

// ToRawEvent builds the loose key-value representation served by the
// repository inspection endpoint.
func (m *Mapper) ToRawEvent(snap contentrepo.DocumentSnapshot, now time.Time) map[string]any {
	rec := m.ToEventRecord(snap, now)
	return map[string]any{
		"actor":     rec.Actor,
		"scope":     rec.Scope,
		"timestamp": rec.Timestamp.Format(time.RFC3339),
		"kind":      rec.Kind,
		"detail":    map[string]any(rec.Detail),
		"category":  rec.Category,
	}
}

// ExpirationDate returns the end of the retention window for a document.
func (m *Mapper) ExpirationDate(createdAt time.Time) time.Time {
	return createdAt.AddDate(0, 0, m.retentionDays)
}

func (m *Mapper) detailBag(snap contentrepo.DocumentSnapshot, now time.Time) models.DetailBag {
	detail := models.DetailBag{
		models.DetailFileName:   snap.Name,
		models.DetailDocumentID: snap.ID,
		models.DetailStatus:     models.StatusActive,
	}
	if snap.HasContent {
		detail[models.DetailMimeType] = snap.MimeType
		detail[models.DetailSizeBytes] = snap.SizeBytes
	}
	if !snap.CreatedAt.IsZero() {
		detail[models.DetailExpiration] = m.ExpirationDate(snap.CreatedAt).Format(time.RFC3339)
		detail[models.DetailElapsedDays] = CalendarDaysBetween(snap.CreatedAt, now)
	}
	return detail
}

// ScopeForFolder builds the scope label for events of documents under a folder.
func ScopeForFolder(folderID string) string {
	return "Folder_" + folderID
}

// CalendarDaysBetween counts whole calendar days between two instants, using
// their dates only: the count advances at midnight regardless of time of day.
// A from date in the future clamps to zero.
func CalendarDaysBetween(from, to time.Time) int64 {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	days := int64(b.Sub(a) / (24 * time.Hour))
	if days < 0 {
		return 0
	}
	return days
}

// StartOfDay returns local midnight of the given instant.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
