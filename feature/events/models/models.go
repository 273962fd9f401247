package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"report-service/core/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Event kinds recorded in the audit log.
const (
	KindAdded       = "Document Added"
	KindModified    = "Document Modified"
	KindDeleted     = "Document Deleted"
	KindStatsUpdate = "Statistics Update"
)

// CategoryDocument is the audit category for every record in current scope.
const CategoryDocument = "DOCUMENT"

// Document statuses carried in the detail bag.
const (
	StatusActive  = "Active"
	StatusDeleted = "Deleted"
)

// SystemActor is the synthetic actor for events no user triggered.
const SystemActor = "System (system)"

// Detail bag keys.
const (
	DetailDocumentID   = "documentId"
	DetailFileName     = "fileName"
	DetailStatus       = "status"
	DetailMimeType     = "mimeType"
	DetailSizeBytes    = "sizeBytes"
	DetailExpiration   = "expirationDate"
	DetailElapsedDays  = "elapsedDays"
	DetailDeletionDate = "deletionDate"
)

// DetailBag is the open key-value payload of an event record, persisted as a
// JSON column.
type DetailBag map[string]any

// Value implements driver.Valuer.
func (d DetailBag) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal(d)
}

// Scan implements sql.Scanner.
func (d *DetailBag) Scan(value any) error {
	if value == nil {
		*d = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	default:
		return fmt.Errorf("unsupported detail bag type %T", value)
	}
}

// Clone returns a shallow copy of the bag.
func (d DetailBag) Clone() DetailBag {
	if d == nil {
		return nil
	}
	out := make(DetailBag, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// EventRecord is one append-only entry of the audit log.
//
// The (actor, timestamp, kind) triplet is the deduplication key: at most one
// record may exist per triplet, enforced both by an application-level
// existence check and the unique index below. DocumentID and ElapsedDays are
// derived from the detail bag at write time so lookups never scan JSON.
type EventRecord struct {
	ID        string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	Actor     string    `gorm:"column:actor;size:191;not null;uniqueIndex:idx_event_dedup" json:"actor"`
	Scope     string    `gorm:"column:scope;size:191" json:"scope"`
	Timestamp time.Time `gorm:"column:timestamp;not null;uniqueIndex:idx_event_dedup" json:"timestamp"`
	Kind      string    `gorm:"column:kind;size:64;not null;uniqueIndex:idx_event_dedup" json:"kind"`
	Detail    DetailBag `gorm:"column:detail;type:json" json:"detail"`
	Category  string    `gorm:"column:category;size:32" json:"category"`

	DocumentID  string `gorm:"column:document_id;size:191;index" json:"document_id"`
	ElapsedDays *int64 `gorm:"column:elapsed_days" json:"elapsed_days,omitempty"`
}

// TableName overrides the table name.
func (EventRecord) TableName() string {
	return "event_log"
}

// BeforeCreate assigns the record id and syncs the derived columns.
func (e *EventRecord) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.SyncDerived()
	return nil
}

// SyncDerived refreshes DocumentID and ElapsedDays from the detail bag.
func (e *EventRecord) SyncDerived() {
	if e.Detail == nil {
		return
	}
	if id, ok := e.Detail[DetailDocumentID]; ok {
		e.DocumentID = utils.ToString(id)
	}
	if days, ok := e.Detail[DetailElapsedDays]; ok {
		v := utils.ToInt64(days)
		e.ElapsedDays = &v
	} else {
		e.ElapsedDays = nil
	}
}

// StripTracking removes the retention tracking fields from the detail bag.
// Modified and Deleted records are point-in-time change records, not
// tracking checkpoints.
func (e *EventRecord) StripTracking() {
	if e.Detail != nil {
		delete(e.Detail, DetailExpiration)
		delete(e.Detail, DetailElapsedDays)
	}
	e.ElapsedDays = nil
}

// SyncRun is the persisted summary of one reconciliation pass. Rows are
// created once per pass and never mutated.
type SyncRun struct {
	ID              uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ExecutedAt      time.Time `gorm:"column:executed_at;not null" json:"executed_at"`
	ActiveDocuments int       `gorm:"column:active_documents" json:"active_documents"`
	NewEvents       int       `gorm:"column:new_events" json:"new_events"`
}

// TableName overrides the table name.
func (SyncRun) TableName() string {
	return "sync_history"
}
