package events

import (
	"errors"
	"time"

	"report-service/feature/events/models"

	"gorm.io/gorm"
)

// EventStore is the append-only audit log. All mutation is insert-only; no
// stored record is ever updated or removed.
type EventStore interface {
	// ExistsByDedupKey reports whether a record with the exact
	// (actor, timestamp, kind) triplet is already stored.
	ExistsByDedupKey(actor string, timestamp time.Time, kind string) (bool, error)
	// LatestByDocument returns the most recent record for a document,
	// or nil when the document has no history.
	LatestByDocument(documentID string) (*models.EventRecord, error)
	// LatestWithTracking returns the most recent tracking checkpoint for a
	// document (a record carrying an elapsed-days count), or nil.
	LatestWithTracking(documentID string) (*models.EventRecord, error)
	// Save appends a single record.
	Save(rec *models.EventRecord) error
	// SaveBatch appends a batch of records.
	SaveBatch(records []models.EventRecord) error
	// KnownDocumentIDs returns the distinct document ids ever logged,
	// across all scopes.
	KnownDocumentIDs() ([]string, error)
	// CountAll returns the total number of stored records.
	CountAll() (int64, error)
	// FindAll returns every stored record. Used by aggregate metrics only.
	FindAll() ([]models.EventRecord, error)
	// FindByScope returns every record for a scope, newest first.
	FindByScope(scope string) ([]models.EventRecord, error)
}

// RunStore persists one summary row per reconciliation pass.
type RunStore interface {
	Record(run *models.SyncRun) error
	Recent(limit int) ([]models.SyncRun, error)
}

// Migrate creates or updates the audit log tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.EventRecord{}, &models.SyncRun{})
}

// GormEventStore is the gorm-backed EventStore.
type GormEventStore struct {
	db *gorm.DB
}

// NewEventStore creates an event store on the given connection.
func NewEventStore(db *gorm.DB) *GormEventStore {
	return &GormEventStore{db: db}
}

func (s *GormEventStore) ExistsByDedupKey(actor string, timestamp time.Time, kind string) (bool, error) {
	var count int64
	err := s.db.Model(&models.EventRecord{}).
		Where("actor = ? AND timestamp = ? AND kind = ?", actor, timestamp, kind).
		Count(&count).Error
	return count > 0, err
}

func (s *GormEventStore) LatestByDocument(documentID string) (*models.EventRecord, error) {
	var rec models.EventRecord
	err := s.db.Where("document_id = ?", documentID).
		Order("timestamp DESC").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *GormEventStore) LatestWithTracking(documentID string) (*models.EventRecord, error) {
	var rec models.EventRecord
	err := s.db.Where("document_id = ? AND elapsed_days IS NOT NULL", documentID).
		Order("timestamp DESC").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *GormEventStore) Save(rec *models.EventRecord) error {
	return s.db.Create(rec).Error
}

func (s *GormEventStore) SaveBatch(records []models.EventRecord) error {
	if len(records) == 0 {
		return nil
	}
	return s.db.Create(&records).Error
}

func (s *GormEventStore) KnownDocumentIDs() ([]string, error) {
	var ids []string
	err := s.db.Model(&models.EventRecord{}).
		Distinct("document_id").
		Where("document_id <> ?", "").
		Pluck("document_id", &ids).Error
	return ids, err
}

func (s *GormEventStore) CountAll() (int64, error) {
	var count int64
	err := s.db.Model(&models.EventRecord{}).Count(&count).Error
	return count, err
}

func (s *GormEventStore) FindAll() ([]models.EventRecord, error) {
	var records []models.EventRecord
	err := s.db.Find(&records).Error
	return records, err
}

func (s *GormEventStore) FindByScope(scope string) ([]models.EventRecord, error) {
	var records []models.EventRecord
	err := s.db.Where("scope = ?", scope).
		Order("timestamp DESC").
		Find(&records).Error
	return records, err
}

// GormRunStore is the gorm-backed RunStore.
type GormRunStore struct {
	db *gorm.DB
}

// NewRunStore creates a sync history store on the given connection.
func NewRunStore(db *gorm.DB) *GormRunStore {
	return &GormRunStore{db: db}
}

func (s *GormRunStore) Record(run *models.SyncRun) error {
	return s.db.Create(run).Error
}

func (s *GormRunStore) Recent(limit int) ([]models.SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []models.SyncRun
	err := s.db.Order("executed_at DESC").Limit(limit).Find(&runs).Error
	return runs, err
}
