package events_test

import (
	"testing"
	"time"

	"report-service/feature/events"
	"report-service/feature/events/models"

	"github.com/stretchr/testify/assert"
)

func TestClassifyMimeType(t *testing.T) {
	cases := map[string]string{
		"application/pdf": "PDF",
		"image/png":       "Images",
		"image/jpeg":      "Images",
		"text/plain":      "Text",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "Word Documents",
		"application/msword": "Word Documents",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       "Spreadsheets",
		"application/vnd.ms-excel":                                                "Spreadsheets",
		"application/vnd.openxmlformats-officedocument.presentationml.presentation": "Presentations",
		"application/zip": "Other",
		"":                "Unknown",
	}
	for mime, want := range cases {
		assert.Equal(t, want, events.ClassifyMimeType(mime), mime)
	}
}

func TestCollectorCollect(t *testing.T) {
	db := setupTestDB(t)
	store := events.NewEventStore(db)
	runs := events.NewRunStore(db)

	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	assert.NoError(t, store.SaveBatch([]models.EventRecord{
		{
			Actor: "a", Timestamp: base, Kind: models.KindAdded,
			Detail: models.DetailBag{
				models.DetailDocumentID: "doc-1",
				models.DetailMimeType:   "application/pdf",
			},
		},
		{
			Actor: "b", Timestamp: base.Add(time.Hour), Kind: models.KindAdded,
			Detail: models.DetailBag{
				models.DetailDocumentID: "doc-2",
				models.DetailMimeType:   "image/png",
			},
		},
		{
			Actor: "c", Timestamp: base.AddDate(0, 0, 1), Kind: models.KindDeleted,
			Detail: models.DetailBag{models.DetailDocumentID: "doc-2"},
		},
	}))
	assert.NoError(t, runs.Record(&models.SyncRun{
		ExecutedAt:      base.AddDate(0, 0, 1),
		ActiveDocuments: 1,
		NewEvents:       1,
	}))

	collector := events.NewCollector(store, runs)
	report, err := collector.Collect()
	assert.NoError(t, err)

	assert.Equal(t, int64(3), report.TotalEvents)
	assert.Equal(t, int64(2), report.EventsByKind[models.KindAdded])
	assert.Equal(t, int64(1), report.EventsByKind[models.KindDeleted])

	assert.Equal(t, 2, report.EventsByDate["2024-01-01"][models.KindAdded])
	assert.Equal(t, 1, report.EventsByDate["2024-01-02"][models.KindDeleted])

	// doc-2 was deleted, only doc-1 counts as active.
	assert.Equal(t, 1, report.ActiveDocuments)
	assert.Equal(t, 1, report.DocumentsByMimeCategory["PDF"])
	assert.NotContains(t, report.DocumentsByMimeCategory, "Images")

	if assert.NotNil(t, report.LastRun) {
		assert.Equal(t, 1, report.LastRun.NewEvents)
	}
}

func TestCollectorEmptyLog(t *testing.T) {
	db := setupTestDB(t)
	collector := events.NewCollector(events.NewEventStore(db), events.NewRunStore(db))

	report, err := collector.Collect()
	assert.NoError(t, err)
	assert.Equal(t, int64(0), report.TotalEvents)
	assert.Equal(t, 0, report.ActiveDocuments)
	assert.Empty(t, report.EventsByKind)
	assert.Nil(t, report.LastRun)
}
