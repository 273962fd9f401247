package events

import (
	"report-service/core/contentrepo"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service    *Service
	handler    *Handler
	reconciler *Reconciler
}

// NewFeature creates a new Events feature.
func NewFeature(repo contentrepo.Searcher, db *gorm.DB, cfg Config, logger *zap.Logger) *Feature {
	store := NewEventStore(db)
	runs := NewRunStore(db)
	mapper := NewMapper(cfg.RetentionDays)
	reconciler := NewReconciler(repo, store, runs, mapper, logger)
	collector := NewCollector(store, runs)
	svc := NewService(repo, mapper, reconciler, collector, store, runs, logger)
	h := NewHandler(svc)
	return &Feature{service: svc, handler: h, reconciler: reconciler}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "events"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}

// Reconciler exposes the reconciliation pass for the scheduler and CLI.
func (f *Feature) Reconciler() *Reconciler {
	return f.reconciler
}

// Store exposes the event store for sibling features.
func (f *Feature) Store() EventStore {
	return f.service.store
}
