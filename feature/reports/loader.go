package reports

import (
	"report-service/core/contentrepo"
	"report-service/core/storage"
	"report-service/feature/events"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates a new Reports feature. A nil storage client disables
// archival but keeps report rendering available.
func NewFeature(repo contentrepo.Searcher, client storage.Client, bucket string, cfg Config, mapper *events.Mapper, logger *zap.Logger) *Feature {
	var archiver *Archiver
	if client != nil && cfg.ArchiveEnabled {
		archiver = NewArchiver(client, bucket, cfg.ArchivePrefix)
	}
	svc := NewService(repo, mapper, archiver, logger)
	h := NewHandler(svc)
	return &Feature{service: svc, handler: h}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "reports"
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

// Service exposes report building for the CLI.
func (f *Feature) Service() *Service {
	return f.service
}
