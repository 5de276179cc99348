package status

import (
	"cmdb-sync/core/archive"
	"cmdb-sync/core/history"
	"cmdb-sync/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the status feature. Store and reports may be nil
// when history or archiving is not configured.
func NewFeature(runner *reconcile.Runner, store *history.Store, reports *archive.Store, logger *zap.Logger) *Feature {
	svc := NewService(runner, store, reports, logger)
	h := NewHandler(svc)
	return &Feature{service: svc, handler: h}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "status"
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
