package loader

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"go.uber.org/zap"
)

// Feature is a self-contained application module that can register
// its routes on the shared Fiber app.
type Feature interface {
	Name() string
	IsEnabled() bool
	Load(app fiber.Router) error
}

// Manager holds the registry of available features.
type Manager struct {
	features []Feature
}

// NewManager creates an empty feature registry.
func NewManager() *Manager {
	return &Manager{}
}

// Register adds a feature to the registry. Order of registration is
// the order of loading.
func (m *Manager) Register(f Feature) {
	m.features = append(m.features, f)
}

// LoadAll loads every enabled feature. Disabled features are skipped
// with a log line so a missing endpoint can be traced back to config.
func (m *Manager) LoadAll(app fiber.Router) error {
	for _, f := range m.features {
		if !f.IsEnabled() {
			zap.L().Info("Feature disabled, skipping", zap.String("feature", f.Name()))
			continue
		}

		if err := f.Load(app); err != nil {
			return fmt.Errorf("failed to load feature %s: %w", f.Name(), err)
		}

		zap.L().Info("Feature loaded", zap.String("feature", f.Name()))
	}

	return nil
}
