package notify

import (
	gosync "sync"

	"github.com/nhle/tasknotify/internal/model"
)

// Catalog maps notification types to display labels. Server-provided
// labels win over the built-in ones.
type Catalog struct {
	mu     gosync.RWMutex
	labels map[model.NotificationType]string
}

// NewCatalog creates a catalog with only built-in labels.
func NewCatalog() *Catalog {
	return &Catalog{labels: make(map[model.NotificationType]string)}
}

// Load replaces the server-provided labels.
func (c *Catalog) Load(types []model.TypeLabel) {
	labels := make(map[model.NotificationType]string, len(types))
	for _, t := range types {
		if t.Label != "" {
			labels[t.Type] = t.Label
		}
	}

	c.mu.Lock()
	c.labels = labels
	c.mu.Unlock()
}

// Label returns the caption for t.
func (c *Catalog) Label(t model.NotificationType) string {
	c.mu.RLock()
	label, ok := c.labels[t]
	c.mu.RUnlock()
	if ok {
		return label
	}
	return t.Label()
}
