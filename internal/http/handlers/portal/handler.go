package portal

import "github.com/atelier-next/internal/provider"

// Handler serves the staff portal API (sales and warehouse side).
type Handler struct {
	*provider.Container
}

// New builds the portal handler.
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
