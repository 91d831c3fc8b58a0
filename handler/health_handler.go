package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/periferia-labs/perxia-be/types"
)

// HealthHandler reports per-dependency availability so a degraded deployment
// is visible at a glance.
type HealthHandler struct {
	embedder  availabilityChecker
	generator availabilityChecker
	hub       availabilityChecker
	hasIndex  bool
	hasMongo  bool
}

type availabilityChecker interface {
	IsAvailable() bool
}

func NewHealthHandler(embedder, generator, hub availabilityChecker, hasIndex, hasMongo bool) *HealthHandler {
	return &HealthHandler{
		embedder:  embedder,
		generator: generator,
		hub:       hub,
		hasIndex:  hasIndex,
		hasMongo:  hasMongo,
	}
}

func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data: types.HealthResponse{
			Embeddings:    h.embedder.IsAvailable(),
			DocumentIndex: h.hasIndex,
			HubIndex:      h.hub.IsAvailable(),
			Generator:     h.generator.IsAvailable(),
			Metadata:      h.hasMongo,
		},
	})
}
