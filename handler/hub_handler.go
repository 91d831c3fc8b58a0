package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/periferia-labs/perxia-be/service"
	"github.com/periferia-labs/perxia-be/types"
)

type HubHandler struct {
	hubService *service.HubService
}

func NewHubHandler(hubService *service.HubService) *HubHandler {
	return &HubHandler{
		hubService: hubService,
	}
}

// hubUnavailable reports the hub index as not configured.
func (h *HubHandler) hubUnavailable(c *gin.Context) bool {
	if h.hubService.IsAvailable() {
		return false
	}
	c.JSON(http.StatusServiceUnavailable, types.DataResponse{
		Status:  "error",
		Message: "hub index is not configured",
	})
	return true
}

// Items lists or searches curated records. Query params: q (default "*"),
// top.
func (h *HubHandler) Items(c *gin.Context) {
	if h.hubUnavailable(c) {
		return
	}

	query := c.DefaultQuery("q", "*")
	top, _ := strconv.Atoi(c.DefaultQuery("top", "20"))

	items, err := h.hubService.SearchItems(c.Request.Context(), query, top)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   gin.H{"count": len(items), "items": items},
	})
}

func (h *HubHandler) Category(c *gin.Context) {
	if h.hubUnavailable(c) {
		return
	}

	category := c.Param("category")
	items, err := h.hubService.GetByCategory(c.Request.Context(), category)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   gin.H{"category": category, "count": len(items), "items": items},
	})
}

func (h *HubHandler) Tags(c *gin.Context) {
	if h.hubUnavailable(c) {
		return
	}

	tags, err := h.hubService.AvailableTags(c.Request.Context(), c.Query("category"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   gin.H{"tags": tags},
	})
}

func (h *HubHandler) Stats(c *gin.Context) {
	if h.hubUnavailable(c) {
		return
	}

	stats, err := h.hubService.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   stats,
	})
}
