package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/periferia-labs/perxia-be/database"
	"github.com/periferia-labs/perxia-be/service"
	"github.com/periferia-labs/perxia-be/types"
)

type DocumentHandler struct {
	fileService *service.FileService
	index       database.ChunkIndex
	embedder    *service.EmbeddingService
}

func NewDocumentHandler(fileService *service.FileService, index database.ChunkIndex, embedder *service.EmbeddingService) *DocumentHandler {
	return &DocumentHandler{
		fileService: fileService,
		index:       index,
		embedder:    embedder,
	}
}

// Upload ingests a multipart file. Optional form field "metadata" carries
// uploader and tags as JSON.
func (h *DocumentHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Invalid file",
		})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Failed to read file",
		})
		return
	}

	req := types.UploadRequest{Filename: header.Filename}
	if metadata := c.Request.FormValue("metadata"); metadata != "" {
		if err := json.Unmarshal([]byte(metadata), &req); err != nil {
			c.JSON(http.StatusBadRequest, types.DataResponse{
				Status:  "error",
				Message: "Invalid metadata",
			})
			return
		}
		if req.Filename == "" {
			req.Filename = header.Filename
		}
	}

	result, err := h.fileService.UploadDocument(c.Request.Context(), req, data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   result,
	})
}

func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.fileService.ListDocuments(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   docs,
	})
}

func (h *DocumentHandler) Stats(c *gin.Context) {
	stats, err := h.fileService.Stats(c.Request.Context())
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

func (h *DocumentHandler) Delete(c *gin.Context) {
	documentID := c.Param("documentId")
	if documentID == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "documentId is required",
		})
		return
	}

	deleted, err := h.fileService.DeleteDocument(c.Request.Context(), documentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   gin.H{"document_id": documentID, "chunks_deleted": deleted},
	})
}

// Search queries the chunk index directly. The caller picks the mode; hybrid
// is rejected, not downgraded, when the embedding service is unavailable.
func (h *DocumentHandler) Search(c *gin.Context) {
	var req types.SearchDocumentsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Query == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "query is required",
		})
		return
	}

	opts := types.SearchOptions{
		Top:  req.Top,
		Mode: req.Mode,
	}
	if opts.Mode == "" {
		opts.Mode = types.SearchModeText
	}
	if opts.Mode == types.SearchModeHybrid {
		if !h.embedder.IsAvailable() {
			c.JSON(http.StatusBadRequest, types.DataResponse{
				Status:  "error",
				Message: "hybrid search requires the embedding service",
			})
			return
		}
		vector, err := h.embedder.Embed(c.Request.Context(), req.Query)
		if err != nil {
			c.JSON(http.StatusInternalServerError, types.DataResponse{
				Status:  "error",
				Message: err.Error(),
			})
			return
		}
		opts.Vector = vector
	}

	results, err := h.index.Search(c.Request.Context(), req.Query, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data: types.SearchDocumentsResponse{
			Query:   req.Query,
			Mode:    opts.Mode,
			Count:   len(results),
			Results: results,
		},
	})
}
