package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/periferia-labs/perxia-be/service"
	"github.com/periferia-labs/perxia-be/types"
)

// fallbackChatMessage is returned when no generator backend is configured,
// so the endpoint degrades to a visible notice instead of a 500.
const fallbackChatMessage = "El asistente de IA no está disponible en este momento. " +
	"Por favor verifica la configuración del servicio o intenta más tarde."

type ChatHandler struct {
	ai        service.AIService
	retrieval *service.RetrievalService
	useHub    bool
}

func NewChatHandler(ai service.AIService, retrieval *service.RetrievalService, useHub bool) *ChatHandler {
	return &ChatHandler{
		ai:        ai,
		retrieval: retrieval,
		useHub:    useHub,
	}
}

func (h *ChatHandler) HandleChat(c *gin.Context) {
	var req types.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Invalid request body",
		})
		return
	}
	if len(req.Messages) == 0 {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Message list is required",
		})
		return
	}

	useRAG := req.UseRAG == nil || *req.UseRAG

	ragContext := ""
	var sources []types.RankedItem
	if useRAG {
		query := req.Messages[len(req.Messages)-1].Content
		retrieved := h.retrieval.BuildContext(c.Request.Context(), query, types.ContextOptions{UseHub: h.useHub})
		ragContext = retrieved.RenderedText
		sources = retrieved.Items
	}

	answer, err := h.ai.Chat(c.Request.Context(), ragContext, req.Messages)
	if errors.Is(err, service.ErrAIUnavailable) {
		c.JSON(http.StatusOK, types.DataResponse{
			Status: "success",
			Data: types.ChatResponse{
				ChatId:  req.ChatId,
				Message: &types.Message{Role: "assistant", Content: fallbackChatMessage},
			},
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data: types.ChatResponse{
			ChatId:  req.ChatId,
			Message: &types.Message{Role: "assistant", Content: answer},
			Sources: sources,
		},
	})
}
