package service

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/periferia-labs/perxia-be/types"
)

// WebSocketService serves the streaming chat endpoint: each chat message
// triggers retrieval context assembly and a streamed generator response,
// delivered as delta frames followed by the full message.
type WebSocketService struct {
	ai        AIService
	retrieval *RetrievalService
	useHub    bool
	upgrader  websocket.Upgrader
}

func NewWebSocketService(ai AIService, retrieval *RetrievalService, useHub bool) *WebSocketService {
	return &WebSocketService{
		ai:        ai,
		retrieval: retrieval,
		useHub:    useHub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins (adjust for production)
			},
		},
	}
}

func (s *WebSocketService) HandleChat(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(512 * 1024)
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	for {
		_, p, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		var req types.WebsocketRequest
		if err := json.Unmarshal(p, &req); err != nil {
			log.Println("Unmarshal error:", err)
			s.writeError(conn, "invalid message")
			continue
		}

		switch req.Type {
		case types.TypeWebsocketChat:
			payloadBytes, err := json.Marshal(req.Payload)
			if err != nil {
				log.Println("Marshal error:", err)
				s.writeError(conn, "invalid payload")
				continue
			}
			var payload types.WebSocketChatPayload
			if err := json.Unmarshal(payloadBytes, &payload); err != nil {
				log.Println("Unmarshal error:", err)
				s.writeError(conn, "invalid chat payload")
				continue
			}
			if len(payload.Messages) == 0 {
				s.writeError(conn, "empty message list")
				continue
			}
			s.handleChatMessage(ctx, conn, payload.Messages)

		case types.TypeWebsocketPing:
			if err := conn.WriteJSON(types.WebSocketResponse{Type: types.TypeWebsocketPong}); err != nil {
				log.Println("Write error:", err)
			}

		default:
			log.Println("Invalid message type:", req.Type)
		}
	}
}

// handleChatMessage assembles the retrieval context for the latest user
// message and streams the generated answer back as delta frames.
func (s *WebSocketService) handleChatMessage(ctx context.Context, conn *websocket.Conn, messages []types.Message) {
	query := messages[len(messages)-1].Content
	retrieved := s.retrieval.BuildContext(ctx, query, types.ContextOptions{UseHub: s.useHub})

	full := ""
	err := s.ai.ChatStream(ctx, retrieved.RenderedText, messages, func(delta string) {
		if delta == "" {
			return
		}
		full += delta
		if err := conn.WriteJSON(types.WebSocketResponse{
			Type:    types.TypeWebsocketDelta,
			Payload: types.WebSocketChatResponse{Message: delta},
		}); err != nil {
			log.Println("Write error:", err)
		}
	})
	if err != nil {
		log.Println("AI error:", err)
		s.writeError(conn, "error generating response")
		return
	}

	if err := conn.WriteJSON(types.WebSocketResponse{
		Type:    types.TypeWebsocketChat,
		Payload: types.WebSocketChatResponse{Message: full},
	}); err != nil {
		log.Println("Write error:", err)
	}
}

func (s *WebSocketService) writeError(conn *websocket.Conn, message string) {
	if err := conn.WriteJSON(types.WebSocketResponse{
		Type:    types.TypeWebsocketError,
		Payload: types.WebSocketChatResponse{Message: message},
	}); err != nil {
		log.Println("Write error:", err)
	}
}
