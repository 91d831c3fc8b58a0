package service

import (
	"context"
	"errors"

	"github.com/periferia-labs/perxia-be/types"
)

// ErrAIUnavailable signals that no generator backend is configured. The chat
// handler maps it to a canned reply; the pipeline itself never fabricates
// answers.
var ErrAIUnavailable = errors.New("ai service not available")

// AIService generates an answer from the retrieval context plus the chat
// history. ragContext is the rendered context block; empty means no relevant
// material was retrieved.
type AIService interface {
	Chat(ctx context.Context, ragContext string, messages []types.Message) (string, error)
	ChatStream(ctx context.Context, ragContext string, messages []types.Message, handler types.StreamHandler) error
	IsAvailable() bool
}

const systemPrompt = `Eres Perxia, un asistente de IA de Periferia IT.

Tu rol es:
- Proporcionar análisis detallados sobre casos de éxito y proyectos de Periferia IT
- Abordar consultas técnicas con precisión

MUY IMPORTANTE sobre casos de éxito y PoCs:
- Cuando se te proporcione información de casos de éxito o PoCs, son proyectos reales realizados por Periferia IT
- Los títulos pueden ser nombres de clientes, empresas o proyectos, no temas generales
- Basa siempre tu análisis en el contenido proporcionado, no en conocimiento general

Directrices:
- Responde siempre en español a menos que se indique lo contrario
- Cuando uses información de casos de éxito, cita el proyecto específico`

// buildSystemPrompt appends the retrieval context to the base prompt.
func buildSystemPrompt(ragContext string) string {
	if ragContext == "" {
		return systemPrompt
	}
	return systemPrompt + "\n\n" + ragContext
}
