package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"github.com/periferia-labs/perxia-be/types"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GeminiService generates answers through the Gemini API. Multiple API keys
// rotate on failure to ride out per-key quota limits.
type GeminiService struct {
	apiKeys    []string
	currentKey int
	modelName  string
	client     *genai.Client
	model      *genai.GenerativeModel
	mu         sync.Mutex
}

func NewGeminiService(apiKeys []string, modelName string) (*GeminiService, error) {
	if len(apiKeys) == 0 {
		return nil, errors.New("no API keys provided")
	}

	s := &GeminiService{
		apiKeys:   apiKeys,
		modelName: modelName,
	}
	if err := s.initClient(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *GeminiService) IsAvailable() bool {
	return s.client != nil
}

func (s *GeminiService) initClient() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(s.apiKeys[s.currentKey]))
	if err != nil {
		return err
	}
	s.client = client
	s.model = client.GenerativeModel(s.modelName)
	return nil
}

func (s *GeminiService) rotateAPIKey() error {
	s.mu.Lock()
	s.currentKey = (s.currentKey + 1) % len(s.apiKeys)
	if err := s.client.Close(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()
	return s.initClient()
}

// session builds a chat session carrying the system prompt, retrieval
// context and all history except the final user message, which is sent as
// the prompt.
func (s *GeminiService) session(ragContext string, messages []types.Message) (*genai.ChatSession, string) {
	s.mu.Lock()
	model := s.client.GenerativeModel(s.modelName)
	s.mu.Unlock()

	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(buildSystemPrompt(ragContext))},
	}

	prompt := ""
	history := messages
	if len(messages) > 0 {
		prompt = messages[len(messages)-1].Content
		history = messages[:len(messages)-1]
	}

	chat := model.StartChat()
	for _, msg := range history {
		role := "user"
		if msg.Role == "assistant" {
			role = "model"
		}
		chat.History = append(chat.History, &genai.Content{
			Parts: []genai.Part{genai.Text(msg.Content)},
			Role:  role,
		})
	}
	return chat, prompt
}

func (s *GeminiService) Chat(ctx context.Context, ragContext string, messages []types.Message) (string, error) {
	if s.client == nil {
		return "", ErrAIUnavailable
	}

	chat, prompt := s.session(ragContext, messages)
	resp, err := chat.SendMessage(ctx, genai.Text(prompt))
	if err != nil {
		// One retry on a rotated key.
		if err := s.rotateAPIKey(); err != nil {
			return "", err
		}
		chat, prompt = s.session(ragContext, messages)
		resp, err = chat.SendMessage(ctx, genai.Text(prompt))
		if err != nil {
			return "", fmt.Errorf("gemini chat failed: %w", err)
		}
	}

	return collectText(resp), nil
}

func (s *GeminiService) ChatStream(ctx context.Context, ragContext string, messages []types.Message, handler types.StreamHandler) error {
	if s.client == nil {
		return ErrAIUnavailable
	}

	chat, prompt := s.session(ragContext, messages)
	iter := chat.SendMessageStream(ctx, genai.Text(prompt))
	for {
		resp, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("gemini stream failed: %w", err)
		}
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if text, ok := part.(genai.Text); ok {
					handler(string(text))
				}
			}
		}
	}
}

func collectText(resp *genai.GenerateContentResponse) string {
	content := ""
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				content += string(text)
			}
		}
	}
	return content
}
