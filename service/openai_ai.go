package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/sashabaranov/go-openai"
	"github.com/periferia-labs/perxia-be/types"
)

// OpenAIService generates answers through an OpenAI-compatible chat
// deployment.
type OpenAIService struct {
	client *openai.Client
	model  string
}

// NewOpenAIService creates the generator. An empty API key yields an
// unavailable service rather than an error, so the server can run without a
// generator configured.
func NewOpenAIService(baseURL, apiKey, model string) *OpenAIService {
	s := &OpenAIService{model: model}
	if apiKey == "" {
		log.Println("OpenAI chat service not configured")
		return s
	}
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	s.client = openai.NewClientWithConfig(config)
	return s
}

func (s *OpenAIService) IsAvailable() bool {
	return s.client != nil
}

func (s *OpenAIService) Chat(ctx context.Context, ragContext string, messages []types.Message) (string, error) {
	if s.client == nil {
		return "", ErrAIUnavailable
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    s.model,
		Messages: toOpenAIMessages(ragContext, messages),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response generated")
	}
	return resp.Choices[0].Message.Content, nil
}

func (s *OpenAIService) ChatStream(ctx context.Context, ragContext string, messages []types.Message, handler types.StreamHandler) error {
	if s.client == nil {
		return ErrAIUnavailable
	}

	stream, err := s.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    s.model,
		Messages: toOpenAIMessages(ragContext, messages),
	})
	if err != nil {
		return fmt.Errorf("chat stream failed: %w", err)
	}
	defer stream.Close()

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("error receiving from stream: %w", err)
		}
		if len(resp.Choices) > 0 {
			handler(resp.Choices[0].Delta.Content)
		}
	}
}

// toOpenAIMessages prepends the system prompt (with retrieval context) and
// maps the chat history, preserving user/assistant roles.
func toOpenAIMessages(ragContext string, messages []types.Message) []openai.ChatCompletionMessage {
	openaiMessages := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	openaiMessages = append(openaiMessages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: buildSystemPrompt(ragContext),
	})
	for _, msg := range messages {
		role := openai.ChatMessageRoleUser
		if msg.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		openaiMessages = append(openaiMessages, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}
	return openaiMessages
}
