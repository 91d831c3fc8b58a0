package types

type ChatRequest struct {
	ChatId   string    `json:"chat_id"`
	Messages []Message `json:"messages"`
	UseRAG   *bool     `json:"use_rag,omitempty"`
}

type ChatResponse struct {
	ChatId  string       `json:"chat_id"`
	Message *Message     `json:"message"`
	Sources []RankedItem `json:"sources,omitempty"`
}
