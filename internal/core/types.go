package core

const (
	BotName          = "CareBot"
	BotVersion       = "0.1.0"
	BotRepositoryURL = "https://github.com/carelog/carebot"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is the wire shape sent to and received from a model backend.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Reply is a single completed model generation.
type Reply struct {
	Message Message
	Usage   TokenUsage
	ModelID string
}

type Model struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ContextLength int    `json:"context_length"`
}
