package llm

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/carelog/carebot/internal/core"
)

type OpenAICompatible struct {
	baseProvider
	authHeader   string
	authPrefix   string
	extraHeaders map[string]string
}

type OpenAICompatibleConfig struct {
	BaseURL      string
	APIKey       string
	Model        string
	Timeout      time.Duration // zero means the default
	AuthHeader   string        // e.g. "Authorization"
	AuthPrefix   string        // e.g. "Bearer "
	ExtraHeaders map[string]string
}

func NewOpenAICompatible(cfg OpenAICompatibleConfig) *OpenAICompatible {
	return &OpenAICompatible{
		baseProvider: newBaseProvider(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.Timeout),
		authHeader:   cfg.AuthHeader,
		authPrefix:   cfg.AuthPrefix,
		extraHeaders: cfg.ExtraHeaders,
	}
}

func (o *OpenAICompatible) headers() map[string]string {
	headers := make(map[string]string)
	if o.authHeader != "" && o.apiKey != "" {
		headers[o.authHeader] = o.authPrefix + o.apiKey
	}
	for k, v := range o.extraHeaders {
		headers[k] = v
	}
	return headers
}

func (o *OpenAICompatible) Generate(ctx context.Context, messages []core.Message) (core.Reply, error) {
	payload := map[string]any{
		"model":    o.model,
		"messages": messages,
	}

	resp, err := o.doRequest(ctx, http.MethodPost, "/v1/chat/completions", payload, o.headers())
	if err != nil {
		return core.Reply{}, err
	}
	defer resp.Body.Close()

	return parseOpenAIResponse(resp, o.model)
}

// GenerateStream yields deltas as they arrive. The final Reply
// carries the full text and, when the backend reports it, the usage
// summary.
func (o *OpenAICompatible) GenerateStream(ctx context.Context, messages []core.Message, onDelta func(string)) (core.Reply, error) {
	payload := map[string]any{
		"model":    o.model,
		"messages": messages,
		"stream":   true,
		"stream_options": map[string]any{
			"include_usage": true,
		},
	}

	resp, err := o.doRequest(ctx, http.MethodPost, "/v1/chat/completions", payload, o.headers())
	if err != nil {
		return core.Reply{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return core.Reply{}, fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
	}

	var (
		content strings.Builder
		usage   core.TokenUsage
	)

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" || data == "[DONE]" {
			continue
		}

		var chunk struct {
			Choices []struct {
				Delta struct {
					Content string `json:"content"`
				} `json:"delta"`
			} `json:"choices"`
			Usage *core.TokenUsage `json:"usage"`
		}
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return core.Reply{}, fmt.Errorf("decode stream chunk: %w", err)
		}

		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			content.WriteString(chunk.Choices[0].Delta.Content)
			if onDelta != nil {
				onDelta(chunk.Choices[0].Delta.Content)
			}
		}
		if chunk.Usage != nil {
			usage = *chunk.Usage
		}
	}
	if err := scanner.Err(); err != nil {
		return core.Reply{}, fmt.Errorf("read stream: %w", err)
	}

	return core.Reply{
		Message: core.Message{Role: core.RoleAssistant, Content: content.String()},
		Usage:   usage,
		ModelID: o.model,
	}, nil
}

func parseOpenAIResponse(resp *http.Response, model string) (core.Reply, error) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return core.Reply{}, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return core.Reply{}, fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
	}

	var result struct {
		Choices []struct {
			Message core.Message `json:"message"`
		} `json:"choices"`
		Usage core.TokenUsage `json:"usage"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return core.Reply{}, fmt.Errorf("decode: %w", err)
	}
	if len(result.Choices) == 0 {
		return core.Reply{}, fmt.Errorf("empty choices: %s", string(data))
	}

	return core.Reply{
		Message: result.Choices[0].Message,
		Usage:   result.Usage,
		ModelID: model,
	}, nil
}
