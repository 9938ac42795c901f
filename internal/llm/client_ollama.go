package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"
)

type ollamaChat interface {
	Chat(ctx context.Context, req *api.ChatRequest, fn api.ChatResponseFunc) error
}

type llmClientOllama struct {
	client      ollamaChat
	model       string
	temperature float64
}
type LlmClientOllama LLMClient

func newOllamaClient(localEndpoint url.URL, opts LLMClientOptions) LlmClientOllama {
	return &llmClientOllama{
		client:      api.NewClient(&localEndpoint, &http.Client{Timeout: opts.Timeout}),
		model:       opts.Model,
		temperature: opts.Temperature,
	}
}

func (ai *llmClientOllama) Send(ctx context.Context, messages []Message) (*LLMSendResponse, error) {
	stream := false
	var (
		content  string
		usage    LLMTokenUsage
		received bool
	)

	err := ai.client.Chat(ctx, &api.ChatRequest{
		Model:    ai.model,
		Messages: ai.toOllamaMessages(messages),
		Stream:   &stream,
		Options:  map[string]any{"temperature": ai.temperature},
	}, func(resp api.ChatResponse) error {
		received = true
		content += resp.Message.Content
		if resp.Done {
			usage = LLMTokenUsage{
				InputTokens:  int64(resp.PromptEvalCount),
				OutputTokens: int64(resp.EvalCount),
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama: %w", err)
	}

	if !received {
		return nil, ErrInvalidResponse
	}

	return &LLMSendResponse{
		Content: content,
		Usage:   usage,
	}, nil
}

func (ai *llmClientOllama) toOllamaMessages(messages []Message) []api.Message {
	var ollamaMessages []api.Message
	for _, msg := range messages {
		ollamaMessages = append(ollamaMessages, api.Message{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}
	return ollamaMessages
}
