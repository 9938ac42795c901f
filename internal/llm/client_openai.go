package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type openaiCompletions interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

type llmClientOpenAi struct {
	client      openaiCompletions
	model       string
	temperature float64
}
type LLMClientOpenAI LLMClient

func newOpenAIClient(opts LLMClientOptions, extra ...option.RequestOption) LLMClientOpenAI {
	reqOpts := []option.RequestOption{
		option.WithBaseURL(opts.Endpoint),
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if opts.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(opts.Timeout))
	}
	reqOpts = append(reqOpts, extra...)

	client := openai.NewClient(reqOpts...)
	return &llmClientOpenAi{
		client:      &client.Chat.Completions,
		model:       opts.Model,
		temperature: opts.Temperature,
	}
}

func (ai *llmClientOpenAi) toOpenAiMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	var openAiMessages []openai.ChatCompletionMessageParamUnion
	for _, msg := range messages {
		switch msg.Role {
		case User:
			openAiMessages = append(openAiMessages, openai.UserMessage(msg.Content))
		case Assistant:
			openAiMessages = append(openAiMessages, openai.AssistantMessage(msg.Content))
		case System:
			openAiMessages = append(openAiMessages, openai.SystemMessage(msg.Content))
		default:
			openAiMessages = append(openAiMessages, openai.UserMessage(msg.Content))
		}
	}
	return openAiMessages
}

func (ai *llmClientOpenAi) Send(ctx context.Context, messages []Message) (*LLMSendResponse, error) {
	res, err := ai.client.New(
		ctx,
		openai.ChatCompletionNewParams{
			Model:       ai.model,
			Messages:    ai.toOpenAiMessages(messages),
			Temperature: openai.Float(ai.temperature),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}

	// A choice without message.content is as unusable as no choice at all.
	if res == nil || len(res.Choices) == 0 || !res.Choices[0].Message.JSON.Content.Valid() {
		return nil, ErrInvalidResponse
	}

	return &LLMSendResponse{
		Content: res.Choices[0].Message.Content,
		Usage: LLMTokenUsage{
			InputTokens:  res.Usage.PromptTokens,
			OutputTokens: res.Usage.CompletionTokens,
		},
	}, nil
}
