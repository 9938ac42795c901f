package llm

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"
)

// ErrInvalidResponse is returned when the backend answered but the payload
// does not carry a first choice to read the reply from.
var ErrInvalidResponse = errors.New("invalid response from model")

type LLMTokenUsage struct {
	InputTokens  int64
	OutputTokens int64
}

type LLMSendResponse struct {
	Content string
	Usage   LLMTokenUsage
}

type LLMClient interface {
	Send(ctx context.Context, messages []Message) (*LLMSendResponse, error)
}

type LLMProvider string

const (
	LLMProviderOpenAI LLMProvider = "openai"
	LLMProviderOllama LLMProvider = "ollama"
)

var LLMProviders = []LLMProvider{LLMProviderOpenAI, LLMProviderOllama}

type LLMClientOptions struct {
	Model       string
	Endpoint    string
	APIKey      string
	Temperature float64
	Timeout     time.Duration
}

func NewClient(provider LLMProvider, opts LLMClientOptions) (LLMClient, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("%s: endpoint is not set", provider)
	}
	endpoint, err := url.Parse(opts.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("%s: endpoint URL is invalid: %v", provider, err)
	}
	if endpoint.Scheme == "" || endpoint.Host == "" {
		return nil, fmt.Errorf("%s: endpoint URL is invalid: %q has no scheme or host", provider, opts.Endpoint)
	}

	switch provider {
	case LLMProviderOpenAI:
		return newOpenAIClient(opts), nil
	case LLMProviderOllama:
		return newOllamaClient(*endpoint, opts), nil
	default:
		return nil, fmt.Errorf("%s: invalid provider", provider)
	}
}
