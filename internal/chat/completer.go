package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/FazinHan/lmstudio-webapp/internal/llm"
	"github.com/sirupsen/logrus"
)

const (
	errorReplyPrefix  = "Error: "
	connectErrorReply = errorReplyPrefix + "Could not connect to the inference server. Details: %v"
	// InvalidResponseReply is the reply recorded when the backend answered
	// without a usable first choice.
	InvalidResponseReply = errorReplyPrefix + "Received an invalid response from the model."
)

// IsErrorReply reports whether reply stands in for a failed backend call.
func IsErrorReply(reply string) bool {
	return strings.HasPrefix(reply, errorReplyPrefix)
}

// Completer turns a transcript into the assistant's next reply. Backend
// failures come back as reply text, never as errors.
type Completer struct {
	client llm.LLMClient
}

func NewCompleter(client llm.LLMClient) *Completer {
	return &Completer{client: client}
}

func (c *Completer) Complete(ctx context.Context, transcript []llm.Message) string {
	res, err := c.client.Send(ctx, transcript)
	if err != nil {
		if errors.Is(err, llm.ErrInvalidResponse) {
			logrus.WithError(err).Warn("Inference server returned an unusable response")
			return InvalidResponseReply
		}
		logrus.WithError(err).Warn("Inference server request failed")
		return fmt.Sprintf(connectErrorReply, err)
	}

	logrus.WithFields(logrus.Fields{
		"input_tokens":  res.Usage.InputTokens,
		"output_tokens": res.Usage.OutputTokens,
	}).Debug("Completion received")

	return strings.TrimSpace(res.Content)
}
