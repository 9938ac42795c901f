package chat

import (
	"context"
	"fmt"

	"github.com/FazinHan/lmstudio-webapp/internal/llm"
	"github.com/FazinHan/lmstudio-webapp/internal/session"
	"github.com/sirupsen/logrus"
)

// Relay runs one chat turn: record the user message, ask the backend with the
// whole transcript, record and return the reply.
type Relay struct {
	store     session.Store
	completer *Completer
}

func NewRelay(store session.Store, completer *Completer) *Relay {
	return &Relay{store: store, completer: completer}
}

func (r *Relay) Start(ctx context.Context, sessionID string) (session.Transcript, error) {
	transcript, err := r.store.GetOrInit(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return transcript, nil
}

// Send runs one turn. Only the backend call follows ctx cancellation; the
// store writes complete after a client disconnect so a turn always records
// both messages.
func (r *Relay) Send(ctx context.Context, sessionID string, text string) (string, error) {
	storeCtx := context.WithoutCancel(ctx)

	if _, err := r.store.GetOrInit(storeCtx, sessionID); err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}
	if err := r.store.Append(storeCtx, sessionID, llm.Message{Role: llm.User, Content: text}); err != nil {
		return "", fmt.Errorf("record user message: %w", err)
	}

	transcript, err := r.store.GetOrInit(storeCtx, sessionID)
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"messages":      len(transcript),
		"approx_tokens": llm.RoughEstimateTranscriptTokens(transcript),
	}).Debug("Sending transcript to inference server")

	reply := r.completer.Complete(ctx, transcript)

	if err := r.store.Append(storeCtx, sessionID, llm.Message{Role: llm.Assistant, Content: reply}); err != nil {
		return "", fmt.Errorf("record assistant reply: %w", err)
	}
	return reply, nil
}
