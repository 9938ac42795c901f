package session

import (
	"context"
	"slices"
	"sync"

	"github.com/FazinHan/lmstudio-webapp/internal/llm"
)

type MemoryStore struct {
	systemPrompt string

	mu          sync.Mutex
	transcripts map[string]Transcript
}

func NewMemoryStore(systemPrompt string) *MemoryStore {
	return &MemoryStore{
		systemPrompt: systemPrompt,
		transcripts:  make(map[string]Transcript),
	}
}

func (s *MemoryStore) GetOrInit(_ context.Context, id string) (Transcript, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.getOrInitLocked(id)), nil
}

func (s *MemoryStore) Append(_ context.Context, id string, msg llm.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transcripts[id] = append(s.getOrInitLocked(id), msg)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) getOrInitLocked(id string) Transcript {
	transcript, ok := s.transcripts[id]
	if !ok {
		transcript = Transcript{llm.NewSystemMessage(s.systemPrompt)}
		s.transcripts[id] = transcript
	}
	return transcript
}
