// Package session keeps one conversation transcript per client session.
//
// Every transcript starts with the configured system prompt. Stores do not
// evict; entries live as long as the backend keeps them.
package session

import (
	"context"
	"fmt"

	"github.com/FazinHan/lmstudio-webapp/internal/llm"
)

type Transcript []llm.Message

type Store interface {
	// GetOrInit returns a copy of the transcript for id, seeding it with the
	// system prompt when the session is new.
	GetOrInit(ctx context.Context, id string) (Transcript, error)
	// Append adds msg to the end of the transcript for id.
	Append(ctx context.Context, id string, msg llm.Message) error
	Close() error
}

type Kind string

const (
	KindMemory Kind = "memory"
	KindSQLite Kind = "sqlite"
)

var Kinds = []Kind{KindMemory, KindSQLite}

type Options struct {
	SystemPrompt string
	// Path is the sqlite database file, ":memory:" keeps it in process.
	Path string
}

func Open(kind Kind, opts Options) (Store, error) {
	switch kind {
	case KindMemory:
		return NewMemoryStore(opts.SystemPrompt), nil
	case KindSQLite:
		return OpenSQLiteStore(opts.Path, opts.SystemPrompt)
	default:
		return nil, fmt.Errorf("%s: invalid session store", kind)
	}
}
