package storer

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("not found")

// Storer reads analysis results and opens units of work for writing them.
type Storer interface {
	Begin(ctx context.Context) (Tx, error)
	UpsertUser(ctx context.Context, id uuid.UUID) error
	UserExists(ctx context.Context, id uuid.UUID) (bool, error)
	GetHistory(ctx context.Context, id uuid.UUID) (History, error)
	ListFindings(ctx context.Context, historyId uuid.UUID) ([]Finding, error)
	ListMatches(ctx context.Context, historyId uuid.UUID) ([]Match, error)
}

// Tx is a single unit of work. Nothing written through it is visible to
// readers until Commit; Rollback after Commit is a no-op.
type Tx interface {
	UpsertUser(ctx context.Context, id uuid.UUID) error
	SaveHistory(ctx context.Context, h History) (History, error)
	SaveFindings(ctx context.Context, historyId uuid.UUID, findings []Finding) error
	SaveMatches(ctx context.Context, historyId uuid.UUID, matches []Match) error
	Commit() error
	Rollback() error
}
