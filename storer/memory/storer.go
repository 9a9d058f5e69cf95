package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/w-h-a/redflag/storer"
)

var errTxDone = errors.New("transaction has already been committed or rolled back")

// Storer keeps everything in process and reports what it holds.
type Storer interface {
	storer.Storer
	Users() int
	Histories() int
}

type memoryStorer struct {
	options  storer.Options
	mtx      sync.RWMutex
	users    map[uuid.UUID]time.Time
	history  map[uuid.UUID]storer.History
	findings map[uuid.UUID][]storer.Finding
	matches  map[uuid.UUID][]storer.Match
	nextId   int64
}

func (m *memoryStorer) Begin(ctx context.Context) (storer.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &memoryTx{storer: m}, nil
}

func (m *memoryStorer) UpsertUser(ctx context.Context, id uuid.UUID) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if _, ok := m.users[id]; !ok {
		m.users[id] = time.Now().UTC()
	}

	return nil
}

func (m *memoryStorer) UserExists(ctx context.Context, id uuid.UUID) (bool, error) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()

	_, ok := m.users[id]
	return ok, nil
}

func (m *memoryStorer) GetHistory(ctx context.Context, id uuid.UUID) (storer.History, error) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()

	h, ok := m.history[id]
	if !ok {
		return storer.History{}, storer.ErrNotFound
	}

	return h, nil
}

func (m *memoryStorer) ListFindings(ctx context.Context, historyId uuid.UUID) ([]storer.Finding, error) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()

	return append([]storer.Finding(nil), m.findings[historyId]...), nil
}

func (m *memoryStorer) ListMatches(ctx context.Context, historyId uuid.UUID) ([]storer.Match, error) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()

	matches := append([]storer.Match(nil), m.matches[historyId]...)

	sort.Slice(matches, func(i, j int) bool { return matches[i].Rank < matches[j].Rank })

	return matches, nil
}

// Users reports how many users exist.
func (m *memoryStorer) Users() int {
	m.mtx.RLock()
	defer m.mtx.RUnlock()

	return len(m.users)
}

// Histories reports how many analysis records exist.
func (m *memoryStorer) Histories() int {
	m.mtx.RLock()
	defer m.mtx.RUnlock()

	return len(m.history)
}

func (m *memoryStorer) apply(tx *memoryTx) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	for _, h := range tx.history {
		if _, ok := m.history[h.Id]; ok {
			return fmt.Errorf("analysis history %s already exists", h.Id)
		}
	}

	for historyId, matches := range tx.matches {
		seen := map[int]bool{}
		for _, match := range append(append([]storer.Match(nil), m.matches[historyId]...), matches...) {
			if seen[match.Rank] {
				return fmt.Errorf("duplicate rank %d for analysis %s", match.Rank, historyId)
			}
			seen[match.Rank] = true
		}
	}

	for _, id := range tx.users {
		if _, ok := m.users[id]; !ok {
			m.users[id] = time.Now().UTC()
		}
	}

	for _, h := range tx.history {
		m.history[h.Id] = h
	}

	for historyId, findings := range tx.findings {
		for _, f := range findings {
			m.nextId++
			f.Id = m.nextId
			m.findings[historyId] = append(m.findings[historyId], f)
		}
	}

	for historyId, matches := range tx.matches {
		m.matches[historyId] = append(m.matches[historyId], matches...)
	}

	return nil
}

type memoryTx struct {
	storer   *memoryStorer
	done     bool
	users    []uuid.UUID
	history  []storer.History
	findings map[uuid.UUID][]storer.Finding
	matches  map[uuid.UUID][]storer.Match
}

func (t *memoryTx) UpsertUser(ctx context.Context, id uuid.UUID) error {
	if t.done {
		return errTxDone
	}
	t.users = append(t.users, id)
	return nil
}

func (t *memoryTx) SaveHistory(ctx context.Context, h storer.History) (storer.History, error) {
	if t.done {
		return storer.History{}, errTxDone
	}

	if !t.knowsUser(h.UserId) {
		return storer.History{}, fmt.Errorf("save analysis history: unknown user %s", h.UserId)
	}

	if h.Id == uuid.Nil {
		h.Id = uuid.New()
	}
	h.CreatedAt = time.Now().UTC()

	t.history = append(t.history, h)

	return h, nil
}

func (t *memoryTx) SaveFindings(ctx context.Context, historyId uuid.UUID, findings []storer.Finding) error {
	if t.done {
		return errTxDone
	}
	if len(findings) == 0 {
		return nil
	}
	if !t.knowsHistory(historyId) {
		return fmt.Errorf("save findings: unknown analysis %s", historyId)
	}

	if t.findings == nil {
		t.findings = map[uuid.UUID][]storer.Finding{}
	}
	for _, f := range findings {
		f.HistoryId = historyId
		t.findings[historyId] = append(t.findings[historyId], f)
	}

	return nil
}

func (t *memoryTx) SaveMatches(ctx context.Context, historyId uuid.UUID, matches []storer.Match) error {
	if t.done {
		return errTxDone
	}
	if len(matches) == 0 {
		return nil
	}
	if !t.knowsHistory(historyId) {
		return fmt.Errorf("save matches: unknown analysis %s", historyId)
	}

	if t.matches == nil {
		t.matches = map[uuid.UUID][]storer.Match{}
	}
	for _, match := range matches {
		match.HistoryId = historyId
		match.Similarity = storer.RoundScore(match.Similarity)
		t.matches[historyId] = append(t.matches[historyId], match)
	}

	return nil
}

func (t *memoryTx) Commit() error {
	if t.done {
		return errTxDone
	}
	t.done = true
	return t.storer.apply(t)
}

func (t *memoryTx) Rollback() error {
	t.done = true
	return nil
}

func (t *memoryTx) knowsUser(id uuid.UUID) bool {
	for _, u := range t.users {
		if u == id {
			return true
		}
	}
	exists, _ := t.storer.UserExists(context.Background(), id)
	return exists
}

func (t *memoryTx) knowsHistory(id uuid.UUID) bool {
	for _, h := range t.history {
		if h.Id == id {
			return true
		}
	}
	_, err := t.storer.GetHistory(context.Background(), id)
	return err == nil
}

func NewStorer(opts ...storer.Option) Storer {
	options := storer.NewOptions(opts...)

	return &memoryStorer{
		options:  options,
		users:    map[uuid.UUID]time.Time{},
		history:  map[uuid.UUID]storer.History{},
		findings: map[uuid.UUID][]storer.Finding{},
		matches:  map[uuid.UUID][]storer.Match{},
	}
}
