package pvpchess

import (
	"context"
	"sync"

	"github.com/park285/cheese-match/internal/chess"
	"github.com/park285/cheese-match/internal/domain"
)

// memrepo keeps match records in process. It is used when no DATABASE_URL
// is configured, and in tests.
type memrepo struct {
	mu sync.RWMutex

	matches map[string]domain.MatchRecord
	pieces  map[string][]domain.PieceRecord
}

func NewMemoryRepository() Repository {
	return &memrepo{
		matches: make(map[string]domain.MatchRecord),
		pieces:  make(map[string][]domain.PieceRecord),
	}
}

func (r *memrepo) SaveMatch(ctx context.Context, m *chess.Match) error {
	if m == nil {
		return nil
	}
	rec, pieces := Records(m)

	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.matches[rec.ID]; ok {
		rec.CreatedAt = prev.CreatedAt
	}
	r.matches[rec.ID] = rec
	r.pieces[rec.ID] = pieces
	return nil
}

func (r *memrepo) LoadMatch(ctx context.Context, id string) (*chess.Match, error) {
	r.mu.RLock()
	rec, ok := r.matches[id]
	pieces := append([]domain.PieceRecord(nil), r.pieces[id]...)
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return FromRecords(rec, pieces)
}

func (r *memrepo) LoadPieces(ctx context.Context, matchID string) ([]domain.PieceRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.PieceRecord(nil), r.pieces[matchID]...), nil
}
