package pvpchess

import (
	"fmt"
	"sort"
	"time"

	"github.com/park285/cheese-match/internal/chess"
	"github.com/park285/cheese-match/internal/domain"
)

// Records flattens a match into its persisted header and one row per piece,
// captured pieces included.
func Records(m *chess.Match) (domain.MatchRecord, []domain.PieceRecord) {
	rec := domain.MatchRecord{
		ID:          m.ID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   time.Now(),
		Status:      string(m.Status),
		WhiteTurn:   m.WhiteTurn,
		WhitePlayer: nameOf(m.WhitePlayer),
		BlackPlayer: nameOf(m.BlackPlayer),
		Winner:      nameOf(m.Winner),
		NextPieceID: m.NextPieceID,
	}

	pieces := make([]domain.PieceRecord, 0, len(m.WhitePieces)+len(m.BlackPieces))
	for _, roster := range [][]*chess.Piece{m.WhitePieces, m.BlackPieces} {
		for _, p := range roster {
			pieces = append(pieces, domain.PieceRecord{
				MatchID: m.ID,
				PieceID: p.ID,
				X:       p.Pos.X,
				Y:       p.Pos.Y,
				Type:    string(p.Kind.Symbol()),
				Color:   string(p.Color),
				Alive:   p.Alive,
			})
		}
	}
	return rec, pieces
}

// FromRecords rebuilds a match. Rosters are ordered by piece id, which is
// the order pieces were created in.
func FromRecords(rec domain.MatchRecord, pieces []domain.PieceRecord) (*chess.Match, error) {
	m := &chess.Match{
		ID:          rec.ID,
		CreatedAt:   rec.CreatedAt,
		Status:      chess.Status(rec.Status),
		WhiteTurn:   rec.WhiteTurn,
		WhitePlayer: namedPlayer(rec.WhitePlayer),
		BlackPlayer: namedPlayer(rec.BlackPlayer),
		Winner:      namedPlayer(rec.Winner),
		NextPieceID: rec.NextPieceID,
		WhitePieces: []*chess.Piece{},
		BlackPieces: []*chess.Piece{},
	}

	sorted := append([]domain.PieceRecord(nil), pieces...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].PieceID < sorted[j].PieceID })
	for _, r := range sorted {
		if len(r.Type) != 1 {
			return nil, fmt.Errorf("piece %d of match %s: bad type %q", r.PieceID, rec.ID, r.Type)
		}
		kind, ok := chess.ParseKind(r.Type[0])
		if !ok {
			return nil, fmt.Errorf("piece %d of match %s: bad type %q", r.PieceID, rec.ID, r.Type)
		}
		p := chess.NewPiece(r.PieceID, kind, chess.Color(r.Color), chess.Coord(r.X, r.Y))
		p.Alive = r.Alive
		switch p.Color {
		case chess.White:
			m.WhitePieces = append(m.WhitePieces, p)
		case chess.Black:
			m.BlackPieces = append(m.BlackPieces, p)
		default:
			return nil, fmt.Errorf("piece %d of match %s: bad color %q", r.PieceID, rec.ID, r.Color)
		}
	}
	return m, nil
}

func nameOf(p *chess.Player) string {
	if p == nil {
		return ""
	}
	return p.Name
}

func namedPlayer(name string) *chess.Player {
	if name == "" {
		return nil
	}
	return &chess.Player{Name: name}
}
