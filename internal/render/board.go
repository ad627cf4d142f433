package render

import (
	"fmt"

	nchess "github.com/corentings/chess/v2"

	"github.com/park285/cheese-match/internal/chess"
)

var pieceTypes = map[chess.Kind]nchess.PieceType{
	chess.Pawn:   nchess.Pawn,
	chess.Rook:   nchess.Rook,
	chess.Knight: nchess.Knight,
	chess.Bishop: nchess.Bishop,
	chess.Queen:  nchess.Queen,
	chess.King:   nchess.King,
}

// ToBoard projects the live pieces of m onto a board the drawing code
// understands. Dead pieces are skipped.
func ToBoard(m *chess.Match) *nchess.Board {
	squares := make(map[nchess.Square]nchess.Piece, 2*chess.BoardLength*2)
	if m == nil {
		return nchess.NewBoard(squares)
	}
	for _, roster := range [][]*chess.Piece{m.WhitePieces, m.BlackPieces} {
		for _, p := range roster {
			if p == nil || !p.Alive {
				continue
			}
			sq, ok := toSquare(p.Pos)
			if !ok {
				continue
			}
			squares[sq] = nchess.NewPiece(pieceTypes[p.Kind], toColor(p.Color))
		}
	}
	return nchess.NewBoard(squares)
}

// FEN describes the position in Forsyth-Edwards notation. Castling and
// en passant are never available, and move counters are not tracked.
func FEN(m *chess.Match) string {
	side := "w"
	if m != nil && !m.WhiteTurn {
		side = "b"
	}
	return fmt.Sprintf("%s %s - - 0 1", ToBoard(m).String(), side)
}

func toSquare(c chess.Coordinate) (nchess.Square, bool) {
	if !c.Within(chess.BoardLength) {
		return nchess.NoSquare, false
	}
	return nchess.NewSquare(nchess.File(c.X-1), nchess.Rank(c.Y-1)), true
}

func toColor(c chess.Color) nchess.Color {
	if c == chess.White {
		return nchess.White
	}
	return nchess.Black
}
