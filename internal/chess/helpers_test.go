package chess

import "testing"

// place builds pieces from compact tokens such as "wKe1" or "bQd8".
func place(t *testing.T, tokens ...string) (white, black []*Piece) {
	t.Helper()
	for i, tok := range tokens {
		if len(tok) != 4 {
			t.Fatalf("bad token %q", tok)
		}
		kind, ok := ParseKind(tok[1])
		if !ok {
			t.Fatalf("bad kind in %q", tok)
		}
		pos := Coord(int(tok[2]-'a')+1, int(tok[3]-'0'))
		switch tok[0] {
		case 'w':
			white = append(white, NewPiece(i+1, kind, White, pos))
		case 'b':
			black = append(black, NewPiece(i+1, kind, Black, pos))
		default:
			t.Fatalf("bad color in %q", tok)
		}
	}
	return white, black
}

// positionMatch returns an in-progress match with white to move.
func positionMatch(t *testing.T, tokens ...string) *Match {
	t.Helper()
	w, b := place(t, tokens...)
	return &Match{
		ID:          "test",
		Status:      StatusInProgress,
		WhiteTurn:   true,
		WhitePlayer: &Player{Name: "alice"},
		BlackPlayer: &Player{Name: "bob"},
		WhitePieces: w,
		BlackPieces: b,
		NextPieceID: len(tokens),
	}
}

func sq(s string) Coordinate {
	return Coord(int(s[0]-'a')+1, int(s[1]-'0'))
}

func mustMove(t *testing.T, m *Match, from, to string) {
	t.Helper()
	p := m.PieceAt(sq(from))
	if p == nil {
		t.Fatalf("no piece on %s", from)
	}
	if _, err := m.Move(p, sq(to)); err != nil {
		t.Fatalf("move %s-%s: %v", from, to, err)
	}
}

func coordSet(cs []Coordinate) map[Coordinate]bool {
	out := make(map[Coordinate]bool, len(cs))
	for _, c := range cs {
		out[c] = true
	}
	return out
}
