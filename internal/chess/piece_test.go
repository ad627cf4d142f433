package chess

import (
	"errors"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func sortedSquares(cs []Coordinate) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.String())
	}
	sort.Strings(out)
	return out
}

func TestDestinations(t *testing.T) {
	tests := []struct {
		name   string
		pieces []string
		from   string
		want   []string
	}{
		{
			name:   "knight in corner",
			pieces: []string{"wNa1"},
			from:   "a1",
			want:   []string{"b3", "c2"},
		},
		{
			name:   "knight jumps over pieces",
			pieces: []string{"wNb1", "wPa2", "wPb2", "wPc2", "wPd2"},
			from:   "b1",
			want:   []string{"a3", "c3"},
		},
		{
			name:   "rook blocked by ally and enemy",
			pieces: []string{"wRa1", "wPa3", "bNc1"},
			from:   "a1",
			want:   []string{"a2", "b1", "c1"},
		},
		{
			name:   "bishop diagonals",
			pieces: []string{"wBc1", "bPe3"},
			from:   "c1",
			want:   []string{"a3", "b2", "d2", "e3"},
		},
		{
			name:   "queen boxed in by allies",
			pieces: []string{"wQa1", "wPa2", "wPb2", "wNb1"},
			from:   "a1",
			want:   nil,
		},
		{
			name:   "king single steps",
			pieces: []string{"wKe1", "wPd2", "bPf2"},
			from:   "e1",
			want:   []string{"d1", "e2", "f1", "f2"},
		},
		{
			name:   "white pawn from start rank",
			pieces: []string{"wPe2"},
			from:   "e2",
			want:   []string{"e3", "e4"},
		},
		{
			name:   "pawn double step needs both squares empty",
			pieces: []string{"wPe2", "bNe4"},
			from:   "e2",
			want:   []string{"e3"},
		},
		{
			name:   "pawn blocked in front",
			pieces: []string{"wPe2", "bNe3"},
			from:   "e2",
			want:   nil,
		},
		{
			name:   "pawn captures diagonally only onto enemies",
			pieces: []string{"wPe4", "bPd5", "wPf5"},
			from:   "e4",
			want:   []string{"d5", "e5"},
		},
		{
			name:   "black pawn moves down",
			pieces: []string{"bPd7", "wBc6"},
			from:   "d7",
			want:   []string{"c6", "d5", "d6"},
		},
		{
			name:   "pawn off start rank moves one",
			pieces: []string{"bPd6"},
			from:   "d6",
			want:   []string{"d5"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, b := place(t, tt.pieces...)
			var p *Piece
			for _, q := range append(append([]*Piece{}, w...), b...) {
				if q.Pos == sq(tt.from) {
					p = q
				}
			}
			allies, enemies := w, b
			if p.Color == Black {
				allies, enemies = b, w
			}
			got := sortedSquares(p.Destinations(BoardLength, allies, enemies))
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Destinations(%s) mismatch (-want +got):\n%s", tt.from, diff)
			}
		})
	}
}

func TestQueenOnOpenBoard(t *testing.T) {
	q := NewPiece(1, Queen, White, sq("d4"))
	if got := len(q.Destinations(BoardLength, nil, nil)); got != 27 {
		t.Fatalf("queen on d4 has %d destinations, want 27", got)
	}
}

func TestDestinationsStayOnBoard(t *testing.T) {
	kinds := []Kind{Pawn, Rook, Knight, Bishop, Queen, King}
	for _, k := range kinds {
		for _, c := range []Color{White, Black} {
			for x := 1; x <= BoardLength; x++ {
				for y := 1; y <= BoardLength; y++ {
					p := NewPiece(1, k, c, Coord(x, y))
					for _, d := range p.Destinations(BoardLength, nil, nil) {
						if !d.Within(BoardLength) {
							t.Fatalf("%s produced off-board destination %v", p, d)
						}
					}
				}
			}
		}
	}
}

func TestMoveCapturesExactlyOneEnemy(t *testing.T) {
	w, b := place(t, "wRa1", "wPa2", "bNc1", "bNd1")
	rook := w[0]
	captured, err := rook.Move(sq("c1"), BoardLength, w, b)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if captured != b[0] || captured.Alive {
		t.Fatalf("expected knight on c1 captured, got %v", captured)
	}
	if !b[1].Alive || !w[1].Alive {
		t.Fatalf("only the target piece may die")
	}
	if rook.Pos != sq("c1") {
		t.Fatalf("rook at %s, want c1", rook.Pos)
	}
}

func TestMoveRejectsIllegalTargets(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"own piece", "a2"},
		{"not on movement line", "b2"},
		{"blocked path", "a5"},
		{"off board", "a0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, b := place(t, "wRa1", "wPa2", "bNc1")
			rook := w[0]
			target := sq(tt.target)
			if tt.target == "a0" {
				target = Coord(1, 0)
			}
			_, err := rook.Move(target, BoardLength, w, b)
			if !errors.Is(err, ErrIllegalMovement) {
				t.Fatalf("err = %v, want ErrIllegalMovement", err)
			}
			if rook.Pos != sq("a1") || !w[1].Alive || !b[0].Alive {
				t.Fatalf("rejected move mutated state")
			}
		})
	}
}

func TestIsPromoted(t *testing.T) {
	w, b := place(t, "wPc8", "wPc7", "bPa1", "bPa2", "wQh8")
	tests := []struct {
		p    *Piece
		want bool
	}{
		{w[0], true},
		{w[1], false},
		{b[0], true},
		{b[1], false},
		{w[2], false},
	}
	for _, tt := range tests {
		if got := tt.p.IsPromoted(BoardLength); got != tt.want {
			t.Errorf("IsPromoted(%s) = %v, want %v", tt.p, got, tt.want)
		}
	}
	w[0].Alive = false
	if w[0].IsPromoted(BoardLength) {
		t.Errorf("dead pawn must not be promotable")
	}
}

func TestKindSymbols(t *testing.T) {
	for _, s := range []byte("RNBQKP") {
		k, ok := ParseKind(s)
		if !ok || k.Symbol() != s {
			t.Errorf("ParseKind(%c) = %v,%v", s, k, ok)
		}
	}
	if k, ok := ParseKind('q'); !ok || k != Queen {
		t.Errorf("lower case symbol not accepted")
	}
	if _, ok := ParseKind('X'); ok {
		t.Errorf("unexpected kind for X")
	}
}
