package chess

import "testing"

func kingOf(pieces []*Piece) *Piece {
	for _, p := range pieces {
		if p.Kind == King {
			return p
		}
	}
	return nil
}

func TestIsInCheck(t *testing.T) {
	tests := []struct {
		name   string
		pieces []string
		want   bool
	}{
		{"rook on open file", []string{"wKe1", "bRe8", "bKa8"}, true},
		{"rook blocked", []string{"wKe1", "wPe2", "bRe8", "bKa8"}, false},
		{"knight", []string{"wKe1", "bNd3", "bKa8"}, true},
		{"pawn attacks diagonally", []string{"wKe1", "bPd2", "bKa8"}, true},
		{"pawn does not attack forward", []string{"wKe1", "bPe2", "bKa8"}, false},
		{"dead attacker ignored", []string{"wKe1", "bQe5", "bKa8"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, b := place(t, tt.pieces...)
			if tt.name == "dead attacker ignored" {
				b[0].Alive = false
			}
			k := kingOf(w)
			if got := k.IsInCheck(BoardLength, w, b); got != tt.want {
				t.Errorf("IsInCheck = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckmateAndStalemate(t *testing.T) {
	tests := []struct {
		name      string
		pieces    []string
		side      Color
		wantMate  bool
		wantStale bool
	}{
		{
			name:     "back rank mate",
			pieces:   []string{"wKg1", "wPf2", "wPg2", "wPh2", "bRe1", "bKa8"},
			side:     White,
			wantMate: true,
		},
		{
			name:   "back rank check with capture available",
			pieces: []string{"wKg1", "wPf2", "wPg2", "wPh2", "wRc1", "bRe1", "bKa8"},
			side:   White,
		},
		{
			name:   "check that can be blocked",
			pieces: []string{"wKg1", "wPf2", "wPg2", "wPh2", "wBd3", "bRe1", "bKa8"},
			side:   White,
		},
		{
			name:   "king walks out of check",
			pieces: []string{"wKe1", "bRa1", "bKh8"},
			side:   White,
		},
		{
			name:     "smothered mate",
			pieces:   []string{"bKh8", "bRg8", "bPg7", "bPh7", "wNf7", "wKe1"},
			side:     Black,
			wantMate: true,
		},
		{
			name:      "queen stalemate",
			pieces:    []string{"bKa8", "wQb6", "wKe1"},
			side:      Black,
			wantStale: true,
		},
		{
			name:   "blocked pawn but king can move",
			pieces: []string{"bKh8", "bPa5", "wPa4", "wKe1"},
			side:   Black,
		},
		{
			name:      "blocked pawn and boxed king",
			pieces:    []string{"bKh8", "bPa5", "wPa4", "wKf7", "wQg6"},
			side:      Black,
			wantStale: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, b := place(t, tt.pieces...)
			allies, enemies := w, b
			if tt.side == Black {
				allies, enemies = b, w
			}
			k := kingOf(allies)
			before := snapshotPositions(w, b)
			mate := k.IsCheckmate(BoardLength, allies, enemies)
			stale := k.IsStalemate(BoardLength, allies, enemies)
			if mate != tt.wantMate {
				t.Errorf("IsCheckmate = %v, want %v", mate, tt.wantMate)
			}
			if stale != tt.wantStale {
				t.Errorf("IsStalemate = %v, want %v", stale, tt.wantStale)
			}
			if mate && stale {
				t.Errorf("checkmate and stalemate reported together")
			}
			if after := snapshotPositions(w, b); after != before {
				t.Errorf("detection left side effects:\nbefore %s\nafter  %s", before, after)
			}
		})
	}
}

func snapshotPositions(groups ...[]*Piece) string {
	var s string
	for _, g := range groups {
		for _, p := range g {
			s += p.Pos.String()
			if p.Alive {
				s += "+"
			} else {
				s += "-"
			}
		}
	}
	return s
}
