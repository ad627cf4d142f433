package chess

// IsDeadPosition reports the insufficient-material draws the match
// recognises: K vs K, K vs K+B or K+N, and K+B vs K+B with both bishops on
// the same shade. Only live pieces count.
func IsDeadPosition(white, black []*Piece) bool {
	w, b := alive(white), alive(black)
	switch {
	case onlyKing(w) && onlyKing(b):
		return true
	case onlyKing(w) && kingAndMinor(b):
		return true
	case onlyKing(b) && kingAndMinor(w):
		return true
	case kingAnd(w, Bishop) && kingAnd(b, Bishop):
		return bishopOf(w).Pos.Shade() == bishopOf(b).Pos.Shade()
	}
	return false
}

func alive(pieces []*Piece) []*Piece {
	out := make([]*Piece, 0, len(pieces))
	for _, p := range pieces {
		if p != nil && p.Alive {
			out = append(out, p)
		}
	}
	return out
}

func onlyKing(pieces []*Piece) bool {
	return len(pieces) == 1 && pieces[0].Kind == King
}

func kingAndMinor(pieces []*Piece) bool {
	return kingAnd(pieces, Bishop) || kingAnd(pieces, Knight)
}

func kingAnd(pieces []*Piece, kind Kind) bool {
	if len(pieces) != 2 {
		return false
	}
	a, b := pieces[0].Kind, pieces[1].Kind
	return (a == King && b == kind) || (a == kind && b == King)
}

func bishopOf(pieces []*Piece) *Piece {
	for _, p := range pieces {
		if p.Kind == Bishop {
			return p
		}
	}
	return nil
}
