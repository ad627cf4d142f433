package chess

// IsInCheck reports whether king's square is a candidate destination of any
// live enemy piece. allies are the king's companions (the king itself may be
// included, it is skipped).
func (p *Piece) IsInCheck(boardLength int, allies, enemies []*Piece) bool {
	if p == nil || p.Kind != King || !p.Alive {
		return false
	}
	side := withPiece(allies, p)
	for _, e := range enemies {
		if e == nil || !e.Alive {
			continue
		}
		if e.CanReach(p.Pos, boardLength, enemies, side) {
			return true
		}
	}
	return false
}

// IsCheckmate reports whether the king is in check and no piece of its side
// has a candidate move that gets it out of check.
func (p *Piece) IsCheckmate(boardLength int, allies, enemies []*Piece) bool {
	if !p.IsInCheck(boardLength, allies, enemies) {
		return false
	}
	return !p.hasEscape(boardLength, allies, enemies)
}

// IsStalemate reports whether the king is not in check and its side has no
// candidate move that keeps the king out of check.
func (p *Piece) IsStalemate(boardLength int, allies, enemies []*Piece) bool {
	if p == nil || p.Kind != King || !p.Alive {
		return false
	}
	if p.IsInCheck(boardLength, allies, enemies) {
		return false
	}
	return !p.hasEscape(boardLength, allies, enemies)
}

// hasEscape tries every candidate move of the king's side and reports
// whether one of them leaves the king out of check. Each try is reverted.
func (p *Piece) hasEscape(boardLength int, allies, enemies []*Piece) bool {
	side := withPiece(allies, p)
	for _, mover := range side {
		if mover == nil || !mover.Alive {
			continue
		}
		for _, target := range mover.Destinations(boardLength, side, enemies) {
			undo := simulate(mover, target, enemies)
			safe := !p.IsInCheck(boardLength, allies, enemies)
			undo()
			if safe {
				return true
			}
		}
	}
	return false
}

// simulate applies a move without validation and returns the function that
// restores the previous state. Only the mover position and the captured
// piece liveness change.
func simulate(mover *Piece, target Coordinate, enemies []*Piece) func() {
	from := mover.Pos
	captured := aliveAt(enemies, target)
	if captured != nil {
		captured.Alive = false
	}
	mover.Pos = target
	return func() {
		mover.Pos = from
		if captured != nil {
			captured.Alive = true
		}
	}
}

func withPiece(pieces []*Piece, p *Piece) []*Piece {
	out := make([]*Piece, 0, len(pieces)+1)
	for _, q := range pieces {
		if q != p {
			out = append(out, q)
		}
	}
	return append(out, p)
}
