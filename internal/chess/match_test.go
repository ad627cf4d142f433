package chess

import (
	"errors"
	"testing"
)

func TestNewMatchSetup(t *testing.T) {
	m := NewMatch("alice", "bob")
	if m.Status != StatusInProgress || !m.WhiteTurn {
		t.Fatalf("status=%s whiteTurn=%v", m.Status, m.WhiteTurn)
	}
	if len(m.WhitePieces) != 16 || len(m.BlackPieces) != 16 {
		t.Fatalf("roster sizes %d/%d", len(m.WhitePieces), len(m.BlackPieces))
	}
	want := "RNBQKBNR"
	for i := 0; i < 8; i++ {
		if got := m.WhitePieces[i].Kind.Symbol(); got != want[i] {
			t.Errorf("white back rank %d = %c, want %c", i, got, want[i])
		}
		if m.BlackPieces[i].Pos != Coord(i+1, 8) {
			t.Errorf("black back rank piece %d at %s", i, m.BlackPieces[i].Pos)
		}
	}
	if k, err := m.King(White); err != nil || k.Pos != Coord(5, 1) {
		t.Fatalf("white king: %v %v", k, err)
	}
	seen := map[int]bool{}
	for _, p := range append(append([]*Piece{}, m.WhitePieces...), m.BlackPieces...) {
		if seen[p.ID] {
			t.Fatalf("duplicate piece id %d", p.ID)
		}
		seen[p.ID] = true
	}
}

func TestHostedMatchCoinAndJoin(t *testing.T) {
	m := NewHostedMatch(Player{Name: "host"}, func() bool { return false })
	if m.Status != StatusNew || m.WhitePlayer != nil || m.BlackPlayer == nil || m.BlackPlayer.Name != "host" {
		t.Fatalf("unexpected hosted match: %+v", m)
	}
	if _, err := m.Move(m.PieceAt(sq("e2")), sq("e4")); !errors.Is(err, ErrGameState) {
		t.Fatalf("move on NEW match: err = %v, want ErrGameState", err)
	}
	c, err := m.Join(Player{Name: "guest"})
	if err != nil || c != White {
		t.Fatalf("Join = %v, %v", c, err)
	}
	if m.Status != StatusInProgress {
		t.Fatalf("status after join = %s", m.Status)
	}
	if _, err := m.Join(Player{Name: "third"}); !errors.Is(err, ErrMatchFull) {
		t.Fatalf("third join err = %v", err)
	}

	w := NewHostedMatch(Player{Name: "host"}, func() bool { return true })
	if w.WhitePlayer == nil || w.WhitePlayer.Name != "host" || w.BlackPlayer != nil {
		t.Fatalf("coin=true must seat host as white")
	}
}

func TestRookMovesOverEmptyFile(t *testing.T) {
	m := NewMatch("alice", "bob")
	m.PieceAt(sq("a2")).Alive = false
	m.PieceAt(sq("a7")).Alive = false
	rook := m.PieceAt(sq("a1"))
	if _, err := m.Move(rook, Coord(1, 5)); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if rook.Pos != Coord(1, 5) {
		t.Fatalf("rook at %s", rook.Pos)
	}
	if m.WhiteTurn || m.Turn() != Black {
		t.Fatalf("turn did not pass to black")
	}
	if m.Status != StatusInProgress {
		t.Fatalf("status = %s", m.Status)
	}
}

func TestWrongTurnRejectedWithoutChanges(t *testing.T) {
	m := NewMatch("alice", "bob")
	before := snapshotPositions(m.WhitePieces, m.BlackPieces)
	_, err := m.Move(m.PieceAt(sq("e7")), sq("e5"))
	if !errors.Is(err, ErrIllegalMovement) {
		t.Fatalf("err = %v, want ErrIllegalMovement", err)
	}
	if !m.WhiteTurn || snapshotPositions(m.WhitePieces, m.BlackPieces) != before {
		t.Fatalf("rejected move changed the match")
	}
}

func TestTurnAlternates(t *testing.T) {
	m := NewMatch("alice", "bob")
	moves := [][2]string{{"e2", "e4"}, {"e7", "e5"}, {"g1", "f3"}, {"b8", "c6"}}
	for i, mv := range moves {
		wantWhite := i%2 == 0
		if m.WhiteTurn != wantWhite {
			t.Fatalf("before move %d whiteTurn=%v", i, m.WhiteTurn)
		}
		mustMove(t, m, mv[0], mv[1])
	}
	if _, err := m.Move(m.PieceAt(sq("f3")), sq("f5")); !errors.Is(err, ErrIllegalMovement) {
		t.Fatalf("illegal knight move err = %v", err)
	}
	if !m.WhiteTurn {
		t.Fatalf("rejected move flipped the turn")
	}
}

func TestFoolsMate(t *testing.T) {
	m := NewMatch("alice", "bob")
	mustMove(t, m, "f2", "f3")
	mustMove(t, m, "e7", "e5")
	mustMove(t, m, "g2", "g4")
	mustMove(t, m, "d8", "h4")

	if m.Status != StatusFinished {
		t.Fatalf("status = %s, want FINISHED", m.Status)
	}
	if m.Winner == nil || m.Winner.Name != "bob" {
		t.Fatalf("winner = %v, want bob", m.Winner)
	}
	k, _ := m.King(White)
	if k.Pos != Coord(5, 1) || !k.IsCheckmate(BoardLength, m.WhitePieces, m.BlackPieces) {
		t.Fatalf("white king on e1 should be mated")
	}
	if _, err := m.Move(m.PieceAt(sq("h2")), sq("h3")); !errors.Is(err, ErrGameState) {
		t.Fatalf("move after mate err = %v, want ErrGameState", err)
	}
	if err := m.Tie(); !errors.Is(err, ErrGameState) {
		t.Fatalf("tie after mate err = %v", err)
	}
}

func TestKingVersusKingTies(t *testing.T) {
	m := positionMatch(t, "wKe1", "bKe8")
	mustMove(t, m, "e1", "e2")
	if m.Status != StatusTied || m.Winner != nil {
		t.Fatalf("status = %s winner = %v", m.Status, m.Winner)
	}
}

func TestCaptureIntoDeadPosition(t *testing.T) {
	m := positionMatch(t, "wKe1", "wBd3", "bKe8", "bRh7")
	mustMove(t, m, "d3", "h7")
	if m.Status != StatusTied {
		t.Fatalf("status = %s, want TIED", m.Status)
	}
	if m.PieceAt(sq("h7")).Color != White {
		t.Fatalf("bishop should stand on h7")
	}
}

func TestStalemateTies(t *testing.T) {
	m := positionMatch(t, "wKe1", "wQc6", "bKa8")
	mustMove(t, m, "c6", "b6")
	if m.Status != StatusTied {
		t.Fatalf("status = %s, want TIED", m.Status)
	}
}

func TestPromotion(t *testing.T) {
	m := positionMatch(t, "wKe1", "wPc7", "bKh5")
	pawn := m.PieceAt(sq("c7"))
	if _, err := m.PromotePawn(pawn, Queen); !errors.Is(err, ErrIllegalMovement) {
		t.Fatalf("early promotion err = %v", err)
	}
	if !pawn.Alive || len(m.WhitePieces) != 2 {
		t.Fatalf("rejected promotion changed the roster")
	}

	mustMove(t, m, "c7", "c8")
	if !pawn.IsPromoted(BoardLength) {
		t.Fatalf("pawn on c8 should be promotable")
	}
	if _, err := m.PromotePawn(pawn, King); !errors.Is(err, ErrIllegalMovement) {
		t.Fatalf("promotion to king err = %v", err)
	}
	q, err := m.PromotePawn(pawn, Queen)
	if err != nil {
		t.Fatalf("PromotePawn: %v", err)
	}
	if pawn.Alive {
		t.Fatalf("pawn must be dead after promotion")
	}
	if q.Kind != Queen || q.Color != White || q.Pos != Coord(3, 8) || !q.Alive {
		t.Fatalf("unexpected promoted piece %+v", q)
	}
	if m.PieceAt(Coord(3, 8)) != q || m.PieceByID(q.ID) != q {
		t.Fatalf("queen not registered in the roster")
	}
	if m.Status != StatusInProgress {
		t.Fatalf("status = %s", m.Status)
	}
}

func TestPromotionDeliversMate(t *testing.T) {
	m := positionMatch(t, "wKg6", "wPa7", "bKh8", "bPh2")
	mustMove(t, m, "a7", "a8")
	if m.Status != StatusInProgress {
		t.Fatalf("status before promotion = %s", m.Status)
	}
	if _, err := m.PromotePawn(m.PieceAt(sq("a8")), Rook); err != nil {
		t.Fatalf("PromotePawn: %v", err)
	}
	if m.Status != StatusFinished || m.Winner == nil || m.Winner.Name != "alice" {
		t.Fatalf("status = %s winner = %v", m.Status, m.Winner)
	}
}

// Moving into check is accepted; the position is only judged afterwards.
func TestSelfCheckIsAccepted(t *testing.T) {
	m := positionMatch(t, "wKe1", "bKe8", "bRd8")
	mustMove(t, m, "e1", "d1")
	k, _ := m.King(White)
	if !k.IsInCheck(BoardLength, m.WhitePieces, m.BlackPieces) {
		t.Fatalf("white king should be in check on d1")
	}
	if m.Status != StatusInProgress {
		t.Fatalf("status = %s", m.Status)
	}

	// Taking the king breaks the roster invariant and is rolled back.
	rook := m.PieceAt(sq("d8"))
	_, err := m.Move(rook, sq("d1"))
	if !errors.Is(err, ErrGameInconsistency) || !IsFatal(err) {
		t.Fatalf("king capture err = %v, want ErrGameInconsistency", err)
	}
	if rook.Pos != sq("d8") || !k.Alive || m.WhiteTurn {
		t.Fatalf("failed move was not rolled back")
	}
}

func TestMoveUnknownPiece(t *testing.T) {
	m := NewMatch("alice", "bob")
	stray := NewPiece(99, Rook, White, Coord(4, 4))
	if _, err := m.Move(stray, Coord(4, 5)); !errors.Is(err, ErrPieceNotFound) {
		t.Fatalf("err = %v, want ErrPieceNotFound", err)
	}
	dead := m.PieceAt(sq("a2"))
	dead.Alive = false
	if _, err := m.Move(dead, sq("a3")); !errors.Is(err, ErrPieceNotFound) {
		t.Fatalf("dead piece err = %v", err)
	}
}

func TestTie(t *testing.T) {
	m := NewMatch("alice", "bob")
	if err := m.Tie(); err != nil {
		t.Fatalf("Tie: %v", err)
	}
	if m.Status != StatusTied {
		t.Fatalf("status = %s", m.Status)
	}
	h := NewHostedMatch(Player{Name: "host"}, nil)
	if err := h.Tie(); !errors.Is(err, ErrGameState) {
		t.Fatalf("tie on NEW match err = %v", err)
	}
}
