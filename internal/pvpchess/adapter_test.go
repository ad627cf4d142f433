package pvpchess

import (
	"bytes"
	"context"
	"testing"

	"github.com/park285/cheese-match/internal/chess"
)

func TestToDTO(t *testing.T) {
	m := chess.NewMatch("alice", "bob")
	dto := ToDTO(m)
	if dto.ID != m.ID || dto.Status != "IN_PROGRESS" || !dto.IsWhiteTurn {
		t.Fatalf("unexpected header %+v", dto)
	}
	if len(dto.WhitePieces) != 16 || len(dto.BlackPieces) != 16 {
		t.Fatalf("piece counts %d/%d", len(dto.WhitePieces), len(dto.BlackPieces))
	}
	if p := dto.WhitePieces[4]; p.Type != "K" || p.X != 5 || p.Y != 1 || p.Color != "WHITE" || !p.Alive {
		t.Fatalf("white king view %+v", p)
	}
	if dto.Winner != nil || dto.WhitePlayer.Name != "alice" {
		t.Fatalf("players %+v %+v", dto.WhitePlayer, dto.Winner)
	}
	if dto.FEN == "" {
		t.Fatalf("missing fen")
	}
}

func TestRenderBoardFlipsForBlack(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	match, err := m.CreateMatchWithPlayers(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	white, err := m.RenderBoard(ctx, match.ID, "alice")
	if err != nil || len(white) == 0 {
		t.Fatalf("white render: %v", err)
	}
	black, err := m.RenderBoard(ctx, match.ID, "bob")
	if err != nil || len(black) == 0 {
		t.Fatalf("black render: %v", err)
	}
	if bytes.Equal(white, black) {
		t.Fatalf("expected different images for flipped viewpoints")
	}
}
