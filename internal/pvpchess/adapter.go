package pvpchess

import (
	"context"
	"fmt"

	"github.com/park285/cheese-match/internal/chess"
	"github.com/park285/cheese-match/internal/render"
	"github.com/park285/cheese-match/pkg/chessdto"
)

// ToDTO builds the client view of a match.
func ToDTO(m *chess.Match) *chessdto.MatchDto {
	if m == nil {
		return nil
	}
	return &chessdto.MatchDto{
		ID:          m.ID,
		CreatedAt:   m.CreatedAt,
		Status:      string(m.Status),
		IsWhiteTurn: m.WhiteTurn,
		WhitePlayer: playerDTO(m.WhitePlayer),
		BlackPlayer: playerDTO(m.BlackPlayer),
		Winner:      playerDTO(m.Winner),
		WhitePieces: piecesDTO(m.WhitePieces),
		BlackPieces: piecesDTO(m.BlackPieces),
		FEN:         render.FEN(m),
	}
}

func playerDTO(p *chess.Player) *chessdto.PlayerDto {
	if p == nil {
		return nil
	}
	return &chessdto.PlayerDto{Name: p.Name}
}

func piecesDTO(pieces []*chess.Piece) []chessdto.PieceDto {
	out := make([]chessdto.PieceDto, 0, len(pieces))
	for _, p := range pieces {
		out = append(out, chessdto.PieceDto{
			ID:    p.ID,
			X:     p.Pos.X,
			Y:     p.Pos.Y,
			Type:  string(p.Kind.Symbol()),
			Color: string(p.Color),
			Alive: p.Alive,
		})
	}
	return out
}

// RenderBoard draws the match as PNG. The board is flipped when viewer
// plays black.
func (m *Manager) RenderBoard(ctx context.Context, matchID, viewer string) ([]byte, error) {
	match, err := m.Get(ctx, matchID)
	if err != nil {
		return nil, err
	}
	color, _ := match.ColorOf(viewer)
	return m.renderer.RenderPNG(ctx, match, render.RenderOptions{
		Header:  hudHeader(match),
		Caption: hudCaption(match),
		Flip:    color == chess.Black,
	})
}

func hudHeader(m *chess.Match) string {
	return fmt.Sprintf("%s vs %s", playerName(m.WhitePlayer), playerName(m.BlackPlayer))
}

func hudCaption(m *chess.Match) string {
	switch m.Status {
	case chess.StatusNew:
		return "waiting for opponent"
	case chess.StatusFinished:
		if m.Winner != nil {
			return "checkmate, " + m.Winner.Name + " wins"
		}
		return "finished"
	case chess.StatusTied:
		return "draw"
	}
	return m.Turn().String() + " to move"
}

func playerName(p *chess.Player) string {
	if p == nil {
		return "?"
	}
	return p.Name
}
