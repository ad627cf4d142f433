package matchclient

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/park285/cheese-match/pkg/chessdto"
)

const boardLength = 8

var (
	whiteInk = color.New(color.FgHiWhite, color.Bold)
	blackInk = color.New(color.FgHiRed, color.Bold)
	dimInk   = color.New(color.Faint)
)

// FormatBoard draws the live pieces of dto as text with rank 8 on top.
// White pieces are upper case, black lower case. Color escapes follow
// color.NoColor.
func FormatBoard(dto *chessdto.MatchDto) string {
	if dto == nil {
		return ""
	}
	var grid [boardLength][boardLength]*chessdto.PieceDto
	place := func(pieces []chessdto.PieceDto) {
		for i := range pieces {
			p := &pieces[i]
			if !p.Alive || p.X < 1 || p.X > boardLength || p.Y < 1 || p.Y > boardLength {
				continue
			}
			grid[p.Y-1][p.X-1] = p
		}
	}
	place(dto.WhitePieces)
	place(dto.BlackPieces)

	var b strings.Builder
	for y := boardLength; y >= 1; y-- {
		fmt.Fprintf(&b, "%d ", y)
		for x := 1; x <= boardLength; x++ {
			b.WriteString(cell(grid[y-1][x-1]))
			if x < boardLength {
				b.WriteByte(' ')
			}
		}
		b.WriteByte('\n')
	}
	b.WriteString("  a b c d e f g h\n")
	return b.String()
}

func cell(p *chessdto.PieceDto) string {
	if p == nil {
		return dimInk.Sprint(".")
	}
	if p.Color == "WHITE" {
		return whiteInk.Sprint(strings.ToUpper(p.Type))
	}
	return blackInk.Sprint(strings.ToLower(p.Type))
}

// Summary is a one-line status for dto.
func Summary(dto *chessdto.MatchDto) string {
	if dto == nil {
		return ""
	}
	white, black := name(dto.WhitePlayer), name(dto.BlackPlayer)
	switch dto.Status {
	case "FINISHED":
		return fmt.Sprintf("%s vs %s: %s wins", white, black, name(dto.Winner))
	case "TIED":
		return fmt.Sprintf("%s vs %s: draw", white, black)
	case "NEW":
		return fmt.Sprintf("%s is waiting for an opponent", firstKnown(white, black))
	}
	turn := "white"
	if !dto.IsWhiteTurn {
		turn = "black"
	}
	return fmt.Sprintf("%s vs %s: %s to move", white, black, turn)
}

func name(p *chessdto.PlayerDto) string {
	if p == nil || p.Name == "" {
		return "?"
	}
	return p.Name
}

func firstKnown(a, b string) string {
	if a != "?" {
		return a
	}
	return b
}
