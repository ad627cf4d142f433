package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"strings"

	nchess "github.com/corentings/chess/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/park285/cheese-match/internal/chess"
)

type RenderOptions struct {
	Header  string
	Caption string
	// Flip draws the board from black's side.
	Flip bool
}

type BoardRenderer interface {
	RenderPNG(ctx context.Context, m *chess.Match, opts RenderOptions) ([]byte, error)
}

type pngRenderer struct{}

func NewPNGRenderer() BoardRenderer {
	return &pngRenderer{}
}

const (
	squareSize   = 64
	boardSize    = squareSize * chess.BoardLength
	sideMargin   = 28
	topMargin    = 56
	bottomMargin = 28
)

var (
	lightSquare         = color.RGBA{233, 207, 163, 255}
	darkSquare          = color.RGBA{187, 136, 96, 255}
	backgroundColor     = color.RGBA{28, 31, 46, 255}
	checkOverlayColor   = color.NRGBA{R: 220, G: 48, B: 48, A: 140}
	hudTextPrimary      = color.NRGBA{R: 236, G: 239, B: 255, A: 255}
	hudTextSecondary    = color.NRGBA{R: 204, G: 210, B: 236, A: 255}
	coordinateTextColor = color.NRGBA{R: 8, G: 214, B: 120, A: 255}
)

func (r *pngRenderer) RenderPNG(ctx context.Context, m *chess.Match, opts RenderOptions) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("match is nil")
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	totalWidth := boardSize + sideMargin*2
	totalHeight := boardSize + topMargin + bottomMargin
	origin := image.Point{X: sideMargin, Y: topMargin}

	img := image.NewRGBA(image.Rect(0, 0, totalWidth, totalHeight))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, imagedraw.Src)

	board := ToBoard(m)
	drawHUD(img, opts, totalWidth)
	drawSquares(img, origin, opts.Flip)
	for _, sq := range checkedKings(m) {
		drawSquareOverlay(img, sq, origin, opts.Flip, checkOverlayColor)
	}
	if err := drawPieces(img, board, origin, opts.Flip); err != nil {
		return nil, err
	}
	drawCoordinates(img, origin, opts.Flip)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return pngBuf.Bytes(), nil
}

// checkedKings lists the squares of kings currently attacked.
func checkedKings(m *chess.Match) []nchess.Square {
	var out []nchess.Square
	for _, c := range []chess.Color{chess.White, chess.Black} {
		king, err := m.King(c)
		if err != nil {
			continue
		}
		if !king.IsInCheck(chess.BoardLength, m.Roster(c), m.Roster(c.Opponent())) {
			continue
		}
		if sq, ok := toSquare(king.Pos); ok {
			out = append(out, sq)
		}
	}
	return out
}

func drawHUD(dst imagedraw.Image, opts RenderOptions, width int) {
	drawer := &font.Drawer{Dst: dst, Face: basicfont.Face7x13}
	if header := strings.TrimSpace(opts.Header); header != "" {
		drawer.Src = image.NewUniform(hudTextPrimary)
		drawCenteredText(drawer, header, width/2, 22)
	}
	if caption := strings.TrimSpace(opts.Caption); caption != "" {
		drawer.Src = image.NewUniform(hudTextSecondary)
		drawCenteredText(drawer, caption, width/2, 42)
	}
}

func drawSquares(dst imagedraw.Image, origin image.Point, flip bool) {
	for rank := nchess.Rank1; rank <= nchess.Rank8; rank++ {
		for file := nchess.FileA; file <= nchess.FileH; file++ {
			sq := nchess.NewSquare(file, rank)
			imagedraw.Draw(dst, squareRect(sq, origin, flip), image.NewUniform(squareColor(sq)), image.Point{}, imagedraw.Src)
		}
	}
}

func drawPieces(dst imagedraw.Image, board *nchess.Board, origin image.Point, flip bool) error {
	for sq, piece := range board.SquareMap() {
		if piece == nchess.NoPiece {
			continue
		}
		img, err := renderPieceImage(piece, squareSize)
		if err != nil {
			return err
		}
		imagedraw.Draw(dst, squareRect(sq, origin, flip), img, image.Point{}, imagedraw.Over)
	}
	return nil
}

func drawSquareOverlay(dst imagedraw.Image, sq nchess.Square, origin image.Point, flip bool, clr color.Color) {
	imagedraw.Draw(dst, squareRect(sq, origin, flip), image.NewUniform(clr), image.Point{}, imagedraw.Over)
}

func drawCoordinates(dst imagedraw.Image, origin image.Point, flip bool) {
	face := basicfont.Face7x13
	drawer := &font.Drawer{Dst: dst, Face: face, Src: image.NewUniform(coordinateTextColor)}
	ascent := face.Metrics().Ascent.Ceil()

	for i := 0; i < chess.BoardLength; i++ {
		file := nchess.File(i)
		rank := nchess.Rank(i)
		fileRect := squareRect(nchess.NewSquare(file, nchess.Rank1), origin, flip)
		rankRect := squareRect(nchess.NewSquare(nchess.FileA, rank), origin, flip)

		drawCenteredText(drawer, file.String(), fileRect.Min.X+squareSize/2, origin.Y+boardSize+ascent+4)
		drawCenteredText(drawer, rank.String(), origin.X-sideMargin/2, rankRect.Min.Y+squareSize/2+ascent/2)
	}
}

func drawCenteredText(drawer *font.Drawer, text string, centerX, baseline int) {
	if text == "" {
		return
	}
	width := drawer.MeasureString(text).Round()
	drawer.Dot = fixed.P(centerX-width/2, baseline)
	drawer.DrawString(text)
}

func squareRect(sq nchess.Square, origin image.Point, flip bool) image.Rectangle {
	col := int(sq.File())
	row := 7 - int(sq.Rank())
	if flip {
		col = 7 - col
		row = 7 - row
	}
	x := origin.X + col*squareSize
	y := origin.Y + row*squareSize
	return image.Rect(x, y, x+squareSize, y+squareSize)
}

func squareColor(sq nchess.Square) color.Color {
	if (int(sq.File())+int(sq.Rank()))%2 == 0 {
		return darkSquare
	}
	return lightSquare
}
