package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	nchess "github.com/corentings/chess/v2"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// Glyph outlines on a 45x45 canvas.
var pieceShapes = map[nchess.PieceType]string{
	nchess.Pawn: `<circle cx="22.5" cy="14" r="5.5"/>` +
		`<path d="M14 36 L31 36 L27 22 L18 22 Z"/>`,
	nchess.Rook: `<path d="M12 36 L33 36 L33 32 L30 32 L29 18 L32 18 L32 10 L28 10 L28 13 L25 13 L25 10 L20 10 L20 13 L17 13 L17 10 L13 10 L13 18 L16 18 L15 32 L12 32 Z"/>`,
	nchess.Knight: `<path d="M13 36 L33 36 C33 26 32 14 22 9 L19 6 L17 10 L11 17 L10 22 L13 24 L19 20 L14 30 Z"/>` +
		`<circle cx="17" cy="14" r="1.2"/>`,
	nchess.Bishop: `<circle cx="22.5" cy="8" r="2.8"/>` +
		`<path d="M13 36 L32 36 L29 30 C33 24 29 16 22.5 11 C16 16 12 24 16 30 Z"/>`,
	nchess.Queen: `<path d="M10 36 L35 36 L32 28 L36 13 L29 22 L27 10 L22.5 21 L18 10 L16 22 L9 13 L13 28 Z"/>`,
	nchess.King: `<path d="M21 5 L24 5 L24 9 L28 9 L28 12 L24 12 L24 17 L21 17 L21 12 L17 12 L17 9 L21 9 Z"/>` +
		`<path d="M12 36 L33 36 L31 27 C36 21 30 14 22.5 20 C15 14 9 21 14 27 Z"/>`,
}

func pieceSVG(piece nchess.Piece) []byte {
	fill, stroke := "#f6f3ea", "#1f1f1f"
	if piece.Color() == nchess.Black {
		fill, stroke = "#2b2b2b", "#0d0d0d"
	}
	return []byte(fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 45 45" width="45" height="45">`+
			`<g fill="%s" stroke="%s" stroke-width="1.5" stroke-linejoin="round">%s</g></svg>`,
		fill, stroke, pieceShapes[piece.Type()],
	))
}

type pieceCacheKey struct {
	piece nchess.Piece
	size  int
}

var (
	pieceCache   = map[pieceCacheKey]image.Image{}
	pieceCacheMu sync.RWMutex
)

func renderPieceImage(piece nchess.Piece, size int) (image.Image, error) {
	key := pieceCacheKey{piece: piece, size: size}

	pieceCacheMu.RLock()
	if img, ok := pieceCache[key]; ok {
		pieceCacheMu.RUnlock()
		return img, nil
	}
	pieceCacheMu.RUnlock()

	if _, ok := pieceShapes[piece.Type()]; !ok {
		return nil, fmt.Errorf("no glyph for piece %v", piece)
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(pieceSVG(piece)))
	if err != nil {
		return nil, fmt.Errorf("parse piece svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	pieceCacheMu.Lock()
	pieceCache[key] = img
	pieceCacheMu.Unlock()

	return img, nil
}
