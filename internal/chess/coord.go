package chess

import "fmt"

// BoardLength is the side of the square board.
const BoardLength = 8

// Coordinate is a (column, row) pair, both 1-based.
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func Coord(x, y int) Coordinate { return Coordinate{X: x, Y: y} }

// Within reports whether c lies on a board of the given length.
func (c Coordinate) Within(boardLength int) bool {
	return c.X >= 1 && c.X <= boardLength && c.Y >= 1 && c.Y <= boardLength
}

func (c Coordinate) Offset(dx, dy int) Coordinate {
	return Coordinate{X: c.X + dx, Y: c.Y + dy}
}

// Shade is 0 or 1 depending on the square color.
func (c Coordinate) Shade() int { return (c.X + c.Y) % 2 }

// String renders the square as a1..h8 when it is on an 8x8 board.
func (c Coordinate) String() string {
	if c.Within(BoardLength) {
		return fmt.Sprintf("%c%d", 'a'+rune(c.X-1), c.Y)
	}
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}
