package chess

import "fmt"

// Piece is one entry of a roster. Dead pieces stay in the roster as history
// but are ignored by every rule.
type Piece struct {
	ID    int        `json:"id"`
	Kind  Kind       `json:"type"`
	Color Color      `json:"color"`
	Pos   Coordinate `json:"position"`
	Alive bool       `json:"alive"`
}

func NewPiece(id int, kind Kind, color Color, pos Coordinate) *Piece {
	return &Piece{ID: id, Kind: kind, Color: color, Pos: pos, Alive: true}
}

func (p *Piece) String() string {
	return fmt.Sprintf("%s %s@%s", p.Color, p.Kind, p.Pos)
}

var (
	rookDirs    = [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	bishopDirs  = [][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	queenDirs   = append(append([][2]int{}, rookDirs...), bishopDirs...)
	knightJumps = [][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
)

// occupancy indexes the alive pieces around a mover.
type occupancy struct {
	allies  map[Coordinate]*Piece
	enemies map[Coordinate]*Piece
}

func newOccupancy(allies, enemies []*Piece) occupancy {
	o := occupancy{
		allies:  make(map[Coordinate]*Piece, len(allies)),
		enemies: make(map[Coordinate]*Piece, len(enemies)),
	}
	for _, p := range allies {
		if p != nil && p.Alive {
			o.allies[p.Pos] = p
		}
	}
	for _, p := range enemies {
		if p != nil && p.Alive {
			o.enemies[p.Pos] = p
		}
	}
	return o
}

func (o occupancy) empty(c Coordinate) bool {
	_, a := o.allies[c]
	_, e := o.enemies[c]
	return !a && !e
}

func (o occupancy) enemy(c Coordinate) bool {
	_, ok := o.enemies[c]
	return ok
}

// Destinations returns the candidate squares of p: reachable under its
// movement rule, on the board and not occupied by an ally. Whether the move
// resolves or causes check is not considered.
func (p *Piece) Destinations(boardLength int, allies, enemies []*Piece) []Coordinate {
	if p == nil || !p.Alive {
		return nil
	}
	occ := newOccupancy(withoutPiece(allies, p), enemies)
	switch p.Kind {
	case Pawn:
		return p.pawnDestinations(boardLength, occ)
	case Rook:
		return p.slide(boardLength, occ, rookDirs)
	case Bishop:
		return p.slide(boardLength, occ, bishopDirs)
	case Queen:
		return p.slide(boardLength, occ, queenDirs)
	case Knight:
		return p.step(boardLength, occ, knightJumps)
	case King:
		return p.step(boardLength, occ, queenDirs)
	default:
		return nil
	}
}

// CanReach reports whether target is one of p's candidate destinations.
func (p *Piece) CanReach(target Coordinate, boardLength int, allies, enemies []*Piece) bool {
	for _, c := range p.Destinations(boardLength, allies, enemies) {
		if c == target {
			return true
		}
	}
	return false
}

// Move validates target against p's movement rule, moves p and captures the
// enemy standing on target, if any. The captured piece is returned. On error
// nothing is mutated.
func (p *Piece) Move(target Coordinate, boardLength int, allies, enemies []*Piece) (*Piece, error) {
	if p == nil || !p.Alive {
		return nil, ErrPieceNotFound
	}
	if !p.CanReach(target, boardLength, allies, enemies) {
		return nil, fmt.Errorf("%w: %s cannot reach %s", ErrIllegalMovement, p, target)
	}
	captured := aliveAt(enemies, target)
	if captured != nil {
		captured.Alive = false
	}
	p.Pos = target
	return captured, nil
}

// IsPromoted reports whether p is a live pawn standing on its last rank.
func (p *Piece) IsPromoted(boardLength int) bool {
	if p == nil || p.Kind != Pawn || !p.Alive {
		return false
	}
	return p.Pos.Y == lastRank(p.Color, boardLength)
}

func lastRank(c Color, boardLength int) int {
	if c == White {
		return boardLength
	}
	return 1
}

func forward(c Color) int {
	if c == White {
		return 1
	}
	return -1
}

func startRank(c Color, boardLength int) int {
	if c == White {
		return 2
	}
	return boardLength - 1
}

func (p *Piece) pawnDestinations(boardLength int, occ occupancy) []Coordinate {
	var out []Coordinate
	dy := forward(p.Color)
	one := p.Pos.Offset(0, dy)
	if one.Within(boardLength) && occ.empty(one) {
		out = append(out, one)
		two := p.Pos.Offset(0, 2*dy)
		if p.Pos.Y == startRank(p.Color, boardLength) && two.Within(boardLength) && occ.empty(two) {
			out = append(out, two)
		}
	}
	for _, dx := range []int{-1, 1} {
		diag := p.Pos.Offset(dx, dy)
		if diag.Within(boardLength) && occ.enemy(diag) {
			out = append(out, diag)
		}
	}
	return out
}

func (p *Piece) slide(boardLength int, occ occupancy, dirs [][2]int) []Coordinate {
	var out []Coordinate
	for _, d := range dirs {
		c := p.Pos.Offset(d[0], d[1])
		for c.Within(boardLength) {
			if occ.empty(c) {
				out = append(out, c)
				c = c.Offset(d[0], d[1])
				continue
			}
			if occ.enemy(c) {
				out = append(out, c)
			}
			break
		}
	}
	return out
}

func (p *Piece) step(boardLength int, occ occupancy, offsets [][2]int) []Coordinate {
	var out []Coordinate
	for _, d := range offsets {
		c := p.Pos.Offset(d[0], d[1])
		if !c.Within(boardLength) {
			continue
		}
		if _, ally := occ.allies[c]; ally {
			continue
		}
		out = append(out, c)
	}
	return out
}

func aliveAt(pieces []*Piece, c Coordinate) *Piece {
	for _, p := range pieces {
		if p != nil && p.Alive && p.Pos == c {
			return p
		}
	}
	return nil
}

func withoutPiece(pieces []*Piece, skip *Piece) []*Piece {
	out := make([]*Piece, 0, len(pieces))
	for _, p := range pieces {
		if p != skip {
			out = append(out, p)
		}
	}
	return out
}
