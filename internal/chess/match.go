package chess

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

// Coin decides the host's color in a hosted match: true means white.
type Coin func() bool

// CryptoCoin flips a fair coin using crypto/rand.
func CryptoCoin() bool {
	n, err := rand.Int(rand.Reader, big.NewInt(2))
	if err != nil || n == nil {
		return time.Now().UnixNano()%2 == 0
	}
	return n.Int64() == 0
}

var backRank = []Kind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// Match is the aggregate owning both rosters, the turn flag and the status.
// It is not safe for concurrent use; callers serialize operations per match.
type Match struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Status      Status    `json:"status"`
	WhiteTurn   bool      `json:"is_white_turn"`
	WhitePlayer *Player   `json:"white_player,omitempty"`
	BlackPlayer *Player   `json:"black_player,omitempty"`
	Winner      *Player   `json:"winner,omitempty"`
	WhitePieces []*Piece  `json:"white_pieces"`
	BlackPieces []*Piece  `json:"black_pieces"`
	NextPieceID int       `json:"next_piece_id"`
}

// NewMatch starts a match between two named players; white moves first.
func NewMatch(whiteName, blackName string) *Match {
	m := newMatch()
	m.WhitePlayer = &Player{Name: whiteName}
	m.BlackPlayer = &Player{Name: blackName}
	m.Status = StatusInProgress
	return m
}

// NewHostedMatch creates a match waiting for a second player. The host's
// color is decided by coin; a nil coin uses CryptoCoin.
func NewHostedMatch(host Player, coin Coin) *Match {
	if coin == nil {
		coin = CryptoCoin
	}
	m := newMatch()
	h := host
	if coin() {
		m.WhitePlayer = &h
	} else {
		m.BlackPlayer = &h
	}
	m.Status = StatusNew
	return m
}

func newMatch() *Match {
	m := &Match{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		WhiteTurn: true,
	}
	m.setup()
	return m
}

func (m *Match) setup() {
	m.WhitePieces = make([]*Piece, 0, 2*BoardLength)
	m.BlackPieces = make([]*Piece, 0, 2*BoardLength)
	for i, k := range backRank {
		m.WhitePieces = append(m.WhitePieces, NewPiece(m.nextID(), k, White, Coord(i+1, 1)))
		m.BlackPieces = append(m.BlackPieces, NewPiece(m.nextID(), k, Black, Coord(i+1, BoardLength)))
	}
	for col := 1; col <= BoardLength; col++ {
		m.WhitePieces = append(m.WhitePieces, NewPiece(m.nextID(), Pawn, White, Coord(col, 2)))
		m.BlackPieces = append(m.BlackPieces, NewPiece(m.nextID(), Pawn, Black, Coord(col, BoardLength-1)))
	}
}

func (m *Match) nextID() int {
	m.NextPieceID++
	return m.NextPieceID
}

// Join seats player in the empty slot and starts the match.
func (m *Match) Join(player Player) (Color, error) {
	p := player
	switch {
	case m.WhitePlayer == nil && m.BlackPlayer != nil:
		m.WhitePlayer = &p
	case m.BlackPlayer == nil && m.WhitePlayer != nil:
		m.BlackPlayer = &p
	case m.WhitePlayer == nil && m.BlackPlayer == nil:
		return "", fmt.Errorf("%w: match has no host", ErrGameInconsistency)
	default:
		return "", ErrMatchFull
	}
	if m.Status == StatusNew {
		m.Status = StatusInProgress
	}
	c, _ := m.ColorOf(player.Name)
	return c, nil
}

// Turn returns the color to move.
func (m *Match) Turn() Color {
	if m.WhiteTurn {
		return White
	}
	return Black
}

// Roster returns every piece of color, dead ones included.
func (m *Match) Roster(c Color) []*Piece {
	if c == White {
		return m.WhitePieces
	}
	return m.BlackPieces
}

// ColorOf returns the color played by the named player.
func (m *Match) ColorOf(name string) (Color, bool) {
	switch {
	case m.WhitePlayer != nil && m.WhitePlayer.Name == name:
		return White, true
	case m.BlackPlayer != nil && m.BlackPlayer.Name == name:
		return Black, true
	}
	return "", false
}

func (m *Match) PlayerOf(c Color) *Player {
	if c == White {
		return m.WhitePlayer
	}
	return m.BlackPlayer
}

func (m *Match) PieceByID(id int) *Piece {
	for _, p := range m.WhitePieces {
		if p.ID == id {
			return p
		}
	}
	for _, p := range m.BlackPieces {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// PieceAt returns the live piece on c.
func (m *Match) PieceAt(c Coordinate) *Piece {
	if p := aliveAt(m.WhitePieces, c); p != nil {
		return p
	}
	return aliveAt(m.BlackPieces, c)
}

func (m *Match) owns(p *Piece) bool {
	for _, q := range m.Roster(p.Color) {
		if q == p {
			return true
		}
	}
	return false
}

// Move applies a move for piece and then runs the checkmate and draw
// detectors. It is all-or-nothing: on error the match is unchanged. The
// captured piece, if any, is returned.
func (m *Match) Move(piece *Piece, target Coordinate) (*Piece, error) {
	if m.Status.Terminal() {
		return nil, fmt.Errorf("%w: cannot make a move in a finished match", ErrGameState)
	}
	if m.Status == StatusNew {
		return nil, fmt.Errorf("%w: a move cannot be made until another player is connected", ErrGameState)
	}
	if piece == nil || !piece.Alive || !m.owns(piece) {
		return nil, ErrPieceNotFound
	}
	if piece.Color != m.Turn() {
		return nil, fmt.Errorf("%w: trying to move a %s piece but it is %s's turn", ErrIllegalMovement, piece.Color, m.Turn())
	}

	from := piece.Pos
	captured, err := piece.Move(target, BoardLength, m.Roster(piece.Color), m.Roster(piece.Color.Opponent()))
	if err != nil {
		return nil, err
	}
	m.WhiteTurn = !m.WhiteTurn

	if err := m.evaluate(); err != nil {
		piece.Pos = from
		if captured != nil {
			captured.Alive = true
		}
		m.WhiteTurn = !m.WhiteTurn
		return nil, err
	}
	return captured, nil
}

// PromotePawn replaces a pawn standing on its last rank with a new piece of
// kind. The pawn is kept in the roster as dead.
func (m *Match) PromotePawn(pawn *Piece, kind Kind) (*Piece, error) {
	if pawn == nil || !m.owns(pawn) {
		return nil, ErrPieceNotFound
	}
	if !pawn.IsPromoted(BoardLength) || !promotable(kind) {
		return nil, fmt.Errorf("%w: you cannot promote that pawn", ErrIllegalMovement)
	}

	pawn.Alive = false
	np := NewPiece(m.nextID(), kind, pawn.Color, pawn.Pos)
	m.appendPiece(np)

	if m.Status == StatusInProgress {
		if err := m.evaluate(); err != nil {
			m.removeLast(np.Color)
			m.NextPieceID--
			pawn.Alive = true
			return nil, err
		}
	}
	return np, nil
}

func promotable(k Kind) bool {
	switch k {
	case Queen, Rook, Bishop, Knight:
		return true
	}
	return false
}

func (m *Match) appendPiece(p *Piece) {
	if p.Color == White {
		m.WhitePieces = append(m.WhitePieces, p)
		return
	}
	m.BlackPieces = append(m.BlackPieces, p)
}

func (m *Match) removeLast(c Color) {
	if c == White {
		m.WhitePieces = m.WhitePieces[:len(m.WhitePieces)-1]
		return
	}
	m.BlackPieces = m.BlackPieces[:len(m.BlackPieces)-1]
}

// Tie forces the match into TIED.
func (m *Match) Tie() error {
	if m.Status != StatusInProgress {
		return fmt.Errorf("%w: cannot tie a %s match", ErrGameState, m.Status)
	}
	m.Status = StatusTied
	return nil
}

// King returns the live king of color.
func (m *Match) King(c Color) (*Piece, error) {
	for _, p := range m.Roster(c) {
		if p.Alive && p.Kind == King {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s king missing", ErrGameInconsistency, c)
}

// evaluate runs checkmate detection for both kings, then the draw
// detectors unless a checkmate already finished the match.
func (m *Match) evaluate() error {
	wk, err := m.King(White)
	if err != nil {
		return err
	}
	bk, err := m.King(Black)
	if err != nil {
		return err
	}

	if wk.IsCheckmate(BoardLength, m.WhitePieces, m.BlackPieces) {
		m.Winner = m.BlackPlayer
		m.Status = StatusFinished
	}
	if bk.IsCheckmate(BoardLength, m.BlackPieces, m.WhitePieces) {
		m.Winner = m.WhitePlayer
		m.Status = StatusFinished
	}
	if m.Status == StatusFinished {
		return nil
	}

	if wk.IsStalemate(BoardLength, m.WhitePieces, m.BlackPieces) ||
		bk.IsStalemate(BoardLength, m.BlackPieces, m.WhitePieces) ||
		IsDeadPosition(m.WhitePieces, m.BlackPieces) {
		m.Status = StatusTied
	}
	return nil
}
