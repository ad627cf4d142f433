package pvpchess

import (
	"context"

	"github.com/park285/cheese-match/pkg/chessdto"
)

// PieceRef points at a piece by id. A zero id falls back to the square.
type PieceRef struct {
	ID int
	X  int
	Y  int
}

// Event names the operation that produced a match update.
type Event string

const (
	EventCreated   Event = "created"
	EventConnected Event = "connected"
	EventMoved     Event = "moved"
	EventPromoted  Event = "promoted"
	EventTied      Event = "tied"
)

// Publisher pushes the client view of a match to game-progress subscribers.
type Publisher interface {
	PublishMatch(ctx context.Context, matchID string, view *chessdto.MatchDto) error
}

var (
	ErrInvalidArgs      = errf("invalid arguments")
	ErrMatchNotFound    = errf("match not found or expired")
	ErrNotParticipant   = errf("player is not part of this match")
	ErrConcurrentUpdate = errf("match was updated concurrently, retry")
)

type staticErr string

func (e staticErr) Error() string { return string(e) }
func errf(s string) error         { return staticErr(s) }
