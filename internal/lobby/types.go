package lobby

import (
	"context"

	"github.com/park285/cheese-match/internal/chess"
)

// Ticket is a player's standing in the matches queue.
type Ticket struct {
	Player  string      `json:"player"`
	Waiting bool        `json:"waiting"`
	MatchID string      `json:"match_id,omitempty"`
	Team    chess.Color `json:"team,omitempty"`
}

// MatchCreator starts a match once two queued players are paired.
type MatchCreator interface {
	CreateMatchWithPlayers(ctx context.Context, white, black string) (*chess.Match, error)
}

var (
	ErrInvalidArgs = errf("invalid arguments")
	ErrNotQueued   = errf("player is not in the matches queue")
)

type staticErr string

func (e staticErr) Error() string { return string(e) }
func errf(s string) error         { return staticErr(s) }
