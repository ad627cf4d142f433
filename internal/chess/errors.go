package chess

import "errors"

type staticErr string

func (e staticErr) Error() string { return string(e) }

var (
	// ErrIllegalMovement covers wrong turn, unreachable or own-occupied
	// targets and rejected promotions.
	ErrIllegalMovement error = staticErr("illegal movement")
	// ErrPieceNotFound means the reference does not resolve to a live piece
	// of the expected color.
	ErrPieceNotFound error = staticErr("piece not found")
	// ErrGameState is returned for moves or ties on a NEW or terminal match.
	ErrGameState error = staticErr("match does not accept this operation")
	// ErrGameInconsistency means a roster lost its king.
	ErrGameInconsistency error = staticErr("game state inconsistency")
	ErrMatchFull         error = staticErr("match already has two players")
)

// IsFatal reports errors that indicate a broken invariant or a request the
// match lifecycle forbids, as opposed to a bad move.
func IsFatal(err error) bool {
	return errors.Is(err, ErrGameState) || errors.Is(err, ErrGameInconsistency)
}
