package api

import (
	"errors"

	"github.com/valyala/fasthttp"

	"github.com/park285/cheese-match/internal/chess"
	"github.com/park285/cheese-match/internal/lobby"
	"github.com/park285/cheese-match/internal/pvpchess"
)

type errorKind struct {
	status    int
	code      string
	retryable bool
}

var errorKinds = []struct {
	target error
	kind   errorKind
}{
	{chess.ErrIllegalMovement, errorKind{fasthttp.StatusBadRequest, "illegal_movement", false}},
	{pvpchess.ErrInvalidArgs, errorKind{fasthttp.StatusBadRequest, "invalid_args", false}},
	{lobby.ErrInvalidArgs, errorKind{fasthttp.StatusBadRequest, "invalid_args", false}},
	{chess.ErrPieceNotFound, errorKind{fasthttp.StatusNotFound, "piece_not_found", false}},
	{pvpchess.ErrMatchNotFound, errorKind{fasthttp.StatusNotFound, "match_not_found", false}},
	{lobby.ErrNotQueued, errorKind{fasthttp.StatusNotFound, "not_queued", false}},
	{pvpchess.ErrNotParticipant, errorKind{fasthttp.StatusForbidden, "not_participant", false}},
	{chess.ErrGameState, errorKind{fasthttp.StatusConflict, "game_state", false}},
	{chess.ErrMatchFull, errorKind{fasthttp.StatusConflict, "match_full", false}},
	{pvpchess.ErrConcurrentUpdate, errorKind{fasthttp.StatusConflict, "concurrent_update", true}},
	{chess.ErrGameInconsistency, errorKind{fasthttp.StatusInternalServerError, "game_inconsistency", false}},
}

var internalError = errorKind{fasthttp.StatusInternalServerError, "internal", false}

func classify(err error) errorKind {
	for _, e := range errorKinds {
		if errors.Is(err, e.target) {
			return e.kind
		}
	}
	return internalError
}
