package chessdto

import "time"

type PlayerDto struct {
	Name string `json:"name"`
}

type PieceDto struct {
	ID    int    `json:"id"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Type  string `json:"type"`
	Color string `json:"color"`
	Alive bool   `json:"isAlive"`
}

// MatchDto is the client-facing view of a match, also pushed to
// game-progress subscribers after every change.
type MatchDto struct {
	ID          string     `json:"id"`
	CreatedAt   time.Time  `json:"createdAt"`
	Status      string     `json:"status"`
	IsWhiteTurn bool       `json:"isWhiteTurn"`
	WhitePlayer *PlayerDto `json:"whitePlayer,omitempty"`
	BlackPlayer *PlayerDto `json:"blackPlayer,omitempty"`
	Winner      *PlayerDto `json:"winner,omitempty"`
	WhitePieces []PieceDto `json:"whitePieces"`
	BlackPieces []PieceDto `json:"blackPieces"`
	FEN         string     `json:"fen"`
}

type MatchWithPlayerTeam struct {
	Match *MatchDto `json:"match"`
	Team  string    `json:"team"`
}

type PlayerInQueueResponse struct {
	Player  PlayerDto `json:"player"`
	Waiting bool      `json:"waiting"`
	MatchID string    `json:"matchId,omitempty"`
	Team    string    `json:"team,omitempty"`
}
