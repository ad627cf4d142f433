package domain

import "time"

// MatchRecord is the persisted header of a match.
type MatchRecord struct {
	ID          string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Status      string
	WhiteTurn   bool
	WhitePlayer string
	BlackPlayer string
	Winner      string
	NextPieceID int
}

// PieceRecord is one row of the pieces table, keyed by (MatchID, PieceID).
type PieceRecord struct {
	MatchID string
	PieceID int
	X       int
	Y       int
	Type    string
	Color   string
	Alive   bool
}
