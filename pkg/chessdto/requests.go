package chessdto

// PieceRef identifies a piece by id, or by its square when id is zero.
type PieceRef struct {
	ID int `json:"id"`
	X  int `json:"x"`
	Y  int `json:"y"`
}

type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type CreateMatchRequest struct {
	Player PlayerDto `json:"player"`
}

type ConnectRequest struct {
	Player PlayerDto `json:"player"`
	GameID string    `json:"gameId"`
}

type QueueRequest struct {
	Player PlayerDto `json:"player"`
}

type GameplayRequest struct {
	Player      PlayerDto  `json:"player"`
	MatchID     string     `json:"matchId"`
	PieceToMove PieceRef   `json:"pieceToMove"`
	Target      Coordinate `json:"target"`
}

type PromoteRequest struct {
	Player         PlayerDto `json:"player"`
	MatchID        string    `json:"matchId"`
	PawnToPromote  PieceRef  `json:"pawnToPromote"`
	NewPieceSymbol string    `json:"newPieceSymbol"`
}
