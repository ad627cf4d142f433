package chess

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Color identifies a side.
type Color string

const (
	White Color = "WHITE"
	Black Color = "BLACK"
)

func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string { return strings.ToLower(string(c)) }

// Kind is the closed set of piece variants.
type Kind byte

const (
	Pawn Kind = iota + 1
	Rook
	Knight
	Bishop
	Queen
	King
)

var kindSymbols = map[Kind]byte{
	Pawn:   'P',
	Rook:   'R',
	Knight: 'N',
	Bishop: 'B',
	Queen:  'Q',
	King:   'K',
}

// Symbol returns the single-character external name (R, N, B, Q, K, P).
func (k Kind) Symbol() byte { return kindSymbols[k] }

func (k Kind) String() string {
	switch k {
	case Pawn:
		return "pawn"
	case Rook:
		return "rook"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Queen:
		return "queen"
	case King:
		return "king"
	default:
		return "unknown"
	}
}

// ParseKind maps a symbol back to a Kind. Lower case is accepted.
func ParseKind(symbol byte) (Kind, bool) {
	s := strings.ToUpper(string(symbol))[0]
	for k, v := range kindSymbols {
		if v == s {
			return k, true
		}
	}
	return 0, false
}

func (k Kind) MarshalJSON() ([]byte, error) {
	if _, ok := kindSymbols[k]; !ok {
		return nil, fmt.Errorf("unknown piece kind %d", k)
	}
	return json.Marshal(string(k.Symbol()))
}

func (k *Kind) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if len(s) != 1 {
		return fmt.Errorf("invalid piece symbol %q", s)
	}
	v, ok := ParseKind(s[0])
	if !ok {
		return fmt.Errorf("invalid piece symbol %q", s)
	}
	*k = v
	return nil
}

// Status is the match lifecycle state.
type Status string

const (
	StatusNew        Status = "NEW"
	StatusInProgress Status = "IN_PROGRESS"
	StatusFinished   Status = "FINISHED"
	StatusTied       Status = "TIED"
)

// Terminal reports whether no further moves are accepted.
func (s Status) Terminal() bool { return s == StatusFinished || s == StatusTied }

// Player is a participant identified by name.
type Player struct {
	Name string `json:"name"`
}
