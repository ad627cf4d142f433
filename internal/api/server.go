package api

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/park285/cheese-match/internal/chess"
	"github.com/park285/cheese-match/internal/lobby"
	"github.com/park285/cheese-match/internal/msgcat"
	"github.com/park285/cheese-match/internal/obslog"
	"github.com/park285/cheese-match/internal/pvpchess"
	"github.com/park285/cheese-match/pkg/chessdto"
)

// MatchService is the match orchestration the API drives.
type MatchService interface {
	CreateMatch(ctx context.Context, host chess.Player) (*chess.Match, chess.Color, error)
	Connect(ctx context.Context, player chess.Player, matchID string) (*chess.Match, chess.Color, error)
	Move(ctx context.Context, player chess.Player, matchID string, ref pvpchess.PieceRef, target chess.Coordinate) (*chess.Match, error)
	Promote(ctx context.Context, player chess.Player, matchID string, ref pvpchess.PieceRef, symbol string) (*chess.Match, error)
	Tie(ctx context.Context, matchID string) (*chess.Match, error)
	Get(ctx context.Context, matchID string) (*chess.Match, error)
	RenderBoard(ctx context.Context, matchID, viewer string) ([]byte, error)
}

type Queue interface {
	Enqueue(ctx context.Context, player string) (*lobby.Ticket, error)
	Status(ctx context.Context, player string) (*lobby.Ticket, error)
	Leave(ctx context.Context, player string) error
}

type Server struct {
	matches       MatchService
	queue         Queue
	msgs          *msgcat.Catalog
	allowedOrigin string
	timeout       time.Duration
}

func NewServer(matches MatchService, queue Queue, msgs *msgcat.Catalog, allowedOrigin string) *Server {
	return &Server{
		matches:       matches,
		queue:         queue,
		msgs:          msgs,
		allowedOrigin: strings.TrimSpace(allowedOrigin),
		timeout:       10 * time.Second,
	}
}

// Handler routes requests; every response carries the CORS headers.
func (s *Server) Handler(ctx *fasthttp.RequestCtx) {
	start := time.Now()
	s.setCORS(ctx)
	if ctx.IsOptions() {
		ctx.SetStatusCode(fasthttp.StatusNoContent)
		return
	}

	method := string(ctx.Method())
	parts := splitPath(string(ctx.Path()))
	s.route(ctx, method, parts)

	obslog.L().Debug("http_request",
		zap.String("method", method),
		zap.ByteString("path", ctx.Path()),
		zap.Int("status", ctx.Response.StatusCode()),
		zap.Duration("elapsed", time.Since(start)),
	)
}

func (s *Server) route(ctx *fasthttp.RequestCtx, method string, parts []string) {
	switch {
	case method == fasthttp.MethodGet && len(parts) == 1 && parts[0] == "healthz":
		writeJSON(ctx, fasthttp.StatusOK, map[string]string{"status": "ok"})
	case len(parts) < 2 || parts[0] != "match":
		s.notFound(ctx)
	case method == fasthttp.MethodPost && len(parts) == 2 && parts[1] == "create":
		s.createMatch(ctx)
	case method == fasthttp.MethodPut && len(parts) == 2 && parts[1] == "connect":
		s.connect(ctx)
	case method == fasthttp.MethodPost && len(parts) == 3 && parts[1] == "connect" && parts[2] == "matchesQueue":
		s.enqueue(ctx)
	case method == fasthttp.MethodGet && len(parts) == 3 && parts[1] == "queue":
		s.queueStatus(ctx, parts[2])
	case method == fasthttp.MethodDelete && len(parts) == 3 && parts[1] == "queue":
		s.leaveQueue(ctx, parts[2])
	case method == fasthttp.MethodPut && len(parts) == 2 && parts[1] == "gameplay":
		s.gameplay(ctx)
	case method == fasthttp.MethodPut && len(parts) == 2 && parts[1] == "promote":
		s.promote(ctx)
	case method == fasthttp.MethodPut && len(parts) == 3 && parts[1] == "tieMatch":
		s.tie(ctx, parts[2])
	case method == fasthttp.MethodGet && len(parts) == 3 && parts[2] == "board.png":
		s.board(ctx, parts[1])
	case method == fasthttp.MethodGet && len(parts) == 2:
		s.getMatch(ctx, parts[1])
	default:
		s.notFound(ctx)
	}
}

func (s *Server) createMatch(ctx *fasthttp.RequestCtx) {
	var req chessdto.CreateMatchRequest
	if !s.decode(ctx, &req) {
		return
	}
	name := strings.TrimSpace(req.Player.Name)
	if name == "" {
		name = lobby.GuestName()
	}
	c, cancel := s.context()
	defer cancel()
	match, color, err := s.matches.CreateMatch(c, chess.Player{Name: name})
	if err != nil {
		s.fail(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, chessdto.MatchWithPlayerTeam{Match: pvpchess.ToDTO(match), Team: string(color)})
}

func (s *Server) connect(ctx *fasthttp.RequestCtx) {
	var req chessdto.ConnectRequest
	if !s.decode(ctx, &req) {
		return
	}
	c, cancel := s.context()
	defer cancel()
	match, color, err := s.matches.Connect(c, chess.Player{Name: req.Player.Name}, req.GameID)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, chessdto.MatchWithPlayerTeam{Match: pvpchess.ToDTO(match), Team: string(color)})
}

func (s *Server) enqueue(ctx *fasthttp.RequestCtx) {
	var req chessdto.QueueRequest
	if !s.decode(ctx, &req) {
		return
	}
	c, cancel := s.context()
	defer cancel()
	ticket, err := s.queue.Enqueue(c, req.Player.Name)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, ticketDTO(ticket))
}

func (s *Server) queueStatus(ctx *fasthttp.RequestCtx, player string) {
	c, cancel := s.context()
	defer cancel()
	ticket, err := s.queue.Status(c, player)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, ticketDTO(ticket))
}

func (s *Server) leaveQueue(ctx *fasthttp.RequestCtx, player string) {
	c, cancel := s.context()
	defer cancel()
	if err := s.queue.Leave(c, player); err != nil {
		s.fail(ctx, err)
		return
	}
	ctx.SetStatusCode(fasthttp.StatusNoContent)
}

func (s *Server) gameplay(ctx *fasthttp.RequestCtx) {
	var req chessdto.GameplayRequest
	if !s.decode(ctx, &req) {
		return
	}
	c, cancel := s.context()
	defer cancel()
	match, err := s.matches.Move(c, chess.Player{Name: req.Player.Name}, req.MatchID,
		pieceRef(req.PieceToMove), chess.Coord(req.Target.X, req.Target.Y))
	if err != nil {
		s.fail(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, pvpchess.ToDTO(match))
}

func (s *Server) promote(ctx *fasthttp.RequestCtx) {
	var req chessdto.PromoteRequest
	if !s.decode(ctx, &req) {
		return
	}
	c, cancel := s.context()
	defer cancel()
	match, err := s.matches.Promote(c, chess.Player{Name: req.Player.Name}, req.MatchID,
		pieceRef(req.PawnToPromote), req.NewPieceSymbol)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, pvpchess.ToDTO(match))
}

func (s *Server) tie(ctx *fasthttp.RequestCtx, matchID string) {
	c, cancel := s.context()
	defer cancel()
	match, err := s.matches.Tie(c, matchID)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, pvpchess.ToDTO(match))
}

func (s *Server) getMatch(ctx *fasthttp.RequestCtx, matchID string) {
	c, cancel := s.context()
	defer cancel()
	match, err := s.matches.Get(c, matchID)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, pvpchess.ToDTO(match))
}

func (s *Server) board(ctx *fasthttp.RequestCtx, matchID string) {
	c, cancel := s.context()
	defer cancel()
	viewer := string(ctx.QueryArgs().Peek("viewer"))
	png, err := s.matches.RenderBoard(c, matchID, viewer)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetContentType("image/png")
	ctx.Response.Header.Set("Cache-Control", "no-store")
	ctx.SetBody(png)
}

func (s *Server) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

func (s *Server) decode(ctx *fasthttp.RequestCtx, dst any) bool {
	body := ctx.PostBody()
	if len(body) == 0 {
		body = []byte("{}")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		s.writeError(ctx, errorKind{fasthttp.StatusBadRequest, "invalid_args", false}, err)
		return false
	}
	return true
}

func (s *Server) notFound(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, fasthttp.StatusNotFound, chessdto.DomainError{Code: "not_found", Message: "no such endpoint"})
}

func (s *Server) fail(ctx *fasthttp.RequestCtx, err error) {
	kind := classify(err)
	if errors.Is(err, context.DeadlineExceeded) {
		kind = errorKind{fasthttp.StatusGatewayTimeout, "timeout", true}
	}
	if kind.status >= 500 {
		obslog.L().Error("http_request_error", zap.ByteString("path", ctx.Path()), zap.String("code", kind.code), zap.Error(err))
	}
	s.writeError(ctx, kind, err)
}

func (s *Server) writeError(ctx *fasthttp.RequestCtx, kind errorKind, err error) {
	msg := s.msgs.Text("errors."+kind.code, map[string]string{"Detail": err.Error()}, err.Error())
	writeJSON(ctx, kind.status, chessdto.DomainError{Code: kind.code, Message: msg, Retryable: kind.retryable})
}

func (s *Server) setCORS(ctx *fasthttp.RequestCtx) {
	if s.allowedOrigin == "" {
		return
	}
	h := &ctx.Response.Header
	h.Set("Access-Control-Allow-Origin", s.allowedOrigin)
	h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
	h.Set("Vary", "Origin")
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(raw)
}

func splitPath(p string) []string {
	var out []string
	for _, part := range strings.Split(p, "/") {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func pieceRef(r chessdto.PieceRef) pvpchess.PieceRef {
	return pvpchess.PieceRef{ID: r.ID, X: r.X, Y: r.Y}
}

func ticketDTO(t *lobby.Ticket) chessdto.PlayerInQueueResponse {
	return chessdto.PlayerInQueueResponse{
		Player:  chessdto.PlayerDto{Name: t.Player},
		Waiting: t.Waiting,
		MatchID: t.MatchID,
		Team:    string(t.Team),
	}
}
