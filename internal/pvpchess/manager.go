package pvpchess

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/park285/cheese-match/internal/chess"
	"github.com/park285/cheese-match/internal/obslog"
	"github.com/park285/cheese-match/internal/render"
)

const defaultMatchTTL = 24 * time.Hour

// Manager runs match operations against the Redis copy of each match. Every
// mutation is a WATCH/MULTI transaction on match:<id>, so two requests for
// the same match never interleave.
type Manager struct {
	rdb       *redis.Client
	repo      Repository
	publisher Publisher
	renderer  render.BoardRenderer
	coin      chess.Coin
	ttl       time.Duration
}

type Option func(*Manager)

// WithRepository persists every committed change. Without one, an expired
// Redis entry is gone for good.
func WithRepository(r Repository) Option { return func(m *Manager) { m.repo = r } }

func WithPublisher(p Publisher) Option { return func(m *Manager) { m.publisher = p } }

func WithRenderer(r render.BoardRenderer) Option { return func(m *Manager) { m.renderer = r } }

// WithCoin overrides the host color draw used by CreateMatch.
func WithCoin(c chess.Coin) Option { return func(m *Manager) { m.coin = c } }

func WithTTL(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.ttl = d
		}
	}
}

func NewManager(rdb *redis.Client, opts ...Option) *Manager {
	m := &Manager{rdb: rdb, ttl: defaultMatchTTL, coin: chess.CryptoCoin}
	for _, opt := range opts {
		opt(m)
	}
	if m.renderer == nil {
		m.renderer = render.NewPNGRenderer()
	}
	return m
}

// NewRedisClient parses a redis:// URL and pings the server.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL required for match manager")
	}
	opts, err := parseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func (m *Manager) Close() error {
	if m == nil || m.rdb == nil {
		return nil
	}
	return m.rdb.Close()
}

// CreateMatch opens a match hosted by host; the host's color is drawn by
// the manager's coin and the match waits in NEW for a second player.
func (m *Manager) CreateMatch(ctx context.Context, host chess.Player) (*chess.Match, chess.Color, error) {
	name := strings.TrimSpace(host.Name)
	if name == "" {
		return nil, "", ErrInvalidArgs
	}
	match := chess.NewHostedMatch(chess.Player{Name: name}, m.coin)
	if err := m.insert(ctx, match); err != nil {
		return nil, "", err
	}
	color, _ := match.ColorOf(name)
	m.committed(ctx, EventCreated, match, zap.String("host", name), zap.String("host_color", color.String()))
	return match, color, nil
}

// CreateMatchWithPlayers starts a match that is IN_PROGRESS right away.
func (m *Manager) CreateMatchWithPlayers(ctx context.Context, white, black string) (*chess.Match, error) {
	white, black = strings.TrimSpace(white), strings.TrimSpace(black)
	if white == "" || black == "" || white == black {
		return nil, ErrInvalidArgs
	}
	match := chess.NewMatch(white, black)
	if err := m.insert(ctx, match); err != nil {
		return nil, err
	}
	m.committed(ctx, EventCreated, match, zap.String("white", white), zap.String("black", black))
	return match, nil
}

// Connect seats player in the open slot. A player already seated gets
// their color back unchanged.
func (m *Manager) Connect(ctx context.Context, player chess.Player, matchID string) (*chess.Match, chess.Color, error) {
	name := strings.TrimSpace(player.Name)
	if name == "" {
		return nil, "", ErrInvalidArgs
	}
	var color chess.Color
	match, err := m.update(ctx, matchID, func(cur *chess.Match) error {
		if c, ok := cur.ColorOf(name); ok {
			color = c
			return nil
		}
		c, err := cur.Join(chess.Player{Name: name})
		color = c
		return err
	})
	if err != nil {
		return nil, "", err
	}
	m.committed(ctx, EventConnected, match, zap.String("player", name), zap.String("color", color.String()))
	return match, color, nil
}

// Move moves the player's piece referenced by ref onto target.
func (m *Manager) Move(ctx context.Context, player chess.Player, matchID string, ref PieceRef, target chess.Coordinate) (*chess.Match, error) {
	name := strings.TrimSpace(player.Name)
	var (
		from     chess.Coordinate
		pieceID  int
		captured *chess.Piece
	)
	match, err := m.update(ctx, matchID, func(cur *chess.Match) error {
		color, ok := cur.ColorOf(name)
		if !ok {
			return ErrNotParticipant
		}
		piece, err := resolvePiece(cur, color, ref)
		if err != nil {
			return err
		}
		from, pieceID = piece.Pos, piece.ID
		captured, err = cur.Move(piece, target)
		return err
	})
	if err != nil {
		return nil, err
	}
	fields := []zap.Field{
		zap.String("player", name),
		zap.Int("piece_id", pieceID),
		zap.String("from", from.String()),
		zap.String("to", target.String()),
	}
	if captured != nil {
		fields = append(fields, zap.Int("captured_id", captured.ID))
	}
	m.committed(ctx, EventMoved, match, fields...)
	return match, nil
}

// Promote replaces the player's pawn on its last rank with the piece named
// by symbol (Q, R, B or N).
func (m *Manager) Promote(ctx context.Context, player chess.Player, matchID string, ref PieceRef, symbol string) (*chess.Match, error) {
	name := strings.TrimSpace(player.Name)
	symbol = strings.TrimSpace(symbol)
	if len(symbol) != 1 {
		return nil, fmt.Errorf("%w: unknown piece symbol %q", chess.ErrIllegalMovement, symbol)
	}
	kind, ok := chess.ParseKind(symbol[0])
	if !ok {
		return nil, fmt.Errorf("%w: unknown piece symbol %q", chess.ErrIllegalMovement, symbol)
	}
	var promoted *chess.Piece
	match, err := m.update(ctx, matchID, func(cur *chess.Match) error {
		color, ok := cur.ColorOf(name)
		if !ok {
			return ErrNotParticipant
		}
		pawn, err := resolvePiece(cur, color, ref)
		if err != nil {
			return err
		}
		promoted, err = cur.PromotePawn(pawn, kind)
		return err
	})
	if err != nil {
		return nil, err
	}
	m.committed(ctx, EventPromoted, match,
		zap.String("player", name),
		zap.Int("piece_id", promoted.ID),
		zap.String("kind", promoted.Kind.String()),
		zap.String("square", promoted.Pos.String()),
	)
	return match, nil
}

// Tie ends an IN_PROGRESS match as TIED.
func (m *Manager) Tie(ctx context.Context, matchID string) (*chess.Match, error) {
	match, err := m.update(ctx, matchID, func(cur *chess.Match) error {
		return cur.Tie()
	})
	if err != nil {
		return nil, err
	}
	m.committed(ctx, EventTied, match)
	return match, nil
}

// Get returns the current state of a match, reading through to the
// repository when Redis no longer holds it.
func (m *Manager) Get(ctx context.Context, matchID string) (*chess.Match, error) {
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return nil, ErrInvalidArgs
	}
	return m.load(ctx, m.rdb, matchID)
}

func resolvePiece(match *chess.Match, color chess.Color, ref PieceRef) (*chess.Piece, error) {
	var p *chess.Piece
	if ref.ID != 0 {
		p = match.PieceByID(ref.ID)
	} else {
		p = match.PieceAt(chess.Coord(ref.X, ref.Y))
	}
	if p == nil || !p.Alive || p.Color != color {
		return nil, fmt.Errorf("%w: no live %s piece for id=%d at (%d,%d)", chess.ErrPieceNotFound, color, ref.ID, ref.X, ref.Y)
	}
	return p, nil
}

func (m *Manager) update(ctx context.Context, matchID string, fn func(*chess.Match) error) (*chess.Match, error) {
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return nil, ErrInvalidArgs
	}
	key := matchKey(matchID)
	var out *chess.Match
	err := m.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := m.load(ctx, tx, matchID)
		if err != nil {
			return err
		}
		if err := fn(cur); err != nil {
			return err
		}
		raw, err := json.Marshal(cur)
		if err != nil {
			return err
		}
		pipe := tx.TxPipeline()
		pipe.Set(ctx, key, raw, m.ttl)
		if _, err := pipe.Exec(ctx); err != nil {
			return err
		}
		out = cur
		return nil
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		obslog.L().Warn("match_concurrent_update", zap.String("match_id", matchID))
		return nil, ErrConcurrentUpdate
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (m *Manager) insert(ctx context.Context, match *chess.Match) error {
	raw, err := json.Marshal(match)
	if err != nil {
		return err
	}
	ok, err := m.rdb.SetNX(ctx, matchKey(match.ID), raw, m.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("match id collision: %s", match.ID)
	}
	return nil
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (m *Manager) load(ctx context.Context, rc stringGetter, matchID string) (*chess.Match, error) {
	raw, err := rc.Get(ctx, matchKey(matchID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return m.loadFromRepository(ctx, matchID)
	}
	if err != nil {
		return nil, err
	}
	var match chess.Match
	if err := json.Unmarshal(raw, &match); err != nil {
		return nil, fmt.Errorf("decode match %s: %w", matchID, err)
	}
	return &match, nil
}

func (m *Manager) loadFromRepository(ctx context.Context, matchID string) (*chess.Match, error) {
	if m.repo == nil {
		return nil, ErrMatchNotFound
	}
	match, err := m.repo.LoadMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match == nil {
		return nil, ErrMatchNotFound
	}
	obslog.L().Info("match_restored_from_repository", zap.String("match_id", matchID))
	return match, nil
}

// committed fans a stored change out to subscribers and the repository.
// Failures here are logged; Redis already holds the new state.
func (m *Manager) committed(ctx context.Context, ev Event, match *chess.Match, fields ...zap.Field) {
	base := []zap.Field{
		zap.String("match_id", match.ID),
		zap.String("status", string(match.Status)),
		zap.String("turn", match.Turn().String()),
	}
	if match.Winner != nil {
		base = append(base, zap.String("winner", match.Winner.Name))
	}
	obslog.L().Info("match_"+string(ev), append(base, fields...)...)

	if m.publisher != nil {
		if err := m.publisher.PublishMatch(ctx, match.ID, ToDTO(match)); err != nil {
			obslog.L().Error("match_publish_error", zap.String("match_id", match.ID), zap.Error(err))
		}
	}
	if m.repo != nil {
		if err := m.repo.SaveMatch(ctx, match); err != nil {
			obslog.L().Error("match_persist_error", zap.String("match_id", match.ID), zap.Error(err))
		}
	}
}

func matchKey(id string) string { return "match:" + strings.TrimSpace(id) }

func parseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redis db %q", p)
		}
		db = n
	}
	pass, _ := u.User.Password()
	return &redis.Options{Addr: u.Host, Password: pass, DB: db}, nil
}
