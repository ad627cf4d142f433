package lobby

import (
	"context"
	"errors"
	"strings"
	"time"

	petname "github.com/dustinkirkland/golang-petname"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/park285/cheese-match/internal/chess"
	"github.com/park285/cheese-match/internal/obslog"
)

const defaultQueueTTL = 10 * time.Minute

// Manager pairs players from a Redis queue. The player who waited longest
// gets white.
type Manager struct {
	rdb     *redis.Client
	store   *Store
	matches MatchCreator
}

func NewManager(rdb *redis.Client, matches MatchCreator, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = defaultQueueTTL
	}
	return &Manager{rdb: rdb, store: NewStore(rdb, ttl), matches: matches}
}

// GuestName returns a readable throwaway player name.
func GuestName() string {
	return "guest-" + petname.Generate(2, "-")
}

// Enqueue adds player to the queue, or pairs them with the oldest waiting
// player. An empty name is replaced with a guest name.
func (m *Manager) Enqueue(ctx context.Context, player string) (*Ticket, error) {
	player = strings.TrimSpace(player)
	if player == "" {
		player = GuestName()
	}

	if a, err := m.store.LoadAssignment(ctx, player); err != nil {
		return nil, err
	} else if a != nil {
		return &Ticket{Player: player, MatchID: a.MatchID, Team: chess.Color(a.Team)}, nil
	}

	queueKey := m.store.keyQueue()
	var opponent string
	err := m.rdb.Watch(ctx, func(tx *redis.Tx) error {
		opponent = ""
		waiting, err := tx.LRange(ctx, queueKey, 0, -1).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		var stale []string
		queued := false
		for _, w := range waiting {
			n, err := tx.Exists(ctx, m.store.keyWaiting(w)).Result()
			if err != nil {
				return err
			}
			switch {
			case n == 0:
				stale = append(stale, w)
			case w == player:
				queued = true
			case opponent == "":
				opponent = w
			}
		}

		pipe := tx.TxPipeline()
		for _, w := range stale {
			pipe.LRem(ctx, queueKey, 0, w)
		}
		switch {
		case queued:
			// Already waiting; keep the place in line.
			opponent = ""
			pipe.Expire(ctx, m.store.keyWaiting(player), m.store.ttl)
		case opponent != "":
			pipe.LRem(ctx, queueKey, 0, opponent)
			pipe.Del(ctx, m.store.keyWaiting(opponent))
		default:
			pipe.RPush(ctx, queueKey, player)
			pipe.Set(ctx, m.store.keyWaiting(player), "1", m.store.ttl)
		}
		_, err = pipe.Exec(ctx)
		return err
	}, queueKey)
	if err != nil {
		obslog.L().Warn("lobby_enqueue_error", zap.String("player", player), zap.Error(err))
		return nil, err
	}

	if opponent == "" {
		obslog.L().Info("lobby_enqueue", zap.String("player", player))
		return &Ticket{Player: player, Waiting: true}, nil
	}

	match, err := m.matches.CreateMatchWithPlayers(ctx, opponent, player)
	if err != nil {
		if rerr := m.store.Requeue(ctx, opponent); rerr != nil {
			obslog.L().Error("lobby_requeue_error", zap.String("player", opponent), zap.Error(rerr))
		}
		return nil, err
	}
	if err := m.store.SaveAssignment(ctx, opponent, assignment{MatchID: match.ID, Team: string(chess.White)}); err != nil {
		return nil, err
	}
	if err := m.store.SaveAssignment(ctx, player, assignment{MatchID: match.ID, Team: string(chess.Black)}); err != nil {
		return nil, err
	}
	obslog.L().Info("lobby_paired",
		zap.String("match_id", match.ID),
		zap.String("white", opponent),
		zap.String("black", player),
	)
	return &Ticket{Player: player, MatchID: match.ID, Team: chess.Black}, nil
}

// Status reports whether player is still waiting or has been paired.
func (m *Manager) Status(ctx context.Context, player string) (*Ticket, error) {
	player = strings.TrimSpace(player)
	if player == "" {
		return nil, ErrInvalidArgs
	}
	a, err := m.store.LoadAssignment(ctx, player)
	if err != nil {
		return nil, err
	}
	if a != nil {
		return &Ticket{Player: player, MatchID: a.MatchID, Team: chess.Color(a.Team)}, nil
	}
	waiting, err := m.store.IsWaiting(ctx, player)
	if err != nil {
		return nil, err
	}
	if !waiting {
		return nil, ErrNotQueued
	}
	return &Ticket{Player: player, Waiting: true}, nil
}

// Leave drops player from the queue and forgets any pending assignment.
func (m *Manager) Leave(ctx context.Context, player string) error {
	player = strings.TrimSpace(player)
	if player == "" {
		return ErrInvalidArgs
	}
	if err := m.store.Remove(ctx, player); err != nil {
		return err
	}
	obslog.L().Info("lobby_leave", zap.String("player", player))
	return nil
}
