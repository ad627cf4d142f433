package lobby

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type assignment struct {
	MatchID string `json:"match_id"`
	Team    string `json:"team"`
}

type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store { return &Store{rdb: rdb, ttl: ttl} }

func (s *Store) keyQueue() string                { return "lobby:queue" }
func (s *Store) keyWaiting(player string) string { return "lobby:waiting:" + strings.TrimSpace(player) }
func (s *Store) keyAssign(player string) string  { return "lobby:assign:" + strings.TrimSpace(player) }

func (s *Store) SaveAssignment(ctx context.Context, player string, a assignment) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.keyAssign(player), raw, s.ttl).Err()
}

func (s *Store) LoadAssignment(ctx context.Context, player string) (*assignment, error) {
	raw, err := s.rdb.Get(ctx, s.keyAssign(player)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var a assignment
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) IsWaiting(ctx context.Context, player string) (bool, error) {
	n, err := s.rdb.Exists(ctx, s.keyWaiting(player)).Result()
	return n > 0, err
}

// Requeue puts player back at the head of the queue.
func (s *Store) Requeue(ctx context.Context, player string) error {
	pipe := s.rdb.TxPipeline()
	pipe.LPush(ctx, s.keyQueue(), player)
	pipe.Set(ctx, s.keyWaiting(player), "1", s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Store) Remove(ctx context.Context, player string) error {
	pipe := s.rdb.TxPipeline()
	pipe.LRem(ctx, s.keyQueue(), 0, player)
	pipe.Del(ctx, s.keyWaiting(player), s.keyAssign(player))
	_, err := pipe.Exec(ctx)
	return err
}
