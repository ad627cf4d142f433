package notify

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/park285/cheese-match/pkg/chessdto"
)

const channelPrefix = "game-progress:"

// Channel is the Redis channel carrying updates of one match.
func Channel(matchID string) string { return channelPrefix + strings.TrimSpace(matchID) }

type RedisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

func (p *RedisPublisher) PublishMatch(ctx context.Context, matchID string, view *chessdto.MatchDto) error {
	raw, err := json.Marshal(view)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, Channel(matchID), raw).Err()
}

// Nop discards every update.
type Nop struct{}

func (Nop) PublishMatch(context.Context, string, *chessdto.MatchDto) error { return nil }
