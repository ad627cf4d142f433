package chessbuilder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/park285/cheese-match/internal/api"
	"github.com/park285/cheese-match/internal/config"
	"github.com/park285/cheese-match/internal/lobby"
	"github.com/park285/cheese-match/internal/msgcat"
	"github.com/park285/cheese-match/internal/notify"
	"github.com/park285/cheese-match/internal/obslog"
	"github.com/park285/cheese-match/internal/pvpchess"
)

// Deps is everything the match server runs on.
type Deps struct {
	Redis   *redis.Client
	Matches *pvpchess.Manager
	Lobby   *lobby.Manager
	Hub     *notify.Hub
	API     *api.Server

	closers []func() error
}

// New connects Redis and, when DATABASE_URL is set, Postgres, then wires
// the managers, the progress hub and the HTTP API.
func New(ctx context.Context, cfg *config.AppConfig) (*Deps, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rdb, err := pvpchess.NewRedisClient(pingCtx, cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("init redis: %w", err)
	}
	d := &Deps{Redis: rdb}

	repo, err := d.repository(pingCtx, cfg)
	if err != nil {
		_ = d.Close()
		return nil, err
	}

	msgs, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("load messages: %w", err)
	}

	d.Matches = pvpchess.NewManager(rdb,
		pvpchess.WithRepository(repo),
		pvpchess.WithPublisher(notify.NewRedisPublisher(rdb)),
		pvpchess.WithTTL(cfg.MatchTTL()),
	)
	d.Lobby = lobby.NewManager(rdb, d.Matches, cfg.QueueTTL())
	d.Hub = notify.NewHub(rdb, cfg.AllowedOrigin)
	d.API = api.NewServer(d.Matches, d.Lobby, msgs, cfg.AllowedOrigin)
	d.closers = append(d.closers, d.Matches.Close)
	return d, nil
}

func (d *Deps) repository(ctx context.Context, cfg *config.AppConfig) (pvpchess.Repository, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		obslog.L().Warn("match_repository_memory", zap.String("reason", "DATABASE_URL not set"))
		return pvpchess.NewMemoryRepository(), nil
	}
	repo, err := pvpchess.NewPostgresRepository(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	d.closers = append(d.closers, repo.Close)
	if cfg.MigrateDB {
		if err := repo.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		obslog.L().Info("match_repository_migrated")
	}
	return repo, nil
}

// Close releases the repository and then Redis.
func (d *Deps) Close() error {
	var first error
	for _, c := range d.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	if d.Matches == nil && d.Redis != nil {
		if err := d.Redis.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
