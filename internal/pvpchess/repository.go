package pvpchess

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/park285/cheese-match/internal/chess"
	"github.com/park285/cheese-match/internal/domain"
)

//go:embed schema.sql
var schemaSQL string

// Repository is the durable store behind the Redis working copy.
type Repository interface {
	SaveMatch(ctx context.Context, m *chess.Match) error
	// LoadMatch returns nil, nil when the match does not exist.
	LoadMatch(ctx context.Context, id string) (*chess.Match, error)
	LoadPieces(ctx context.Context, matchID string) ([]domain.PieceRecord, error)
}

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(databaseURL string) (*PostgresRepository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Migrate creates the matches and pieces tables when missing.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schemaSQL)
	return err
}

const upsertMatchSQL = `INSERT INTO matches (
    id, created_at, updated_at, status, is_white_turn,
    white_player, black_player, winner, next_piece_id
  ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
  ON CONFLICT (id) DO UPDATE SET
    updated_at=EXCLUDED.updated_at,
    status=EXCLUDED.status,
    is_white_turn=EXCLUDED.is_white_turn,
    white_player=EXCLUDED.white_player,
    black_player=EXCLUDED.black_player,
    winner=EXCLUDED.winner,
    next_piece_id=EXCLUDED.next_piece_id`

const upsertPieceSQL = `INSERT INTO pieces (
    match_id, piece_id, x, y, type, color, is_alive
  ) VALUES ($1,$2,$3,$4,$5,$6,$7)
  ON CONFLICT (match_id, piece_id) DO UPDATE SET
    x=EXCLUDED.x,
    y=EXCLUDED.y,
    type=EXCLUDED.type,
    is_alive=EXCLUDED.is_alive`

// SaveMatch upserts the match row and every piece row in one transaction.
func (r *PostgresRepository) SaveMatch(ctx context.Context, m *chess.Match) (err error) {
	if r == nil || r.db == nil || m == nil {
		return nil
	}
	rec, pieces := Records(m)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, upsertMatchSQL,
		rec.ID, rec.CreatedAt, rec.UpdatedAt, rec.Status, rec.WhiteTurn,
		nullable(rec.WhitePlayer), nullable(rec.BlackPlayer), nullable(rec.Winner), rec.NextPieceID,
	); err != nil {
		return fmt.Errorf("upsert match %s: %w", rec.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, upsertPieceSQL)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, p := range pieces {
		if _, err = stmt.ExecContext(ctx, p.MatchID, p.PieceID, p.X, p.Y, p.Type, p.Color, p.Alive); err != nil {
			return fmt.Errorf("upsert piece %d of match %s: %w", p.PieceID, p.MatchID, err)
		}
	}
	return tx.Commit()
}

func (r *PostgresRepository) LoadMatch(ctx context.Context, id string) (*chess.Match, error) {
	if r == nil || r.db == nil {
		return nil, nil
	}
	var (
		rec                  domain.MatchRecord
		white, black, winner sql.NullString
	)
	row := r.db.QueryRowContext(ctx, `SELECT id, created_at, updated_at, status, is_white_turn,
        white_player, black_player, winner, next_piece_id FROM matches WHERE id = $1`, id)
	err := row.Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt, &rec.Status, &rec.WhiteTurn,
		&white, &black, &winner, &rec.NextPieceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec.WhitePlayer, rec.BlackPlayer, rec.Winner = white.String, black.String, winner.String

	pieces, err := r.LoadPieces(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromRecords(rec, pieces)
}

func (r *PostgresRepository) LoadPieces(ctx context.Context, matchID string) ([]domain.PieceRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT match_id, piece_id, x, y, type, color, is_alive
        FROM pieces WHERE match_id = $1 ORDER BY piece_id`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.PieceRecord
	for rows.Next() {
		var p domain.PieceRecord
		if err := rows.Scan(&p.MatchID, &p.PieceID, &p.X, &p.Y, &p.Type, &p.Color, &p.Alive); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
