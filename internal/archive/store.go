package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"buzzergo/internal/services/buzzer"
)

const schema = `
CREATE TABLE IF NOT EXISTS buzz_rounds (
    id         BIGSERIAL   PRIMARY KEY,
    room_code  TEXT        NOT NULL,
    round      INTEGER     NOT NULL,
    buzz_order JSONB       NOT NULL,
    closed_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS buzz_rounds_room_code_idx ON buzz_rounds (room_code, closed_at DESC);`

// Store persists finished rounds to Postgres.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("archive schema: %w", err)
	}
	return nil
}

// Insert writes all records in one transaction.
func (s *Store) Insert(ctx context.Context, recs []buzzer.RoundRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const ins = `INSERT INTO buzz_rounds (room_code, round, buzz_order, closed_at)
	             VALUES ($1, $2, $3, $4)`
	for _, rec := range recs {
		order, err := json.Marshal(rec.BuzzOrder)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, ins, rec.RoomCode, rec.Round, string(order), rec.ClosedAt.UTC()); err != nil {
			return fmt.Errorf("insert round %s/%d: %w", rec.RoomCode, rec.Round, err)
		}
	}
	return tx.Commit()
}

// ListRounds returns the newest rounds of a room first.
func (s *Store) ListRounds(ctx context.Context, roomCode string, limit int) ([]buzzer.RoundRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `SELECT room_code, round, buzz_order, closed_at
	             FROM buzz_rounds
	            WHERE room_code = $1
	         ORDER BY closed_at DESC
	            LIMIT $2`
	rows, err := s.db.QueryContext(ctx, q, roomCode, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]buzzer.RoundRecord, 0, limit)
	for rows.Next() {
		var (
			rec   buzzer.RoundRecord
			order []byte
		)
		if err := rows.Scan(&rec.RoomCode, &rec.Round, &order, &rec.ClosedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(order, &rec.BuzzOrder); err != nil {
			return nil, fmt.Errorf("decode buzz order: %w", err)
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}
