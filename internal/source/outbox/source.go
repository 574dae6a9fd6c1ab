package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/let4be/relabuf/internal/platform/logging"
	"github.com/let4be/relabuf/pkg/errors"
)

// Record is one claimed outbox row. tx is the open transaction that holds
// the row lock acquired by the claiming SELECT ... FOR UPDATE SKIP LOCKED;
// it stays open until Confirm commits it or Return rolls it back.
type Record struct {
	ID        uuid.UUID
	Payload   []byte
	CreatedAt time.Time

	tx pgx.Tx
}

// Pool abstracts *pgxpool.Pool for testing.
type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Source is a relabuf.PullSource[Record] backed by a `table` of rows with a
// nullable processed_at marker. Pull claims exactly one unprocessed row per
// invocation with `SELECT ... FOR UPDATE SKIP LOCKED LIMIT 1`, matching the
// core's "invoked at most once concurrently" contract (§6/§C.4). The claim
// holds its row lock in an open transaction until the caller Confirms or
// Returns the batch it landed in.
type Source struct {
	pool   Pool
	table  string
	logger logging.Logger
}

// NewSource builds a Source over an already-migrated table.
func NewSource(pool *pgxpool.Pool, table string, logger logging.Logger) *Source {
	return &Source{pool: pool, table: table, logger: logger}
}

// Pull claims and returns the oldest unprocessed row, polling until one is
// available or ctx is cancelled.
func (s *Source) Pull(ctx context.Context) (Record, error) {
	for {
		rec, found, err := s.claimOne(ctx)
		if err != nil {
			return Record{}, errors.Wrap(err, errors.CodeSourceUnavailable, "outbox: claim failed")
		}
		if found {
			return rec, nil
		}

		select {
		case <-time.After(50 * time.Millisecond):
		case <-ctx.Done():
			return Record{}, ctx.Err()
		}
	}
}

func (s *Source) claimOne(ctx context.Context) (Record, bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Record{}, false, err
	}

	query := `SELECT id, payload, created_at FROM ` + s.table + `
		WHERE processed_at IS NULL
		ORDER BY created_at
		FOR UPDATE SKIP LOCKED
		LIMIT 1`

	var rec Record
	err = tx.QueryRow(ctx, query).Scan(&rec.ID, &rec.Payload, &rec.CreatedAt)
	if err != nil {
		_ = tx.Rollback(ctx)
		if err == pgx.ErrNoRows {
			return Record{}, false, nil
		}
		return Record{}, false, err
	}

	rec.tx = tx
	return rec, true, nil
}

// Confirm marks every record in a successfully processed batch as done and
// commits its claiming transaction, releasing the row lock permanently.
func (s *Source) Confirm(ctx context.Context, records []Record) error {
	for _, r := range records {
		if r.tx == nil {
			continue
		}
		_, err := r.tx.Exec(ctx, `UPDATE `+s.table+` SET processed_at = now() WHERE id = $1`, r.ID)
		if err != nil {
			_ = r.tx.Rollback(ctx)
			return errors.Wrap(err, errors.CodeOutboxConflict, "outbox: failed to mark row processed")
		}
		if err := r.tx.Commit(ctx); err != nil {
			return errors.Wrap(err, errors.CodeOutboxConflict, "outbox: failed to commit claim")
		}
	}
	return nil
}

// Return rolls back every record's claiming transaction, releasing the row
// lock so the next Pull (from this process or another) can claim it again —
// a textbook outbox-pattern retry, grounded in the core's existing
// return-on-error contract rather than inventing a new one (§C.4).
func (s *Source) Return(records []Record) {
	for _, r := range records {
		if r.tx == nil {
			continue
		}
		_ = r.tx.Rollback(context.Background())
	}
}
