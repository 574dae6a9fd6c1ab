package outbox

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/let4be/relabuf/pkg/errors"
)

// Producer inserts rows into the outbox table the Source claims from. The
// integration tests use it to seed rows; relabufd run does not start one.
type Producer struct {
	pool  *pgxpool.Pool
	table string
}

// NewProducer builds a Producer over an already-migrated table.
func NewProducer(pool *pgxpool.Pool, table string) *Producer {
	return &Producer{pool: pool, table: table}
}

// Insert writes a single unprocessed row with a fresh UUID.
func (p *Producer) Insert(ctx context.Context, payload []byte) (uuid.UUID, error) {
	id := uuid.New()
	_, err := p.pool.Exec(ctx, `INSERT INTO `+p.table+` (id, payload) VALUES ($1, $2)`, id, payload)
	if err != nil {
		return uuid.Nil, errors.Wrap(err, errors.CodeSourceUnavailable, "outbox: insert failed")
	}
	return id, nil
}
