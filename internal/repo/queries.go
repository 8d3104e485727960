package repo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX é satisfeito tanto por *pgxpool.Pool quanto por pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queries agrupa o acesso SQL do serviço.
type Queries struct {
	db DBTX
}

// New cria Queries sobre pool ou transação.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx devolve cópia ligada à transação informada.
func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}
