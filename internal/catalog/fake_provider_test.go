package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ariefcatur/go-catalog-orders/internal/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type stmt struct {
	sql  string
	args []any
}

// fakeProvider records the statements a repository issues. Statements run
// inside WithTx only reach committed when the callback returns nil. The
// failExec-th Exec (1-based, counted per unit of work) returns failErr.
type fakeProvider struct {
	failExec int
	failErr  error
	// row answers every QueryRow; rowErr wins when set.
	row    []any
	rowErr error
	// affected is reported by every successful Exec.
	affected int64

	committed []stmt
	rollbacks int
}

var _ postgres.Provider = (*fakeProvider)(nil)

func (p *fakeProvider) WithConn(ctx context.Context, fn func(q postgres.Querier) error) error {
	q := &fakeQuerier{p: p}
	err := fn(q)
	p.committed = append(p.committed, q.stmts...)
	return err
}

func (p *fakeProvider) WithTx(ctx context.Context, fn func(q postgres.Querier) error) error {
	q := &fakeQuerier{p: p}
	if err := fn(q); err != nil {
		p.rollbacks++
		return err
	}
	p.committed = append(p.committed, q.stmts...)
	return nil
}

func (p *fakeProvider) committedSQL() []string {
	out := make([]string, 0, len(p.committed))
	for _, s := range p.committed {
		out = append(out, s.sql)
	}
	return out
}

type fakeQuerier struct {
	p     *fakeProvider
	execs int
	stmts []stmt
}

func (q *fakeQuerier) record(sql string, args []any) {
	q.stmts = append(q.stmts, stmt{sql: strings.Join(strings.Fields(sql), " "), args: args})
}

func (q *fakeQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.execs++
	if q.execs == q.p.failExec {
		return pgconn.CommandTag{}, q.p.failErr
	}
	q.record(sql, args)
	return pgconn.NewCommandTag(fmt.Sprintf("UPDATE %d", q.p.affected)), nil
}

func (q *fakeQuerier) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("fakeQuerier: Query not supported")
}

func (q *fakeQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	if q.p.rowErr != nil {
		return fakeRow{err: q.p.rowErr}
	}
	q.record(sql, args)
	return fakeRow{vals: q.p.row}
}

func (q *fakeQuerier) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }

type fakeRow struct {
	vals []any
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.vals) {
		return fmt.Errorf("fakeRow: %d destinations for %d values", len(dest), len(r.vals))
	}
	for i, d := range dest {
		switch d := d.(type) {
		case *int64:
			*d = r.vals[i].(int64)
		default:
			return fmt.Errorf("fakeRow: unsupported destination %T", d)
		}
	}
	return nil
}
