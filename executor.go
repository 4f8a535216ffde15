package ygggo_session

import (
	"context"
	"database/sql"
)

// execute runs req on the live connection. Failures are returned whole;
// a partially read result set is never handed back.
func (c *liveConn) execute(ctx context.Context, req *QueryRequest) (Outcome, error) {
	if req.argErr != nil && !req.Raw {
		return Outcome{}, req.argErr
	}
	args := req.args()
	out := Outcome{Kind: req.Kind}
	switch req.Kind {
	case QueryRun, QueryExecute:
		res, err := c.exec(ctx, req, args)
		if err != nil {
			return Outcome{}, err
		}
		if req.Kind == QueryExecute {
			out.RowsAffected = nonNegative(res.RowsAffected())
			out.LastInsertID = nonNegative(res.LastInsertId())
		}
		return out, nil
	case QueryFetchOne:
		rs, err := c.query(ctx, req, args)
		if err != nil {
			return Outcome{}, err
		}
		defer rs.Close()
		row, err := encodeFirst(rs)
		if err != nil {
			return Outcome{}, err
		}
		out.Row = row
		return out, nil
	default:
		rs, err := c.query(ctx, req, args)
		if err != nil {
			return Outcome{}, err
		}
		defer rs.Close()
		rows, err := encodeRows(rs)
		if err != nil {
			return Outcome{}, err
		}
		out.Kind = QueryFetchAll
		out.Rows = rows
		return out, nil
	}
}

func (c *liveConn) exec(ctx context.Context, req *QueryRequest, args []any) (sql.Result, error) {
	if !req.Raw && c.stmts.enabled() {
		st, err := c.stmts.get(ctx, c.conn, req.Query)
		if err != nil {
			return nil, err
		}
		return st.ExecContext(ctx, args...)
	}
	return c.conn.ExecContext(ctx, req.Query, args...)
}

func (c *liveConn) query(ctx context.Context, req *QueryRequest, args []any) (*sql.Rows, error) {
	if !req.Raw && c.stmts.enabled() {
		st, err := c.stmts.get(ctx, c.conn, req.Query)
		if err != nil {
			return nil, err
		}
		return st.QueryContext(ctx, args...)
	}
	return c.conn.QueryContext(ctx, req.Query, args...)
}

func nonNegative(n int64, err error) uint64 {
	if err != nil || n < 0 {
		return 0
	}
	return uint64(n)
}
