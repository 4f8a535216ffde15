package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	session "github.com/yggai/ygggo_session"
)

type queryFlags struct {
	exec     bool
	fetchOne bool
	raw      bool
	args     []string
}

func (c *Cmd) getQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query SQL",
		Short: "Runs one statement and prints the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runQuery(cmd.OutOrStdout(), cmd, args[0])
		},
	}
	cmd.Flags().BoolVarP(&c.queryFlags.exec, "exec", "e", false, "report affected rows and last insert id instead of rows")
	cmd.Flags().BoolVar(&c.queryFlags.fetchOne, "one", false, "return only the first row")
	cmd.Flags().BoolVar(&c.queryFlags.raw, "raw", false, "send the text verbatim without binding parameters")
	cmd.Flags().StringArrayVarP(&c.queryFlags.args, "arg", "a", nil, "positional parameter, repeatable")
	return cmd
}

func (c *Cmd) runQuery(w io.Writer, cmd *cobra.Command, sql string) error {
	s, err := c.open(cmd.Context())
	if err != nil {
		return err
	}
	defer c.closeSession(s)

	kind := session.QueryFetchAll
	switch {
	case c.queryFlags.exec:
		kind = session.QueryExecute
	case c.queryFlags.fetchOne:
		kind = session.QueryFetchOne
	}

	var (
		done bool
		out  session.Outcome
		qerr error
	)
	opts := []session.QueryOption{
		session.WithCallback(func(o session.Outcome, err error) { done, out, qerr = true, o, err }),
	}
	for _, a := range c.queryFlags.args {
		opts = append(opts, session.WithParams(session.StringParam(a)))
	}
	if c.queryFlags.raw {
		opts = append(opts, session.WithRaw())
	}
	if !s.Enqueue(session.NewQuery(kind, sql, opts...)) {
		return fmt.Errorf("session %s is closed", s.ID())
	}
	if err := c.wait(s, func() bool { return done }); err != nil {
		return err
	}
	if qerr != nil {
		return qerr
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	switch kind {
	case session.QueryExecute:
		return enc.Encode(map[string]uint64{
			"rows_affected":  out.RowsAffected,
			"last_insert_id": out.LastInsertID,
		})
	case session.QueryFetchOne:
		if out.Row == nil {
			return enc.Encode(nil)
		}
		return enc.Encode(rowJSON(out.Row))
	}
	rows := make([]map[string]any, 0, len(out.Rows))
	for _, r := range out.Rows {
		rows = append(rows, rowJSON(r))
	}
	return enc.Encode(rows)
}

// rowJSON renders a row as an object; a repeated column name keeps its
// first value.
func rowJSON(r session.Row) map[string]any {
	m := make(map[string]any, len(r))
	for _, col := range r {
		if _, dup := m[col.Name]; dup {
			continue
		}
		if col.Value.Kind() == session.KindBytes {
			m[col.Name] = col.Value.String()
			continue
		}
		m[col.Name] = col.Value.Any()
	}
	return m
}
