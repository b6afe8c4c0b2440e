// Package graphdbtest provides in-memory stand-ins for graphdb transactions
// so repositories can be tested without a running Neo4j.
package graphdbtest

import (
	"context"

	"selkie-backend/pkg/graphdb"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type Call struct {
	Cypher string
	Params map[string]any
}

// Result serves canned records. Only Collect and Consume are implemented.
type Result struct {
	neo4j.ResultWithContext
	RecordList []*neo4j.Record
}

func (r *Result) Collect(context.Context) ([]*neo4j.Record, error) {
	return r.RecordList, nil
}

func (r *Result) Consume(context.Context) (neo4j.ResultSummary, error) {
	return nil, nil
}

// Rows builds a result whose records each carry one map column named key.
func Rows(key string, rows ...map[string]any) *Result {
	res := &Result{}
	for _, row := range rows {
		res.RecordList = append(res.RecordList, &neo4j.Record{Keys: []string{key}, Values: []any{row}})
	}
	return res
}

// Count builds a single-row result with an integer column.
func Count(key string, n int64) *Result {
	return &Result{RecordList: []*neo4j.Record{{Keys: []string{key}, Values: []any{n}}}}
}

// Tx records every statement and replies with Results in order. Once they run
// out it returns empty results. A non-nil Err fails every Run.
type Tx struct {
	Calls   []Call
	Results []*Result
	Err     error
}

func (t *Tx) Run(_ context.Context, cypher string, params map[string]any) (neo4j.ResultWithContext, error) {
	t.Calls = append(t.Calls, Call{Cypher: cypher, Params: params})
	if t.Err != nil {
		return nil, t.Err
	}
	if len(t.Results) == 0 {
		return &Result{}, nil
	}
	next := t.Results[0]
	t.Results = t.Results[1:]
	return next, nil
}

// Transactor runs every unit of work against Tx and reports the outcome the
// real manager would.
type Transactor struct {
	Tx    *Tx
	Modes []neo4j.AccessMode
}

// NewTransactor returns a Transactor whose Tx hands out results in order.
func NewTransactor(results ...*Result) *Transactor {
	return &Transactor{Tx: &Tx{Results: results}}
}

func (f *Transactor) WithTransaction(ctx context.Context, mode neo4j.AccessMode, work func(context.Context, graphdb.Tx) error) (graphdb.Outcome, error) {
	f.Modes = append(f.Modes, mode)
	if err := work(ctx, f.Tx); err != nil {
		return graphdb.RolledBack, err
	}
	return graphdb.Committed, nil
}
