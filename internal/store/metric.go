package store

import (
	"context"
	"database/sql/driver"
	"regexp"
	"strings"
	"time"

	"github.com/ngrok/sqlmw"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	opRegex        = regexp.MustCompile(`^\s*(\w+)`)
	storeOpLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "frontfeed",
		Subsystem: "store",
		Name:      "op_duration_milliseconds",
		Help:      "Time spent on a store operation",
		Buckets:   []float64{1, 5, 20, 100, 500, 2000},
	},
		[]string{"op", "method"},
	)
	storeOpTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "frontfeed",
		Subsystem: "store",
		Name:      "op_total",
		Help:      "Number of store operations",
	},
		[]string{"op"},
	)
)

// Collectors returns the store's operation metrics for registration.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{storeOpLatency, storeOpTotal}
}

// metricInterceptor times driver calls. It is installed once per dialect by
// wrapping the underlying driver with sqlmw.
type metricInterceptor struct {
	sqlmw.NullInterceptor
}

func (mi *metricInterceptor) ConnBeginTx(ctx context.Context, conn driver.ConnBeginTx, opts driver.TxOptions) (context.Context, driver.Tx, error) {
	start := time.Now()
	defer mi.measure("conn-begin-tx", "begin", start)

	tx, err := conn.BeginTx(ctx, opts)
	return ctx, tx, err
}

func (mi *metricInterceptor) ConnExecContext(ctx context.Context, conn driver.ExecerContext, query string, args []driver.NamedValue) (driver.Result, error) {
	start := time.Now()
	defer mi.measure("conn-exec-context", statementVerb(query, "exec"), start)

	return conn.ExecContext(ctx, query, args)
}

func (mi *metricInterceptor) ConnQueryContext(ctx context.Context, conn driver.QueryerContext, query string, args []driver.NamedValue) (context.Context, driver.Rows, error) {
	start := time.Now()
	defer mi.measure("conn-query-context", statementVerb(query, "query"), start)

	rows, err := conn.QueryContext(ctx, query, args)
	return ctx, rows, err
}

func (mi *metricInterceptor) StmtExecContext(ctx context.Context, stmt driver.StmtExecContext, query string, args []driver.NamedValue) (driver.Result, error) {
	start := time.Now()
	defer mi.measure("stmt-exec-context", statementVerb(query, "exec"), start)

	return stmt.ExecContext(ctx, args)
}

func (mi *metricInterceptor) StmtQueryContext(ctx context.Context, stmt driver.StmtQueryContext, query string, args []driver.NamedValue) (context.Context, driver.Rows, error) {
	start := time.Now()
	defer mi.measure("stmt-query-context", statementVerb(query, "query"), start)

	rows, err := stmt.QueryContext(ctx, args)
	return ctx, rows, err
}

func (mi *metricInterceptor) TxCommit(ctx context.Context, tx driver.Tx) error {
	start := time.Now()
	defer mi.measure("tx-commit", "commit", start)
	return tx.Commit()
}

func (mi *metricInterceptor) TxRollback(ctx context.Context, tx driver.Tx) error {
	start := time.Now()
	defer mi.measure("tx-rollback", "rollback", start)
	return tx.Rollback()
}

func (mi *metricInterceptor) measure(op, method string, start time.Time) {
	storeOpTotal.With(prometheus.Labels{"op": op}).Inc()
	storeOpLatency.With(prometheus.Labels{"op": op, "method": method}).
		Observe(float64(time.Since(start).Milliseconds()))
}

// statementVerb returns the leading SQL keyword, lower-cased.
func statementVerb(query, fallback string) string {
	if m := opRegex.FindStringSubmatch(query); m != nil {
		return strings.ToLower(m[1])
	}
	return fallback
}
