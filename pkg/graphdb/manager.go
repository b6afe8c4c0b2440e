// Package graphdb owns the process-wide Neo4j driver: lazy connection with
// bounded retry, scoped transactions and shutdown.
package graphdb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrStoreUnavailable  = errors.New("graph store unavailable")
	ErrTransactionClosed = errors.New("transaction already closed")
	ErrShutdown          = errors.New("graph store shut down during connect")
)

const (
	ReadAccess  = neo4j.AccessModeRead
	WriteAccess = neo4j.AccessModeWrite
)

// Outcome reports how a transaction scope ended.
type Outcome int

const (
	NotStarted Outcome = iota
	Committed
	RolledBack
)

func (o Outcome) String() string {
	switch o {
	case Committed:
		return "committed"
	case RolledBack:
		return "rolled_back"
	default:
		return "not_started"
	}
}

// Tx is the handle a unit of work runs its statements on.
type Tx interface {
	Run(ctx context.Context, cypher string, params map[string]any) (neo4j.ResultWithContext, error)
}

// Transactor runs a unit of work inside a single transaction.
type Transactor interface {
	WithTransaction(ctx context.Context, mode neo4j.AccessMode, work func(ctx context.Context, tx Tx) error) (Outcome, error)
}

// Dialer constructs a driver. It must not perform network I/O.
type Dialer func(uri, username, password string) (neo4j.DriverWithContext, error)

// ConnectRecorder receives one call per connection attempt.
type ConnectRecorder interface {
	RecordGraphConnect(success bool)
}

type Config struct {
	URI        string
	Username   string
	Password   string
	Database   string
	MaxRetries int
	RetryDelay time.Duration
}

type Option func(*Manager)

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

func WithDialer(d Dialer) Option {
	return func(m *Manager) { m.dial = d }
}

func WithConnectRecorder(r ConnectRecorder) Option {
	return func(m *Manager) { m.recorder = r }
}

func defaultDialer(uri, username, password string) (neo4j.DriverWithContext, error) {
	return neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
}

// connectAttempt is shared by every caller that arrives while a connection
// sequence is in flight.
type connectAttempt struct {
	done   chan struct{}
	driver neo4j.DriverWithContext
	err    error
}

// Manager is safe for concurrent use.
type Manager struct {
	cfg      Config
	dial     Dialer
	logger   *slog.Logger
	recorder ConnectRecorder
	tracer   trace.Tracer

	mu       sync.Mutex
	driver   neo4j.DriverWithContext
	inflight *connectAttempt

	// generation is bumped by Shutdown; a connect started in an older
	// generation must not install its driver.
	generation uint64
}

// NewManager creates a Manager. It does not connect until the first Acquire.
func NewManager(cfg Config, opts ...Option) *Manager {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = 0
	}
	m := &Manager{
		cfg:    cfg,
		dial:   defaultDialer,
		logger: slog.Default(),
		tracer: otel.Tracer("selkie-backend/graphdb"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Acquire returns the live driver, connecting first if needed. Callers that
// arrive during an in-flight connection wait for its result instead of
// starting their own sequence.
func (m *Manager) Acquire(ctx context.Context) (neo4j.DriverWithContext, error) {
	m.mu.Lock()
	if m.driver != nil {
		d := m.driver
		m.mu.Unlock()
		return d, nil
	}
	if a := m.inflight; a != nil {
		m.mu.Unlock()
		select {
		case <-a.done:
			return a.driver, a.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	a := &connectAttempt{done: make(chan struct{})}
	m.inflight = a
	gen := m.generation
	m.mu.Unlock()

	a.driver, a.err = m.connect(ctx)

	m.mu.Lock()
	if m.inflight == a {
		m.inflight = nil
	}
	var stale neo4j.DriverWithContext
	if a.err == nil {
		if gen == m.generation {
			m.driver = a.driver
		} else {
			stale, a.driver, a.err = a.driver, nil, ErrShutdown
		}
	}
	m.mu.Unlock()
	close(a.done)

	if stale != nil {
		_ = stale.Close(context.WithoutCancel(ctx))
		m.logger.Warn("graph store connected after shutdown, driver closed")
	}

	return a.driver, a.err
}

func (m *Manager) connect(ctx context.Context) (neo4j.DriverWithContext, error) {
	var lastErr error
	for attempt := 1; attempt <= m.cfg.MaxRetries; attempt++ {
		driver, err := m.dial(m.cfg.URI, m.cfg.Username, m.cfg.Password)
		if err != nil {
			m.record(false)
			m.logger.Error("graph store driver construction failed",
				slog.String("uri", m.cfg.URI),
				slog.String("error", err.Error()),
			)
			return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}

		err = driver.VerifyConnectivity(ctx)
		if err == nil {
			m.record(true)
			m.logger.Info("graph store connected",
				slog.String("uri", m.cfg.URI),
				slog.Int("attempt", attempt),
			)
			return driver, nil
		}

		m.record(false)
		lastErr = err
		_ = driver.Close(ctx)
		m.logger.Warn("graph store connection attempt failed",
			slog.String("uri", m.cfg.URI),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", m.cfg.MaxRetries),
			slog.String("error", err.Error()),
		)

		if attempt == m.cfg.MaxRetries {
			break
		}
		select {
		case <-time.After(m.cfg.RetryDelay):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, ctx.Err())
		}
	}
	return nil, fmt.Errorf("%w after %d attempts: %w", ErrStoreUnavailable, m.cfg.MaxRetries, lastErr)
}

func (m *Manager) record(success bool) {
	if m.recorder != nil {
		m.recorder.RecordGraphConnect(success)
	}
}

// WithTransaction runs work in one explicit transaction. The transaction is
// committed when work returns nil and rolled back when it returns an error or
// panics; a panic is re-raised after the rollback. tx must not be retained.
func (m *Manager) WithTransaction(ctx context.Context, mode neo4j.AccessMode, work func(ctx context.Context, tx Tx) error) (outcome Outcome, err error) {
	ctx, span := m.tracer.Start(ctx, "graphdb.transaction",
		trace.WithAttributes(attribute.Bool("db.read_only", mode == ReadAccess)),
	)
	defer func() {
		span.SetAttributes(attribute.String("db.outcome", outcome.String()))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	driver, err := m.Acquire(ctx)
	if err != nil {
		return NotStarted, err
	}

	session := driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: m.cfg.Database,
	})
	defer session.Close(context.WithoutCancel(ctx))

	etx, err := session.BeginTransaction(ctx)
	if err != nil {
		return NotStarted, fmt.Errorf("begin transaction: %w", err)
	}
	scoped := &scopedTx{tx: etx}

	defer func() {
		if r := recover(); r != nil {
			scoped.close()
			m.rollback(ctx, etx)
			panic(r)
		}
	}()

	if workErr := work(ctx, scoped); workErr != nil {
		scoped.close()
		m.rollback(ctx, etx)
		return RolledBack, workErr
	}

	scoped.close()
	if err := etx.Commit(ctx); err != nil {
		return RolledBack, fmt.Errorf("commit transaction: %w", err)
	}
	return Committed, nil
}

// rollback runs even if ctx was cancelled so an aborted request leaves no partial write.
func (m *Manager) rollback(ctx context.Context, etx neo4j.ExplicitTransaction) {
	if err := etx.Rollback(context.WithoutCancel(ctx)); err != nil {
		m.logger.Warn("transaction rollback failed", slog.String("error", err.Error()))
	}
}

// EnsureSchema runs idempotent schema statements, each in its own transaction.
func (m *Manager) EnsureSchema(ctx context.Context, statements ...string) error {
	for _, stmt := range statements {
		_, err := m.WithTransaction(ctx, WriteAccess, func(ctx context.Context, tx Tx) error {
			res, err := tx.Run(ctx, stmt, nil)
			if err != nil {
				return err
			}
			_, err = res.Consume(ctx)
			return err
		})
		if err != nil {
			return fmt.Errorf("ensure schema %q: %w", stmt, err)
		}
	}
	return nil
}

// Shutdown closes the driver if one is open. A connect still in flight is
// abandoned and its driver closed when it completes. A later Acquire reconnects.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	d := m.driver
	m.driver = nil
	m.inflight = nil
	m.generation++
	m.mu.Unlock()

	if d == nil {
		return nil
	}
	if err := d.Close(ctx); err != nil {
		return fmt.Errorf("close graph driver: %w", err)
	}
	m.logger.Info("graph store connection closed")
	return nil
}

// scopedTx rejects statements once its transaction scope has ended.
type scopedTx struct {
	tx     neo4j.ExplicitTransaction
	closed atomic.Bool
}

func (s *scopedTx) Run(ctx context.Context, cypher string, params map[string]any) (neo4j.ResultWithContext, error) {
	if s.closed.Load() {
		return nil, ErrTransactionClosed
	}
	return s.tx.Run(ctx, cypher, params)
}

func (s *scopedTx) close() {
	s.closed.Store(true)
}
