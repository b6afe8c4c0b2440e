package graphdb

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTx struct {
	neo4j.ExplicitTransaction
	runs       atomic.Int32
	committed  atomic.Bool
	rolledBack atomic.Bool
	commitErr  error
}

func (t *fakeTx) Run(ctx context.Context, cypher string, params map[string]any) (neo4j.ResultWithContext, error) {
	t.runs.Add(1)
	return nil, nil
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.committed.Store(true)
	return t.commitErr
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	t.rolledBack.Store(true)
	return nil
}

func (t *fakeTx) Close(ctx context.Context) error { return nil }

type fakeSession struct {
	neo4j.SessionWithContext
	tx       *fakeTx
	beginErr error
	closed   atomic.Bool
	cfg      neo4j.SessionConfig
}

func (s *fakeSession) BeginTransaction(ctx context.Context, configurers ...func(*neo4j.TransactionConfig)) (neo4j.ExplicitTransaction, error) {
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	return s.tx, nil
}

func (s *fakeSession) Close(ctx context.Context) error {
	s.closed.Store(true)
	return nil
}

type fakeDriver struct {
	neo4j.DriverWithContext
	verify  func() error
	session *fakeSession
	closed  atomic.Int32
}

func (d *fakeDriver) VerifyConnectivity(ctx context.Context) error {
	if d.verify == nil {
		return nil
	}
	return d.verify()
}

func (d *fakeDriver) NewSession(ctx context.Context, cfg neo4j.SessionConfig) neo4j.SessionWithContext {
	d.session.cfg = cfg
	return d.session
}

func (d *fakeDriver) Close(ctx context.Context) error {
	d.closed.Add(1)
	return nil
}

type countingRecorder struct {
	mu        sync.Mutex
	successes int
	failures  int
}

func (r *countingRecorder) RecordGraphConnect(success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if success {
		r.successes++
	} else {
		r.failures++
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestManager(dial Dialer, opts ...Option) *Manager {
	opts = append([]Option{WithDialer(dial), WithLogger(quietLogger())}, opts...)
	return NewManager(Config{
		URI:        "bolt://graph.test:7687",
		Username:   "neo4j",
		Password:   "secret",
		MaxRetries: 5,
		RetryDelay: time.Millisecond,
	}, opts...)
}

func TestAcquire_ConnectsOnceAndReuses(t *testing.T) {
	var dials atomic.Int32
	driver := &fakeDriver{session: &fakeSession{tx: &fakeTx{}}}
	m := newTestManager(func(uri, user, pass string) (neo4j.DriverWithContext, error) {
		dials.Add(1)
		assert.Equal(t, "bolt://graph.test:7687", uri)
		assert.Equal(t, "neo4j", user)
		return driver, nil
	})

	d1, err := m.Acquire(context.Background())
	require.NoError(t, err)
	d2, err := m.Acquire(context.Background())
	require.NoError(t, err)

	assert.Same(t, d1, d2)
	assert.Equal(t, int32(1), dials.Load())
}

func TestAcquire_ConcurrentColdStartSharesOneSequence(t *testing.T) {
	var dials atomic.Int32
	release := make(chan struct{})
	driver := &fakeDriver{
		session: &fakeSession{tx: &fakeTx{}},
		verify: func() error {
			<-release
			return nil
		},
	}
	m := newTestManager(func(uri, user, pass string) (neo4j.DriverWithContext, error) {
		dials.Add(1)
		return driver, nil
	})

	const callers = 16
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Acquire(context.Background())
			errs <- err
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), dials.Load())
}

func TestAcquire_RetriesUntilReachable(t *testing.T) {
	var verifies atomic.Int32
	driver := &fakeDriver{
		session: &fakeSession{tx: &fakeTx{}},
		verify: func() error {
			if verifies.Add(1) < 3 {
				return errors.New("connection refused")
			}
			return nil
		},
	}
	rec := &countingRecorder{}
	m := newTestManager(func(uri, user, pass string) (neo4j.DriverWithContext, error) {
		return driver, nil
	}, WithConnectRecorder(rec))

	_, err := m.Acquire(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(3), verifies.Load())
	assert.Equal(t, int32(2), driver.closed.Load())
	assert.Equal(t, 1, rec.successes)
	assert.Equal(t, 2, rec.failures)
}

func TestAcquire_ExhaustedRetries(t *testing.T) {
	var verifies atomic.Int32
	driver := &fakeDriver{
		session: &fakeSession{tx: &fakeTx{}},
		verify: func() error {
			verifies.Add(1)
			return errors.New("connection refused")
		},
	}
	m := newTestManager(func(uri, user, pass string) (neo4j.DriverWithContext, error) {
		return driver, nil
	})

	_, err := m.Acquire(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Equal(t, int32(5), verifies.Load())
}

func TestAcquire_DialErrorIsImmediate(t *testing.T) {
	var dials atomic.Int32
	m := newTestManager(func(uri, user, pass string) (neo4j.DriverWithContext, error) {
		dials.Add(1)
		return nil, errors.New("unsupported scheme")
	})

	_, err := m.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Equal(t, int32(1), dials.Load())
}

func TestAcquire_CancelledDuringBackoff(t *testing.T) {
	driver := &fakeDriver{
		session: &fakeSession{tx: &fakeTx{}},
		verify:  func() error { return errors.New("connection refused") },
	}
	m := NewManager(Config{MaxRetries: 5, RetryDelay: time.Hour},
		WithDialer(func(uri, user, pass string) (neo4j.DriverWithContext, error) { return driver, nil }),
		WithLogger(quietLogger()),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := m.Acquire(ctx)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWithTransaction_CommitsOnSuccess(t *testing.T) {
	tx := &fakeTx{}
	session := &fakeSession{tx: tx}
	driver := &fakeDriver{session: session}
	m := newTestManager(func(string, string, string) (neo4j.DriverWithContext, error) { return driver, nil })

	outcome, err := m.WithTransaction(context.Background(), WriteAccess, func(ctx context.Context, t Tx) error {
		_, err := t.Run(ctx, "RETURN 1", nil)
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, Committed, outcome)
	assert.True(t, tx.committed.Load())
	assert.False(t, tx.rolledBack.Load())
	assert.True(t, session.closed.Load())
	assert.Equal(t, neo4j.AccessModeWrite, session.cfg.AccessMode)
}

func TestWithTransaction_RollsBackOnError(t *testing.T) {
	tx := &fakeTx{}
	driver := &fakeDriver{session: &fakeSession{tx: tx}}
	m := newTestManager(func(string, string, string) (neo4j.DriverWithContext, error) { return driver, nil })
	workErr := errors.New("constraint violated")

	outcome, err := m.WithTransaction(context.Background(), WriteAccess, func(ctx context.Context, t Tx) error {
		return workErr
	})

	assert.ErrorIs(t, err, workErr)
	assert.Equal(t, RolledBack, outcome)
	assert.True(t, tx.rolledBack.Load())
	assert.False(t, tx.committed.Load())
}

func TestWithTransaction_RollsBackOnPanic(t *testing.T) {
	tx := &fakeTx{}
	driver := &fakeDriver{session: &fakeSession{tx: tx}}
	m := newTestManager(func(string, string, string) (neo4j.DriverWithContext, error) { return driver, nil })

	assert.PanicsWithValue(t, "boom", func() {
		_, _ = m.WithTransaction(context.Background(), WriteAccess, func(ctx context.Context, t Tx) error {
			panic("boom")
		})
	})
	assert.True(t, tx.rolledBack.Load())
	assert.False(t, tx.committed.Load())
}

func TestWithTransaction_RollsBackWhenContextCancelled(t *testing.T) {
	tx := &fakeTx{}
	driver := &fakeDriver{session: &fakeSession{tx: tx}}
	m := newTestManager(func(string, string, string) (neo4j.DriverWithContext, error) { return driver, nil })

	_, err := m.Acquire(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	outcome, err := m.WithTransaction(ctx, WriteAccess, func(ctx context.Context, t Tx) error {
		cancel()
		return ctx.Err()
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, RolledBack, outcome)
	assert.True(t, tx.rolledBack.Load())
}

func TestWithTransaction_HandleUnusableAfterScope(t *testing.T) {
	tx := &fakeTx{}
	driver := &fakeDriver{session: &fakeSession{tx: tx}}
	m := newTestManager(func(string, string, string) (neo4j.DriverWithContext, error) { return driver, nil })

	var leaked Tx
	_, err := m.WithTransaction(context.Background(), ReadAccess, func(ctx context.Context, t Tx) error {
		leaked = t
		return nil
	})
	require.NoError(t, err)

	_, err = leaked.Run(context.Background(), "RETURN 1", nil)
	assert.ErrorIs(t, err, ErrTransactionClosed)
	assert.Equal(t, int32(0), tx.runs.Load())
}

func TestWithTransaction_CommitFailure(t *testing.T) {
	tx := &fakeTx{commitErr: errors.New("leader switched")}
	driver := &fakeDriver{session: &fakeSession{tx: tx}}
	m := newTestManager(func(string, string, string) (neo4j.DriverWithContext, error) { return driver, nil })

	outcome, err := m.WithTransaction(context.Background(), WriteAccess, func(ctx context.Context, t Tx) error {
		return nil
	})
	assert.Error(t, err)
	assert.Equal(t, RolledBack, outcome)
}

func TestWithTransaction_StoreUnavailable(t *testing.T) {
	m := newTestManager(func(string, string, string) (neo4j.DriverWithContext, error) {
		return nil, errors.New("bad uri")
	})

	called := false
	outcome, err := m.WithTransaction(context.Background(), ReadAccess, func(ctx context.Context, t Tx) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Equal(t, NotStarted, outcome)
	assert.False(t, called)
}

func TestShutdown_NeverInitialized(t *testing.T) {
	m := newTestManager(func(string, string, string) (neo4j.DriverWithContext, error) {
		t.Fatal("dial must not be called")
		return nil, nil
	})
	assert.NoError(t, m.Shutdown(context.Background()))
	assert.NoError(t, m.Shutdown(context.Background()))
}

func TestShutdown_ThenReacquireReconnects(t *testing.T) {
	var dials atomic.Int32
	first := &fakeDriver{session: &fakeSession{tx: &fakeTx{}}}
	second := &fakeDriver{session: &fakeSession{tx: &fakeTx{}}}
	m := newTestManager(func(string, string, string) (neo4j.DriverWithContext, error) {
		if dials.Add(1) == 1 {
			return first, nil
		}
		return second, nil
	})

	d, err := m.Acquire(context.Background())
	require.NoError(t, err)
	assert.Same(t, neo4j.DriverWithContext(first), d)

	require.NoError(t, m.Shutdown(context.Background()))
	assert.Equal(t, int32(1), first.closed.Load())

	d, err = m.Acquire(context.Background())
	require.NoError(t, err)
	assert.Same(t, neo4j.DriverWithContext(second), d)
	assert.Equal(t, int32(2), dials.Load())
}

func TestShutdown_DuringConnectClosesLateDriver(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var dials atomic.Int32
	late := &fakeDriver{
		session: &fakeSession{tx: &fakeTx{}},
		verify: func() error {
			close(entered)
			<-release
			return nil
		},
	}
	fresh := &fakeDriver{session: &fakeSession{tx: &fakeTx{}}}
	m := newTestManager(func(string, string, string) (neo4j.DriverWithContext, error) {
		if dials.Add(1) == 1 {
			return late, nil
		}
		return fresh, nil
	})

	errCh := make(chan error, 1)
	go func() {
		_, err := m.Acquire(context.Background())
		errCh <- err
	}()

	<-entered
	require.NoError(t, m.Shutdown(context.Background()))
	close(release)

	assert.ErrorIs(t, <-errCh, ErrShutdown)
	assert.Equal(t, int32(1), late.closed.Load())

	d, err := m.Acquire(context.Background())
	require.NoError(t, err)
	assert.Same(t, neo4j.DriverWithContext(fresh), d)
	assert.Equal(t, int32(2), dials.Load())
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "committed", Committed.String())
	assert.Equal(t, "rolled_back", RolledBack.String())
	assert.Equal(t, "not_started", NotStarted.String())
}
