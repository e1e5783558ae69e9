package store

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Pool is a bounded set of Managers with checkout/return semantics. A
// counting semaphore caps how many connections can be checked out at once;
// Acquire blocks until a slot frees up or the context is done. Managers are
// dialed lazily and kept idle between checkouts.
type Pool struct {
	cfg    Config
	size   int
	logger *zap.Logger
	sem    *semaphore.Weighted

	mu     sync.Mutex
	idle   []*Manager
	closed bool
}

// NewPool creates a Pool bounded at size connections.
func NewPool(cfg Config, size int, logger *zap.Logger) (*Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, &ConfigError{Field: "size", Message: "must be greater than 0"}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{
		cfg:    cfg,
		size:   size,
		logger: logger,
		sem:    semaphore.NewWeighted(int64(size)),
	}, nil
}

// Acquire checks out a connected Manager, dialing a new one when no live
// idle manager is available. Idle managers are liveness-probed before they
// are handed out; a connection that died while parked is discarded, never
// returned to a caller. Acquire blocks while the pool is saturated.
func (p *Pool) Acquire(ctx context.Context) (*Manager, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	for {
		p.mu.Lock()
		n := len(p.idle)
		if n == 0 {
			p.mu.Unlock()
			break
		}
		m := p.idle[n-1]
		p.idle = p.idle[:n-1]
		p.mu.Unlock()

		if m.IsConnected(ctx) {
			return m, nil
		}
		_ = m.Disconnect()
		p.logger.Warn("discarded dead idle connection")
	}

	m, err := NewManager(p.cfg, p.logger)
	if err != nil {
		p.sem.Release(1)
		return nil, err
	}
	if err := m.Connect(ctx); err != nil {
		p.sem.Release(1)
		return nil, err
	}
	p.logger.Debug("pool dialed new connection", zap.Int("capacity", p.size))
	return m, nil
}

// Release returns a Manager to the pool. Returning after Close disconnects
// the manager instead of parking it.
func (p *Pool) Release(m *Manager) {
	if m == nil {
		return
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		_ = m.Disconnect()
	} else {
		p.idle = append(p.idle, m)
		p.mu.Unlock()
	}
	p.sem.Release(1)
}

// Close disconnects every idle manager and marks the pool closed. Checked
// out managers are disconnected as they are released.
func (p *Pool) Close() error {
	p.mu.Lock()
	p.closed = true
	idle := p.idle
	p.idle = nil
	p.mu.Unlock()

	var firstErr error
	for _, m := range idle {
		if err := m.Disconnect(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
