// FILE: lixenwraith/logship/background.go
package logship

import (
	"context"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// Background is the host facility that keeps the process alive until a
// scheduled task settles. The logger hands every asynchronous flush to it.
type Background interface {
	WaitUntil(task func())
}

// BackgroundFunc adapts a plain function to Background
type BackgroundFunc func(task func())

// WaitUntil calls f(task)
func (f BackgroundFunc) WaitUntil(task func()) {
	f(task)
}

// TaskGroup is a Background backed by a bounded worker pool.
// Wait blocks until every task handed to WaitUntil has returned. WaitUntil
// never blocks, tasks beyond the pool capacity run on their own goroutine.
type TaskGroup struct {
	pool *ants.Pool

	mu     sync.Mutex
	active int
	idle   chan struct{} // Closed when active drops to zero
}

// NewTaskGroup creates a task group running at most size tasks on pooled workers
func NewTaskGroup(size int) (*TaskGroup, error) {
	if size <= 0 {
		size = ants.DefaultAntsPoolSize
	}
	pool, err := ants.NewPool(size, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmtErrorf("failed to create task pool: %w", err)
	}
	return &TaskGroup{pool: pool}, nil
}

// WaitUntil schedules task and tracks it until completion.
// If the pool is saturated or released the task runs on its own goroutine.
func (g *TaskGroup) WaitUntil(task func()) {
	g.add()
	run := func() {
		defer g.done()
		task()
	}
	if err := g.pool.Submit(run); err != nil {
		go run()
	}
}

func (g *TaskGroup) add() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active == 0 {
		g.idle = make(chan struct{})
	}
	g.active++
}

func (g *TaskGroup) done() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.active--
	if g.active == 0 {
		close(g.idle)
	}
}

// Wait blocks until all tracked tasks finish or ctx is done.
// Tasks scheduled while waiting extend the wait.
func (g *TaskGroup) Wait(ctx context.Context) error {
	for {
		g.mu.Lock()
		if g.active == 0 {
			g.mu.Unlock()
			return nil
		}
		idle := g.idle
		g.mu.Unlock()

		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Release waits for tracked tasks and frees the pool workers
func (g *TaskGroup) Release(ctx context.Context) error {
	err := g.Wait(ctx)
	g.pool.Release()
	return err
}
