package dag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/specialistvlad/gridbind/internal/ctxlog"
)

// ErrSkipped marks nodes that never ran because a dependency failed.
var ErrSkipped = errors.New("skipped due to upstream failure")

// Pool is a Runner backed by a fixed number of worker goroutines.
type Pool struct {
	workers int
}

// NewPool returns a Pool with the given number of workers; values below one
// are raised to one.
func NewPool(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{workers: workers}
}

// Workers returns the size of the pool.
func (p *Pool) Workers() int { return p.workers }

// runNode is the per-run execution state of one graph node.
type runNode struct {
	id         string
	task       Task
	depCount   atomic.Int32
	dependents []*runNode
	state      atomic.Int32
	err        error
	skipOnce   sync.Once
}

// execution is a single invocation of Pool.Run.
type execution struct {
	nodes map[string]*runNode
	wg    sync.WaitGroup
}

// Run executes every task of g concurrently, respecting dependencies. It
// returns the first root-cause failure, wrapped with the IDs of every node
// that failed on its own.
func (p *Pool) Run(ctx context.Context, g *Graph, tasks map[string]Task) error {
	logger := ctxlog.FromContext(ctx)

	e, err := newExecution(g, tasks)
	if err != nil {
		return err
	}
	if len(e.nodes) == 0 {
		return nil
	}

	readyChan := make(chan *runNode, len(e.nodes))
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger.Debug("Initializing executor, finding root nodes...")
	rootNodeCount := 0
	for _, id := range g.Nodes() {
		n := e.nodes[id]
		if n.depCount.Load() == 0 {
			logger.Debug("Found root node.", "nodeID", n.id)
			readyChan <- n
			rootNodeCount++
		}
	}
	logger.Debug("Found all root nodes.", "count", rootNodeCount)

	e.wg.Add(len(e.nodes))

	logger.Debug("Starting worker pool.", "workers", p.workers)
	for i := 0; i < p.workers; i++ {
		go e.worker(runCtx, readyChan, cancel, i)
	}

	e.wg.Wait()
	close(readyChan)
	logger.Debug("All nodes completed.")

	var failedNodes []string
	var rootCauseError error
	for _, id := range g.Nodes() {
		n := e.nodes[id]
		if State(n.state.Load()) != Failed {
			continue
		}
		// A skipped or canceled node is a symptom, not a cause.
		if n.err == nil || errors.Is(n.err, ErrSkipped) || errors.Is(n.err, context.Canceled) {
			continue
		}
		failedNodes = append(failedNodes, n.id)
		if rootCauseError == nil {
			rootCauseError = n.err
		}
	}

	if rootCauseError != nil {
		return fmt.Errorf("execution failed for %s: %w", strings.Join(failedNodes, ", "), rootCauseError)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}

func newExecution(g *Graph, tasks map[string]Task) (*execution, error) {
	for id := range tasks {
		if !g.Has(id) {
			return nil, fmt.Errorf("task for unknown node: %s", id)
		}
	}

	g.mutex.RLock()
	defer g.mutex.RUnlock()

	e := &execution{nodes: make(map[string]*runNode, len(g.nodes))}
	for id, n := range g.nodes {
		rn := &runNode{id: id, task: tasks[id]}
		rn.depCount.Store(int32(len(n.deps)))
		e.nodes[id] = rn
	}
	for id, n := range g.nodes {
		for _, depID := range sortedIDs(n.dependents) {
			e.nodes[id].dependents = append(e.nodes[id].dependents, e.nodes[depID])
		}
	}
	return e, nil
}

// skipDependents recursively marks all downstream nodes as failed and
// decrements the WaitGroup.
func (e *execution) skipDependents(ctx context.Context, n *runNode) {
	logger := ctxlog.FromContext(ctx)
	for _, dependent := range n.dependents {
		dependent.skipOnce.Do(func() {
			logger.Warn("Skipping dependent node due to upstream failure.", "nodeID", dependent.id, "dependency", n.id)
			dependent.state.Store(int32(Failed))
			dependent.err = fmt.Errorf("%w of '%s'", ErrSkipped, n.id)
			e.wg.Done()
			e.skipDependents(ctx, dependent)
		})
	}
}

// worker is the core processing loop for a single concurrent worker.
func (e *execution) worker(ctx context.Context, readyChan chan *runNode, cancel context.CancelFunc, workerID int) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for n := range readyChan {
		workerLogger := logger.With("workerID", workerID, "nodeID", n.id)

		if ctx.Err() != nil {
			n.skipOnce.Do(func() {
				workerLogger.Warn("Context canceled, skipping node execution.")
				n.state.Store(int32(Failed))
				n.err = ctx.Err()
				e.wg.Done()
			})
			e.skipDependents(ctx, n)
			continue
		}

		workerLogger.Debug("Worker picked up node for execution.")
		n.state.Store(int32(Running))
		var err error
		if n.task != nil {
			err = n.task(ctx)
		}

		if err != nil {
			workerLogger.Error("Node execution failed.", "error", err)
			n.state.Store(int32(Failed))
			n.err = err
			cancel()
			e.skipDependents(ctx, n)
			e.wg.Done()
			continue
		}

		workerLogger.Debug("Node execution succeeded.")
		n.state.Store(int32(Done))

		for _, dependent := range n.dependents {
			if dependent.depCount.Add(-1) == 0 {
				workerLogger.Debug("Unlocking dependent node.", "dependentID", dependent.id)
				readyChan <- dependent
			}
		}

		e.wg.Done()
	}
	logger.Debug("Worker finished.", "workerID", workerID)
}
