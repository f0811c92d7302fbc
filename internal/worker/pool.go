package worker

import (
	"context"
	"sync"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

// Pool runs jobs on a fixed number of workers. Results are drained by a
// collector goroutine so Submit never deadlocks on a full result channel.
type Pool struct {
	workers    int
	jobQueue   chan Job
	results    chan Result
	collected  []Result
	wg         sync.WaitGroup
	collectWG  sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	closeOnce  sync.Once
	queueOnce  sync.Once
	onResult   func(Result)
}

// NewPool creates a pool bound to ctx; cancelling ctx stops the workers
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		workers:    workers,
		jobQueue:   make(chan Job, workers*2),
		results:    make(chan Result, workers*2),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// OnResult registers a callback invoked from the collector goroutine for
// every finished job. Must be called before Start.
func (p *Pool) OnResult(fn func(Result)) {
	p.onResult = fn
}

// Start launches the workers and the result collector
func (p *Pool) Start() {
	p.collectWG.Add(1)
	go p.collect()

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			result := job.Execute(p.ctx)
			select {
			case p.results <- result:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

func (p *Pool) collect() {
	defer p.collectWG.Done()
	for result := range p.results {
		if p.onResult != nil {
			p.onResult(result)
		}
		p.collected = append(p.collected, result)
	}
}

// Submit queues a job. It returns without queuing once the pool is shut down.
func (p *Pool) Submit(job Job) {
	select {
	case <-p.ctx.Done():
		return
	case p.jobQueue <- job:
	}
}

// Wait closes the queue, waits for every worker and returns the results
// in completion order
func (p *Pool) Wait() []Result {
	p.closeQueue()
	p.wg.Wait()
	p.closeResults()
	p.collectWG.Wait()
	p.cancelFunc()

	return p.collected
}

// Shutdown stops the pool immediately; in-flight jobs see a cancelled context
func (p *Pool) Shutdown() {
	p.cancelFunc()
	p.wg.Wait()
	p.closeResults()
	p.collectWG.Wait()
}

func (p *Pool) closeQueue() {
	p.queueOnce.Do(func() {
		close(p.jobQueue)
	})
}

func (p *Pool) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}
