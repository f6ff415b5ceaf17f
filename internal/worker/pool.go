package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

// ErrQueueFull is returned by SubmitJob when the job queue has no room.
var ErrQueueFull = errors.New("job queue is full")

// ErrStopped is returned by SubmitJob after Stop.
var ErrStopped = errors.New("dispatcher stopped")

// Job represents a unit of work to be executed.
type Job interface {
	Execute(ctx context.Context) error // The method that performs the actual work
	ID() string                        // A unique identifier for the job
}

// Worker pulls jobs from its own channel after registering it with the pool.
type Worker struct {
	ID         int
	WorkerPool chan chan Job   // A pool of channels, used to register this worker's job channel
	JobChannel chan Job        // A channel specific to this worker, to receive jobs
	Quit       chan struct{}   // Closed to stop the worker
	Wg         *sync.WaitGroup // To signal when this worker has finished
	log        *logrus.Entry
}

// NewWorker creates a new Worker.
func NewWorker(id int, workerPool chan chan Job, wg *sync.WaitGroup, log *logrus.Entry) Worker {
	return Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan Job),
		Quit:       make(chan struct{}),
		Wg:         wg,
		log:        log.WithField("worker", id),
	}
}

// Start makes the Worker listen for jobs on its JobChannel. Jobs run with ctx.
func (w Worker) Start(ctx context.Context) {
	w.Wg.Add(1)
	go func() {
		defer w.Wg.Done()
		for {
			select {
			case w.WorkerPool <- w.JobChannel:
			case <-w.Quit:
				w.log.Debug("stopping")
				return
			}

			select {
			case job := <-w.JobChannel:
				log := w.log.WithField("job_id", job.ID())
				log.Info("started job")
				if err := job.Execute(ctx); err != nil {
					log.WithError(err).Error("job failed")
				} else {
					log.Info("finished job")
				}
			case <-w.Quit:
				w.log.Debug("stopping")
				return
			}
		}
	}()
}

// Stop signals the worker to stop once its current job, if any, returns.
func (w Worker) Stop() {
	close(w.Quit)
}

// Dispatcher manages a pool of workers and dispatches jobs to them.
type Dispatcher struct {
	MaxWorkers int
	WorkerPool chan chan Job // A pool of worker job channels
	JobQueue   chan Job      // A buffered channel for incoming jobs
	Workers    []Worker
	Wg         sync.WaitGroup // To wait for all workers to finish
	Quit       chan struct{}  // Closed to stop the dispatcher and workers

	log      *logrus.Entry
	mu       sync.RWMutex
	running  bool
	stopped  bool
	pending  sync.WaitGroup
	stopOnce sync.Once
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(maxWorkers int, jobQueueSize int, logger *logrus.Logger) *Dispatcher {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Dispatcher{
		MaxWorkers: maxWorkers,
		WorkerPool: make(chan chan Job, maxWorkers),
		JobQueue:   make(chan Job, jobQueueSize),
		Workers:    make([]Worker, 0, maxWorkers),
		Quit:       make(chan struct{}),
		log:        logger.WithField("component", "dispatcher"),
	}
}

// Run starts the dispatcher and its workers. Jobs receive ctx.
func (d *Dispatcher) Run(ctx context.Context) {
	d.log.WithField("workers", d.MaxWorkers).Info("dispatcher starting")
	d.mu.Lock()
	d.running = true
	d.mu.Unlock()
	for i := 1; i <= d.MaxWorkers; i++ {
		worker := NewWorker(i, d.WorkerPool, &d.Wg, d.log)
		d.Workers = append(d.Workers, worker)
		worker.Start(ctx)
	}

	go d.dispatch()
}

// dispatch listens to the JobQueue and sends jobs to available workers.
func (d *Dispatcher) dispatch() {
	for {
		select {
		case job := <-d.JobQueue:
			select {
			case jobChannel := <-d.WorkerPool:
				jobChannel <- job
			case <-d.Quit:
				d.log.WithField("job_id", job.ID()).Warn("dropping job on shutdown")
				d.pending.Done()
				return
			}
			d.pending.Done()
		case <-d.Quit:
			d.log.Debug("dispatch loop stopping")
			return
		}
	}
}

// SubmitJob adds a job to the job queue without blocking.
func (d *Dispatcher) SubmitJob(job Job) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrStopped
	}
	d.pending.Add(1)
	select {
	case d.JobQueue <- job:
		d.log.WithField("job_id", job.ID()).Debug("job queued")
		return nil
	default:
		d.pending.Done()
		d.log.WithField("job_id", job.ID()).Warn("job queue full")
		return ErrQueueFull
	}
}

// Drain waits until every queued job has been handed to a worker.
func (d *Dispatcher) Drain() {
	d.pending.Wait()
}

// Stop refuses new jobs, hands queued jobs to workers, and waits for running jobs to finish.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		d.log.Info("dispatcher shutting down")
		d.mu.Lock()
		d.stopped = true
		running := d.running
		d.mu.Unlock()

		if running {
			d.Drain()
		}
		close(d.Quit)
		for _, worker := range d.Workers {
			worker.Stop()
		}
		d.Wg.Wait()
		d.log.Info("dispatcher stopped")
	})
}
