// Package workqueue runs a list of jobs with bounded concurrency
package workqueue

import (
	"context"
)

// DefaultConcurrency is the number of jobs that run at the same time
const DefaultConcurrency = 16

// Job is a unit of work in a Queue
type Job interface {
	Run(ctx context.Context) error
}

// JobFunc turns a function into a Job
type JobFunc func(ctx context.Context) error

// Run calls f
func (f JobFunc) Run(ctx context.Context) error { return f(ctx) }

// Queue collects jobs and runs them
type Queue struct {
	queue       []Job
	Concurrency int
	OnProgress  func(p int)
}

// New creates a new queue
func New() *Queue {
	return &Queue{Concurrency: DefaultConcurrency}
}

// Add adds a new job to the queue
func (q *Queue) Add(j Job) {
	q.queue = append(q.queue, j)
}

// Len returns the number of queued jobs
func (q *Queue) Len() int {
	return len(q.queue)
}

// Start runs all jobs and returns the first error. Remaining jobs see a
// cancelled context once a job failed
func (q *Queue) Start(ctx context.Context) error {
	if len(q.queue) == 0 {
		return nil
	}
	concurrency := q.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := make(chan int, concurrency)
	// buffered so no job blocks after we returned early
	errc := make(chan error, len(q.queue))

	go func() {
		for _, job := range q.queue {
			sem <- 1
			go func(job Job) {
				errc <- job.Run(ctx)
				<-sem
			}(job)
		}
	}()

	for i := 0; i < len(q.queue); i++ {
		if err := <-errc; err != nil {
			return err
		}
		if q.OnProgress != nil {
			q.OnProgress(int(float32(i+1) / float32(len(q.queue)) * 100))
		}
	}
	return nil
}
