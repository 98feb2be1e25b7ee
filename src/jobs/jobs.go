/*
Package jobs runs background work that must stop cleanly when the server
shuts down: the perf collector, the price cache warmer, and so on.

A Job owns a cancellable context. The work watches Canceled() and calls
Finish() when it is done; the server waits on Finished() during shutdown.
*/
package jobs

import (
	"context"
	"time"

	"github.com/radixwiki/wiki/src/logging"
	"github.com/rs/zerolog"
)

type Job struct {
	Name   string
	Ctx    context.Context
	Logger zerolog.Logger
	cancel func()
	done   chan struct{}
}

func New(name string) *Job {
	logger := logging.With().Str("job", name).Logger()
	ctx, cancel := context.WithCancel(context.Background())
	ctx = logging.AttachLoggerToContext(&logger, ctx)
	return &Job{
		Name:   name,
		Ctx:    ctx,
		Logger: logger,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Run starts work on its own goroutine and finishes the job when work
// returns, including when it panics.
func Run(name string, work func(job *Job)) *Job {
	job := New(name)
	go func() {
		defer job.Finish()
		defer logging.LogPanics(&job.Logger)
		work(job)
	}()
	return job
}

// Noop returns a job that is already finished, for features that are
// switched off by configuration.
func Noop() *Job {
	return New("noop").Finish()
}

// Cancel signals the job to stop. Expected to be called from outside the job.
func (j *Job) Cancel() {
	j.cancel()
}

func (j *Job) Canceled() <-chan struct{} {
	return j.Ctx.Done()
}

// Finish marks the job as done. Expected to be called by the job itself.
func (j *Job) Finish() *Job {
	close(j.done)
	return j
}

func (j *Job) Finished() <-chan struct{} {
	return j.done
}

type Jobs []*Job

// CancelAndWait cancels every job and waits until they all finish or the
// timeout expires. Returns the names of the jobs that did not finish.
func (jobs Jobs) CancelAndWait(timeout time.Duration) []string {
	for _, job := range jobs {
		job.Cancel()
	}

	allDone := make(chan struct{})
	go func() {
		for _, job := range jobs {
			<-job.Finished()
		}
		close(allDone)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-timer.C:
		return jobs.ListUnfinished()
	case <-allDone:
		return nil
	}
}

func (jobs Jobs) ListUnfinished() []string {
	unfinished := []string{}
	for _, job := range jobs {
		select {
		case <-job.Finished():
		default:
			unfinished = append(unfinished, job.Name)
		}
	}
	return unfinished
}
