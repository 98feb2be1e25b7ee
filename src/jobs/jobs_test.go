package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCancelAndWait(t *testing.T) {
	t.Run("finishes fast enough", func(t *testing.T) {
		testJobs := Jobs{
			slowToStop("price warmer", 50*time.Millisecond),
			slowToStop("perf collector", 100*time.Millisecond),
			Noop(),
		}

		before := time.Now()
		unfinished := testJobs.CancelAndWait(time.Second)
		assert.WithinDuration(t, time.Now(), before, 500*time.Millisecond)
		assert.Empty(t, unfinished)
	})
	t.Run("reports unfinished jobs", func(t *testing.T) {
		testJobs := Jobs{
			slowToStop("price warmer", 50*time.Millisecond),
			slowToStop("stuck", 10*time.Second),
		}

		unfinished := testJobs.CancelAndWait(200 * time.Millisecond)
		assert.Equal(t, []string{"stuck"}, unfinished)
	})
}

func TestRunRecoversPanics(t *testing.T) {
	job := Run("panicky", func(job *Job) {
		panic("boom")
	})
	select {
	case <-job.Finished():
	case <-time.After(time.Second):
		assert.Fail(t, "job did not finish after panicking")
	}
}

func slowToStop(name string, delay time.Duration) *Job {
	return Run(name, func(job *Job) {
		<-job.Canceled()
		time.Sleep(delay)
	})
}
