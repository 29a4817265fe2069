package turbo_exec

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPool_Defaults(t *testing.T) {
	pool := NewWorkerPool(0, -1, nil)
	defer pool.Stop()

	assert.Equal(t, 1, pool.GetWorkerCount())
	assert.Equal(t, 0, pool.GetSize())
	assert.False(t, pool.IsBusy())
}

func TestWorkerPool_RunsJobs(t *testing.T) {
	pool := NewWorkerPool(3, 10, nil)

	var ran atomic.Int32
	for i := 0; i < 10; i++ {
		require.NoError(t, pool.submit(job{
			run:    func() { ran.Add(1) },
			reject: func(error) { t.Error("job rejected") },
		}))
	}

	require.Eventually(t, func() bool { return ran.Load() == 10 }, time.Second, 5*time.Millisecond)
	pool.Stop()
	assert.False(t, pool.IsBusy())
}

func TestWorkerPool_SurvivesPanickingJob(t *testing.T) {
	pool := NewWorkerPool(1, 2, nil)
	defer pool.Stop()

	done := make(chan struct{})
	require.NoError(t, pool.submit(job{run: func() { panic("broken job") }}))
	require.NoError(t, pool.submit(job{run: func() { close(done) }}))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker died after a panic")
	}
}

func TestWorkerPool_SubmitAfterStop(t *testing.T) {
	pool := NewWorkerPool(1, 1, nil)
	pool.Stop()
	pool.Stop()

	err := pool.submit(job{run: func() {}})
	assert.ErrorIs(t, err, ErrPoolStopped)
}
