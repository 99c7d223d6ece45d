package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitForStatus(t *testing.T, p *Pool, id, want string) *Job {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		job, err := p.Get(id)
		require.NoError(t, err)
		if job.Status == want {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	job, _ := p.Get(id)
	t.Fatalf("job %s never reached %s (last: %s)", id, want, job.Status)
	return nil
}

func TestPoolRunsSubmittedJob(t *testing.T) {
	p := NewPool(2, 8, testLogger())
	defer p.Shutdown(context.Background())

	job, err := p.Submit("export standings", func(ctx context.Context) (interface{}, error) {
		return map[string]int{"rows": 12}, nil
	})
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, "export standings", job.Label)

	done := waitForStatus(t, p, job.ID, StatusCompleted)
	assert.Equal(t, map[string]int{"rows": 12}, done.Result)
	require.NotNil(t, done.FinishedAt)
	assert.Empty(t, done.Error)
}

func TestPoolRecordsFailure(t *testing.T) {
	p := NewPool(1, 8, testLogger())
	defer p.Shutdown(context.Background())

	job, err := p.Submit("broken", func(ctx context.Context) (interface{}, error) {
		return nil, errors.New("boom")
	})
	require.NoError(t, err)

	done := waitForStatus(t, p, job.ID, StatusFailed)
	assert.Equal(t, "boom", done.Error)
	assert.Nil(t, done.Result)
}

func TestPoolBoundedConcurrency(t *testing.T) {
	p := NewPool(2, 16, testLogger())
	defer p.Shutdown(context.Background())

	var mu sync.Mutex
	running, peak := 0, 0

	var ids []string
	for i := 0; i < 6; i++ {
		job, err := p.Submit("concurrent", func(ctx context.Context) (interface{}, error) {
			mu.Lock()
			running++
			if running > peak {
				peak = running
			}
			mu.Unlock()

			time.Sleep(20 * time.Millisecond)

			mu.Lock()
			running--
			mu.Unlock()
			return nil, nil
		})
		require.NoError(t, err)
		ids = append(ids, job.ID)
	}

	for _, id := range ids {
		waitForStatus(t, p, id, StatusCompleted)
	}

	mu.Lock()
	defer mu.Unlock()
	assert.LessOrEqual(t, peak, 2, "no more than two jobs run at once")
	assert.Greater(t, peak, 0)
}

func TestPoolGetUnknownJob(t *testing.T) {
	p := NewPool(1, 4, testLogger())
	defer p.Shutdown(context.Background())

	_, err := p.Get("nope")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestPoolListNewestFirst(t *testing.T) {
	p := NewPool(1, 8, testLogger())
	defer p.Shutdown(context.Background())

	first, err := p.Submit("first", func(ctx context.Context) (interface{}, error) { return nil, nil })
	require.NoError(t, err)
	second, err := p.Submit("second", func(ctx context.Context) (interface{}, error) { return nil, nil })
	require.NoError(t, err)

	waitForStatus(t, p, first.ID, StatusCompleted)
	waitForStatus(t, p, second.ID, StatusCompleted)

	list := p.List()
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}

func TestPoolSubmitRacesShutdown(t *testing.T) {
	// Submit landing in the window where Shutdown closes the queue used to
	// panic with a send on a closed channel.
	for i := 0; i < 100; i++ {
		p := NewPool(1, 2, testLogger())

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 8; j++ {
				_, err := p.Submit("churn", func(ctx context.Context) (interface{}, error) { return nil, nil })
				if err != nil {
					assert.ErrorIs(t, err, ErrRunnerShutdown)
					return
				}
			}
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, p.Shutdown(context.Background()))
		}()
		wg.Wait()
	}
}

func TestPoolRejectsAfterShutdown(t *testing.T) {
	p := NewPool(1, 4, testLogger())
	require.NoError(t, p.Shutdown(context.Background()))

	_, err := p.Submit("late", func(ctx context.Context) (interface{}, error) { return nil, nil })
	assert.ErrorIs(t, err, ErrRunnerShutdown)
}
