package circuit

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakerDefaults(t *testing.T) {
	b := New("customer-cache")
	assert.Equal(t, "customer-cache", b.Name())
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, "closed", b.State().String())

	for i := 0; i < defaultFailureThreshold-1; i++ {
		b.RecordFailure()
	}
	assert.False(t, b.IsOpen(), "one short of the default threshold")
	_, change := b.RecordFailure()
	assert.True(t, change.Opened)
	assert.Equal(t, "open", b.State().String())
}

func TestBreakerIgnoresNonPositiveThresholds(t *testing.T) {
	b := New("cache", WithFailureThreshold(0), WithSuccessThreshold(-1))
	assert.Equal(t, defaultFailureThreshold, b.failureThreshold)
	assert.Equal(t, defaultSuccessThreshold, b.successThreshold)
}

func TestBreakerOpening(t *testing.T) {
	tests := []struct {
		name         string
		outcomes     string // f = failure, s = success
		wantOpen     bool
		wantOpenedAt int // index of the outcome reporting Opened, -1 for none
	}{
		{name: "below threshold stays closed", outcomes: "ff", wantOpen: false, wantOpenedAt: -1},
		{name: "third consecutive failure opens", outcomes: "fff", wantOpen: true, wantOpenedAt: 2},
		{name: "success resets the failure run", outcomes: "ffsff", wantOpen: false, wantOpenedAt: -1},
		{name: "failures after opening report no transition", outcomes: "fffff", wantOpen: true, wantOpenedAt: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New("cache", WithFailureThreshold(3))
			openedAt := -1
			for i, o := range tt.outcomes {
				if o == 'f' {
					if _, change := b.RecordFailure(); change.Opened {
						require.Equal(t, -1, openedAt, "opened twice")
						openedAt = i
					}
					continue
				}
				b.RecordSuccess()
			}
			assert.Equal(t, tt.wantOpen, b.IsOpen())
			assert.Equal(t, tt.wantOpenedAt, openedAt)
		})
	}
}

// The customer cache probes Redis at most once per interval while open and
// closes on the first good probe.
func TestBreakerSingleProbeRecovery(t *testing.T) {
	b := New("customer-cache", WithFailureThreshold(5), WithSuccessThreshold(1))
	for i := 0; i < 5; i++ {
		b.RecordFailure()
	}
	require.True(t, b.IsOpen())

	t.Run("failed probe keeps it open without a new transition", func(t *testing.T) {
		useFallback, change := b.RecordFailure()
		assert.True(t, useFallback)
		assert.Equal(t, StateChange{}, change)
		assert.True(t, b.IsOpen())
	})

	t.Run("one successful probe closes it", func(t *testing.T) {
		usePrimary, change := b.RecordSuccess()
		assert.True(t, usePrimary)
		assert.True(t, change.Closed)
		assert.False(t, b.IsOpen())
	})

	t.Run("a closed breaker needs a full failure run again", func(t *testing.T) {
		for i := 0; i < 4; i++ {
			b.RecordFailure()
		}
		assert.False(t, b.IsOpen())
	})
}

func TestBreakerClosing(t *testing.T) {
	b := New("cache", WithFailureThreshold(1), WithSuccessThreshold(3))
	b.RecordFailure()
	require.True(t, b.IsOpen())

	b.RecordSuccess()
	b.RecordSuccess()
	b.RecordFailure()
	assert.True(t, b.IsOpen(), "failure interrupts the success run")

	for i := 0; i < 2; i++ {
		usePrimary, _ := b.RecordSuccess()
		assert.False(t, usePrimary)
	}
	usePrimary, change := b.RecordSuccess()
	assert.True(t, usePrimary)
	assert.True(t, change.Closed)

	usePrimary, change = b.RecordSuccess()
	assert.True(t, usePrimary)
	assert.False(t, change.Closed, "already closed")
}

func TestBreakerReset(t *testing.T) {
	b := New("cache", WithFailureThreshold(2), WithSuccessThreshold(2))
	b.RecordFailure()
	b.RecordFailure()
	b.RecordSuccess()
	require.True(t, b.IsOpen())

	b.Reset()
	assert.Equal(t, StateClosed, b.State())

	b.RecordFailure()
	assert.False(t, b.IsOpen(), "counters cleared by reset")
}

func TestBreakerConcurrentOutcomesOpenOnce(t *testing.T) {
	b := New("cache", WithFailureThreshold(10))

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		opened int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, change := b.RecordFailure(); change.Opened {
				mu.Lock()
				opened++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.True(t, b.IsOpen())
	assert.Equal(t, 1, opened)
}
