package tracker

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_AddDone(t *testing.T) {
	tr := New()

	tr.Add(3)
	assert.Equal(t, 3, tr.Count())

	tr.Done(1)
	tr.Done(2)
	assert.Equal(t, 0, tr.Count())
}

func TestTracker_WaitReturnsAtZero(t *testing.T) {
	tr := New()
	tr.Add(2)

	done := make(chan struct{})
	go func() {
		tr.Wait()
		close(done)
	}()

	tr.Done(1)
	select {
	case <-done:
		t.Fatal("Wait() returned before count reached zero")
	case <-time.After(20 * time.Millisecond):
	}

	tr.Done(1)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait() did not return after count reached zero")
	}
}

func TestTracker_WaitLevelTriggered(t *testing.T) {
	tr := New()
	tr.Add(1)
	tr.Done(1)

	done := make(chan struct{})
	go func() {
		tr.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait() on an already-quiescent tracker must return immediately")
	}
}

func TestTracker_AddClearsEvent(t *testing.T) {
	tr := New()
	tr.Add(1)
	tr.Done(1)
	tr.Add(1)

	done := make(chan struct{})
	go func() {
		tr.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Wait() returned while work was outstanding")
	case <-time.After(20 * time.Millisecond):
	}

	tr.Done(1)
	<-done
}

func TestTracker_UnderflowPanics(t *testing.T) {
	tr := New()
	require.Panics(t, func() { tr.Done(1) })
}

func TestTracker_ConcurrentAccounting(t *testing.T) {
	tr := New()

	const workers = 8
	const perWorker = 100

	tr.Add(workers * perWorker)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				tr.Done(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, tr.Count())
	tr.Wait() // must not block
}
