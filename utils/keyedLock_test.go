package utils

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	km := NewKeyedMutex()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock(ProgressKey("exam", 1, 1))
			counter++
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}

func TestKeyedMutexEvictsReleasedKeys(t *testing.T) {
	km := NewKeyedMutex()

	unlockA := km.Lock(ProgressKey("course", 1, 1))
	unlockB := km.Lock(ProgressKey("course", 2, 2))

	km.mu.Lock()
	assert.Len(t, km.locks, 2)
	km.mu.Unlock()

	unlockA()
	unlockB()

	km.mu.Lock()
	assert.Len(t, km.locks, 0)
	km.mu.Unlock()
}

func TestKeyedMutexKeepsEntryWhileContended(t *testing.T) {
	km := NewKeyedMutex()

	unlock := km.Lock(ProgressKey("exam", 3, 3))

	acquired := make(chan struct{})
	go func() {
		second := km.Lock(ProgressKey("exam", 3, 3))
		second()
		close(acquired)
	}()

	// Give the waiter a chance to queue up; the entry must survive until
	// the last holder releases it
	time.Sleep(20 * time.Millisecond)
	km.mu.Lock()
	assert.Len(t, km.locks, 1)
	km.mu.Unlock()

	unlock()
	<-acquired

	km.mu.Lock()
	assert.Len(t, km.locks, 0)
	km.mu.Unlock()
}
