package locks

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLockSerializesSameKey(t *testing.T) {
	km := NewKeyedMutex()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock("flight:1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
}

func TestLockIndependentKeys(t *testing.T) {
	km := NewKeyedMutex()

	unlockA := km.Lock("flight:1")
	// A held lock on one key must not block another key.
	done := make(chan struct{})
	go func() {
		unlockB := km.Lock("flight:2")
		unlockB()
		close(done)
	}()
	<-done
	unlockA()
}

func TestEntriesReleased(t *testing.T) {
	km := NewKeyedMutex()

	unlock := km.Lock("reservation:x")
	unlock()

	km.mu.Lock()
	defer km.mu.Unlock()
	assert.Empty(t, km.locks)
}
