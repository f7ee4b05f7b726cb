package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	km := newKeyedMutex()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			km.Lock("g-1")
			counter++
			km.Unlock("g-1")
		}()
	}
	wg.Wait()
	assert.Equal(t, 100, counter)
}

func TestKeyedMutexReleasesEntries(t *testing.T) {
	km := newKeyedMutex()

	km.Lock("g-1")
	km.Unlock("g-1")

	km.mu.Lock()
	defer km.mu.Unlock()
	assert.Empty(t, km.locks)
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	km := newKeyedMutex()

	km.Lock("g-1")
	done := make(chan struct{})
	go func() {
		km.Lock("g-2")
		km.Unlock("g-2")
		close(done)
	}()
	<-done
	km.Unlock("g-1")
}
