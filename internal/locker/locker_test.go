package locker_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/greenbasket/greenbasket-web/internal/locker"
)

func TestLock_SerializesSameUser(t *testing.T) {
	locks := locker.New()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock(42)
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
}

func TestLock_DifferentUsersDoNotBlockEachOther(t *testing.T) {
	locks := locker.New()

	unlockA := locks.Lock(1)
	done := make(chan struct{})
	go func() {
		unlockB := locks.Lock(2)
		unlockB()
		close(done)
	}()
	<-done // user 2 proceeds while user 1 is still held
	unlockA()
}
