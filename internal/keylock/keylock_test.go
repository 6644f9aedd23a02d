package keylock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLockSerializesSameKey(t *testing.T) {
	locks := New()

	var counter int
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("shared")
			counter++
			unlock()
		}()
	}
	wg.Wait()

	require.Equal(t, 100, counter)
}

func TestLockSameKeySameStripe(t *testing.T) {
	locks := New()
	require.Same(t, locks.stripe("k"), locks.stripe("k"))
}

func TestUnlockReleases(t *testing.T) {
	locks := New()

	unlock := locks.Lock("k")
	unlock()

	done := make(chan struct{})
	go func() {
		unlock := locks.Lock("k")
		unlock()
		close(done)
	}()
	<-done
}
