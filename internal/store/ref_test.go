package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRef_SetAndWatch(t *testing.T) {
	r := NewRef(1)
	assert.Equal(t, 1, r.Get())

	var seen []int
	cancel := r.Watch(func(v int) { seen = append(seen, v) })

	r.Set(2)
	r.Update(func(v int) int { return v * 10 })
	cancel()
	r.Set(3)

	assert.Equal(t, []int{2, 20}, seen)
	assert.Equal(t, 3, r.Get())
}

func TestRef_WatcherMaySetOtherRefs(t *testing.T) {
	a := NewRef("")
	b := NewRef(0)
	a.Watch(func(v string) { b.Set(len(v)) })

	a.Set("hello")
	assert.Equal(t, 5, b.Get())
}

func TestRef_ConcurrentUpdates(t *testing.T) {
	r := NewRef(0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Update(func(v int) int { return v + 1 })
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, r.Get())
}
