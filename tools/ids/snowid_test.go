package ids

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateUniqueUnderConcurrency(t *testing.T) {
	const n = 2000

	var mu sync.Mutex
	seen := make(map[int64]struct{}, n)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < n/8; j++ {
				id := Generate()
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, n)
}

func TestGenerateMonotonicWithinGoroutine(t *testing.T) {
	prev := Generate()
	for i := 0; i < 100; i++ {
		next := Generate()
		assert.Greater(t, next, prev)
		prev = next
	}
}

func TestGenerateStringDecimal(t *testing.T) {
	s := GenerateString()
	assert.NotEmpty(t, s)
	for _, r := range s {
		assert.True(t, r >= '0' && r <= '9')
	}
}
