package scope

import (
	"math/rand"
	"sync"
)

// Selector picks an index in [0, n).
type Selector interface {
	Select(n int) int
}

type randomSelector struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewRandomSelector(seed int64) Selector {
	return &randomSelector{rnd: rand.New(rand.NewSource(seed))}
}

func (s *randomSelector) Select(n int) int {
	if n <= 1 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Intn(n)
}

type FixedSelector int

func (f FixedSelector) Select(n int) int {
	if n <= 0 {
		return 0
	}
	i := int(f) % n
	if i < 0 {
		i += n
	}
	return i
}
