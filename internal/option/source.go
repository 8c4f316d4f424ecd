package option

import (
	"math/rand"
	"time"
)

// Source is the randomness provider Generate uses for the uniform-random
// spawn-tile choice (spec.md §4.7). Grounded on the teacher's dice.Source
// abstraction (internal/game/dice/dice.go): a narrow Intn interface instead
// of a concrete *rand.Rand, so tests can substitute a deterministic sequence.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// mathRandSource wraps math/rand.Rand as a Source.
type mathRandSource struct {
	r *rand.Rand
}

// NewSource returns a Source seeded from the current time, suitable for
// production use.
func NewSource() Source {
	return &mathRandSource{r: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (s *mathRandSource) Intn(n int) int {
	return s.r.Intn(n)
}
