package report

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Facts is the fixed list shown one at a time under a prediction.
var Facts = [...]string{
	"Solar power is the most abundant energy source on Earth.",
	"Photovoltaic panels convert sunlight directly into electricity.",
	"India has one of the world's largest solar farms in Rajasthan.",
	"Solar panels work even on cloudy days by capturing diffuse sunlight.",
}

// FactPicker chooses a fact uniformly at random. Safe for concurrent use.
type FactPicker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewFactPicker returns a picker seeded with seed, or from the clock when seed is 0.
func NewFactPicker(seed uint64) *FactPicker {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &FactPicker{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Pick returns one of Facts.
func (p *FactPicker) Pick() string {
	p.mu.Lock()
	i := p.rng.IntN(len(Facts))
	p.mu.Unlock()
	return Facts[i]
}
