// File: internal/simulant/weighted.go
package simulant

import (
	"fmt"
	"math/rand"
)

// WeightedOption pairs a payload with a relative, non-negative weight.
// Weights are relative: they do not have to sum to 100 or to any particular
// total. The selection probability of option i is weight(i) / sum(weights).
type WeightedOption[T any] struct {
	Weight float64
	Value  T
}

// PickWeighted draws one option from opts proportionally to its weight.
// The rng is injected so callers can make draws deterministic in tests.
//
// If every weight is zero the first option is returned; the draw would
// otherwise be undefined. An empty option list is a programming error and
// fails loudly.
func PickWeighted[T any](rng *rand.Rand, opts []WeightedOption[T]) (T, error) {
	var zero T
	if len(opts) == 0 {
		return zero, fmt.Errorf("simulant: weighted pick over empty option list")
	}

	var total float64
	for _, opt := range opts {
		if opt.Weight < 0 {
			return zero, fmt.Errorf("simulant: negative weight %v", opt.Weight)
		}
		total += opt.Weight
	}
	if total == 0 {
		// Guarded special case, not silent normalization.
		return opts[0].Value, nil
	}

	r := rng.Float64() * total
	for _, opt := range opts {
		r -= opt.Weight
		if r <= 0 {
			return opt.Value, nil
		}
	}
	// Floating point accumulation can leave a sliver; the last option owns it.
	return opts[len(opts)-1].Value, nil
}

// MustPickWeighted is PickWeighted for option tables that are known non-empty
// at compile time (the fixed device/acquisition/plan tables).
func MustPickWeighted[T any](rng *rand.Rand, opts []WeightedOption[T]) T {
	v, err := PickWeighted(rng, opts)
	if err != nil {
		panic(err)
	}
	return v
}
