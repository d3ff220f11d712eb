// Package position allocates fractional ordering keys for segments and components.
package position

// Step is the gap left between consecutive siblings.
const Step = 1000.0

// Next returns max(existing)+Step, or Step for an empty set.
func Next(existing []float64) float64 {
	if len(existing) == 0 {
		return Step
	}
	max := existing[0]
	for _, p := range existing[1:] {
		if p > max {
			max = p
		}
	}
	return max + Step
}

// After is Next for a maximum already computed by the store; nil means the parent has no live children.
func After(max *float64) float64 {
	if max == nil {
		return Next(nil)
	}
	return Next([]float64{*max})
}

// Sequence returns n positions Step, 2*Step, ...
func Sequence(n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = Step * float64(i+1)
	}
	return out
}

// BeatPositions returns the 1-based integer positions used for template-driven beats.
func BeatPositions(n int) []int {
	if n <= 0 {
		return nil
	}
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

// Between picks a key strictly between two neighbours so a move touches only the moved row.
func Between(prev, next *float64) float64 {
	switch {
	case prev == nil && next == nil:
		return Step
	case next == nil:
		return *prev + Step
	case prev == nil:
		if *next <= 0 {
			return *next - Step
		}
		return *next / 2
	default:
		return *prev + (*next-*prev)/2
	}
}
