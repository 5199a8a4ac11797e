package evaluation

import "math/rand/v2"

// Sampler picks n indices from [0, population).
type Sampler interface {
	Sample(population, n int) []int
}

// RandomSampler draws without replacement when population >= n,
// otherwise with replacement. It always returns n indices.
type RandomSampler struct{}

// Sample implements Sampler.
func (RandomSampler) Sample(population, n int) []int {
	if population <= 0 || n <= 0 {
		return nil
	}
	if population >= n {
		return rand.Perm(population)[:n]
	}
	out := make([]int, n)
	for i := range out {
		out[i] = rand.IntN(population)
	}
	return out
}
