package services

import "math/rand"

// IntN produces a uniformly distributed integer in [0, n). Services take it
// as an injected dependency so shuffle behavior can be pinned in tests.
type IntN func(n int) int

// DefaultIntN is the production random source.
func DefaultIntN() IntN {
	return rand.Intn
}

// shufflePerm returns a random permutation of [0..n) using a Fisher-Yates
// walk from the last index down. The identity slice is built fresh each
// call; nothing is mutated in place for the caller.
func shufflePerm(n int, intn IntN) []int {
	perm := identityPerm(n)
	for i := n - 1; i > 0; i-- {
		j := intn(i + 1)
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm
}

func identityPerm(n int) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	return perm
}
