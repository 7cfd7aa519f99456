package services

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentityPerm(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2, 3}, identityPerm(4))
	assert.Empty(t, identityPerm(0))
}

func TestShufflePermIsPermutation(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	perm := shufflePerm(50, r.Intn)

	assert.Len(t, perm, 50)
	sorted := append([]int(nil), perm...)
	sort.Ints(sorted)
	assert.Equal(t, identityPerm(50), sorted)
}

func TestShufflePermDeterministicForFixedSource(t *testing.T) {
	a := shufflePerm(20, rand.New(rand.NewSource(7)).Intn)
	b := shufflePerm(20, rand.New(rand.NewSource(7)).Intn)
	assert.Equal(t, a, b)
}

func TestShufflePermDegenerateSizes(t *testing.T) {
	intn := rand.New(rand.NewSource(1)).Intn
	assert.Empty(t, shufflePerm(0, intn))
	assert.Equal(t, []int{0}, shufflePerm(1, intn))
}
