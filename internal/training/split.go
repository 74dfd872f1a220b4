package training

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/Veraticus/codeadvisor/internal/common"
)

// TrainTestSplit shuffles n row indices with a seeded generator and holds out
// ceil(n*testFraction) of them for testing. Identical arguments always produce
// the identical split.
func TrainTestSplit(n int, testFraction float64, seed int64) (Split, error) {
	if testFraction <= 0 || testFraction >= 1 {
		return Split{}, fmt.Errorf("%w: test_fraction must be in (0,1), got %v", common.ErrInvalidTestFraction, testFraction)
	}

	nTest := int(math.Ceil(float64(n) * testFraction))
	nTrain := n - nTest
	if nTest < 1 || nTrain < 1 {
		return Split{}, fmt.Errorf("%w: %d rows cannot be split with test_fraction=%v", common.ErrInsufficientData, n, testFraction)
	}

	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x5851f42d4c957f2d))
	perm := rng.Perm(n)

	return Split{
		Test:  perm[:nTest],
		Train: perm[nTest:],
	}, nil
}
