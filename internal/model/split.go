package model

import (
	"fmt"
	"math"
	"math/rand"
)

// Split partitions row indices [0,n) into train and test sets by simple
// random sampling. The train size is round(trainFrac*n), clamped so both
// partitions are non-empty. The caller owns the random source: the two
// trainers each seed their own so their test sets stay independent of call
// order.
func Split(n int, trainFrac float64, rng *rand.Rand) (train, test []int, err error) {
	if n < 2 {
		return nil, nil, fmt.Errorf("need at least 2 rows to split, got %d", n)
	}
	if trainFrac <= 0 || trainFrac >= 1 {
		return nil, nil, fmt.Errorf("train fraction must be in (0,1), got %g", trainFrac)
	}

	k := int(math.Round(trainFrac * float64(n)))
	if k < 1 {
		k = 1
	}
	if k > n-1 {
		k = n - 1
	}

	perm := rng.Perm(n)
	train = append([]int(nil), perm[:k]...)
	test = append([]int(nil), perm[k:]...)
	return train, test, nil
}
