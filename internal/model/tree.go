package model

import (
	"fmt"
	"sort"
)

// TreeConfig controls regression tree growth.
type TreeConfig struct {
	// MaxDepth bounds the tree height; the root is depth 0.
	MaxDepth int
	// MinLeaf is the minimum number of training rows in a leaf.
	MinLeaf int
	// MinRelImprove is the complexity threshold: a split must reduce the
	// total sum of squared errors by at least this fraction of the root
	// node's SSE.
	MinRelImprove float64
}

// DefaultTreeConfig mirrors common ANOVA tree defaults: depth cap of 8,
// at least 7 rows per leaf, 1% complexity threshold.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{MaxDepth: 8, MinLeaf: 7, MinRelImprove: 0.01}
}

// TreeFit holds the fitted regression tree and its held-out evaluation.
type TreeFit struct {
	TestRMSE float64

	// FeatureUsage counts how many internal splits use each feature; a
	// feature never selected is absent.
	FeatureUsage map[string]int
	Nodes        int
	Depth        int

	TestActual    []float64
	TestPredicted []float64

	root  *treeNode
	names []string
}

// treeNode is either an internal split (left/right non-nil) or a leaf.
type treeNode struct {
	feature    int
	threshold  float64
	left       *treeNode
	right      *treeNode
	prediction float64
}

func (n *treeNode) leaf() bool { return n.left == nil }

// FitTree grows an ANOVA regression tree on the train partition and
// evaluates it on the test partition. Splits greedily minimize the summed
// within-node variance of the target; candidate thresholds are midpoints
// between adjacent distinct feature values.
func FitTree(ds Dataset, train, test []int, cfg TreeConfig) (*TreeFit, error) {
	if len(train) < 2*cfg.MinLeaf {
		return nil, fmt.Errorf("need at least %d training rows, got %d", 2*cfg.MinLeaf, len(train))
	}
	if len(test) == 0 {
		return nil, fmt.Errorf("empty test partition")
	}

	g := &grower{ds: ds, cfg: cfg, rootSSE: sse(ds, train)}
	root := g.grow(train, 0)

	fit := &TreeFit{
		FeatureUsage: map[string]int{},
		root:         root,
		names:        ds.Names,
	}
	fit.walk(root, 0)

	fit.TestActual = make([]float64, len(test))
	fit.TestPredicted = make([]float64, len(test))
	for i, idx := range test {
		fit.TestActual[i] = ds.Y[idx]
		fit.TestPredicted[i] = fit.predictIndex(ds, idx)
	}
	fit.TestRMSE = RMSE(fit.TestActual, fit.TestPredicted)

	return fit, nil
}

// Predict evaluates the tree on one feature vector ordered as
// Dataset.Names.
func (f *TreeFit) Predict(features []float64) float64 {
	n := f.root
	for !n.leaf() {
		if features[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.prediction
}

func (f *TreeFit) predictIndex(ds Dataset, idx int) float64 {
	n := f.root
	for !n.leaf() {
		if ds.X.At(idx, n.feature) <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.prediction
}

func (f *TreeFit) walk(n *treeNode, depth int) {
	f.Nodes++
	if depth > f.Depth {
		f.Depth = depth
	}
	if n.leaf() {
		return
	}
	f.FeatureUsage[f.names[n.feature]]++
	f.walk(n.left, depth+1)
	f.walk(n.right, depth+1)
}

type grower struct {
	ds      Dataset
	cfg     TreeConfig
	rootSSE float64
}

func (g *grower) grow(rows []int, depth int) *treeNode {
	node := &treeNode{prediction: meanY(g.ds, rows)}

	if depth >= g.cfg.MaxDepth || len(rows) < 2*g.cfg.MinLeaf {
		return node
	}

	feature, threshold, gain := g.bestSplit(rows)
	if feature < 0 || gain < g.cfg.MinRelImprove*g.rootSSE {
		return node
	}

	var left, right []int
	for _, idx := range rows {
		if g.ds.X.At(idx, feature) <= threshold {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}

	node.feature = feature
	node.threshold = threshold
	node.left = g.grow(left, depth+1)
	node.right = g.grow(right, depth+1)
	return node
}

// bestSplit scans every feature for the threshold minimizing the summed
// SSE of the two children, using sorted order and running sums so each
// feature costs O(n log n). Returns feature -1 when no admissible split
// exists.
func (g *grower) bestSplit(rows []int) (feature int, threshold, gain float64) {
	parentSSE := sse(g.ds, rows)
	n := len(rows)

	feature = -1
	bestChildSSE := parentSSE

	order := make([]int, n)
	for f := 0; f < len(g.ds.Names); f++ {
		copy(order, rows)
		sort.Slice(order, func(i, j int) bool {
			return g.ds.X.At(order[i], f) < g.ds.X.At(order[j], f)
		})

		// Running sums give O(1) SSE for each prefix/suffix:
		// sse = sumSq - sum^2/n.
		totalSum, totalSumSq := 0.0, 0.0
		for _, idx := range order {
			totalSum += g.ds.Y[idx]
			totalSumSq += g.ds.Y[idx] * g.ds.Y[idx]
		}

		leftSum, leftSumSq := 0.0, 0.0
		for i := 0; i < n-1; i++ {
			y := g.ds.Y[order[i]]
			leftSum += y
			leftSumSq += y * y

			nl := i + 1
			nr := n - nl
			if nl < g.cfg.MinLeaf || nr < g.cfg.MinLeaf {
				continue
			}

			xi := g.ds.X.At(order[i], f)
			xj := g.ds.X.At(order[i+1], f)
			if xi == xj {
				// Can't cut between equal values.
				continue
			}

			leftSSE := leftSumSq - leftSum*leftSum/float64(nl)
			rightSum := totalSum - leftSum
			rightSSE := (totalSumSq - leftSumSq) - rightSum*rightSum/float64(nr)

			if child := leftSSE + rightSSE; child < bestChildSSE {
				bestChildSSE = child
				feature = f
				threshold = (xi + xj) / 2
			}
		}
	}

	if feature < 0 {
		return -1, 0, 0
	}
	return feature, threshold, parentSSE - bestChildSSE
}

func meanY(ds Dataset, rows []int) float64 {
	sum := 0.0
	for _, idx := range rows {
		sum += ds.Y[idx]
	}
	return sum / float64(len(rows))
}

func sse(ds Dataset, rows []int) float64 {
	m := meanY(ds, rows)
	s := 0.0
	for _, idx := range rows {
		d := ds.Y[idx] - m
		s += d * d
	}
	return s
}
