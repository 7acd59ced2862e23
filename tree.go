package cog

import (
	"fmt"
	"math"
	"sort"
)

// DecisionTree is a CART classifier that grows binary splits minimizing
// weighted gini impurity. Features are scanned in column order and only a
// strictly better split replaces the current best, so training is
// deterministic.
type DecisionTree struct {
	// MaxDepth limits tree depth. 0 means unlimited.
	MaxDepth int

	// MinSamplesSplit is the smallest node that may be split. Default: 2.
	MinSamplesSplit int

	// MinSamplesLeaf is the smallest allowed child. Default: 1.
	MinSamplesLeaf int

	// Workers controls the prediction fan-out. 0 means runtime.NumCPU().
	Workers int

	root    *treeNode
	classes []int
	dims    int
}

type treeNode struct {
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
	class     int // index into classes; valid on leaves
	leaf      bool
}

// NewDecisionTree returns a DecisionTree with default settings.
func NewDecisionTree() *DecisionTree {
	return &DecisionTree{MinSamplesSplit: 2, MinSamplesLeaf: 1}
}

// Clone implements Classifier.
func (dt *DecisionTree) Clone() Classifier {
	return &DecisionTree{
		MaxDepth:        dt.MaxDepth,
		MinSamplesSplit: dt.MinSamplesSplit,
		MinSamplesLeaf:  dt.MinSamplesLeaf,
		Workers:         dt.Workers,
	}
}

// Depth returns the depth of the fitted tree (0 for a single leaf).
func (dt *DecisionTree) Depth() int { return dt.root.depth() }

func (n *treeNode) depth() int {
	if n == nil || n.leaf {
		return 0
	}
	return 1 + max(n.left.depth(), n.right.depth())
}

// Fit implements Classifier.
func (dt *DecisionTree) Fit(features [][]float64, labels []int) error {
	if len(features) != len(labels) {
		return fmt.Errorf("cog: tree: %d feature rows but %d labels", len(features), len(labels))
	}
	if len(features) == 0 {
		return ErrEmptyDataset
	}
	if dt.MinSamplesSplit < 2 {
		dt.MinSamplesSplit = 2
	}
	if dt.MinSamplesLeaf < 1 {
		dt.MinSamplesLeaf = 1
	}

	dt.classes = CountLabels(labels).Classes()
	classIndex := make(map[int]int, len(dt.classes))
	for i, c := range dt.classes {
		classIndex[c] = i
	}
	y := make([]int, len(labels))
	for i, l := range labels {
		y[i] = classIndex[l]
	}
	dt.dims = len(features[0])

	b := &treeBuilder{dt: dt, x: features, y: y, nClasses: len(dt.classes)}
	rows := make([]int, len(features))
	for i := range rows {
		rows[i] = i
	}
	dt.root = b.build(rows, 0)
	return nil
}

// Predict implements Classifier.
func (dt *DecisionTree) Predict(features [][]float64) ([]int, error) {
	if dt.root == nil {
		return nil, ErrNotFitted
	}
	out := make([]int, len(features))
	for i, row := range features {
		if len(row) != dt.dims {
			return nil, fmt.Errorf("cog: tree: row %d has %d features, want %d", i, len(row), dt.dims)
		}
	}
	parallelRows(len(features), workerCount(dt.Workers), func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = dt.classes[dt.root.classify(features[i])]
		}
	})
	return out, nil
}

func (n *treeNode) classify(row []float64) int {
	for !n.leaf {
		if row[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.class
}

type treeBuilder struct {
	dt       *DecisionTree
	x        [][]float64
	y        []int
	nClasses int
}

type split struct {
	feature   int
	threshold float64
	impurity  float64
}

func (b *treeBuilder) build(rows []int, depth int) *treeNode {
	counts := b.classCounts(rows)
	leaf := &treeNode{leaf: true, class: argmax(counts)}

	if len(rows) < b.dt.MinSamplesSplit || (b.dt.MaxDepth > 0 && depth >= b.dt.MaxDepth) {
		return leaf
	}
	if counts[leaf.class] == len(rows) {
		return leaf
	}

	best, ok := b.bestSplit(rows)
	if !ok {
		return leaf
	}

	var left, right []int
	for _, r := range rows {
		if b.x[r][best.feature] <= best.threshold {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return leaf
	}
	return &treeNode{
		feature:   best.feature,
		threshold: best.threshold,
		left:      b.build(left, depth+1),
		right:     b.build(right, depth+1),
	}
}

// bestSplit sweeps every feature in sorted order, keeping running class
// counts on each side so each candidate threshold costs O(classes).
func (b *treeBuilder) bestSplit(rows []int) (split, bool) {
	n := len(rows)
	minLeaf := b.dt.MinSamplesLeaf
	best := split{impurity: math.Inf(1)}
	found := false

	sorted := make([]int, n)
	leftCounts := make([]int, b.nClasses)
	rightCounts := make([]int, b.nClasses)

	for f := 0; f < len(b.x[rows[0]]); f++ {
		copy(sorted, rows)
		sort.SliceStable(sorted, func(i, j int) bool {
			return b.x[sorted[i]][f] < b.x[sorted[j]][f]
		})

		clear(leftCounts)
		copy(rightCounts, b.classCounts(rows))

		for i := 0; i < n-1; i++ {
			c := b.y[sorted[i]]
			leftCounts[c]++
			rightCounts[c]--

			lo, hi := b.x[sorted[i]][f], b.x[sorted[i+1]][f]
			if lo == hi {
				continue
			}
			nl, nr := i+1, n-i-1
			if nl < minLeaf || nr < minLeaf {
				continue
			}
			imp := (float64(nl)*gini(leftCounts, nl) + float64(nr)*gini(rightCounts, nr)) / float64(n)
			if imp < best.impurity {
				best = split{feature: f, threshold: (lo + hi) / 2, impurity: imp}
				found = true
			}
		}
	}
	return best, found
}

func (b *treeBuilder) classCounts(rows []int) []int {
	counts := make([]int, b.nClasses)
	for _, r := range rows {
		counts[b.y[r]]++
	}
	return counts
}

func gini(counts []int, total int) float64 {
	if total == 0 {
		return 0
	}
	impurity := 1.0
	for _, c := range counts {
		p := float64(c) / float64(total)
		impurity -= p * p
	}
	return impurity
}

// argmax returns the index of the largest count, the lowest index on ties.
func argmax(counts []int) int {
	best := 0
	for i, c := range counts {
		if c > counts[best] {
			best = i
		}
	}
	return best
}
