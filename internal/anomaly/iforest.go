package anomaly

import (
	"math"
	"math/rand"
)

const eulerGamma = 0.5772156649

// Forest is an isolation forest: an ensemble of random trees where points that
// are easy to isolate (short average path) are considered outliers.
type Forest struct {
	Trees       []*Node `json:"trees"`
	SampleSize  int     `json:"sample_size"`
	HeightLimit int     `json:"height_limit"`
	Dims        int     `json:"dims"`
}

// Node is a single isolation tree node. Leaves carry the number of training
// points that reached them so path lengths can be corrected for unbuilt subtrees.
type Node struct {
	Leaf  bool    `json:"leaf,omitempty"`
	Size  int     `json:"size,omitempty"`
	Dim   int     `json:"dim,omitempty"`
	Split float64 `json:"split,omitempty"`
	Left  *Node   `json:"left,omitempty"`
	Right *Node   `json:"right,omitempty"`
}

// fitForest grows numTrees trees, each on a sub-sample drawn without replacement.
func fitForest(X [][]float64, numTrees, sampleSize int, rng *rand.Rand) *Forest {
	n := len(X)
	if sampleSize > n {
		sampleSize = n
	}
	f := &Forest{
		Trees:       make([]*Node, numTrees),
		SampleSize:  sampleSize,
		HeightLimit: int(math.Ceil(math.Log2(float64(max(sampleSize, 2))))),
		Dims:        len(X[0]),
	}
	for i := range f.Trees {
		idx := rng.Perm(n)[:sampleSize]
		sample := make([][]float64, sampleSize)
		for j, k := range idx {
			sample[j] = X[k]
		}
		f.Trees[i] = growTree(sample, 0, f.HeightLimit, rng)
	}
	return f
}

func growTree(X [][]float64, depth, limit int, rng *rand.Rand) *Node {
	if len(X) <= 1 || depth >= limit {
		return &Node{Leaf: true, Size: len(X)}
	}

	// Only dimensions that still vary inside this node can split it.
	dims := len(X[0])
	lo := make([]float64, dims)
	hi := make([]float64, dims)
	copy(lo, X[0])
	copy(hi, X[0])
	for _, row := range X[1:] {
		for d, v := range row {
			lo[d] = math.Min(lo[d], v)
			hi[d] = math.Max(hi[d], v)
		}
	}
	candidates := make([]int, 0, dims)
	for d := 0; d < dims; d++ {
		if hi[d] > lo[d] {
			candidates = append(candidates, d)
		}
	}
	if len(candidates) == 0 {
		return &Node{Leaf: true, Size: len(X)}
	}

	dim := candidates[rng.Intn(len(candidates))]
	split := lo[dim] + rng.Float64()*(hi[dim]-lo[dim])
	left := make([][]float64, 0, len(X))
	right := make([][]float64, 0, len(X))
	for _, row := range X {
		if row[dim] < split {
			left = append(left, row)
		} else {
			right = append(right, row)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &Node{Leaf: true, Size: len(X)}
	}
	return &Node{
		Dim:   dim,
		Split: split,
		Left:  growTree(left, depth+1, limit, rng),
		Right: growTree(right, depth+1, limit, rng),
	}
}

// averagePathLength is c(n), the mean path length of an unsuccessful search
// in a binary search tree of n points.
func averagePathLength(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	}
	return 2.0*(math.Log(float64(n-1))+eulerGamma) - 2.0*float64(n-1)/float64(n)
}

func pathLength(node *Node, x []float64) float64 {
	depth := 0.0
	for !node.Leaf {
		if x[node.Dim] < node.Split {
			node = node.Left
		} else {
			node = node.Right
		}
		depth++
	}
	return depth + averagePathLength(node.Size)
}

// Score returns the anomaly score in (0, 1]; higher means easier to isolate.
func (f *Forest) Score(x []float64) float64 {
	if len(f.Trees) == 0 {
		return 0
	}
	sum := 0.0
	for _, t := range f.Trees {
		sum += pathLength(t, x)
	}
	mean := sum / float64(len(f.Trees))
	c := averagePathLength(f.SampleSize)
	if c <= 0 {
		c = 1
	}
	return math.Pow(2, -mean/c)
}
