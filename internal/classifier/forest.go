package classifier

import (
	"context"
	"fmt"

	"github.com/justsurfingit/lead-labeler/internal/predict"
)

// Node is one entry of a flattened decision tree. Leaves have Left == -1 and
// carry per-class sample counts in Value; split nodes send v[Feature] <=
// Threshold to Left.
type Node struct {
	Feature   int       `json:"feature" yaml:"feature"`
	Threshold float64   `json:"threshold" yaml:"threshold"`
	Left      int       `json:"left" yaml:"left"`
	Right     int       `json:"right" yaml:"right"`
	Value     []float64 `json:"value,omitempty" yaml:"value,omitempty"`
}

// Tree is a decision tree rooted at Nodes[0].
type Tree struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
}

func (n Node) isLeaf() bool {
	return n.Left < 0
}

// Forest averages the normalized leaf distributions of its trees.
type Forest struct {
	Trees []Tree
}

func newForest(trees []Tree) (*Forest, error) {
	if len(trees) == 0 {
		return nil, fmt.Errorf("%w: forest has no trees", ErrInvalidArtifact)
	}
	for ti, t := range trees {
		if err := t.validate(); err != nil {
			return nil, fmt.Errorf("%w: tree %d: %v", ErrInvalidArtifact, ti, err)
		}
	}
	return &Forest{Trees: trees}, nil
}

func (t Tree) validate() error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("no nodes")
	}
	for i, n := range t.Nodes {
		if n.isLeaf() {
			if len(n.Value) != 2 {
				return fmt.Errorf("leaf %d needs 2 class counts, got %d", i, len(n.Value))
			}
			continue
		}
		if n.Feature < 0 || n.Feature >= predict.VectorSize {
			return fmt.Errorf("node %d splits on feature %d", i, n.Feature)
		}
		// children must point forward so evaluation always terminates
		if n.Left <= i || n.Left >= len(t.Nodes) || n.Right <= i || n.Right >= len(t.Nodes) {
			return fmt.Errorf("node %d has children out of range", i)
		}
	}
	return nil
}

func (t Tree) leaf(v predict.FeatureVector) Node {
	n := t.Nodes[0]
	for !n.isLeaf() {
		if v[n.Feature] <= n.Threshold {
			n = t.Nodes[n.Left]
		} else {
			n = t.Nodes[n.Right]
		}
	}
	return n
}

// Probabilities returns the averaged class distribution for v.
func (f *Forest) Probabilities(v predict.FeatureVector) [2]float64 {
	var p [2]float64
	for _, t := range f.Trees {
		leaf := t.leaf(v)
		total := leaf.Value[0] + leaf.Value[1]
		if total <= 0 {
			continue
		}
		p[0] += leaf.Value[0] / total
		p[1] += leaf.Value[1] / total
	}
	n := float64(len(f.Trees))
	p[0] /= n
	p[1] /= n
	return p
}

func (f *Forest) Predict(_ context.Context, v predict.FeatureVector) (int, error) {
	p := f.Probabilities(v)
	if p[1] > p[0] {
		return 1, nil
	}
	return 0, nil
}
