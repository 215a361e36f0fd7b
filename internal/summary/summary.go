// Package summary defines the fixed-shape COVID-19 summary tree that report
// values are slotted into before being written out.
package summary

import (
	"errors"
	"fmt"
)

// Category labels, as they appear in the published reports.
const (
	AttrTested       = "検査実施人数"
	AttrPositive     = "陽性患者数"
	AttrHospitalized = "入院中"
	AttrMild         = "軽症・中等症"
	AttrSevere       = "重症"
	AttrDeaths       = "死亡"
	AttrDischarged   = "退院"
)

// ErrUnknownAttr is returned when a label is not part of the tree.
var ErrUnknownAttr = errors.New("unknown summary attribute")

// Node is one category in the tree. Leaves have no children.
type Node struct {
	Attr     string  `json:"attr"`
	Value    int     `json:"value"`
	Children []*Node `json:"children,omitempty"`
}

// Summary is the root node plus the time the figures were last published.
type Summary struct {
	Node
	LastUpdate string `json:"last_update"`
}

// New returns a zero-valued tree. Each call builds an independent copy.
func New() *Summary {
	return &Summary{
		Node: Node{
			Attr: AttrTested,
			Children: []*Node{
				{
					Attr: AttrPositive,
					Children: []*Node{
						{
							Attr: AttrHospitalized,
							Children: []*Node{
								{Attr: AttrMild},
								{Attr: AttrSevere},
							},
						},
						{Attr: AttrDeaths},
						{Attr: AttrDischarged},
					},
				},
			},
		},
	}
}

// Find returns the first node labelled attr in depth-first order, or nil.
func (n *Node) Find(attr string) *Node {
	if n.Attr == attr {
		return n
	}
	for _, c := range n.Children {
		if found := c.Find(attr); found != nil {
			return found
		}
	}
	return nil
}

// Walk visits every node depth-first, passing its depth (root is 0).
func (n *Node) Walk(fn func(depth int, node *Node)) {
	n.walk(0, fn)
}

func (n *Node) walk(depth int, fn func(int, *Node)) {
	fn(depth, n)
	for _, c := range n.Children {
		c.walk(depth+1, fn)
	}
}

// Set overwrites the value of the node labelled attr.
func (s *Summary) Set(attr string, value int) error {
	node := s.Find(attr)
	if node == nil {
		return fmt.Errorf("%w: %s", ErrUnknownAttr, attr)
	}
	node.Value = value
	return nil
}

// Get returns the value of the node labelled attr.
func (s *Summary) Get(attr string) (int, error) {
	node := s.Find(attr)
	if node == nil {
		return 0, fmt.Errorf("%w: %s", ErrUnknownAttr, attr)
	}
	return node.Value, nil
}
