package subjects

import (
	"errors"
	"fmt"

	"github.com/roach88/mutsweep/internal/gen"
	"github.com/roach88/mutsweep/internal/mutant"
)

// AVLTreeName is the catalog name of the AVL tree subject.
const AVLTreeName = "avltree"

// AVL tree defects.
const (
	InsertLtRplLte             mutant.DefectID = "INSERT_LT_RPL_LTE"
	SearchNoNullCheck          mutant.DefectID = "SEARCH_NO_NULL_CHECK"
	DeleteFlipMinValue         mutant.DefectID = "DELETE_FLIP_MIN_VALUE"
	DeleteNoRebalance          mutant.DefectID = "DELETE_NO_REBALANCE"
	RotateRightZHeightMinus1   mutant.DefectID = "ROTATE_RIGHT_Z_HEIGHT_MINUS_1"
	RebalanceSkipInnerRotation mutant.DefectID = "REBALANCE_SKIP_INNER_ROTATION"
)

// AVLTree exercises a self-balancing search tree. The property inserts every
// element, deletes the first half, then checks membership and the tree's
// ordering, height and balance invariants.
type AVLTree struct {
	reg      *mutant.Registry
	strategy gen.Strategy

	insertLte, searchNoNil, deleteMax, deleteNoRebalance, rotateHeight, skipInner mutant.Point
}

// NewAVLTree loads the AVL tree subject.
func NewAVLTree() (*AVLTree, error) {
	b := mutant.NewBuilder(AVLTreeName)
	t := &AVLTree{
		strategy:          gen.DistinctIntSlices(),
		insertLte:         b.Point(b.Declare(InsertLtRplLte, "Sends equal keys left on insert. Equivalent for distinct keys.")),
		searchNoNil:       b.Point(b.Declare(SearchNoNullCheck, "Search dereferences past a leaf.")),
		deleteMax:         b.Point(b.Declare(DeleteFlipMinValue, "Replaces a deleted inner node with the maximum of its right subtree.")),
		deleteNoRebalance: b.Point(b.Declare(DeleteNoRebalance, "Skips rebalancing after a delete.")),
		rotateHeight:      b.Point(b.Declare(RotateRightZHeightMinus1, "Right rotation stores the demoted node's height one too low.")),
		skipInner:         b.Point(b.Declare(RebalanceSkipInnerRotation, "Treats left-right and right-left cases as single rotations.")),
	}
	reg, err := b.Build()
	if err != nil {
		return nil, err
	}
	t.reg = reg
	return t, nil
}

func (t *AVLTree) Name() string               { return AVLTreeName }
func (t *AVLTree) Registry() *mutant.Registry { return t.reg }
func (t *AVLTree) Strategy() gen.Strategy     { return t.strategy }

// Property implements subject.Subject.
func (t *AVLTree) Property(mc *mutant.Context, input any) error {
	keys, err := intSlice(AVLTreeName, input)
	if err != nil {
		return err
	}
	tree := &avl{mc: mc, s: t}
	for _, k := range keys {
		tree.insert(k)
	}
	deleted := keys[:len(keys)/2]
	for _, k := range deleted {
		tree.delete(k)
	}

	for _, k := range keys[len(keys)/2:] {
		if !tree.contains(k) {
			return fmt.Errorf("key %d missing", k)
		}
	}
	for _, k := range deleted {
		if tree.contains(k) {
			return fmt.Errorf("deleted key %d still present", k)
		}
	}
	if _, err := checkNode(tree.root, nil, nil); err != nil {
		return err
	}
	return nil
}

type avlNode struct {
	key         int
	height      int
	left, right *avlNode
}

// avl is one tree evaluated under one mutation context.
type avl struct {
	mc   *mutant.Context
	s    *AVLTree
	root *avlNode
}

func height(n *avlNode) int {
	if n == nil {
		return 0
	}
	return n.height
}

func balance(n *avlNode) int {
	return height(n.left) - height(n.right)
}

func update(n *avlNode) {
	n.height = 1 + max(height(n.left), height(n.right))
}

func (a *avl) rotateRight(z *avlNode) *avlNode {
	y := z.left
	z.left = y.right
	y.right = z
	update(z)
	mutant.When(a.mc, a.s.rotateHeight, func() { z.height-- })
	update(y)
	return y
}

func (a *avl) rotateLeft(z *avlNode) *avlNode {
	y := z.right
	z.right = y.left
	y.left = z
	update(z)
	update(y)
	return y
}

func (a *avl) rebalance(n *avlNode) *avlNode {
	update(n)
	inner := mutant.Choose(a.mc, a.s.skipInner, func() bool { return true }, func() bool { return false })
	switch bf := balance(n); {
	case bf > 1:
		if inner && balance(n.left) < 0 {
			n.left = a.rotateLeft(n.left)
		}
		return a.rotateRight(n)
	case bf < -1:
		if inner && balance(n.right) > 0 {
			n.right = a.rotateRight(n.right)
		}
		return a.rotateLeft(n)
	}
	return n
}

func (a *avl) insert(k int) {
	a.root = a.insertAt(a.root, k)
}

func (a *avl) insertAt(n *avlNode, k int) *avlNode {
	if n == nil {
		return &avlNode{key: k, height: 1}
	}
	less := mutant.Choose(a.mc, a.s.insertLte,
		func() bool { return k < n.key },
		func() bool { return k <= n.key })
	switch {
	case less:
		n.left = a.insertAt(n.left, k)
	case k > n.key:
		n.right = a.insertAt(n.right, k)
	default:
		return n
	}
	return a.rebalance(n)
}

func (a *avl) delete(k int) {
	a.root = a.deleteAt(a.root, k)
}

func (a *avl) deleteAt(n *avlNode, k int) *avlNode {
	if n == nil {
		return nil
	}
	switch {
	case k < n.key:
		n.left = a.deleteAt(n.left, k)
	case k > n.key:
		n.right = a.deleteAt(n.right, k)
	default:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		succ := mutant.Choose(a.mc, a.s.deleteMax,
			func() *avlNode { return extreme(n.right, func(m *avlNode) *avlNode { return m.left }) },
			func() *avlNode { return extreme(n.right, func(m *avlNode) *avlNode { return m.right }) })
		n.key = succ.key
		n.right = a.deleteAt(n.right, succ.key)
	}
	return mutant.Choose(a.mc, a.s.deleteNoRebalance,
		func() *avlNode { return a.rebalance(n) },
		func() *avlNode { return n })
}

// extreme follows next from n to the last node.
func extreme(n *avlNode, next func(*avlNode) *avlNode) *avlNode {
	for next(n) != nil {
		n = next(n)
	}
	return n
}

func (a *avl) contains(k int) bool {
	checkNil := mutant.Choose(a.mc, a.s.searchNoNil, func() bool { return true }, func() bool { return false })
	n := a.root
	for {
		if checkNil && n == nil {
			return false
		}
		switch {
		case k < n.key:
			n = n.left
		case k > n.key:
			n = n.right
		default:
			return true
		}
	}
}

var errUnbalanced = errors.New("tree unbalanced")

// checkNode verifies ordering within (lo, hi), stored heights and balance,
// returning the subtree height.
func checkNode(n *avlNode, lo, hi *int) (int, error) {
	if n == nil {
		return 0, nil
	}
	if (lo != nil && n.key <= *lo) || (hi != nil && n.key >= *hi) {
		return 0, fmt.Errorf("key %d out of order", n.key)
	}
	lh, err := checkNode(n.left, lo, &n.key)
	if err != nil {
		return 0, err
	}
	rh, err := checkNode(n.right, &n.key, hi)
	if err != nil {
		return 0, err
	}
	h := 1 + max(lh, rh)
	if n.height != h {
		return 0, fmt.Errorf("node %d: stored height %d, actual %d", n.key, n.height, h)
	}
	if lh-rh > 1 || rh-lh > 1 {
		return 0, fmt.Errorf("node %d: %w (left %d, right %d)", n.key, errUnbalanced, lh, rh)
	}
	return h, nil
}
