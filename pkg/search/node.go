package search

import (
	"context"

	"github.com/mindbeam/mindbase/pkg/mberr"
	"github.com/mindbeam/mindbase/pkg/mindbase"
)

// Kind discriminates Node's variants.
type Kind int

const (
	// Artifact is a leaf: atoms come from atoms_by_artifact_agent.
	Artifact Kind = iota
	// Pair is two sub-searches joined by the Analogy-intersect contract.
	Pair
	// Bound is a sub-search whose resolved symbol must be re-bound to a
	// named symbol variable once resolved.
	Bound
	// Given is a symbol handed in by a prior bound variable; terminal.
	Given
)

// Node is one position in a ground-search tree.
type Node struct {
	Kind Kind

	ArtifactID mindbase.ArtifactId // Artifact
	Left       *Node               // Pair
	Right      *Node               // Pair
	Inner      *Node               // Bound
	VarName    string              // Bound

	atoms    []mindbase.ClaimId
	resolved bool
}

// NewArtifactNode builds a leaf searching atoms_by_artifact_agent for id.
func NewArtifactNode(id mindbase.ArtifactId) *Node {
	return &Node{Kind: Artifact, ArtifactID: id}
}

// NewPairNode builds a Pair over two sub-searches.
func NewPairNode(left, right *Node) *Node {
	return &Node{Kind: Pair, Left: left, Right: right}
}

// NewBoundNode wraps inner, tagging its eventual resolution for re-binding
// to the named symbol variable.
func NewBoundNode(inner *Node, varName string) *Node {
	return &Node{Kind: Bound, Inner: inner, VarName: varName}
}

// NewGivenNode wraps an already-resolved symbol handed in by the caller.
func NewGivenNode(symbol mindbase.Symbol) *Node {
	atoms := make([]mindbase.ClaimId, len(symbol.Atoms))
	for i, a := range symbol.Atoms {
		atoms[i] = a.Id
	}
	return &Node{Kind: Given, atoms: atoms, resolved: true}
}

// Symbol returns the node's resolved symbol, or nil if unresolved/empty.
func (n *Node) Symbol() *mindbase.Symbol {
	atoms := n.resolvedAtoms()
	if len(atoms) == 0 {
		return nil
	}
	upAtoms := make([]mindbase.Atom, len(atoms))
	for i, id := range atoms {
		upAtoms[i] = mindbase.Atom{Id: id, Spin: mindbase.Up}
	}
	sym := mindbase.FromAtoms(upAtoms)
	return &sym
}

func (n *Node) resolvedAtoms() []mindbase.ClaimId {
	if n.Kind == Bound {
		return n.Inner.resolvedAtoms()
	}
	return n.atoms
}

// Evaluate depth-first builds the node's atom set from the live corpus,
// without vivifying anything. After Evaluate, Symbol() is non-nil exactly
// when the ground corpus already contains a match.
func Evaluate(ctx context.Context, sc *Context, n *Node) error {
	switch n.Kind {
	case Artifact:
		atoms, err := sc.mb.ArtifactAtoms(ctx, n.ArtifactID, sc.agents)
		if err != nil {
			return err
		}
		n.atoms = atoms
		n.resolved = true
		return nil

	case Pair:
		if err := Evaluate(ctx, sc, n.Left); err != nil {
			return err
		}
		if err := Evaluate(ctx, sc, n.Right); err != nil {
			return err
		}
		left, right := n.Left.Symbol(), n.Right.Symbol()
		if left == nil || right == nil {
			n.resolved = true
			return nil
		}
		matched, err := sc.matchingAnalogies(ctx, *left, *right)
		if err != nil {
			return err
		}
		n.atoms = matched
		n.resolved = true
		return nil

	case Bound:
		return Evaluate(ctx, sc, n.Inner)

	case Given:
		return nil
	}
	return nil
}

// Vivify synthesizes fresh claims bottom-up for every still-unresolved node
// — one Artifact claim per artifact leaf, one Analogy claim per pair — and
// re-hydrates each node's atom set from the newly created ClaimIds. Call
// only after Evaluate has found the tree has no existing match.
func Vivify(ctx context.Context, sc *Context, n *Node) error {
	switch n.Kind {
	case Artifact:
		if len(n.atoms) > 0 {
			return nil
		}
		sym, err := sc.mb.Symbolize(ctx, n.ArtifactID)
		if err != nil {
			return err
		}
		n.atoms = symbolAtomIds(sym)
		return nil

	case Pair:
		if err := Vivify(ctx, sc, n.Left); err != nil {
			return err
		}
		if err := Vivify(ctx, sc, n.Right); err != nil {
			return err
		}
		if len(n.atoms) > 0 {
			return nil
		}
		left, right := n.Left.Symbol(), n.Right.Symbol()
		sym, err := sc.mb.Allege(ctx, *left, *right, 1.0)
		if err != nil {
			return err
		}
		n.atoms = symbolAtomIds(sym)
		return nil

	case Bound:
		return Vivify(ctx, sc, n.Inner)

	case Given:
		// A Given symbol was handed in directly; there's nothing to vivify.
		return nil
	}
	return nil
}

func symbolAtomIds(sym mindbase.Symbol) []mindbase.ClaimId {
	ids := make([]mindbase.ClaimId, len(sym.Atoms))
	for i, a := range sym.Atoms {
		ids[i] = a.Id
	}
	return ids
}

// Resolve evaluates n against the ground corpus and, if nothing matches and
// vivify is true, synthesizes fresh claims; if vivify is false and nothing
// matches, it returns mberr.ErrGSymNotFound.
func Resolve(ctx context.Context, sc *Context, n *Node, vivify bool) (mindbase.Symbol, error) {
	if err := Evaluate(ctx, sc, n); err != nil {
		return mindbase.Symbol{}, err
	}
	if sym := n.Symbol(); sym != nil {
		return *sym, nil
	}
	if !vivify {
		return mindbase.Symbol{}, mberr.ErrGSymNotFound
	}
	if err := Vivify(ctx, sc, n); err != nil {
		return mindbase.Symbol{}, err
	}
	sym := n.Symbol()
	if sym == nil {
		return mindbase.Symbol{}, mberr.ErrGSymNotFound
	}
	return *sym, nil
}

// Binding is a resolved symbol tagged with the variable name it must be
// stashed into.
type Binding struct {
	VarName string
	Symbol  mindbase.Symbol
}

// StashBindings walks n collecting every Bound wrapper's resolved symbol,
// for the caller (the MBQL evaluator) to write into its variable map.
func StashBindings(n *Node) []Binding {
	var out []Binding
	var walk func(n *Node)
	walk = func(n *Node) {
		switch n.Kind {
		case Pair:
			walk(n.Left)
			walk(n.Right)
		case Bound:
			walk(n.Inner)
			if sym := n.Symbol(); sym != nil {
				out = append(out, Binding{VarName: n.VarName, Symbol: *sym})
			}
		}
	}
	walk(n)
	return out
}
