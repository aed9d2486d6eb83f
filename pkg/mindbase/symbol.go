package mindbase

import (
	"sort"
	"strings"
)

// Spin is the directionality of an Atom's reference to a claim: Up reads the
// claim's Analogy left-to-right, Down swaps left and right.
type Spin int

const (
	Up Spin = iota
	Down
)

// Atom is a directed reference to a claim.
type Atom struct {
	Id   ClaimId
	Spin Spin
}

// Cmp orders Atoms by (Id, Spin), matching Symbol's sort order invariant.
func (a Atom) Cmp(other Atom) int {
	if c := a.Id.Cmp(other.Id); c != 0 {
		return c
	}
	if a.Spin == other.Spin {
		return 0
	}
	if a.Spin < other.Spin {
		return -1
	}
	return 1
}

func symbolString(s Symbol) string {
	parts := make([]string, len(s.Atoms))
	for i, a := range s.Atoms {
		parts[i] = a.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (a Atom) String() string {
	if a.Spin == Down {
		return "!" + a.Id.String()
	}
	return a.Id.String()
}

// Symbol is an ordered, deduplicated set of Atoms: the currency of meaning.
// It is never stored directly; it is derived by queries over the
// ground-agent corpus.
type Symbol struct {
	Atoms []Atom
}

func (s Symbol) String() string { return symbolString(s) }

// NewSymbol returns a Symbol from a single claim id, the shape every
// freshly-symbolized claim takes: Symbol::atoms = [Atom::Up(c.id)].
func NewSymbol(id ClaimId) Symbol {
	return Symbol{Atoms: []Atom{{Id: id, Spin: Up}}}
}

// FromAtoms builds a Symbol from an already-sorted, deduplicated atom slice.
// Callers that cannot guarantee sortedness should use Union against an empty
// Symbol instead.
func FromAtoms(atoms []Atom) Symbol {
	return Symbol{Atoms: atoms}
}

func cmpAtoms(a, b Atom) int { return a.Cmp(b) }

// Union returns the sorted, deduplicated merge of s and other.
func (s Symbol) Union(other Symbol) Symbol {
	out := make([]Atom, 0, len(s.Atoms)+len(other.Atoms))
	i, j := 0, 0
	for i < len(s.Atoms) && j < len(other.Atoms) {
		c := cmpAtoms(s.Atoms[i], other.Atoms[j])
		switch {
		case c < 0:
			out = append(out, s.Atoms[i])
			i++
		case c > 0:
			out = append(out, other.Atoms[j])
			j++
		default:
			out = append(out, s.Atoms[i])
			i++
			j++
		}
	}
	out = append(out, s.Atoms[i:]...)
	out = append(out, other.Atoms[j:]...)
	return Symbol{Atoms: out}
}

// Intersects reports whether s and other share at least one atom.
func (s Symbol) Intersects(other Symbol) bool {
	i, j := 0, 0
	for i < len(s.Atoms) && j < len(other.Atoms) {
		c := cmpAtoms(s.Atoms[i], other.Atoms[j])
		switch {
		case c == 0:
			return true
		case c < 0:
			i++
		default:
			j++
		}
	}
	return false
}

// Intersection returns the sorted-merge intersection of s and other.
func (s Symbol) Intersection(other Symbol) []Atom {
	var out []Atom
	i, j := 0, 0
	for i < len(s.Atoms) && j < len(other.Atoms) {
		c := cmpAtoms(s.Atoms[i], other.Atoms[j])
		switch {
		case c == 0:
			out = append(out, s.Atoms[i])
			i++
			j++
		case c < 0:
			i++
		default:
			j++
		}
	}
	return out
}

// AnalogyResolver looks up the left/right child symbols of an Analogy-bodied
// claim, for use by LeftRight and NarrowBy. The MindBase handle's claim
// store implements this.
type AnalogyResolver interface {
	AnalogyLeftRight(id ClaimId) (left, right Symbol, ok bool)
}

// LeftRight folds every Analogy-bodied atom in s into composed left and
// right symbols, honoring each atom's Spin: Down swaps that atom's
// contribution's left and right before folding. Atoms whose claim is not an
// Analogy are ignored. Returns ok=false if s contains no Analogy atoms.
func (s Symbol) LeftRight(resolver AnalogyResolver) (left, right Symbol, ok bool) {
	for _, atom := range s.Atoms {
		l, r, found := resolver.AnalogyLeftRight(atom.Id)
		if !found {
			continue
		}
		if atom.Spin == Down {
			l, r = r, l
		}
		left = left.Union(l)
		right = right.Union(r)
		ok = true
	}
	return left, right, ok
}

// NarrowBy retains only the atoms of s that appear on the left side of some
// Analogy claim whose right symbol intersects target. index provides the
// atom→analogy reverse lookup (claims_mentioning_atom) so this does not need
// to scan every claim in the store.
func (s Symbol) NarrowBy(target Symbol, index NarrowIndex) Symbol {
	var kept []Atom
	for _, atom := range s.Atoms {
		analogyIds := index.ClaimsMentioningAtom(atom.Id)
		for _, aid := range analogyIds {
			l, r, found := index.AnalogyLeftRight(aid)
			if !found {
				continue
			}
			if !l.hasAtomId(atom.Id) {
				continue
			}
			if r.Intersects(target) {
				kept = append(kept, atom)
				break
			}
		}
	}
	sort.Slice(kept, func(i, j int) bool { return cmpAtoms(kept[i], kept[j]) < 0 })
	return Symbol{Atoms: kept}
}

func (s Symbol) hasAtomId(id ClaimId) bool {
	for _, a := range s.Atoms {
		if a.Id == id {
			return true
		}
	}
	return false
}

// NarrowIndex is the index surface NarrowBy needs: the atom→analogy reverse
// index plus analogy left/right resolution.
type NarrowIndex interface {
	AnalogyResolver
	ClaimsMentioningAtom(id ClaimId) []ClaimId
}
