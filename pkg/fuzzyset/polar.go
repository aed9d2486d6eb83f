package fuzzyset

import (
	"fmt"
	"strings"
)

// Polarity distinguishes the two poles of a PolarFuzzySet (e.g. the left and
// right sides of an analogy). Which pole is "negative" and which is
// "positive" is arbitrary; only consistency within one set matters.
type Polarity int

const (
	Negative Polarity = iota
	Positive
)

// PolarMember wraps a Member with a Polarity. Set membership (via Cmp)
// ignores polarity, so a member inserted with opposing polarity merges into
// the same slot and averages toward null rather than creating two entries.
type PolarMember[M Member[M]] struct {
	Member   M
	Polarity Polarity
}

// Cmp compares by the wrapped member only, ignoring polarity.
func (pm PolarMember[M]) Cmp(other PolarMember[M]) int {
	return pm.Member.Cmp(other.Member)
}

func (pm PolarMember[M]) String() string {
	sign := "-"
	if pm.Polarity == Positive {
		sign = "+"
	}
	return sign + fmt.Sprint(pm.Member)
}

func (pm PolarMember[M]) invert() PolarMember[M] {
	if pm.Polarity == Negative {
		pm.Polarity = Positive
	} else {
		pm.Polarity = Negative
	}
	return pm
}

// PolarFuzzySet is a FuzzySet of PolarMembers: the natural representation of
// an analogy's left/right symbols collapsed into one ordered, joinable set.
type PolarFuzzySet[M Member[M]] struct {
	set *FuzzySet[PolarMember[M]]
}

// NewPolar returns an empty PolarFuzzySet.
func NewPolar[M Member[M]]() *PolarFuzzySet[M] {
	return &PolarFuzzySet[M]{set: New[PolarMember[M]]()}
}

// FromDipole builds a PolarFuzzySet from two item lists: negative is the
// left/negative pole, positive is the right/positive pole.
func FromDipole[M Member[M]](negative, positive []Item[M]) *PolarFuzzySet[M] {
	pfs := NewPolar[M]()
	for _, it := range negative {
		pfs.set.Insert(Item[PolarMember[M]]{Member: PolarMember[M]{Member: it.Member, Polarity: Negative}, Degree: it.Degree})
	}
	for _, it := range positive {
		pfs.set.Insert(Item[PolarMember[M]]{Member: PolarMember[M]{Member: it.Member, Polarity: Positive}, Degree: it.Degree})
	}
	return pfs
}

// FromMonopole builds a PolarFuzzySet with only a negative pole.
func FromMonopole[M Member[M]](negative []Item[M]) *PolarFuzzySet[M] {
	return FromDipole(negative, nil)
}

// Insert adds a single polar item.
func (pfs *PolarFuzzySet[M]) Insert(item Item[PolarMember[M]]) {
	pfs.set.Insert(item)
}

// Union inserts every item of other into pfs.
func (pfs *PolarFuzzySet[M]) Union(other *PolarFuzzySet[M]) {
	pfs.set.Union(other.set)
}

// Clone returns an independent copy.
func (pfs *PolarFuzzySet[M]) Clone() *PolarFuzzySet[M] {
	return &PolarFuzzySet[M]{set: pfs.set.Clone()}
}

// InvertPolarity flips every member's polarity in place.
func (pfs *PolarFuzzySet[M]) InvertPolarity() {
	for i := range pfs.set.items {
		pfs.set.items[i].Member = pfs.set.items[i].Member.invert()
	}
}

// ScaleNP multiplies every negative-pole degree by nScale and every
// positive-pole degree by pScale, in place.
func (pfs *PolarFuzzySet[M]) ScaleNP(nScale, pScale float64) {
	for i := range pfs.set.items {
		if pfs.set.items[i].Member.Polarity == Negative {
			pfs.set.items[i].Degree *= nScale
		} else {
			pfs.set.items[i].Degree *= pScale
		}
	}
}

// Negative returns the negative-pole members as plain (unwrapped) items.
func (pfs *PolarFuzzySet[M]) Negative() []Item[M] {
	return pfs.poleItems(Negative)
}

// Positive returns the positive-pole members as plain (unwrapped) items.
func (pfs *PolarFuzzySet[M]) Positive() []Item[M] {
	return pfs.poleItems(Positive)
}

func (pfs *PolarFuzzySet[M]) poleItems(pole Polarity) []Item[M] {
	var out []Item[M]
	for _, it := range pfs.set.items {
		if it.Member.Polarity == pole {
			out = append(out, Item[M]{Member: it.Member.Member, Degree: it.Degree})
		}
	}
	return out
}

type bucket struct {
	degree float64
	count  int
}

// InterrogateWith is the semantic-join primitive: given what pfs (the
// corpus) asserts and what query asks about, return the subset of the
// corpus query deems relevant, polarity-conformed to the query and scaled
// by how strongly the opposite pole matched. Returns nil if nothing in the
// corpus and query overlap at all.
func (pfs *PolarFuzzySet[M]) InterrogateWith(query *PolarFuzzySet[M]) *PolarFuzzySet[M] {
	var nBucket, pBucket, nInverseBucket, pInverseBucket bucket
	var ceNBucket, cePBucket bucket
	var qeNBucket, qePBucket bucket

	matchingCorpus := NewPolar[M]()
	var corpusExpansion []Item[PolarMember[M]]
	var queryExpansion []Item[PolarMember[M]]

	i, j := 0, 0
	corpus, q := pfs.set.items, query.set.items
	for i < len(corpus) || j < len(q) {
		switch {
		case j >= len(q):
			myItem := corpus[i]
			b := &ceNBucket
			if myItem.Member.Polarity == Positive {
				b = &cePBucket
			}
			b.count++
			b.degree += myItem.Degree
			corpusExpansion = append(corpusExpansion, myItem)
			i++
		case i >= len(corpus):
			queryItem := q[j]
			b := &qeNBucket
			if queryItem.Member.Polarity == Positive {
				b = &qePBucket
			}
			b.count++
			b.degree += queryItem.Degree
			queryExpansion = append(queryExpansion, queryItem)
			j++
		default:
			c := corpus[i].Member.Cmp(q[j].Member)
			switch {
			case c < 0:
				myItem := corpus[i]
				b := &ceNBucket
				if myItem.Member.Polarity == Positive {
					b = &cePBucket
				}
				b.count++
				b.degree += myItem.Degree
				corpusExpansion = append(corpusExpansion, myItem)
				i++
			case c > 0:
				queryItem := q[j]
				b := &qeNBucket
				if queryItem.Member.Polarity == Positive {
					b = &qePBucket
				}
				b.count++
				b.degree += queryItem.Degree
				queryExpansion = append(queryExpansion, queryItem)
				j++
			default:
				myItem, queryItem := corpus[i], q[j]
				matchDegree := queryItem.Degree * myItem.Degree

				var b *bucket
				switch {
				case queryItem.Member.Polarity == Negative && myItem.Member.Polarity == Negative:
					b = &nBucket
				case queryItem.Member.Polarity == Positive && myItem.Member.Polarity == Positive:
					b = &pBucket
				case queryItem.Member.Polarity == Negative && myItem.Member.Polarity == Positive:
					b = &nInverseBucket
				default:
					b = &pInverseBucket
				}
				b.degree += matchDegree
				b.count++

				outputItem := myItem
				outputItem.Degree = matchDegree
				matchingCorpus.set.Insert(outputItem)
				i++
				j++
			}
		}
	}

	directCount := pBucket.count + nBucket.count
	inverseCount := pInverseBucket.count + nInverseBucket.count
	if directCount+inverseCount == 0 {
		return nil
	}

	for _, it := range corpusExpansion {
		matchingCorpus.set.Insert(it)
	}

	var ceN, ceP bucket
	if inverseCount > directCount {
		ceN, ceP = cePBucket, ceNBucket
	} else {
		ceN, ceP = ceNBucket, cePBucket
	}

	totalNCount := ceN.count + qeNBucket.count + nBucket.count + nInverseBucket.count
	totalPCount := ceP.count + qePBucket.count + pBucket.count + pInverseBucket.count

	queryNCount := qeNBucket.count + nBucket.count + nInverseBucket.count
	queryPCount := qePBucket.count + pBucket.count + pInverseBucket.count

	nScaleFactor := 1.0
	if queryPCount != 0 {
		nScaleFactor = (qePBucket.degree + pBucket.degree + pInverseBucket.degree) / float64(totalPCount)
	}
	pScaleFactor := 1.0
	if queryNCount != 0 {
		pScaleFactor = (qeNBucket.degree + nBucket.degree + nInverseBucket.degree) / float64(totalNCount)
	}

	if inverseCount > directCount {
		matchingCorpus.InvertPolarity()
		for _, it := range queryExpansion {
			matchingCorpus.set.Insert(it)
		}
		matchingCorpus.ScaleNP(pScaleFactor, nScaleFactor)
	} else {
		for _, it := range queryExpansion {
			matchingCorpus.set.Insert(it)
		}
		matchingCorpus.ScaleNP(nScaleFactor, pScaleFactor)
	}

	return matchingCorpus
}

// String renders the set as "[-n1^d -n2^d : +p1^d +p2^d]".
func (pfs *PolarFuzzySet[M]) String() string {
	var b strings.Builder
	b.WriteByte('[')
	first := true
	for _, it := range pfs.set.items {
		if it.Member.Polarity != Negative {
			continue
		}
		if !first {
			b.WriteByte(' ')
		}
		first = false
		fmt.Fprintf(&b, "%v^%0.2f", it.Member, it.Degree)
	}
	b.WriteString(" :")
	for _, it := range pfs.set.items {
		if it.Member.Polarity != Positive {
			continue
		}
		b.WriteByte(' ')
		fmt.Fprintf(&b, "%v^%0.2f", it.Member, it.Degree)
	}
	b.WriteByte(']')
	return b.String()
}
