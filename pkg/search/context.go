// Package search implements Ground: resolving a ground-symbolizable
// expression (an artifact, a pair, a bound variable) against the
// ground-agent corpus, vivifying fresh claims when nothing matches.
package search

import (
	"context"
	"sort"

	"github.com/mindbeam/mindbase/pkg/mbcrypto"
	"github.com/mindbeam/mindbase/pkg/mberr"
	"github.com/mindbeam/mindbase/pkg/mindbase"
)

// mindBase is the surface Context needs from a *mindbase.MindBase handle.
// Kept as an interface so tests can exercise the search algebra against a
// fake without standing up a full store.
type mindBase interface {
	GroundSymbolAgents() []mbcrypto.AgentId
	ArtifactAtoms(ctx context.Context, artifact mindbase.ArtifactId, groundAgents []mbcrypto.AgentId) ([]mindbase.ClaimId, error)
	GetClaim(ctx context.Context, id mindbase.ClaimId) (mindbase.Claim, error)
	ClaimsMentioningAtom(id mindbase.ClaimId) []mindbase.ClaimId
	Symbolize(ctx context.Context, artifact mindbase.ArtifactId) (mindbase.Symbol, error)
	Allege(ctx context.Context, left, right mindbase.Symbol, confidence float32) (mindbase.Symbol, error)
}

// Context holds a query's ground-agent snapshot, taken once at construction
// so later mutations to the live list don't affect an in-flight search.
type Context struct {
	mb     mindBase
	agents []mbcrypto.AgentId
	inSet  map[mbcrypto.AgentId]struct{}
}

// NewContext snapshots mb's current ground-agent list.
func NewContext(mb mindBase) *Context {
	agents := mb.GroundSymbolAgents()
	inSet := make(map[mbcrypto.AgentId]struct{}, len(agents))
	for _, a := range agents {
		inSet[a] = struct{}{}
	}
	return &Context{mb: mb, agents: agents, inSet: inSet}
}

func (c *Context) authoredByGroundAgent(agent mbcrypto.AgentId) bool {
	_, ok := c.inSet[agent]
	return ok
}

// matchingAnalogies returns the sorted, deduplicated ClaimIds of every
// ground-agent-authored Analogy claim whose left symbol intersects left and
// whose right symbol intersects right — the Pair-node contract.
func (c *Context) matchingAnalogies(ctx context.Context, left, right mindbase.Symbol) ([]mindbase.ClaimId, error) {
	candidates := map[mindbase.ClaimId]struct{}{}
	for _, atom := range append(append([]mindbase.Atom{}, left.Atoms...), right.Atoms...) {
		for _, aid := range c.mb.ClaimsMentioningAtom(atom.Id) {
			candidates[aid] = struct{}{}
		}
	}

	var matched []mindbase.ClaimId
	for aid := range candidates {
		claim, err := c.mb.GetClaim(ctx, aid)
		if err != nil {
			if err == mberr.ErrNotFound {
				continue
			}
			return nil, err
		}
		if claim.Body.Kind != mindbase.BodyAnalogy {
			continue
		}
		if !c.authoredByGroundAgent(claim.AgentId) {
			continue
		}
		if !claim.Body.Left.Intersects(left) || !claim.Body.Right.Intersects(right) {
			continue
		}
		matched = append(matched, claim.Id)
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].Cmp(matched[j]) < 0 })
	return matched, nil
}
