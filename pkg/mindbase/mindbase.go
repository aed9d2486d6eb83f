package mindbase

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mindbeam/mindbase/pkg/kv"
	"github.com/mindbeam/mindbase/pkg/mbcrypto"
)

// MindBase is a handle onto a single store: content-addressed artifacts,
// signed claims, and the process-wide ground-symbol-agent list every query
// is scoped to. A MindBase is safe for concurrent use.
type MindBase struct {
	store     kv.Store
	trees     treeNames
	artifacts *artifactStore
	claims    *claimStore

	defaultKey *mbcrypto.AgentKey

	mu           sync.RWMutex
	groundAgents []mbcrypto.AgentId
}

// Open wraps an already-constructed kv.Store into a MindBase handle, using
// defaultKey to sign claims authored through Allege/Symbolize.
func Open(store kv.Store, defaultKey *mbcrypto.AgentKey) *MindBase {
	trees := defaultTrees()
	return &MindBase{
		store:      store,
		trees:      trees,
		artifacts:  newArtifactStore(store, trees),
		claims:     newClaimStore(store, trees),
		defaultKey: defaultKey,
	}
}

// Close releases the underlying store's resources.
func (mb *MindBase) Close() error { return mb.store.Close() }

// DefaultAgent returns the id of the key used to sign new claims.
func (mb *MindBase) DefaultAgent() mbcrypto.AgentId { return mb.defaultKey.Id() }

// AddGroundSymbolAgent registers id as a ground agent: subsequent Ground
// searches (§ pkg/search) include claims authored by id in their corpus.
func (mb *MindBase) AddGroundSymbolAgent(id mbcrypto.AgentId) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	for _, existing := range mb.groundAgents {
		if existing == id {
			return
		}
	}
	mb.groundAgents = append(mb.groundAgents, id)
}

// GroundSymbolAgents returns a cloned snapshot of the current ground-agent
// list. A query takes this snapshot once at the start, per spec: later
// mutations to the list don't affect an in-flight query.
func (mb *MindBase) GroundSymbolAgents() []mbcrypto.AgentId {
	mb.mu.RLock()
	defer mb.mu.RUnlock()
	out := make([]mbcrypto.AgentId, len(mb.groundAgents))
	copy(out, mb.groundAgents)
	sort.Slice(out, func(i, j int) bool { return out[i].Cmp(out[j]) < 0 })
	return out
}

// PutArtifact stores a, deduplicating by content hash, and returns its id.
func (mb *MindBase) PutArtifact(ctx context.Context, a Artifact) (ArtifactId, error) {
	return mb.artifacts.Put(ctx, a)
}

// GetArtifact retrieves the artifact stored under id.
func (mb *MindBase) GetArtifact(ctx context.Context, id ArtifactId) (Artifact, error) {
	return mb.artifacts.Get(ctx, id)
}

// IterArtifacts yields every stored (id, artifact) pair.
func (mb *MindBase) IterArtifacts(ctx context.Context) func(yield func(ArtifactRecord, error) bool) {
	return mb.artifacts.Iter(ctx)
}

// GetClaim retrieves the claim stored under id.
func (mb *MindBase) GetClaim(ctx context.Context, id ClaimId) (Claim, error) {
	return mb.claims.Get(ctx, id)
}

// IterClaims yields every stored claim, time-ordered.
func (mb *MindBase) IterClaims(ctx context.Context) func(yield func(Claim, error) bool) {
	return mb.claims.Iter(ctx)
}

// Symbolize commits an artifact-bodied claim under the default agent and
// returns the singleton Symbol naming it.
func (mb *MindBase) Symbolize(ctx context.Context, artifact ArtifactId) (Symbol, error) {
	c := Claim{
		Id:      mb.claims.NextId(),
		AgentId: mb.defaultKey.Id(),
		Body:    ArtifactRefBody(artifact),
	}
	if err := c.Sign(mb.defaultKey); err != nil {
		return Symbol{}, fmt.Errorf("mindbase: sign symbolize claim: %w", err)
	}
	if err := mb.claims.Put(ctx, c); err != nil {
		return Symbol{}, err
	}
	return NewSymbol(c.Id), nil
}

// Allege commits a new Analogy claim under the default agent associating
// left and right at the given confidence, and returns the singleton Symbol
// naming the new claim.
func (mb *MindBase) Allege(ctx context.Context, left, right Symbol, confidence float32) (Symbol, error) {
	c := Claim{
		Id:      mb.claims.NextId(),
		AgentId: mb.defaultKey.Id(),
		Body:    AnalogyBody(left, right, confidence),
	}
	if err := c.Sign(mb.defaultKey); err != nil {
		return Symbol{}, fmt.Errorf("mindbase: sign allege claim: %w", err)
	}
	if err := mb.claims.Put(ctx, c); err != nil {
		return Symbol{}, err
	}
	return NewSymbol(c.Id), nil
}

// PutClaim verifies and stores an already-signed claim, e.g. one loaded
// from a dump authored by a different agent.
func (mb *MindBase) PutClaim(ctx context.Context, c Claim) error {
	return mb.claims.Put(ctx, c)
}

// AnalogyLeftRight implements AnalogyResolver by delegating to the claim
// store, so a MindBase handle itself can stand in wherever an
// AnalogyResolver or NarrowIndex is expected.
func (mb *MindBase) AnalogyLeftRight(id ClaimId) (left, right Symbol, ok bool) {
	return mb.claims.AnalogyLeftRight(id)
}

// ClaimsMentioningAtom implements NarrowIndex by delegating to the claim
// store's atom→analogy reverse index.
func (mb *MindBase) ClaimsMentioningAtom(id ClaimId) []ClaimId {
	return mb.claims.ClaimsMentioningAtom(id)
}

// ArtifactAtoms returns the sorted, deduplicated ClaimIds of every claim
// directly referencing artifact, authored by one of groundAgents. The
// ground-agent list is process-wide and explicit rather than scanned, so
// this looks up one posting list per ground agent directly by key (exact
// membership, no decode-then-filter step needed) and merges the surviving
// lists with the 16-byte sorted-merge operator.
func (mb *MindBase) ArtifactAtoms(ctx context.Context, artifact ArtifactId, groundAgents []mbcrypto.AgentId) ([]ClaimId, error) {
	var merged []byte
	for _, agent := range groundAgents {
		data, err := mb.store.Get(ctx, atomsByArtifactAgentKey(mb.trees, artifact, agent))
		if err != nil {
			if err == kv.ErrNotFound {
				continue
			}
			return nil, err
		}
		next, err := kv.SortedFixedWidthMerge(16)(merged, merged != nil, data)
		if err != nil {
			return nil, err
		}
		merged = next
	}
	return splitClaimIds(merged), nil
}
