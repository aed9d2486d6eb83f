package mindbase

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"time"

	"github.com/mindbeam/mindbase/pkg/codec"
	"github.com/mindbeam/mindbase/pkg/kv"
	"github.com/mindbeam/mindbase/pkg/mbcrypto"
	"github.com/mindbeam/mindbase/pkg/mberr"
	"github.com/oklog/ulid/v2"
)

// allegationDomainTag is the domain tag every claim signature is scoped
// under, so a signature valid for a claim body is never mistakenly valid for
// any other signed artifact in the system.
const allegationDomainTag = "allegation"

// BodyKind discriminates the three shapes a Claim's body may take.
type BodyKind uint8

const (
	// BodyUnit is a globally unique anchor with no payload.
	BodyUnit BodyKind = iota
	// BodyArtifactRef symbolizes an artifact for the authoring agent.
	BodyArtifactRef
	// BodyAnalogy declares a polar association between two symbols.
	BodyAnalogy
)

// Body is the tagged-union payload of a Claim.
type Body struct {
	Kind BodyKind

	// Valid when Kind == BodyArtifactRef.
	ArtifactId ArtifactId

	// Valid when Kind == BodyAnalogy. Confidence of -1 denotes a
	// disjunction rather than an association.
	Left       Symbol
	Right      Symbol
	Confidence float32
}

// UnitBody returns a claim body with no payload.
func UnitBody() Body { return Body{Kind: BodyUnit} }

// ArtifactRefBody returns a claim body symbolizing an artifact.
func ArtifactRefBody(id ArtifactId) Body { return Body{Kind: BodyArtifactRef, ArtifactId: id} }

// AnalogyBody returns a claim body declaring an association between two
// symbols at the given confidence.
func AnalogyBody(left, right Symbol, confidence float32) Body {
	return Body{Kind: BodyAnalogy, Left: left, Right: right, Confidence: confidence}
}

// Claim is a signed, ULID-identified attestation authored by one agent.
type Claim struct {
	Id        ClaimId
	AgentId   mbcrypto.AgentId
	Body      Body
	Signature []byte
}

// directArtifacts returns the artifact ids directly referenced by c's body
// (not transitively through a symbol's claims), the set the claim store
// indexes on Put.
func (c Claim) directArtifacts() []ArtifactId {
	if c.Body.Kind == BodyArtifactRef {
		return []ArtifactId{c.Body.ArtifactId}
	}
	return nil
}

func (c Claim) signedBytes() ([]byte, error) {
	bodyBytes, err := codec.Encode(c.Body)
	if err != nil {
		return nil, fmt.Errorf("mindbase: encode claim body: %w", err)
	}
	buf := make([]byte, 0, 16+32+len(bodyBytes))
	buf = append(buf, c.Id[:]...)
	buf = append(buf, c.AgentId[:]...)
	buf = append(buf, bodyBytes...)
	return buf, nil
}

// Sign computes c's signature under the given agent key and stores it on
// the claim.
func (c *Claim) Sign(key *mbcrypto.AgentKey) error {
	buf, err := c.signedBytes()
	if err != nil {
		return err
	}
	c.Signature = key.Sign(allegationDomainTag, buf)
	return nil
}

// Verify checks c's signature against its declared AgentId.
func (c Claim) Verify() (bool, error) {
	buf, err := c.signedBytes()
	if err != nil {
		return false, err
	}
	return mbcrypto.Verify(c.AgentId, allegationDomainTag, buf, c.Signature), nil
}

// idGen produces time-ordered, monotonic-within-timestamp ClaimIds, mirroring
// ULID's recommended monotonic entropy source so that claims authored by the
// same process in the same millisecond still sort distinctly and in order.
type idGen struct {
	entropy io.Reader
}

func newIDGen() *idGen {
	return &idGen{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (g *idGen) next() ClaimId {
	id := ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
	var out ClaimId
	copy(out[:], id[:])
	return out
}

// claimStore manages the `allegations` tree and the `atoms_by_artifact_agent`
// and `claims_mentioning_atom` inverted indexes.
type claimStore struct {
	kv    kv.Store
	ids   *idGen
	trees treeNames
}

func newClaimStore(store kv.Store, trees treeNames) *claimStore {
	return &claimStore{kv: store, ids: newIDGen(), trees: trees}
}

// NextId allocates a fresh ClaimId without writing a claim; used by the
// search engine's vivification path, which must mint ids for claims that
// are built bottom-up before they are fully formed.
func (cs *claimStore) NextId() ClaimId { return cs.ids.next() }

// Put verifies c's signature, writes it, then merges its id into every
// (artifact, agent) index it directly references, and — for Analogy bodies
// — into the atom→analogy reverse index for each left/right atom mentioned.
func (cs *claimStore) Put(ctx context.Context, c Claim) error {
	ok, err := c.Verify()
	if err != nil {
		return err
	}
	if !ok {
		return mberr.ErrSignature
	}

	data, err := codec.Encode(c)
	if err != nil {
		return fmt.Errorf("mindbase: encode claim: %w", err)
	}
	if err := cs.kv.Set(ctx, claimKey(cs.trees, c.Id), data); err != nil {
		return fmt.Errorf("mindbase: write claim: %w", err)
	}

	for _, aid := range c.directArtifacts() {
		key := atomsByArtifactAgentKey(cs.trees, aid, c.AgentId)
		if err := cs.kv.Merge(ctx, key, c.Id[:], kv.SortedFixedWidthMerge(16)); err != nil {
			return fmt.Errorf("mindbase: index claim: %w", err)
		}
	}

	if c.Body.Kind == BodyAnalogy {
		mentioned := map[ClaimId]struct{}{}
		for _, a := range c.Body.Left.Atoms {
			mentioned[a.Id] = struct{}{}
		}
		for _, a := range c.Body.Right.Atoms {
			mentioned[a.Id] = struct{}{}
		}
		for atomID := range mentioned {
			key := claimsMentioningAtomKey(cs.trees, atomID)
			if err := cs.kv.Merge(ctx, key, c.Id[:], kv.SortedFixedWidthMerge(16)); err != nil {
				return fmt.Errorf("mindbase: index analogy reverse ref: %w", err)
			}
		}
	}

	return nil
}

// Get retrieves a claim by id.
func (cs *claimStore) Get(ctx context.Context, id ClaimId) (Claim, error) {
	data, err := cs.kv.Get(ctx, claimKey(cs.trees, id))
	if err != nil {
		if err == kv.ErrNotFound {
			return Claim{}, mberr.ErrNotFound
		}
		return Claim{}, err
	}
	var c Claim
	if err := codec.Decode(data, &c); err != nil {
		return Claim{}, fmt.Errorf("mindbase: decode claim: %w", err)
	}
	return c, nil
}

// Iter yields every claim in the store, time-ordered since ULIDs sort
// chronologically.
func (cs *claimStore) Iter(ctx context.Context) func(yield func(Claim, error) bool) {
	return func(yield func(Claim, error) bool) {
		for entry, err := range cs.kv.List(ctx, kv.Key{cs.trees.Allegations}) {
			if err != nil {
				yield(Claim{}, err)
				return
			}
			var c Claim
			if err := codec.Decode(entry.Value, &c); err != nil {
				if !yield(Claim{}, fmt.Errorf("mindbase: decode claim: %w", err)) {
					return
				}
				continue
			}
			if !yield(c, nil) {
				return
			}
		}
	}
}

// AnalogyLeftRight implements AnalogyResolver by fetching the claim and
// unpacking its body, if it is an Analogy.
func (cs *claimStore) AnalogyLeftRight(id ClaimId) (left, right Symbol, ok bool) {
	c, err := cs.Get(context.Background(), id)
	if err != nil || c.Body.Kind != BodyAnalogy {
		return Symbol{}, Symbol{}, false
	}
	return c.Body.Left, c.Body.Right, true
}

// ClaimsMentioningAtom implements NarrowIndex's reverse-index lookup.
func (cs *claimStore) ClaimsMentioningAtom(id ClaimId) []ClaimId {
	data, err := cs.kv.Get(context.Background(), claimsMentioningAtomKey(cs.trees, id))
	if err != nil {
		return nil
	}
	return splitClaimIds(data)
}

func splitClaimIds(data []byte) []ClaimId {
	out := make([]ClaimId, 0, len(data)/16)
	for i := 0; i+16 <= len(data); i += 16 {
		var id ClaimId
		copy(id[:], data[i:i+16])
		out = append(out, id)
	}
	return out
}
