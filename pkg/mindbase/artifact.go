package mindbase

import (
	"context"
	"crypto/sha512"
	"fmt"

	"github.com/mindbeam/mindbase/pkg/codec"
	"github.com/mindbeam/mindbase/pkg/kv"
	"github.com/mindbeam/mindbase/pkg/mbcrypto"
	"github.com/mindbeam/mindbase/pkg/mberr"
)

// ArtifactKind discriminates Artifact's variants.
type ArtifactKind uint8

const (
	ArtifactAgent ArtifactKind = iota
	ArtifactUrl
	ArtifactFlatText
	ArtifactDataGraph
	ArtifactDataNode
)

// DataNodeRelation is an edge within a DataGraph, pointing at another node's
// claim and labeling the edge with a symbolic relation type.
type DataNodeRelation struct {
	To           ClaimId
	RelationType Symbol
}

// Artifact is a content-addressed, immutable payload. Equal payloads hash to
// equal ids and are stored once.
type Artifact struct {
	Kind ArtifactKind

	Agent mbcrypto.AgentId // ArtifactAgent
	Url   string           // ArtifactUrl
	Text  string           // ArtifactFlatText

	// ArtifactDataGraph: a typed subgraph reference. GraphType is itself a
	// Symbol, not a string, so graph typing is triangulated the same way
	// every other symbolic type in the system is.
	GraphType Symbol
	Nodes     []ClaimId
	Relations []DataNodeRelation

	// ArtifactDataNode.
	DataType Symbol
	Data     []byte
}

// AgentArtifact wraps an agent identity as an artifact payload.
func AgentArtifact(id mbcrypto.AgentId) Artifact { return Artifact{Kind: ArtifactAgent, Agent: id} }

// UrlArtifact wraps a URL string.
func UrlArtifact(url string) Artifact { return Artifact{Kind: ArtifactUrl, Url: url} }

// FlatTextArtifact wraps a plain text payload.
func FlatTextArtifact(text string) Artifact { return Artifact{Kind: ArtifactFlatText, Text: text} }

// DataNodeArtifact wraps a typed, optionally-payload-bearing data node.
func DataNodeArtifact(dataType Symbol, data []byte) Artifact {
	return Artifact{Kind: ArtifactDataNode, DataType: dataType, Data: data}
}

// DataGraphArtifact wraps a typed subgraph of nodes and relations.
func DataGraphArtifact(graphType Symbol, nodes []ClaimId, relations []DataNodeRelation) Artifact {
	return Artifact{Kind: ArtifactDataGraph, GraphType: graphType, Nodes: nodes, Relations: relations}
}

// artifactStore manages the `artifacts` tree: canonicalize, hash, write-once.
type artifactStore struct {
	kv    kv.Store
	trees treeNames
}

func newArtifactStore(store kv.Store, trees treeNames) *artifactStore {
	return &artifactStore{kv: store, trees: trees}
}

// Put canonicalizes and hashes the artifact, then writes it with
// write-once (compare-and-swap) semantics: succeeds whether the key was
// absent or already held an identical payload.
func (as *artifactStore) Put(ctx context.Context, a Artifact) (ArtifactId, error) {
	data, err := codec.Encode(a)
	if err != nil {
		return ArtifactId{}, fmt.Errorf("mindbase: encode artifact: %w", err)
	}
	id := ArtifactId(sha512.Sum512_256(data))

	key := artifactKey(as.trees, id)
	if err := as.kv.Merge(ctx, key, data, kv.WriteOnceMerge); err != nil {
		return ArtifactId{}, fmt.Errorf("mindbase: write artifact: %w", err)
	}
	return id, nil
}

// Get retrieves an artifact by id.
func (as *artifactStore) Get(ctx context.Context, id ArtifactId) (Artifact, error) {
	data, err := as.kv.Get(ctx, artifactKey(as.trees, id))
	if err != nil {
		if err == kv.ErrNotFound {
			return Artifact{}, mberr.ErrNotFound
		}
		return Artifact{}, err
	}
	var a Artifact
	if err := codec.Decode(data, &a); err != nil {
		return Artifact{}, fmt.Errorf("mindbase: decode artifact: %w", err)
	}
	return a, nil
}

// ArtifactRecord pairs a decoded artifact with its id, the value type Iter
// yields — range-over-func only supports zero-, one-, or two-argument
// yield functions, so (id, artifact) are bundled into one value rather
// than passed as separate yield arguments alongside error.
type ArtifactRecord struct {
	Id       ArtifactId
	Artifact Artifact
}

// Iter yields every (id, artifact) pair in the store.
func (as *artifactStore) Iter(ctx context.Context) func(yield func(ArtifactRecord, error) bool) {
	return func(yield func(ArtifactRecord, error) bool) {
		for entry, err := range as.kv.List(ctx, kv.Key{as.trees.Artifacts}) {
			if err != nil {
				yield(ArtifactRecord{}, err)
				return
			}
			var a Artifact
			if err := codec.Decode(entry.Value, &a); err != nil {
				if !yield(ArtifactRecord{}, fmt.Errorf("mindbase: decode artifact: %w", err)) {
					return
				}
				continue
			}
			// Recompute the id from the payload rather than parsing it back
			// out of entry.Key: kv's key encoding joins segments with an
			// unescaped separator byte, which raw digest bytes can collide
			// with. Hashing the payload sidesteps that entirely.
			id := ArtifactId(sha512.Sum512_256(entry.Value))
			if !yield(ArtifactRecord{Id: id, Artifact: a}, nil) {
				return
			}
		}
	}
}
