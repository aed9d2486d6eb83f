package mindbase

import "github.com/mindbeam/mindbase/pkg/kv"

// treeNames namespaces the logical trees spec.md §6 names within a single
// kv.Store: "artifacts", "allegations", "atoms_by_artifact_agent",
// "claims_mentioning_atom". Each tree is a top-level key segment.
type treeNames struct {
	Artifacts            string
	Allegations          string
	AtomsByArtifactAgent string
	ClaimsMentioningAtom string
}

func defaultTrees() treeNames {
	return treeNames{
		Artifacts:            "artifacts",
		Allegations:          "allegations",
		AtomsByArtifactAgent: "atoms_by_artifact_agent",
		ClaimsMentioningAtom: "claims_mentioning_atom",
	}
}

// atomsByArtifactAgentKey builds the binary-safe key for the
// (artifact,agent)→sorted-ClaimId-list index. The artifact∥agent composite
// is kept as one opaque 64-byte key segment: kv.Options.encode only inserts
// separators between segments, never within one, so exact-key Get/Merge
// lookups work regardless of which raw bytes the identifiers contain.
// Decoding such a key back from a listed entry would split it at any
// separator byte inside the composite, so it is never read back that way.
func atomsByArtifactAgentKey(trees treeNames, artifact ArtifactId, agent [32]byte) kv.Key {
	composite := make([]byte, 0, 64)
	composite = append(composite, artifact[:]...)
	composite = append(composite, agent[:]...)
	return kv.Key{trees.AtomsByArtifactAgent, string(composite)}
}

func claimsMentioningAtomKey(trees treeNames, atom ClaimId) kv.Key {
	return kv.Key{trees.ClaimsMentioningAtom, string(atom[:])}
}

func artifactKey(trees treeNames, id ArtifactId) kv.Key {
	return kv.Key{trees.Artifacts, string(id[:])}
}

func claimKey(trees treeNames, id ClaimId) kv.Key {
	return kv.Key{trees.Allegations, string(id[:])}
}
