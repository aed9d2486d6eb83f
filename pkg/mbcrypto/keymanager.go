package mbcrypto

import (
	"context"
	"crypto/ed25519"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/mindbeam/mindbase/pkg/codec"
	"github.com/mindbeam/mindbase/pkg/kv"
)

// agentKeyWire is AgentKey's on-disk shape: the 32-byte Ed25519 seed the
// private key was derived from, plus the optional email. The public key is
// always rederived from the seed on load rather than stored alongside it.
type agentKeyWire struct {
	Seed  []byte
	Email *string
}

// EncodeMsgpack serializes the key's seed and email, never the derived
// public key, so load and create paths share one reconstruction step.
func (k *AgentKey) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(agentKeyWire{Seed: k.private.Seed(), Email: k.Email})
}

// DecodeMsgpack reconstructs an AgentKey from the wire form written by
// EncodeMsgpack.
func (k *AgentKey) DecodeMsgpack(dec *msgpack.Decoder) error {
	var w agentKeyWire
	if err := dec.Decode(&w); err != nil {
		return err
	}
	if len(w.Seed) != ed25519.SeedSize {
		return fmt.Errorf("mbcrypto: agent key seed must be %d bytes, got %d", ed25519.SeedSize, len(w.Seed))
	}
	priv := ed25519.NewKeyFromSeed(w.Seed)
	k.private = priv
	k.public = priv.Public().(ed25519.PublicKey)
	k.Email = w.Email
	return nil
}

// KeyManager stores agent keys and a pointer to the current agent, per
// spec's "agent keys live in a separate key-manager tree with label
// pointers (e.g. `current` -> AgentId)". It wraps the same kv.Store a
// MindBase opens, in two trees of its own so key management is available
// before (and independent of) opening the artifact/claim address space.
type KeyManager struct {
	store       kv.Store
	keysTree    string
	currentTree string
}

// NewKeyManager wraps store for agent key storage.
func NewKeyManager(store kv.Store) *KeyManager {
	return &KeyManager{store: store, keysTree: "agent_keys", currentTree: "agent_id_config"}
}

func (km *KeyManager) keyKey(id AgentId) kv.Key {
	return kv.Key{km.keysTree, string(id[:])}
}

// PutAgentKey persists k, keyed by its public id.
func (km *KeyManager) PutAgentKey(ctx context.Context, k *AgentKey) error {
	data, err := codec.Encode(k)
	if err != nil {
		return fmt.Errorf("mbcrypto: encode agent key: %w", err)
	}
	return km.store.Set(ctx, km.keyKey(k.Id()), data)
}

// GetAgentKey retrieves the key for id, or kv.ErrNotFound.
func (km *KeyManager) GetAgentKey(ctx context.Context, id AgentId) (*AgentKey, error) {
	data, err := km.store.Get(ctx, km.keyKey(id))
	if err != nil {
		return nil, err
	}
	var k AgentKey
	if err := codec.Decode(data, &k); err != nil {
		return nil, fmt.Errorf("mbcrypto: decode agent key: %w", err)
	}
	return &k, nil
}

// ListAgents returns every stored agent's id. The id is rederived from each
// decoded key rather than parsed back out of its storage key: kv's key
// encoding joins segments with an unescaped separator byte that raw key
// bytes can collide with (the same hazard artifactStore.Iter works around).
func (km *KeyManager) ListAgents(ctx context.Context) ([]AgentId, error) {
	var out []AgentId
	for entry, err := range km.store.List(ctx, kv.Key{km.keysTree}) {
		if err != nil {
			return nil, err
		}
		var k AgentKey
		if err := codec.Decode(entry.Value, &k); err != nil {
			return nil, fmt.Errorf("mbcrypto: decode agent key: %w", err)
		}
		out = append(out, k.Id())
	}
	return out, nil
}

// RemoveAllAgentKeys deletes every stored agent key and clears the current
// pointer.
func (km *KeyManager) RemoveAllAgentKeys(ctx context.Context) error {
	ids, err := km.ListAgents(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := km.store.Delete(ctx, km.keyKey(id)); err != nil {
			return err
		}
	}
	return km.store.Delete(ctx, kv.Key{km.currentTree, "current"})
}

// SetCurrentAgent records id as the current agent.
func (km *KeyManager) SetCurrentAgent(ctx context.Context, id AgentId) error {
	return km.store.Set(ctx, kv.Key{km.currentTree, "current"}, id.Bytes())
}

// CurrentAgentKey returns the current agent's key, or kv.ErrNotFound if
// none has been selected.
func (km *KeyManager) CurrentAgentKey(ctx context.Context) (*AgentKey, error) {
	data, err := km.store.Get(ctx, kv.Key{km.currentTree, "current"})
	if err != nil {
		return nil, err
	}
	id, err := AgentIdFromBytes(data)
	if err != nil {
		return nil, err
	}
	return km.GetAgentKey(ctx, id)
}

// ClearCurrentAgent unsets the current-agent pointer without deleting any
// stored key (logout, as opposed to reset).
func (km *KeyManager) ClearCurrentAgent(ctx context.Context) error {
	return km.store.Delete(ctx, kv.Key{km.currentTree, "current"})
}
