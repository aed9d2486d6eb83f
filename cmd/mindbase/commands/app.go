package commands

import (
	"context"
	"fmt"

	"github.com/mindbeam/mindbase/pkg/cli"
	"github.com/mindbeam/mindbase/pkg/kv"
	"github.com/mindbeam/mindbase/pkg/mbcrypto"
	"github.com/mindbeam/mindbase/pkg/mindbase"
)

// openStore opens the badger-backed store at cfg's configured directory.
func openStore(cfg *cli.Config) (kv.Store, error) {
	return kv.NewBadger(kv.BadgerOptions{Dir: cfg.StoreDir})
}

// openKeyManager opens the store and wraps it in a KeyManager, for commands
// (auth) that only need agent identities, not a full MindBase handle.
func openKeyManager(cfg *cli.Config) (kv.Store, *mbcrypto.KeyManager, error) {
	store, err := openStore(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	return store, mbcrypto.NewKeyManager(store), nil
}

// openApp opens the store, key manager, and a MindBase handle signing under
// the configured current agent, with the config's ground-agent list already
// registered. Commands that read or write claims (import, export, repl) use
// this; auth's key-management subcommands use openKeyManager directly since
// they run before any agent may exist yet.
func openApp(ctx context.Context) (*mindbase.MindBase, *cli.Config, error) {
	cfg, err := GetConfig()
	if err != nil {
		return nil, nil, err
	}
	store, km, err := openKeyManager(cfg)
	if err != nil {
		return nil, nil, err
	}
	key, err := km.CurrentAgentKey(ctx)
	if err != nil {
		store.Close()
		if err == kv.ErrNotFound {
			return nil, nil, fmt.Errorf("no current agent selected; run 'mindbase auth create' first")
		}
		return nil, nil, fmt.Errorf("load current agent: %w", err)
	}

	mb := mindbase.Open(store, key)
	for _, label := range cfg.GroundAgents {
		id, err := mbcrypto.AgentIdFromHex(label)
		if err != nil {
			continue
		}
		mb.AddGroundSymbolAgent(id)
	}
	// The current agent always grounds its own claims, even if the config
	// file hasn't explicitly listed it yet.
	mb.AddGroundSymbolAgent(key.Id())

	return mb, cfg, nil
}
