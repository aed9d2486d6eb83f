package genesis_test

import (
	"context"
	"testing"

	"github.com/mindbeam/mindbase/pkg/genesis"
	"github.com/mindbeam/mindbase/pkg/kv"
	"github.com/mindbeam/mindbase/pkg/mbcrypto"
	"github.com/mindbeam/mindbase/pkg/mindbase"
)

func TestApplySeedsVocabularyIdempotently(t *testing.T) {
	ctx := context.Background()
	key, err := mbcrypto.CreateAgentKey(nil)
	if err != nil {
		t.Fatalf("CreateAgentKey: %v", err)
	}
	mb := mindbase.Open(kv.NewMemory(nil), key)

	if err := genesis.Apply(ctx, mb); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	count := func() int {
		n := 0
		for range mb.IterArtifacts(ctx) {
			n++
		}
		return n
	}
	first := count()
	if first == 0 {
		t.Fatal("expected genesis to create at least one artifact")
	}

	if err := genesis.Apply(ctx, mb); err != nil {
		t.Fatalf("Apply (second time): %v", err)
	}
	if second := count(); second != first {
		t.Fatalf("expected re-applying genesis to create no new artifacts: first=%d second=%d", first, second)
	}
}

func TestApplySeedsRelations(t *testing.T) {
	ctx := context.Background()
	key, err := mbcrypto.CreateAgentKey(nil)
	if err != nil {
		t.Fatalf("CreateAgentKey: %v", err)
	}
	mb := mindbase.Open(kv.NewMemory(nil), key)
	mb.AddGroundSymbolAgent(mb.DefaultAgent())

	if err := genesis.Apply(ctx, mb); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	claims := 0
	for _, err := range mb.IterClaims(ctx) {
		if err != nil {
			t.Fatalf("IterClaims: %v", err)
		}
		claims++
	}
	// One Symbolize claim per word, plus at least one Allege claim for the
	// seeded Fruit/Apple relation.
	if claims < 9 {
		t.Fatalf("expected at least 9 claims (8 words + 1 relation), got %d", claims)
	}
}
