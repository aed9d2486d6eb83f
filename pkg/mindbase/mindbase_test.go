package mindbase

import (
	"context"
	"testing"

	"github.com/mindbeam/mindbase/pkg/kv"
	"github.com/mindbeam/mindbase/pkg/mbcrypto"
)

func newTestMindBase(t *testing.T) *MindBase {
	t.Helper()
	key, err := mbcrypto.CreateAgentKey(nil)
	if err != nil {
		t.Fatalf("CreateAgentKey: %v", err)
	}
	return Open(kv.NewMemory(nil), key)
}

func TestSymbolizeAndGet(t *testing.T) {
	ctx := context.Background()
	mb := newTestMindBase(t)
	defer mb.Close()

	artifact, err := mb.PutArtifact(ctx, FlatTextArtifact("smile"))
	if err != nil {
		t.Fatalf("PutArtifact: %v", err)
	}
	sym, err := mb.Symbolize(ctx, artifact)
	if err != nil {
		t.Fatalf("Symbolize: %v", err)
	}
	if len(sym.Atoms) != 1 {
		t.Fatalf("expected singleton symbol, got %+v", sym)
	}

	claim, err := mb.GetClaim(ctx, sym.Atoms[0].Id)
	if err != nil {
		t.Fatalf("GetClaim: %v", err)
	}
	if claim.Body.Kind != BodyArtifactRef || claim.Body.ArtifactId != artifact {
		t.Fatalf("unexpected claim body %+v", claim.Body)
	}
	ok, err := claim.Verify()
	if err != nil || !ok {
		t.Fatalf("claim failed to verify: ok=%v err=%v", ok, err)
	}
}

func TestAllegeBuildsAnalogyClaim(t *testing.T) {
	ctx := context.Background()
	mb := newTestMindBase(t)
	defer mb.Close()

	smileArt, _ := mb.PutArtifact(ctx, FlatTextArtifact("Smile"))
	mouthArt, _ := mb.PutArtifact(ctx, FlatTextArtifact("Mouth"))
	smile, err := mb.Symbolize(ctx, smileArt)
	if err != nil {
		t.Fatalf("Symbolize smile: %v", err)
	}
	mouth, err := mb.Symbolize(ctx, mouthArt)
	if err != nil {
		t.Fatalf("Symbolize mouth: %v", err)
	}

	analogy, err := mb.Allege(ctx, smile, mouth, 1.0)
	if err != nil {
		t.Fatalf("Allege: %v", err)
	}

	left, right, ok := analogy.LeftRight(mb)
	if !ok {
		t.Fatal("expected analogy symbol to resolve left/right")
	}
	if !left.Intersects(smile) {
		t.Fatalf("left %+v does not intersect smile %+v", left, smile)
	}
	if !right.Intersects(mouth) {
		t.Fatalf("right %+v does not intersect mouth %+v", right, mouth)
	}
}

func TestAddGroundSymbolAgentDedupesAndSnapshots(t *testing.T) {
	mb := newTestMindBase(t)
	defer mb.Close()

	a := mb.DefaultAgent()
	mb.AddGroundSymbolAgent(a)
	mb.AddGroundSymbolAgent(a)
	if got := mb.GroundSymbolAgents(); len(got) != 1 {
		t.Fatalf("expected one ground agent after dedup, got %d", len(got))
	}

	snapshot := mb.GroundSymbolAgents()
	mb.AddGroundSymbolAgent(mbcrypto.AgentId{0x01})
	if len(snapshot) != 1 {
		t.Fatalf("snapshot mutated after later AddGroundSymbolAgent: %+v", snapshot)
	}
	if len(mb.GroundSymbolAgents()) != 2 {
		t.Fatal("expected second agent to be registered")
	}
}

func TestArtifactAtomsFiltersByGroundAgent(t *testing.T) {
	ctx := context.Background()
	mb := newTestMindBase(t)
	defer mb.Close()

	otherKey, err := mbcrypto.CreateAgentKey(nil)
	if err != nil {
		t.Fatalf("CreateAgentKey: %v", err)
	}

	artifact, err := mb.PutArtifact(ctx, FlatTextArtifact("shared"))
	if err != nil {
		t.Fatalf("PutArtifact: %v", err)
	}

	mySym, err := mb.Symbolize(ctx, artifact)
	if err != nil {
		t.Fatalf("Symbolize: %v", err)
	}

	otherClaim := Claim{
		Id:      mb.claims.NextId(),
		AgentId: otherKey.Id(),
		Body:    ArtifactRefBody(artifact),
	}
	if err := otherClaim.Sign(otherKey); err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if err := mb.PutClaim(ctx, otherClaim); err != nil {
		t.Fatalf("PutClaim: %v", err)
	}

	onlyMine, err := mb.ArtifactAtoms(ctx, artifact, []mbcrypto.AgentId{mb.DefaultAgent()})
	if err != nil {
		t.Fatalf("ArtifactAtoms: %v", err)
	}
	if len(onlyMine) != 1 || onlyMine[0] != mySym.Atoms[0].Id {
		t.Fatalf("expected only my claim, got %v", onlyMine)
	}

	both, err := mb.ArtifactAtoms(ctx, artifact, []mbcrypto.AgentId{mb.DefaultAgent(), otherKey.Id()})
	if err != nil {
		t.Fatalf("ArtifactAtoms: %v", err)
	}
	if len(both) != 2 {
		t.Fatalf("expected both claims, got %v", both)
	}
}

func TestArtifactAtomsNoGroundAgentsReturnsEmpty(t *testing.T) {
	ctx := context.Background()
	mb := newTestMindBase(t)
	defer mb.Close()

	artifact, _ := mb.PutArtifact(ctx, FlatTextArtifact("anything"))
	got, err := mb.ArtifactAtoms(ctx, artifact, nil)
	if err != nil {
		t.Fatalf("ArtifactAtoms: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no atoms with no ground agents, got %v", got)
	}
}
