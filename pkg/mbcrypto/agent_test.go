package mbcrypto

import "testing"

func TestCreateAgentKeySignVerify(t *testing.T) {
	key, err := CreateAgentKey(nil)
	if err != nil {
		t.Fatalf("CreateAgentKey: %v", err)
	}

	body := []byte("some claim body bytes")
	sig := key.Sign("allegation", body)

	if !Verify(key.Id(), "allegation", body, sig) {
		t.Fatal("Verify should succeed for matching tag and body")
	}
	if Verify(key.Id(), "other-tag", body, sig) {
		t.Fatal("Verify should fail under a different domain tag")
	}
	if Verify(key.Id(), "allegation", []byte("tampered"), sig) {
		t.Fatal("Verify should fail for tampered body")
	}
}

func TestCreateAgentKeyUnique(t *testing.T) {
	k1, err := CreateAgentKey(nil)
	if err != nil {
		t.Fatalf("CreateAgentKey: %v", err)
	}
	k2, err := CreateAgentKey(nil)
	if err != nil {
		t.Fatalf("CreateAgentKey: %v", err)
	}
	if k1.Id() == k2.Id() {
		t.Fatal("two generated keys should not share an id")
	}
}

func TestAgentIdFromBytes(t *testing.T) {
	key, err := CreateAgentKey(nil)
	if err != nil {
		t.Fatalf("CreateAgentKey: %v", err)
	}

	id, err := AgentIdFromBytes(key.Pubkey())
	if err != nil {
		t.Fatalf("AgentIdFromBytes: %v", err)
	}
	if id != key.Id() {
		t.Fatal("round-tripped id should match original")
	}

	if _, err := AgentIdFromBytes([]byte("too short")); err == nil {
		t.Fatal("expected error for wrong-length input")
	}
}
