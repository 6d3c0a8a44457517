package receipt

import (
	"errors"
	"testing"
)

func TestRegistryIsolatesUsers(t *testing.T) {
	reg := NewRegistry()

	aliceID := reg.For("alice").Begin()
	bobID := reg.For("bob").Begin()

	// Bob starting a session must not supersede Alice's.
	if err := reg.For("alice").AttachParseResult(aliceID, ParsedReceipt{
		Currency: "INR",
		Items:    []ParsedItem{{Name: "Dosa", Amount: 120}},
	}); err != nil {
		t.Fatalf("AttachParseResult on alice's session failed: %v", err)
	}

	if got := reg.For("alice").Current().State(); got != StateParsing {
		t.Errorf("alice state = %s, want %s", got, StateParsing)
	}
	if got := reg.For("bob").Current().State(); got != StateChoosing {
		t.Errorf("bob state = %s, want %s", got, StateChoosing)
	}
	if items := reg.For("bob").Current().Items; len(items) != 0 {
		t.Errorf("bob's session has %d items, want 0", len(items))
	}

	// Session ids count per user, not per process.
	if aliceID != 1 || bobID != 1 {
		t.Errorf("session ids = %d, %d, want 1, 1", aliceID, bobID)
	}
}

func TestRegistryReturnsSameManagerPerUser(t *testing.T) {
	reg := NewRegistry()

	id := reg.For("alice").Begin()
	if err := reg.For("alice").SetParticipants(id, []string{"alice", "bob"}); err != nil {
		t.Fatalf("SetParticipants failed: %v", err)
	}

	s := reg.For("alice").Current()
	if s == nil || s.ID != id {
		t.Fatal("expected the same session on repeated lookups")
	}
	if len(s.Participants) != 2 {
		t.Errorf("participants = %d, want 2", len(s.Participants))
	}

	// A superseding Begin by the same user still works within their manager.
	newID := reg.For("alice").Begin()
	if newID != id+1 {
		t.Errorf("new session id = %d, want %d", newID, id+1)
	}
	if err := reg.For("alice").SetParticipants(id, []string{"alice"}); !errors.Is(err, ErrStaleSession) {
		t.Errorf("error = %v, want ErrStaleSession", err)
	}
}
